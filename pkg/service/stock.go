package service

import (
	"context"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/store"
)

// StockLedger guards the one invariant of the catalog: product stock never
// goes negative. Reserve must run inside a store transaction so the locks
// taken by GetForUpdate cover the whole check-and-decrement sequence.
type StockLedger struct{}

// Reserve checks that every requested product has sufficient stock and
// decrements each by its requested quantity. Quantities are summed per
// product first, so an order listing the same product twice competes for
// the combined amount. On any failure nothing is decremented.
func (StockLedger) Reserve(ctx context.Context, tx store.Store, items []models.OrderItem) error {
	need := make(map[string]int, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := need[item.ProductID]; !ok {
			ids = append(ids, item.ProductID)
		}
		need[item.ProductID] += item.Quantity
	}

	products, err := tx.Products().GetForUpdate(ctx, ids)
	if err != nil {
		return err
	}
	if len(products) != len(ids) {
		found := make(map[string]bool, len(products))
		for _, p := range products {
			found[p.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				return apperr.NotFoundf("product %s not found", id)
			}
		}
	}

	for _, p := range products {
		if p.Stock < need[p.ID] {
			return apperr.InsufficientStockf(
				"insufficient stock for product %s: have %d, want %d",
				p.ID, p.Stock, need[p.ID])
		}
	}

	for _, id := range ids {
		if err := tx.Products().DecrementStock(ctx, id, need[id]); err != nil {
			return err
		}
	}
	return nil
}

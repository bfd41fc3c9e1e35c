package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"github.com/example/storefront/pkg/store"
)

// OrderService places and reads orders. Placement couples order creation to
// the stock ledger inside one store transaction: either the order with all
// its items and every stock decrement are recorded, or nothing is.
type OrderService struct {
	store    store.Store
	ledger   StockLedger
	cache    OrderCache
	audit    Auditor
	notifier Notifier
	logger   *zap.Logger
}

// NewOrderService wires the order workflow. cache, audit and notifier may
// be nil; the corresponding side effects are skipped.
func NewOrderService(st store.Store, cache OrderCache, audit Auditor, notifier Notifier, logger *zap.Logger) *OrderService {
	return &OrderService{
		store:    st,
		cache:    cache,
		audit:    audit,
		notifier: notifier,
		logger:   logger,
	}
}

type CreateOrderItem struct {
	ProductID string  `json:"productId"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
}

type CreateOrderInput struct {
	UserID string            `json:"userId"`
	Items  []CreateOrderItem `json:"orderItems"`
}

func (in *CreateOrderInput) Validate() error {
	if !isUUID(in.UserID) {
		return apperr.Validationf("userId must be a valid uuid")
	}
	if len(in.Items) == 0 {
		return apperr.Validationf("orderItems must contain at least one item")
	}
	for i, item := range in.Items {
		if !isUUID(item.ProductID) {
			return apperr.Validationf("orderItems[%d].productId must be a valid uuid", i)
		}
		if item.UnitPrice < 0 {
			return apperr.Validationf("orderItems[%d].unitPrice must not be negative", i)
		}
		if item.Quantity < 1 {
			return apperr.Validationf("orderItems[%d].quantity must be at least 1", i)
		}
	}
	return nil
}

// Place validates the payload, reserves stock and persists the order as one
// atomic unit.
func (s *OrderService) Place(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:     newID(),
		UserID: input.UserID,
	}
	order.Items = make([]models.OrderItem, len(input.Items))
	for i, item := range input.Items {
		order.Items[i] = models.OrderItem{
			ID:        newID(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}

	var user *models.User
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		u, err := tx.Users().Get(ctx, input.UserID)
		if err != nil {
			return err
		}
		user = u

		if err := s.ledger.Reserve(ctx, tx, order.Items); err != nil {
			return err
		}
		return tx.Orders().Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.Int("item_count", len(order.Items)))

	if s.cache != nil {
		if err := s.cache.CacheOrder(ctx, order); err != nil {
			s.logger.Warn("failed to cache order", zap.String("order_id", order.ID), zap.Error(err))
		}
	}
	if s.audit != nil {
		go s.audit.CreateAuditLog(context.Background(), &repository.AuditLog{
			Service:  "order-service",
			Action:   "create_order",
			EntityID: order.ID,
			Data: map[string]interface{}{
				"user_id":    order.UserID,
				"item_count": len(order.Items),
			},
		})
	}
	if s.notifier != nil && user.Preference != nil && user.Preference.ReceiveEmail {
		s.notifier.OrderPlaced(user, order)
	}

	return order, nil
}

// Get loads an order with its items and attaches the derived total.
func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	if s.cache != nil {
		if order, err := s.cache.GetOrder(ctx, id); err == nil {
			order.Total = order.ComputeTotal()
			return order, nil
		}
	}

	order, err := s.store.Orders().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Total = order.ComputeTotal()

	if s.cache != nil {
		if err := s.cache.CacheOrder(ctx, order); err != nil {
			s.logger.Warn("failed to cache order", zap.String("order_id", id), zap.Error(err))
		}
	}
	return order, nil
}

// ListForUser returns a user's orders, newest first.
func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]models.Order, error) {
	exists, err := s.store.Users().Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFoundf("user %s not found", userID)
	}
	return s.store.Orders().ListByUser(ctx, userID)
}

type PatchOrderItem struct {
	ID        string   `json:"id"`
	ProductID *string  `json:"productId"`
	UnitPrice *float64 `json:"unitPrice"`
	Quantity  *int     `json:"quantity"`
}

type PatchOrderInput struct {
	UserID *string          `json:"userId"`
	Items  []PatchOrderItem `json:"orderItems"`
}

func (in *PatchOrderInput) Validate() error {
	if in.UserID != nil && !isUUID(*in.UserID) {
		return apperr.Validationf("userId must be a valid uuid")
	}
	for i, item := range in.Items {
		if !isUUID(item.ID) {
			return apperr.Validationf("orderItems[%d].id must be a valid uuid", i)
		}
		if item.ProductID != nil && !isUUID(*item.ProductID) {
			return apperr.Validationf("orderItems[%d].productId must be a valid uuid", i)
		}
		if item.UnitPrice != nil && *item.UnitPrice < 0 {
			return apperr.Validationf("orderItems[%d].unitPrice must not be negative", i)
		}
		if item.Quantity != nil && *item.Quantity < 1 {
			return apperr.Validationf("orderItems[%d].quantity must be at least 1", i)
		}
	}
	return nil
}

// Patch updates order fields and item fields in place. It deliberately does
// not touch the stock ledger: orders are immutable with respect to
// inventory once placed, and a patch never re-reserves or releases stock.
func (s *OrderService) Patch(ctx context.Context, id string, input PatchOrderInput) (*models.Order, error) {
	if !isUUID(id) {
		return nil, apperr.Validationf("order id must be a valid uuid")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var updated *models.Order
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		order, err := tx.Orders().Get(ctx, id)
		if err != nil {
			return err
		}

		if input.UserID != nil {
			exists, err := tx.Users().Exists(ctx, *input.UserID)
			if err != nil {
				return err
			}
			if !exists {
				return apperr.NotFoundf("user %s not found", *input.UserID)
			}
			order.UserID = *input.UserID
			if err := tx.Orders().Update(ctx, order); err != nil {
				return err
			}
		}

		for _, patch := range input.Items {
			var current *models.OrderItem
			for i := range order.Items {
				if order.Items[i].ID == patch.ID {
					current = &order.Items[i]
					break
				}
			}
			if current == nil {
				return apperr.NotFoundf("order item %s not found", patch.ID)
			}
			if patch.ProductID != nil {
				current.ProductID = *patch.ProductID
			}
			if patch.UnitPrice != nil {
				current.UnitPrice = *patch.UnitPrice
			}
			if patch.Quantity != nil {
				current.Quantity = *patch.Quantity
			}
			if err := tx.Orders().UpdateItem(ctx, current); err != nil {
				return err
			}
		}

		updated, err = tx.Orders().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateOrder(ctx, id); err != nil {
			s.logger.Warn("failed to invalidate order cache", zap.String("order_id", id), zap.Error(err))
		}
	}
	if s.audit != nil {
		go s.audit.CreateAuditLog(context.Background(), &repository.AuditLog{
			Service:  "order-service",
			Action:   "update_order",
			EntityID: id,
			Data:     map[string]interface{}{"user_id": updated.UserID},
		})
	}
	return updated, nil
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/store"
	"github.com/example/storefront/pkg/store/memstore"
)

func newProductService(t *testing.T) *ProductService {
	t.Helper()
	return NewProductService(memstore.New(), zap.NewNop())
}

func TestCreateProductValidation(t *testing.T) {
	ctx := context.Background()
	products := newProductService(t)

	tests := []struct {
		name  string
		input CreateProductInput
	}{
		{"empty name", CreateProductInput{Name: "", Category: models.CategoryBeauty, Price: 1, Stock: 1}},
		{"unknown category", CreateProductInput{Name: "Soap", Category: "GROCERY", Price: 1, Stock: 1}},
		{"negative price", CreateProductInput{Name: "Soap", Category: models.CategoryBeauty, Price: -1, Stock: 1}},
		{"negative stock", CreateProductInput{Name: "Soap", Category: models.CategoryBeauty, Price: 1, Stock: -1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := products.Create(ctx, tc.input)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestProductCRUD(t *testing.T) {
	ctx := context.Background()
	products := newProductService(t)

	created, err := products.Create(ctx, CreateProductInput{
		Name:        "Desk Lamp",
		Description: "Warm light",
		Category:    models.CategoryHomeInterior,
		Price:       29.90,
		Stock:       12,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := products.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", got.Name)

	patched, err := products.Patch(ctx, created.ID, PatchProductInput{
		Price: floatPtr(24.90),
		Stock: intPtr(20),
	})
	require.NoError(t, err)
	assert.Equal(t, 24.90, patched.Price)
	assert.Equal(t, 20, patched.Stock)
	assert.Equal(t, "Desk Lamp", patched.Name, "unset fields stay untouched")

	deleted, err := products.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	_, err = products.Get(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestListProductsFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	products := newProductService(t)

	mk := func(name string, cat models.Category, price float64) {
		_, err := products.Create(ctx, CreateProductInput{Name: name, Category: cat, Price: price, Stock: 1})
		require.NoError(t, err)
	}
	mk("Cheap", models.CategorySports, 5)
	mk("Mid", models.CategorySports, 10)
	mk("Posh", models.CategoryFashion, 100)

	sports, err := products.List(ctx, store.ProductFilter{Category: models.CategorySports, Order: store.OrderPriceLowest, Limit: 10})
	require.NoError(t, err)
	require.Len(t, sports, 2)
	assert.Equal(t, "Cheap", sports[0].Name)
	assert.Equal(t, "Mid", sports[1].Name)

	highest, err := products.List(ctx, store.ProductFilter{Order: store.OrderPriceHighest, Limit: 2})
	require.NoError(t, err)
	require.Len(t, highest, 2)
	assert.Equal(t, "Posh", highest[0].Name)

	_, err = products.List(ctx, store.ProductFilter{Category: "GROCERY", Limit: 10})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

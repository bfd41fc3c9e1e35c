package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/store/memstore"
)

type fakeNotifier struct {
	mu     sync.Mutex
	placed []string
}

func (f *fakeNotifier) OrderPlaced(user *models.User, order *models.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placed = append(f.placed, order.ID)
}

func newOrderFixture(t *testing.T) (*OrderService, *UserService, *ProductService, *fakeNotifier) {
	t.Helper()
	st := memstore.New()
	logger := zap.NewNop()
	notifier := &fakeNotifier{}
	users := NewUserService(st, logger)
	products := NewProductService(st, logger)
	orders := NewOrderService(st, nil, nil, notifier, logger)
	return orders, users, products, notifier
}

func createUser(t *testing.T, users *UserService, receiveEmail bool) *models.User {
	t.Helper()
	user, err := users.Create(context.Background(), CreateUserInput{
		Email:      "jane." + newID() + "@example.com",
		FirstName:  "Jane",
		LastName:   "Doe",
		Address:    "12 Main St",
		Preference: PreferenceInput{ReceiveEmail: receiveEmail},
	})
	require.NoError(t, err)
	return user
}

func createProduct(t *testing.T, products *ProductService, price float64, stock int) *models.Product {
	t.Helper()
	p, err := products.Create(context.Background(), CreateProductInput{
		Name:     "Kettle",
		Category: models.CategoryKitchenware,
		Price:    price,
		Stock:    stock,
	})
	require.NoError(t, err)
	return p
}

func TestPlaceOrderDecrementsStock(t *testing.T) {
	ctx := context.Background()
	orders, users, products, _ := newOrderFixture(t)

	user := createUser(t, users, false)
	p1 := createProduct(t, products, 10, 5)
	p2 := createProduct(t, products, 5, 4)
	untouched := createProduct(t, products, 99, 7)

	order, err := orders.Place(ctx, CreateOrderInput{
		UserID: user.ID,
		Items: []CreateOrderItem{
			{ProductID: p1.ID, UnitPrice: 10, Quantity: 2},
			{ProductID: p2.ID, UnitPrice: 5, Quantity: 3},
		},
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	assert.Equal(t, user.ID, order.UserID)

	p1After, err := products.Get(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, p1After.Stock)

	p2After, err := products.Get(ctx, p2.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p2After.Stock)

	other, err := products.Get(ctx, untouched.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, other.Stock)
}

func TestPlaceOrderInsufficientStockIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	orders, users, products, _ := newOrderFixture(t)

	user := createUser(t, users, false)
	plenty := createProduct(t, products, 10, 100)
	scarce := createProduct(t, products, 5, 1)

	_, err := orders.Place(ctx, CreateOrderInput{
		UserID: user.ID,
		Items: []CreateOrderItem{
			{ProductID: plenty.ID, UnitPrice: 10, Quantity: 3},
			{ProductID: scarce.ID, UnitPrice: 5, Quantity: 2},
		},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInsufficientStock, apperr.KindOf(err))

	plentyAfter, err := products.Get(ctx, plenty.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, plentyAfter.Stock, "no partial decrement may survive")

	scarceAfter, err := products.Get(ctx, scarce.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, scarceAfter.Stock)
}

func TestPlaceOrderDuplicateProductLinesCombine(t *testing.T) {
	ctx := context.Background()
	orders, users, products, _ := newOrderFixture(t)

	user := createUser(t, users, false)
	p := createProduct(t, products, 10, 3)

	// Two lines of the same product compete for the combined quantity.
	_, err := orders.Place(ctx, CreateOrderInput{
		UserID: user.ID,
		Items: []CreateOrderItem{
			{ProductID: p.ID, UnitPrice: 10, Quantity: 2},
			{ProductID: p.ID, UnitPrice: 10, Quantity: 2},
		},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInsufficientStock, apperr.KindOf(err))

	after, err := products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, after.Stock)
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	ctx := context.Background()
	orders, users, products, _ := newOrderFixture(t)

	user := createUser(t, users, false)
	known := createProduct(t, products, 10, 5)

	_, err := orders.Place(ctx, CreateOrderInput{
		UserID: user.ID,
		Items: []CreateOrderItem{
			{ProductID: known.ID, UnitPrice: 10, Quantity: 1},
			{ProductID: newID(), UnitPrice: 5, Quantity: 1},
		},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	after, err := products.Get(ctx, known.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, after.Stock, "no stock mutation on unknown product")
}

func TestPlaceOrderUnknownUser(t *testing.T) {
	ctx := context.Background()
	orders, _, products, _ := newOrderFixture(t)

	p := createProduct(t, products, 10, 5)

	_, err := orders.Place(ctx, CreateOrderInput{
		UserID: newID(),
		Items:  []CreateOrderItem{{ProductID: p.ID, UnitPrice: 10, Quantity: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestPlaceOrderValidation(t *testing.T) {
	ctx := context.Background()
	orders, users, products, _ := newOrderFixture(t)

	user := createUser(t, users, false)
	p := createProduct(t, products, 10, 5)

	tests := []struct {
		name  string
		input CreateOrderInput
	}{
		{
			name:  "empty items",
			input: CreateOrderInput{UserID: user.ID, Items: nil},
		},
		{
			name:  "malformed user id",
			input: CreateOrderInput{UserID: "not-a-uuid", Items: []CreateOrderItem{{ProductID: p.ID, UnitPrice: 1, Quantity: 1}}},
		},
		{
			name:  "malformed product id",
			input: CreateOrderInput{UserID: user.ID, Items: []CreateOrderItem{{ProductID: "nope", UnitPrice: 1, Quantity: 1}}},
		},
		{
			name:  "negative unit price",
			input: CreateOrderInput{UserID: user.ID, Items: []CreateOrderItem{{ProductID: p.ID, UnitPrice: -1, Quantity: 1}}},
		},
		{
			name:  "zero quantity",
			input: CreateOrderInput{UserID: user.ID, Items: []CreateOrderItem{{ProductID: p.ID, UnitPrice: 1, Quantity: 0}}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := orders.Place(ctx, tc.input)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}

	after, err := products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, after.Stock)
}

func TestConcurrentOrdersForLastUnit(t *testing.T) {
	ctx := context.Background()
	orders, users, products, _ := newOrderFixture(t)

	user := createUser(t, users, false)
	p := createProduct(t, products, 10, 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = orders.Place(ctx, CreateOrderInput{
				UserID: user.ID,
				Items:  []CreateOrderItem{{ProductID: p.ID, UnitPrice: 10, Quantity: 1}},
			})
		}(i)
	}
	wg.Wait()

	var succeeded, conflicted int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case apperr.Is(err, apperr.KindInsufficientStock):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)

	after, err := products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.Stock)
}

func TestConcurrentOrdersNeverOversell(t *testing.T) {
	ctx := context.Background()
	orders, users, products, _ := newOrderFixture(t)

	user := createUser(t, users, false)
	p := createProduct(t, products, 10, 5)

	const attempts = 20
	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = orders.Place(ctx, CreateOrderInput{
				UserID: user.ID,
				Items:  []CreateOrderItem{{ProductID: p.ID, UnitPrice: 10, Quantity: 1}},
			})
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			require.True(t, apperr.Is(err, apperr.KindInsufficientStock), "unexpected error: %v", err)
		}
	}
	assert.Equal(t, 5, succeeded)

	after, err := products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.Stock)
}

func TestGetOrderComputesTotal(t *testing.T) {
	ctx := context.Background()
	orders, users, products, _ := newOrderFixture(t)

	user := createUser(t, users, false)
	p1 := createProduct(t, products, 10, 10)
	p2 := createProduct(t, products, 5, 10)

	placed, err := orders.Place(ctx, CreateOrderInput{
		UserID: user.ID,
		Items: []CreateOrderItem{
			{ProductID: p1.ID, UnitPrice: 10, Quantity: 2},
			{ProductID: p2.ID, UnitPrice: 5, Quantity: 3},
		},
	})
	require.NoError(t, err)

	// A later catalog price change must not affect the captured total.
	_, err = products.Patch(ctx, p1.ID, PatchProductInput{Price: floatPtr(999)})
	require.NoError(t, err)

	got, err := orders.Get(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, 35.0, got.Total)
	assert.Len(t, got.Items, 2)
}

func TestGetOrderNotFound(t *testing.T) {
	orders, _, _, _ := newOrderFixture(t)
	_, err := orders.Get(context.Background(), newID())
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestPatchOrderLeavesStockAlone(t *testing.T) {
	ctx := context.Background()
	orders, users, products, _ := newOrderFixture(t)

	user := createUser(t, users, false)
	p := createProduct(t, products, 10, 10)

	placed, err := orders.Place(ctx, CreateOrderInput{
		UserID: user.ID,
		Items:  []CreateOrderItem{{ProductID: p.ID, UnitPrice: 10, Quantity: 2}},
	})
	require.NoError(t, err)

	updated, err := orders.Patch(ctx, placed.ID, PatchOrderInput{
		Items: []PatchOrderItem{{ID: placed.Items[0].ID, Quantity: intPtr(5)}},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Items[0].Quantity)

	after, err := products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, after.Stock, "patch must not re-reserve stock")
}

func TestPatchOrderUnknownItem(t *testing.T) {
	ctx := context.Background()
	orders, users, products, _ := newOrderFixture(t)

	user := createUser(t, users, false)
	p := createProduct(t, products, 10, 10)

	placed, err := orders.Place(ctx, CreateOrderInput{
		UserID: user.ID,
		Items:  []CreateOrderItem{{ProductID: p.ID, UnitPrice: 10, Quantity: 2}},
	})
	require.NoError(t, err)

	_, err = orders.Patch(ctx, placed.ID, PatchOrderInput{
		Items: []PatchOrderItem{{ID: newID(), Quantity: intPtr(5)}},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestListForUser(t *testing.T) {
	ctx := context.Background()
	orders, users, products, _ := newOrderFixture(t)

	user := createUser(t, users, false)
	p := createProduct(t, products, 10, 10)

	for i := 0; i < 3; i++ {
		_, err := orders.Place(ctx, CreateOrderInput{
			UserID: user.ID,
			Items:  []CreateOrderItem{{ProductID: p.ID, UnitPrice: 10, Quantity: 1}},
		})
		require.NoError(t, err)
	}

	list, err := orders.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	_, err = orders.ListForUser(ctx, newID())
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestPlaceOrderNotifiesOptedInUsers(t *testing.T) {
	ctx := context.Background()
	orders, users, products, notifier := newOrderFixture(t)

	optedIn := createUser(t, users, true)
	optedOut := createUser(t, users, false)
	p := createProduct(t, products, 10, 10)

	placed, err := orders.Place(ctx, CreateOrderInput{
		UserID: optedIn.ID,
		Items:  []CreateOrderItem{{ProductID: p.ID, UnitPrice: 10, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = orders.Place(ctx, CreateOrderInput{
		UserID: optedOut.ID,
		Items:  []CreateOrderItem{{ProductID: p.ID, UnitPrice: 10, Quantity: 1}},
	})
	require.NoError(t, err)

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	assert.Equal(t, []string{placed.ID}, notifier.placed)
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

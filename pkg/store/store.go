// Package store defines the persistence boundary of the service. The order
// workflow depends only on these interfaces; gormstore provides the MySQL
// implementation and memstore a mutex-guarded in-memory one for tests.
package store

import (
	"context"

	"github.com/example/storefront/pkg/models"
)

// Sort orders accepted by the list endpoints.
const (
	OrderNewest       = "newest"
	OrderOldest       = "oldest"
	OrderPriceLowest  = "priceLowest"
	OrderPriceHighest = "priceHighest"
)

type ProductFilter struct {
	Category models.Category
	Order    string
	Offset   int
	Limit    int
}

type UserFilter struct {
	Order  string
	Offset int
	Limit  int
}

// Store is the unit-of-work boundary. Transaction runs fn against a store
// whose mutations commit or roll back as a whole; implementations must make
// GetForUpdate inside a transaction block concurrent reservations touching
// the same products.
type Store interface {
	Users() UserStore
	Products() ProductStore
	Orders() OrderStore
	Transaction(ctx context.Context, fn func(Store) error) error
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)

	SavedProducts(ctx context.Context, userID string) ([]models.Product, error)
	IsProductSaved(ctx context.Context, userID, productID string) (bool, error)
	SaveProduct(ctx context.Context, userID, productID string) error
	UnsaveProduct(ctx context.Context, userID, productID string) error
}

type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	Get(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error

	// GetForUpdate loads the given products with row locks held until the
	// surrounding transaction ends. Only valid inside Transaction.
	GetForUpdate(ctx context.Context, ids []string) ([]models.Product, error)
	// DecrementStock subtracts quantity from the product's stock. Callers
	// must have verified sufficiency under GetForUpdate locks first.
	DecrementStock(ctx context.Context, id string, quantity int) error
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	UpdateItem(ctx context.Context, item *models.OrderItem) error
}

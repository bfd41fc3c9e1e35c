// Package service holds the business logic between the HTTP transport and
// the store: input validation, the order placement workflow with stock
// reservation, and the CRUD passthrough for users and products.
package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
)

// OrderCache is a read-through cache for orders. All methods are best
// effort; callers fall back to the store on any error.
type OrderCache interface {
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	CacheOrder(ctx context.Context, order *models.Order) error
	InvalidateOrder(ctx context.Context, id string) error
}

// Auditor records mutations for the audit trail.
type Auditor interface {
	CreateAuditLog(ctx context.Context, log *repository.AuditLog) error
}

// Notifier delivers out-of-band notifications after a state change.
type Notifier interface {
	OrderPlaced(user *models.User, order *models.Order)
}

func isUUID(s string) bool {
	u, err := uuid.Parse(s)
	return err == nil && u.Version() == 4
}

func newID() string {
	return uuid.NewString()
}

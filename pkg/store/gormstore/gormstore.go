// Package gormstore implements the store interfaces on MySQL through GORM.
// Stock reservation relies on SELECT ... FOR UPDATE row locks inside a
// database transaction, so the check-and-decrement sequence is atomic even
// across multiple service instances.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/store"
)

// Open connects to MySQL and migrates the schema.
func Open(cfg *config.MySQLConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.UserPreference{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return db, nil
}

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Users() store.UserStore       { return &userStore{db: s.db} }
func (s *Store) Products() store.ProductStore { return &productStore{db: s.db} }
func (s *Store) Orders() store.OrderStore     { return &orderStore{db: s.db} }

func (s *Store) Transaction(ctx context.Context, fn func(store.Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Internal("transaction failed", err)
}

// translate maps GORM errors onto the service error taxonomy.
func translate(err error, entity, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFoundf("%s %s not found", entity, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Conflictf("%s %s already exists", entity, id)
	default:
		return apperr.Internal(fmt.Sprintf("%s query failed", entity), err)
	}
}

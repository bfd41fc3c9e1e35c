package gormstore

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/store"
)

type productStore struct {
	db *gorm.DB
}

func (s *productStore) Create(ctx context.Context, product *models.Product) error {
	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return translate(err, "product", product.ID)
	}
	return nil
}

func (s *productStore) Get(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, translate(err, "product", id)
	}
	return &product, nil
}

func (s *productStore) List(ctx context.Context, filter store.ProductFilter) ([]models.Product, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	switch filter.Order {
	case store.OrderOldest:
		query = query.Order("created_at ASC")
	case store.OrderPriceLowest:
		query = query.Order("price ASC")
	case store.OrderPriceHighest:
		query = query.Order("price DESC")
	default:
		query = query.Order("created_at DESC")
	}

	var products []models.Product
	if err := query.Offset(filter.Offset).Limit(filter.Limit).Find(&products).Error; err != nil {
		return nil, apperr.Internal("product list failed", err)
	}
	return products, nil
}

func (s *productStore) Update(ctx context.Context, product *models.Product) error {
	if err := s.db.WithContext(ctx).Save(product).Error; err != nil {
		return translate(err, "product", product.ID)
	}
	return nil
}

func (s *productStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "product", id)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFoundf("product %s not found", id)
	}
	return nil
}

func (s *productStore) GetForUpdate(ctx context.Context, ids []string) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Find(&products).Error
	if err != nil {
		return nil, apperr.Internal("product lock failed", err)
	}
	return products, nil
}

func (s *productStore) DecrementStock(ctx context.Context, id string, quantity int) error {
	// The stock >= quantity guard backstops the locked check so stock can
	// never go negative even if a caller skips GetForUpdate.
	res := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return apperr.Internal("stock decrement failed", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.InsufficientStockf("insufficient stock for product %s", id)
	}
	return nil
}

package gormstore

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/models"
)

type orderStore struct {
	db *gorm.DB
}

func (s *orderStore) Create(ctx context.Context, order *models.Order) error {
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return translate(err, "order", order.ID)
	}
	return nil
}

func (s *orderStore) Get(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "order", id)
	}
	return &order, nil
}

func (s *orderStore) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, apperr.Internal("order list failed", err)
	}
	return orders, nil
}

func (s *orderStore) Update(ctx context.Context, order *models.Order) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(order).Error; err != nil {
		return translate(err, "order", order.ID)
	}
	return nil
}

func (s *orderStore) UpdateItem(ctx context.Context, item *models.OrderItem) error {
	res := s.db.WithContext(ctx).Model(&models.OrderItem{}).
		Where("id = ? AND order_id = ?", item.ID, item.OrderID).
		Updates(map[string]interface{}{
			"product_id": item.ProductID,
			"unit_price": item.UnitPrice,
			"quantity":   item.Quantity,
		})
	if res.Error != nil {
		return apperr.Internal("order item update failed", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFoundf("order item %s not found", item.ID)
	}
	return nil
}

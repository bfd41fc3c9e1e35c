package gormstore

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/store"
)

type userStore struct {
	db *gorm.DB
}

func (s *userStore) Create(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return translate(err, "user", user.Email)
	}
	return nil
}

func (s *userStore) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Preference").
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "user", id)
	}
	return &user, nil
}

func (s *userStore) List(ctx context.Context, filter store.UserFilter) ([]models.User, error) {
	query := s.db.WithContext(ctx).Model(&models.User{}).Preload("Preference")

	switch filter.Order {
	case store.OrderOldest:
		query = query.Order("created_at ASC")
	default:
		query = query.Order("created_at DESC")
	}

	var users []models.User
	if err := query.Offset(filter.Offset).Limit(filter.Limit).Find(&users).Error; err != nil {
		return nil, apperr.Internal("user list failed", err)
	}
	return users, nil
}

func (s *userStore) Update(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error; err != nil {
		return translate(err, "user", user.ID)
	}
	// Save skips associations above, so the preference row is written
	// explicitly.
	if user.Preference != nil {
		if err := s.db.WithContext(ctx).Save(user.Preference).Error; err != nil {
			return translate(err, "user preference", user.ID)
		}
	}
	return nil
}

func (s *userStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "user", id)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFoundf("user %s not found", id)
	}
	return nil
}

func (s *userStore) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, apperr.Internal("user lookup failed", err)
	}
	return count > 0, nil
}

func (s *userStore) SavedProducts(ctx context.Context, userID string) ([]models.Product, error) {
	user := models.User{ID: userID}
	var products []models.Product
	err := s.db.WithContext(ctx).Model(&user).Association("SavedProducts").Find(&products)
	if err != nil {
		return nil, apperr.Internal("saved products lookup failed", err)
	}
	return products, nil
}

func (s *userStore) IsProductSaved(ctx context.Context, userID, productID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Table("saved_products").
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return false, apperr.Internal("saved product lookup failed", err)
	}
	return count > 0, nil
}

func (s *userStore) SaveProduct(ctx context.Context, userID, productID string) error {
	user := models.User{ID: userID}
	product := models.Product{ID: productID}
	if err := s.db.WithContext(ctx).Model(&user).Association("SavedProducts").Append(&product); err != nil {
		return apperr.Internal("save product failed", err)
	}
	return nil
}

func (s *userStore) UnsaveProduct(ctx context.Context, userID, productID string) error {
	user := models.User{ID: userID}
	product := models.Product{ID: productID}
	if err := s.db.WithContext(ctx).Model(&user).Association("SavedProducts").Delete(&product); err != nil {
		return apperr.Internal("unsave product failed", err)
	}
	return nil
}

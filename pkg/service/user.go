package service

import (
	"context"
	"net/mail"

	"go.uber.org/zap"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/store"
)

// UserService is CRUD passthrough for users, their preferences and their
// saved-product relations.
type UserService struct {
	store  store.Store
	logger *zap.Logger
}

func NewUserService(st store.Store, logger *zap.Logger) *UserService {
	return &UserService{store: st, logger: logger}
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func validName(s string) bool {
	return len(s) >= 1 && len(s) <= 30
}

type PreferenceInput struct {
	ReceiveEmail bool `json:"receiveEmail"`
}

type CreateUserInput struct {
	Email      string          `json:"email"`
	FirstName  string          `json:"firstName"`
	LastName   string          `json:"lastName"`
	Address    string          `json:"address"`
	Preference PreferenceInput `json:"userPreference"`
}

func (in *CreateUserInput) Validate() error {
	if !validEmail(in.Email) {
		return apperr.Validationf("email %q is not a valid address", in.Email)
	}
	if !validName(in.FirstName) {
		return apperr.Validationf("firstName must be between 1 and 30 characters")
	}
	if !validName(in.LastName) {
		return apperr.Validationf("lastName must be between 1 and 30 characters")
	}
	return nil
}

func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	user := &models.User{
		ID:        newID(),
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Address:   input.Address,
		Preference: &models.UserPreference{
			ID:           newID(),
			ReceiveEmail: input.Preference.ReceiveEmail,
		},
	}
	user.Preference.UserID = user.ID
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user created", zap.String("user_id", user.ID))
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.store.Users().Get(ctx, id)
}

func (s *UserService) List(ctx context.Context, filter store.UserFilter) ([]models.User, error) {
	return s.store.Users().List(ctx, filter)
}

type PatchUserInput struct {
	Email      *string          `json:"email"`
	FirstName  *string          `json:"firstName"`
	LastName   *string          `json:"lastName"`
	Address    *string          `json:"address"`
	Preference *PreferenceInput `json:"userPreference"`
}

func (in *PatchUserInput) Validate() error {
	if in.Email != nil && !validEmail(*in.Email) {
		return apperr.Validationf("email %q is not a valid address", *in.Email)
	}
	if in.FirstName != nil && !validName(*in.FirstName) {
		return apperr.Validationf("firstName must be between 1 and 30 characters")
	}
	if in.LastName != nil && !validName(*in.LastName) {
		return apperr.Validationf("lastName must be between 1 and 30 characters")
	}
	return nil
}

func (s *UserService) Patch(ctx context.Context, id string, input PatchUserInput) (*models.User, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	user, err := s.store.Users().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Address != nil {
		user.Address = *input.Address
	}
	if input.Preference != nil {
		if user.Preference == nil {
			user.Preference = &models.UserPreference{ID: newID(), UserID: user.ID}
		}
		user.Preference.ReceiveEmail = input.Preference.ReceiveEmail
	}
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.Users().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Users().Delete(ctx, id); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) SavedProducts(ctx context.Context, userID string) ([]models.Product, error) {
	exists, err := s.store.Users().Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFoundf("user %s not found", userID)
	}
	return s.store.Users().SavedProducts(ctx, userID)
}

// ToggleSavedProduct saves the product for the user, or removes it if it is
// already saved, and returns the resulting saved list.
func (s *UserService) ToggleSavedProduct(ctx context.Context, userID, productID string) ([]models.Product, error) {
	if !isUUID(productID) {
		return nil, apperr.Validationf("productId must be a valid uuid")
	}

	err := s.store.Transaction(ctx, func(tx store.Store) error {
		exists, err := tx.Users().Exists(ctx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.NotFoundf("user %s not found", userID)
		}
		if _, err := tx.Products().Get(ctx, productID); err != nil {
			return err
		}

		saved, err := tx.Users().IsProductSaved(ctx, userID, productID)
		if err != nil {
			return err
		}
		if saved {
			return tx.Users().UnsaveProduct(ctx, userID, productID)
		}
		return tx.Users().SaveProduct(ctx, userID, productID)
	})
	if err != nil {
		return nil, err
	}
	return s.store.Users().SavedProducts(ctx, userID)
}

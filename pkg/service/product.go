package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/store"
)

// ProductService is CRUD passthrough for the catalog. Stock mutation from
// order placement lives in StockLedger, not here.
type ProductService struct {
	store  store.Store
	logger *zap.Logger
}

func NewProductService(st store.Store, logger *zap.Logger) *ProductService {
	return &ProductService{store: st, logger: logger}
}

type CreateProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    models.Category `json:"category"`
	Price       float64         `json:"price"`
	Stock       int             `json:"stock"`
}

func (in *CreateProductInput) Validate() error {
	if len(in.Name) < 1 || len(in.Name) > 60 {
		return apperr.Validationf("name must be between 1 and 60 characters")
	}
	if !in.Category.Valid() {
		return apperr.Validationf("category %q is not a known category", in.Category)
	}
	if in.Price < 0 {
		return apperr.Validationf("price must not be negative")
	}
	if in.Stock < 0 {
		return apperr.Validationf("stock must not be negative")
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	product := &models.Product{
		ID:          newID(),
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price,
		Stock:       input.Stock,
	}
	if err := s.store.Products().Create(ctx, product); err != nil {
		return nil, err
	}
	s.logger.Info("product created",
		zap.String("product_id", product.ID),
		zap.String("category", string(product.Category)))
	return product, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	return s.store.Products().Get(ctx, id)
}

func (s *ProductService) List(ctx context.Context, filter store.ProductFilter) ([]models.Product, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, apperr.Validationf("category %q is not a known category", filter.Category)
	}
	return s.store.Products().List(ctx, filter)
}

type PatchProductInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Category    *models.Category `json:"category"`
	Price       *float64         `json:"price"`
	Stock       *int             `json:"stock"`
}

func (in *PatchProductInput) Validate() error {
	if in.Name != nil && (len(*in.Name) < 1 || len(*in.Name) > 60) {
		return apperr.Validationf("name must be between 1 and 60 characters")
	}
	if in.Category != nil && !in.Category.Valid() {
		return apperr.Validationf("category %q is not a known category", *in.Category)
	}
	if in.Price != nil && *in.Price < 0 {
		return apperr.Validationf("price must not be negative")
	}
	if in.Stock != nil && *in.Stock < 0 {
		return apperr.Validationf("stock must not be negative")
	}
	return nil
}

func (s *ProductService) Patch(ctx context.Context, id string, input PatchProductInput) (*models.Product, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	product, err := s.store.Products().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if err := s.store.Products().Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.store.Products().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Products().Delete(ctx, id); err != nil {
		return nil, err
	}
	return product, nil
}

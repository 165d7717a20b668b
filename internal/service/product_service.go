package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"el-diego/internal/model"
	"el-diego/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	repo   repository.ProductRepository
	logger zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		repo:   repo,
		logger: logger.With().Str("service", "product").Logger(),
	}
}

// GetAll retrieves all products with pagination.
func (s *productService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	products, err := s.repo.GetAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	return products, nil
}

// GetBySKU retrieves a single product by SKU.
func (s *productService) GetBySKU(ctx context.Context, sku string) (*model.Product, error) {
	product, err := s.repo.GetBySKU(ctx, normalizeSKU(sku))
	if err != nil {
		s.logger.Error().Err(err).Str("sku", sku).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// Create creates a new product.
func (s *productService) Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error) {
	if err := validateProductRequest(req); err != nil {
		return nil, err
	}

	now := time.Now()
	product := &model.Product{
		ID:        uuid.New(),
		SKU:       normalizeSKU(req.SKU),
		Name:      req.Name,
		Price:     req.Price,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := s.repo.Create(ctx, product); err != nil {
		s.logger.Error().Err(err).Str("sku", product.SKU).Msg("failed to create product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().Str("sku", product.SKU).Msg("product created")
	return product, nil
}

// Update updates an existing product.
func (s *productService) Update(ctx context.Context, sku string, req *model.ProductRequest) (*model.Product, error) {
	if err := validateProductRequest(req); err != nil {
		return nil, err
	}

	product, err := s.repo.GetBySKU(ctx, normalizeSKU(sku))
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	product.SKU = normalizeSKU(req.SKU)
	product.Name = req.Name
	product.Price = req.Price
	if req.Active != nil {
		product.Active = *req.Active
	}
	product.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, product); err != nil {
		s.logger.Error().Err(err).Str("sku", product.SKU).Msg("failed to update product")
		return nil, err
	}

	s.logger.Info().Str("sku", product.SKU).Msg("product updated")
	return product, nil
}

// Delete removes a product.
func (s *productService) Delete(ctx context.Context, sku string) error {
	product, err := s.repo.GetBySKU(ctx, normalizeSKU(sku))
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return model.ErrProductNotFound
	}

	if err := s.repo.Delete(ctx, product.ID); err != nil {
		s.logger.Error().Err(err).Str("sku", product.SKU).Msg("failed to delete product")
		return err
	}

	s.logger.Info().Str("sku", product.SKU).Msg("product deleted")
	return nil
}

// normalizeSKU trims and uppercases a SKU.
func normalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

// validateProductRequest validates the product request.
func validateProductRequest(req *model.ProductRequest) error {
	if req == nil {
		return fmt.Errorf("product request is nil")
	}
	if strings.TrimSpace(req.SKU) == "" {
		return fmt.Errorf("SKU is required")
	}
	if !strings.HasPrefix(normalizeSKU(req.SKU), "SKU") {
		return fmt.Errorf("SKU must start with 'SKU'")
	}
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if req.Price.IsNegative() {
		return fmt.Errorf("price cannot be negative")
	}
	if !req.Price.Equal(req.Price.Round(2)) {
		return fmt.Errorf("price must have at most two decimal places")
	}
	return nil
}

package product

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"servicehub-be/internal/logger"
)

// Service defines the business logic for products.
type Service interface {
	GetProducts(ctx context.Context, opts ListOptions) ([]*Product, int64, error)
	GetProduct(ctx context.Context, id uint, includeDeleted bool) (*Product, error)
	CreateProduct(ctx context.Context, input CreateInput) (*Product, error)
	UpdateProduct(ctx context.Context, id uint, input UpdateInput) (*Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetProducts(ctx context.Context, opts ListOptions) ([]*Product, int64, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "GetProducts"),
	)

	products, total, err := s.repo.GetList(ctx, opts)
	if err != nil {
		log.Error("failed to get products", zap.Error(err))
		return nil, 0, err
	}

	log.Info("GetProducts success", zap.Int("count", len(products)))
	return products, total, nil
}

// GetProduct hides soft-deleted products unless includeDeleted is set,
// which order views need to render historical items.
func (s *service) GetProduct(ctx context.Context, id uint, includeDeleted bool) (*Product, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	return s.repo.GetByID(ctx, id, includeDeleted)
}

func (s *service) CreateProduct(ctx context.Context, input CreateInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateProduct"),
		zap.String("name", input.Name),
	)

	if strings.TrimSpace(input.Name) == "" {
		log.Warn("CreateProduct validation failed: empty name")
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	if input.Price.IsNegative() {
		log.Warn("CreateProduct validation failed: negative price")
		return nil, ErrInvalidPrice
	}
	if input.CategoryID == 0 {
		return nil, ErrInvalidCategory
	}

	product, err := s.repo.Create(ctx, input)
	if err != nil {
		log.Error("failed to create product", zap.Error(err))
		return nil, err
	}

	log.Info("CreateProduct success", zap.Uint("product_id", product.ID))
	return product, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uint, input UpdateInput) (*Product, error) {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	if input.Price != nil && input.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if input.CategoryID != nil && *input.CategoryID == 0 {
		return nil, ErrInvalidCategory
	}
	return s.repo.Update(ctx, id, input)
}

func (s *service) DeleteProduct(ctx context.Context, id uint) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "DeleteProduct"),
		zap.Uint("product_id", id),
	)

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		log.Error("failed to delete product", zap.Error(err))
		return err
	}

	log.Info("DeleteProduct success")
	return nil
}

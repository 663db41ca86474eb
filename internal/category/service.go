package category

import (
	"context"
	"fmt"
	"strings"

	"servicehub-be/internal/logger"

	"go.uber.org/zap"
)

// Service defines the business logic for categories.
type Service interface {
	GetCategories(ctx context.Context, filter *string, limit, page *int32) ([]*Category, int64, error)
	GetCategory(ctx context.Context, id uint) (*Category, error)
	AddCategory(ctx context.Context, name, description string) (*Category, error)
	UpdateCategory(ctx context.Context, id uint, input UpdateInput) (*Category, error)
	DeleteCategory(ctx context.Context, id uint) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetCategories(ctx context.Context, filter *string, limit, page *int32) ([]*Category, int64, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "GetCategories"),
	)

	categories, total, err := s.repo.GetCategories(ctx, filter, limit, page)
	if err != nil {
		log.Error("failed to get categories", zap.Error(err))
		return nil, 0, err
	}

	log.Info("GetCategories success", zap.Int("count", len(categories)))
	return categories, total, nil
}

func (s *service) GetCategory(ctx context.Context, id uint) (*Category, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) AddCategory(ctx context.Context, name, description string) (*Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddCategory"),
		zap.String("name", name),
	)

	if strings.TrimSpace(name) == "" {
		log.Warn("AddCategory validation failed: empty name")
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}

	category, err := s.repo.AddCategory(ctx, name, description)
	if err != nil {
		log.Error("failed to add category", zap.Error(err))
		return nil, err
	}

	log.Info("AddCategory success", zap.Uint("category_id", category.ID))
	return category, nil
}

func (s *service) UpdateCategory(ctx context.Context, id uint, input UpdateInput) (*Category, error) {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	return s.repo.UpdateCategory(ctx, id, input)
}

func (s *service) DeleteCategory(ctx context.Context, id uint) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "DeleteCategory"),
		zap.Uint("category_id", id),
	)

	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		log.Error("failed to delete category", zap.Error(err))
		return err
	}

	log.Info("DeleteCategory success")
	return nil
}

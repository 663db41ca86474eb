package tag

import (
	"context"
	"fmt"
	"strings"

	"servicehub-be/internal/logger"

	"go.uber.org/zap"
)

// Service defines the business logic for tags.
type Service interface {
	GetTags(ctx context.Context, filter *string) ([]*Tag, error)
	GetTag(ctx context.Context, id uint) (*Tag, error)
	AddTag(ctx context.Context, name string, color *string) (*Tag, error)
	UpdateTag(ctx context.Context, id uint, input UpdateInput) (*Tag, error)
	DeleteTag(ctx context.Context, id uint) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetTags(ctx context.Context, filter *string) ([]*Tag, error) {
	return s.repo.GetTags(ctx, filter)
}

func (s *service) GetTag(ctx context.Context, id uint) (*Tag, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) AddTag(ctx context.Context, name string, color *string) (*Tag, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddTag"),
		zap.String("name", name),
	)

	if strings.TrimSpace(name) == "" {
		log.Warn("AddTag validation failed: empty name")
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}

	finalColor := DefaultColor
	if color != nil && strings.TrimSpace(*color) != "" {
		finalColor = *color
	}

	tag, err := s.repo.AddTag(ctx, name, finalColor)
	if err != nil {
		log.Error("failed to add tag", zap.Error(err))
		return nil, err
	}

	log.Info("AddTag success", zap.Uint("tag_id", tag.ID))
	return tag, nil
}

func (s *service) UpdateTag(ctx context.Context, id uint, input UpdateInput) (*Tag, error) {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	return s.repo.UpdateTag(ctx, id, input)
}

func (s *service) DeleteTag(ctx context.Context, id uint) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "DeleteTag"),
		zap.Uint("tag_id", id),
	)

	if err := s.repo.DeleteTag(ctx, id); err != nil {
		log.Error("failed to delete tag", zap.Error(err))
		return err
	}

	log.Info("DeleteTag success")
	return nil
}

package tag

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"servicehub-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetTags(ctx context.Context, filter *string) ([]*Tag, error)
	GetByID(ctx context.Context, id uint) (*Tag, error)
	AddTag(ctx context.Context, name, color string) (*Tag, error)
	UpdateTag(ctx context.Context, id uint, input UpdateInput) (*Tag, error)
	DeleteTag(ctx context.Context, id uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetTags(ctx context.Context, filter *string) ([]*Tag, error) {
	log := logger.FromCtx(ctx)

	query := "SELECT id, name, color, created_at FROM tags"
	args := []interface{}{}

	if filter != nil && *filter != "" {
		query += " WHERE name ILIKE $1"
		args = append(args, "%"+*filter+"%")
	}
	query += " ORDER BY name ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("DB query failed GetTags", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var tags []*Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt); err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, err
		}
		tags = append(tags, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tags, nil
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Tag, error) {
	var t Tag
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, color, created_at FROM tags WHERE id = $1
	`, id).Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) AddTag(ctx context.Context, name, color string) (*Tag, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("tag_name", name),
	)
	log.Info("AddTag started")

	query := `
		INSERT INTO tags (name, color)
		VALUES ($1, $2)
		RETURNING id, name, color, created_at
	`

	var t Tag
	err := r.db.QueryRowContext(ctx, query, name, color).
		Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt)
	if err != nil {
		log.Error("AddTag DB query failed", zap.Error(err))
		return nil, fmt.Errorf("add tag failed: %w", err)
	}

	log.Info("AddTag success", zap.Uint("tag_id", t.ID))
	return &t, nil
}

func (r *repository) UpdateTag(ctx context.Context, id uint, input UpdateInput) (*Tag, error) {
	set := []string{}
	args := []interface{}{}

	if input.Name != nil {
		set = append(set, fmt.Sprintf("name = $%d", len(args)+1))
		args = append(args, *input.Name)
	}
	if input.Color != nil {
		set = append(set, fmt.Sprintf("color = $%d", len(args)+1))
		args = append(args, *input.Color)
	}

	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	query := fmt.Sprintf(
		"UPDATE tags SET %s WHERE id = $%d RETURNING id, name, color, created_at",
		strings.Join(set, ", "), len(args)+1,
	)
	args = append(args, id)

	var t Tag
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update tag failed: %w", err)
	}

	return &t, nil
}

// DeleteTag detaches the tag from any products before removing it.
func (r *repository) DeleteTag(ctx context.Context, id uint) error {
	log := logger.FromCtx(ctx).With(
		zap.Uint("tag_id", id),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_tags WHERE tag_id = $1`, id); err != nil {
		log.Error("failed to detach tag from products", zap.Error(err))
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete tag", zap.Error(err))
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	log.Info("DeleteTag success")
	return nil
}

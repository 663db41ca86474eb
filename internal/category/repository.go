package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"servicehub-be/internal/logger"
	"servicehub-be/internal/utils"

	"go.uber.org/zap"
)

type Repository interface {
	GetCategories(ctx context.Context, filter *string, limit, page *int32) ([]*Category, int64, error)
	GetByID(ctx context.Context, id uint) (*Category, error)
	AddCategory(ctx context.Context, name, description string) (*Category, error)
	UpdateCategory(ctx context.Context, id uint, input UpdateInput) (*Category, error)
	DeleteCategory(ctx context.Context, id uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetCategories(
	ctx context.Context,
	filter *string,
	limit *int32,
	page *int32,
) ([]*Category, int64, error) {

	// ---------- DEFAULTS ----------
	finalLimit := int32(20)
	finalPage := int32(1)

	if limit != nil && *limit > 0 {
		finalLimit = *limit
	}
	if page != nil && *page > 0 {
		finalPage = *page
	}

	finalOffset := (finalPage - 1) * finalLimit

	log := logger.FromCtx(ctx).With(
		zap.String("filter", utils.PtrString(filter)),
		zap.Int32("limit", finalLimit),
		zap.Int32("page", finalPage),
	)
	log.Debug("GetCategories started")

	where := []string{}
	args := []interface{}{}

	// ---------- FILTER ----------
	if filter != nil && *filter != "" {
		where = append(where, fmt.Sprintf("c.name ILIKE $%d", len(args)+1))
		args = append(args, "%"+*filter+"%")
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	// ---------- COUNT ----------
	var total int64
	countQuery := "SELECT COUNT(*) FROM categories c" + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("count query failed", zap.Error(err))
		return nil, 0, err
	}

	// ---------- DATA ----------
	query := "SELECT c.id, c.name, c.description, c.created_at FROM categories c" + whereClause
	query += " ORDER BY c.name ASC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, finalLimit, finalOffset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("DB query failed GetCategories", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var categories []*Category

	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, 0, err
		}
		categories = append(categories, &c)
	}

	if err := rows.Err(); err != nil {
		log.Error("rows iteration failed", zap.Error(err))
		return nil, 0, err
	}

	return categories, total, nil
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Category, error) {
	var c Category
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_at FROM categories WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) AddCategory(ctx context.Context, name, description string) (*Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("category_name", name),
	)
	log.Info("AddCategory started")

	query := `
		INSERT INTO categories (name, description)
		VALUES ($1, $2)
		RETURNING id, name, description, created_at
	`

	var c Category
	err := r.db.QueryRowContext(ctx, query, name, description).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		log.Error("AddCategory DB query failed", zap.Error(err))
		return nil, fmt.Errorf("add category failed: %w", err)
	}

	log.Info("AddCategory success",
		zap.Uint("category_id", c.ID),
	)

	return &c, nil
}

func (r *repository) UpdateCategory(ctx context.Context, id uint, input UpdateInput) (*Category, error) {
	set := []string{}
	args := []interface{}{}

	if input.Name != nil {
		set = append(set, fmt.Sprintf("name = $%d", len(args)+1))
		args = append(args, *input.Name)
	}
	if input.Description != nil {
		set = append(set, fmt.Sprintf("description = $%d", len(args)+1))
		args = append(args, *input.Description)
	}

	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	query := fmt.Sprintf(
		"UPDATE categories SET %s WHERE id = $%d RETURNING id, name, description, created_at",
		strings.Join(set, ", "), len(args)+1,
	)
	args = append(args, id)

	var c Category
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update category failed: %w", err)
	}

	return &c, nil
}

// DeleteCategory refuses to orphan products; reassign or soft-delete
// them first.
func (r *repository) DeleteCategory(ctx context.Context, id uint) error {
	var productCount int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM products WHERE category_id = $1
	`, id).Scan(&productCount)
	if err != nil {
		return err
	}
	if productCount > 0 {
		return ErrInUse
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

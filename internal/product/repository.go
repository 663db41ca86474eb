package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"servicehub-be/internal/logger"
	"servicehub-be/internal/tag"
)

type Repository interface {
	GetList(ctx context.Context, opts ListOptions) ([]*Product, int64, error)
	GetByID(ctx context.Context, id uint, includeDeleted bool) (*Product, error)
	Create(ctx context.Context, input CreateInput) (*Product, error)
	Update(ctx context.Context, id uint, input UpdateInput) (*Product, error)
	SoftDelete(ctx context.Context, id uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `
	p.id, p.name, p.description, p.price, p.image_url,
	p.category_id, c.name AS category_name,
	p.is_deleted, p.created_at, p.updated_at
`

func (r *repository) GetList(ctx context.Context, opts ListOptions) ([]*Product, int64, error) {
	// ---------- DEFAULTS ----------
	finalLimit := int32(20)
	finalPage := int32(1)

	if opts.Limit != nil && *opts.Limit > 0 {
		finalLimit = *opts.Limit
	}
	if finalLimit > 100 {
		finalLimit = 100
	}
	if opts.Page != nil && *opts.Page > 0 {
		finalPage = *opts.Page
	}
	finalOffset := (finalPage - 1) * finalLimit

	log := logger.FromCtx(ctx).With(
		zap.Int32("limit", finalLimit),
		zap.Int32("page", finalPage),
	)
	log.Debug("GetList started")

	where := []string{}
	args := []interface{}{}

	if !opts.IncludeDeleted {
		where = append(where, "p.is_deleted = FALSE")
	}

	// ---------- FILTERS ----------
	if opts.Search != nil && *opts.Search != "" {
		where = append(where, fmt.Sprintf(
			"(p.name ILIKE $%d OR p.description ILIKE $%d)",
			len(args)+1, len(args)+1,
		))
		args = append(args, "%"+*opts.Search+"%")
	}
	if opts.CategoryID != nil {
		where = append(where, fmt.Sprintf("p.category_id = $%d", len(args)+1))
		args = append(args, *opts.CategoryID)
	}
	if opts.TagID != nil {
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM product_tags pt WHERE pt.product_id = p.id AND pt.tag_id = $%d)",
			len(args)+1,
		))
		args = append(args, *opts.TagID)
	}
	if opts.MinPrice != nil {
		where = append(where, fmt.Sprintf("p.price >= $%d", len(args)+1))
		args = append(args, opts.MinPrice.String())
	}
	if opts.MaxPrice != nil {
		where = append(where, fmt.Sprintf("p.price <= $%d", len(args)+1))
		args = append(args, opts.MaxPrice.String())
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	baseFrom := " FROM products p JOIN categories c ON c.id = p.category_id"

	// ---------- COUNT ----------
	var total int64
	countQuery := "SELECT COUNT(*)" + baseFrom + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("count query failed", zap.Error(err))
		return nil, 0, err
	}

	// ---------- DATA ----------
	query := "SELECT " + productColumns + baseFrom + whereClause
	query += " ORDER BY p.created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, finalLimit, finalOffset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("DB query failed GetList", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL,
			&p.CategoryID, &p.CategoryName,
			&p.IsDeleted, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, 0, err
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.attachTags(ctx, products); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// attachTags loads tags for the given products in one query.
func (r *repository) attachTags(ctx context.Context, products []*Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(products))
	byID := make(map[uint]*Product, len(products))
	for _, p := range products {
		ids = append(ids, int64(p.ID))
		byID[p.ID] = p
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT pt.product_id, t.id, t.name, t.color, t.created_at
		FROM product_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.product_id = ANY($1)
		ORDER BY t.name ASC
	`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var productID uint
		var tg tag.Tag
		if err := rows.Scan(&productID, &tg.ID, &tg.Name, &tg.Color, &tg.CreatedAt); err != nil {
			return err
		}
		if p, ok := byID[productID]; ok {
			p.Tags = append(p.Tags, &tg)
		}
	}
	return rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id uint, includeDeleted bool) (*Product, error) {
	query := "SELECT " + productColumns + ` FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1`
	if !includeDeleted {
		query += " AND p.is_deleted = FALSE"
	}

	var p Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL,
		&p.CategoryID, &p.CategoryName,
		&p.IsDeleted, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.attachTags(ctx, []*Product{&p}); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Create(ctx context.Context, input CreateInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("product_name", input.Name),
	)
	log.Info("Create product started")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	var p Product
	err = tx.QueryRowContext(ctx, `
		INSERT INTO products (name, description, price, image_url, category_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, description, price, image_url, category_id, is_deleted, created_at, updated_at
	`, input.Name, input.Description, input.Price.String(), input.ImageURL, input.CategoryID).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL,
		&p.CategoryID, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrInvalidCategory
		}
		log.Error("insert product failed", zap.Error(err))
		return nil, fmt.Errorf("create product failed: %w", err)
	}

	if err := setTagsTx(ctx, tx, p.ID, input.TagIDs); err != nil {
		log.Error("attach tags failed", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	log.Info("Create product success", zap.Uint("product_id", p.ID))

	return r.GetByID(ctx, p.ID, false)
}

func (r *repository) Update(ctx context.Context, id uint, input UpdateInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.Uint("product_id", id),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

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
	if input.Price != nil {
		set = append(set, fmt.Sprintf("price = $%d", len(args)+1))
		args = append(args, input.Price.String())
	}
	if input.ImageURL != nil {
		set = append(set, fmt.Sprintf("image_url = $%d", len(args)+1))
		args = append(args, *input.ImageURL)
	}
	if input.CategoryID != nil {
		set = append(set, fmt.Sprintf("category_id = $%d", len(args)+1))
		args = append(args, *input.CategoryID)
	}

	if len(set) > 0 {
		set = append(set, "updated_at = NOW()")
		query := fmt.Sprintf(
			"UPDATE products SET %s WHERE id = $%d AND is_deleted = FALSE",
			strings.Join(set, ", "), len(args)+1,
		)
		args = append(args, id)

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			if isForeignKeyViolation(err) {
				return nil, ErrInvalidCategory
			}
			log.Error("update product failed", zap.Error(err))
			return nil, fmt.Errorf("update product failed: %w", err)
		}
		affected, _ := res.RowsAffected()
		if affected == 0 {
			return nil, ErrNotFound
		}
	}

	if input.TagIDs != nil {
		if err := setTagsTx(ctx, tx, id, input.TagIDs); err != nil {
			log.Error("replace tags failed", zap.Error(err))
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	return r.GetByID(ctx, id, false)
}

// SoftDelete hides the product from listings; order items keep their
// captured snapshot of it.
func (r *repository) SoftDelete(ctx context.Context, id uint) error {
	log := logger.FromCtx(ctx).With(
		zap.Uint("product_id", id),
	)

	res, err := r.db.ExecContext(ctx, `
		UPDATE products SET is_deleted = TRUE, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
	`, id)
	if err != nil {
		log.Error("soft delete failed", zap.Error(err))
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}

	log.Info("SoftDelete success")
	return nil
}

// setTagsTx replaces the product's tag set inside the caller's transaction.
func setTagsTx(ctx context.Context, tx *sql.Tx, productID uint, tagIDs []uint) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM product_tags WHERE product_id = $1`, productID); err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO product_tags (product_id, tag_id) VALUES ($1, $2)
		`, productID, tagID); err != nil {
			return err
		}
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}

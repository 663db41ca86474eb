package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"servicehub-be/internal/logger"
	"servicehub-be/internal/metrics"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// createAttempts bounds order-number regeneration when the unique
// constraint rejects a generated number.
const createAttempts = 5

type Repository interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error)
	GetOrders(ctx context.Context, filter *FilterInput, sort *SortInput, limit, page *int32) ([]*Order, int64, error)
	GetOrderDetail(ctx context.Context, orderID uint) (*Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uint, status Status) error
	DeleteOrder(ctx context.Context, orderID uint) error

	AddItem(ctx context.Context, orderID uint, item NewItem) (*OrderItem, error)
	UpdateItem(ctx context.Context, itemID uint, quantity int, discountPercent decimal.Decimal) (*OrderItem, error)
	RemoveItem(ctx context.Context, itemID uint) error

	RecalculateTotal(ctx context.Context, orderID uint) (decimal.Decimal, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// CreateOrder persists a new order with a freshly assigned order number.
// The number is generated at first save only; a unique-constraint
// collision restarts the transaction with a new random value.
func (r *repository) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrder"),
		zap.Int("item_count", len(input.Items)),
	)

	var lastErr error
	for attempt := 1; attempt <= createAttempts; attempt++ {
		number := GenerateOrderNumber()

		o, err := r.createOrderOnce(ctx, input, number)
		if err == nil {
			log.Info("order created",
				zap.Uint("order_id", o.ID),
				zap.String("order_number", o.OrderNumber),
				zap.Int("attempt", attempt),
			)
			metrics.OrdersCreated.Inc()
			return o, nil
		}

		if isUniqueViolation(err) {
			log.Warn("order number collision, retrying",
				zap.String("order_number", number),
				zap.Int("attempt", attempt),
			)
			lastErr = err
			continue
		}

		log.Error("failed to create order", zap.Error(err))
		return nil, err
	}

	return nil, fmt.Errorf("order number collision persisted after %d attempts: %w", createAttempts, lastErr)
}

func (r *repository) createOrderOnce(ctx context.Context, input CreateOrderInput, number string) (*Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	o := &Order{
		OrderNumber:     number,
		CustomerName:    input.CustomerName,
		Phone:           input.Phone,
		DeliveryAddress: input.DeliveryAddress,
		Status:          StatusNew,
		TotalAmount:     decimal.Zero,
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (order_number, customer_name, phone, delivery_address, status, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`,
		o.OrderNumber,
		o.CustomerName,
		o.Phone,
		o.DeliveryAddress,
		o.Status,
		o.TotalAmount,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return nil, err
	}

	for _, item := range input.Items {
		inserted, err := r.insertItemTx(ctx, tx, o.ID, item)
		if err != nil {
			return nil, err
		}
		o.Items = append(o.Items, inserted)
	}

	if len(input.Items) > 0 {
		o.TotalAmount, err = r.recalcTotalTx(ctx, tx, o.ID)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	return o, nil
}

// insertItemTx snapshots the product price when the caller did not supply
// one, so later product price changes never touch this line.
func (r *repository) insertItemTx(ctx context.Context, tx *sql.Tx, orderID uint, item NewItem) (*OrderItem, error) {
	unitPrice := decimal.Zero
	if item.UnitPrice != nil {
		unitPrice = *item.UnitPrice
	} else {
		err := tx.QueryRowContext(ctx, `
			SELECT price FROM products WHERE id = $1 AND is_deleted = FALSE
		`, item.ProductID).Scan(&unitPrice)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		if err != nil {
			return nil, err
		}
	}

	oi := &OrderItem{
		OrderID:         orderID,
		ProductID:       item.ProductID,
		Quantity:        item.Quantity,
		DiscountPercent: item.DiscountPercent,
		UnitPrice:       unitPrice,
		TotalPrice:      LineTotal(unitPrice, item.Quantity, item.DiscountPercent),
	}

	err := tx.QueryRowContext(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity, discount_percent, unit_price, total_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,
		oi.OrderID,
		oi.ProductID,
		oi.Quantity,
		oi.DiscountPercent,
		oi.UnitPrice,
		oi.TotalPrice,
	).Scan(&oi.ID)
	if err != nil {
		return nil, err
	}

	return oi, nil
}

// recalcTotalTx rereads the order's current line items, sums their
// discounted totals and writes the sum back. It runs inside the same
// transaction as the line-item mutation that triggered it so the next
// read observes a consistent total.
func (r *repository) recalcTotalTx(ctx context.Context, tx *sql.Tx, orderID uint) (decimal.Decimal, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT unit_price, quantity, discount_percent
		FROM order_items
		WHERE order_id = $1
	`, orderID)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var unitPrice, discount decimal.Decimal
		var quantity int
		if err := rows.Scan(&unitPrice, &quantity, &discount); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(LineTotal(unitPrice, quantity, discount))
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE orders SET total_amount = $1 WHERE id = $2
	`, total, orderID)
	if err != nil {
		return decimal.Zero, err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return decimal.Zero, ErrOrderNotFound
	}

	metrics.TotalRecalcs.Inc()
	return total, nil
}

func (r *repository) AddItem(ctx context.Context, orderID uint, item NewItem) (*OrderItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "AddItem"),
		zap.Uint("order_id", orderID),
		zap.Uint("product_id", item.ProductID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var exists bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)
	`, orderID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrOrderNotFound
	}

	oi, err := r.insertItemTx(ctx, tx, orderID, item)
	if err != nil {
		log.Error("failed to insert order item", zap.Error(err))
		return nil, err
	}

	if _, err := r.recalcTotalTx(ctx, tx, orderID); err != nil {
		log.Error("failed to recalculate order total", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	log.Info("order item added", zap.Uint("item_id", oi.ID))
	return oi, nil
}

func (r *repository) UpdateItem(ctx context.Context, itemID uint, quantity int, discountPercent decimal.Decimal) (*OrderItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateItem"),
		zap.Uint("item_id", itemID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Captured price is read, never rewritten.
	oi := &OrderItem{ID: itemID, Quantity: quantity, DiscountPercent: discountPercent}
	err = tx.QueryRowContext(ctx, `
		SELECT order_id, product_id, unit_price FROM order_items WHERE id = $1
	`, itemID).Scan(&oi.OrderID, &oi.ProductID, &oi.UnitPrice)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}

	oi.TotalPrice = LineTotal(oi.UnitPrice, quantity, discountPercent)

	_, err = tx.ExecContext(ctx, `
		UPDATE order_items
		SET quantity = $1, discount_percent = $2, total_price = $3
		WHERE id = $4
	`, oi.Quantity, oi.DiscountPercent, oi.TotalPrice, oi.ID)
	if err != nil {
		log.Error("failed to update order item", zap.Error(err))
		return nil, err
	}

	if _, err := r.recalcTotalTx(ctx, tx, oi.OrderID); err != nil {
		log.Error("failed to recalculate order total", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	return oi, nil
}

func (r *repository) RemoveItem(ctx context.Context, itemID uint) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "RemoveItem"),
		zap.Uint("item_id", itemID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var orderID uint
	err = tx.QueryRowContext(ctx, `
		DELETE FROM order_items WHERE id = $1 RETURNING order_id
	`, itemID).Scan(&orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrItemNotFound
	}
	if err != nil {
		log.Error("failed to delete order item", zap.Error(err))
		return err
	}

	if _, err := r.recalcTotalTx(ctx, tx, orderID); err != nil {
		log.Error("failed to recalculate order total", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	log.Info("order item removed", zap.Uint("order_id", orderID))
	return nil
}

// RecalculateTotal re-derives the stored total outside a line-item
// mutation. Calling it with no intervening changes yields the same total.
func (r *repository) RecalculateTotal(ctx context.Context, orderID uint) (decimal.Decimal, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	total, err := r.recalcTotalTx(ctx, tx, orderID)
	if err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, err
	}
	committed = true

	return total, nil
}

func (r *repository) GetOrders(
	ctx context.Context,
	filter *FilterInput,
	sort *SortInput,
	limit, page *int32,
) ([]*Order, int64, error) {

	// ---------- PAGINATION ----------
	finalLimit := int32(20)
	finalPage := int32(1)

	if limit != nil && *limit > 0 {
		finalLimit = *limit
	}
	if page != nil && *page > 0 {
		finalPage = *page
	}
	if finalLimit > 100 {
		finalLimit = 100
	}

	offset := (finalPage - 1) * finalLimit

	log := logger.FromCtx(ctx).With(
		zap.String("method", "GetOrders"),
		zap.Int32("limit", finalLimit),
		zap.Int32("page", finalPage),
		zap.Int32("offset", offset),
	)

	log.Debug("start get orders")

	// ---------- FILTERING ----------
	// The WHERE clause is shared by the count and data queries so the
	// returned total reflects the filter, not the page.
	whereClause := " FROM orders o WHERE 1=1"

	args := []any{}
	argIndex := 1

	if filter != nil {

		if filter.Search != nil && *filter.Search != "" {
			whereClause += fmt.Sprintf(
				" AND (o.order_number ILIKE $%d OR o.customer_name ILIKE $%d OR o.phone ILIKE $%d)",
				argIndex, argIndex, argIndex,
			)
			args = append(args, "%"+*filter.Search+"%")
			argIndex++
		}

		if filter.Status != nil && *filter.Status != "" {
			whereClause += fmt.Sprintf(" AND o.status = $%d", argIndex)
			args = append(args, *filter.Status)
			argIndex++
		}

		if filter.DateFrom != nil {
			whereClause += fmt.Sprintf(" AND o.created_at >= $%d", argIndex)
			args = append(args, *filter.DateFrom)
			argIndex++
		}

		if filter.DateTo != nil {
			whereClause += fmt.Sprintf(" AND o.created_at <= $%d", argIndex)
			args = append(args, *filter.DateTo)
			argIndex++
		}
	}

	// ---------- COUNT ----------
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*)"+whereClause, args...).Scan(&total); err != nil {
		log.Error("failed to count orders", zap.Error(err))
		return nil, 0, err
	}

	// ---------- BASE QUERY ----------
	query := `
		SELECT
			o.id,
			o.order_number,
			o.customer_name,
			o.phone,
			o.delivery_address,
			o.status,
			o.total_amount,
			o.created_at
	` + whereClause

	// ---------- SORTING ----------
	orderBy := "o.created_at DESC"

	if sort != nil {
		dir := strings.ToUpper(sort.Direction)
		if dir != "ASC" && dir != "DESC" {
			dir = "DESC"
		}

		switch sort.Field {
		case SortFieldTotal:
			orderBy = "o.total_amount " + dir
		case SortFieldCreatedAt:
			orderBy = "o.created_at " + dir
		}
	}

	query += " ORDER BY " + orderBy

	// ---------- PAGINATION ----------
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, finalLimit, offset)

	log.Debug("executing get orders query",
		zap.String("query", query),
		zap.Any("args", args),
	)

	// ---------- EXECUTE ----------
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var orders []*Order

	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID,
			&o.OrderNumber,
			&o.CustomerName,
			&o.Phone,
			&o.DeliveryAddress,
			&o.Status,
			&o.TotalAmount,
			&o.CreatedAt,
		); err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, 0, err
		}
		orders = append(orders, &o)
	}

	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, 0, err
	}

	log.Info("get orders success",
		zap.Int("count", len(orders)),
		zap.Int64("total", total),
	)

	return orders, total, nil
}

func (r *repository) GetOrderDetail(ctx context.Context, orderID uint) (*Order, error) {
	var o Order
	err := r.db.QueryRowContext(ctx, `
		SELECT id, order_number, customer_name, phone, delivery_address, status, total_amount, created_at
		FROM orders WHERE id = $1
	`, orderID).Scan(
		&o.ID,
		&o.OrderNumber,
		&o.CustomerName,
		&o.Phone,
		&o.DeliveryAddress,
		&o.Status,
		&o.TotalAmount,
		&o.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.id, oi.product_id, oi.quantity, oi.discount_percent, oi.unit_price, oi.total_price, p.name
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = $1
		ORDER BY oi.id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItem
		item.OrderID = o.ID
		if err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.Quantity,
			&item.DiscountPercent,
			&item.UnitPrice,
			&item.TotalPrice,
			&item.ProductName,
		); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &o, nil
}

func (r *repository) UpdateOrderStatus(ctx context.Context, orderID uint, status Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1 WHERE id = $2
	`, status, orderID)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// DeleteOrder removes the order and the line items it owns in one
// transaction. Ownership is explicit: items go first, no cascade.
func (r *repository) DeleteOrder(ctx context.Context, orderID uint) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "DeleteOrder"),
		zap.Uint("order_id", orderID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		log.Error("failed to delete order items", zap.Error(err))
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		log.Error("failed to delete order", zap.Error(err))
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderNotFound
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	log.Info("order deleted")
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

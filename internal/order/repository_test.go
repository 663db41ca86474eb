package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectRecalc(mock sqlmock.Sqlmock, rows *sqlmock.Rows) {
	mock.ExpectQuery("SELECT unit_price, quantity, discount_percent").
		WillReturnRows(rows)
	mock.ExpectExec("UPDATE orders SET total_amount").
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func itemRows(rows ...[]driverValue) *sqlmock.Rows {
	r := sqlmock.NewRows([]string{"unit_price", "quantity", "discount_percent"})
	for _, row := range rows {
		r.AddRow(row[0], row[1], row[2])
	}
	return r
}

type driverValue = interface{}

func TestRepository_CreateOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success_NoItems", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))
		mock.ExpectCommit()

		o, err := repo.CreateOrder(context.Background(), CreateOrderInput{
			CustomerName:    "Ivanov Ivan",
			Phone:           "+79999999999",
			DeliveryAddress: "Moscow",
		})
		assert.NoError(t, err)
		assert.Equal(t, uint(1), o.ID)
		assert.Regexp(t, `^ORD-[0-9A-F]{8}$`, o.OrderNumber)
		assert.Equal(t, StatusNew, o.Status)
		assert.True(t, o.TotalAmount.IsZero())
	})

	t.Run("Success_WithItems_RecalculatesTotal", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(2, time.Now()))
		// snapshot product price, then insert the line
		mock.ExpectQuery("SELECT price FROM products").
			WithArgs(uint(10)).
			WillReturnRows(sqlmock.NewRows([]string{"price"}).AddRow("100.00"))
		mock.ExpectQuery("INSERT INTO order_items").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		expectRecalc(mock, itemRows([]driverValue{"100.00", 3, "10"}))
		mock.ExpectCommit()

		o, err := repo.CreateOrder(context.Background(), CreateOrderInput{
			CustomerName:    "Ivanov Ivan",
			Phone:           "+79999999999",
			DeliveryAddress: "Moscow",
			Items: []NewItem{
				{ProductID: 10, Quantity: 3, DiscountPercent: dec("10")},
			},
		})
		assert.NoError(t, err)
		require.Len(t, o.Items, 1)
		assert.True(t, dec("100.00").Equal(o.Items[0].UnitPrice))
		assert.True(t, dec("270.00").Equal(o.TotalAmount), "got %s", o.TotalAmount)
	})

	t.Run("RetriesOnDuplicateNumber", func(t *testing.T) {
		// first attempt hits the unique constraint, second succeeds
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "orders_order_number_key"})
		mock.ExpectRollback()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(3, time.Now()))
		mock.ExpectCommit()

		o, err := repo.CreateOrder(context.Background(), CreateOrderInput{
			CustomerName:    "Petrov Petr",
			Phone:           "+78888888888",
			DeliveryAddress: "Kazan",
		})
		assert.NoError(t, err)
		assert.Equal(t, uint(3), o.ID)
	})

	t.Run("PersistenceFailurePropagates", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").
			WillReturnError(errors.New("connection refused"))
		mock.ExpectRollback()

		_, err := repo.CreateOrder(context.Background(), CreateOrderInput{
			CustomerName:    "Petrov Petr",
			Phone:           "+78888888888",
			DeliveryAddress: "Kazan",
		})
		assert.Error(t, err)
	})
}

func TestRepository_AddItem(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success_SnapshotsProductPrice", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(uint(1)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery("SELECT price FROM products").
			WithArgs(uint(10)).
			WillReturnRows(sqlmock.NewRows([]string{"price"}).AddRow("50.00"))
		mock.ExpectQuery("INSERT INTO order_items").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))
		expectRecalc(mock, itemRows(
			[]driverValue{"100.00", 3, "10"},
			[]driverValue{"50.00", 1, "0"},
		))
		mock.ExpectCommit()

		oi, err := repo.AddItem(context.Background(), 1, NewItem{ProductID: 10, Quantity: 1, DiscountPercent: dec("0")})
		assert.NoError(t, err)
		assert.Equal(t, uint(8), oi.ID)
		assert.True(t, dec("50.00").Equal(oi.UnitPrice))
		assert.True(t, dec("50.00").Equal(oi.TotalPrice))
	})

	t.Run("Success_ExplicitUnitPrice", func(t *testing.T) {
		price := dec("80.00")

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(uint(1)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		// no product lookup: the caller supplied the captured price
		mock.ExpectQuery("INSERT INTO order_items").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
		expectRecalc(mock, itemRows([]driverValue{"80.00", 2, "25"}))
		mock.ExpectCommit()

		oi, err := repo.AddItem(context.Background(), 1, NewItem{
			ProductID:       10,
			Quantity:        2,
			DiscountPercent: dec("25"),
			UnitPrice:       &price,
		})
		assert.NoError(t, err)
		assert.True(t, dec("120.00").Equal(oi.TotalPrice))
	})

	t.Run("OrderNotFound", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(uint(99)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectRollback()

		_, err := repo.AddItem(context.Background(), 99, NewItem{ProductID: 10, Quantity: 1, DiscountPercent: dec("0")})
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("SoftDeletedProductRejected", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(uint(1)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery("SELECT price FROM products").
			WithArgs(uint(66)).
			WillReturnRows(sqlmock.NewRows([]string{"price"}))
		mock.ExpectRollback()

		_, err := repo.AddItem(context.Background(), 1, NewItem{ProductID: 66, Quantity: 1, DiscountPercent: dec("0")})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestRepository_UpdateItem(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success_KeepsCapturedPrice", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT order_id, product_id, unit_price FROM order_items").
			WithArgs(uint(7)).
			WillReturnRows(sqlmock.NewRows([]string{"order_id", "product_id", "unit_price"}).AddRow(1, 10, "100.00"))
		mock.ExpectExec("UPDATE order_items").
			WillReturnResult(sqlmock.NewResult(0, 1))
		expectRecalc(mock, itemRows([]driverValue{"100.00", 5, "20"}))
		mock.ExpectCommit()

		oi, err := repo.UpdateItem(context.Background(), 7, 5, dec("20"))
		assert.NoError(t, err)
		assert.True(t, dec("100.00").Equal(oi.UnitPrice))
		assert.True(t, dec("400.00").Equal(oi.TotalPrice))
	})

	t.Run("ItemNotFound", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT order_id, product_id, unit_price FROM order_items").
			WithArgs(uint(99)).
			WillReturnRows(sqlmock.NewRows([]string{"order_id", "product_id", "unit_price"}))
		mock.ExpectRollback()

		_, err := repo.UpdateItem(context.Background(), 99, 1, dec("0"))
		assert.ErrorIs(t, err, ErrItemNotFound)
	})
}

func TestRepository_RemoveItem(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("DELETE FROM order_items").
			WithArgs(uint(8)).
			WillReturnRows(sqlmock.NewRows([]string{"order_id"}).AddRow(1))
		expectRecalc(mock, itemRows([]driverValue{"100.00", 3, "10"}))
		mock.ExpectCommit()

		assert.NoError(t, repo.RemoveItem(context.Background(), 8))
	})

	t.Run("ItemNotFound", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("DELETE FROM order_items").
			WithArgs(uint(99)).
			WillReturnRows(sqlmock.NewRows([]string{"order_id"}))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.RemoveItem(context.Background(), 99), ErrItemNotFound)
	})
}

func TestRepository_RecalculateTotal_Idempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		expectRecalc(mock, itemRows(
			[]driverValue{"100.00", 3, "10"},
			[]driverValue{"50.00", 1, "0"},
		))
		mock.ExpectCommit()
	}

	first, err := repo.RecalculateTotal(context.Background(), 1)
	require.NoError(t, err)
	second, err := repo.RecalculateTotal(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, dec("320.00").Equal(first), "got %s", first)
	assert.True(t, first.Equal(second))
}

func TestRepository_DeleteOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success_DeletesItemsFirst", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM order_items").
			WithArgs(uint(1)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("DELETE FROM orders").
			WithArgs(uint(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.DeleteOrder(context.Background(), 1))
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM order_items").
			WithArgs(uint(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM orders").
			WithArgs(uint(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.DeleteOrder(context.Background(), 99), ErrOrderNotFound)
	})
}

func TestRepository_UpdateOrderStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE orders SET status").
			WithArgs(StatusShipped, uint(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateOrderStatus(context.Background(), 1, StatusShipped))
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec("UPDATE orders SET status").
			WithArgs(StatusShipped, uint(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.UpdateOrderStatus(context.Background(), 99, StatusShipped), ErrOrderNotFound)
	})
}

func TestRepository_GetOrderDetail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, order_number, customer_name").
			WithArgs(uint(1)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "order_number", "customer_name", "phone", "delivery_address", "status", "total_amount", "created_at",
			}).AddRow(1, "ORD-3F9A2B7C", "Ivanov Ivan", "+79999999999", "Moscow", "new", "320.00", time.Now()))

		mock.ExpectQuery("SELECT oi.id, oi.product_id").
			WithArgs(uint(1)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "product_id", "quantity", "discount_percent", "unit_price", "total_price", "name",
			}).
				AddRow(7, 10, 3, "10", "100.00", "270.00", "Web development").
				AddRow(8, 11, 1, "0", "50.00", "50.00", "Logo design"))

		o, err := repo.GetOrderDetail(context.Background(), 1)
		assert.NoError(t, err)
		assert.Equal(t, "ORD-3F9A2B7C", o.OrderNumber)
		require.Len(t, o.Items, 2)
		assert.Equal(t, "Web development", o.Items[0].ProductName)
		assert.True(t, dec("320.00").Equal(o.TotalAmount))
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, order_number, customer_name").
			WithArgs(uint(99)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetOrderDetail(context.Background(), 99)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestRepository_GetOrders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	orderCols := []string{"id", "order_number", "customer_name", "phone", "delivery_address", "status", "total_amount", "created_at"}

	t.Run("Success_Defaults", func(t *testing.T) {
		rows := sqlmock.NewRows(orderCols).
			AddRow(1, "ORD-3F9A2B7C", "A", "+7", "addr", "new", "320.00", time.Now()).
			AddRow(2, "ORD-00FF00FF", "B", "+7", "addr", "shipped", "50.00", time.Now())

		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM orders o WHERE 1=1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		mock.ExpectQuery("SELECT (.+) FROM orders o WHERE 1=1 ORDER BY o.created_at DESC").
			WithArgs(int32(20), int32(0)).
			WillReturnRows(rows)

		res, total, err := repo.GetOrders(context.Background(), nil, nil, nil, nil)
		assert.NoError(t, err)
		assert.Len(t, res, 2)
		assert.Equal(t, int64(2), total)
	})

	t.Run("Success_StatusFilter", func(t *testing.T) {
		status := StatusShipped
		limit := int32(10)
		page := int32(2)

		rows := sqlmock.NewRows(orderCols).
			AddRow(2, "ORD-00FF00FF", "B", "+7", "addr", "shipped", "50.00", time.Now())

		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM orders o WHERE 1=1 AND o.status = \\$1").
			WithArgs(status).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

		mock.ExpectQuery("SELECT (.+) FROM orders o WHERE 1=1 AND o.status = \\$1 ORDER BY o.created_at DESC LIMIT \\$2 OFFSET \\$3").
			WithArgs(status, limit, int32(10)).
			WillReturnRows(rows)

		res, total, err := repo.GetOrders(context.Background(), &FilterInput{Status: &status}, nil, &limit, &page)
		assert.NoError(t, err)
		assert.Len(t, res, 1)
		assert.Equal(t, StatusShipped, res[0].Status)
		// Total is the filtered row count, not the page length.
		assert.Equal(t, int64(11), total)
	})

	t.Run("Success_SortByTotal", func(t *testing.T) {
		rows := sqlmock.NewRows(orderCols).
			AddRow(1, "ORD-3F9A2B7C", "A", "+7", "addr", "new", "320.00", time.Now())

		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM orders o WHERE 1=1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		mock.ExpectQuery("SELECT (.+) FROM orders o WHERE 1=1 ORDER BY o.total_amount ASC").
			WithArgs(int32(20), int32(0)).
			WillReturnRows(rows)

		res, total, err := repo.GetOrders(context.Background(), nil, &SortInput{Field: SortFieldTotal, Direction: "asc"}, nil, nil)
		assert.NoError(t, err)
		assert.Len(t, res, 1)
		assert.Equal(t, int64(1), total)
	})
}

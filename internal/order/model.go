package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusNew        Status = "new"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID              uint
	OrderNumber     string
	CustomerName    string
	Phone           string
	DeliveryAddress string
	Status          Status
	TotalAmount     decimal.Decimal
	CreatedAt       time.Time
	Items           []*OrderItem
}

type OrderItem struct {
	ID              uint
	OrderID         uint
	ProductID       uint
	ProductName     string
	Quantity        int
	DiscountPercent decimal.Decimal
	// UnitPrice is captured from the product at item creation and
	// never recalculated, so later product price changes leave
	// historical orders untouched.
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// NewItem is a line item about to be attached to an order.
// UnitPrice == nil means "snapshot the product's current price".
type NewItem struct {
	ProductID       uint
	Quantity        int
	DiscountPercent decimal.Decimal
	UnitPrice       *decimal.Decimal
}

type FilterInput struct {
	Search   *string
	Status   *Status
	DateFrom *time.Time
	DateTo   *time.Time
}

type SortField string

const (
	SortFieldCreatedAt SortField = "CREATED_AT"
	SortFieldTotal     SortField = "TOTAL"
)

type SortInput struct {
	Field     SortField
	Direction string
}

type CreateOrderInput struct {
	CustomerName    string
	Phone           string
	DeliveryAddress string
	Items           []NewItem
}

package order

import (
	"context"
	"fmt"
	"strings"

	"servicehub-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error)
	GetOrders(ctx context.Context, filter *FilterInput, sort *SortInput, limit, page *int32) ([]*Order, int64, error)
	GetOrderDetail(ctx context.Context, orderID uint) (*Order, error)
	UpdateStatus(ctx context.Context, orderID uint, status Status) error
	DeleteOrder(ctx context.Context, orderID uint) error

	AddItem(ctx context.Context, orderID uint, item NewItem) (*OrderItem, error)
	UpdateItem(ctx context.Context, itemID uint, quantity int, discountPercent decimal.Decimal) (*OrderItem, error)
	RemoveItem(ctx context.Context, itemID uint) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// validateLineItem rejects bad input before any persistence happens.
// The pricing arithmetic itself trusts already-validated values.
func validateLineItem(item NewItem) error {
	if item.ProductID == 0 {
		return fmt.Errorf("%w: product is required", ErrInvalidLineItem)
	}
	if item.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidLineItem)
	}
	if item.DiscountPercent.IsNegative() || item.DiscountPercent.GreaterThan(hundred) {
		return fmt.Errorf("%w: discount must be between 0 and 100", ErrInvalidLineItem)
	}
	if item.UnitPrice != nil && item.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: unit price cannot be negative", ErrInvalidLineItem)
	}
	return nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.Int("item_count", len(input.Items)),
	)

	if strings.TrimSpace(input.CustomerName) == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.Phone) == "" {
		return nil, fmt.Errorf("%w: phone is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.DeliveryAddress) == "" {
		return nil, fmt.Errorf("%w: delivery address is required", ErrInvalidInput)
	}

	for i, item := range input.Items {
		if err := validateLineItem(item); err != nil {
			log.Warn("line item rejected", zap.Int("index", i), zap.Error(err))
			return nil, err
		}
	}

	o, err := s.repo.CreateOrder(ctx, input)
	if err != nil {
		log.Error("failed to create order", zap.Error(err))
		return nil, err
	}

	log.Info("order created",
		zap.Uint("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
	)
	return o, nil
}

func (s *service) GetOrders(ctx context.Context, filter *FilterInput, sort *SortInput, limit, page *int32) ([]*Order, int64, error) {
	return s.repo.GetOrders(ctx, filter, sort, limit, page)
}

func (s *service) GetOrderDetail(ctx context.Context, orderID uint) (*Order, error) {
	if orderID == 0 {
		return nil, fmt.Errorf("%w: order id is required", ErrInvalidInput)
	}
	return s.repo.GetOrderDetail(ctx, orderID)
}

func (s *service) UpdateStatus(ctx context.Context, orderID uint, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	return s.repo.UpdateOrderStatus(ctx, orderID, status)
}

func (s *service) DeleteOrder(ctx context.Context, orderID uint) error {
	if orderID == 0 {
		return fmt.Errorf("%w: order id is required", ErrInvalidInput)
	}
	return s.repo.DeleteOrder(ctx, orderID)
}

func (s *service) AddItem(ctx context.Context, orderID uint, item NewItem) (*OrderItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddItem"),
		zap.Uint("order_id", orderID),
		zap.Uint("product_id", item.ProductID),
	)

	if orderID == 0 {
		return nil, fmt.Errorf("%w: order id is required", ErrInvalidInput)
	}
	if err := validateLineItem(item); err != nil {
		log.Warn("line item rejected", zap.Error(err))
		return nil, err
	}

	oi, err := s.repo.AddItem(ctx, orderID, item)
	if err != nil {
		log.Error("failed to add line item", zap.Error(err))
		return nil, err
	}

	return oi, nil
}

func (s *service) UpdateItem(ctx context.Context, itemID uint, quantity int, discountPercent decimal.Decimal) (*OrderItem, error) {
	if itemID == 0 {
		return nil, fmt.Errorf("%w: item id is required", ErrInvalidInput)
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidLineItem)
	}
	if discountPercent.IsNegative() || discountPercent.GreaterThan(hundred) {
		return nil, fmt.Errorf("%w: discount must be between 0 and 100", ErrInvalidLineItem)
	}

	return s.repo.UpdateItem(ctx, itemID, quantity, discountPercent)
}

func (s *service) RemoveItem(ctx context.Context, itemID uint) error {
	if itemID == 0 {
		return fmt.Errorf("%w: item id is required", ErrInvalidInput)
	}
	return s.repo.RemoveItem(ctx, itemID)
}

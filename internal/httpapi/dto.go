package httpapi

import (
	"time"

	"servicehub-be/internal/category"
	"servicehub-be/internal/order"
	"servicehub-be/internal/product"
	"servicehub-be/internal/tag"
)

// Money fields are rendered as fixed two-decimal strings so clients
// never see binary floating point artifacts.

type categoryResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCategoryResponse(c *category.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}

type tagResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

func toTagResponse(t *tag.Tag) tagResponse {
	return tagResponse{
		ID:        t.ID,
		Name:      t.Name,
		Color:     t.Color,
		CreatedAt: t.CreatedAt,
	}
}

type productResponse struct {
	ID           uint          `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Price        string        `json:"price"`
	ImageURL     *string       `json:"image_url"`
	CategoryID   uint          `json:"category_id"`
	CategoryName string        `json:"category_name"`
	Tags         []tagResponse `json:"tags"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func toProductResponse(p *product.Product) productResponse {
	tags := make([]tagResponse, 0, len(p.Tags))
	for _, t := range p.Tags {
		tags = append(tags, toTagResponse(t))
	}
	return productResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price.StringFixed(2),
		ImageURL:     p.ImageURL,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		Tags:         tags,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

type orderItemResponse struct {
	ID              uint   `json:"id"`
	OrderID         uint   `json:"order_id"`
	ProductID       uint   `json:"product_id"`
	ProductName     string `json:"product_name,omitempty"`
	Quantity        int    `json:"quantity"`
	DiscountPercent string `json:"discount_percent"`
	UnitPrice       string `json:"unit_price"`
	TotalPrice      string `json:"total_price"`
}

func toOrderItemResponse(oi *order.OrderItem) orderItemResponse {
	return orderItemResponse{
		ID:              oi.ID,
		OrderID:         oi.OrderID,
		ProductID:       oi.ProductID,
		ProductName:     oi.ProductName,
		Quantity:        oi.Quantity,
		DiscountPercent: oi.DiscountPercent.String(),
		UnitPrice:       oi.UnitPrice.StringFixed(2),
		TotalPrice:      oi.TotalPrice.StringFixed(2),
	}
}

type orderResponse struct {
	ID              uint                `json:"id"`
	OrderNumber     string              `json:"order_number"`
	CustomerName    string              `json:"customer_name"`
	Phone           string              `json:"phone"`
	DeliveryAddress string              `json:"delivery_address"`
	Status          string              `json:"status"`
	TotalAmount     string              `json:"total_amount"`
	CreatedAt       time.Time           `json:"created_at"`
	Items           []orderItemResponse `json:"items,omitempty"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, oi := range o.Items {
		items = append(items, toOrderItemResponse(oi))
	}
	return orderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerName:    o.CustomerName,
		Phone:           o.Phone,
		DeliveryAddress: o.DeliveryAddress,
		Status:          string(o.Status),
		TotalAmount:     o.TotalAmount.StringFixed(2),
		CreatedAt:       o.CreatedAt,
		Items:           items,
	}
}

type listResponse struct {
	Data  interface{} `json:"data"`
	Total int64       `json:"total"`
}

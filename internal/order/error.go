package order

import "errors"

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrItemNotFound    = errors.New("order item not found")
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidLineItem = errors.New("invalid line item")
	ErrInvalidStatus   = errors.New("invalid order status")
	ErrInvalidInput    = errors.New("invalid input")
)

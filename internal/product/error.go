package product

import "errors"

var (
	ErrNotFound        = errors.New("product not found")
	ErrInvalidInput    = errors.New("invalid product input")
	ErrInvalidPrice    = errors.New("product price cannot be negative")
	ErrInvalidCategory = errors.New("product category does not exist")
)

package category

import "errors"

var (
	ErrNotFound     = errors.New("category not found")
	ErrInUse        = errors.New("category still has products")
	ErrInvalidInput = errors.New("invalid category input")
)

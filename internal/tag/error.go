package tag

import "errors"

var (
	ErrNotFound     = errors.New("tag not found")
	ErrInvalidInput = errors.New("invalid tag input")
)

package category

import "time"

type Category struct {
	ID          uint
	Name        string
	Description string
	CreatedAt   time.Time
}

type UpdateInput struct {
	Name        *string
	Description *string
}

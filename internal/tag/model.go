package tag

import "time"

// DefaultColor is applied when a tag is created without an explicit color.
const DefaultColor = "#007bff"

type Tag struct {
	ID        uint
	Name      string
	Color     string
	CreatedAt time.Time
}

type UpdateInput struct {
	Name  *string
	Color *string
}

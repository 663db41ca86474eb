package product

import (
	"time"

	"github.com/shopspring/decimal"

	"servicehub-be/internal/tag"
)

type Product struct {
	ID           uint
	Name         string
	Description  string
	Price        decimal.Decimal
	ImageURL     *string
	CategoryID   uint
	CategoryName string
	Tags         []*tag.Tag
	IsDeleted    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CreateInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    *string
	CategoryID  uint
	TagIDs      []uint
}

type UpdateInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	ImageURL    *string
	CategoryID  *uint
	TagIDs      []uint // nil means leave tags untouched
}

// ListOptions narrows GetList. Zero values mean "no filter".
type ListOptions struct {
	Search         *string
	CategoryID     *uint
	TagID          *uint
	MinPrice       *decimal.Decimal
	MaxPrice       *decimal.Decimal
	Limit          *int32
	Page           *int32
	IncludeDeleted bool
}

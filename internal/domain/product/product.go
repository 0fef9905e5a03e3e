package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is a source catalog entry registered by the product-registration
// subsystem. Name is unique only together with Category.
type Product struct {
	ID           string
	InternalCode string
	Name         string
	Category     string
	BasePrice    decimal.Decimal
}

// Repository defines read operations for the source catalog.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	FindByNameAndCategory(ctx context.Context, name, category string) (*Product, error)
}

package priceset

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/mall-pricing/internal/domain/pricing"
)

// Storage-level conditions reported by Repository implementations.
var (
	// ErrNotFound is returned when no price set exists for a source product.
	ErrNotFound = errors.New("price set not found")
	// ErrDuplicateKey is returned when the unique constraint on the source
	// product rejects an insert.
	ErrDuplicateKey = errors.New("duplicate price set for source product")
	// ErrNumericOverflow is returned when a price does not fit its storage column.
	ErrNumericOverflow = errors.New("numeric value out of range")
)

// PriceSet is the persisted result of deriving channel prices for one source
// product. It is created once and never updated.
type PriceSet struct {
	ID              string
	SourceProductID string
	InternalCode    string
	BasePrice       decimal.Decimal
	PrimaryPrice    decimal.Decimal
	Channels        pricing.ChannelPrices
	CreatedAt       time.Time
}

// Repository defines persistence operations for price sets. Create must rely
// on a storage-level unique constraint on SourceProductID.
type Repository interface {
	ExistsForSource(ctx context.Context, sourceProductID string) (bool, error)
	Create(ctx context.Context, set *PriceSet) error
	FindBySource(ctx context.Context, sourceProductID string) (*PriceSet, error)
}

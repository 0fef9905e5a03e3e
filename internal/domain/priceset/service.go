package priceset

import (
	"context"
	"math"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/mall-pricing/internal/domain/pricing"
	"github.com/xenking/mall-pricing/internal/domain/product"
)

// Request identifies a source product by name and category.
type Request struct {
	ProductName string
	CategoryTag string
}

// Validate reports the first missing field of r.
func (r Request) Validate() error {
	switch {
	case r.ProductName == "":
		return &InvalidRequestError{Field: "productName"}
	case r.CategoryTag == "":
		return &InvalidRequestError{Field: "categoryTag"}
	}
	return nil
}

// MaxBasePrice is the largest base price a stored price set column can hold.
const MaxBasePrice = math.MaxInt32

// maxBaseDigits is the number of integer digits of MaxBasePrice.
const maxBaseDigits = 10

// Service encapsulates price set derivation and persistence.
type Service struct {
	products product.Repository
	sets     Repository
	engine   *pricing.Engine
	metrics  *Metrics
}

// NewService creates a price set Service. metrics may be nil.
func NewService(
	products product.Repository,
	sets Repository,
	engine *pricing.Engine,
	metrics *Metrics,
) *Service {
	return &Service{
		products: products,
		sets:     sets,
		engine:   engine,
		metrics:  metrics,
	}
}

// CalculateAndSave resolves the source product, derives its channel prices and
// persists them. A product can be priced only once.
func (s *Service) CalculateAndSave(ctx context.Context, req Request) (_ *PriceSet, rerr error) {
	defer func() {
		if rerr != nil {
			s.metrics.recordFailed(ctx, KindOf(rerr))
			return
		}
		s.metrics.recordCreated(ctx)
	}()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.products.FindByNameAndCategory(ctx, req.ProductName, req.CategoryTag)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, &ProductNotFoundError{ProductName: req.ProductName, CategoryTag: req.CategoryTag}
		}
		return nil, errors.Wrap(err, "find product")
	}
	if p.BasePrice.IsNegative() {
		return nil, &InvalidBasePriceError{SourceProductID: p.ID, BasePrice: p.BasePrice}
	}

	// Fast path only; the unique constraint behind Create is authoritative.
	exists, err := s.sets.ExistsForSource(ctx, p.ID)
	if err != nil {
		return nil, errors.Wrap(err, "check existing price set")
	}
	if exists {
		return nil, &AlreadyComputedError{SourceProductID: p.ID, ProductName: p.Name}
	}

	d := s.engine.Derive(p.BasePrice)
	set := &PriceSet{
		SourceProductID: p.ID,
		InternalCode:    p.InternalCode,
		BasePrice:       d.Base,
		PrimaryPrice:    d.Primary,
		Channels:        d.Channels,
	}

	if err := s.sets.Create(ctx, set); err != nil {
		switch {
		case errors.Is(err, ErrNumericOverflow):
			return nil, &PriceOutOfRangeError{SourceProductID: p.ID, ProductName: p.Name}
		case errors.Is(err, ErrDuplicateKey):
			return nil, &AlreadyComputedError{SourceProductID: p.ID, ProductName: p.Name}
		}
		return nil, errors.Wrap(err, "create price set")
	}

	return set, nil
}

// Get returns the stored price set of a source product.
func (s *Service) Get(ctx context.Context, sourceProductID string) (*PriceSet, error) {
	set, err := s.sets.FindBySource(ctx, sourceProductID)
	if err != nil {
		return nil, errors.Wrapf(err, "find price set %q", sourceProductID)
	}
	return set, nil
}

// Preview derives channel prices for base without persisting anything. base
// must be a whole amount no greater than MaxBasePrice.
func (s *Service) Preview(base decimal.Decimal) (pricing.Derivation, error) {
	base, err := normalizePreviewBase(base)
	if err != nil {
		return pricing.Derivation{}, err
	}
	return s.engine.Derive(base), nil
}

// normalizePreviewBase returns base as a whole amount with a zero exponent.
// Magnitude and scale are checked on the digit count and exponent before any
// arithmetic touches base.
func normalizePreviewBase(base decimal.Decimal) (decimal.Decimal, error) {
	if base.IsZero() {
		return decimal.Zero, nil
	}
	if base.NumDigits()+int(base.Exponent()) > maxBaseDigits || !base.IsInteger() {
		return decimal.Decimal{}, &BasePriceRangeError{Max: MaxBasePrice}
	}
	if base.IsNegative() {
		return decimal.Decimal{}, &InvalidBasePriceError{BasePrice: base}
	}
	n := base.IntPart()
	if n > MaxBasePrice {
		return decimal.Decimal{}, &BasePriceRangeError{Max: MaxBasePrice}
	}
	return decimal.NewFromInt(n), nil
}

// Registry returns the channel grouping prices are derived with.
func (s *Service) Registry() *pricing.Registry {
	return s.engine.Registry()
}

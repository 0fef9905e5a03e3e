package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/mall-pricing/internal/domain/priceset"
	"github.com/xenking/mall-pricing/internal/domain/pricing"
)

const existsPriceSetSQL = `SELECT EXISTS (SELECT 1 FROM price_sets WHERE source_product_id = $1)`

// Channel columns are named after the channel identifiers, so both statements
// are generated from the roster.
var (
	insertPriceSetSQL = buildInsertPriceSetSQL(pricing.AllChannels())
	selectPriceSetSQL = buildSelectPriceSetSQL(pricing.AllChannels())
)

var _ priceset.Repository = (*PriceSetRepository)(nil)

// PriceSetRepository implements priceset.Repository backed by PostgreSQL.
type PriceSetRepository struct {
	pool *pgxpool.Pool
}

// NewPriceSetRepository returns a PriceSetRepository that uses the given pool.
func NewPriceSetRepository(pool *pgxpool.Pool) *PriceSetRepository {
	return &PriceSetRepository{pool: pool}
}

// ExistsForSource reports whether a price set is stored for the source product.
func (r *PriceSetRepository) ExistsForSource(ctx context.Context, sourceProductID string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, existsPriceSetSQL, sourceProductID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking price set for %q: %w", sourceProductID, err)
	}
	return exists, nil
}

// Create inserts set and fills in its generated ID and creation time.
// Values outside the INTEGER range fail with priceset.ErrNumericOverflow and a
// second set for the same source fails with priceset.ErrDuplicateKey.
func (r *PriceSetRepository) Create(ctx context.Context, set *priceset.PriceSet) error {
	args := make([]any, 0, 4+len(pricing.AllChannels()))
	args = append(args, set.SourceProductID, set.InternalCode, set.BasePrice, set.PrimaryPrice)
	set.Channels.Each(func(_ pricing.Channel, price decimal.Decimal) {
		args = append(args, price)
	})

	err := r.pool.QueryRow(ctx, insertPriceSetSQL, args...).Scan(&set.ID, &set.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating price set for %q: %w", set.SourceProductID, classifyPriceSetError(err))
	}
	return nil
}

// FindBySource returns the price set stored for the source product.
func (r *PriceSetRepository) FindBySource(ctx context.Context, sourceProductID string) (*priceset.PriceSet, error) {
	rows, err := r.pool.Query(ctx, selectPriceSetSQL, sourceProductID)
	if err != nil {
		return nil, fmt.Errorf("finding price set for %q: %w", sourceProductID, err)
	}

	set, err := pgx.CollectExactlyOneRow(rows, scanPriceSet)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, priceset.ErrNotFound
		}
		return nil, fmt.Errorf("finding price set for %q: %w", sourceProductID, err)
	}
	return &set, nil
}

func scanPriceSet(row pgx.CollectableRow) (priceset.PriceSet, error) {
	channels := pricing.AllChannels()
	var (
		set       priceset.PriceSet
		base      int64
		primary   int64
		prices    = make([]int64, len(channels))
		createdAt time.Time
	)

	dest := make([]any, 0, 6+len(channels))
	dest = append(dest, &set.ID, &set.SourceProductID, &set.InternalCode, &base, &primary)
	for i := range prices {
		dest = append(dest, &prices[i])
	}
	dest = append(dest, &createdAt)

	if err := row.Scan(dest...); err != nil {
		return set, err
	}

	set.BasePrice = decimal.NewFromInt(base)
	set.PrimaryPrice = decimal.NewFromInt(primary)
	for i, c := range channels {
		set.Channels.Set(c, decimal.NewFromInt(prices[i]))
	}
	set.CreatedAt = createdAt
	return set, nil
}

func buildInsertPriceSetSQL(channels []pricing.Channel) string {
	var cols, vals strings.Builder
	cols.WriteString("source_product_id, internal_code, base_price, primary_price")
	vals.WriteString("$1, $2, $3::numeric::integer, $4::numeric::integer")
	for i, c := range channels {
		fmt.Fprintf(&cols, ", %s", c)
		fmt.Fprintf(&vals, ", $%d::numeric::integer", i+5)
	}
	return "INSERT INTO price_sets (" + cols.String() + ")\n\tVALUES (" + vals.String() + ")\n\tRETURNING id::text, created_at"
}

func buildSelectPriceSetSQL(channels []pricing.Channel) string {
	var b strings.Builder
	b.WriteString("SELECT id::text, source_product_id, internal_code, base_price, primary_price")
	for _, c := range channels {
		fmt.Fprintf(&b, ", %s", c)
	}
	b.WriteString(", created_at\n\tFROM price_sets WHERE source_product_id = $1")
	return b.String()
}

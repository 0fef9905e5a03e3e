package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/mall-pricing/internal/domain/product"
)

const (
	getProductByIDSQL = `SELECT id, internal_code, name, category, base_price
		FROM products WHERE id = $1`

	findProductByNameAndCategorySQL = `SELECT id, internal_code, name, category, base_price
		FROM products WHERE name = $1 AND category = $2`

	upsertProductSQL = `INSERT INTO products (id, internal_code, name, category, base_price)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			internal_code = EXCLUDED.internal_code,
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			base_price = EXCLUDED.base_price`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// FindByNameAndCategory returns the product registered under name in category.
func (r *ProductRepository) FindByNameAndCategory(ctx context.Context, name, category string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, findProductByNameAndCategorySQL, name, category)
	if err != nil {
		return nil, fmt.Errorf("finding product %q in %q: %w", name, category, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("finding product %q in %q: %w", name, category, err)
	}
	return &p, nil
}

// Upsert inserts products or overwrites existing rows with the same ID in a
// single batch.
func (r *ProductRepository) Upsert(ctx context.Context, products []product.Product) error {
	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(upsertProductSQL, p.ID, p.InternalCode, p.Name, p.Category, p.BasePrice)
	}

	br := r.pool.SendBatch(ctx, batch)
	for _, p := range products {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("upserting product %q: %w", p.ID, err)
		}
	}
	return br.Close()
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.InternalCode, &p.Name, &p.Category, &p.BasePrice)
	return p, err
}

package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/mall-pricing/db"
	"github.com/xenking/mall-pricing/internal/domain/priceset"
)

// SQLSTATE codes the repositories translate into domain errors.
const (
	codeUniqueViolation  = "23505"
	codeNumericOverflow  = "22003"
	priceSetsSourceIndex = "price_sets_source_product_id_key"
)

// NewPool creates a pgxpool.Pool configured with shopspring/decimal support
// for NUMERIC columns.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	return pool, nil
}

// RunMigrations executes the embedded DDL schema against the pool.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, db.Schema); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// classifyPriceSetError maps Postgres failures on price_sets writes to the
// priceset sentinels, keeping the driver error in the chain for logs.
func classifyPriceSetError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch {
	case pgErr.Code == codeUniqueViolation && pgErr.ConstraintName == priceSetsSourceIndex:
		return fmt.Errorf("%w: %w", priceset.ErrDuplicateKey, err)
	case pgErr.Code == codeNumericOverflow:
		return fmt.Errorf("%w: %w", priceset.ErrNumericOverflow, err)
	}
	return err
}

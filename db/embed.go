// Package db provides the embedded database schema and seed catalog.
package db

import _ "embed"

// Schema contains the DDL statements for the catalog and price set tables.
// Every statement is idempotent so it can run on each start.
//
//go:embed migrations/001_schema.sql
var Schema string

// SeedProducts is the sample source catalog used by seed-db when no file is given.
//
//go:embed seed/products.json
var SeedProducts []byte

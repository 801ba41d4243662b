// Package sqlite persists the inventory ledger and product catalog in an
// embedded SQLite database accessed through sqlx.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// DBTX is satisfied by both *sqlx.DB and *sqlx.Tx so query code runs
// identically inside and outside an explicit transaction.
type DBTX interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id        TEXT PRIMARY KEY,
	name      TEXT NOT NULL,
	kind      TEXT NOT NULL,
	dimension TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS inventory_lots (
	id                 TEXT PRIMARY KEY,
	product_id         TEXT NOT NULL REFERENCES products(id),
	quantity_purchased TEXT NOT NULL,
	quantity_remaining TEXT NOT NULL,
	cost_per_base_unit TEXT NOT NULL,
	acquired_at        TIMESTAMP NOT NULL,
	version            INTEGER NOT NULL DEFAULT 1,
	location           TEXT NOT NULL DEFAULT '',
	notes              TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_inventory_lots_product_fifo
	ON inventory_lots(product_id, acquired_at);
`

// Open connects to the SQLite database at dsn and ensures the schema
// exists. Quantities and costs are stored as exact decimal text; rowid
// doubles as lot creation order.
func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database at %s: %w", dsn, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// schema is applied in order inside one transaction. Every statement is
// idempotent so Migrate can run on each start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS dealer_accounts (
		id          VARCHAR(64) PRIMARY KEY,
		name        VARCHAR(200) NOT NULL,
		balance     NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS system_settings (
		key         VARCHAR(64) PRIMARY KEY,
		value       TEXT NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS order_sequences (
		prefix      VARCHAR(32) PRIMARY KEY,
		last_seq    INTEGER NOT NULL DEFAULT 0,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id                VARCHAR(36) PRIMARY KEY,
		order_number      VARCHAR(32) NOT NULL,
		dealer_id         VARCHAR(64) NOT NULL REFERENCES dealer_accounts(id),
		project_name      VARCHAR(200) NOT NULL DEFAULT '',
		contact_name      VARCHAR(100) NOT NULL DEFAULT '',
		contact_phone     VARCHAR(32) NOT NULL DEFAULT '',
		shipping_address  VARCHAR(300) NOT NULL DEFAULT '',
		remark            VARCHAR(500) NOT NULL DEFAULT '',
		total_amount      NUMERIC(14,2) NOT NULL CHECK (total_amount > 0),
		status            VARCHAR(20) NOT NULL DEFAULT 'pending',
		idempotency_key   VARCHAR(128),
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS orders_order_number_key ON orders (order_number)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS orders_dealer_idempotency_key
		ON orders (dealer_id, idempotency_key) WHERE idempotency_key IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS orders_dealer_created_idx ON orders (dealer_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS order_lines (
		order_id       VARCHAR(36) NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		line_no        INTEGER NOT NULL,
		product_id     VARCHAR(64) NOT NULL,
		product_name   VARCHAR(200) NOT NULL DEFAULT '',
		quantity       INTEGER NOT NULL CHECK (quantity > 0),
		width_mm       INTEGER NOT NULL DEFAULT 0,
		height_mm      INTEGER NOT NULL DEFAULT 0,
		configuration  JSONB,
		unit_price     NUMERIC(14,2) NOT NULL DEFAULT 0,
		subtotal       NUMERIC(14,2) NOT NULL CHECK (subtotal > 0),
		PRIMARY KEY (order_id, line_no)
	)`,
}

// Migrate creates the ledger tables if they do not exist yet
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}

	log.Printf("Database schema up to date (%d statements)", len(schema))
	return nil
}

package collection

import (
	"context"
	"database/sql"
	"fmt"
)

// schema contains the DDL for all binder tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS entries (
		id             TEXT PRIMARY KEY,
		card_id        TEXT NOT NULL UNIQUE,
		card_name      TEXT NOT NULL,
		set_id         TEXT NOT NULL DEFAULT '',
		set_name       TEXT NOT NULL DEFAULT '',
		number         TEXT NOT NULL DEFAULT '',
		rarity         TEXT NOT NULL DEFAULT '',
		image_small    TEXT NOT NULL DEFAULT '',
		quantity       INTEGER NOT NULL DEFAULT 1,
		condition      TEXT NOT NULL DEFAULT 'NM',
		purchase_price REAL,
		notes          TEXT NOT NULL DEFAULT '',
		market_price   REAL,
		price_source   TEXT NOT NULL DEFAULT '',
		price_updated  TEXT,
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_entries_set_id ON entries(set_id)`,

	`CREATE TABLE IF NOT EXISTS value_snapshots (
		date         TEXT PRIMARY KEY,
		total_cards  INTEGER NOT NULL,
		unique_cards INTEGER NOT NULL,
		total_value  REAL NOT NULL,
		created_at   TEXT NOT NULL
	)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

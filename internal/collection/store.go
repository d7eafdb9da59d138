package collection

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists the binder in SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the binder database at dbPath.
// Use ":memory:" for an in-memory database (useful in tests).
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// WAL keeps reads cheap while the refresher writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.With("component", "collection"),
	}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// Upsert inserts the entry, or, when the card is already in the binder,
// adds the new quantity to the existing row and refreshes its timestamp.
// Ownership details of the existing row (condition, notes, purchase price)
// are left alone.
func (s *Store) Upsert(ctx context.Context, e *Entry) error {
	s.logger.Debug("sql", "op", "upsert", "table", "entries", "card_id", e.CardID)

	if e.Quantity < 1 {
		return fmt.Errorf("quantity must be at least 1, got %d", e.Quantity)
	}
	if !e.Condition.Valid() {
		return fmt.Errorf("unknown condition %q", e.Condition)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (id, card_id, card_name, set_id, set_name, number, rarity, image_small,
		 quantity, condition, purchase_price, notes, market_price, price_source, price_updated,
		 created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(card_id) DO UPDATE SET
		   quantity = quantity + excluded.quantity,
		   market_price = COALESCE(excluded.market_price, market_price),
		   price_source = CASE WHEN excluded.market_price IS NULL THEN price_source ELSE excluded.price_source END,
		   price_updated = CASE WHEN excluded.market_price IS NULL THEN price_updated ELSE excluded.price_updated END,
		   updated_at = excluded.updated_at`,
		e.ID, e.CardID, e.CardName, e.SetID, e.SetName, e.Number, e.Rarity, e.ImageSmall,
		e.Quantity, string(e.Condition), e.PurchasePrice, e.Notes,
		e.MarketPrice, e.PriceSource, formatTimePtr(e.PriceUpdated),
		e.CreatedAt.Format(time.RFC3339Nano), e.UpdatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// Get returns the entry for a card, or nil when the card is not in the
// binder.
func (s *Store) Get(ctx context.Context, cardID string) (*Entry, error) {
	s.logger.Debug("sql", "op", "select", "table", "entries", "card_id", cardID)

	return scanEntry(s.db.QueryRowContext(ctx,
		`SELECT id, card_id, card_name, set_id, set_name, number, rarity, image_small,
		 quantity, condition, purchase_price, notes, market_price, price_source, price_updated,
		 created_at, updated_at
		 FROM entries WHERE card_id = ?`, cardID))
}

// List returns entries ordered by set and printed number. An empty setID
// lists everything.
func (s *Store) List(ctx context.Context, setID string) ([]*Entry, error) {
	s.logger.Debug("sql", "op", "list", "table", "entries", "set_id", setID)

	query := `SELECT id, card_id, card_name, set_id, set_name, number, rarity, image_small,
		 quantity, condition, purchase_price, notes, market_price, price_source, price_updated,
		 created_at, updated_at
		 FROM entries`
	args := []any{}
	if setID != "" {
		query += ` WHERE set_id = ?`
		args = append(args, setID)
	}
	query += ` ORDER BY set_name, length(number), number`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UpdateQuantity sets the owned count for a card.
func (s *Store) UpdateQuantity(ctx context.Context, cardID string, quantity int) error {
	s.logger.Debug("sql", "op", "update_quantity", "table", "entries", "card_id", cardID, "quantity", quantity)

	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE entries SET quantity = ?, updated_at = ? WHERE card_id = ?`,
		quantity, time.Now().UTC().Format(time.RFC3339Nano), cardID)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("card %s not in collection", cardID)
	}
	return nil
}

// UpdateEntry rewrites the mutable ownership fields: quantity, condition,
// purchase price, notes.
func (s *Store) UpdateEntry(ctx context.Context, e *Entry) error {
	s.logger.Debug("sql", "op", "update", "table", "entries", "card_id", e.CardID)

	if e.Quantity < 1 {
		return fmt.Errorf("quantity must be at least 1, got %d", e.Quantity)
	}
	if !e.Condition.Valid() {
		return fmt.Errorf("unknown condition %q", e.Condition)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE entries SET quantity = ?, condition = ?, purchase_price = ?, notes = ?, updated_at = ?
		 WHERE card_id = ?`,
		e.Quantity, string(e.Condition), e.PurchasePrice, e.Notes,
		time.Now().UTC().Format(time.RFC3339Nano), e.CardID)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("card %s not in collection", e.CardID)
	}
	return nil
}

// UpdateMarketPrice records a fresh market price for a card.
func (s *Store) UpdateMarketPrice(ctx context.Context, cardID string, price float64, source string, at time.Time) error {
	s.logger.Debug("sql", "op", "update_price", "table", "entries", "card_id", cardID, "price", price)

	result, err := s.db.ExecContext(ctx,
		`UPDATE entries SET market_price = ?, price_source = ?, price_updated = ?, updated_at = ?
		 WHERE card_id = ?`,
		price, source, at.UTC().Format(time.RFC3339Nano),
		time.Now().UTC().Format(time.RFC3339Nano), cardID)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("card %s not in collection", cardID)
	}
	return nil
}

// Remove deletes a card from the binder.
func (s *Store) Remove(ctx context.Context, cardID string) error {
	s.logger.Debug("sql", "op", "delete", "table", "entries", "card_id", cardID)

	result, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE card_id = ?`, cardID)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("card %s not in collection", cardID)
	}
	return nil
}

// Stats aggregates counts and value across the whole binder.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	s.logger.Debug("sql", "op", "stats", "table", "entries")

	var st Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(quantity), 0),
		        COALESCE(SUM(quantity * COALESCE(purchase_price, 0)), 0),
		        COALESCE(SUM(quantity * COALESCE(market_price, 0)), 0)
		 FROM entries`).
		Scan(&st.UniqueCards, &st.TotalCards, &st.CostBasis, &st.MarketValue)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// TakeSnapshot records today's totals, replacing an earlier snapshot taken
// the same day.
func (s *Store) TakeSnapshot(ctx context.Context) (*ValueSnapshot, error) {
	st, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	snap := &ValueSnapshot{
		Date:        now.Format("2006-01-02"),
		TotalCards:  st.TotalCards,
		UniqueCards: st.UniqueCards,
		TotalValue:  st.MarketValue,
		CreatedAt:   now,
	}

	s.logger.Debug("sql", "op", "snapshot", "table", "value_snapshots", "date", snap.Date)
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO value_snapshots (date, total_cards, unique_cards, total_value, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		snap.Date, snap.TotalCards, snap.UniqueCards, snap.TotalValue,
		snap.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// ValueHistory returns recent snapshots, newest first.
func (s *Store) ValueHistory(ctx context.Context, limit int) ([]*ValueSnapshot, error) {
	s.logger.Debug("sql", "op", "list", "table", "value_snapshots", "limit", limit)

	if limit < 1 {
		limit = 30
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, total_cards, unique_cards, total_value, created_at
		 FROM value_snapshots ORDER BY date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []*ValueSnapshot
	for rows.Next() {
		var snap ValueSnapshot
		var createdAt string
		if err := rows.Scan(&snap.Date, &snap.TotalCards, &snap.UniqueCards, &snap.TotalValue, &createdAt); err != nil {
			return nil, err
		}
		snap.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		snaps = append(snaps, &snap)
	}
	return snaps, rows.Err()
}

// --- scan helpers ---

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var e Entry
	var condition, createdAt, updatedAt string
	var priceUpdated *string

	err := row.Scan(
		&e.ID, &e.CardID, &e.CardName, &e.SetID, &e.SetName, &e.Number, &e.Rarity, &e.ImageSmall,
		&e.Quantity, &condition, &e.PurchasePrice, &e.Notes,
		&e.MarketPrice, &e.PriceSource, &priceUpdated,
		&createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	e.Condition = Condition(condition)
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	e.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	if priceUpdated != nil {
		t, _ := time.Parse(time.RFC3339Nano, *priceUpdated)
		e.PriceUpdated = &t
	}
	return &e, nil
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}

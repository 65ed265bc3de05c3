package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/stockwatch/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// SaveQuotes upserts the latest quotes. Symbols absent from the batch
// keep their previous snapshot row so a partial fetch never erases
// data for symbols it did not cover.
func (s *SQLiteStore) SaveQuotes(ctx context.Context, quotes []model.Quote) error {
	if len(quotes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT OR REPLACE INTO quotes (
			symbol, name, price, previous_close,
			change, change_percent, day_high, day_low,
			volume, exchange, sector, is_real_time, last_updated
		) VALUES (
			?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?, ?, ?
		)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing quote upsert: %w", err)
	}
	defer stmt.Close()

	for _, q := range quotes {
		_, err = stmt.ExecContext(ctx,
			q.Symbol, q.Name, q.Price, q.PreviousClose,
			q.Change, q.ChangePercent, q.DayHigh, q.DayLow,
			q.Volume, q.Exchange, q.Sector, boolToInt(q.RealTime), q.UpdatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("upserting quote %s: %w", q.Symbol, err)
		}
	}

	return tx.Commit()
}

// GetQuotes retrieves all cached quotes ordered by symbol.
func (s *SQLiteStore) GetQuotes(ctx context.Context) ([]model.Quote, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM quotes ORDER BY symbol")
	if err != nil {
		return nil, fmt.Errorf("querying quotes: %w", err)
	}
	defer rows.Close()

	var quotes []model.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}

	return quotes, rows.Err()
}

// ReplaceNotifications swaps the cached notification snapshot for the
// given one, preserving the given order.
func (s *SQLiteStore) ReplaceNotifications(ctx context.Context, notifications []model.Notification) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM notifications"); err != nil {
		return fmt.Errorf("clearing notifications: %w", err)
	}

	const query = `
		INSERT INTO notifications (
			id, title, message, kind, priority, read, symbol, position, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing notification insert: %w", err)
	}
	defer stmt.Close()

	for i, n := range notifications {
		_, err = stmt.ExecContext(ctx,
			n.ID, n.Title, n.Message, string(n.Kind), n.Priority,
			boolToInt(n.Read), n.Symbol, i, n.CreatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("inserting notification %s: %w", n.ID, err)
		}
	}

	return tx.Commit()
}

// GetNotifications retrieves the cached notification snapshot in its
// stored order, optionally filtered to unread entries.
func (s *SQLiteStore) GetNotifications(ctx context.Context, unreadOnly bool) ([]model.Notification, error) {
	query := "SELECT * FROM notifications"
	if unreadOnly {
		query += " WHERE read = 0"
	}
	query += " ORDER BY position"

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// MarkNotificationRead marks a single cached notification as read.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ?", id,
	)
	if err != nil {
		return fmt.Errorf("marking notification %s as read: %w", id, err)
	}
	return nil
}

// ReplaceWatchlist swaps the cached watchlist snapshot for the given
// one, preserving the given order.
func (s *SQLiteStore) ReplaceWatchlist(ctx context.Context, items []model.WatchlistItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM watchlist"); err != nil {
		return fmt.Errorf("clearing watchlist: %w", err)
	}

	const query = `INSERT INTO watchlist (symbol, name, added_at, position) VALUES (?, ?, ?, ?)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing watchlist insert: %w", err)
	}
	defer stmt.Close()

	for i, item := range items {
		_, err = stmt.ExecContext(ctx, item.Symbol, item.Name, item.AddedAt.UTC(), i)
		if err != nil {
			return fmt.Errorf("inserting watchlist entry %s: %w", item.Symbol, err)
		}
	}

	return tx.Commit()
}

// GetWatchlist retrieves the cached watchlist in its stored order.
func (s *SQLiteStore) GetWatchlist(ctx context.Context) ([]model.WatchlistItem, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM watchlist ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("querying watchlist: %w", err)
	}
	defer rows.Close()

	var items []model.WatchlistItem
	for rows.Next() {
		var (
			item     model.WatchlistItem
			addedAt  time.Time
			position int
		)
		if err := rows.Scan(&item.Symbol, &item.Name, &addedAt, &position); err != nil {
			return nil, fmt.Errorf("scanning watchlist row: %w", err)
		}
		item.AddedAt = addedAt
		items = append(items, item)
	}

	return items, rows.Err()
}

// scanQuote scans a quote row from a sqlx.Rows result set.
func scanQuote(rows *sqlx.Rows) (model.Quote, error) {
	var (
		q           model.Quote
		realTime    int
		lastUpdated time.Time
	)

	err := rows.Scan(
		&q.Symbol, &q.Name, &q.Price, &q.PreviousClose,
		&q.Change, &q.ChangePercent, &q.DayHigh, &q.DayLow,
		&q.Volume, &q.Exchange, &q.Sector, &realTime, &lastUpdated,
	)
	if err != nil {
		return model.Quote{}, fmt.Errorf("scanning quote row: %w", err)
	}

	q.RealTime = realTime != 0
	q.UpdatedAt = lastUpdated

	return q, nil
}

// scanNotification scans a notification row from a sqlx.Rows result set.
func scanNotification(rows *sqlx.Rows) (model.Notification, error) {
	var (
		n         model.Notification
		kind      string
		readInt   int
		position  int
		createdAt time.Time
	)

	err := rows.Scan(
		&n.ID, &n.Title, &n.Message, &kind, &n.Priority,
		&readInt, &n.Symbol, &position, &createdAt,
	)
	if err != nil {
		return model.Notification{}, fmt.Errorf("scanning notification row: %w", err)
	}

	n.Kind = model.NotificationKind(kind)
	n.Read = readInt != 0
	n.CreatedAt = createdAt

	return n, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

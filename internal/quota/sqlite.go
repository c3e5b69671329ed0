package quota

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps counters in a local SQLite database so they survive restarts.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the counter database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("quota: mkdir %s: %w", filepath.Dir(path), err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("quota: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS quota_windows (
		key      TEXT PRIMARY KEY,
		count    INTEGER NOT NULL,
		reset_at INTEGER NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("quota: init schema: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// SET expressions see the row as it was before the update.
const sqliteIncr = `INSERT INTO quota_windows (key, count, reset_at) VALUES (?1, 1, ?2)
ON CONFLICT(key) DO UPDATE SET
	count    = CASE WHEN quota_windows.reset_at <= ?3 THEN 1 ELSE quota_windows.count + 1 END,
	reset_at = CASE WHEN quota_windows.reset_at <= ?3 THEN excluded.reset_at ELSE quota_windows.reset_at END
RETURNING count, reset_at`

func (s *SQLiteStore) Incr(ctx context.Context, key string, window time.Duration) (Window, error) {
	now := s.now()
	var (
		count   int64
		resetAt int64
	)
	err := s.db.QueryRowContext(ctx, sqliteIncr, key, now.Add(window).UnixMilli(), now.UnixMilli()).
		Scan(&count, &resetAt)
	if err != nil {
		return Window{}, fmt.Errorf("quota: incr %s: %w", key, err)
	}
	return Window{Count: count, ResetAt: time.UnixMilli(resetAt)}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (Window, bool, error) {
	var (
		count   int64
		resetAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT count, reset_at FROM quota_windows WHERE key = ? AND reset_at > ?`,
		key, s.now().UnixMilli(),
	).Scan(&count, &resetAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Window{}, false, nil
	}
	if err != nil {
		return Window{}, false, fmt.Errorf("quota: get %s: %w", key, err)
	}
	return Window{Count: count, ResetAt: time.UnixMilli(resetAt)}, true, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

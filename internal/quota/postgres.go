package quota

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore shares counters between server instances through Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresStore creates a pgx pool and ensures the counter table exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, errors.New("quota: database URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("quota: parse database URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("quota: create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("quota: ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS quota_windows (
		key      TEXT PRIMARY KEY,
		count    BIGINT NOT NULL,
		reset_at TIMESTAMPTZ NOT NULL
	)`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("quota: init schema: %w", err)
	}

	slog.Info("quota: postgres connected", slog.String("host", config.ConnConfig.Host))
	return &PostgresStore{pool: pool, now: time.Now}, nil
}

const postgresIncr = `INSERT INTO quota_windows (key, count, reset_at) VALUES ($1, 1, $2)
ON CONFLICT (key) DO UPDATE SET
	count    = CASE WHEN quota_windows.reset_at <= $3 THEN 1 ELSE quota_windows.count + 1 END,
	reset_at = CASE WHEN quota_windows.reset_at <= $3 THEN EXCLUDED.reset_at ELSE quota_windows.reset_at END
RETURNING count, reset_at`

func (s *PostgresStore) Incr(ctx context.Context, key string, window time.Duration) (Window, error) {
	now := s.now()
	var w Window
	if err := s.pool.QueryRow(ctx, postgresIncr, key, now.Add(window), now).Scan(&w.Count, &w.ResetAt); err != nil {
		return Window{}, fmt.Errorf("quota: incr %s: %w", key, err)
	}
	return w, nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (Window, bool, error) {
	var w Window
	err := s.pool.QueryRow(ctx,
		`SELECT count, reset_at FROM quota_windows WHERE key = $1 AND reset_at > $2`,
		key, s.now(),
	).Scan(&w.Count, &w.ResetAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Window{}, false, nil
	}
	if err != nil {
		return Window{}, false, fmt.Errorf("quota: get %s: %w", key, err)
	}
	return w, true, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/gauthierbraillon/playlens/internal/playlist"
	"github.com/gauthierbraillon/playlens/internal/quota"
	"github.com/gauthierbraillon/playlens/internal/server"
	"github.com/gauthierbraillon/playlens/internal/youtube"
)

const defaultAPIURL = "https://www.googleapis.com"

// config is read from PLAYLENS_* environment variables, after an optional .env file.
type config struct {
	APIKey      string
	APIURL      string
	ConfigDir   string
	QuotaStore  string
	QuotaDB     string
	RedisURL    string
	DatabaseURL string
	UpstreamRPS float64
	Addr        string
	// TrustedProxies are the peers whose X-Forwarded-For is believed by serve.
	TrustedProxies []netip.Prefix
}

func loadConfig() (config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("ignoring unreadable .env file", slog.Any("error", err))
	}

	cfg := config{
		APIKey:      os.Getenv("PLAYLENS_YOUTUBE_API_KEY"),
		APIURL:      envOr("PLAYLENS_API_URL", defaultAPIURL),
		ConfigDir:   getConfigDir(),
		QuotaStore:  envOr("PLAYLENS_QUOTA_STORE", "sqlite"),
		RedisURL:    os.Getenv("PLAYLENS_REDIS_URL"),
		DatabaseURL: os.Getenv("PLAYLENS_DATABASE_URL"),
		Addr:        envOr("PLAYLENS_ADDR", ":8080"),
	}
	cfg.QuotaDB = envOr("PLAYLENS_QUOTA_DB", filepath.Join(cfg.ConfigDir, "quota.db"))

	if v := os.Getenv("PLAYLENS_UPSTREAM_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps < 0 {
			return config{}, fmt.Errorf("invalid PLAYLENS_UPSTREAM_RPS %q: want a non-negative number", v)
		}
		cfg.UpstreamRPS = rps
	}

	proxies, err := server.ParseTrustedProxies(os.Getenv("PLAYLENS_TRUSTED_PROXIES"))
	if err != nil {
		return config{}, fmt.Errorf("invalid PLAYLENS_TRUSTED_PROXIES: %w", err)
	}
	cfg.TrustedProxies = proxies

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getConfigDir returns the configuration directory path.
func getConfigDir() string {
	if dir := os.Getenv("PLAYLENS_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "playlens")
}

// newClient builds an upstream client for apiKey with the configured base URL and pacing.
func (c config) newClient(apiKey string) playlist.Upstream {
	opts := []youtube.ClientOption{youtube.WithBaseURL(c.APIURL)}
	if c.UpstreamRPS > 0 {
		opts = append(opts, youtube.WithRateLimit(rate.Limit(c.UpstreamRPS), max(1, int(c.UpstreamRPS))))
	}
	return youtube.NewClient(apiKey, opts...)
}

// openQuotaStore opens the configured quota backend.
func openQuotaStore(ctx context.Context, cfg config) (quota.Store, error) {
	switch cfg.QuotaStore {
	case "memory":
		return quota.NewMemoryStore(), nil
	case "sqlite":
		s, err := quota.OpenSQLite(cfg.QuotaDB)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "redis":
		if cfg.RedisURL == "" {
			return nil, errors.New("PLAYLENS_REDIS_URL is required for the redis quota store")
		}
		s, err := quota.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := quota.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("invalid PLAYLENS_QUOTA_STORE %q: must be memory, sqlite, redis or postgres", cfg.QuotaStore)
	}
}

// Package quota implements the per-identity fetch budget for the shared
// YouTube credential.
//
// This package enables playlens to:
// - Count fetches per caller identity in fixed 24h windows
// - Reject callers that exhaust their budget with a retry hint
// - Persist counters in memory, SQLite, Redis or Postgres
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	// MaxFetches is the number of shared-credential fetches per identity per window.
	MaxFetches = 5
	// WindowLength is the length of one budget window.
	WindowLength = 24 * time.Hour
	// MaxVideosPerFetch is the largest playlist the shared credential will walk.
	MaxVideosPerFetch = 500
)

// ErrRateLimited matches any *RateLimitedError via errors.Is.
var ErrRateLimited = errors.New("rate limited")

// RateLimitedError reports an identity that has exhausted its budget.
type RateLimitedError struct {
	Key        string
	Used       int64
	Limit      int64
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("quota exhausted for %s: %d/%d fetches used, retry in %s",
		e.Key, e.Used, e.Limit, e.RetryAfter.Round(time.Second))
}

func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

// Window is the counter state of one key.
type Window struct {
	Count   int64
	ResetAt time.Time
}

// Store persists per-key counters. Implementations must make Incr atomic for
// concurrent callers sharing a key.
type Store interface {
	// Incr counts one unit against key. If the key has no live window, a new
	// one of the given length starts with a count of 1.
	Incr(ctx context.Context, key string, window time.Duration) (Window, error)
	// Get returns the live window of key, if any. It never mutates.
	Get(ctx context.Context, key string) (Window, bool, error)
	Close() error
}

// Usage is a read-only snapshot of an identity's budget.
type Usage struct {
	Used      int64
	Remaining int64
	ResetAt   time.Time
}

// Limiter enforces a fixed budget of points per window on top of a Store.
type Limiter struct {
	store  Store
	points int64
	window time.Duration
	now    func() time.Time
}

// New creates the default limiter: MaxFetches per WindowLength.
func New(store Store) *Limiter {
	return NewLimiter(store, MaxFetches, WindowLength)
}

// NewLimiter creates a limiter with a custom budget.
func NewLimiter(store Store, points int64, window time.Duration) *Limiter {
	return &Limiter{
		store:  store,
		points: points,
		window: window,
		now:    time.Now,
	}
}

// Points returns the budget per window.
func (l *Limiter) Points() int64 { return l.points }

// Consume counts one fetch for key. The unit is counted even when the budget
// is already exhausted, in which case a *RateLimitedError is returned.
func (l *Limiter) Consume(ctx context.Context, key string) error {
	w, err := l.store.Incr(ctx, key, l.window)
	if err != nil {
		return fmt.Errorf("consume quota: %w", err)
	}
	if w.Count <= l.points {
		return nil
	}

	retry := w.ResetAt.Sub(l.now())
	if retry < 0 {
		retry = 0
	}
	return &RateLimitedError{
		Key:        key,
		Used:       l.points,
		Limit:      l.points,
		RetryAfter: retry,
	}
}

// Usage reports how much of the budget key has used without counting a unit.
func (l *Limiter) Usage(ctx context.Context, key string) (Usage, error) {
	w, ok, err := l.store.Get(ctx, key)
	if err != nil {
		return Usage{}, fmt.Errorf("read quota: %w", err)
	}
	if !ok {
		return Usage{Remaining: l.points}, nil
	}

	used := min(w.Count, l.points)
	return Usage{
		Used:      used,
		Remaining: l.points - used,
		ResetAt:   w.ResetAt,
	}, nil
}

// Package analyzer decides how a playlist analysis is paid for and runs it.
//
// Requests on the shared credential go through the quota gate and the
// playlist size ceiling. Requests carrying their own API key skip both.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gauthierbraillon/playlens/internal/playlist"
	"github.com/gauthierbraillon/playlens/internal/quota"
	"github.com/gauthierbraillon/playlens/internal/youtube"
)

var (
	// ErrNotFound means YouTube reported no playlist for the id.
	ErrNotFound = errors.New("playlist not found")
	// ErrServiceSaturated means the shared credential is out of upstream quota.
	ErrServiceSaturated = errors.New("shared YouTube quota exhausted, provide your own API key")
)

// OversizeError rejects a playlist too large for the shared credential.
type OversizeError struct {
	TotalVideos int
	Limit       int
}

func (e *OversizeError) Error() string {
	return fmt.Sprintf("playlist has %d videos, the limit without your own API key is %d", e.TotalVideos, e.Limit)
}

// UpstreamError is a YouTube API failure, tagged with whose credential was used.
type UpstreamError struct {
	UserKey bool
	Err     *youtube.APIError
}

func (e *UpstreamError) Error() string {
	if e.UserKey {
		return "request with your API key failed: " + e.Err.Error()
	}
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Request identifies what to analyze and on whose behalf.
type Request struct {
	PlaylistID string
	// APIKey, when set, replaces the shared credential and bypasses all limits.
	APIKey string
	// Identity is the quota key of the caller, such as a client IP.
	Identity string
}

// Limits reports the shared-credential budget of one identity.
type Limits struct {
	FetchesUsed       int64 `json:"fetchesUsed"`
	FetchesRemaining  int64 `json:"fetchesRemaining"`
	MaxFetches        int64 `json:"maxFetches"`
	MaxVideosPerFetch int   `json:"maxVideosPerFetch"`
}

// ClientFactory builds an upstream for a caller-supplied API key.
type ClientFactory func(apiKey string) playlist.Upstream

// Option configures the Analyzer.
type Option func(*Analyzer)

// WithClientFactory sets how upstreams for caller-supplied keys are built.
func WithClientFactory(f ClientFactory) Option {
	return func(a *Analyzer) { a.factory = f }
}

// WithLogger sets the logger for the analyzer and the pipelines it runs.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.log = logger
		}
	}
}

// WithMaxVideos overrides the playlist size ceiling for the shared credential.
func WithMaxVideos(n int) Option {
	return func(a *Analyzer) { a.maxVideos = n }
}

// Analyzer runs gated playlist analyses.
type Analyzer struct {
	shared    *playlist.Service
	gate      *quota.Limiter
	factory   ClientFactory
	log       *slog.Logger
	maxVideos int
}

// New creates an Analyzer over the shared upstream and quota gate.
func New(shared playlist.Upstream, gate *quota.Limiter, opts ...Option) *Analyzer {
	a := &Analyzer{
		gate:      gate,
		log:       slog.Default(),
		maxVideos: quota.MaxVideosPerFetch,
		factory: func(apiKey string) playlist.Upstream {
			return youtube.NewClient(apiKey)
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	a.shared = playlist.NewService(shared, playlist.WithLogger(a.log))
	return a
}

// Analyze fetches metadata and every video of the requested playlist.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*playlist.Result, error) {
	if req.APIKey != "" {
		svc := playlist.NewService(a.factory(req.APIKey), playlist.WithLogger(a.log))
		return a.run(ctx, svc, req, true)
	}

	if err := a.gate.Consume(ctx, req.Identity); err != nil {
		return nil, err
	}
	return a.run(ctx, a.shared, req, false)
}

func (a *Analyzer) run(ctx context.Context, svc *playlist.Service, req Request, userKey bool) (*playlist.Result, error) {
	log := a.log.With(slog.String("playlist_id", req.PlaylistID), slog.Bool("user_key", userKey))

	meta, err := svc.FetchMetadata(ctx, req.PlaylistID)
	if err != nil {
		return nil, a.classify(err, userKey)
	}
	if meta == nil {
		return nil, ErrNotFound
	}

	if !userKey && meta.TotalVideos > a.maxVideos {
		log.Info("playlist rejected as oversize", slog.Int("total_videos", meta.TotalVideos))
		return nil, &OversizeError{TotalVideos: meta.TotalVideos, Limit: a.maxVideos}
	}

	list, err := svc.FetchVideos(ctx, req.PlaylistID)
	if err != nil {
		return nil, a.classify(err, userKey)
	}

	log.Info("playlist analyzed",
		slog.Int("available", list.Counts.Available),
		slog.Int("unavailable", list.Counts.Unavailable),
		slog.Int("excluded", list.Counts.Excluded),
		slog.Int("final", list.Counts.Final),
	)
	return playlist.NewResult(*meta, list), nil
}

// classify maps upstream API errors; every other error is returned unchanged.
func (a *Analyzer) classify(err error, userKey bool) error {
	apiErr, ok := youtube.AsAPIError(err)
	if !ok {
		return err
	}
	if !userKey && apiErr.IsQuotaExceeded() {
		a.log.Warn("shared YouTube quota exhausted", slog.Any("error", err))
		return fmt.Errorf("%w: %w", ErrServiceSaturated, err)
	}
	return &UpstreamError{UserKey: userKey, Err: apiErr}
}

// Limits reports the identity's shared-credential budget without spending it.
func (a *Analyzer) Limits(ctx context.Context, identity string) (Limits, error) {
	u, err := a.gate.Usage(ctx, identity)
	if err != nil {
		return Limits{}, err
	}
	return Limits{
		FetchesUsed:       u.Used,
		FetchesRemaining:  u.Remaining,
		MaxFetches:        a.gate.Points(),
		MaxVideosPerFetch: a.maxVideos,
	}, nil
}

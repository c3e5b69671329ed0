// Package server exposes playlist analysis over HTTP.
//
// Routes:
//
//	GET /api/playlist?id=<id or URL>   analyze a playlist (X-Youtube-API-Key overrides the shared key)
//	GET /api/limits                    remaining shared-key budget of the caller
//	GET /metrics                       plain-text counters
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gauthierbraillon/playlens/internal/analyzer"
	"github.com/gauthierbraillon/playlens/internal/playlist"
	"github.com/gauthierbraillon/playlens/internal/quota"
)

// APIKeyHeader carries a caller-supplied YouTube API key.
const APIKeyHeader = "X-Youtube-API-Key"

// Analyzer is what the HTTP layer needs from the analysis core.
type Analyzer interface {
	Analyze(ctx context.Context, req analyzer.Request) (*playlist.Result, error)
	Limits(ctx context.Context, identity string) (analyzer.Limits, error)
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.log = logger
		}
	}
}

// WithTrustedProxies lists the peers whose X-Forwarded-For header is
// believed. Without it every caller is identified by its peer address.
func WithTrustedProxies(prefixes []netip.Prefix) Option {
	return func(s *Server) { s.trusted = prefixes }
}

// Server routes HTTP requests to the analyzer.
type Server struct {
	analyzer Analyzer
	log      *slog.Logger
	metrics  *Metrics
	trusted  []netip.Prefix
	handler  http.Handler
}

// New creates a Server with its routes registered.
func New(a Analyzer, opts ...Option) *Server {
	s := &Server{
		analyzer: a,
		log:      slog.Default(),
		metrics:  &Metrics{},
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/playlist", s.handlePlaylist)
	mux.HandleFunc("GET /api/limits", s.handleLimits)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	s.handler = s.withRequestLog(mux)

	return s
}

// Handler returns the root handler including request logging.
func (s *Server) Handler() http.Handler { return s.handler }

// Metrics returns the live counters.
func (s *Server) Metrics() *Metrics { return s.metrics }

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("server listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	s.metrics.PlaylistRequests.Add(1)
	log := requestLogger(r.Context(), s.log)

	id, err := playlist.ParseID(r.URL.Query().Get("id"))
	if err != nil {
		s.metrics.PlaylistErrors.Add(1)
		writeError(w, http.StatusBadRequest, "id must be a playlist id or a youtube.com playlist URL")
		return
	}

	var apiKey string
	if keys := r.Header.Values(APIKeyHeader); len(keys) > 0 {
		if apiKey = strings.TrimSpace(keys[0]); apiKey == "" {
			s.metrics.PlaylistErrors.Add(1)
			writeError(w, http.StatusBadRequest, "Invalid YouTube API key")
			return
		}
	}

	res, err := s.analyzer.Analyze(r.Context(), analyzer.Request{
		PlaylistID: id,
		APIKey:     apiKey,
		Identity:   ClientIdentity(r, s.trusted),
	})
	if err != nil {
		s.metrics.PlaylistErrors.Add(1)
		s.writeAnalyzeError(w, log, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) writeAnalyzeError(w http.ResponseWriter, log *slog.Logger, err error) {
	var (
		limited  *quota.RateLimitedError
		oversize *analyzer.OversizeError
		upstream *analyzer.UpstreamError
	)

	switch {
	case errors.As(err, &limited):
		s.metrics.RateLimited.Add(1)
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(limited.RetryAfter.Seconds()))))
		writeError(w, http.StatusTooManyRequests,
			"daily limit of "+strconv.FormatInt(limited.Limit, 10)+" playlists reached, try again later or provide your own API key")
	case errors.Is(err, analyzer.ErrNotFound):
		writeError(w, http.StatusNotFound, "playlist not found, it may be private or deleted")
	case errors.As(err, &oversize):
		writeError(w, http.StatusUnprocessableEntity, oversize.Error())
	case errors.Is(err, analyzer.ErrServiceSaturated):
		s.metrics.UpstreamSaturated.Add(1)
		writeError(w, http.StatusServiceUnavailable, analyzer.ErrServiceSaturated.Error())
	case errors.As(err, &upstream) && upstream.UserKey:
		writeError(w, http.StatusBadRequest, upstream.Error())
	case errors.Is(err, context.Canceled):
		log.Debug("client went away", slog.Any("error", err))
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "YouTube did not answer in time")
	case errors.As(err, &upstream):
		log.Error("upstream failure", slog.Any("error", err))
		writeError(w, http.StatusBadGateway, "YouTube request failed")
	default:
		log.Error("playlist analysis failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleLimits(w http.ResponseWriter, r *http.Request) {
	limits, err := s.analyzer.Limits(r.Context(), ClientIdentity(r, s.trusted))
	if err != nil {
		requestLogger(r.Context(), s.log).Error("read limits failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, limits)
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(s.metrics.Format()))
}

type errorBody struct {
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Package main provides the playlens CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gauthierbraillon/playlens/internal/analyzer"
	"github.com/gauthierbraillon/playlens/internal/display"
	"github.com/gauthierbraillon/playlens/internal/listing"
	"github.com/gauthierbraillon/playlens/internal/playlist"
	"github.com/gauthierbraillon/playlens/internal/quota"
	"github.com/gauthierbraillon/playlens/internal/server"
	"github.com/gauthierbraillon/playlens/pkg/browser"
	"github.com/gauthierbraillon/playlens/pkg/credentials"
)

var version = "dev"

// localIdentity is the quota key for CLI analyses on this machine.
const localIdentity = "local"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// resolveVersion prefers the ldflags version and falls back to the module
// version recorded by go install.
func resolveVersion(version string, info *debug.BuildInfo) string {
	if version != "dev" {
		return version
	}
	if info == nil || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return "dev"
	}
	return info.Main.Version
}

// newRootCmd creates the root command for playlens CLI.
func newRootCmd() *cobra.Command {
	var verbose bool

	info, _ := debug.ReadBuildInfo()
	rootCmd := &cobra.Command{
		Use:   "playlens",
		Short: "Analyze YouTube playlists",
		Long: "Playlens walks a YouTube playlist and reports its available videos, " +
			"total watch time, views and channels.",
		Version:      resolveVersion(version, info),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}

	rootCmd.SetVersionTemplate("playlens version {{.Version}}\n")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log pagination progress to stderr")

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newLimitsCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newKeyCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// newAnalyzer wires the quota store, shared client and analyzer. The caller
// closes the returned store.
func newAnalyzer(ctx context.Context, cfg config, logger *slog.Logger) (*analyzer.Analyzer, quota.Store, error) {
	store, err := openQuotaStore(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open quota store: %w", err)
	}

	a := analyzer.New(
		cfg.newClient(cfg.APIKey),
		quota.New(store),
		analyzer.WithClientFactory(cfg.newClient),
		analyzer.WithLogger(logger),
	)
	return a, store, nil
}

// newAnalyzeCmd creates the analyze subcommand.
func newAnalyzeCmd() *cobra.Command {
	var (
		apiKey   string
		sortBy   string
		channel  string
		search   string
		since    string
		until    string
		limit    int
		asJSON   bool
		openPage bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <playlist-url-or-id>",
		Short: "Analyze a playlist",
		Long: "Fetch every video of a playlist and show counts, totals and the video list.\n" +
			"Without your own API key, analyses are limited to 5 per day and 500 videos per playlist.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := playlist.ParseID(args[0])
			if err != nil {
				return fmt.Errorf("invalid playlist %q: expected a playlist id or a youtube.com playlist URL", args[0])
			}
			sortKey, descending, err := listing.ParseSort(sortBy)
			if err != nil {
				return err
			}
			from, err := listing.ParseBound(since, false)
			if err != nil {
				return fmt.Errorf("--since: %w", err)
			}
			to, err := listing.ParseBound(until, true)
			if err != nil {
				return fmt.Errorf("--until: %w", err)
			}
			if !from.IsZero() && !to.IsZero() && to.Before(from) {
				return errors.New("--until must not be before --since")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if apiKey == "" {
				stored, err := credentials.NewStore(cfg.ConfigDir).Load()
				switch {
				case err == nil:
					apiKey = stored
				case !errors.Is(err, credentials.ErrKeyNotFound):
					return err
				}
			}
			if apiKey == "" && cfg.APIKey == "" {
				return errors.New("no YouTube API key: set PLAYLENS_YOUTUBE_API_KEY, pass --api-key or run 'playlens key set'")
			}

			ctx := cmd.Context()
			a, store, err := newAnalyzer(ctx, cfg, slog.Default())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			res, err := a.Analyze(ctx, analyzer.Request{PlaylistID: id, APIKey: apiKey, Identity: localIdentity})
			if err != nil {
				return describeError(err)
			}

			videos := listing.Apply(res.Videos, listing.Options{
				Search:     search,
				ChannelID:  channel,
				Since:      from,
				Until:      to,
				Sort:       sortKey,
				Descending: descending,
				Limit:      limit,
			})

			if asJSON {
				out := struct {
					*playlist.Result
					Summary  playlist.Summary   `json:"summary"`
					Channels []playlist.Channel `json:"channels"`
					Videos   []playlist.Video   `json:"videos"`
				}{res, playlist.Summarize(res.Videos), playlist.Channels(res.Videos), videos}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(out); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), display.NewTerminalFormatter().FormatReport(res, videos))
			}

			if openPage {
				if err := browser.Open(playlist.URL(id)); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Could not open browser. Please visit:\n%s\n", playlist.URL(id))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&apiKey, "api-key", "k", "", "Your own YouTube API key (no daily or size limits)")
	cmd.Flags().StringVarP(&sortBy, "sort", "s", "order", "Sort by order, date, duration or views, with optional _asc or _desc")
	cmd.Flags().StringVarP(&channel, "channel", "c", "", "Only list videos from this channel id (ids are shown under Channels)")
	cmd.Flags().StringVarP(&search, "search", "q", "", "Only list videos whose title contains this text")
	cmd.Flags().StringVar(&since, "since", "", "Only list videos published on or after this date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&until, "until", "", "Only list videos published on or before this date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum number of videos to list (0 lists all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the analysis as JSON")
	cmd.Flags().BoolVar(&openPage, "open", false, "Open the playlist in the browser")

	return cmd
}

// describeError turns analysis failures into messages a CLI user can act on.
func describeError(err error) error {
	var (
		limited  *quota.RateLimitedError
		oversize *analyzer.OversizeError
	)
	switch {
	case errors.As(err, &limited):
		return fmt.Errorf("daily limit of %d analyses reached, retry in %s or use --api-key",
			limited.Limit, limited.RetryAfter.Round(time.Minute))
	case errors.As(err, &oversize):
		return fmt.Errorf("%s; use --api-key to analyze it", oversize.Error())
	case errors.Is(err, analyzer.ErrNotFound):
		return errors.New("playlist not found: it may be private or deleted")
	case errors.Is(err, analyzer.ErrServiceSaturated):
		return errors.New("the shared YouTube quota is used up for today; use --api-key with your own key")
	case errors.Is(err, context.Canceled):
		return errors.New("canceled")
	default:
		return err
	}
}

// newLimitsCmd creates the limits subcommand.
func newLimitsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "limits",
		Short: "Show remaining analyses for today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			a, store, err := newAnalyzer(cmd.Context(), cfg, slog.Default())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			limits, err := a.Limits(cmd.Context(), localIdentity)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), display.NewTerminalFormatter().FormatLimits(limits))
			return nil
		},
	}
}

// newServeCmd creates the serve subcommand.
func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the playlist analysis HTTP API",
		Long: "Serve GET /api/playlist?id=..., GET /api/limits and GET /metrics.\n" +
			"Callers may send their own key in the X-Youtube-API-Key header.\n" +
			"Callers are identified by peer address; set PLAYLENS_TRUSTED_PROXIES to the\n" +
			"addresses or CIDR ranges of your reverse proxies to honor X-Forwarded-For.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.APIKey == "" {
				return errors.New("PLAYLENS_YOUTUBE_API_KEY is required to serve")
			}
			if addr == "" {
				addr = cfg.Addr
			}

			logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), nil))
			slog.SetDefault(logger)

			a, store, err := newAnalyzer(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			logger.Info("starting playlens",
				slog.String("version", cmd.Root().Version),
				slog.String("quota_store", cfg.QuotaStore),
			)
			return server.New(a,
				server.WithLogger(logger),
				server.WithTrustedProxies(cfg.TrustedProxies),
			).ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default $PLAYLENS_ADDR or :8080)")

	return cmd
}

// newKeyCmd creates the key subcommand group.
func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage your stored YouTube API key",
		Long:  "A stored key is used for analyses instead of the shared key, without daily or size limits.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <api-key>",
		Short: "Store your YouTube API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := credentials.NewStore(getConfigDir())
			if err := store.Save(args[0]); err != nil {
				return fmt.Errorf("failed to save key: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API key saved to: %s\n", store.Path())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the stored key, masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := credentials.NewStore(getConfigDir()).Load()
			if errors.Is(err, credentials.ErrKeyNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "No API key stored.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API key: %s\n", credentials.Mask(key))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the stored key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := credentials.NewStore(getConfigDir()).Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key removed.")
			return nil
		},
	})

	return cmd
}

// newConfigCmd creates the config subcommand.
func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show configuration",
		Long:  "Show the playlens configuration resolved from PLAYLENS_* environment variables.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config directory: %s\n", cfg.ConfigDir)
			fmt.Fprintf(out, "API URL: %s\n", cfg.APIURL)
			fmt.Fprintf(out, "Shared API key: %s\n", setOrUnset(cfg.APIKey))
			fmt.Fprintf(out, "Quota store: %s\n", cfg.QuotaStore)
			if cfg.QuotaStore == "sqlite" {
				fmt.Fprintf(out, "Quota database: %s\n", cfg.QuotaDB)
			}
			if cfg.UpstreamRPS > 0 {
				fmt.Fprintf(out, "Upstream rate: %g requests/s\n", cfg.UpstreamRPS)
			}
			if len(cfg.TrustedProxies) > 0 {
				proxies := make([]string, 0, len(cfg.TrustedProxies))
				for _, p := range cfg.TrustedProxies {
					proxies = append(proxies, p.String())
				}
				fmt.Fprintf(out, "Trusted proxies: %s\n", strings.Join(proxies, ", "))
			}
			return nil
		},
	}
}

func setOrUnset(v string) string {
	if v == "" {
		return "not set"
	}
	return "set"
}

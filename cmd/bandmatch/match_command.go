package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"bandmatch/internal/config"
	"bandmatch/internal/deps"
	"bandmatch/internal/history"
	"bandmatch/internal/likes"
	"bandmatch/internal/logging"
	"bandmatch/internal/matching"
	"bandmatch/internal/report"
	"bandmatch/internal/services"
	"bandmatch/internal/services/ytdlp"
)

type matchOptions struct {
	limit          int
	browser        string
	cookie         string
	threshold      float64
	html           bool
	noOpen         bool
	workers        int
	retrySanitized bool
	noCache        bool
	jsonOutput     bool
}

type matchResult struct {
	RunID     string           `json:"run_id"`
	Channels  []string         `json:"channels"`
	Threshold float64          `json:"threshold"`
	Summary   matching.Summary `json:"summary"`
	Rows      []matching.Row   `json:"rows"`
}

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var opts matchOptions

	cmd := &cobra.Command{
		Use:   "match <channel> [channel...]",
		Short: "Search Bandcamp for liked videos from the given channels",
		Long: "Fetch your most recent liked YouTube videos, keep those uploaded by the\n" +
			"given channels, and look each title up on Bandcamp. Channel names are\n" +
			"compared case-insensitively against the video uploader.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyMatchFlags(cmd, cfg, opts); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			return runMatch(cmd, cfg, logger, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.limit, "limit", 0, "Number of recent likes to inspect (default matching.limit)")
	flags.StringVar(&opts.browser, "browser", "", "Browser to read YouTube cookies from (default youtube.browser)")
	flags.StringVar(&opts.cookie, "cookie", "", "Netscape cookie file for YouTube")
	flags.Float64Var(&opts.threshold, "match-threshold", 0, "Minimum similarity (0-1) to count as a match (default matching.threshold)")
	flags.BoolVar(&opts.html, "html", false, "Write an HTML report and open it in the browser")
	flags.BoolVar(&opts.noOpen, "no-open", false, "Write the HTML report without opening it")
	flags.IntVar(&opts.workers, "workers", 0, "Concurrent searches (default matching.workers)")
	flags.BoolVar(&opts.retrySanitized, "retry-sanitized", false, "Retry empty searches with a sanitized title")
	flags.BoolVar(&opts.noCache, "no-cache", false, "Skip the search cache for this run")
	flags.BoolVar(&opts.jsonOutput, "json", false, "Print rows as JSON")
	cmd.MarkFlagsMutuallyExclusive("browser", "cookie")

	return cmd
}

// applyMatchFlags layers explicitly set flags over the loaded config.
func applyMatchFlags(cmd *cobra.Command, cfg *config.Config, opts matchOptions) error {
	flags := cmd.Flags()
	if flags.Changed("limit") {
		cfg.Matching.Limit = opts.limit
	}
	if flags.Changed("match-threshold") {
		cfg.Matching.Threshold = opts.threshold
	}
	if flags.Changed("workers") {
		cfg.Matching.Workers = opts.workers
	}
	if flags.Changed("browser") {
		cfg.YouTube.Browser = strings.ToLower(strings.TrimSpace(opts.browser))
		cfg.YouTube.CookieFile = ""
	}
	if flags.Changed("cookie") {
		cfg.YouTube.CookieFile = strings.TrimSpace(opts.cookie)
	}
	if flags.Changed("retry-sanitized") {
		cfg.Search.RetrySanitized = opts.retrySanitized
	}
	if err := cfg.Validate(); err != nil {
		return services.Wrap(services.ErrValidation, "match", "flags", "", err)
	}
	return nil
}

func runMatch(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, channels []string, opts matchOptions) error {
	runCtx := services.WithRunID(cmd.Context(), uuid.NewString())
	logger = logging.WithContext(runCtx, logging.NewComponentLogger(logger, "match"))
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	started := time.Now()

	cookiePath, err := likes.ValidateCookiePath(cfg.YouTube.CookieFile)
	if err != nil {
		return err
	}

	if missing := deps.MissingRequired(deps.CheckBinaries(deps.MatchRequirements(cfg))); len(missing) > 0 {
		return services.Wrap(services.ErrExternalTool, "match", "preflight",
			fmt.Sprintf("%s unavailable: %s", missing[0].Name, missing[0].Detail), nil)
	}

	var store *history.Store
	if cfg.History.Enabled {
		lock, err := history.Lock(cfg.History.DBPath)
		if err != nil {
			return err
		}
		defer func() { _ = lock.Unlock() }()

		store, err = history.Open(cfg.History.DBPath)
		if err != nil {
			logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run will not be recorded and the search cache is off"),
			)
			store = nil
		} else {
			defer store.Close()
		}
	}

	fetcher := ytdlp.New(cfg.YouTube.YtDlpBinary,
		ytdlp.WithBrowser(cfg.YouTube.Browser),
		ytdlp.WithCookieFile(cookiePath),
		ytdlp.WithPlaylistURL(cfg.YouTube.PlaylistURL),
		ytdlp.WithLogger(logger),
	)
	fetchCtx, cancel := context.WithTimeout(runCtx, cfg.FetchTimeout())
	items, err := fetcher.FetchLikes(fetchCtx, cfg.Matching.Limit)
	cancel()
	if err != nil {
		fmt.Fprintf(errOut, "Failed to fetch likes via yt-dlp: %v\n", err)
		return errReported
	}
	logger.Info("fetched liked videos", logging.Int("count", len(items)))

	filtered := likes.FilterByChannels(items, channels)
	if len(filtered) == 0 {
		fmt.Fprintln(out, "No liked videos from the specified channels found.")
		return nil
	}

	client, err := newSearchClient(cfg, logger)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "match", "search client", "", err)
	}
	var searcher matching.Searcher = client
	if store != nil && !opts.noCache && cfg.CacheTTL() > 0 {
		searcher = &history.CachedSearcher{Next: client, BaseURL: client.BaseURL(), Store: store, TTL: cfg.CacheTTL(), Logger: logger}
	}

	colorize := shouldColorize(out)
	pipelineOpts := []matching.Option{
		matching.WithWorkers(cfg.Matching.Workers),
		matching.WithSanitizedRetry(cfg.Search.RetrySanitized),
		matching.WithLogger(logger),
	}
	if !opts.jsonOutput {
		printMatchedLikes(out, filtered)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Bandcamp search results:")
		pipelineOpts = append(pipelineOpts, matching.WithProgress(func(_ int, row matching.Row) {
			fmt.Fprintln(out, renderRowLine(row, colorize))
		}))
	}
	pipeline, err := matching.New(searcher, cfg.Matching.Threshold, pipelineOpts...)
	if err != nil {
		return err
	}

	rows := pipeline.Run(runCtx, filtered)
	if err := runCtx.Err(); err != nil {
		return err
	}
	summary := matching.Summarize(rows)
	logger.Info("match run complete",
		logging.Int("total", summary.Total),
		logging.Int("matched", summary.Matched),
		logging.Int("errors", summary.Errors),
		logging.Duration("elapsed", time.Since(started)),
	)

	runID, _ := services.RunIDFromContext(runCtx)
	if store != nil {
		if _, err := store.RecordRun(runCtx, history.Run{
			ID:         runID,
			StartedAt:  started,
			FinishedAt: time.Now(),
			Threshold:  cfg.Matching.Threshold,
			Channels:   channels,
		}, rows); err != nil {
			logging.WarnWithContext(logger, "failed to record run", "history_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run missing from history"),
			)
		}
	}

	if opts.jsonOutput {
		if err := writeJSON(cmd, matchResult{
			RunID:     runID,
			Channels:  channels,
			Threshold: cfg.Matching.Threshold,
			Summary:   summary,
			Rows:      rows,
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderRowsTable(rows))
	}

	if opts.html {
		open := cfg.Report.OpenBrowser && !opts.noOpen
		if err := writeReport(runCtx, cfg.Report.Path, rows, open); err != nil {
			fmt.Fprintf(errOut, "Failed to write or open %s: %v\n", cfg.Report.Path, err)
		} else {
			logger.Info("report written", logging.String("path", cfg.Report.Path))
		}
	}
	return nil
}

func writeReport(ctx context.Context, path string, rows []matching.Row, open bool) error {
	if err := (report.Writer{Path: path}).Write(rows, time.Now()); err != nil {
		return err
	}
	if !open {
		return nil
	}
	return report.OpenInBrowser(ctx, path)
}

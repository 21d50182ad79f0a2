package main

import (
	"log/slog"
	"strings"
	"time"

	"bandmatch/internal/config"
	"bandmatch/internal/services/bandcamp"
)

func newSearchClient(cfg *config.Config, logger *slog.Logger) (*bandcamp.Client, error) {
	return bandcamp.New(cfg.Search.BaseURL,
		bandcamp.WithTimeout(cfg.SearchTimeout()),
		bandcamp.WithHeaders(cfg.Search.UserAgent, cfg.Search.Referer, cfg.Search.AcceptLanguage),
		bandcamp.WithRateLimit(cfg.Search.RequestsPerSecond),
		bandcamp.WithLogger(logger),
	)
}

// truncate shortens s to at most limit runes, marking the cut with an ellipsis.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	return string(runes[:limit-1]) + "…"
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func joinOrDash(values []string) string {
	joined := strings.Join(values, ", ")
	if joined == "" {
		return "-"
	}
	return joined
}

package history

import (
	"context"
	"log/slog"
	"time"

	"bandmatch/internal/logging"
	"bandmatch/internal/matching"
	"bandmatch/internal/services/bandcamp"
)

// CachedSearcher serves searches from the store when a fresh entry exists
// and records successful live results. BaseURL scopes entries to the
// marketplace origin Next searches, since outcomes embed links built from it.
type CachedSearcher struct {
	Next    matching.Searcher
	BaseURL string
	Store   *Store
	TTL     time.Duration
	Logger  *slog.Logger
}

var _ matching.Searcher = (*CachedSearcher)(nil)

// SearchTrack implements matching.Searcher.
func (c *CachedSearcher) SearchTrack(ctx context.Context, query string) bandcamp.Outcome {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(c.Logger, "search-cache"))
	enabled := c.Store != nil && c.TTL > 0

	if enabled {
		outcome, ok, err := c.Store.CacheGet(ctx, c.BaseURL, query, c.TTL)
		switch {
		case err != nil:
			logger.Warn("search cache read failed",
				logging.String("query", query),
				logging.Error(err),
				logging.String(logging.FieldEventType, "cache_read_failed"),
				logging.String(logging.FieldImpact, "falling back to a live search"),
			)
		case ok:
			logger.Debug("search cache hit", logging.String("query", query))
			outcome.Score = 0
			return outcome
		}
	}

	outcome := c.Next.SearchTrack(ctx, query)
	if enabled && outcome.Error == "" {
		if err := c.Store.CachePut(ctx, c.BaseURL, query, outcome); err != nil {
			logger.Warn("search cache write failed",
				logging.String("query", query),
				logging.Error(err),
				logging.String(logging.FieldEventType, "cache_write_failed"),
				logging.String(logging.FieldImpact, "result will be fetched again next run"),
			)
		}
	}
	return outcome
}

package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bandmatch/internal/services/bandcamp"
)

// CacheStats summarizes the search cache.
type CacheStats struct {
	Entries int       `json:"entries"`
	Oldest  time.Time `json:"oldest,omitzero"`
	Newest  time.Time `json:"newest,omitzero"`
}

// CacheGet returns the cached outcome for query against baseURL when it is
// younger than ttl. A non-positive ttl always misses.
func (s *Store) CacheGet(ctx context.Context, baseURL, query string, ttl time.Duration) (bandcamp.Outcome, bool, error) {
	ctx = ensureContext(ctx)
	if ttl <= 0 {
		return bandcamp.Outcome{}, false, nil
	}
	var payload, fetched string
	err := s.db.QueryRowContext(ctx,
		"SELECT outcome_json, fetched_at FROM search_cache WHERE base_url = ? AND query = ?", baseURL, query,
	).Scan(&payload, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return bandcamp.Outcome{}, false, nil
	}
	if err != nil {
		return bandcamp.Outcome{}, false, fmt.Errorf("read search cache: %w", err)
	}
	fetchedAt := parseTime(fetched)
	if fetchedAt.IsZero() || s.now().Sub(fetchedAt) > ttl {
		return bandcamp.Outcome{}, false, nil
	}
	var outcome bandcamp.Outcome
	if err := json.Unmarshal([]byte(payload), &outcome); err != nil {
		return bandcamp.Outcome{}, false, fmt.Errorf("decode cached outcome for %q: %w", query, err)
	}
	return outcome, true, nil
}

// CachePut stores outcome under baseURL and query. Errored outcomes are
// ignored and the score is not persisted.
func (s *Store) CachePut(ctx context.Context, baseURL, query string, outcome bandcamp.Outcome) error {
	if outcome.Error != "" {
		return nil
	}
	outcome.Score = 0
	payload, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}
	_, err = s.execWithRetry(ctx,
		`INSERT INTO search_cache (base_url, query, outcome_json, fetched_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(base_url, query) DO UPDATE SET outcome_json = excluded.outcome_json, fetched_at = excluded.fetched_at`,
		baseURL, query, string(payload), formatTime(s.now()),
	)
	if err != nil {
		return fmt.Errorf("write search cache: %w", err)
	}
	return nil
}

// CacheStats reports the number of cached queries and their age range.
func (s *Store) CacheStats(ctx context.Context) (CacheStats, error) {
	ctx = ensureContext(ctx)
	var (
		stats  CacheStats
		oldest sql.NullString
		newest sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1), MIN(fetched_at), MAX(fetched_at) FROM search_cache",
	).Scan(&stats.Entries, &oldest, &newest)
	if err != nil {
		return CacheStats{}, fmt.Errorf("read cache stats: %w", err)
	}
	if oldest.Valid {
		stats.Oldest = parseTime(oldest.String)
	}
	if newest.Valid {
		stats.Newest = parseTime(newest.String)
	}
	return stats, nil
}

// CacheClear removes every cached outcome and returns how many were deleted.
func (s *Store) CacheClear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, "DELETE FROM search_cache")
	if err != nil {
		return 0, fmt.Errorf("clear search cache: %w", err)
	}
	return res.RowsAffected()
}

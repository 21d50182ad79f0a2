package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bandmatch/internal/matching"
	"bandmatch/internal/services"
	"bandmatch/internal/services/bandcamp"
)

// Run describes one recorded match invocation.
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Threshold  float64   `json:"threshold"`
	Channels   []string  `json:"channels"`
	Total      int       `json:"total"`
	Matched    int       `json:"matched"`
}

// RecordRun stores run and its rows in one transaction and returns the run
// ID. A new UUID is assigned when run.ID is empty; Total and Matched are
// derived from rows.
func (s *Store) RecordRun(ctx context.Context, run Run, rows []matching.Row) (string, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(run.ID) == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = s.now()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = s.now()
	}
	run.Total = len(rows)
	run.Matched = 0
	for _, row := range rows {
		if row.Matched {
			run.Matched++
		}
	}
	channels := run.Channels
	if channels == nil {
		channels = []string{}
	}
	channelsJSON, err := json.Marshal(channels)
	if err != nil {
		return "", fmt.Errorf("encode channels: %w", err)
	}

	err = retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO runs (id, started_at, finished_at, threshold, channels_json, total, matched)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, formatTime(run.StartedAt), formatTime(run.FinishedAt), run.Threshold,
			string(channelsJSON), run.Total, run.Matched,
		); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO run_rows (run_id, position, uploader, source_title, source_url, query, search_url,
			 has_candidate, candidate_title, candidate_artist, candidate_url, score, error, matched)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, row := range rows {
			var title, artist, link string
			candidate := row.Outcome.Candidate
			if candidate != nil {
				title, artist, link = candidate.Title, candidate.Artist, candidate.URL
			}
			if _, err := stmt.ExecContext(ctx,
				run.ID, i, row.Uploader, row.SourceTitle, row.SourceURL,
				row.Outcome.Query, row.Outcome.SearchURL, boolToInt(candidate != nil),
				title, artist, link, row.Outcome.Score, row.Outcome.Error, boolToInt(row.Matched),
			); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return run.ID, nil
}

// ListRuns returns the most recent runs first. A non-positive limit returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT id, started_at, finished_at, threshold, channels_json, total, matched
		FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun loads a run and its rows in their original order. The id may be a
// unique prefix of the full run ID.
func (s *Store) GetRun(ctx context.Context, id string) (Run, []matching.Row, error) {
	ctx = ensureContext(ctx)
	id = strings.TrimSpace(id)
	if id == "" {
		return Run{}, nil, services.Wrap(services.ErrValidation, "history", "get run", "run id is required", nil)
	}

	resolved, err := s.resolveRunID(ctx, id)
	if err != nil {
		return Run{}, nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, threshold, channels_json, total, matched
		 FROM runs WHERE id = ?`, resolved)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, nil, err
	}

	results, err := s.db.QueryContext(ctx,
		`SELECT uploader, source_title, source_url, query, search_url, has_candidate,
		 candidate_title, candidate_artist, candidate_url, score, error, matched
		 FROM run_rows WHERE run_id = ? ORDER BY position`, resolved)
	if err != nil {
		return Run{}, nil, fmt.Errorf("load run rows: %w", err)
	}
	defer results.Close()

	var out []matching.Row
	for results.Next() {
		var (
			r            matching.Row
			hasCandidate int
			matched      int
			candidate    bandcamp.Candidate
		)
		if err := results.Scan(
			&r.Uploader, &r.SourceTitle, &r.SourceURL, &r.Outcome.Query, &r.Outcome.SearchURL,
			&hasCandidate, &candidate.Title, &candidate.Artist, &candidate.URL,
			&r.Outcome.Score, &r.Outcome.Error, &matched,
		); err != nil {
			return Run{}, nil, fmt.Errorf("scan run row: %w", err)
		}
		if hasCandidate == 1 {
			r.Outcome.Candidate = &candidate
		}
		r.Matched = matched == 1
		out = append(out, r)
	}
	if err := results.Err(); err != nil {
		return Run{}, nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return run, out, nil
}

func (s *Store) resolveRunID(ctx context.Context, id string) (string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\\' ORDER BY id LIMIT 2",
		id, escapeLike(id)+"%")
	if err != nil {
		return "", fmt.Errorf("resolve run id: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var candidate string
		if err := rows.Scan(&candidate); err != nil {
			return "", fmt.Errorf("resolve run id: %w", err)
		}
		if candidate == id {
			return candidate, nil
		}
		matches = append(matches, candidate)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolve run id: %w", err)
	}
	switch len(matches) {
	case 0:
		return "", services.Wrap(services.ErrNotFound, "history", "get run", fmt.Sprintf("run %q not found", id), nil)
	case 1:
		return matches[0], nil
	default:
		return "", services.Wrap(services.ErrValidation, "history", "get run", fmt.Sprintf("run id prefix %q is ambiguous", id), nil)
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run          Run
		started      string
		finished     string
		channelsJSON string
	)
	if err := row.Scan(&run.ID, &started, &finished, &run.Threshold, &channelsJSON, &run.Total, &run.Matched); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, services.Wrap(services.ErrNotFound, "history", "get run", "run not found", nil)
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	if err := json.Unmarshal([]byte(channelsJSON), &run.Channels); err != nil {
		return Run{}, fmt.Errorf("decode channels for run %s: %w", run.ID, err)
	}
	return run, nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return replacer.Replace(value)
}

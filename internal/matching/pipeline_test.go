package matching_test

import (
	"bytes"
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"bandmatch/internal/likes"
	"bandmatch/internal/matching"
	"bandmatch/internal/services/bandcamp"
)

type fakeSearcher struct {
	mu       sync.Mutex
	results  map[string]bandcamp.Outcome
	queries  []string
	maxDelay time.Duration
}

func (f *fakeSearcher) SearchTrack(_ context.Context, query string) bandcamp.Outcome {
	if f.maxDelay > 0 {
		time.Sleep(time.Duration(rand.Int64N(int64(f.maxDelay))))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	outcome, ok := f.results[query]
	if !ok {
		outcome = bandcamp.Outcome{}
	}
	outcome.Query = query
	outcome.SearchURL = "https://bandcamp.com/search?q=" + query
	return outcome
}

func (f *fakeSearcher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func candidate(title, artist, url string) bandcamp.Outcome {
	return bandcamp.Outcome{Candidate: &bandcamp.Candidate{Title: title, Artist: artist, URL: url}}
}

func newPipeline(t *testing.T, searcher matching.Searcher, threshold float64, opts ...matching.Option) *matching.Pipeline {
	t.Helper()
	pipeline, err := matching.New(searcher, threshold, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return pipeline
}

func TestNewRequiresSearcher(t *testing.T) {
	if _, err := matching.New(nil, 0.5); err == nil {
		t.Fatal("expected error for nil searcher")
	}
}

func TestPipelineMatchesStrongCandidate(t *testing.T) {
	searcher := &fakeSearcher{results: map[string]bandcamp.Outcome{
		"Aphex Twin   Flim": candidate("Flim", "Aphex Twin", "https://aphextwin.bandcamp.com/track/flim"),
	}}
	pipeline := newPipeline(t, searcher, 0.75)

	rows := pipeline.Run(context.Background(), []likes.Item{{Title: "Aphex Twin - Flim", Uploader: "Warp Records"}})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if got := searcher.calls(); len(got) != 1 || got[0] != "Aphex Twin   Flim" {
		t.Fatalf("unexpected queries: %#v", got)
	}
	if row.Outcome.Score <= 0.9 {
		t.Fatalf("expected score above 0.9, got %v", row.Outcome.Score)
	}
	if !row.Matched || row.Status() != matching.StatusMatched {
		t.Fatalf("expected matched row, got %+v", row)
	}
	if row.Uploader != "Warp Records" || row.SourceTitle != "Aphex Twin - Flim" {
		t.Fatalf("source fields not carried: %+v", row)
	}
	if row.BestURL() != "https://aphextwin.bandcamp.com/track/flim" {
		t.Fatalf("unexpected best url %q", row.BestURL())
	}
}

func TestPipelineBelowThreshold(t *testing.T) {
	searcher := &fakeSearcher{results: map[string]bandcamp.Outcome{
		"Aphex Twin   Flim": candidate("Windowlicker", "Aphex Twin", "https://aphextwin.bandcamp.com/track/windowlicker"),
	}}
	pipeline := newPipeline(t, searcher, 0.99)

	row := pipeline.Run(context.Background(), []likes.Item{{Title: "Aphex Twin - Flim"}})[0]
	if row.Matched {
		t.Fatalf("expected no match, got %+v", row)
	}
	if row.Status() != matching.StatusBelowThreshold {
		t.Fatalf("expected below threshold, got %s", row.Status())
	}
	if row.Outcome.Score <= 0 || row.Outcome.Score >= 0.99 {
		t.Fatalf("unexpected score %v", row.Outcome.Score)
	}
}

func TestPipelineThresholdBoundary(t *testing.T) {
	searcher := &fakeSearcher{results: map[string]bandcamp.Outcome{
		"Flim": candidate("Flim", "", "https://example.bandcamp.com/track/flim"),
	}}
	row := newPipeline(t, searcher, 1.0).Run(context.Background(), []likes.Item{{Title: "Flim"}})[0]
	if row.Outcome.Score != 1 || !row.Matched {
		t.Fatalf("expected exact match at threshold 1, got %+v", row)
	}
}

func TestPipelineCandidateWithoutURLNeverMatches(t *testing.T) {
	searcher := &fakeSearcher{results: map[string]bandcamp.Outcome{
		"Flim": candidate("Flim", "Aphex Twin", ""),
	}}
	row := newPipeline(t, searcher, 0).Run(context.Background(), []likes.Item{{Title: "Flim"}})[0]
	if row.Matched {
		t.Fatalf("expected unmatched row without candidate url, got %+v", row)
	}
	if row.BestURL() != row.Outcome.SearchURL {
		t.Fatalf("expected search url fallback, got %q", row.BestURL())
	}
}

func TestPipelineErrorsBecomeRows(t *testing.T) {
	searcher := &fakeSearcher{results: map[string]bandcamp.Outcome{
		"broken": {Error: "bandcamp search returned 503 Service Unavailable", Candidate: &bandcamp.Candidate{Title: "x", URL: "https://x"}, Score: 1},
		"Flim":   candidate("Flim", "", "https://example.bandcamp.com/track/flim"),
	}}
	rows := newPipeline(t, searcher, 0.5).Run(context.Background(), []likes.Item{{Title: "broken"}, {Title: "Flim"}})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	failed := rows[0]
	if failed.Status() != matching.StatusError || failed.Matched {
		t.Fatalf("expected error row, got %+v", failed)
	}
	if failed.Outcome.Candidate != nil || failed.Outcome.Score != 0 {
		t.Fatalf("error rows must not carry candidate or score: %+v", failed.Outcome)
	}
	if !rows[1].Matched {
		t.Fatalf("failure on one item must not affect the next: %+v", rows[1])
	}
}

func TestPipelineNoResults(t *testing.T) {
	searcher := &fakeSearcher{results: map[string]bandcamp.Outcome{}}
	row := newPipeline(t, searcher, 0.5).Run(context.Background(), []likes.Item{{Title: "Obscure Track"}})[0]
	if row.Status() != matching.StatusNoResults || row.Matched || row.Outcome.Score != 0 {
		t.Fatalf("expected no-results row, got %+v", row)
	}
}

func TestPipelineSanitizedRetry(t *testing.T) {
	title := "Aphex Twin - Flim (Official Video)"
	results := map[string]bandcamp.Outcome{
		"Aphex Twin Flim": candidate("Flim", "Aphex Twin", "https://aphextwin.bandcamp.com/track/flim"),
	}

	t.Run("disabled", func(t *testing.T) {
		searcher := &fakeSearcher{results: results}
		row := newPipeline(t, searcher, 0.5).Run(context.Background(), []likes.Item{{Title: title}})[0]
		if got := searcher.calls(); len(got) != 1 {
			t.Fatalf("expected a single search, got %#v", got)
		}
		if row.Status() != matching.StatusNoResults {
			t.Fatalf("expected no results, got %s", row.Status())
		}
	})

	t.Run("enabled", func(t *testing.T) {
		searcher := &fakeSearcher{results: results}
		row := newPipeline(t, searcher, 0.5, matching.WithSanitizedRetry(true)).Run(context.Background(), []likes.Item{{Title: title}})[0]
		got := searcher.calls()
		if len(got) != 2 || got[1] != "Aphex Twin Flim" {
			t.Fatalf("expected sanitized retry, got %#v", got)
		}
		if row.Outcome.Query != "Aphex Twin Flim" || row.Outcome.Candidate == nil {
			t.Fatalf("expected retry outcome on row, got %+v", row.Outcome)
		}
	})

	t.Run("skipped when query unchanged", func(t *testing.T) {
		searcher := &fakeSearcher{results: map[string]bandcamp.Outcome{}}
		newPipeline(t, searcher, 0.5, matching.WithSanitizedRetry(true)).Run(context.Background(), []likes.Item{{Title: "Plain Title"}})
		if got := searcher.calls(); len(got) != 1 {
			t.Fatalf("expected no retry for identical query, got %#v", got)
		}
	})
}

func TestPipelinePreservesOrderWithWorkers(t *testing.T) {
	items := make([]likes.Item, 0, 24)
	results := make(map[string]bandcamp.Outcome)
	for i := range 24 {
		title := "Track " + string(rune('A'+i))
		items = append(items, likes.Item{Title: title})
		results[title] = candidate(title, "", "https://example.bandcamp.com/"+title)
	}
	searcher := &fakeSearcher{results: results, maxDelay: 5 * time.Millisecond}

	var mu sync.Mutex
	var seen []int
	pipeline := newPipeline(t, searcher, 0.5,
		matching.WithWorkers(6),
		matching.WithProgress(func(index int, _ matching.Row) {
			mu.Lock()
			seen = append(seen, index)
			mu.Unlock()
		}),
	)

	rows := pipeline.Run(context.Background(), items)
	if len(rows) != len(items) {
		t.Fatalf("expected %d rows, got %d", len(items), len(rows))
	}
	for i, row := range rows {
		if row.SourceTitle != items[i].Title {
			t.Fatalf("row %d has title %q, want %q", i, row.SourceTitle, items[i].Title)
		}
		if !row.Matched {
			t.Fatalf("row %d should match: %+v", i, row)
		}
	}
	for i, index := range seen {
		if index != i {
			t.Fatalf("progress out of order: %v", seen)
		}
	}
	if len(seen) != len(items) {
		t.Fatalf("expected %d progress events, got %d", len(items), len(seen))
	}
}

func TestPipelineEmptyInput(t *testing.T) {
	rows := newPipeline(t, &fakeSearcher{}, 0.5).Run(context.Background(), nil)
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestSummarize(t *testing.T) {
	rows := []matching.Row{
		{Outcome: bandcamp.Outcome{Error: "boom"}},
		{Outcome: bandcamp.Outcome{}},
		{Outcome: bandcamp.Outcome{Candidate: &bandcamp.Candidate{Title: "x", URL: "u"}, Score: 1}, Matched: true},
		{Outcome: bandcamp.Outcome{Candidate: &bandcamp.Candidate{Title: "y"}, Score: 0.1}},
	}
	got := matching.Summarize(rows)
	want := matching.Summary{Total: 4, Matched: 1, BelowThreshold: 1, NoResults: 1, Errors: 1}
	if got != want {
		t.Fatalf("Summarize = %+v, want %+v", got, want)
	}
}

func TestPipelineLogsSampledProgress(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	pipeline := newPipeline(t, &fakeSearcher{}, 0.5, matching.WithLogger(logger), matching.WithWorkers(3))

	items := make([]likes.Item, 8)
	for i := range items {
		items[i] = likes.Item{Title: "Track"}
	}
	pipeline.Run(context.Background(), items)

	out := buf.String()
	if got := strings.Count(out, "search progress"); got != 5 {
		t.Fatalf("expected 5 progress lines, got %d:\n%s", got, out)
	}
	if !strings.Contains(out, "done=8 total=8 matched=0") {
		t.Fatalf("expected final progress line, got:\n%s", out)
	}
}

func TestPipelineLogsItemOutcome(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	searcher := &fakeSearcher{results: map[string]bandcamp.Outcome{
		"Aphex Twin   Flim": candidate("Flim", "Aphex Twin", "https://aphextwin.bandcamp.com/track/flim"),
	}}
	pipeline := newPipeline(t, searcher, 0.75, matching.WithLogger(logger))

	pipeline.Run(context.Background(), []likes.Item{{Title: "Aphex Twin - Flim"}, {Title: "Unknown"}})

	out := buf.String()
	if !strings.Contains(out, "status=matched") || !strings.Contains(out, "matched=true") {
		t.Fatalf("expected matched item log, got:\n%s", out)
	}
	if !strings.Contains(out, "status=no_results") || !strings.Contains(out, "matched=false") {
		t.Fatalf("expected unmatched item log, got:\n%s", out)
	}
}

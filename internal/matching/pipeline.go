package matching

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"bandmatch/internal/likes"
	"bandmatch/internal/logging"
	"bandmatch/internal/services"
	"bandmatch/internal/services/bandcamp"
	"bandmatch/internal/textutil"
)

// Searcher finds the top marketplace result for a query. Implementations
// report failures on the outcome rather than returning errors.
type Searcher interface {
	SearchTrack(ctx context.Context, query string) bandcamp.Outcome
}

// ProgressFunc receives each finished row in input order.
type ProgressFunc func(index int, row Row)

// Pipeline runs normalize, search, score, and threshold for a batch of items.
type Pipeline struct {
	searcher       Searcher
	threshold      float64
	workers        int
	retrySanitized bool
	progress       ProgressFunc
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers sets how many items are searched at once. Values below 1 mean
// sequential processing.
func WithWorkers(workers int) Option {
	return func(p *Pipeline) {
		if workers > 1 {
			p.workers = workers
		}
	}
}

// WithSanitizedRetry enables one extra search with the sanitized title when
// the dash-stripped query returns no result.
func WithSanitizedRetry(enabled bool) Option {
	return func(p *Pipeline) {
		p.retrySanitized = enabled
	}
}

// WithProgress registers a callback invoked once per row, in input order.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) {
		p.progress = fn
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logging.NewComponentLogger(logger, "matching")
	}
}

// New builds a pipeline around searcher.
func New(searcher Searcher, threshold float64, opts ...Option) (*Pipeline, error) {
	if searcher == nil {
		return nil, errors.New("matching pipeline requires a searcher")
	}
	p := &Pipeline{
		searcher:  searcher,
		threshold: threshold,
		workers:   1,
		logger:    logging.NewComponentLogger(nil, "matching"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Threshold returns the minimum score for a match.
func (p *Pipeline) Threshold() float64 {
	return p.threshold
}

// Run processes items and returns one row per item in the same order.
func (p *Pipeline) Run(ctx context.Context, items []likes.Item) []Row {
	rows := make([]Row, len(items))
	tracker := p.newTracker(ctx, len(items))
	if p.workers <= 1 || len(items) <= 1 {
		for i, item := range items {
			rows[i] = p.Process(services.WithItemIndex(ctx, i), item)
			tracker.emit(i, rows[i])
		}
		return rows
	}

	emitter := newOrderedEmitter(len(items), tracker.emit)
	var group errgroup.Group
	group.SetLimit(p.workers)
	for i, item := range items {
		group.Go(func() error {
			rows[i] = p.Process(services.WithItemIndex(ctx, i), item)
			emitter.done(i, rows[i])
			return nil
		})
	}
	_ = group.Wait()
	return rows
}

// Process turns a single item into its row.
func (p *Pipeline) Process(ctx context.Context, item likes.Item) Row {
	logger := logging.WithContext(ctx, p.logger)

	query := textutil.DashStripped(item.Title)
	outcome := p.searcher.SearchTrack(ctx, query)

	if p.retrySanitized && outcome.Error == "" && outcome.Candidate == nil {
		if sanitized := textutil.SanitizeQuery(item.Title); sanitized != "" && sanitized != query {
			logger.Debug("retrying search with sanitized query",
				logging.String("query", query),
				logging.String("sanitized", sanitized),
			)
			outcome = p.searcher.SearchTrack(ctx, sanitized)
		}
	}

	switch {
	case outcome.Error != "":
		outcome.Candidate = nil
		outcome.Score = 0
		logging.WarnWithContext(logger, "bandcamp search failed", "search_failed",
			logging.String("title", item.Title),
			logging.String("search_url", outcome.SearchURL),
			logging.String("error", outcome.Error),
			logging.String(logging.FieldErrorHint, "open the search URL to retry manually"),
			logging.String(logging.FieldImpact, "row reported as a search error"),
		)
	case outcome.Candidate != nil:
		outcome.Score = Score(item.Title, outcome.Candidate.Title, outcome.Candidate.Artist)
	default:
		outcome.Score = 0
	}

	row := NewRow(item, outcome, p.threshold)
	logger.Debug("item processed",
		logging.String("title", item.Title),
		logging.String("status", string(row.Status())),
		logging.Float64("score", outcome.Score),
		logging.Bool("matched", row.Matched),
	)
	return row
}

// runTracker counts finished rows for one Run. Calls to emit are serialized.
type runTracker struct {
	pipeline *Pipeline
	logger   *slog.Logger
	sampler  *logging.ProgressSampler
	total    int
	done     int
	matched  int
}

func (p *Pipeline) newTracker(ctx context.Context, total int) *runTracker {
	return &runTracker{
		pipeline: p,
		logger:   logging.WithContext(ctx, p.logger),
		sampler:  logging.NewProgressSampler(0),
		total:    total,
	}
}

func (t *runTracker) emit(index int, row Row) {
	t.done++
	if row.Matched {
		t.matched++
	}
	if t.sampler.ShouldLog(t.done, t.total) {
		t.logger.Info("search progress",
			logging.Int("done", t.done),
			logging.Int("total", t.total),
			logging.Int("matched", t.matched),
		)
	}
	if t.pipeline.progress != nil {
		t.pipeline.progress(index, row)
	}
}

// orderedEmitter releases finished rows strictly by index.
type orderedEmitter struct {
	mu       sync.Mutex
	finished []bool
	rows     []Row
	next     int
	emit     func(int, Row)
}

func newOrderedEmitter(n int, emit func(int, Row)) *orderedEmitter {
	return &orderedEmitter{
		finished: make([]bool, n),
		rows:     make([]Row, n),
		emit:     emit,
	}
}

func (e *orderedEmitter) done(index int, row Row) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.finished[index] = true
	e.rows[index] = row
	for e.next < len(e.finished) && e.finished[e.next] {
		e.emit(e.next, e.rows[e.next])
		e.next++
	}
}

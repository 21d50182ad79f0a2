package bandcamp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"bandmatch/internal/logging"
)

const (
	// DefaultBaseURL is the marketplace origin searched and used to resolve
	// relative result links.
	DefaultBaseURL = "https://bandcamp.com"
	// DefaultTimeout bounds a single search request.
	DefaultTimeout = 10 * time.Second
	// DefaultUserAgent mimics a desktop Chrome browser.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	// DefaultReferer is sent with every search request.
	DefaultReferer = "https://bandcamp.com/"
	// DefaultAcceptLanguage is sent with every search request.
	DefaultAcceptLanguage = "en-US,en;q=0.9"

	maxBodyBytes = 8 << 20
)

// Candidate is the top search result. Empty fields were missing from the
// result markup.
type Candidate struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	URL    string `json:"url,omitempty"`
}

// Outcome is the complete result of one search attempt. When Error is set the
// candidate is nil and Score is zero. Score is only meaningful with a
// candidate and is filled in by the caller.
type Outcome struct {
	Query     string     `json:"query"`
	SearchURL string     `json:"search_url"`
	Candidate *Candidate `json:"candidate,omitempty"`
	Score     float64    `json:"score"`
	Error     string     `json:"error,omitempty"`
}

// HasCandidateText reports whether the candidate carries a title or artist.
func (o Outcome) HasCandidateText() bool {
	return o.Candidate != nil && (o.Candidate.Title != "" || o.Candidate.Artist != "")
}

// Client searches the Bandcamp search page.
type Client struct {
	base           *url.URL
	timeout        time.Duration
	userAgent      string
	referer        string
	acceptLanguage string
	httpClient     *http.Client
	limiter        *rate.Limiter
	logger         *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient shares the provided HTTP client across calls instead of
// building one per search.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the per-request timeout. Non-positive values keep the
// default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHeaders overrides the browser-like request headers. Blank values keep
// the defaults.
func WithHeaders(userAgent, referer, acceptLanguage string) Option {
	return func(c *Client) {
		if v := strings.TrimSpace(userAgent); v != "" {
			c.userAgent = v
		}
		if v := strings.TrimSpace(referer); v != "" {
			c.referer = v
		}
		if v := strings.TrimSpace(acceptLanguage); v != "" {
			c.acceptLanguage = v
		}
	}
}

// WithRateLimit caps outbound searches per second across all callers sharing
// the client. A non-positive rate disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		} else {
			c.limiter = nil
		}
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "bandcamp")
	}
}

// New creates a search client rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("bandcamp base url required")
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse bandcamp base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("bandcamp base url %q must be absolute", baseURL)
	}
	client := &Client{
		base:           base,
		timeout:        DefaultTimeout,
		userAgent:      DefaultUserAgent,
		referer:        DefaultReferer,
		acceptLanguage: DefaultAcceptLanguage,
		logger:         logging.NewComponentLogger(nil, "bandcamp"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// BaseURL returns the normalized marketplace origin.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// SearchURL returns the search page URL for query.
func (c *Client) SearchURL(query string) string {
	return c.base.String() + "/search?q=" + url.QueryEscape(query)
}

// SearchTrack performs one search and returns its outcome. The returned
// outcome always carries the query and the search URL.
func (c *Client) SearchTrack(ctx context.Context, query string) Outcome {
	outcome := Outcome{Query: query, SearchURL: c.SearchURL(query)}

	doc, err := c.pacedFetch(ctx, outcome.SearchURL)
	if err != nil {
		outcome.Error = err.Error()
		logging.WithContext(ctx, c.logger).Debug("bandcamp search failed",
			logging.String("query", query),
			logging.Error(err),
		)
		return outcome
	}

	outcome.Candidate = firstCandidate(doc, c.base)
	return outcome
}

func (c *Client) pacedFetch(ctx context.Context, searchURL string) (*goquery.Document, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for rate limit: %w", err)
		}
	}
	return c.fetch(ctx, searchURL)
}

func (c *Client) fetch(ctx context.Context, searchURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Referer", c.referer)
	req.Header.Set("Accept-Language", c.acceptLanguage)

	httpClient := c.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: c.timeout}
		defer httpClient.CloseIdleConnections()
	}

	requestStart := time.Now()
	resp, err := httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency.Round(time.Millisecond), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("bandcamp search returned %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}
	c.logger.Debug("bandcamp search page fetched",
		logging.String("url", searchURL),
		logging.Int("status", resp.StatusCode),
		logging.Duration("latency", latency),
	)
	return doc, nil
}

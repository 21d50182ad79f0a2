package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"bandmatch/internal/likes"
	"bandmatch/internal/logging"
	"bandmatch/internal/services"
)

// DefaultPlaylistURL is the signed-in user's liked videos playlist.
const DefaultPlaylistURL = "https://www.youtube.com/playlist?list=LL"

// Client fetches liked videos through yt-dlp.
type Client struct {
	binary      string
	browser     string
	cookieFile  string
	playlistURL string
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBrowser reads cookies from the named browser profile.
func WithBrowser(browser string) Option {
	return func(c *Client) {
		c.browser = strings.TrimSpace(browser)
	}
}

// WithCookieFile reads cookies from a Netscape cookie file. It takes precedence
// over WithBrowser.
func WithCookieFile(path string) Option {
	return func(c *Client) {
		c.cookieFile = strings.TrimSpace(path)
	}
}

// WithPlaylistURL overrides the playlist that is read.
func WithPlaylistURL(playlistURL string) Option {
	return func(c *Client) {
		if v := strings.TrimSpace(playlistURL); v != "" {
			c.playlistURL = v
		}
	}
}

// WithLogger attaches a logger for command diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "ytdlp")
	}
}

// New creates a client that runs binary, defaulting to "yt-dlp".
func New(binary string, opts ...Option) *Client {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "yt-dlp"
	}
	client := &Client{
		binary:      binary,
		playlistURL: DefaultPlaylistURL,
		logger:      logging.NewComponentLogger(nil, "ytdlp"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type playlist struct {
	Entries []entry `json:"entries"`
}

type entry struct {
	Title      string `json:"title"`
	Uploader   string `json:"uploader"`
	Channel    string `json:"channel"`
	URL        string `json:"url"`
	WebpageURL string `json:"webpage_url"`
}

// FetchLikes returns up to limit of the most recently liked videos.
func (c *Client) FetchLikes(ctx context.Context, limit int) ([]likes.Item, error) {
	if limit <= 0 {
		return nil, services.Wrap(services.ErrValidation, "ytdlp", "fetch likes", "limit must be positive", nil)
	}

	args := c.args(limit)
	cmd := exec.CommandContext(ctx, c.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.logger.Debug("running yt-dlp", logging.String("binary", c.binary), logging.Any("args", args))
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, services.Wrap(services.ErrTimeout, "ytdlp", "fetch likes", "", ctxErr)
		}
		var execErr *exec.Error
		if errors.As(err, &execErr) || errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrExternalTool, "ytdlp", "fetch likes", fmt.Sprintf("binary %q not found", c.binary), err)
		}
		return nil, services.Wrap(services.ErrExternalTool, "ytdlp", "fetch likes", strings.TrimSpace(stderr.String()), err)
	}

	items, err := parsePlaylist(stdout.Bytes())
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "ytdlp", "parse playlist", "", err)
	}
	if len(items) > limit {
		items = items[:limit]
	}
	c.logger.Debug("liked videos fetched", logging.Int("count", len(items)))
	return items, nil
}

func (c *Client) args(limit int) []string {
	args := []string{
		"--flat-playlist",
		"--dump-single-json",
		"--skip-download",
		"--no-warnings",
		"--playlist-end", strconv.Itoa(limit),
	}
	switch {
	case c.cookieFile != "":
		args = append(args, "--cookies", c.cookieFile)
	case c.browser != "":
		args = append(args, "--cookies-from-browser", c.browser)
	}
	return append(args, c.playlistURL)
}

func parsePlaylist(data []byte) ([]likes.Item, error) {
	var payload playlist
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode yt-dlp json: %w", err)
	}
	items := make([]likes.Item, 0, len(payload.Entries))
	for _, e := range payload.Entries {
		uploader := e.Uploader
		if uploader == "" {
			uploader = e.Channel
		}
		url := e.URL
		if url == "" {
			url = e.WebpageURL
		}
		items = append(items, likes.Item{Title: e.Title, Uploader: uploader, URL: url})
	}
	return items, nil
}

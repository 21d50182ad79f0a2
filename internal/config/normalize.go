package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeSearch()
	if err := c.normalizeMatching(); err != nil {
		return err
	}
	if err := c.normalizeYouTube(); err != nil {
		return err
	}
	if err := c.normalizeReport(); err != nil {
		return err
	}
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeSearch() {
	c.Search.BaseURL = strings.TrimRight(strings.TrimSpace(c.Search.BaseURL), "/")
	if c.Search.BaseURL == "" {
		c.Search.BaseURL = defaultSearchBaseURL
	}
	if c.Search.TimeoutSeconds == 0 {
		c.Search.TimeoutSeconds = defaultSearchTimeoutSeconds
	}
	c.Search.UserAgent = strings.TrimSpace(c.Search.UserAgent)
	if c.Search.UserAgent == "" {
		c.Search.UserAgent = defaultSearchUserAgent
	}
	c.Search.Referer = strings.TrimSpace(c.Search.Referer)
	if c.Search.Referer == "" {
		c.Search.Referer = defaultSearchReferer
	}
	c.Search.AcceptLanguage = strings.TrimSpace(c.Search.AcceptLanguage)
	if c.Search.AcceptLanguage == "" {
		c.Search.AcceptLanguage = defaultSearchAcceptLanguage
	}
}

func (c *Config) normalizeMatching() error {
	if value, ok := os.LookupEnv("BANDMATCH_THRESHOLD"); ok && strings.TrimSpace(value) != "" {
		threshold, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("BANDMATCH_THRESHOLD: %w", err)
		}
		c.Matching.Threshold = threshold
	}
	if c.Matching.Workers == 0 {
		c.Matching.Workers = defaultWorkers
	}
	return nil
}

func (c *Config) normalizeYouTube() error {
	if value, ok := os.LookupEnv("BANDMATCH_YTDLP"); ok && strings.TrimSpace(value) != "" {
		c.YouTube.YtDlpBinary = value
	}
	c.YouTube.YtDlpBinary = strings.TrimSpace(c.YouTube.YtDlpBinary)
	if c.YouTube.YtDlpBinary == "" {
		c.YouTube.YtDlpBinary = defaultYtDlpBinary
	}
	if value, ok := os.LookupEnv("BANDMATCH_BROWSER"); ok && strings.TrimSpace(value) != "" {
		c.YouTube.Browser = value
	}
	c.YouTube.Browser = strings.ToLower(strings.TrimSpace(c.YouTube.Browser))
	if c.YouTube.CookieFile == "" {
		if value, ok := os.LookupEnv("BANDMATCH_COOKIE_FILE"); ok {
			c.YouTube.CookieFile = value
		}
	}
	// The cookie path stays as supplied; it is expanded and checked when a run starts.
	c.YouTube.CookieFile = strings.TrimSpace(c.YouTube.CookieFile)
	c.YouTube.PlaylistURL = strings.TrimSpace(c.YouTube.PlaylistURL)
	if c.YouTube.PlaylistURL == "" {
		c.YouTube.PlaylistURL = defaultPlaylistURL
	}
	if c.YouTube.FetchTimeoutSeconds == 0 {
		c.YouTube.FetchTimeoutSeconds = defaultFetchTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizeReport() error {
	c.Report.Path = strings.TrimSpace(c.Report.Path)
	if c.Report.Path == "" {
		c.Report.Path = defaultReportPath
	}
	var err error
	if c.Report.Path, err = expandPath(c.Report.Path); err != nil {
		return fmt.Errorf("report.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeHistory() error {
	c.History.DBPath = strings.TrimSpace(c.History.DBPath)
	if c.History.DBPath == "" {
		c.History.DBPath = defaultHistoryDBPath
	}
	var err error
	if c.History.DBPath, err = expandPath(c.History.DBPath); err != nil {
		return fmt.Errorf("history.db_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	if value, ok := os.LookupEnv("BANDMATCH_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		var err error
		if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}

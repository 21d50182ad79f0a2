package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateSearch() error {
	parsed, err := url.Parse(c.Search.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("search.base_url must be an absolute URL, got %q", c.Search.BaseURL)
	}
	if c.Search.TimeoutSeconds < 0 {
		return errors.New("search.timeout_seconds must be positive")
	}
	if c.Search.RequestsPerSecond < 0 {
		return errors.New("search.requests_per_second must not be negative")
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.Threshold < 0 || c.Matching.Threshold > 1 {
		return errors.New("matching.threshold must be between 0 and 1")
	}
	if c.Matching.Limit <= 0 {
		return errors.New("matching.limit must be positive")
	}
	if c.Matching.Workers < 1 || c.Matching.Workers > maxWorkers {
		return fmt.Errorf("matching.workers must be between 1 and %d", maxWorkers)
	}
	return nil
}

func (c *Config) validateYouTube() error {
	if c.YouTube.FetchTimeoutSeconds < 0 {
		return errors.New("youtube.fetch_timeout_seconds must be positive")
	}
	if _, err := url.ParseRequestURI(c.YouTube.PlaylistURL); err != nil {
		return fmt.Errorf("youtube.playlist_url: %w", err)
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.CacheTTLHours < 0 {
		return errors.New("history.cache_ttl_hours must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

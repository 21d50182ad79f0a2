package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"bandmatch/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Search contains settings for the Bandcamp search client.
type Search struct {
	BaseURL           string  `toml:"base_url"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	UserAgent         string  `toml:"user_agent"`
	Referer           string  `toml:"referer"`
	AcceptLanguage    string  `toml:"accept_language"`
	RequestsPerSecond float64 `toml:"requests_per_second"` // 0 disables pacing
	RetrySanitized    bool    `toml:"retry_sanitized"`
}

// Matching contains pipeline settings.
type Matching struct {
	Threshold float64 `toml:"threshold"`
	Limit     int     `toml:"limit"`
	Workers   int     `toml:"workers"`
}

// YouTube contains settings for fetching liked videos through yt-dlp.
type YouTube struct {
	YtDlpBinary         string `toml:"ytdlp_binary"`
	Browser             string `toml:"browser"`
	CookieFile          string `toml:"cookie_file"`
	PlaylistURL         string `toml:"playlist_url"`
	FetchTimeoutSeconds int    `toml:"fetch_timeout_seconds"`
}

// Report contains settings for the static HTML report.
type Report struct {
	Path        string `toml:"path"`
	OpenBrowser bool   `toml:"open_browser"`
}

// History contains settings for the run history and search cache database.
type History struct {
	Enabled       bool   `toml:"enabled"`
	DBPath        string `toml:"db_path"`
	CacheTTLHours int    `toml:"cache_ttl_hours"` // 0 disables the search cache
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for bandmatch.
//
// Configuration sections by subsystem:
//   - Search: Bandcamp endpoint, request headers, pacing, sanitized retry
//   - Matching: score threshold, like limit, worker count
//   - YouTube: yt-dlp binary and cookie source
//   - Report: HTML report location and browser launch
//   - History: SQLite run log and search cache
//   - Logging: log format, level, and optional file
type Config struct {
	Search   Search   `toml:"search"`
	Matching Matching `toml:"matching"`
	YouTube  YouTube  `toml:"youtube"`
	Report   Report   `toml:"report"`
	History  History  `toml:"history"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/bandmatch/config.toml")
}

// Load locates, parses, and validates a configuration file. A .env file in the
// working directory is read first so it can supply environment fallbacks. The
// returned config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, "", false, err
	}

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// LoadDotEnv exports the variables of a dotenv file that are not already set
// in the environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("bandmatch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the history database needs.
func (c *Config) EnsureDirectories() error {
	if !c.History.Enabled || strings.TrimSpace(c.History.DBPath) == "" {
		return nil
	}
	dir := filepath.Dir(c.History.DBPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}

// SearchTimeout returns the per-request search timeout.
func (c *Config) SearchTimeout() time.Duration {
	return time.Duration(c.Search.TimeoutSeconds) * time.Second
}

// FetchTimeout returns the time limit for the yt-dlp likes fetch.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.YouTube.FetchTimeoutSeconds) * time.Second
}

// CacheTTL returns how long cached search outcomes stay fresh. Zero means the
// cache is disabled.
func (c *Config) CacheTTL() time.Duration {
	if !c.History.Enabled {
		return 0
	}
	return time.Duration(c.History.CacheTTLHours) * time.Hour
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if err := fileutil.WriteFileAtomic(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

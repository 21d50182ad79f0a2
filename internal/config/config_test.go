package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"bandmatch/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "bandmatch", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantDB := filepath.Join(tempHome, ".local", "share", "bandmatch", "bandmatch.db")
	if cfg.History.DBPath != wantDB {
		t.Fatalf("unexpected db path: got %q want %q", cfg.History.DBPath, wantDB)
	}
	if !filepath.IsAbs(cfg.Report.Path) || filepath.Base(cfg.Report.Path) != "results.html" {
		t.Fatalf("unexpected report path %q", cfg.Report.Path)
	}
	if cfg.Matching.Threshold != 0.75 {
		t.Fatalf("unexpected threshold %v", cfg.Matching.Threshold)
	}
	if cfg.Matching.Limit != 20 {
		t.Fatalf("unexpected limit %d", cfg.Matching.Limit)
	}
	if cfg.YouTube.Browser != "chrome" {
		t.Fatalf("unexpected browser %q", cfg.YouTube.Browser)
	}
	if cfg.SearchTimeout() != 10*time.Second {
		t.Fatalf("unexpected search timeout %v", cfg.SearchTimeout())
	}
	if cfg.CacheTTL() != 24*time.Hour {
		t.Fatalf("unexpected cache ttl %v", cfg.CacheTTL())
	}
	if cfg.Search.RetrySanitized {
		t.Fatal("expected sanitized retry to be off by default")
	}
}

func TestLoadReadsFileAndEnvFallbacks(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("BANDMATCH_COOKIE_FILE", "~/cookies.txt")
	t.Setenv("BANDMATCH_BROWSER", "Firefox")
	t.Setenv("BANDMATCH_LOG_LEVEL", "DEBUG")

	path := filepath.Join(tempHome, "custom.toml")
	content := `
[search]
requests_per_second = 2.5
retry_sanitized = true

[matching]
threshold = 0.9
workers = 4

[history]
enabled = false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config file %q to be used, got %q (exists=%v)", path, resolved, exists)
	}
	if cfg.Matching.Threshold != 0.9 || cfg.Matching.Workers != 4 {
		t.Fatalf("unexpected matching section %#v", cfg.Matching)
	}
	if cfg.Search.RequestsPerSecond != 2.5 || !cfg.Search.RetrySanitized {
		t.Fatalf("unexpected search section %#v", cfg.Search)
	}
	if cfg.YouTube.CookieFile != "~/cookies.txt" {
		t.Fatalf("expected cookie file from env kept as supplied, got %q", cfg.YouTube.CookieFile)
	}
	if cfg.YouTube.Browser != "firefox" {
		t.Fatalf("expected browser from env, got %q", cfg.YouTube.Browser)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected log level from env, got %q", cfg.Logging.Level)
	}
	if cfg.CacheTTL() != 0 {
		t.Fatalf("expected cache disabled with history off, got %v", cfg.CacheTTL())
	}
}

func TestLoadThresholdFromEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BANDMATCH_THRESHOLD", "0.6")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Matching.Threshold != 0.6 {
		t.Fatalf("expected threshold from env, got %v", cfg.Matching.Threshold)
	}

	t.Setenv("BANDMATCH_THRESHOLD", "high")
	if _, _, _, err := config.Load(""); err == nil {
		t.Fatal("expected error for unparsable threshold")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"threshold too high", func(c *config.Config) { c.Matching.Threshold = 1.5 }, "matching.threshold"},
		{"threshold negative", func(c *config.Config) { c.Matching.Threshold = -0.1 }, "matching.threshold"},
		{"zero limit", func(c *config.Config) { c.Matching.Limit = 0 }, "matching.limit"},
		{"too many workers", func(c *config.Config) { c.Matching.Workers = 100 }, "matching.workers"},
		{"relative base url", func(c *config.Config) { c.Search.BaseURL = "bandcamp.com" }, "search.base_url"},
		{"negative rate", func(c *config.Config) { c.Search.RequestsPerSecond = -1 }, "search.requests_per_second"},
		{"negative ttl", func(c *config.Config) { c.History.CacheTTLHours = -1 }, "history.cache_ttl_hours"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateSampleProducesLoadableConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded map[string]any
	if err := toml.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(sample) returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to be found")
	}
	defaults := config.Default()
	if cfg.Matching != defaults.Matching {
		t.Fatalf("sample matching section drifted from defaults: %#v vs %#v", cfg.Matching, defaults.Matching)
	}
	if cfg.Search.UserAgent != defaults.Search.UserAgent {
		t.Fatalf("sample user agent drifted from defaults: %q", cfg.Search.UserAgent)
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv("BANDMATCH_DOTENV_LOADED", "")
	os.Unsetenv("BANDMATCH_DOTENV_LOADED")
	t.Setenv("BANDMATCH_DOTENV_KEEP", "from-env")

	path := filepath.Join(t.TempDir(), ".env")
	content := "BANDMATCH_DOTENV_LOADED=from-file\nBANDMATCH_DOTENV_KEEP=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	if err := config.LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv returned error: %v", err)
	}
	if got := os.Getenv("BANDMATCH_DOTENV_LOADED"); got != "from-file" {
		t.Fatalf("expected variable from file, got %q", got)
	}
	if got := os.Getenv("BANDMATCH_DOTENV_KEEP"); got != "from-env" {
		t.Fatalf("expected existing variable to win, got %q", got)
	}

	if err := config.LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("expected missing env file to be ignored, got %v", err)
	}
}

func TestEnsureDirectoriesCreatesHistoryDir(t *testing.T) {
	cfg := config.Default()
	cfg.History.DBPath = filepath.Join(t.TempDir(), "a", "b", "bandmatch.db")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	if info, err := os.Stat(filepath.Dir(cfg.History.DBPath)); err != nil || !info.IsDir() {
		t.Fatalf("expected history directory to exist: %v", err)
	}
}

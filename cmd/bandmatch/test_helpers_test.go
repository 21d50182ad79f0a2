package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"bandmatch/internal/config"
	"bandmatch/internal/testsupport"
)

type fakeLike struct {
	Title    string `json:"title"`
	Uploader string `json:"uploader"`
	URL      string `json:"url"`
}

type searchResult struct {
	Title  string
	Artist string
	Path   string
}

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	server     *httptest.Server
	searches   *atomic.Int64
}

type envOption func(*envSettings)

type envSettings struct {
	likes    []fakeLike
	results  map[string]searchResult
	failures map[string]int
}

func withLikes(likes ...fakeLike) envOption {
	return func(s *envSettings) { s.likes = likes }
}

func withResult(query string, result searchResult) envOption {
	return func(s *envSettings) { s.results[query] = result }
}

func withFailure(query string, status int) envOption {
	return func(s *envSettings) { s.failures[query] = status }
}

func setupCLITestEnv(t *testing.T, opts ...envOption) *cliTestEnv {
	t.Helper()

	settings := &envSettings{
		results:  make(map[string]searchResult),
		failures: make(map[string]int),
	}
	for _, opt := range opts {
		opt(settings)
	}

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	searches := new(atomic.Int64)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		searches.Add(1)
		query := r.URL.Query().Get("q")
		if status, ok := settings.failures[query]; ok {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		result, ok := settings.results[query]
		if !ok {
			_, _ = w.Write([]byte(`<html><body><ul class="result-items"></ul></body></html>`))
			return
		}
		fmt.Fprintf(w, `<html><body><ul class="result-items"><li class="searchresult">
<a href="%s">art</a><div class="heading"><a href="%s">%s</a></div><div class="subhead">%s</div>
</li></ul></body></html>`, result.Path, result.Path, result.Title, result.Artist)
	}))
	t.Cleanup(server.Close)

	payload, err := json.Marshal(map[string]any{"entries": settings.likes})
	if err != nil {
		t.Fatalf("encode likes: %v", err)
	}
	playlistPath := filepath.Join(base, "playlist.json")
	testsupport.WriteFile(t, playlistPath, string(payload))
	binDir := filepath.Join(base, "bin")
	ytdlp := testsupport.WriteExecutable(t, binDir, "yt-dlp", "cat '"+playlistPath+"'\n")

	cfg.Search.BaseURL = server.URL
	cfg.YouTube.YtDlpBinary = ytdlp
	cfg.YouTube.Browser = "firefox"
	cfg.Logging.Level = "error"

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		server:     server,
		searches:   searches,
	}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	testsupport.WriteFile(t, path, string(content))
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}

package config

const (
	defaultSearchBaseURL        = "https://bandcamp.com"
	defaultSearchTimeoutSeconds = 10
	defaultSearchUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultSearchReferer        = "https://bandcamp.com/"
	defaultSearchAcceptLanguage = "en-US,en;q=0.9"
	defaultMatchThreshold       = 0.75
	defaultLikeLimit            = 20
	defaultWorkers              = 1
	maxWorkers                  = 16
	defaultYtDlpBinary          = "yt-dlp"
	defaultBrowser              = "chrome"
	defaultPlaylistURL          = "https://www.youtube.com/playlist?list=LL"
	defaultFetchTimeoutSeconds  = 120
	defaultReportPath           = "results.html"
	defaultHistoryDBPath        = "~/.local/share/bandmatch/bandmatch.db"
	defaultCacheTTLHours        = 24
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Search: Search{
			BaseURL:        defaultSearchBaseURL,
			TimeoutSeconds: defaultSearchTimeoutSeconds,
			UserAgent:      defaultSearchUserAgent,
			Referer:        defaultSearchReferer,
			AcceptLanguage: defaultSearchAcceptLanguage,
		},
		Matching: Matching{
			Threshold: defaultMatchThreshold,
			Limit:     defaultLikeLimit,
			Workers:   defaultWorkers,
		},
		YouTube: YouTube{
			YtDlpBinary:         defaultYtDlpBinary,
			Browser:             defaultBrowser,
			PlaylistURL:         defaultPlaylistURL,
			FetchTimeoutSeconds: defaultFetchTimeoutSeconds,
		},
		Report: Report{
			Path:        defaultReportPath,
			OpenBrowser: true,
		},
		History: History{
			Enabled:       true,
			DBPath:        defaultHistoryDBPath,
			CacheTTLHours: defaultCacheTTLHours,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

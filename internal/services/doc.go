// Package services defines shared utilities consumed by the match pipeline and
// its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs and item positions for logging.
//   - Structured error markers plus the Wrap helper so callers can tell
//     pre-flight failures (validation, configuration, missing tools) from
//     per-item problems.
//
// Integrations with outside systems live in subpackages: bandcamp for the
// marketplace search page and ytdlp for the liked-videos playlist.
package services

// Package logging assembles structured slog loggers and attribute helpers used
// across bandmatch.
//
// It owns the console (tint) and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers that tag log lines with the run
// ID and source item position. Logs go to stderr by default because stdout
// carries match results. The package also provides a no-op logger for tests
// and wiring code that cannot fail.
package logging

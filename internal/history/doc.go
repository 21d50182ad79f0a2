// Package history persists match runs and caches search outcomes in SQLite.
//
// The database lives at history.db_path and is opened with WAL journaling and
// a busy timeout; writes retry with backoff when another connection holds the
// lock. The schema is embedded and versioned: a database written by a
// different schema version is rejected rather than migrated, and users are
// told to delete it.
//
// CachedSearcher wraps any matching.Searcher with a TTL cache keyed by query.
// Errored outcomes are never cached, and cached outcomes are always rescored
// by the pipeline. Lock provides the file lock that keeps two match runs from
// writing the same database concurrently.
package history

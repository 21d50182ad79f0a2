package testsupport

import (
	"context"
	"testing"

	"bandmatch/internal/config"
	"bandmatch/internal/history"
	"bandmatch/internal/matching"
)

// MustOpenStore opens a history.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg.History.DBPath)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// RecordRun stores rows as a new run and returns its ID.
func RecordRun(t testing.TB, store *history.Store, run history.Run, rows []matching.Row) string {
	t.Helper()

	id, err := store.RecordRun(context.Background(), run, rows)
	if err != nil {
		t.Fatalf("store.RecordRun: %v", err)
	}
	return id
}

package testsupport

import (
	"context"
	"testing"

	"voicedecoder/internal/config"
	"voicedecoder/internal/history"
)

// MustOpenStore opens a history.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// FinishedRun records a completed run for tests and returns it.
func FinishedRun(t testing.TB, store *history.Store, input, document string) history.Run {
	t.Helper()

	ctx := context.Background()
	run, err := store.Begin(ctx, history.Run{Input: input, Model: "medium"})
	if err != nil {
		t.Fatalf("store.Begin: %v", err)
	}
	if err := store.Finish(ctx, run.ID, history.Outcome{Status: history.StatusCompleted, Device: "cpu", Document: document}); err != nil {
		t.Fatalf("store.Finish: %v", err)
	}
	return run
}

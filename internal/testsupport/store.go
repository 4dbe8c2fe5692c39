package testsupport

import (
	"testing"

	"rallycut/internal/config"
	"rallycut/internal/feedback"
)

// MustOpenStore opens a feedback.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *feedback.Store {
	t.Helper()

	store, err := feedback.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

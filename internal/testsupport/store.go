package testsupport

import (
	"context"
	"testing"

	"stockscan/internal/config"
	"stockscan/internal/queue"
	"stockscan/internal/warehouse"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustOperation builds a non-bundle movement for tag.
func MustOperation(t testing.TB, tag string, direction warehouse.Direction, projectID int64, qty int) queue.Operation {
	t.Helper()

	op, err := queue.NewOperation(tag, direction, projectID, qty, warehouse.BundleModeNone, false)
	if err != nil {
		t.Fatalf("queue.NewOperation: %v", err)
	}
	return op
}

// MustEnqueue appends a non-bundle movement for tag to store.
func MustEnqueue(t testing.TB, store *queue.Store, tag string) queue.Entry {
	t.Helper()

	entry, err := store.Enqueue(context.Background(), MustOperation(t, tag, warehouse.DirectionOut, 1, 1))
	if err != nil {
		t.Fatalf("store.Enqueue: %v", err)
	}
	return entry
}

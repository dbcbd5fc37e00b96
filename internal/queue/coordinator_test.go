package queue_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"stockscan/internal/network"
	"stockscan/internal/queue"
	"stockscan/internal/testsupport"
)

type fakeSource struct {
	ch       chan struct{}
	mu       sync.Mutex
	detached bool
}

func (f *fakeSource) Subscribe() (<-chan struct{}, func()) {
	return f.ch, func() {
		f.mu.Lock()
		f.detached = true
		f.mu.Unlock()
	}
}

func TestCoordinatorFlushesOnReconnect(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	testsupport.MustEnqueue(t, store, "A")

	source := &fakeSource{ch: make(chan struct{}, 1)}
	var sent []string
	coord := queue.NewCoordinator(store, func(_ context.Context, e queue.Entry) error {
		sent = append(sent, e.Operation.Tag())
		return nil
	}, source)

	results := make(chan queue.FlushResult, 1)
	coord.OnResult(func(r queue.FlushResult) { results <- r })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- coord.Run(ctx) }()

	source.ch <- struct{}{}
	select {
	case r := <-results:
		if r.Processed != 1 || r.Remaining != 0 {
			t.Fatalf("unexpected result %#v", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reconnect did not trigger a flush")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	source.mu.Lock()
	detached := source.detached
	source.mu.Unlock()
	if !detached {
		t.Fatal("expected subscription detached on exit")
	}
	if len(sent) != 1 || sent[0] != "A" {
		t.Fatalf("unexpected sends %v", sent)
	}
}

func TestCoordinatorKeepsSignalRaisedBeforeLoopStarts(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	testsupport.MustEnqueue(t, store, "A")

	monitor := network.NewMonitor(nil)
	monitor.Set(network.Offline)
	results := make(chan queue.FlushResult, 1)
	coord := queue.NewCoordinator(store, func(context.Context, queue.Entry) error { return nil }, monitor)
	coord.OnResult(func(r queue.FlushResult) { results <- r })

	loop, stop := coord.Listen()
	defer stop()
	monitor.Set(network.Online)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop(ctx) }()

	select {
	case r := <-results:
		if r.Processed != 1 || r.Remaining != 0 {
			t.Fatalf("unexpected result %#v", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reconnect raised before the loop started was lost")
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("loop: %v", err)
	}
}

func TestCoordinatorSyncNow(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	testsupport.MustEnqueue(t, store, "A")
	testsupport.MustEnqueue(t, store, "B")

	coord := queue.NewCoordinator(store, func(context.Context, queue.Entry) error { return nil }, nil)
	result, err := coord.SyncNow(context.Background())
	if err != nil {
		t.Fatalf("SyncNow: %v", err)
	}
	if result.Processed != 2 {
		t.Fatalf("expected 2 processed, got %d", result.Processed)
	}
}

func TestSubmitSenderUsesClientRef(t *testing.T) {
	api := testsupport.NewAPIServer(t)
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	entry := testsupport.MustEnqueue(t, store, "A")

	client := newClient(api.URL)
	if _, err := store.Flush(context.Background(), queue.SubmitSender(client)); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	scans := api.Scans()
	if len(scans) != 1 || scans[0].IdempotencyKey != entry.ClientRef || scans[0].Request.TagValue != "A" {
		t.Fatalf("unexpected submissions %#v", scans)
	}
}

package scan_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"stockscan/internal/queue"
	"stockscan/internal/scan"
	"stockscan/internal/services"
	"stockscan/internal/tagresolve"
	"stockscan/internal/testsupport"
	"stockscan/internal/warehouse"
)

type harness struct {
	api   *testsupport.APIServer
	store *queue.Store
	ctrl  *scan.Controller
}

func newHarness(t *testing.T, baseURL string, conn scan.Connectivity) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	client := warehouse.New(baseURL, "", http.DefaultClient)
	ctrl, err := scan.NewController(scan.Deps{
		Resolver:     tagresolve.NewClient(client, nil),
		Submitter:    client,
		Queue:        store,
		Connectivity: conn,
	}, scan.Options{Direction: warehouse.DirectionOut, ProjectInput: "12", ProjectIDMaxDigits: 9})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	t.Cleanup(ctrl.Close)
	return &harness{store: store, ctrl: ctrl}
}

func newOnlineHarness(t *testing.T) *harness {
	t.Helper()
	api := testsupport.NewAPIServer(t)
	h := newHarness(t, api.URL, nil)
	h.api = api
	return h
}

func deadURL(t *testing.T) string {
	t.Helper()
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()
	return url
}

func depth(t *testing.T, store *queue.Store) int {
	t.Helper()
	n, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	return n
}

func TestOnlineSubmitSucceeds(t *testing.T) {
	h := newOnlineHarness(t)
	h.api.SetTag("T1", http.StatusOK, `{"kind":"item","item_id":5}`)
	ctx := context.Background()

	if err := h.ctrl.Scan(ctx, "T1"); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	view := h.ctrl.Snapshot()
	if view.State != scan.Ready || view.BundleModePrompt || !view.SubmitEnabled {
		t.Fatalf("unexpected view after item scan: %#v", view)
	}

	before := depth(t, h.store)
	if err := h.ctrl.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	view = h.ctrl.Snapshot()
	if view.State != scan.Success || view.Tag != "" || view.Resolution != "" {
		t.Fatalf("expected cleared success view, got %#v", view)
	}
	if depth(t, h.store) != before {
		t.Fatal("queue depth changed on online success")
	}

	scans := h.api.Scans()
	if len(scans) != 1 {
		t.Fatalf("expected one submission, got %d", len(scans))
	}
	req := scans[0].Request
	if req.TagValue != "T1" || req.ProjectID != 12 || req.Quantity != 1 || req.Direction != warehouse.DirectionOut {
		t.Fatalf("unexpected request %#v", req)
	}
	if req.BundleMode != nil {
		t.Fatal("item submission must carry a null bundle_mode")
	}
	if scans[0].IdempotencyKey == "" {
		t.Fatal("expected idempotency key on direct submission")
	}
}

func TestOfflineSubmitEnqueuesInOrder(t *testing.T) {
	h := newHarness(t, deadURL(t), nil)
	ctx := context.Background()

	for i, tag := range []string{"A", "B", "C"} {
		if err := h.ctrl.Scan(ctx, tag); err != nil {
			t.Fatalf("Scan: %v", err)
		}
		view := h.ctrl.Snapshot()
		if view.State != scan.Ready || view.Status != scan.MsgWorkingOffline || !view.SubmitEnabled {
			t.Fatalf("offline resolution should leave form usable, got %#v", view)
		}
		if err := h.ctrl.Submit(ctx); err != nil {
			t.Fatalf("Submit: %v", err)
		}
		view = h.ctrl.Snapshot()
		if view.State != scan.QueuedOffline || view.Status != scan.MsgQueuedOffline || view.Tag != "" {
			t.Fatalf("unexpected view %#v", view)
		}
		if view.Pending != i+1 || depth(t, h.store) != i+1 {
			t.Fatalf("pending=%d depth=%d, want %d", view.Pending, depth(t, h.store), i+1)
		}
	}

	entries, err := h.store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for i, want := range []string{"A", "B", "C"} {
		if entries[i].Operation.Tag() != want {
			t.Fatalf("entry %d = %s, want %s", i, entries[i].Operation.Tag(), want)
		}
	}
}

type offline struct{}

func (offline) Offline() bool { return true }

func TestKnownOfflineSkipsNetwork(t *testing.T) {
	api := testsupport.NewAPIServer(t)
	h := newHarness(t, api.URL, offline{})
	ctx := context.Background()

	if err := h.ctrl.Scan(ctx, "A"); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if err := h.ctrl.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if api.Lookups() != 0 || len(api.Scans()) != 0 {
		t.Fatal("no requests expected while offline")
	}
	if h.ctrl.Snapshot().State != scan.QueuedOffline || depth(t, h.store) != 1 {
		t.Fatal("expected movement queued offline")
	}
}

func TestEmptyBundleRequiresMode(t *testing.T) {
	h := newOnlineHarness(t)
	h.api.SetTag("CASE", http.StatusOK, `{"kind":"bundle","bundle_id":3,"components":[]}`)
	ctx := context.Background()

	if err := h.ctrl.Scan(ctx, "CASE"); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	view := h.ctrl.Snapshot()
	if view.State != scan.AwaitingBundleMode || !view.BundleModePrompt || view.SubmitEnabled {
		t.Fatalf("bundle should await mode, got %#v", view)
	}
	if !strings.Contains(view.Status, "no known components") {
		t.Fatalf("expected no known components message, got %q", view.Status)
	}
	if err := h.ctrl.Submit(ctx); !errors.Is(err, scan.ErrNotReady) {
		t.Fatalf("expected ErrNotReady before mode chosen, got %v", err)
	}
	if len(h.api.Scans()) != 0 {
		t.Fatal("no submission expected before mode chosen")
	}

	if err := h.ctrl.ChooseBundleMode(warehouse.BundleModeBookAll); err != nil {
		t.Fatalf("ChooseBundleMode: %v", err)
	}
	if err := h.ctrl.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	scans := h.api.Scans()
	if len(scans) != 1 || scans[0].Request.BundleMode == nil || *scans[0].Request.BundleMode != warehouse.BundleModeBookAll {
		t.Fatalf("expected book_all submission, got %#v", scans)
	}
}

func TestBundleModeRequiredKeepsScan(t *testing.T) {
	h := newOnlineHarness(t)
	h.api.SetTag("T1", http.StatusOK, `{"kind":"unknown"}`)
	h.api.QueueScanResponse(http.StatusConflict, `{"code":"bundle_mode_required","detail":"Tag is a bundle"}`)
	ctx := context.Background()

	if err := h.ctrl.Scan(ctx, "T1"); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if view := h.ctrl.Snapshot(); view.StatusKind != scan.StatusWarning {
		t.Fatalf("unknown tag should warn, got %#v", view)
	}
	if err := h.ctrl.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	view := h.ctrl.Snapshot()
	if view.State != scan.AwaitingBundleMode || view.Outcome != scan.BundleModeRequired {
		t.Fatalf("expected AwaitingBundleMode, got %#v", view)
	}
	if view.Tag != "T1" || !view.BundleModePrompt {
		t.Fatalf("scan must be kept with the prompt shown, got %#v", view)
	}
	if depth(t, h.store) != 0 {
		t.Fatal("nothing may be enqueued on bundle_mode_required")
	}

	if err := h.ctrl.ChooseBundleMode(warehouse.BundleModeExplode); err != nil {
		t.Fatalf("ChooseBundleMode: %v", err)
	}
	if err := h.ctrl.Submit(ctx); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if h.ctrl.Snapshot().State != scan.Success {
		t.Fatalf("expected success after choosing mode, got %#v", h.ctrl.Snapshot())
	}
}

func TestProjectIDValidatedLocally(t *testing.T) {
	h := newOnlineHarness(t)
	h.api.SetTag("T1", http.StatusOK, `{"kind":"item","item_id":1}`)
	ctx := context.Background()

	if err := h.ctrl.Scan(ctx, "T1"); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	h.ctrl.SetProjectInput("12a")
	err := h.ctrl.Submit(ctx)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	view := h.ctrl.Snapshot()
	if view.Status != scan.MsgProjectNumeric {
		t.Fatalf("status = %q", view.Status)
	}
	if len(h.api.Scans()) != 0 || depth(t, h.store) != 0 {
		t.Fatal("local validation must not touch the network or queue")
	}
}

func TestQuantityCoercion(t *testing.T) {
	h := newOnlineHarness(t)
	h.api.SetTag("T1", http.StatusOK, `{"kind":"item","item_id":1}`)
	ctx := context.Background()

	for _, input := range []string{"0", "-4", "abc", ""} {
		if got := h.ctrl.SetQuantityInput(input); got != 1 {
			t.Fatalf("SetQuantityInput(%q) = %d, want 1", input, got)
		}
	}
	if err := h.ctrl.Scan(ctx, "T1"); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	h.ctrl.SetQuantityInput("-2")
	if err := h.ctrl.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if scans := h.api.Scans(); len(scans) != 1 || scans[0].Request.Quantity != 1 {
		t.Fatalf("expected qty 1, got %#v", scans)
	}
}

func TestNotFoundOutcomes(t *testing.T) {
	h := newOnlineHarness(t)
	ctx := context.Background()

	if err := h.ctrl.Scan(ctx, "MISSING"); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	view := h.ctrl.Snapshot()
	if view.State != scan.Rejected || view.Status != scan.MsgTagNotLinked || view.SubmitEnabled {
		t.Fatalf("expected rejected resolution, got %#v", view)
	}

	h.api.SetTag("T1", http.StatusOK, `{"kind":"item","item_id":1}`)
	h.api.QueueScanResponse(http.StatusNotFound, `{"detail":"Tag not found"}`)
	if err := h.ctrl.Scan(ctx, "T1"); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if err := h.ctrl.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	view = h.ctrl.Snapshot()
	if view.State != scan.Rejected || view.Tag != "" || depth(t, h.store) != 0 {
		t.Fatalf("expected cleared rejection without enqueue, got %#v", view)
	}
}

func TestConflictAndOtherErrors(t *testing.T) {
	h := newOnlineHarness(t)
	h.api.SetTag("T1", http.StatusOK, `{"kind":"item","item_id":1}`)
	h.api.QueueScanResponse(http.StatusConflict, `{"code":"conflict","message":"Item booked elsewhere","crew_conflicts":[],"transport_conflicts":[{"id":1}]}`)
	h.api.QueueScanResponse(http.StatusUnprocessableEntity, `{"detail":"Project is closed"}`)
	h.api.QueueScanResponse(http.StatusInternalServerError, `boom`)
	ctx := context.Background()

	want := []struct {
		state  scan.State
		status string
	}{
		{scan.ConflictBlocked, "Item booked elsewhere (1 transport conflict)"},
		{scan.Error, "Project is closed"},
		{scan.Error, scan.MsgSubmitFailed},
	}
	for _, w := range want {
		if err := h.ctrl.Scan(ctx, "T1"); err != nil {
			t.Fatalf("Scan: %v", err)
		}
		if err := h.ctrl.Submit(ctx); err != nil {
			t.Fatalf("Submit: %v", err)
		}
		view := h.ctrl.Snapshot()
		if view.State != w.state || view.Status != w.status {
			t.Fatalf("got %s %q, want %s %q", view.State, view.Status, w.state, w.status)
		}
		if view.SubmitEnabled {
			t.Fatal("terminal outcomes disable submit until a new scan")
		}
	}
	if depth(t, h.store) != 0 {
		t.Fatal("structured errors must never be enqueued")
	}
}

type blockingResolver struct {
	mu      sync.Mutex
	release map[string]chan struct{}
}

func (b *blockingResolver) gate(tag string) chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.release == nil {
		b.release = make(map[string]chan struct{})
	}
	if _, ok := b.release[tag]; !ok {
		b.release[tag] = make(chan struct{})
	}
	return b.release[tag]
}

func (b *blockingResolver) Resolve(ctx context.Context, tag string) (tagresolve.Resolution, error) {
	if tag == "A" {
		<-b.gate(tag)
		return tagresolve.BundleResolution{BundleID: 1}, nil
	}
	return tagresolve.ItemResolution{ItemID: 2}, nil
}

func TestStaleResolutionIsDiscarded(t *testing.T) {
	resolver := &blockingResolver{}
	ctrl, err := scan.NewController(standaloneDeps(t, resolver), scan.Options{ProjectInput: "1"})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	defer ctrl.Close()
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = ctrl.Scan(ctx, "A")
	}()
	deadline := time.Now().Add(2 * time.Second)
	for ctrl.Snapshot().State != scan.Resolving {
		if time.Now().After(deadline) {
			t.Fatal("scan A never started resolving")
		}
		time.Sleep(time.Millisecond)
	}

	if err := ctrl.Scan(ctx, "B"); err != nil {
		t.Fatalf("Scan B: %v", err)
	}
	close(resolver.gate("A"))
	<-done

	view := ctrl.Snapshot()
	if view.Tag != "B" || view.ResolutionKind != "item" || view.State != scan.Ready {
		t.Fatalf("late result for A overwrote B: %#v", view)
	}
}

// standaloneDeps wires resolver to a store and a client that nothing
// listens on.
func standaloneDeps(t *testing.T, resolver scan.Resolver) scan.Deps {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	return scan.Deps{
		Resolver:  resolver,
		Submitter: warehouse.New(deadURL(t), "", http.DefaultClient),
		Queue:     testsupport.MustOpenStore(t, cfg),
	}
}

func TestNewControllerRejectsMissingCollaborators(t *testing.T) {
	full := standaloneDeps(t, &blockingResolver{})
	tests := []struct {
		name string
		edit func(*scan.Deps)
		want string
	}{
		{"resolver", func(d *scan.Deps) { d.Resolver = nil }, "resolver"},
		{"submitter", func(d *scan.Deps) { d.Submitter = nil }, "submitter"},
		{"queue", func(d *scan.Deps) { d.Queue = nil }, "queue"},
		{"all", func(d *scan.Deps) { *d = scan.Deps{} }, "resolver, submitter, queue"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := full
			tt.edit(&deps)
			ctrl, err := scan.NewController(deps, scan.Options{})
			if ctrl != nil {
				t.Fatal("expected no controller")
			}
			if !errors.Is(err, services.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not name %q", err, tt.want)
			}
		})
	}

	ctrl, err := scan.NewController(full, scan.Options{})
	if err != nil {
		t.Fatalf("NewController with all collaborators: %v", err)
	}
	ctrl.Close()
}

func TestClosedControllerRejectsOperations(t *testing.T) {
	ctrl, err := scan.NewController(standaloneDeps(t, &blockingResolver{}), scan.Options{})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	ctrl.Close()
	if err := ctrl.Scan(context.Background(), "A"); !errors.Is(err, scan.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := ctrl.Submit(context.Background()); !errors.Is(err, scan.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

package tagresolve

import (
	"context"
	"sync"
)

// Ticket identifies one resolution attempt.
type Ticket struct {
	Tag        string
	generation uint64
	ctx        context.Context
}

// Context is cancelled once a newer scan begins or the tracker closes.
func (t Ticket) Context() context.Context {
	if t.ctx == nil {
		return context.Background()
	}
	return t.ctx
}

// Tracker hands out tickets and discards superseded results.
type Tracker struct {
	mu         sync.Mutex
	parent     context.Context
	generation uint64
	cancel     context.CancelFunc
	closed     bool
}

// NewTracker derives ticket contexts from parent.
func NewTracker(parent context.Context) *Tracker {
	if parent == nil {
		parent = context.Background()
	}
	return &Tracker{parent: parent}
}

// Begin supersedes any outstanding ticket and returns a new one for tag.
func (t *Tracker) Begin(tag string) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.generation++
	if t.closed {
		ctx, cancel := context.WithCancel(t.parent)
		cancel()
		return Ticket{Tag: tag, generation: t.generation, ctx: ctx}
	}
	ctx, cancel := context.WithCancel(t.parent)
	t.cancel = cancel
	return Ticket{Tag: tag, generation: t.generation, ctx: ctx}
}

// Current reports whether ticket is still the latest and the tracker is open.
func (t *Tracker) Current(ticket Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.closed && ticket.generation == t.generation
}

// Invalidate supersedes the outstanding ticket without starting a new one.
func (t *Tracker) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.generation++
}

// Close cancels the outstanding ticket; later tickets are born cancelled.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.closed = true
}

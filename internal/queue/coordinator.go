package queue

import (
	"context"
	"log/slog"
	"sync"

	"stockscan/internal/logging"
)

// ReconnectSource signals offline to online transitions.
type ReconnectSource interface {
	Subscribe() (<-chan struct{}, func())
}

// Coordinator triggers flushes on reconnect and on demand.
type Coordinator struct {
	store            *Store
	send             Sender
	source           ReconnectSource
	flushOnReconnect bool
	logger           *slog.Logger

	mu       sync.Mutex
	observer func(FlushResult)
}

// CoordinatorOption customizes a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithFlushOnReconnect toggles automatic flushing when connectivity returns.
func WithFlushOnReconnect(enabled bool) CoordinatorOption {
	return func(c *Coordinator) { c.flushOnReconnect = enabled }
}

// WithCoordinatorLogger sets the coordinator logger.
func WithCoordinatorLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) { c.logger = logging.NewComponentLogger(logger, "queue-flush") }
}

// NewCoordinator wires store, sender and reconnect source together.
func NewCoordinator(store *Store, send Sender, source ReconnectSource, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		store:            store,
		send:             send,
		source:           source,
		flushOnReconnect: true,
		logger:           logging.NewComponentLogger(nil, "queue-flush"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnResult registers fn to receive every completed (non-skipped) flush
// result. Passing nil detaches the observer.
func (c *Coordinator) OnResult(fn func(FlushResult)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = fn
}

// Listen subscribes to reconnect signals immediately and returns the loop
// that serves them. Signals raised between Listen and the loop starting are
// kept. stop detaches the subscription and is safe to call more than once;
// the loop calls it on return.
func (c *Coordinator) Listen() (loop func(ctx context.Context) error, stop func()) {
	if c.source == nil || !c.flushOnReconnect {
		return func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		}, func() {}
	}
	signals, unsubscribe := c.source.Subscribe()
	loop = func(ctx context.Context) error {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-signals:
				_, _ = c.flush(ctx, "reconnect")
			}
		}
	}
	return loop, unsubscribe
}

// Run subscribes and serves reconnect signals until ctx is done.
func (c *Coordinator) Run(ctx context.Context) error {
	loop, _ := c.Listen()
	return loop(ctx)
}

// SyncNow runs a flush immediately through the shared gate.
func (c *Coordinator) SyncNow(ctx context.Context) (FlushResult, error) {
	return c.flush(ctx, "manual")
}

func (c *Coordinator) flush(ctx context.Context, trigger string) (FlushResult, error) {
	result, err := c.store.Flush(ctx, c.send)
	if result.Skipped {
		c.logger.Debug("flush already running; trigger ignored",
			logging.String("trigger", trigger),
		)
		return result, err
	}
	if err != nil {
		logging.WarnWithContext(c.logger, "offline queue flush failed",
			"queue_flush_failed",
			logging.String("trigger", trigger),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the queue database and retry with 'stockscan queue sync'"),
			logging.String(logging.FieldImpact, "queued movements remain pending"),
		)
	}
	for _, notice := range result.Dropped {
		logging.WarnWithContext(c.logger, "queued movement dropped",
			"queue_entry_dropped",
			logging.EntryID(notice.EntryID),
			logging.TagValue(notice.Tag),
			logging.String("kind", string(notice.Kind)),
			logging.String("reason", notice.Reason),
			logging.String(logging.FieldErrorHint, "review with 'stockscan queue dropped'"),
			logging.String(logging.FieldImpact, "movement not recorded on the server"),
		)
	}
	c.logger.Info("offline queue flushed",
		logging.Event("queue_flushed"),
		logging.String("trigger", trigger),
		logging.Int("processed", result.Processed),
		logging.Int("dropped", len(result.Dropped)),
		logging.Int("remaining", result.Remaining),
		logging.Bool("interrupted", result.Interrupted),
	)

	c.mu.Lock()
	observer := c.observer
	c.mu.Unlock()
	if observer != nil {
		observer(result)
	}
	return result, err
}

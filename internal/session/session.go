package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"stockscan/internal/config"
	"stockscan/internal/logging"
	"stockscan/internal/network"
	"stockscan/internal/queue"
	"stockscan/internal/scan"
	"stockscan/internal/schedule"
	"stockscan/internal/services"
	"stockscan/internal/tagresolve"
	"stockscan/internal/warehouse"
)

// ErrSessionActive is returned when another process holds the session lock.
var ErrSessionActive = errors.New("another stockscan session is already using this data directory")

// Session is one running scanning session.
type Session struct {
	id     string
	cfg    *config.Config
	logger *slog.Logger

	lock        *flock.Flock
	store       *queue.Store
	monitor     *network.Monitor
	client      *warehouse.Client
	sender      queue.Sender
	coordinator *queue.Coordinator

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	closeOnce sync.Once
	closeErr  error
}

// Option customizes Open.
type Option func(*openOptions)

type openOptions struct {
	checker network.Checker
}

// WithChecker replaces the TCP connectivity check.
func WithChecker(p network.Checker) Option {
	return func(o *openOptions) { o.checker = p }
}

// Open starts a session for cfg.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Session, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "session", "open", "config is required", nil)
	}
	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.NewString()
	logger = logging.NewComponentLogger(logger, "session").With(logging.String(logging.FieldSessionID, id))

	lock, err := acquireLock(cfg)
	if err != nil {
		return nil, err
	}

	store, err := queue.Open(cfg)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open offline queue: %w", err)
	}

	var monitor *network.Monitor
	if o.checker != nil {
		monitor = network.NewMonitor(o.checker,
			network.WithLogger(logger),
			network.WithInterval(cfg.CheckInterval()),
			network.WithNetlink(cfg.Network.NetlinkEnabled),
		)
	} else {
		monitor = network.NewFromConfig(cfg, logger)
	}
	client := warehouse.NewFromConfig(cfg, warehouse.WithObserver(monitor), warehouse.WithLogger(logger))
	sender := queue.SubmitSender(client)
	coordinator := queue.NewCoordinator(store, sender, monitor,
		queue.WithFlushOnReconnect(cfg.Queue.FlushOnReconnect),
		queue.WithCoordinatorLogger(logger),
	)

	// Subscribe before the monitor can report a transition.
	listen, unlisten := coordinator.Listen()
	runCtx, cancel := context.WithCancel(services.WithSessionID(ctx, id))
	if err := monitor.Start(runCtx); err != nil {
		cancel()
		unlisten()
		_ = store.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("start network monitor: %w", err)
	}
	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error { return listen(groupCtx) })

	s := &Session{
		id:          id,
		cfg:         cfg,
		logger:      logger,
		lock:        lock,
		store:       store,
		monitor:     monitor,
		client:      client,
		sender:      sender,
		coordinator: coordinator,
		ctx:         runCtx,
		cancel:      cancel,
		group:       group,
	}
	pending, _ := store.Count(runCtx)
	logger.Info("scanning session started",
		logging.Event("session_started"),
		logging.String("network", monitor.State().String()),
		logging.Int("pending", pending),
		logging.String("lock", cfg.LockPath()),
	)
	return s, nil
}

func acquireLock(cfg *config.Config) (*flock.Flock, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "session", "open", "prepare directories", err)
	}
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire session lock: %w", err)
	}
	if !ok {
		return nil, ErrSessionActive
	}
	return lock, nil
}

// WithStore runs fn against the offline queue while holding the session
// lock. No monitor, coordinator or API client is started, so nothing is
// sent to the server.
func WithStore(cfg *config.Config, fn func(*queue.Store) error) (err error) {
	if cfg == nil {
		return services.Wrap(services.ErrConfiguration, "session", "lock", "config is required", nil)
	}
	lock, err := acquireLock(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			err = errors.Join(err, fmt.Errorf("release session lock: %w", unlockErr))
		}
	}()

	store, err := queue.Open(cfg)
	if err != nil {
		return fmt.Errorf("open offline queue: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close offline queue: %w", closeErr))
		}
	}()
	return fn(store)
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Context carries the session id and is cancelled on Close.
func (s *Session) Context() context.Context { return s.ctx }

// Store returns the offline queue.
func (s *Session) Store() *queue.Store { return s.store }

// Monitor returns the network monitor.
func (s *Session) Monitor() *network.Monitor { return s.monitor }

// Client returns the API client.
func (s *Session) Client() *warehouse.Client { return s.client }

// SyncNow flushes the queue through the shared gate.
func (s *Session) SyncNow(ctx context.Context) (queue.FlushResult, error) {
	return s.coordinator.SyncNow(ctx)
}

// NewController builds a scan controller wired to this session. Its pending
// counter follows every completed flush.
func (s *Session) NewController(opts scan.Options) (*scan.Controller, error) {
	if opts.ProjectIDMaxDigits == 0 {
		opts.ProjectIDMaxDigits = s.cfg.Scan.ProjectIDMaxDigits
	}
	ctrl, err := scan.NewController(scan.Deps{
		Resolver:     tagresolve.NewClient(s.client, s.logger),
		Submitter:    s.client,
		Queue:        s.store,
		Connectivity: s.monitor,
		Logger:       s.logger,
	}, opts)
	if err != nil {
		return nil, err
	}
	_ = ctrl.RefreshPending(s.ctx)
	s.coordinator.OnResult(func(queue.FlushResult) {
		_ = ctrl.RefreshPending(context.WithoutCancel(s.ctx))
	})
	return ctrl, nil
}

// Schedule returns the project rescheduling service.
func (s *Session) Schedule() *schedule.Service {
	return schedule.NewService(s.client, s.logger)
}

// Close tears the session down. It is safe to call more than once.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.closeErr = s.close(ctx)
	})
	return s.closeErr
}

func (s *Session) close(ctx context.Context) error {
	s.coordinator.OnResult(nil)
	s.cancel()
	errs := []error{s.group.Wait()}
	s.monitor.Stop()

	if s.monitor.Offline() {
		pending, _ := s.store.Count(ctx)
		s.logger.Info("offline at shutdown; queued movements kept",
			logging.Event("session_close_offline"),
			logging.Int("pending", pending),
		)
	} else {
		result, err := s.store.Flush(services.WithSessionID(ctx, s.id), s.sender)
		if err != nil {
			errs = append(errs, fmt.Errorf("final flush: %w", err))
		}
		s.logger.Info("final flush complete",
			logging.Event("session_final_flush"),
			logging.Int("processed", result.Processed),
			logging.Int("dropped", len(result.Dropped)),
			logging.Int("remaining", result.Remaining),
		)
	}

	s.client.CloseIdleConnections()
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close offline queue: %w", err))
	}
	if err := s.lock.Unlock(); err != nil {
		errs = append(errs, fmt.Errorf("release session lock: %w", err))
	}
	s.logger.Info("scanning session closed",
		logging.Event("session_closed"),
	)
	return errors.Join(errs...)
}

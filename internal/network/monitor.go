package network

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"stockscan/internal/config"
	"stockscan/internal/logging"
)

const defaultCheckInterval = 15 * time.Second

// Monitor tracks connectivity and signals reconnects.
type Monitor struct {
	checker  Checker
	interval time.Duration
	logger   *slog.Logger
	netlink  *netlinkTrigger

	state atomic.Int32

	subMu  sync.Mutex
	subs   map[uint64]chan struct{}
	nextID uint64

	mu      sync.Mutex
	quit    chan struct{}
	trigger chan struct{}
	wg      sync.WaitGroup
	running bool
}

// Option customizes a Monitor.
type Option func(*Monitor)

// WithInterval sets the periodic check interval. Non-positive values disable
// the periodic loop; checks still run on netlink events and TriggerCheck.
func WithInterval(interval time.Duration) Option {
	return func(m *Monitor) { m.interval = interval }
}

// WithLogger sets the monitor logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) { m.logger = logging.NewComponentLogger(logger, "network-monitor") }
}

// WithNetlink enables the udev netlink trigger.
func WithNetlink(enabled bool) Option {
	return func(m *Monitor) {
		if enabled {
			m.netlink = newNetlinkTrigger(m)
		} else {
			m.netlink = nil
		}
	}
}

// NewMonitor constructs a monitor around checker. The state reads Online until
// Start seeds it.
func NewMonitor(checker Checker, opts ...Option) *Monitor {
	m := &Monitor{
		checker:  checker,
		interval: defaultCheckInterval,
		logger:   logging.NewComponentLogger(nil, "network-monitor"),
		subs:     make(map[uint64]chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.netlink != nil {
		m.netlink.logger = logging.NewComponentLogger(m.logger, "netlink-trigger")
	}
	return m
}

// NewFromConfig builds a monitor that checks the configured API address.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Monitor {
	checker := NewDialChecker(cfg.Network.CheckAddress, cfg.CheckTimeout())
	return NewMonitor(checker,
		WithLogger(logger),
		WithInterval(cfg.CheckInterval()),
		WithNetlink(cfg.Network.NetlinkEnabled),
	)
}

// Start seeds the state from the checker and launches the check loop and the
// netlink trigger. Calling Start on a running monitor is a no-op.
func (m *Monitor) Start(ctx context.Context) error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	initial := Online
	if m.checker != nil && !m.checker.Check(ctx) {
		initial = Offline
	}
	m.state.Store(int32(initial))

	m.quit = make(chan struct{})
	m.trigger = make(chan struct{}, 1)
	m.running = true

	quit, trigger := m.quit, m.trigger
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.checkLoop(ctx, quit, trigger)
	}()

	if m.netlink != nil {
		m.netlink.Start(ctx, &m.wg)
	}

	m.logger.Info("network monitor started",
		logging.Event("network_monitor_started"),
		logging.String("state", initial.String()),
		logging.Duration("interval", m.interval),
		logging.Bool("netlink", m.netlink.Running()),
	)
	return nil
}

// Stop halts background loops and waits for them to exit. Subscribers are
// left attached; Close their unsubscribe funcs to detach.
func (m *Monitor) Stop() {
	if m == nil {
		return
	}
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	close(m.quit)
	m.quit = nil
	m.trigger = nil
	m.running = false
	m.mu.Unlock()

	m.netlink.Stop()
	m.wg.Wait()

	m.logger.Info("network monitor stopped",
		logging.Event("network_monitor_stopped"),
	)
}

// Running reports whether the background loops are active.
func (m *Monitor) Running() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// State returns the current connectivity state.
func (m *Monitor) State() State {
	if m == nil {
		return Online
	}
	return State(m.state.Load())
}

// Offline reports whether the monitor currently considers the backend
// unreachable.
func (m *Monitor) Offline() bool {
	return m.State() == Offline
}

// Observe records a reachability report from normal traffic.
func (m *Monitor) Observe(reachable bool) {
	if reachable {
		m.Set(Online)
		return
	}
	m.Set(Offline)
}

// Set records state and signals subscribers on an offline to online
// transition.
func (m *Monitor) Set(state State) {
	if m == nil {
		return
	}
	previous := State(m.state.Swap(int32(state)))
	if previous == state {
		return
	}
	m.logger.Info("connectivity changed",
		logging.Event("network_state_changed"),
		logging.String("from", previous.String()),
		logging.String("to", state.String()),
	)
	if previous == Offline && state == Online {
		m.notify()
	}
}

// Subscribe registers for reconnect signals. The channel holds at most one
// pending signal, so rapid oscillation coalesces. The returned func detaches
// the subscription and is safe to call more than once.
func (m *Monitor) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	if m == nil {
		return ch, func() {}
	}
	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = ch
	m.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs, id)
			m.subMu.Unlock()
		})
	}
}

// TriggerCheck requests an immediate check. It never blocks.
func (m *Monitor) TriggerCheck() {
	if m == nil {
		return
	}
	m.mu.Lock()
	trigger := m.trigger
	m.mu.Unlock()
	if trigger == nil {
		return
	}
	select {
	case trigger <- struct{}{}:
	default:
	}
}

func (m *Monitor) notify() {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (m *Monitor) checkLoop(ctx context.Context, quit <-chan struct{}, trigger <-chan struct{}) {
	var tick <-chan time.Time
	if m.interval > 0 {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-quit:
			return
		case <-tick:
			m.check(ctx)
		case <-trigger:
			m.check(ctx)
		}
	}
}

func (m *Monitor) check(ctx context.Context) {
	if m.checker == nil {
		return
	}
	if m.checker.Check(ctx) {
		m.Set(Online)
		return
	}
	if ctx.Err() != nil {
		return
	}
	m.Set(Offline)
}

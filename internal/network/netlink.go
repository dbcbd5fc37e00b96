package network

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pilebones/go-udev/netlink"

	"stockscan/internal/logging"
)

// netlinkTrigger listens for udev uevents on network interfaces and asks the
// monitor for an immediate check when a link appears, disappears or changes.
type netlinkTrigger struct {
	monitor *Monitor
	logger  *slog.Logger

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

func newNetlinkTrigger(m *Monitor) *netlinkTrigger {
	return &netlinkTrigger{
		monitor: m,
		logger:  logging.NewComponentLogger(nil, "netlink-trigger"),
	}
}

// Start connects to the kernel uevent socket. Connection failures are logged
// and the monitor falls back to periodic probing.
func (t *netlinkTrigger) Start(ctx context.Context, wg *sync.WaitGroup) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		logging.WarnWithContext(t.logger, "failed to connect to netlink socket; connectivity changes rely on periodic checks",
			"netlink_connect_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "ensure the process may open NETLINK_KOBJECT_UEVENT sockets"),
			logging.String(logging.FieldImpact, "reconnects detected on the next check interval"),
		)
		return
	}

	t.conn = conn
	t.quit = make(chan struct{})
	t.running = true

	quit := t.quit
	wg.Add(1)
	go func() {
		defer wg.Done()
		t.loop(ctx, conn, quit)
	}()
}

// Stop closes the socket and ends the event loop.
func (t *netlinkTrigger) Stop() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	if t.quit != nil {
		close(t.quit)
		t.quit = nil
	}
	if t.conn != nil {
		_ = t.conn.Close()
		t.conn = nil
	}
	t.running = false
}

// Running reports whether the trigger is listening.
func (t *netlinkTrigger) Running() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *netlinkTrigger) loop(ctx context.Context, conn *netlink.UEventConn, quit <-chan struct{}) {
	queue := make(chan netlink.UEvent)
	errs := make(chan error)
	monitorQuit := conn.Monitor(queue, errs, buildMatcher())

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-queue:
			t.handleEvent(uevent)
		case err := <-errs:
			logging.WarnWithContext(t.logger, "netlink monitor error",
				"netlink_monitor_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check kernel netlink subsystem"),
				logging.String(logging.FieldImpact, "reconnect detection may be delayed"),
			)
		}
	}
}

// buildMatcher matches link events: SUBSYSTEM=net with an add, remove,
// change, online or offline action.
func buildMatcher() netlink.Matcher {
	action := "^(add|remove|change|online|offline)$"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "^net$",
		},
	})
	return rules
}

func (t *netlinkTrigger) handleEvent(uevent netlink.UEvent) {
	iface := uevent.Env["INTERFACE"]
	if iface == "lo" {
		return
	}
	t.logger.Debug("network interface event",
		logging.Event("netlink_link_event"),
		logging.String("interface", iface),
		logging.String("action", string(uevent.Action)),
	)
	t.monitor.TriggerCheck()
}

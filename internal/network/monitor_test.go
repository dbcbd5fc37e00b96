package network

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"
)

type switchChecker struct {
	up    atomic.Bool
	calls atomic.Int32
}

func (p *switchChecker) Check(context.Context) bool {
	p.calls.Add(1)
	return p.up.Load()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestStartSeedsStateFromChecker(t *testing.T) {
	checker := &switchChecker{}
	m := NewMonitor(checker, WithInterval(0))
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	if !m.Offline() {
		t.Fatal("expected offline after failed initial check")
	}
	if !m.Running() {
		t.Fatal("expected running monitor")
	}
}

func TestReconnectSignalsEverySubscriberOnce(t *testing.T) {
	m := NewMonitor(nil)
	m.Set(Offline)

	first, unsubFirst := m.Subscribe()
	defer unsubFirst()
	second, unsubSecond := m.Subscribe()
	defer unsubSecond()

	m.Set(Online)
	m.Set(Offline)
	m.Set(Online)

	for name, ch := range map[string]<-chan struct{}{"first": first, "second": second} {
		select {
		case <-ch:
		default:
			t.Fatalf("%s subscriber missed reconnect", name)
		}
		select {
		case <-ch:
			t.Fatalf("%s subscriber received uncoalesced signal", name)
		default:
		}
	}
}

func TestOnlineToOfflineDoesNotSignal(t *testing.T) {
	m := NewMonitor(nil)
	ch, unsub := m.Subscribe()
	defer unsub()

	m.Set(Online)
	m.Observe(false)
	select {
	case <-ch:
		t.Fatal("unexpected reconnect signal")
	default:
	}
	if m.State() != Offline {
		t.Fatalf("state = %s, want offline", m.State())
	}
}

func TestUnsubscribeDetaches(t *testing.T) {
	m := NewMonitor(nil)
	m.Set(Offline)
	ch, unsub := m.Subscribe()
	unsub()
	unsub()

	m.Set(Online)
	select {
	case <-ch:
		t.Fatal("detached subscriber received signal")
	default:
	}
}

func TestTriggerCheckUpdatesState(t *testing.T) {
	checker := &switchChecker{}
	m := NewMonitor(checker, WithInterval(0))
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	ch, unsub := m.Subscribe()
	defer unsub()

	checker.up.Store(true)
	m.TriggerCheck()
	waitFor(t, func() bool { return m.State() == Online })
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected reconnect signal after check")
	}
}

func TestPeriodicCheck(t *testing.T) {
	checker := &switchChecker{}
	m := NewMonitor(checker, WithInterval(10*time.Millisecond))
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	waitFor(t, func() bool { return checker.calls.Load() >= 3 })
}

func TestNilMonitorIsSafe(t *testing.T) {
	var m *Monitor
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start on nil monitor: %v", err)
	}
	m.Stop()
	m.Set(Offline)
	m.Observe(true)
	m.TriggerCheck()
	if m.Running() {
		t.Fatal("nil monitor reports running")
	}
	if m.Offline() {
		t.Fatal("nil monitor reports offline")
	}
	_, unsub := m.Subscribe()
	unsub()
}

func TestStopIsIdempotent(t *testing.T) {
	m := NewMonitor(&switchChecker{}, WithInterval(0))
	m.Stop()
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	m.Stop()
	m.Stop()
	if m.Running() {
		t.Fatal("expected stopped monitor")
	}
}

func TestDialChecker(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()

	checker := NewDialChecker(listener.Addr().String(), time.Second)
	if !checker.Check(context.Background()) {
		t.Fatal("expected reachable listener")
	}
	_ = listener.Close()
	<-done

	if checker.Check(context.Background()) {
		t.Fatal("expected closed listener to be unreachable")
	}
	if NewDialChecker("", time.Second).Check(context.Background()) {
		t.Fatal("expected empty address to be unreachable")
	}
}

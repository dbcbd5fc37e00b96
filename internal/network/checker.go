package network

import (
	"context"
	"net"
	"strings"
	"time"
)

// Checker reports whether the backend is reachable right now.
type Checker interface {
	Check(ctx context.Context) bool
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) bool

// Check calls f.
func (f CheckerFunc) Check(ctx context.Context) bool {
	return f(ctx)
}

// DialChecker opens a TCP connection to Address and closes it immediately.
type DialChecker struct {
	Address string
	Timeout time.Duration

	dial func(ctx context.Context, network, address string) (net.Conn, error)
}

// NewDialChecker returns a checker for address with the given dial timeout.
func NewDialChecker(address string, timeout time.Duration) *DialChecker {
	return &DialChecker{Address: strings.TrimSpace(address), Timeout: timeout}
}

// Check dials the configured address. An empty address is never reachable.
func (p *DialChecker) Check(ctx context.Context) bool {
	if p == nil || p.Address == "" {
		return false
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	dial := p.dial
	if dial == nil {
		var dialer net.Dialer
		dial = dialer.DialContext
	}
	conn, err := dial(ctx, "tcp", p.Address)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

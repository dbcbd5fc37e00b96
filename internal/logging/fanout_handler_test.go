package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestNewFanoutHandlerCollapses(t *testing.T) {
	if _, ok := newFanoutHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every handler is nil")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := newFanoutHandler(nil, inner); h != inner {
		t.Fatal("expected single non-nil handler to be returned unwrapped")
	}
}

func TestFanoutHandlerRespectsLevels(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	h := newFanoutHandler(
		slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected fanout to be enabled for debug")
	}

	logger := slog.New(h).With("component", "test")
	logger.Debug("debug only")
	if infoBuf.Len() != 0 {
		t.Fatalf("info handler should not receive debug records, got %q", infoBuf.String())
	}
	if !bytes.Contains(debugBuf.Bytes(), []byte(`"component":"test"`)) {
		t.Fatalf("expected attrs propagated to debug handler, got %q", debugBuf.String())
	}

	logger.Info("both")
	if !bytes.Contains(infoBuf.Bytes(), []byte("both")) || !bytes.Contains(debugBuf.Bytes(), []byte("both")) {
		t.Fatal("expected info record in both handlers")
	}
}

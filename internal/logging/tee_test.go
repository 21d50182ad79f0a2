package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestNewTeeHandlerCollapses(t *testing.T) {
	if _, ok := newTeeHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every handler is nil")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := newTeeHandler(nil, inner); h != inner {
		t.Fatal("expected single handler to be returned unwrapped")
	}
}

func TestTeeHandlerRespectsLevels(t *testing.T) {
	var infoBuf, warnBuf bytes.Buffer
	h := newTeeHandler(
		slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug should be disabled")
	}

	logger := slog.New(h)
	logger.Info("searched", slog.String("query", "flim"))
	if infoBuf.Len() == 0 || warnBuf.Len() != 0 {
		t.Fatalf("info routed incorrectly: info=%q warn=%q", infoBuf.String(), warnBuf.String())
	}

	logger.Warn("search failed")
	if !bytes.Contains(warnBuf.Bytes(), []byte("search failed")) {
		t.Fatalf("expected warning in warn handler, got %q", warnBuf.String())
	}
}

func TestTeeHandlerAttrsAndGroups(t *testing.T) {
	var a, b bytes.Buffer
	h := newTeeHandler(slog.NewJSONHandler(&a, nil), slog.NewJSONHandler(&b, nil))

	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String("run_id", "r1")}).WithGroup("item"))
	logger.Info("processed", slog.Int("index", 2))

	for _, buf := range []*bytes.Buffer{&a, &b} {
		if !bytes.Contains(buf.Bytes(), []byte(`"run_id":"r1"`)) || !bytes.Contains(buf.Bytes(), []byte(`"item":{"index":2}`)) {
			t.Fatalf("unexpected output %q", buf.String())
		}
	}
}

func TestTeeLogger(t *testing.T) {
	var baseBuf, extraBuf bytes.Buffer
	logger := TeeLogger(slog.New(slog.NewJSONHandler(&baseBuf, nil)), slog.NewJSONHandler(&extraBuf, nil))
	logger.Info("teed")
	if baseBuf.Len() == 0 || extraBuf.Len() == 0 {
		t.Fatal("expected output in both buffers")
	}

	extraBuf.Reset()
	TeeLogger(nil, slog.NewJSONHandler(&extraBuf, nil)).Info("no base")
	if extraBuf.Len() == 0 {
		t.Fatal("expected output without a base logger")
	}
}

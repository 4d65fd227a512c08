package paint

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// captureHandler records every log record it receives.
type captureHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func (h *captureHandler) count(substr string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, r := range h.records {
		if strings.Contains(r.Message, substr) {
			n++
		}
	}
	return n
}

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() = nil")
	}
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Error("default logger is enabled; logging should be off by default")
	}
}

func TestSetLogger(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	h := &captureHandler{}
	custom := slog.New(h)
	SetLogger(custom)
	if Logger() != custom {
		t.Error("Logger() did not return the configured logger")
	}

	Logger().Warn("probe")
	if h.count("probe") != 1 {
		t.Error("configured logger did not receive the record")
	}

	SetLogger(nil)
	l := Logger()
	if l == nil {
		t.Fatal("Logger() = nil after SetLogger(nil)")
	}
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) did not restore the silent logger")
	}
}

func TestSetLoggerPropagatesToAccelerator(t *testing.T) {
	swapAccelerator(t)
	t.Cleanup(func() { SetLogger(nil) })

	s := &stubAccel{name: "stub"}
	if err := RegisterAccelerator(s); err != nil {
		t.Fatalf("RegisterAccelerator() error = %v", err)
	}

	custom := slog.New(&captureHandler{})
	SetLogger(custom)
	if s.logger != custom {
		t.Error("SetLogger did not propagate to the registered accelerator")
	}
}

func TestUnknownBlendModeWarnsOnce(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })
	h := &captureHandler{}
	SetLogger(slog.New(h))

	// A mode value no other test uses, so the once-per-value gate is
	// fresh for this run.
	const bogus = BlendMode(201)

	comp := NewLayerCompositor(2, 2)
	l := NewLayer(2, 2)
	fillLayer(l, Red)
	l.Mode = bogus

	dst := NewPixmap(2, 2)
	for i := 0; i < 3; i++ {
		if err := comp.Composite(dst, []*Layer{l}); err != nil {
			t.Fatalf("Composite() error = %v", err)
		}
	}

	if got := h.count("unknown blend mode"); got != 1 {
		t.Errorf("unknown mode warned %d times, want once", got)
	}
}

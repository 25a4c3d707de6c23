package profiler

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTickReportsOncePerInterval(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	clock := time.Unix(0, 0)
	p := NewProfiler(WithLogger(zap.New(core)), WithInterval(time.Second))
	p.now = func() time.Time { return clock }
	p.lastTime = clock

	for i := 0; i < 9; i++ {
		clock = clock.Add(100 * time.Millisecond)
		if p.Tick() {
			t.Fatalf("tick %d reported before the interval elapsed", i)
		}
	}
	clock = clock.Add(100 * time.Millisecond)
	if !p.Tick(zap.Int64("live_buffers", 3)) {
		t.Fatal("expected a report once the interval elapsed")
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if fps, ok := ctx["fps"].(float64); !ok || fps != 10 {
		t.Errorf("expected fps 10, got %v", ctx["fps"])
	}
	if ctx["live_buffers"] != int64(3) {
		t.Errorf("expected extra field to be attached, got %v", ctx["live_buffers"])
	}

	// The frame counter restarts after a report.
	clock = clock.Add(500 * time.Millisecond)
	if p.Tick() || p.frameCount != 1 {
		t.Errorf("expected counter reset, got %d", p.frameCount)
	}
}

func TestWithIntervalIgnoresNonPositive(t *testing.T) {
	p := NewProfiler(WithInterval(0))
	if p.updateInterval != time.Second {
		t.Errorf("expected default interval, got %v", p.updateInterval)
	}
}

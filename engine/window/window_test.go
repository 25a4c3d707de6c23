package window

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/config"
)

func TestMotionTrackerSkipsFirstSample(t *testing.T) {
	var m motionTracker
	if _, _, ok := m.delta(100, 50); ok {
		t.Fatal("expected the first sample to only prime the tracker")
	}

	dx, dy, ok := m.delta(103, 46)
	if !ok || dx != 3 || dy != -4 {
		t.Errorf("expected (3, -4), got (%v, %v) ok=%v", dx, dy, ok)
	}

	m.reset()
	if _, _, ok := m.delta(0, 0); ok {
		t.Error("expected reset to re-prime the tracker")
	}
}

func TestHandleKey(t *testing.T) {
	w := newEngineWindow()
	var down, up []uint32
	w.SetKeyDownCallback(func(k uint32) { down = append(down, k) })
	w.SetKeyUpCallback(func(k uint32) { up = append(up, k) })

	tests := []struct {
		name      string
		key       uint32
		pressed   bool
		wantClose bool
	}{
		{"press W", common.KeyW, true, false},
		{"release W", common.KeyW, false, false},
		{"press Escape", common.KeyEsc, true, true},
		{"release Escape", common.KeyEsc, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.handleKey(tt.key, tt.pressed); got != tt.wantClose {
				t.Errorf("expected close=%v, got %v", tt.wantClose, got)
			}
		})
	}

	if len(down) != 1 || down[0] != common.KeyW {
		t.Errorf("expected one W press, got %v", down)
	}
	if len(up) != 1 || up[0] != common.KeyW {
		t.Errorf("expected one W release, got %v", up)
	}
}

func TestHandleCursorForwardsDeltas(t *testing.T) {
	w := newEngineWindow()
	var got [][2]float64
	w.SetMouseMotionCallback(func(dx, dy float64) { got = append(got, [2]float64{dx, dy}) })

	w.handleCursor(10, 10)
	w.handleCursor(15, 8)
	w.handleCursor(15, 8)

	if len(got) != 2 || got[0] != [2]float64{5, -2} || got[1] != [2]float64{0, 0} {
		t.Errorf("unexpected deltas %v", got)
	}
}

func TestHandleResizeIgnoresMinimize(t *testing.T) {
	w := newEngineWindow()
	calls := 0
	w.SetResizeCallback(func(int, int) { calls++ })

	w.handleResize(0, 0)
	if calls != 0 || w.Width() != 1280 || w.Height() != 720 {
		t.Errorf("expected zero size to be ignored, got %dx%d after %d calls", w.Width(), w.Height(), calls)
	}

	w.handleResize(800, 600)
	if calls != 1 || w.Width() != 800 || w.Height() != 600 {
		t.Errorf("expected 800x600 after one call, got %dx%d after %d calls", w.Width(), w.Height(), calls)
	}
}

func TestWithConfig(t *testing.T) {
	w := newEngineWindow(WithConfig(config.WindowConfig{Title: "viewer", Width: 640}))
	if w.title != "viewer" || w.width != 640 || w.height != 720 {
		t.Errorf("unexpected window settings %q %dx%d", w.title, w.width, w.height)
	}
}

func TestUninitializedWindow(t *testing.T) {
	w := newEngineWindow()
	if w.IsRunning() {
		t.Error("expected an unopened window to report not running")
	}
	if w.SurfaceDescriptor() != nil {
		t.Error("expected no surface descriptor")
	}
	w.RequestClose()
	if err := w.Close(); err == nil {
		t.Error("expected closing an unopened window to fail")
	}
}

package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/config"

	"github.com/go-gl/mathgl/mgl32"
)

func TestProcessKeyboardBindings(t *testing.T) {
	tests := []struct {
		name string
		key  uint32
		want bool
	}{
		{"W", common.KeyW, true},
		{"Up", common.KeyUp, true},
		{"S", common.KeyS, true},
		{"Down", common.KeyDown, true},
		{"A", common.KeyA, true},
		{"Left", common.KeyLeft, true},
		{"D", common.KeyD, true},
		{"Right", common.KeyRight, true},
		{"LeftShift", common.KeyLeftShift, true},
		{"Space", common.KeySpace, true},
		{"Escape", common.KeyEsc, false},
		{"RightShift", common.KeyRightShift, false},
	}

	cc := NewCameraController()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cc.ProcessKeyboard(tt.key, true); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			cc.ProcessKeyboard(tt.key, false)
		})
	}
}

func TestForwardAndUpMovesAlongBoth(t *testing.T) {
	cam := NewCamera(WithPosition(mgl32.Vec3{1, 2, 3}), WithPitch(0.2), WithYaw(0.7))
	cc := NewCameraController(WithMoveSpeed(0.5))

	start, front, up := cam.Position(), cam.Front(), cam.Up()
	cc.ProcessKeyboard(common.KeyW, true)
	cc.ProcessKeyboard(common.KeySpace, true)
	cc.UpdateCamera(cam)

	want := start.Add(front.Mul(0.5)).Add(up.Mul(0.5))
	if !cam.Position().ApproxEqualThreshold(want, epsilon) {
		t.Errorf("expected %v, got %v", want, cam.Position())
	}
}

func TestOpposingKeysCancel(t *testing.T) {
	cam := NewCamera(WithPosition(mgl32.Vec3{4, 5, 6}))
	cc := NewCameraController()

	for _, k := range []uint32{common.KeyW, common.KeyS, common.KeyA, common.KeyD, common.KeySpace, common.KeyLeftShift} {
		cc.ProcessKeyboard(k, true)
	}
	cc.UpdateCamera(cam)
	if !cam.Position().ApproxEqualThreshold(mgl32.Vec3{4, 5, 6}, epsilon) {
		t.Errorf("expected no net movement, got %v", cam.Position())
	}
}

func TestReleaseStopsMovement(t *testing.T) {
	cam := NewCamera()
	cc := NewCameraController()
	cc.ProcessKeyboard(common.KeyD, true)
	cc.ProcessKeyboard(common.KeyD, false)
	cc.UpdateCamera(cam)
	if cam.Position() != (mgl32.Vec3{}) {
		t.Errorf("expected no movement after release, got %v", cam.Position())
	}
}

func TestMouseMotionLastWriteWins(t *testing.T) {
	cam := NewCamera()
	cc := NewCameraController(WithLookSpeed(0.5))
	yaw, pitch := cam.Yaw(), cam.Pitch()

	cc.ProcessMouseMotion(100, 100)
	cc.ProcessMouseMotion(10, -4)
	cc.UpdateCamera(cam)

	wantYaw := yaw - mgl32.DegToRad(10)*0.5
	wantPitch := pitch + mgl32.DegToRad(4)*0.5
	if !near(cam.Yaw(), wantYaw) || !near(cam.Pitch(), wantPitch) {
		t.Errorf("expected yaw/pitch %v/%v, got %v/%v", wantYaw, wantPitch, cam.Yaw(), cam.Pitch())
	}

	// The pending rotation is consumed exactly once.
	cc.UpdateCamera(cam)
	if !near(cam.Yaw(), wantYaw) || !near(cam.Pitch(), wantPitch) {
		t.Errorf("pending rotation applied twice")
	}
}

func TestMouseMotionIsClampedThroughCamera(t *testing.T) {
	cam := NewCamera()
	cc := NewCameraController(WithLookSpeed(1))
	cc.ProcessMouseMotion(0, -500)
	cc.UpdateCamera(cam)
	if cam.Pitch() != MaxPitch {
		t.Errorf("expected pitch clamped to %v, got %v", MaxPitch, cam.Pitch())
	}
}

func TestNewCameraControllerFromConfig(t *testing.T) {
	cfg := config.Default().Camera
	cfg.MoveSpeed = 3
	cfg.LookSpeed = 0.1
	cc := NewCameraControllerFromConfig(cfg)
	if cc.MoveSpeed() != 3 || cc.LookSpeed() != 0.1 {
		t.Errorf("unexpected speeds %v/%v", cc.MoveSpeed(), cc.LookSpeed())
	}
}

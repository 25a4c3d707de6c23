package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/config"

	"github.com/go-gl/mathgl/mgl32"
)

// cameraControllerImpl is the single implementation of CameraController.
type cameraControllerImpl struct {
	mu *sync.Mutex

	moveSpeed float32
	lookSpeed float32

	// Held direction flags
	forward  bool
	backward bool
	left     bool
	right    bool
	down     bool
	up       bool

	// Pending rotation from the latest pointer motion
	hasPending   bool
	pendingYaw   float32
	pendingPitch float32
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a new camera controller with a move speed of 0.2 and a
// look speed of 0.2.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:        &sync.Mutex{},
		moveSpeed: 0.2,
		lookSpeed: 0.2,
	}

	for _, option := range options {
		option(cc)
	}
	return cc
}

// NewCameraControllerFromConfig creates a camera controller using the configured speeds.
//
// Parameters:
//   - cfg: the camera configuration
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraControllerFromConfig(cfg config.CameraConfig) CameraController {
	return NewCameraController(
		WithMoveSpeed(cfg.MoveSpeed),
		WithLookSpeed(cfg.LookSpeed),
	)
}

func (cc *cameraControllerImpl) ProcessKeyboard(key uint32, pressed bool) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	switch key {
	case common.KeyW, common.KeyUp:
		cc.forward = pressed
	case common.KeyS, common.KeyDown:
		cc.backward = pressed
	case common.KeyA, common.KeyLeft:
		cc.left = pressed
	case common.KeyD, common.KeyRight:
		cc.right = pressed
	case common.KeyLeftShift:
		cc.down = pressed
	case common.KeySpace:
		cc.up = pressed
	default:
		return false
	}
	return true
}

func (cc *cameraControllerImpl) ProcessMouseMotion(dx, dy float64) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	cc.pendingYaw = -mgl32.DegToRad(float32(dx)) * cc.lookSpeed
	cc.pendingPitch = -mgl32.DegToRad(float32(dy)) * cc.lookSpeed
	cc.hasPending = true
	return true
}

func (cc *cameraControllerImpl) UpdateCamera(cam Camera) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	front, right, up := cam.Front(), cam.Right(), cam.Up()
	moves := []struct {
		held bool
		dir  mgl32.Vec3
		sign float32
	}{
		{cc.forward, front, 1},
		{cc.backward, front, -1},
		{cc.right, right, 1},
		{cc.left, right, -1},
		{cc.down, up, -1},
		{cc.up, up, 1},
	}
	for _, m := range moves {
		if m.held {
			cam.Translate(m.dir.Mul(m.sign * cc.moveSpeed))
		}
	}

	if cc.hasPending {
		cam.IncrementYaw(cc.pendingYaw)
		cam.IncrementPitch(cc.pendingPitch)
		cc.hasPending = false
		cc.pendingYaw, cc.pendingPitch = 0, 0
	}
}

func (cc *cameraControllerImpl) MoveSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.moveSpeed
}

func (cc *cameraControllerImpl) LookSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.lookSpeed
}

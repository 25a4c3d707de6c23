package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/engine/config"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Angle limits, in radians.
var (
	// MaxPitch is the largest absolute pitch the camera allows (89°).
	MaxPitch = mgl32.DegToRad(89)

	// MinFovY and MaxFovY bound the vertical field of view (1° and 45°).
	MinFovY = mgl32.DegToRad(1)
	MaxFovY = mgl32.DegToRad(45)
)

// OpenGLToWGPU remaps OpenGL clip-space depth [-1, 1] to the WebGPU range [0, 1].
// Column-major.
var OpenGLToWGPU = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// worldUp is the fixed up axis of the free-look camera.
var worldUp = mgl32.Vec3{0, 1, 0}

type cameraImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3

	pitch float32
	yaw   float32

	front mgl32.Vec3
	right mgl32.Vec3
	up    mgl32.Vec3

	fovY   float32
	aspect float32
	near   float32
	far    float32
}

// Camera defines the interface for a free-look perspective camera.
//
// Orientation is stored as pitch and yaw in radians. Front, Right and Up are derived
// from them after every angle change and are never set directly. Pitch is clamped to
// ±89° so the view never flips over the pole; yaw is unbounded.
type Camera interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Position() mgl32.Vec3

	// SetPosition moves the camera to a world-space position.
	//
	// Parameters:
	//   - p: the new eye position
	SetPosition(p mgl32.Vec3)

	// Translate adds an offset to the camera position.
	//
	// Parameters:
	//   - d: the offset in world space
	Translate(d mgl32.Vec3)

	// Pitch returns the vertical angle in radians.
	Pitch() float32

	// Yaw returns the horizontal angle in radians.
	Yaw() float32

	// IncrementPitch adds delta to the pitch, clamps it to ±89° and recomputes the basis.
	//
	// Parameters:
	//   - delta: the pitch change in radians
	IncrementPitch(delta float32)

	// IncrementYaw adds delta to the yaw and recomputes the basis.
	//
	// Parameters:
	//   - delta: the yaw change in radians
	IncrementYaw(delta float32)

	// Front returns the unit view direction.
	Front() mgl32.Vec3

	// Right returns the unit vector pointing to the camera's right.
	Right() mgl32.Vec3

	// Up returns the world up axis used to build the view matrix.
	Up() mgl32.Vec3

	// OrthoUp returns right × front, the up axis of the orthonormal camera frame.
	OrthoUp() mgl32.Vec3

	// FovY returns the vertical field of view in radians.
	FovY() float32

	// SetFovY sets the vertical field of view, clamped to [1°, 45°].
	//
	// Parameters:
	//   - fovY: field of view in radians
	SetFovY(fovY float32)

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// SetAspect sets the aspect ratio (width / height).
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// BuildViewProjectionMatrix returns OpenGLToWGPU * projection * view.
	//
	// Returns:
	//   - mgl32.Mat4: the column-major view-projection matrix
	BuildViewProjectionMatrix() mgl32.Mat4
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with options applied.
// Defaults: position at the origin, pitch 0, yaw -45°, fov 45°, aspect 1,
// near 0.001 and far 10000.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		yaw:    mgl32.DegToRad(-45),
		fovY:   MaxFovY,
		aspect: 1,
		near:   0.001,
		far:    10000,
	}
	for _, option := range options {
		option(c)
	}
	c.updateVectors()
	return c
}

// NewCameraFromConfig creates a Camera from the camera section of the viewer config.
//
// Parameters:
//   - cfg: the camera configuration, angles in degrees
//   - aspect: the initial aspect ratio
//
// Returns:
//   - Camera: the newly created camera
func NewCameraFromConfig(cfg config.CameraConfig, aspect float32) Camera {
	return NewCamera(
		WithPosition(mgl32.Vec3(cfg.Position)),
		WithYaw(mgl32.DegToRad(cfg.YawDeg)),
		WithPitch(mgl32.DegToRad(cfg.PitchDeg)),
		WithFovY(mgl32.DegToRad(cfg.FovYDeg)),
		WithAspect(aspect),
		WithNear(cfg.ZNear),
		WithFar(cfg.ZFar),
	)
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) SetPosition(p mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = p
}

func (c *cameraImpl) Translate(d mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = c.position.Add(d)
}

func (c *cameraImpl) Pitch() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pitch
}

func (c *cameraImpl) Yaw() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.yaw
}

func (c *cameraImpl) IncrementPitch(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pitch = clampPitch(c.pitch + delta)
	c.updateVectors()
}

func (c *cameraImpl) IncrementYaw(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.yaw += delta
	c.updateVectors()
}

func (c *cameraImpl) Front() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.front
}

func (c *cameraImpl) Right() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.right
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) OrthoUp() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.right.Cross(c.front)
}

func (c *cameraImpl) FovY() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fovY
}

func (c *cameraImpl) SetFovY(fovY float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fovY = clampFovY(fovY)
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) BuildViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	view := mgl32.LookAtV(c.position, c.position.Add(c.front), c.up)
	projection := mgl32.Perspective(c.fovY, c.aspect, c.near, c.far)
	return OpenGLToWGPU.Mul4(projection).Mul4(view)
}

// updateVectors recomputes front, right and up from pitch and yaw.
// Caller must hold the mutex.
func (c *cameraImpl) updateVectors() {
	sinP, cosP := math32.Sin(c.pitch), math32.Cos(c.pitch)
	sinY, cosY := math32.Sin(c.yaw), math32.Cos(c.yaw)
	c.front = mgl32.Vec3{cosP * cosY, sinP, -cosP * sinY}.Normalize()
	c.up = worldUp
	c.right = c.front.Cross(c.up).Normalize()
}

// clampPitch limits pitch to [-MaxPitch, MaxPitch]. NaN passes through unchanged.
func clampPitch(p float32) float32 {
	if p > MaxPitch {
		return MaxPitch
	}
	if p < -MaxPitch {
		return -MaxPitch
	}
	return p
}

// clampFovY limits the field of view to [MinFovY, MaxFovY]. NaN passes through unchanged.
func clampFovY(f float32) float32 {
	if f > MaxFovY {
		return MaxFovY
	}
	if f < MinFovY {
		return MinFovY
	}
	return f
}

package camera

// CameraController defines the interface for turning discrete input events into
// per-frame camera motion.
//
// Input handlers only record state: key handlers set held-direction flags and pointer
// motion stores a pending rotation. UpdateCamera applies everything once per frame.
type CameraController interface {
	// ProcessKeyboard records a key press or release.
	// W/Up, S/Down, A/Left and D/Right move along the view plane, Space moves up and
	// Left Shift moves down. Key codes are GLFW codes (see common.Key*).
	//
	// Parameters:
	//   - key: the key code
	//   - pressed: true on press, false on release
	//
	// Returns:
	//   - bool: true if the key is bound to a movement, false otherwise
	ProcessKeyboard(key uint32, pressed bool) bool

	// ProcessMouseMotion records a raw pointer motion delta as a pending rotation of
	// (-rad(dx)*lookSpeed, -rad(dy)*lookSpeed) for yaw and pitch. Only the latest
	// delta before an UpdateCamera call is applied.
	//
	// Parameters:
	//   - dx: horizontal motion
	//   - dy: vertical motion
	//
	// Returns:
	//   - bool: always true
	ProcessMouseMotion(dx, dy float64) bool

	// UpdateCamera applies the held movements to the camera position, then the pending
	// yaw, then the pending pitch, and clears the pending rotation.
	//
	// Parameters:
	//   - cam: the camera to move
	UpdateCamera(cam Camera)

	// MoveSpeed returns the distance moved per update per held direction.
	//
	// Returns:
	//   - float32: world units per update
	MoveSpeed() float32

	// LookSpeed returns the pointer rotation multiplier.
	//
	// Returns:
	//   - float32: multiplier applied to pointer deltas
	LookSpeed() float32
}

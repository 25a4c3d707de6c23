package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithMoveSpeed sets the distance moved per update per held direction.
//
// Parameters:
//   - speed: world units per update
//
// Returns:
//   - CameraControllerOption: functional option to set the move speed
func WithMoveSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.moveSpeed = speed
	}
}

// WithLookSpeed sets the multiplier applied to pointer motion before it becomes rotation.
//
// Parameters:
//   - speed: the look multiplier
//
// Returns:
//   - CameraControllerOption: functional option to set the look speed
func WithLookSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.lookSpeed = speed
	}
}

package camera

import (
	"unsafe"

	"github.com/Carmen-Shannon/oxy-scene/common"
)

// CameraUniformSize is the packed size of CameraUniform in bytes.
const CameraUniformSize = 64

// CameraUniform is the GPU-aligned representation of the camera uniform buffer.
// Matches the WGSL `CameraUniform { view_proj: mat4x4<f32> }` struct of the mesh shader.
// Size: 64 bytes.
type CameraUniform struct {
	ViewProj [16]float32 // offset 0: column-major view-projection matrix (mat4x4<f32>)
}

// NewCameraUniform returns a uniform holding the identity matrix.
//
// Returns:
//   - *CameraUniform: the new uniform
func NewCameraUniform() *CameraUniform {
	return &CameraUniform{ViewProj: [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}}
}

// UpdateViewProj copies the camera's current view-projection matrix into the uniform.
//
// Parameters:
//   - cam: the camera to read
func (g *CameraUniform) UpdateViewProj(cam Camera) {
	g.ViewProj = cam.BuildViewProjectionMatrix()
}

// Size returns the size of the CameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *CameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal returns a byte view of the uniform for GPU upload.
// The view shares memory with g, so it must be uploaded before the next UpdateViewProj.
//
// Returns:
//   - []byte: the 64-byte view
func (g *CameraUniform) Marshal() []byte {
	return common.StructToBytes(g)
}

package renderer

import "github.com/Carmen-Shannon/oxy-scene/common"

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// BufferUsage tells the backend how a buffer will be bound.
type BufferUsage int

const (
	BufferUsageVertex BufferUsage = iota
	BufferUsageIndex
	BufferUsageUniform
)

// DrawItem is one indexed, textured draw submitted by RenderFrame.
type DrawItem struct {
	VertexBuffer   Buffer
	IndexBuffer    Buffer
	ElementCount   uint32
	DiffuseTexture Texture
	NormalTexture  Texture
}

// RendererBackend is the GPU-API-specific half of the Renderer.
// The Renderer validates inputs, wraps errors and tracks handles; the backend only talks to the device.
type RendererBackend interface {
	// CreateBuffer allocates a GPU buffer and uploads data into it.
	//
	// Parameters:
	//   - label: debug label for the buffer
	//   - usage: how the buffer will be bound
	//   - data: initial contents, non-empty
	//
	// Returns:
	//   - Buffer: the created buffer
	//   - error: error if the device rejects the allocation
	CreateBuffer(label string, usage BufferUsage, data []byte) (Buffer, error)

	// WriteBuffer overwrites the start of an existing buffer.
	//
	// Parameters:
	//   - buf: a buffer created by this backend
	//   - data: the new contents
	//
	// Returns:
	//   - error: error if the buffer does not belong to this backend
	WriteBuffer(buf Buffer, data []byte) error

	// CreateTexture allocates a 2D texture and uploads the staged RGBA pixels.
	//
	// Parameters:
	//   - label: debug label for the texture
	//   - staged: decoded RGBA pixels
	//   - isNormalMap: true for linear data, false for sRGB color
	//
	// Returns:
	//   - Texture: the created texture
	//   - error: error if the device rejects the allocation
	CreateTexture(label string, staged *common.TextureStagingData, isNormalMap bool) (Texture, error)

	// HasSurface reports whether the backend can present frames.
	HasSurface() bool

	// ConfigureSurface sizes the swapchain and depth attachments.
	ConfigureSurface(width, height int) error

	// SetCameraBuffer binds the uniform buffer holding the view-projection matrix.
	SetCameraBuffer(buf Buffer) error

	// BeginFrame acquires the next surface texture and starts the render pass.
	BeginFrame() error

	// Draw encodes one indexed draw into the current render pass.
	Draw(item DrawItem) error

	// EndFrame finishes the render pass and submits it.
	EndFrame() error

	// Present shows the finished frame.
	Present()

	// Release frees every device object owned by the backend itself.
	Release()
}

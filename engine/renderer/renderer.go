package renderer

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/logger"

	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// Buffer is an opaque GPU buffer handle.
type Buffer interface {
	Label() string
	Size() uint64
	Release()
}

// Texture is an opaque GPU texture handle.
type Texture interface {
	Label() string
	Width() uint32
	Height() uint32
	IsNormalMap() bool
	Release()
}

// Allocator is the GPU-boundary capability consumed by asset loading:
// upload-only buffers, a writable uniform buffer and decoded textures.
type Allocator interface {
	// CreateVertexBuffer uploads packed vertex data into a new vertex buffer.
	//
	// Parameters:
	//   - label: debug label for the buffer
	//   - data: packed vertices, non-empty
	//
	// Returns:
	//   - Buffer: the created buffer
	//   - error: an *AllocationError if the buffer cannot be created
	CreateVertexBuffer(label string, data []byte) (Buffer, error)

	// CreateIndexBuffer uploads uint32 indices into a new index buffer.
	//
	// Parameters:
	//   - label: debug label for the buffer
	//   - data: little-endian uint32 indices, non-empty
	//
	// Returns:
	//   - Buffer: the created buffer
	//   - error: an *AllocationError if the buffer cannot be created
	CreateIndexBuffer(label string, data []byte) (Buffer, error)

	// CreateUniformBuffer creates a uniform buffer with initial contents.
	//
	// Parameters:
	//   - label: debug label for the buffer
	//   - data: initial contents, non-empty
	//
	// Returns:
	//   - Buffer: the created buffer
	//   - error: an *AllocationError if the buffer cannot be created
	CreateUniformBuffer(label string, data []byte) (Buffer, error)

	// WriteBuffer overwrites the contents of a buffer created by this Renderer.
	//
	// Parameters:
	//   - buf: the destination buffer
	//   - data: the new contents, no larger than the buffer
	//
	// Returns:
	//   - error: error if the buffer is foreign, released or too small
	WriteBuffer(buf Buffer, data []byte) error

	// CreateTexture decodes an encoded image and uploads it as a 2D texture.
	// Normal maps are stored as linear data, everything else as sRGB color.
	//
	// Parameters:
	//   - data: encoded image bytes (PNG, JPEG, BMP, TIFF, WebP, GIF)
	//   - label: debug label, usually the resource path
	//   - isNormalMap: true for a tangent-space normal map
	//
	// Returns:
	//   - Texture: the created texture
	//   - error: an *AllocationError if decoding or allocation fails
	CreateTexture(data []byte, label string, isNormalMap bool) (Texture, error)
}

// Stats counts the GPU handles created through a Renderer that are still alive.
type Stats struct {
	LiveBuffers  int64
	LiveTextures int64
	BufferBytes  int64
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	liveBuffers  atomic.Int64
	liveTextures atomic.Int64
	bufferBytes  atomic.Int64

	// Pre-creation config collected from builder options
	surfaceDescriptor    *wgpu.SurfaceDescriptor
	vertexLayout         *wgpu.VertexBufferLayout
	forceFallbackAdapter bool
	presentMode          PresentMode
	sampleCount          MSAASampleCount
}

// Renderer defines the interface for the rendering system.
//
// It allocates the GPU resources a loaded model needs and draws textured meshes with a
// single built-in pipeline. The Renderer wraps a backend which allows for multiple
// backend API implementations to exist.
type Renderer interface {
	Allocator

	// Resize configures the underlying backend to handle a new surface size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: error if the renderer is headless or the size is invalid
	Resize(width, height int) error

	// SetCamera binds the uniform buffer holding the camera view-projection matrix.
	//
	// Parameters:
	//   - buf: a uniform buffer created by CreateUniformBuffer
	//
	// Returns:
	//   - error: error if the renderer is headless or the buffer is foreign
	SetCamera(buf Buffer) error

	// RenderFrame draws the items into the next surface texture and presents it.
	//
	// Parameters:
	//   - items: the draws for this frame, in submission order
	//
	// Returns:
	//   - error: error if the frame could not be acquired, encoded or submitted
	RenderFrame(items []DrawItem) error

	// Stats returns the number of live handles created through this Renderer.
	//
	// Returns:
	//   - Stats: the live handle counters
	Stats() Stats

	// BackendType returns the backend this Renderer was created with.
	//
	// Returns:
	//   - RendererBackendType: the backend type
	BackendType() RendererBackendType

	// Release frees the backend's device objects. Handles returned earlier must be released first.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer with the specified backend type and options applied.
// Without WithSurfaceDescriptor the renderer is headless: it can allocate but not present.
//
// Parameters:
//   - backendType: the GPU backend to create
//   - options: a variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the configured Renderer
//   - error: error if no adapter or device could be acquired
func NewRenderer(backendType RendererBackendType, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
		presentMode: PresentModeVSync,
		sampleCount: MSAA4x,
	}

	for _, option := range options {
		option(r)
	}

	if r.backend == nil {
		switch backendType {
		case BackendTypeWGPU:
			b, err := newWGPURendererBackend(r.surfaceDescriptor, r.vertexLayout, r.forceFallbackAdapter, r.presentMode, r.sampleCount)
			if err != nil {
				return nil, fmt.Errorf("creating wgpu backend: %w", err)
			}
			r.backend = b
		default:
			return nil, fmt.Errorf("unknown renderer backend %d", backendType)
		}
	}

	logger.Named("renderer").Info("renderer ready",
		zap.Int("backend", int(backendType)),
		zap.Bool("surface", r.backend.HasSurface()),
	)
	return r, nil
}

func (r *renderer) CreateVertexBuffer(label string, data []byte) (Buffer, error) {
	return r.createBuffer(AllocationKindVertexBuffer, BufferUsageVertex, label, data)
}

func (r *renderer) CreateIndexBuffer(label string, data []byte) (Buffer, error) {
	if len(data)%4 != 0 {
		return nil, &AllocationError{Kind: AllocationKindIndexBuffer, Label: label, Err: fmt.Errorf("index data length %d is not a multiple of 4", len(data))}
	}
	return r.createBuffer(AllocationKindIndexBuffer, BufferUsageIndex, label, data)
}

func (r *renderer) CreateUniformBuffer(label string, data []byte) (Buffer, error) {
	return r.createBuffer(AllocationKindUniformBuffer, BufferUsageUniform, label, data)
}

func (r *renderer) createBuffer(kind AllocationKind, usage BufferUsage, label string, data []byte) (Buffer, error) {
	label = common.Coalesce(label, string(kind))
	if len(data) == 0 {
		return nil, &AllocationError{Kind: kind, Label: label, Err: errors.New("empty buffer data")}
	}

	r.mu.Lock()
	buf, err := r.backend.CreateBuffer(label, usage, data)
	r.mu.Unlock()
	if err != nil {
		return nil, &AllocationError{Kind: kind, Label: label, Err: err}
	}

	r.liveBuffers.Add(1)
	r.bufferBytes.Add(int64(buf.Size()))
	return &trackedBuffer{Buffer: buf, owner: r}, nil
}

func (r *renderer) WriteBuffer(buf Buffer, data []byte) error {
	tb, ok := buf.(*trackedBuffer)
	if !ok || tb.owner != r {
		return fmt.Errorf("buffer %q was not created by this renderer", labelOf(buf))
	}
	if tb.released.Load() {
		return fmt.Errorf("buffer %q has been released", tb.Label())
	}
	if uint64(len(data)) > tb.Size() {
		return fmt.Errorf("write of %d bytes overflows buffer %q (%d bytes)", len(data), tb.Label(), tb.Size())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.WriteBuffer(tb.Buffer, data)
}

func (r *renderer) CreateTexture(data []byte, label string, isNormalMap bool) (Texture, error) {
	staged, err := common.DecodeImage(data)
	if err != nil {
		return nil, &AllocationError{Kind: AllocationKindTexture, Label: label, Err: err}
	}

	r.mu.Lock()
	tex, err := r.backend.CreateTexture(label, staged, isNormalMap)
	r.mu.Unlock()
	if err != nil {
		return nil, &AllocationError{Kind: AllocationKindTexture, Label: label, Err: err}
	}

	r.liveTextures.Add(1)
	logger.Named("renderer").Debug("texture created",
		zap.String("label", label),
		zap.Uint32("width", staged.Width),
		zap.Uint32("height", staged.Height),
		zap.String("format", staged.Format),
		zap.Bool("normal_map", isNormalMap),
	)
	return &trackedTexture{Texture: tex, owner: r}, nil
}

func (r *renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.backend.HasSurface() {
		return errors.New("renderer is headless")
	}
	return r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetCamera(buf Buffer) error {
	tb, ok := buf.(*trackedBuffer)
	if !ok || tb.owner != r {
		return fmt.Errorf("buffer %q was not created by this renderer", labelOf(buf))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.backend.HasSurface() {
		return errors.New("renderer is headless")
	}
	return r.backend.SetCameraBuffer(tb.Buffer)
}

func (r *renderer) RenderFrame(items []DrawItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.backend.HasSurface() {
		return errors.New("renderer is headless")
	}

	if err := r.backend.BeginFrame(); err != nil {
		return fmt.Errorf("begin frame: %w", err)
	}
	for i, item := range items {
		if item.ElementCount == 0 || !liveBuffer(item.VertexBuffer) || !liveBuffer(item.IndexBuffer) {
			continue
		}
		unwrapped := DrawItem{
			VertexBuffer:   unwrapBuffer(item.VertexBuffer),
			IndexBuffer:    unwrapBuffer(item.IndexBuffer),
			ElementCount:   item.ElementCount,
			DiffuseTexture: liveTexture(item.DiffuseTexture),
			NormalTexture:  liveTexture(item.NormalTexture),
		}
		if err := r.backend.Draw(unwrapped); err != nil {
			// The surface texture must still be presented or the next BeginFrame fails.
			_ = r.backend.EndFrame()
			r.backend.Present()
			return fmt.Errorf("draw %d: %w", i, err)
		}
	}
	if err := r.backend.EndFrame(); err != nil {
		return fmt.Errorf("end frame: %w", err)
	}
	r.backend.Present()
	return nil
}

func (r *renderer) Stats() Stats {
	return Stats{
		LiveBuffers:  r.liveBuffers.Load(),
		LiveTextures: r.liveTextures.Load(),
		BufferBytes:  r.bufferBytes.Load(),
	}
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stats := r.Stats(); stats.LiveBuffers > 0 || stats.LiveTextures > 0 {
		logger.Named("renderer").Warn("releasing renderer with live handles",
			zap.Int64("buffers", stats.LiveBuffers),
			zap.Int64("textures", stats.LiveTextures),
		)
	}
	r.backend.Release()
}

// trackedBuffer wraps a backend buffer so the renderer can count live handles.
type trackedBuffer struct {
	Buffer
	owner    *renderer
	released atomic.Bool
}

func (b *trackedBuffer) Release() {
	if b.released.Swap(true) {
		return
	}
	b.owner.liveBuffers.Add(-1)
	b.owner.bufferBytes.Add(-int64(b.Size()))
	b.Buffer.Release()
}

// trackedTexture wraps a backend texture so the renderer can count live handles.
type trackedTexture struct {
	Texture
	owner    *renderer
	released atomic.Bool
}

func (t *trackedTexture) Release() {
	if t.released.Swap(true) {
		return
	}
	t.owner.liveTextures.Add(-1)
	t.Texture.Release()
}

func unwrapBuffer(b Buffer) Buffer {
	if tb, ok := b.(*trackedBuffer); ok {
		return tb.Buffer
	}
	return b
}

// liveBuffer reports whether b is non-nil and has not been released through this package.
func liveBuffer(b Buffer) bool {
	if b == nil {
		return false
	}
	if tb, ok := b.(*trackedBuffer); ok {
		return !tb.released.Load()
	}
	return true
}

// liveTexture unwraps t, mapping released textures to nil so the backend binds its fallback.
func liveTexture(t Texture) Texture {
	tt, ok := t.(*trackedTexture)
	if !ok {
		return t
	}
	if tt.released.Load() {
		return nil
	}
	return tt.Texture
}

func labelOf(b Buffer) string {
	if b == nil {
		return "<nil>"
	}
	return b.Label()
}

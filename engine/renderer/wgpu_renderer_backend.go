package renderer

import (
	_ "embed"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"

	"github.com/cogentcore/webgpu/wgpu"
)

// meshShaderSource is the WGSL program of the built-in textured, normal-mapped mesh pipeline.
// Its VertexInput expects locations 0..4 (position, uv, normal, tangent, bitangent) and its
// CameraUniform is a single column-major mat4x4.
//
//go:embed assets/mesh.wgsl
var meshShaderSource string

// cameraUniformSize is the size of a mat4x4<f32>.
const cameraUniformSize = 64

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        *wgpu.TextureFormat
	msaaTextureView      *wgpu.TextureView
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode  wgpu.PresentMode
	sampleCount  MSAASampleCount
	vertexLayout *wgpu.VertexBufferLayout

	// Built-in mesh pipeline state
	cameraLayout    *wgpu.BindGroupLayout
	materialLayout  *wgpu.BindGroupLayout
	pipelineLayout  *wgpu.PipelineLayout
	shaderModule    *wgpu.ShaderModule
	pipeline        *wgpu.RenderPipeline
	sampler         *wgpu.Sampler
	cameraBindGroup *wgpu.BindGroup

	// 1×1 placeholders for materials without a texture
	fallbackDiffuse *wgpuTexture
	fallbackNormal  *wgpuTexture

	materialBindGroups map[[2]*wgpuTexture]*wgpu.BindGroup

	// Frame state for batched rendering across multiple draw calls
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// wgpuBuffer is the wgpu implementation of Buffer.
type wgpuBuffer struct {
	label string
	size  uint64
	buf   *wgpu.Buffer
}

func (b *wgpuBuffer) Label() string { return b.label }
func (b *wgpuBuffer) Size() uint64  { return b.size }

func (b *wgpuBuffer) Release() {
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
	}
}

// wgpuTexture is the wgpu implementation of Texture.
type wgpuTexture struct {
	label         string
	width, height uint32
	normalMap     bool
	tex           *wgpu.Texture
	view          *wgpu.TextureView
	backend       *wgpuRendererBackendImpl
}

func (t *wgpuTexture) Label() string     { return t.label }
func (t *wgpuTexture) Width() uint32     { return t.width }
func (t *wgpuTexture) Height() uint32    { return t.height }
func (t *wgpuTexture) IsNormalMap() bool { return t.normalMap }

func (t *wgpuTexture) Release() {
	if t.backend != nil {
		t.backend.forgetTexture(t)
	}
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.tex != nil {
		t.tex.Release()
		t.tex = nil
	}
}

// newWGPURendererBackend acquires an adapter and device, presenting to the surface when one is given.
//
// Parameters:
//   - surfaceDescriptor: the window surface, or nil for a headless device
//   - vertexLayout: the vertex buffer layout of the mesh pipeline, required to present
//   - forceFallbackAdapter: request the software adapter
//   - presentMode: the initial present mode
//   - sampleCount: the MSAA sample count of the main pass
//
// Returns:
//   - *wgpuRendererBackendImpl: the backend
//   - error: error if no adapter or device is available
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, vertexLayout *wgpu.VertexBufferLayout, forceFallbackAdapter bool, presentMode PresentMode, sampleCount MSAASampleCount) (*wgpuRendererBackendImpl, error) {
	if surfaceDescriptor != nil {
		runtime.LockOSThread()
	}
	w := &wgpuRendererBackendImpl{
		mu:                 &sync.Mutex{},
		instance:           wgpu.CreateInstance(nil),
		sampleCount:        sampleCount,
		vertexLayout:       vertexLayout,
		materialBindGroups: make(map[[2]*wgpuTexture]*wgpu.BindGroup),
	}
	w.setPresentMode(presentMode)

	adapterOptions := &wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
	}
	if surfaceDescriptor != nil {
		w.surface = w.instance.CreateSurface(surfaceDescriptor)
		adapterOptions.CompatibleSurface = w.surface
	}

	a, err := w.instance.RequestAdapter(adapterOptions)
	if err != nil {
		w.Release()
		return nil, fmt.Errorf("requesting adapter: %w", err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		w.Release()
		return nil, fmt.Errorf("requesting device: %w", err)
	}
	w.device = d
	w.queue = d.GetQueue()

	if err := w.initSharedResources(); err != nil {
		w.Release()
		return nil, err
	}
	return w, nil
}

// initSharedResources creates the bind group layouts, the sampler and the fallback textures.
func (b *wgpuRendererBackendImpl) initSharedResources() error {
	var err error
	b.cameraLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Camera Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: cameraUniformSize,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating camera layout: %w", err)
	}

	textureEntry := func(binding uint32) wgpu.BindGroupLayoutEntry {
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		}
	}
	samplerEntry := func(binding uint32) wgpu.BindGroupLayoutEntry {
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageFragment,
			Sampler: wgpu.SamplerBindingLayout{
				Type: wgpu.SamplerBindingTypeFiltering,
			},
		}
	}
	b.materialLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "Material Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{textureEntry(0), samplerEntry(1), textureEntry(2), samplerEntry(3)},
	})
	if err != nil {
		return fmt.Errorf("creating material layout: %w", err)
	}

	b.sampler, err = b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Material Sampler",
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("creating sampler: %w", err)
	}

	// White diffuse and a flat tangent-space normal (0.5, 0.5, 1.0).
	white := &common.TextureStagingData{Pixels: []byte{255, 255, 255, 255}, Width: 1, Height: 1}
	flat := &common.TextureStagingData{Pixels: []byte{128, 128, 255, 255}, Width: 1, Height: 1}
	if b.fallbackDiffuse, err = b.createTexture("Fallback Diffuse", white, false); err != nil {
		return err
	}
	if b.fallbackNormal, err = b.createTexture("Fallback Normal", flat, true); err != nil {
		return err
	}
	return nil
}

func (b *wgpuRendererBackendImpl) HasSurface() bool {
	return b.surface != nil
}

func (b *wgpuRendererBackendImpl) CreateBuffer(label string, usage BufferUsage, data []byte) (Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var u wgpu.BufferUsage
	switch usage {
	case BufferUsageVertex:
		u = wgpu.BufferUsageVertex
	case BufferUsageIndex:
		u = wgpu.BufferUsageIndex
	case BufferUsageUniform:
		u = wgpu.BufferUsageUniform
	default:
		return nil, fmt.Errorf("unknown buffer usage %d", usage)
	}

	// Queue writes must be a multiple of 4 bytes.
	size := (uint64(len(data)) + 3) &^ 3
	if size != uint64(len(data)) {
		padded := make([]byte, size)
		copy(padded, data)
		data = padded
	}

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             size,
		Usage:            u | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, err
	}
	b.queue.WriteBuffer(buf, 0, data)

	return &wgpuBuffer{label: label, size: size, buf: buf}, nil
}

func (b *wgpuRendererBackendImpl) WriteBuffer(buf Buffer, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	wb, ok := buf.(*wgpuBuffer)
	if !ok || wb.buf == nil {
		return fmt.Errorf("buffer %q is not a live wgpu buffer", buf.Label())
	}
	if len(data)%4 != 0 {
		padded := make([]byte, (len(data)+3)&^3)
		copy(padded, data)
		data = padded
	}
	b.queue.WriteBuffer(wb.buf, 0, data)
	return nil
}

func (b *wgpuRendererBackendImpl) CreateTexture(label string, staged *common.TextureStagingData, isNormalMap bool) (Texture, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.createTexture(label, staged, isNormalMap)
}

func (b *wgpuRendererBackendImpl) createTexture(label string, staged *common.TextureStagingData, isNormalMap bool) (*wgpuTexture, error) {
	format := wgpu.TextureFormatRGBA8UnormSrgb
	if isNormalMap {
		format = wgpu.TextureFormatRGBA8Unorm
	}

	size := wgpu.Extent3D{
		Width:              staged.Width,
		Height:             staged.Height,
		DepthOrArrayLayers: 1,
	}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		staged.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  staged.BytesPerRow(),
			RowsPerImage: staged.Height,
		},
		&size,
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}

	return &wgpuTexture{
		label:     label,
		width:     staged.Width,
		height:    staged.Height,
		normalMap: isNormalMap,
		tex:       tex,
		view:      view,
		backend:   b,
	}, nil
}

// forgetTexture drops cached material bind groups that reference a texture about to be released.
func (b *wgpuRendererBackendImpl) forgetTexture(t *wgpuTexture) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for key, bg := range b.materialBindGroups {
		if key[0] == t || key[1] == t {
			bg.Release()
			delete(b.materialBindGroups, key)
		}
	}
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surface == nil {
		return errors.New("no surface to configure")
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		return errors.New("surface reports no formats")
	}
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1

	if msaaEnabled {
		// The render pass draws into the MSAA texture and resolves into the swapchain view.
		msaaTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "MSAA Texture",
			Size: wgpu.Extent3D{
				Width:              uint32(width),
				Height:             uint32(height),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			return fmt.Errorf("creating msaa texture: %w", err)
		}
		b.msaaTextureView, err = msaaTexture.CreateView(nil)
		if err != nil {
			return fmt.Errorf("creating msaa view: %w", err)
		}
	}

	// Depth texture sample count must match the color attachment.
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("creating depth texture: %w", err)
	}
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("creating depth view: %w", err)
	}

	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:          b.msaaTextureView, // nil when MSAA is off; set in BeginFrame
				ResolveTarget: nil,               // set per-frame when MSAA is on
				LoadOp:        wgpu.LoadOpClear,
				StoreOp:       storeOp,
				ClearValue: wgpu.Color{
					R: 0.1, G: 0.2, B: 0.3, A: 1.0,
				},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}

	if b.pipeline == nil {
		return b.createMeshPipeline()
	}
	return nil
}

// createMeshPipeline builds the textured mesh render pipeline for the configured surface format.
func (b *wgpuRendererBackendImpl) createMeshPipeline() error {
	if b.vertexLayout == nil {
		return errors.New("no vertex layout configured for the mesh pipeline")
	}

	var err error
	b.shaderModule, err = b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Mesh Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: meshShaderSource,
		},
	})
	if err != nil {
		return fmt.Errorf("compiling mesh shader: %w", err)
	}

	b.pipelineLayout, err = b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Mesh Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.cameraLayout, b.materialLayout},
	})
	if err != nil {
		return fmt.Errorf("creating mesh pipeline layout: %w", err)
	}

	b.pipeline, err = b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Mesh Render Pipeline",
		Layout: b.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     b.shaderModule,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{*b.vertexLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     b.shaderModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    *b.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating mesh pipeline: %w", err)
	}
	return nil
}

func (b *wgpuRendererBackendImpl) SetCameraBuffer(buf Buffer) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	wb, ok := buf.(*wgpuBuffer)
	if !ok || wb.buf == nil {
		return fmt.Errorf("buffer %q is not a live wgpu buffer", buf.Label())
	}
	if wb.size < cameraUniformSize {
		return fmt.Errorf("camera buffer %q is %d bytes, need %d", wb.label, wb.size, cameraUniformSize)
	}

	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Camera Bind Group",
		Layout: b.cameraLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: wb.buf, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return err
	}
	if b.cameraBindGroup != nil {
		b.cameraBindGroup.Release()
	}
	b.cameraBindGroup = bg
	return nil
}

// materialBindGroup returns the cached bind group for a diffuse/normal pair, creating it on first use.
// Missing textures fall back to the 1×1 placeholders.
func (b *wgpuRendererBackendImpl) materialBindGroup(diffuse, normal Texture) (*wgpu.BindGroup, error) {
	d, _ := diffuse.(*wgpuTexture)
	if d == nil || d.view == nil {
		d = b.fallbackDiffuse
	}
	n, _ := normal.(*wgpuTexture)
	if n == nil || n.view == nil {
		n = b.fallbackNormal
	}

	key := [2]*wgpuTexture{d, n}
	if bg, ok := b.materialBindGroups[key]; ok {
		return bg, nil
	}

	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  d.label + " Material Bind Group",
		Layout: b.materialLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: d.view},
			{Binding: 1, Sampler: b.sampler},
			{Binding: 2, TextureView: n.view},
			{Binding: 3, Sampler: b.sampler},
		},
	})
	if err != nil {
		return nil, err
	}
	b.materialBindGroups[key] = bg
	return bg, nil
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.renderPassDescriptor == nil || b.pipeline == nil {
		return errors.New("surface not configured")
	}
	if b.cameraBindGroup == nil {
		return errors.New("no camera buffer bound")
	}
	// A held surface texture means the previous frame was never presented.
	if b.frameSurface != nil {
		return errors.New("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}
	pass := encoder.BeginRenderPass(b.renderPassDescriptor)
	pass.SetPipeline(b.pipeline)
	pass.SetBindGroup(0, b.cameraBindGroup, nil)

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view

	return nil
}

func (b *wgpuRendererBackendImpl) Draw(item DrawItem) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return errors.New("draw outside of a frame")
	}
	vb, ok := item.VertexBuffer.(*wgpuBuffer)
	if !ok || vb.buf == nil {
		return errors.New("vertex buffer is not a live wgpu buffer")
	}
	ib, ok := item.IndexBuffer.(*wgpuBuffer)
	if !ok || ib.buf == nil {
		return errors.New("index buffer is not a live wgpu buffer")
	}

	bg, err := b.materialBindGroup(item.DiffuseTexture, item.NormalTexture)
	if err != nil {
		return fmt.Errorf("material bind group: %w", err)
	}

	b.framePass.SetBindGroup(1, bg, nil)
	b.framePass.SetVertexBuffer(0, vb.buf, 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(ib.buf, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(item.ElementCount, 1, 0, 0, 0)
	return nil
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return errors.New("no frame in progress")
	}
	b.framePass.End()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameEncoder.Release()
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameEncoder = nil
		b.framePass = nil
		b.frameSurface = nil
		b.frameView = nil
		return err
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
	b.framePass = nil
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) setPresentMode(mode PresentMode) {
	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	// Fallback textures take the lock in forgetTexture.
	if b.fallbackDiffuse != nil {
		b.fallbackDiffuse.Release()
		b.fallbackDiffuse = nil
	}
	if b.fallbackNormal != nil {
		b.fallbackNormal.Release()
		b.fallbackNormal = nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for key, bg := range b.materialBindGroups {
		bg.Release()
		delete(b.materialBindGroups, key)
	}
	if b.cameraBindGroup != nil {
		b.cameraBindGroup.Release()
		b.cameraBindGroup = nil
	}
	if b.pipeline != nil {
		b.pipeline.Release()
		b.pipeline = nil
	}
	if b.pipelineLayout != nil {
		b.pipelineLayout.Release()
		b.pipelineLayout = nil
	}
	if b.shaderModule != nil {
		b.shaderModule.Release()
		b.shaderModule = nil
	}
	if b.sampler != nil {
		b.sampler.Release()
		b.sampler = nil
	}
	if b.materialLayout != nil {
		b.materialLayout.Release()
		b.materialLayout = nil
	}
	if b.cameraLayout != nil {
		b.cameraLayout.Release()
		b.cameraLayout = nil
	}
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	b.queue = nil
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// Package webgpu implements backend.Backend on WebGPU. Every program carries one uniform block
// at @group(0) @binding(0), bound per draw with a dynamic offset into a per-program arena, and
// its textures and samplers at @group(1).
package webgpu

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/helix-go/common"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuBackend is the WebGPU implementation of backend.Backend.
type wgpuBackend struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue
	caps     backend.Capabilities

	surfaceFormat wgpu.TextureFormat
	width, height int
	depth         *texture

	// builder configuration
	presentMode          wgpu.PresentMode
	forceFallbackAdapter bool
	initialSlots         int

	programs  map[*program]struct{}
	programID int

	samplers     map[string]*wgpu.Sampler
	placeholders map[wgpu.TextureSampleType]*texture

	// frame state
	encoder      *wgpu.CommandEncoder
	pass         *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
	target       targetSignature
	current      *program
	state        backend.RenderState
	retired      []func()
}

var _ backend.Backend = &wgpuBackend{}

// NewBackend creates a WebGPU device rendering to the surface described by surfaceDescriptor.
// The calling goroutine is locked to its OS thread, as WebGPU surfaces require.
//
// Parameters:
//   - surfaceDescriptor: platform surface, usually from window.Window.SurfaceDescriptor
//   - width, height: initial back buffer size in pixels
//   - options: functional options
//
// Returns:
//   - backend.Backend: the backend
//   - error: if no adapter or device could be acquired
func NewBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, options ...BackendBuilderOption) (backend.Backend, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("webgpu: surface descriptor is required")
	}
	runtime.LockOSThread()

	b := &wgpuBackend{
		mu:           &sync.Mutex{},
		presentMode:  wgpu.PresentModeFifo,
		initialSlots: DefaultInitialUniformSlots,
		programs:     map[*program]struct{}{},
		samplers:     map[string]*wgpu.Sampler{},
		placeholders: map[wgpu.TextureSampleType]*texture{},
	}
	for _, option := range options {
		option(b)
	}

	b.instance = wgpu.CreateInstance(nil)
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	b.adapter = a

	limits := wgpu.DefaultLimits()
	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "helix device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	// RGBA16Float is renderable and depth textures are sampleable in core WebGPU.
	b.caps = backend.Capabilities{
		FloatRenderTargets:  true,
		DepthTextures:       true,
		MaxColorAttachments: int(limits.MaxColorAttachments),
		MaxTextureSize:      int(limits.MaxTextureDimension2D),
	}

	if err := b.configureSurface(width, height); err != nil {
		b.Release()
		return nil, err
	}
	common.Logger().Info("webgpu backend created", "width", width, "height", height, "format", b.surfaceFormat.String())
	return b, nil
}

// configureSurface is a wrapper for the boilerplate required to (re)configure the surface and
// its depth buffer.
func (b *wgpuBackend) configureSurface(width, height int) error {
	width, height = max(width, 1), max(height, 1)
	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		return fmt.Errorf("surface reports no formats: %w", backend.ErrContextLost)
	}
	b.surfaceFormat = capabilities.Formats[0]
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if b.depth != nil {
		b.depth.release()
	}
	depth, err := b.createTexture("back buffer depth", width, height, depthFormat, false)
	if err != nil {
		return err
	}
	b.depth = depth
	b.width, b.height = width, height
	return nil
}

func (b *wgpuBackend) nextProgramID() int {
	b.programID++
	return b.programID
}

func (b *wgpuBackend) Type() backend.BackendType {
	return backend.BackendTypeWGPU
}

func (b *wgpuBackend) Capabilities() backend.Capabilities {
	return b.caps
}

func (b *wgpuBackend) CompileProgram(vertexSource, fragmentSource string) (backend.Program, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := newProgram(b, vertexSource, fragmentSource)
	if err != nil {
		return nil, err
	}
	b.programs[p] = struct{}{}
	return p, nil
}

func (b *wgpuBackend) forgetProgram(p *program) {
	delete(b.programs, p)
	if b.current == p {
		b.current = nil
	}
}

func (b *wgpuBackend) CreateMesh(data backend.MeshData) (backend.Mesh, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if data.Stride <= 0 || len(data.Vertices)%data.Stride != 0 {
		return nil, fmt.Errorf("mesh %s: vertex data not a multiple of stride %d", data.Label, data.Stride)
	}

	m := &mesh{label: data.Label, count: len(data.Indices), stride: uint64(data.Stride) * 4}
	vertices := common.SliceToBytes(data.Vertices)
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: data.Label + " vertices",
		Size:  uint64(len(vertices)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to allocate vertices of %s: %w", data.Label, backend.ErrOutOfMemory)
	}
	m.vertices = buf
	if err := b.queue.WriteBuffer(buf, 0, vertices); err != nil {
		m.Release()
		return nil, fmt.Errorf("failed to upload vertices of %s: %w", data.Label, err)
	}

	indices := common.SliceToBytes(data.Indices)
	buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: data.Label + " indices",
		Size:  uint64(max(len(indices), 4)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		m.Release()
		return nil, fmt.Errorf("failed to allocate indices of %s: %w", data.Label, backend.ErrOutOfMemory)
	}
	m.indices = buf
	if len(indices) > 0 {
		if err := b.queue.WriteBuffer(buf, 0, indices); err != nil {
			m.Release()
			return nil, fmt.Errorf("failed to upload indices of %s: %w", data.Label, err)
		}
	}
	return m, nil
}

// createTexture allocates an attachment that can also be sampled.
func (b *wgpuBackend) createTexture(label string, width, height int, format wgpu.TextureFormat, sampled bool) (*texture, error) {
	usage := wgpu.TextureUsageRenderAttachment
	if sampled {
		usage |= wgpu.TextureUsageTextureBinding
	}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create texture %s: %w: %w", label, backend.ErrFramebufferIncomplete, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create view of %s: %w: %w", label, backend.ErrFramebufferIncomplete, err)
	}
	return &texture{tex: tex, view: view, width: width, height: height, depth: format == depthFormat}, nil
}

func (b *wgpuBackend) CreateRenderTarget(desc backend.RenderTargetDescriptor) (backend.RenderTarget, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(desc.ColorFormats) > min(maxColorTargets, max(b.caps.MaxColorAttachments, 1)) {
		return nil, fmt.Errorf("render target %s: %d color attachments: %w", desc.Label, len(desc.ColorFormats), backend.ErrFramebufferIncomplete)
	}
	if len(desc.ColorFormats) == 0 && !desc.Depth {
		return nil, fmt.Errorf("render target %s has no attachments: %w", desc.Label, backend.ErrFramebufferIncomplete)
	}

	rt := &renderTarget{label: desc.Label, width: desc.Width, height: desc.Height}
	for i, f := range desc.ColorFormats {
		format, err := textureFormat(f)
		if err != nil {
			rt.Release()
			return nil, fmt.Errorf("render target %s: %w", desc.Label, err)
		}
		tex, err := b.createTexture(fmt.Sprintf("%s color %d", desc.Label, i), desc.Width, desc.Height, format, true)
		if err != nil {
			rt.Release()
			return nil, err
		}
		rt.colors = append(rt.colors, tex)
		rt.sig.colors[i] = format
	}
	rt.sig.numColors = len(rt.colors)
	if desc.Depth {
		tex, err := b.createTexture(desc.Label+" depth", desc.Width, desc.Height, depthFormat, desc.DepthSampled)
		if err != nil {
			rt.Release()
			return nil, err
		}
		rt.depth = tex
		rt.sig.depth = true
	}
	return rt, nil
}

// sampler returns the shared sampler for a WGSL sampler type.
func (b *wgpuBackend) sampler(wgslType string) *wgpu.Sampler {
	if s, ok := b.samplers[wgslType]; ok {
		return s
	}
	desc := &wgpu.SamplerDescriptor{
		Label:         wgslType,
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
	if wgslType == "sampler_comparison" {
		desc.Compare = wgpu.CompareFunctionLessEqual
	}
	s, err := b.device.CreateSampler(desc)
	if err != nil {
		common.Logger().Error("failed to create sampler", "type", wgslType, "error", err)
		return nil
	}
	b.samplers[wgslType] = s
	return s
}

// placeholder returns a 1x1 texture bound wherever a program declares a texture nobody set.
func (b *wgpuBackend) placeholder(sampleType wgpu.TextureSampleType) *wgpu.TextureView {
	if t, ok := b.placeholders[sampleType]; ok {
		return t.view
	}
	format := wgpu.TextureFormatRGBA16Float
	if sampleType == wgpu.TextureSampleTypeDepth {
		format = depthFormat
	}
	t, err := b.createTexture("placeholder", 1, 1, format, true)
	if err != nil {
		common.Logger().Error("failed to create placeholder texture", "error", err)
		return nil
	}
	b.placeholders[sampleType] = t
	return t.view
}

func (b *wgpuBackend) retireBuffer(buf *wgpu.Buffer) {
	b.retired = append(b.retired, buf.Release)
}

func (b *wgpuBackend) retireBindGroup(bg *wgpu.BindGroup) {
	if bg != nil {
		b.retired = append(b.retired, bg.Release)
	}
}

func (b *wgpuBackend) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return errors.New("previous frame surface not yet presented")
	}
	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("failed to acquire back buffer: %w: %w", backend.ErrContextLost, err)
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return fmt.Errorf("failed to view back buffer: %w: %w", backend.ErrContextLost, err)
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return fmt.Errorf("failed to create command encoder: %w: %w", backend.ErrContextLost, err)
	}

	for p := range b.programs {
		p.resetArena()
	}
	b.encoder = encoder
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuBackend) endPass() {
	if b.pass != nil {
		b.pass.End()
		b.pass.Release()
		b.pass = nil
	}
}

func (b *wgpuBackend) SetRenderTarget(target backend.RenderTarget, clear backend.ClearOptions) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.encoder == nil {
		return
	}
	b.endPass()

	colorLoad := wgpu.LoadOpLoad
	if clear.ClearColor {
		colorLoad = wgpu.LoadOpClear
	}
	depthLoad := wgpu.LoadOpLoad
	if clear.ClearDepth {
		depthLoad = wgpu.LoadOpClear
	}
	clearValue := wgpu.Color{
		R: float64(clear.Color[0]),
		G: float64(clear.Color[1]),
		B: float64(clear.Color[2]),
		A: float64(clear.Color[3]),
	}

	desc := &wgpu.RenderPassDescriptor{}
	var depthView *wgpu.TextureView
	rt, _ := target.(*renderTarget)
	if rt == nil {
		desc.ColorAttachments = []wgpu.RenderPassColorAttachment{{
			View:       b.frameView,
			LoadOp:     colorLoad,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: clearValue,
		}}
		depthView = b.depth.view
		b.target = targetSignature{numColors: 1, depth: true}
		b.target.colors[0] = b.surfaceFormat
	} else {
		for _, c := range rt.colors {
			desc.ColorAttachments = append(desc.ColorAttachments, wgpu.RenderPassColorAttachment{
				View:       c.view,
				LoadOp:     colorLoad,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: clearValue,
			})
		}
		if rt.depth != nil {
			depthView = rt.depth.view
		}
		b.target = rt.sig
	}
	if depthView != nil {
		desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            depthView,
			DepthLoadOp:     depthLoad,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: clear.Depth,
		}
	}
	b.pass = b.encoder.BeginRenderPass(desc)
}

func (b *wgpuBackend) SetViewport(x, y, width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pass == nil {
		return
	}
	b.pass.SetViewport(float32(x), float32(y), float32(width), float32(height), 0, 1)
}

func (b *wgpuBackend) UseProgram(p backend.Program, state backend.RenderState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current, _ = p.(*program)
	b.state = state
}

// bind sets the pipeline and bind groups of the current program for one draw.
func (b *wgpuBackend) bind(stride uint64, fullscreen bool) error {
	p := b.current
	if p == nil || b.pass == nil {
		return errors.New("draw without program or render target")
	}
	rp, err := p.pipeline(pipelineKey{target: b.target, state: b.state, stride: stride, fullscreen: fullscreen})
	if err != nil {
		return err
	}
	offset, err := p.nextSlot()
	if err != nil {
		return err
	}
	b.pass.SetPipeline(rp)

	if len(p.groupLayouts) > blockGroup {
		bg, err := p.blockBindGroup()
		if err != nil {
			return err
		}
		var offsets []uint32
		if p.blockSize > 0 {
			offsets = []uint32{offset}
		}
		b.pass.SetBindGroup(blockGroup, bg, offsets)
	}
	if len(p.groupLayouts) > resourceGroup {
		bg, err := p.resourceBindGroup()
		if err != nil {
			return err
		}
		if bg != nil {
			b.pass.SetBindGroup(resourceGroup, bg, nil)
		}
	}
	return nil
}

func (b *wgpuBackend) Draw(m backend.Mesh) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	gm, ok := m.(*mesh)
	if !ok || gm == nil || gm.vertices == nil {
		return errors.New("draw of a mesh not created by this backend")
	}
	if err := b.bind(gm.stride, false); err != nil {
		return err
	}
	b.pass.SetVertexBuffer(0, gm.vertices, 0, wgpu.WholeSize)
	b.pass.SetIndexBuffer(gm.indices, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.pass.DrawIndexed(uint32(gm.count), 1, 0, 0, 0)
	return nil
}

func (b *wgpuBackend) DrawFullscreen() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.bind(0, true); err != nil {
		return err
	}
	b.pass.Draw(3, 1, 0, 0)
	return nil
}

func (b *wgpuBackend) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.encoder == nil {
		return nil
	}
	b.endPass()
	defer b.releaseRetired()

	commandBuffer, err := b.encoder.Finish(nil)
	b.encoder.Release()
	b.encoder = nil
	if err != nil {
		return fmt.Errorf("failed to finish frame: %w", err)
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuBackend) releaseRetired() {
	for _, release := range b.retired {
		release()
	}
	b.retired = b.retired[:0]
}

func (b *wgpuBackend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.frameView.Release()
	b.frameView = nil
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuBackend) Resize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if width <= 0 || height <= 0 || (width == b.width && height == b.height) {
		return
	}
	if err := b.configureSurface(width, height); err != nil {
		common.Logger().Error("failed to resize surface", "width", width, "height", height, "error", err)
	}
}

func (b *wgpuBackend) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

func (b *wgpuBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.endPass()
	if b.encoder != nil {
		b.encoder.Release()
		b.encoder = nil
	}
	b.releaseRetired()
	for p := range b.programs {
		p.Release()
	}
	for _, s := range b.samplers {
		s.Release()
	}
	clear(b.samplers)
	for _, t := range b.placeholders {
		t.release()
	}
	clear(b.placeholders)
	if b.depth != nil {
		b.depth.release()
		b.depth = nil
	}
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
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

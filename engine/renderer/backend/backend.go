package backend

import "github.com/go-gl/mathgl/mgl32"

// BackendType identifies the GPU backend implementation behind a Backend.
type BackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU BackendType = iota
	// BackendTypeHeadless is a backend that records commands without a GPU.
	BackendTypeHeadless
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

// TextureFormat is the pixel format of a render target attachment.
type TextureFormat int

const (
	// FormatRGBA8 is 8-bit normalized RGBA.
	FormatRGBA8 TextureFormat = iota
	// FormatRGBA16F is 16-bit float RGBA, used for HDR and G-buffer targets.
	FormatRGBA16F
	// FormatDepth32F is a 32-bit float depth attachment.
	FormatDepth32F
)

// CullMode selects which triangle faces are discarded.
type CullMode int

const (
	CullBack CullMode = iota
	CullFront
	CullNone
)

// BlendMode selects how fragment output is combined with the target.
type BlendMode int

const (
	BlendNone BlendMode = iota
	BlendAlpha
	BlendAdditive
)

// RenderState is the fixed-function state a program is drawn with.
type RenderState struct {
	Cull       CullMode
	Blend      BlendMode
	DepthTest  bool
	DepthWrite bool
}

// DefaultRenderState is opaque, back-face culled, depth tested and written.
var DefaultRenderState = RenderState{Cull: CullBack, Blend: BlendNone, DepthTest: true, DepthWrite: true}

// UniformLocation addresses a uniform inside a compiled program: a buffer binding plus the byte
// range of the value inside it.
type UniformLocation struct {
	Group   uint32
	Binding uint32
	Offset  uint64
	Size    uint64
}

// UniformInfo describes one uniform exposed by a compiled program.
type UniformInfo struct {
	Name     string
	Type     string
	Location UniformLocation
}

// Capabilities describes what the device supports.
type Capabilities struct {
	FloatRenderTargets  bool
	DepthTextures       bool
	MaxColorAttachments int
	MaxTextureSize      int
}

// MeshData is CPU-side geometry handed to the backend for upload.
// Vertices are interleaved; Stride is the number of float32 values per vertex.
type MeshData struct {
	Label    string
	Vertices []float32
	Stride   int
	Indices  []uint32
}

// RenderTargetDescriptor describes an offscreen render target.
type RenderTargetDescriptor struct {
	Label        string
	Width        int
	Height       int
	ColorFormats []TextureFormat
	Depth        bool
	// DepthSampled makes the depth attachment readable as a comparison texture (shadow maps).
	DepthSampled bool
}

// ClearOptions controls which attachments are cleared when a target is bound.
type ClearOptions struct {
	ClearColor bool
	Color      [4]float32
	ClearDepth bool
	Depth      float32
}

// Texture is a GPU texture that can be bound to a program by name.
type Texture interface {
	Width() int
	Height() int
}

// Mesh is uploaded geometry.
type Mesh interface {
	// NumIndices returns the number of indices drawn by Draw.
	NumIndices() int

	// Release frees the GPU buffers.
	Release()
}

// RenderTarget is an offscreen set of attachments.
type RenderTarget interface {
	Width() int
	Height() int

	// ColorTexture returns the i-th color attachment, or nil if out of range.
	//
	// Parameters:
	//   - i: attachment index
	//
	// Returns:
	//   - Texture: the attachment texture
	ColorTexture(i int) Texture

	// DepthTexture returns the depth attachment, or nil when the target has none.
	DepthTexture() Texture

	// Release frees the attachments.
	Release()
}

// UniformWriter writes uniform values into a program. Writes are staged and take effect for the
// next draw issued with the program.
type UniformWriter interface {
	SetFloat(loc UniformLocation, v float32)
	SetVec2(loc UniformLocation, v mgl32.Vec2)
	SetVec3(loc UniformLocation, v mgl32.Vec3)
	SetVec4(loc UniformLocation, v mgl32.Vec4)
	SetMat3(loc UniformLocation, m mgl32.Mat3)
	SetMat4(loc UniformLocation, m mgl32.Mat4)

	// SetFloatArray copies raw float data, already laid out for the uniform's memory layout.
	//
	// Parameters:
	//   - loc: uniform location
	//   - data: values; at most loc.Size/4 are written
	SetFloatArray(loc UniformLocation, data []float32)
}

// Program is a linked vertex + fragment shader pair.
type Program interface {
	UniformWriter

	// Uniforms returns every uniform the program declares.
	//
	// Returns:
	//   - []UniformInfo: uniform descriptions in declaration order
	Uniforms() []UniformInfo

	// UniformLocation looks up a uniform by name.
	//
	// Parameters:
	//   - name: the uniform's variable name
	//
	// Returns:
	//   - UniformLocation: its location
	//   - bool: false if the program does not declare it
	UniformLocation(name string) (UniformLocation, bool)

	// SetTexture binds a texture to the sampled texture variable with the given name.
	//
	// Parameters:
	//   - name: texture variable name
	//   - tex: texture to bind
	//
	// Returns:
	//   - bool: false if the program does not declare the texture
	SetTexture(name string, tex Texture) bool

	// Release frees the GPU program.
	Release()
}

// Backend is the GPU binding protocol used by the renderer. Implementations are not safe for
// concurrent use; all calls happen on the render thread.
type Backend interface {
	// Type returns the implementation kind.
	Type() BackendType

	// Capabilities reports device limits.
	Capabilities() Capabilities

	// CompileProgram compiles and links a program.
	//
	// Parameters:
	//   - vertexSource, fragmentSource: fully pre-processed shader sources
	//
	// Returns:
	//   - Program: the compiled program
	//   - error: compile or link failure
	CompileProgram(vertexSource, fragmentSource string) (Program, error)

	// CreateMesh uploads geometry.
	//
	// Parameters:
	//   - data: vertex and index data
	//
	// Returns:
	//   - Mesh: GPU mesh
	//   - error: ErrOutOfMemory if allocation fails
	CreateMesh(data MeshData) (Mesh, error)

	// CreateRenderTarget allocates an offscreen target.
	//
	// Parameters:
	//   - desc: attachments and size
	//
	// Returns:
	//   - RenderTarget: the target
	//   - error: ErrFramebufferIncomplete if the attachment combination is unusable
	CreateRenderTarget(desc RenderTargetDescriptor) (RenderTarget, error)

	// BeginFrame acquires the back buffer and starts recording.
	//
	// Returns:
	//   - error: ErrContextLost if the device or surface is gone
	BeginFrame() error

	// SetRenderTarget ends the current pass and starts one on target. A nil target selects the back buffer.
	//
	// Parameters:
	//   - target: offscreen target or nil
	//   - clear: attachments to clear
	SetRenderTarget(target RenderTarget, clear ClearOptions)

	// SetViewport restricts drawing to a rectangle of the current target.
	SetViewport(x, y, width, height int)

	// UseProgram selects the program and state for subsequent draws.
	//
	// Parameters:
	//   - p: the program
	//   - state: fixed-function state
	UseProgram(p Program, state RenderState)

	// Draw issues an indexed draw of m with the current program.
	//
	// Returns:
	//   - error: ErrOutOfMemory when per-draw uniform storage cannot grow
	Draw(m Mesh) error

	// DrawFullscreen draws a single full-screen triangle with the current program.
	DrawFullscreen() error

	// EndFrame finishes recording and submits the frame.
	EndFrame() error

	// Present shows the back buffer.
	Present()

	// Resize reconfigures the back buffer.
	Resize(width, height int)

	// Size returns the back buffer size in pixels.
	Size() (width, height int)

	// Release frees every device resource.
	Release()
}

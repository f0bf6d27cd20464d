// Package backendtest provides a recording Backend for tests. Programs are reflected from
// their WGSL sources exactly like the WebGPU backend does, uniform writes are kept per name,
// and failures can be injected per operation.
package backendtest

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend"
)

// DrawCall records one Draw or DrawFullscreen.
type DrawCall struct {
	Program    *Program
	Mesh       *Mesh
	Target     string
	State      backend.RenderState
	Fullscreen bool
	Viewport   [4]int
}

// Backend is a headless backend.Backend that records what it is asked to do.
type Backend struct {
	mu *sync.Mutex

	// Caps is returned from Capabilities.
	Caps backend.Capabilities

	// FailCompile, when set, is consulted before every compile; a non-nil error fails it.
	FailCompile func(vertexSource, fragmentSource string) error

	// FailTargets makes CreateRenderTarget fail with ErrFramebufferIncomplete for these labels.
	FailTargets map[string]bool

	// ContextLost makes BeginFrame fail with ErrContextLost.
	ContextLost bool

	// OutOfMemory makes CreateMesh fail with ErrOutOfMemory.
	OutOfMemory bool

	Compiles      int
	MeshesCreated int
	Frames        int
	Presents      int
	Draws         []DrawCall
	Programs      []*Program

	// Ops records every call in order, e.g. "BeginFrame", "SetRenderTarget gbuffer_albedo".
	Ops []string

	width, height int
	target        string
	viewport      [4]int
	program       *Program
	state         backend.RenderState
	released      bool
}

var _ backend.Backend = &Backend{}

// New creates a fake backend with float render targets and a 1280x720 back buffer.
func New() *Backend {
	return &Backend{
		mu: &sync.Mutex{},
		Caps: backend.Capabilities{
			FloatRenderTargets:  true,
			DepthTextures:       true,
			MaxColorAttachments: 8,
			MaxTextureSize:      8192,
		},
		FailTargets: map[string]bool{},
		width:       1280,
		height:      720,
	}
}

func (b *Backend) record(format string, args ...any) {
	b.Ops = append(b.Ops, fmt.Sprintf(format, args...))
}

func (b *Backend) Type() backend.BackendType {
	return backend.BackendTypeHeadless
}

func (b *Backend) Capabilities() backend.Capabilities {
	return b.Caps
}

func (b *Backend) CompileProgram(vertexSource, fragmentSource string) (backend.Program, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Compiles++
	if b.FailCompile != nil {
		if err := b.FailCompile(vertexSource, fragmentSource); err != nil {
			return nil, err
		}
	}
	p, err := NewProgramFromSource(vertexSource, fragmentSource)
	if err != nil {
		return nil, err
	}
	b.Programs = append(b.Programs, p)
	return p, nil
}

func (b *Backend) CreateMesh(data backend.MeshData) (backend.Mesh, error) {
	if b.OutOfMemory {
		return nil, fmt.Errorf("failed to allocate mesh %s: %w", data.Label, backend.ErrOutOfMemory)
	}
	if data.Stride <= 0 || len(data.Vertices)%data.Stride != 0 {
		return nil, fmt.Errorf("mesh %s: vertex data not a multiple of stride %d", data.Label, data.Stride)
	}
	b.MeshesCreated++
	return &Mesh{Label: data.Label, Indices: len(data.Indices)}, nil
}

func (b *Backend) CreateRenderTarget(desc backend.RenderTargetDescriptor) (backend.RenderTarget, error) {
	if b.FailTargets[desc.Label] {
		return nil, fmt.Errorf("render target %s: %w", desc.Label, backend.ErrFramebufferIncomplete)
	}
	for _, f := range desc.ColorFormats {
		if f == backend.FormatRGBA16F && !b.Caps.FloatRenderTargets {
			return nil, fmt.Errorf("render target %s: %w", desc.Label, backend.ErrUnsupportedCapability)
		}
	}
	rt := &RenderTarget{Label: desc.Label, W: desc.Width, H: desc.Height}
	for range desc.ColorFormats {
		rt.Colors = append(rt.Colors, &Texture{Label: desc.Label, W: desc.Width, H: desc.Height})
	}
	if desc.Depth {
		rt.Depth = &Texture{Label: desc.Label + "_depth", W: desc.Width, H: desc.Height}
	}
	return rt, nil
}

func (b *Backend) BeginFrame() error {
	if b.ContextLost {
		return fmt.Errorf("failed to acquire back buffer: %w", backend.ErrContextLost)
	}
	b.Frames++
	b.record("BeginFrame")
	return nil
}

func (b *Backend) SetRenderTarget(target backend.RenderTarget, clear backend.ClearOptions) {
	b.target = "backbuffer"
	b.viewport = [4]int{0, 0, b.width, b.height}
	if rt, ok := target.(*RenderTarget); ok && rt != nil {
		b.target = rt.Label
		b.viewport = [4]int{0, 0, rt.W, rt.H}
	}
	b.record("SetRenderTarget %s", b.target)
}

func (b *Backend) SetViewport(x, y, width, height int) {
	b.viewport = [4]int{x, y, width, height}
}

func (b *Backend) UseProgram(p backend.Program, state backend.RenderState) {
	b.program, _ = p.(*Program)
	b.state = state
}

func (b *Backend) Draw(m backend.Mesh) error {
	mesh, _ := m.(*Mesh)
	b.draw(mesh, false)
	return nil
}

func (b *Backend) DrawFullscreen() error {
	b.draw(nil, true)
	return nil
}

func (b *Backend) draw(m *Mesh, fullscreen bool) {
	if b.program != nil {
		b.program.Draws++
	}
	b.Draws = append(b.Draws, DrawCall{
		Program:    b.program,
		Mesh:       m,
		Target:     b.target,
		State:      b.state,
		Fullscreen: fullscreen,
		Viewport:   b.viewport,
	})
}

func (b *Backend) EndFrame() error {
	b.record("EndFrame")
	return nil
}

func (b *Backend) Present() {
	b.Presents++
	b.record("Present")
}

func (b *Backend) Resize(width, height int) {
	b.width, b.height = width, height
}

func (b *Backend) Size() (int, int) {
	return b.width, b.height
}

func (b *Backend) Release() {
	b.released = true
}

// Released reports whether Release was called.
func (b *Backend) Released() bool {
	return b.released
}

// DrawsTo returns the draws recorded against the named target.
func (b *Backend) DrawsTo(target string) []DrawCall {
	var out []DrawCall
	for _, d := range b.Draws {
		if d.Target == target {
			out = append(out, d)
		}
	}
	return out
}

// TargetsInOrder returns the distinct render targets bound, in first-bound order.
func (b *Backend) TargetsInOrder() []string {
	var out []string
	seen := map[string]bool{}
	for _, op := range b.Ops {
		name, ok := strings.CutPrefix(op, "SetRenderTarget ")
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// Mesh is a recorded mesh.
type Mesh struct {
	Label    string
	Indices  int
	Released bool
}

func (m *Mesh) NumIndices() int { return m.Indices }
func (m *Mesh) Release()        { m.Released = true }

// Texture is a recorded texture.
type Texture struct {
	Label string
	W, H  int
}

func (t *Texture) Width() int  { return t.W }
func (t *Texture) Height() int { return t.H }

// RenderTarget is a recorded render target.
type RenderTarget struct {
	Label    string
	W, H     int
	Colors   []*Texture
	Depth    *Texture
	Released bool
}

func (r *RenderTarget) Width() int  { return r.W }
func (r *RenderTarget) Height() int { return r.H }

func (r *RenderTarget) ColorTexture(i int) backend.Texture {
	if i < 0 || i >= len(r.Colors) {
		return nil
	}
	return r.Colors[i]
}

func (r *RenderTarget) DepthTexture() backend.Texture {
	if r.Depth == nil {
		return nil
	}
	return r.Depth
}

func (r *RenderTarget) Release() { r.Released = true }

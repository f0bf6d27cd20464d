package webgpu

import (
	"fmt"

	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/wgsl"
	"github.com/cogentcore/webgpu/wgpu"
)

// Bind group slots. Group 0 holds the uniform block, bound with a per-draw dynamic offset.
// Group 1 holds textures and samplers.
const (
	blockGroup    = 0
	resourceGroup = 1
)

// uniformAlign is the dynamic offset alignment of uniform buffers.
const uniformAlign = 256

// uniformArena hands out one block-sized slot per draw from a growing uniform buffer.
type uniformArena struct {
	buf       *wgpu.Buffer
	slotSize  uint64
	slots     int
	used      int
	bindGroup *wgpu.BindGroup
}

// program is a compiled vertex/fragment pair with its uniform arena and resource bindings.
type program struct {
	*stagingBlock

	b     *wgpuBackend
	label string

	vs, fs        *wgpu.ShaderModule
	vsEntry       string
	fsEntry       string
	vertexLayouts []wgpu.VertexBufferLayout

	groupLayouts []*wgpu.BindGroupLayout
	layout       *wgpu.PipelineLayout
	pipelines    map[pipelineKey]*wgpu.RenderPipeline

	uniforms  []backend.UniformInfo
	blockSize uint64
	arena     uniformArena
	emptyBG   *wgpu.BindGroup

	resources     []wgsl.Binding
	textures      map[string]uint32
	views         map[uint32]*wgpu.TextureView
	resourceBG    *wgpu.BindGroup
	resourceDirty bool
}

var _ backend.Program = &program{}

// newProgram reflects and compiles both stages.
func newProgram(b *wgpuBackend, vertexSource, fragmentSource string) (*program, error) {
	vr, err := wgsl.Reflect(vertexSource, wgsl.StageVertex)
	if err != nil {
		return nil, fmt.Errorf("vertex stage: %w", err)
	}
	fr, err := wgsl.Reflect(fragmentSource, wgsl.StageFragment)
	if err != nil {
		return nil, fmt.Errorf("fragment stage: %w", err)
	}
	bindings, err := wgsl.MergeBindings(vr.Bindings, fr.Bindings)
	if err != nil {
		return nil, err
	}

	p := &program{
		b:             b,
		label:         fmt.Sprintf("program %d", b.nextProgramID()),
		vsEntry:       vr.EntryPoint,
		fsEntry:       fr.EntryPoint,
		vertexLayouts: vr.VertexLayouts,
		pipelines:     map[pipelineKey]*wgpu.RenderPipeline{},
		textures:      map[string]uint32{},
		views:         map[uint32]*wgpu.TextureView{},
		resourceDirty: true,
	}

	seen := map[string]bool{}
	for _, r := range []wgsl.Reflection{vr, fr} {
		block, members := r.BlockUniforms()
		if members == nil {
			continue
		}
		p.blockSize = max(p.blockSize, block.Size)
		for _, m := range members {
			if seen[m.Name] {
				continue
			}
			seen[m.Name] = true
			p.uniforms = append(p.uniforms, backend.UniformInfo{
				Name: m.Name,
				Type: m.Type,
				Location: backend.UniformLocation{
					Group:   block.Group,
					Binding: block.Binding,
					Offset:  m.Offset,
					Size:    m.Size,
				},
			})
		}
	}
	p.stagingBlock = newStagingBlock(alignUp(max(p.blockSize, 16), 16))

	for _, bd := range bindings {
		switch {
		case bd.Group == blockGroup && bd.Kind == wgsl.BindingKindUniform && bd.Name == wgsl.BlockName:
		case bd.Group == resourceGroup && (bd.Kind == wgsl.BindingKindTexture || bd.Kind == wgsl.BindingKindSampler):
			p.resources = append(p.resources, bd)
			if bd.Kind == wgsl.BindingKindTexture {
				p.textures[bd.Name] = bd.Binding
			}
		default:
			return nil, fmt.Errorf("unsupported binding %s at @group(%d) @binding(%d)", bd.Name, bd.Group, bd.Binding)
		}
	}

	if err := p.compile(vertexSource, fragmentSource, bindings); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

func (p *program) compile(vertexSource, fragmentSource string, bindings []wgsl.Binding) error {
	d := p.b.device
	var err error
	p.vs, err = d.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          p.label + " vertex",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: vertexSource},
	})
	if err != nil {
		return err
	}
	p.fs, err = d.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          p.label + " fragment",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: fragmentSource},
	})
	if err != nil {
		return err
	}

	groups := wgsl.GroupEntries(bindings, true)
	numGroups := 0
	for g := range groups {
		numGroups = max(numGroups, int(g)+1)
	}
	p.groupLayouts = make([]*wgpu.BindGroupLayout, numGroups)
	for g := range p.groupLayouts {
		layout, err := d.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("%s group %d", p.label, g),
			Entries: groups[uint32(g)],
		})
		if err != nil {
			return fmt.Errorf("failed to create bind group layout for group %d: %w", g, err)
		}
		p.groupLayouts[g] = layout
	}

	p.layout, err = d.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.label,
		BindGroupLayouts: p.groupLayouts,
	})
	return err
}

// pipeline returns the render pipeline for k, creating it on first use.
func (p *program) pipeline(k pipelineKey) (*wgpu.RenderPipeline, error) {
	if rp, ok := p.pipelines[k]; ok {
		return rp, nil
	}
	var buffers []wgpu.VertexBufferLayout
	if !k.fullscreen {
		buffers = vertexBuffers(p.vertexLayouts, k.stride)
	}
	desc := &wgpu.RenderPipelineDescriptor{
		Label:  p.label,
		Layout: p.layout,
		Vertex: wgpu.VertexState{
			Module:     p.vs,
			EntryPoint: p.vsEntry,
			Buffers:    buffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     p.fs,
			EntryPoint: p.fsEntry,
			Targets:    colorTargets(k.target, k.state.Blend),
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  cullMode(k.state.Cull),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
	if k.target.depth {
		desc.DepthStencil = depthStencilState(k.state)
	}
	rp, err := p.b.device.CreateRenderPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline for %s: %w", p.label, err)
	}
	p.pipelines[k] = rp
	return rp, nil
}

// nextSlot copies the staging block into a fresh arena slot and returns its dynamic offset.
// The arena doubles when full; the replaced buffer stays alive until the frame is submitted.
func (p *program) nextSlot() (uint32, error) {
	if p.blockSize == 0 {
		return 0, nil
	}
	a := &p.arena
	if a.used == a.slots {
		if err := p.growArena(max(a.slots*2, p.b.initialSlots)); err != nil {
			return 0, err
		}
	}
	offset := uint64(a.used) * a.slotSize
	if err := p.b.queue.WriteBuffer(a.buf, offset, p.data[:alignUp(p.blockSize, 4)]); err != nil {
		return 0, fmt.Errorf("failed to write uniforms of %s: %w", p.label, err)
	}
	a.used++
	return uint32(offset), nil
}

func (p *program) growArena(slots int) error {
	a := &p.arena
	slotSize := alignUp(p.blockSize, uniformAlign)
	buf, err := p.b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: p.label + " uniforms",
		Size:  slotSize * uint64(slots),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("failed to grow uniform arena of %s to %d slots: %w", p.label, slots, backend.ErrOutOfMemory)
	}
	bg, err := p.b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  p.label + " uniforms",
		Layout: p.groupLayouts[blockGroup],
		Entries: []wgpu.BindGroupEntry{{
			Binding: 0,
			Buffer:  buf,
			Offset:  0,
			Size:    p.blockSize,
		}},
	})
	if err != nil {
		buf.Release()
		return fmt.Errorf("failed to bind uniform arena of %s: %w", p.label, err)
	}

	if a.buf != nil {
		p.b.retireBuffer(a.buf)
		p.b.retireBindGroup(a.bindGroup)
	}
	a.buf, a.bindGroup = buf, bg
	a.slotSize = slotSize
	// slots already written this frame live in the retired buffer
	a.slots, a.used = slots, 0
	return nil
}

// blockBindGroup returns the group 0 bind group, empty when the program declares no block.
func (p *program) blockBindGroup() (*wgpu.BindGroup, error) {
	if p.blockSize > 0 {
		return p.arena.bindGroup, nil
	}
	if p.emptyBG == nil {
		bg, err := p.b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  p.label + " empty",
			Layout: p.groupLayouts[blockGroup],
		})
		if err != nil {
			return nil, fmt.Errorf("failed to bind empty group of %s: %w", p.label, err)
		}
		p.emptyBG = bg
	}
	return p.emptyBG, nil
}

// resetArena makes every slot available again. Called when a frame begins.
func (p *program) resetArena() {
	p.arena.used = 0
}

// resourceBindGroup returns the group 1 bind group, rebuilt when a texture binding changed.
// Undeclared or unset textures fall back to the backend's placeholders.
func (p *program) resourceBindGroup() (*wgpu.BindGroup, error) {
	if len(p.groupLayouts) <= resourceGroup || len(p.resources) == 0 {
		return nil, nil
	}
	if !p.resourceDirty && p.resourceBG != nil {
		return p.resourceBG, nil
	}
	entries := make([]wgpu.BindGroupEntry, 0, len(p.resources))
	for _, r := range p.resources {
		e := wgpu.BindGroupEntry{Binding: r.Binding}
		if r.Kind == wgsl.BindingKindSampler {
			e.Sampler = p.b.sampler(r.Type)
		} else if v := p.views[r.Binding]; v != nil {
			e.TextureView = v
		} else {
			e.TextureView = p.b.placeholder(r.Entry.Texture.SampleType)
		}
		entries = append(entries, e)
	}
	bg, err := p.b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   p.label + " resources",
		Layout:  p.groupLayouts[resourceGroup],
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to bind resources of %s: %w", p.label, err)
	}
	if p.resourceBG != nil {
		p.b.retireBindGroup(p.resourceBG)
	}
	p.resourceBG = bg
	p.resourceDirty = false
	return bg, nil
}

func (p *program) Uniforms() []backend.UniformInfo {
	return p.uniforms
}

func (p *program) UniformLocation(name string) (backend.UniformLocation, bool) {
	for _, u := range p.uniforms {
		if u.Name == name {
			return u.Location, true
		}
	}
	return backend.UniformLocation{}, false
}

func (p *program) SetTexture(name string, tex backend.Texture) bool {
	binding, ok := p.textures[name]
	if !ok {
		return false
	}
	var view *wgpu.TextureView
	if t, ok := tex.(*texture); ok && t != nil {
		view = t.view
	}
	if p.views[binding] != view {
		p.views[binding] = view
		p.resourceDirty = true
	}
	return true
}

func (p *program) Release() {
	for _, rp := range p.pipelines {
		rp.Release()
	}
	clear(p.pipelines)
	if p.resourceBG != nil {
		p.resourceBG.Release()
		p.resourceBG = nil
	}
	if p.emptyBG != nil {
		p.emptyBG.Release()
		p.emptyBG = nil
	}
	if p.arena.bindGroup != nil {
		p.arena.bindGroup.Release()
		p.arena.bindGroup = nil
	}
	if p.arena.buf != nil {
		p.arena.buf.Release()
		p.arena.buf = nil
	}
	if p.layout != nil {
		p.layout.Release()
		p.layout = nil
	}
	for _, l := range p.groupLayouts {
		if l != nil {
			l.Release()
		}
	}
	p.groupLayouts = nil
	if p.vs != nil {
		p.vs.Release()
		p.vs = nil
	}
	if p.fs != nil {
		p.fs.Release()
		p.fs = nil
	}
	p.b.forgetProgram(p)
}

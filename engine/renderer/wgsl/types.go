// Package wgsl reflects WGSL shader sources into the binding and vertex layout
// information the backends need to build pipelines and resolve uniform names.
// It is a regex-level reader, not a compiler: it understands struct blocks,
// resource declarations, entry points and vertex input structs.
package wgsl

import "github.com/cogentcore/webgpu/wgpu"

// BlockName is the variable name of the per-draw uniform block generated by
// the shader pre-processor. Its members are exposed as "hx_<member>" uniforms.
const BlockName = "hx"

// Stage identifies the shader stage a source was written for.
type Stage int

const (
	StageVertex Stage = iota
	StageFragment
)

// String returns the lowercase stage name.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// Visibility maps the stage to the wgpu shader stage flag.
func (s Stage) Visibility() wgpu.ShaderStage {
	if s == StageFragment {
		return wgpu.ShaderStageFragment
	}
	return wgpu.ShaderStageVertex
}

// BindingKind classifies a resource declaration.
type BindingKind int

const (
	BindingKindUnknown BindingKind = iota
	BindingKindUniform
	BindingKindStorage
	BindingKindTexture
	BindingKindSampler
)

// Binding describes one @group/@binding resource declaration.
type Binding struct {
	Group   uint32
	Binding uint32

	// Name is the WGSL variable name, e.g. "hx_worldMatrix".
	Name string

	// Type is the declared WGSL type string, e.g. "mat4x4<f32>" or "texture_2d<f32>".
	Type string

	// AddressSpace is the var<...> qualifier; empty for handle types.
	AddressSpace string

	Kind BindingKind

	// Size is the resolved byte size for buffer bindings, zero when unknown.
	Size uint64

	// Entry is the layout entry derived from the declaration.
	Entry wgpu.BindGroupLayoutEntry

	// Members lists the fields of a struct-typed buffer binding with their byte offsets.
	Members []Member
}

// Member is one field of a struct-typed buffer binding.
type Member struct {
	Name   string
	Type   string
	Offset uint64
	Size   uint64
}

// Reflection is the result of reflecting a single stage's source.
type Reflection struct {
	Stage         Stage
	EntryPoint    string
	Bindings      []Binding
	VertexLayouts []wgpu.VertexBufferLayout
}

// vertexFormat pairs a wgpu vertex format with its byte size.
type vertexFormat struct {
	format wgpu.VertexFormat
	size   uint64
}

// sampledTexture holds the view dimension and multisampled flag of a texture type.
type sampledTexture struct {
	viewDimension wgpu.TextureViewDimension
	multisampled  bool
}

// typeLayout is the WGSL host-shareable size and alignment of a type.
type typeLayout struct {
	size  uint64
	align uint64
}

type structField struct {
	name      string
	typeName  string
	location  int
	align     uint64
	isBuiltin bool
}

type structBlock struct {
	name   string
	fields []structField
}

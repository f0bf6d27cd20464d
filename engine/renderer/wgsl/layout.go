package wgsl

import (
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/helix-go/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// scalarLayouts holds size and alignment of the host-shareable scalars.
var scalarLayouts = map[string]typeLayout{
	"f32":  {4, 4},
	"i32":  {4, 4},
	"u32":  {4, 4},
	"f16":  {2, 2},
	"bool": {4, 4},
}

// shorthandSuffix maps the vecNx shorthand suffix to its scalar type.
var shorthandSuffix = map[byte]string{'f': "f32", 'i': "i32", 'u': "u32", 'h': "f16"}

// vertexFormats maps a vertex attribute type to its wgpu format.
var vertexFormats = map[string]vertexFormat{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
	"i32":       {wgpu.VertexFormatSint32, 4},
	"vec2<i32>": {wgpu.VertexFormatSint32x2, 8},
	"vec3<i32>": {wgpu.VertexFormatSint32x3, 12},
	"vec4<i32>": {wgpu.VertexFormatSint32x4, 16},
	"u32":       {wgpu.VertexFormatUint32, 4},
	"vec2<u32>": {wgpu.VertexFormatUint32x2, 8},
	"vec3<u32>": {wgpu.VertexFormatUint32x3, 12},
	"vec4<u32>": {wgpu.VertexFormatUint32x4, 16},
	"vec2<f16>": {wgpu.VertexFormatFloat16x2, 4},
	"vec4<f16>": {wgpu.VertexFormatFloat16x4, 8},
}

var sampledTextures = map[string]sampledTexture{
	"texture_1d":                    {wgpu.TextureViewDimension1D, false},
	"texture_2d":                    {wgpu.TextureViewDimension2D, false},
	"texture_2d_array":              {wgpu.TextureViewDimension2DArray, false},
	"texture_3d":                    {wgpu.TextureViewDimension3D, false},
	"texture_cube":                  {wgpu.TextureViewDimensionCube, false},
	"texture_cube_array":            {wgpu.TextureViewDimensionCubeArray, false},
	"texture_multisampled_2d":       {wgpu.TextureViewDimension2D, true},
	"texture_depth_2d":              {wgpu.TextureViewDimension2D, false},
	"texture_depth_2d_array":        {wgpu.TextureViewDimension2DArray, false},
	"texture_depth_cube":            {wgpu.TextureViewDimensionCube, false},
	"texture_depth_cube_array":      {wgpu.TextureViewDimensionCubeArray, false},
	"texture_depth_multisampled_2d": {wgpu.TextureViewDimension2D, true},
}

var sampleTypes = map[string]wgpu.TextureSampleType{
	"f32": wgpu.TextureSampleTypeFloat,
	"i32": wgpu.TextureSampleTypeSint,
	"u32": wgpu.TextureSampleTypeUint,
}

// canonicalType expands the vec/mat shorthands (vec3f, mat4x4f) into their
// templated spelling so every lookup table only carries one form.
func canonicalType(t string) string {
	t = strings.Join(strings.Fields(t), "")
	n := len(t)
	if n < 5 || strings.Contains(t, "<") {
		return t
	}
	scalar, ok := shorthandSuffix[t[n-1]]
	if !ok {
		return t
	}
	base := t[:n-1]
	if strings.HasPrefix(base, "vec") || strings.HasPrefix(base, "mat") {
		return base + "<" + scalar + ">"
	}
	return t
}

// vectorLayout returns the layout of vecN<T>.
func vectorLayout(n uint64, scalar typeLayout) typeLayout {
	size := n * scalar.size
	align := size
	if n == 3 {
		align = 4 * scalar.size
	}
	return typeLayout{size: size, align: align}
}

// resolveLayout computes the size and alignment of a WGSL type. Structs are
// looked up in known. Runtime-sized arrays resolve to their element stride.
func resolveLayout(typeName string, known map[string]typeLayout) (typeLayout, bool) {
	t := canonicalType(typeName)
	if l, ok := scalarLayouts[t]; ok {
		return l, true
	}
	if l, ok := known[t]; ok {
		return l, true
	}

	base, params := splitTemplate(t)
	switch {
	case strings.HasPrefix(base, "atomic"):
		return scalarLayouts[params], params != ""
	case len(base) == 4 && strings.HasPrefix(base, "vec"):
		scalar, ok := scalarLayouts[params]
		if !ok {
			return typeLayout{}, false
		}
		return vectorLayout(uint64(base[3]-'0'), scalar), true
	case len(base) == 6 && strings.HasPrefix(base, "mat"):
		scalar, ok := scalarLayouts[params]
		if !ok {
			return typeLayout{}, false
		}
		cols := uint64(base[3] - '0')
		column := vectorLayout(uint64(base[5]-'0'), scalar)
		stride := common.AlignUp(column.size, column.align)
		return typeLayout{size: cols * stride, align: column.align}, true
	case base == "array":
		parts := splitTopLevel(params, ',')
		elem, ok := resolveLayout(strings.TrimSpace(parts[0]), known)
		if !ok {
			return typeLayout{}, false
		}
		stride := common.AlignUp(elem.size, elem.align)
		if len(parts) < 2 {
			return typeLayout{size: stride, align: elem.align}, true
		}
		count, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			return typeLayout{}, false
		}
		return typeLayout{size: count * stride, align: elem.align}, true
	}
	return typeLayout{}, false
}

// structLayout lays the fields out in declaration order. A trailing
// runtime-sized array contributes nothing to the fixed size.
func structLayout(s structBlock, known map[string]typeLayout) (typeLayout, bool) {
	var offset uint64
	align := uint64(1)
	for i, f := range s.fields {
		if f.isBuiltin {
			continue
		}
		t := canonicalType(f.typeName)
		if i == len(s.fields)-1 && isRuntimeArray(t) {
			break
		}
		l, ok := resolveLayout(t, known)
		if !ok {
			return typeLayout{}, false
		}
		fieldAlign := max(l.align, f.align)
		offset = common.AlignUp(offset, fieldAlign) + l.size
		align = max(align, fieldAlign)
	}
	return typeLayout{size: common.AlignUp(offset, align), align: align}, true
}

// structMembers returns the offsets of every sized field of s.
func structMembers(s structBlock, known map[string]typeLayout) []Member {
	var offset uint64
	members := make([]Member, 0, len(s.fields))
	for _, f := range s.fields {
		if f.isBuiltin {
			continue
		}
		l, ok := resolveLayout(f.typeName, known)
		if !ok {
			break
		}
		offset = common.AlignUp(offset, max(l.align, f.align))
		members = append(members, Member{Name: f.name, Type: f.typeName, Offset: offset, Size: l.size})
		offset += l.size
	}
	return members
}

// structLayouts resolves every struct, iterating until nested struct
// references settle.
func structLayouts(blocks []structBlock) map[string]typeLayout {
	known := make(map[string]typeLayout, len(blocks))
	pending := append([]structBlock(nil), blocks...)
	for len(pending) > 0 {
		next := pending[:0]
		for _, s := range pending {
			if l, ok := structLayout(s, known); ok {
				known[s.name] = l
			} else {
				next = append(next, s)
			}
		}
		if len(next) == len(pending) {
			break
		}
		pending = next
	}
	return known
}

func isRuntimeArray(t string) bool {
	base, params := splitTemplate(t)
	return base == "array" && len(splitTopLevel(params, ',')) == 1
}

// layoutEntry builds the bind group layout entry for one declaration.
func layoutEntry(b Binding, visibility wgpu.ShaderStage) (wgpu.BindGroupLayoutEntry, BindingKind) {
	entry := wgpu.BindGroupLayoutEntry{Binding: b.Binding, Visibility: visibility}

	switch {
	case b.AddressSpace == "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		entry.Buffer.MinBindingSize = b.Size
		return entry, BindingKindUniform
	case strings.HasPrefix(b.AddressSpace, "storage"):
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		if strings.Contains(b.AddressSpace, "read_write") {
			entry.Buffer.Type = wgpu.BufferBindingTypeStorage
		}
		entry.Buffer.MinBindingSize = b.Size
		return entry, BindingKindStorage
	case b.Type == "sampler":
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
		return entry, BindingKindSampler
	case b.Type == "sampler_comparison":
		entry.Sampler.Type = wgpu.SamplerBindingTypeComparison
		return entry, BindingKindSampler
	case strings.HasPrefix(b.Type, "texture_"):
		base, params := splitTemplate(b.Type)
		if info, ok := sampledTextures[base]; ok {
			entry.Texture.ViewDimension = info.viewDimension
			entry.Texture.Multisampled = info.multisampled
		}
		switch {
		case strings.HasPrefix(base, "texture_depth_"):
			entry.Texture.SampleType = wgpu.TextureSampleTypeDepth
		default:
			entry.Texture.SampleType = sampleTypes[params]
		}
		return entry, BindingKindTexture
	}
	return entry, BindingKindUnknown
}

// vertexLayout turns a vertex input struct into a single interleaved buffer
// layout. Attributes are packed in declaration order.
func vertexLayout(s structBlock) (wgpu.VertexBufferLayout, bool) {
	attrs := make([]wgpu.VertexAttribute, 0, len(s.fields))
	var offset uint64
	for _, f := range s.fields {
		vf, ok := vertexFormats[canonicalType(f.typeName)]
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         vf.format,
			Offset:         offset,
			ShaderLocation: uint32(f.location),
		})
		offset += vf.size
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}, true
}

// splitTemplate splits "texture_2d<f32>" into ("texture_2d", "f32").
func splitTemplate(t string) (string, string) {
	base, rest, ok := strings.Cut(t, "<")
	if !ok {
		return t, ""
	}
	return base, strings.TrimSpace(strings.TrimSuffix(rest, ">"))
}

// splitTopLevel splits s at sep characters that are not nested inside <>.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

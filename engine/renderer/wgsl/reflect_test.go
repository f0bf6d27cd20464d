package wgsl

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vertexSource = `
struct HX_VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) normal: vec3f,
    @location(2) uv: vec2<f32>,
};

struct HX_Varyings {
    @builtin(position) clip: vec4<f32>,
    @location(0) normal: vec3<f32>,
};

struct Light {
    direction: vec3<f32>,
    intensity: f32,
    matrices: array<mat4x4<f32>, 4>,
};

/* block /* nested */ comment
@group(9) @binding(9) var<uniform> ignored: f32;
*/
@group(0) @binding(2) var<uniform> hx_wvpMatrix: mat4x4<f32>;
@group(0) @binding(3) var<uniform> hx_normalWorldMatrix: mat3x3<f32>;
@group(0) @binding(33) var<uniform> hx_directionalLight: Light;
// @group(0) @binding(8) var<uniform> commented: f32;

@vertex
fn hx_main_vs(in: HX_VertexInput) -> HX_Varyings {
    var out: HX_Varyings;
    out.clip = hx_wvpMatrix * vec4<f32>(in.position, 1.0);
    out.normal = hx_normalWorldMatrix * in.normal;
    return out;
}
`

const fragmentSource = `
struct FragmentOut {
    @location(0) color: vec4<f32>,
};

@group(0) @binding(2) var<uniform> hx_wvpMatrix: mat4x4<f32>;
@group(0) @binding(40) var<uniform> hx_materialParams: vec4f;
@group(1) @binding(0) var hx_shadowMap: texture_depth_2d;
@group(1) @binding(1) var hx_shadowSampler: sampler_comparison;
@group(1) @binding(2) var hx_albedo: texture_2d<f32>;

@fragment fn hx_main_fs() -> FragmentOut {
    var out: FragmentOut;
    out.color = hx_materialParams;
    return out;
}
`

func TestReflect_Vertex(t *testing.T) {
	r, err := Reflect(vertexSource, StageVertex)
	require.NoError(t, err)

	assert.Equal(t, "hx_main_vs", r.EntryPoint)
	require.Len(t, r.Bindings, 3)
	assert.Equal(t, "hx_wvpMatrix", r.Bindings[0].Name)
	assert.Equal(t, uint64(64), r.Bindings[0].Size)
	assert.Equal(t, uint64(48), r.Bindings[1].Size)

	light, ok := r.Lookup("hx_directionalLight")
	require.True(t, ok)
	assert.Equal(t, uint64(16+256), light.Size)
	assert.Equal(t, BindingKindUniform, light.Kind)
	assert.Equal(t, wgpu.ShaderStageVertex, light.Entry.Visibility)

	_, ok = r.Lookup("ignored")
	assert.False(t, ok)
	_, ok = r.Lookup("commented")
	assert.False(t, ok)

	require.Len(t, r.VertexLayouts, 1)
	layout := r.VertexLayouts[0]
	assert.Equal(t, uint64(32), layout.ArrayStride)
	require.Len(t, layout.Attributes, 3)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, layout.Attributes[1].Format)
	assert.Equal(t, uint64(12), layout.Attributes[1].Offset)
	assert.Equal(t, uint32(2), layout.Attributes[2].ShaderLocation)
}

func TestReflect_Fragment(t *testing.T) {
	r, err := Reflect(fragmentSource, StageFragment)
	require.NoError(t, err)

	assert.Equal(t, "hx_main_fs", r.EntryPoint)
	assert.Empty(t, r.VertexLayouts)
	assert.Len(t, r.Uniforms(), 2)

	textures := r.Textures()
	require.Len(t, textures, 2)
	assert.Equal(t, wgpu.TextureSampleTypeDepth, textures[0].Entry.Texture.SampleType)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, textures[1].Entry.Texture.SampleType)

	sampler, ok := r.Lookup("hx_shadowSampler")
	require.True(t, ok)
	assert.Equal(t, wgpu.SamplerBindingTypeComparison, sampler.Entry.Sampler.Type)
}

func TestReflect_MissingEntryPoint(t *testing.T) {
	_, err := Reflect(fragmentSource, StageVertex)
	assert.Error(t, err)
}

func TestMergeBindings(t *testing.T) {
	vs, err := Reflect(vertexSource, StageVertex)
	require.NoError(t, err)
	fs, err := Reflect(fragmentSource, StageFragment)
	require.NoError(t, err)

	merged, err := MergeBindings(vs.Bindings, fs.Bindings)
	require.NoError(t, err)
	require.Len(t, merged, 7)
	assert.Equal(t, "hx_wvpMatrix", merged[0].Name)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, merged[0].Entry.Visibility)

	groups := GroupEntries(merged, true)
	require.Len(t, groups, 2)
	assert.Len(t, groups[0], 4)
	assert.True(t, groups[0][0].Buffer.HasDynamicOffset)
	assert.Len(t, groups[1], 3)
}

func TestMergeBindings_Conflict(t *testing.T) {
	a := []Binding{{Group: 0, Binding: 1, Name: "a", Type: "f32"}}
	b := []Binding{{Group: 0, Binding: 1, Name: "b", Type: "f32"}}
	_, err := MergeBindings(a, b)
	assert.Error(t, err)
}

func TestResolveLayout(t *testing.T) {
	cases := map[string]uint64{
		"f32":                    4,
		"vec3f":                  12,
		"vec2<f32>":              8,
		"mat3x3<f32>":            48,
		"mat4x4f":                64,
		"array<vec4<f32>, 32>":   512,
		"array<mat4x4<f32>, 64>": 4096,
		"array<vec3<f32>, 2>":    32,
	}
	for typeName, size := range cases {
		l, ok := resolveLayout(typeName, nil)
		require.True(t, ok, typeName)
		assert.Equal(t, size, l.size, typeName)
	}

	_, ok := resolveLayout("Unknown", nil)
	assert.False(t, ok)
}

func TestReflect_BlockUniforms(t *testing.T) {
	src := `
struct HX_Material {
    baseColor: vec4<f32>,
    metallic: f32,
    roughness: f32,
};

struct HX_Uniforms {
    @align(16) wvpMatrix: mat4x4<f32>,
    @align(16) normalWorldMatrix: mat3x3<f32>,
    @align(16) cameraNearPlaneDistance: f32,
    @align(16) materialParams: HX_Material,
};

@group(0) @binding(0) var<uniform> hx: HX_Uniforms;

@fragment fn hx_fs() -> @location(0) vec4<f32> {
    return hx.materialParams.baseColor;
}
`
	r, err := Reflect(src, StageFragment)
	require.NoError(t, err)

	block, members := r.BlockUniforms()
	require.Len(t, members, 4)
	assert.Equal(t, uint32(0), block.Binding)
	assert.Equal(t, uint64(160), block.Size)

	assert.Equal(t, "hx_wvpMatrix", members[0].Name)
	assert.Equal(t, uint64(0), members[0].Offset)
	assert.Equal(t, "hx_normalWorldMatrix", members[1].Name)
	assert.Equal(t, uint64(64), members[1].Offset)
	assert.Equal(t, uint64(48), members[1].Size)
	assert.Equal(t, uint64(112), members[2].Offset)
	assert.Equal(t, "hx_materialParams", members[3].Name)
	assert.Equal(t, uint64(128), members[3].Offset)
	assert.Equal(t, uint64(32), members[3].Size)
}

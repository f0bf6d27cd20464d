package material

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMaterial_DeferredDefaults(t *testing.T) {
	m := NewMaterial("ground")

	assert.Equal(t, RenderPathDeferred, m.RenderPath())
	for _, pt := range GBufferPasses {
		assert.True(t, m.HasPass(pt), pt.String())
	}
	assert.False(t, m.HasPass(PassForwardLit))
	assert.True(t, m.HasPass(PassDirLightShadowMap))
	assert.Len(t, m.Passes(), 4)

	albedo := m.Pass(PassGBufferAlbedo)
	require.IsType(t, &GBufferAlbedoPass{}, albedo)
	assert.Contains(t, albedo.VertexSource(), "//@hx:include hx_geometry_vertex")
	assert.Contains(t, albedo.FragmentSource(), "//@hx:include hx_pass_gbuffer_albedo")
	assert.Equal(t, backend.DefaultRenderState, albedo.RenderState())
}

func TestNewMaterial_Forward(t *testing.T) {
	blended := NewMaterial("glass", WithBlend(backend.BlendAlpha), WithShadowCasting(false))
	assert.Equal(t, RenderPathForward, blended.RenderPath())
	assert.False(t, blended.HasPass(PassGBufferAlbedo))
	assert.False(t, blended.HasPass(PassDirLightShadowMap))

	fwd := blended.Pass(PassForwardLit)
	require.IsType(t, &ForwardLitPass{}, fwd)
	assert.False(t, fwd.RenderState().DepthWrite)
	assert.Equal(t, backend.BlendAlpha, fwd.RenderState().Blend)

	custom := NewMaterial("toon", WithLightingModel(LightingModelBlinnPhong))
	assert.Equal(t, RenderPathForward, custom.RenderPath())
	apply := custom.Pass(PassForwardLit)
	require.IsType(t, &ApplyGBufferPass{}, apply)
	assert.Equal(t, "apply_gbuffer", apply.Name())
	assert.Contains(t, apply.Defines(), "HX_LIGHTING_BLINN_PHONG")
	assert.True(t, apply.RenderState().DepthWrite)
}

func TestShadowMapPass_SkipsSurface(t *testing.T) {
	m := NewMaterial("caster", WithGeometry(Geometry{FragmentSnippet: "my_surface"}))
	shadow := m.Pass(PassDirLightShadowMap)
	require.NotNil(t, shadow)
	assert.False(t, strings.Contains(shadow.FragmentSource(), "my_surface"))
	assert.Contains(t, m.Pass(PassGBufferAlbedo).FragmentSource(), "my_surface")
}

func TestPass_OutOfRange(t *testing.T) {
	m := NewMaterial("m")
	assert.Nil(t, m.Pass(NumPassTypes))
	assert.Nil(t, m.Pass(-1))
}

func TestBuilderOptions(t *testing.T) {
	m := NewMaterial("metal",
		WithBaseColor([4]float32{1, 0, 0, 1}),
		WithMetallic(2),
		WithRoughness(-1),
		WithDefine("USE_RIM", ""),
		WithRenderOrderHint(3),
	)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, m.BaseColor())
	assert.Equal(t, float32(1), m.Metallic())
	assert.Equal(t, float32(0), m.Roughness())
	assert.Equal(t, map[string]string{"USE_RIM": ""}, m.Defines())
	assert.Equal(t, 3, m.RenderOrderHint())
}

func TestLightingModel(t *testing.T) {
	for _, lm := range []LightingModel{LightingModelDefault, LightingModelUnlit, LightingModelBlinnPhong, LightingModelGGX} {
		parsed, err := ParseLightingModel(lm.String())
		require.NoError(t, err)
		assert.Equal(t, lm, parsed)
	}
	_, err := ParseLightingModel("cel")
	assert.Error(t, err)

	assert.Equal(t, LightingModelGGX, LightingModelDefault.Resolve(LightingModelGGX))
	assert.Equal(t, LightingModelUnlit, LightingModelUnlit.Resolve(LightingModelGGX))
	assert.Empty(t, LightingModelDefault.Define())
}

func TestGPUMaterialParams_Size(t *testing.T) {
	var p GPUMaterialParams
	assert.Equal(t, 48, p.Size())
	assert.Len(t, p.Floats(), 12)
}

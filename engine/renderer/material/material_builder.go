package material

import (
	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend"
	"github.com/chewxy/math32"
)

// MaterialBuilderOption is a functional option for configuring a Material.
type MaterialBuilderOption func(*material)

// WithBaseColor sets the linear RGBA base color.
//
// Parameters:
//   - color: RGBA values
//
// Returns:
//   - MaterialBuilderOption: a function that applies the base color to a material
func WithBaseColor(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = color
	}
}

// WithEmission sets the emitted linear RGB color added after lighting.
func WithEmission(color [3]float32) MaterialBuilderOption {
	return func(m *material) {
		m.emission = color
	}
}

// WithMetallic sets the metallic factor, clamped to [0, 1].
//
// Parameters:
//   - metallic: 0 is dielectric, 1 is fully metallic
//
// Returns:
//   - MaterialBuilderOption: a function that applies the metallic factor to a material
func WithMetallic(metallic float32) MaterialBuilderOption {
	return func(m *material) {
		m.metallic = clamp01(metallic)
	}
}

// WithRoughness sets the roughness factor, clamped to [0, 1].
//
// Parameters:
//   - roughness: 0 is mirror smooth, 1 is fully rough
//
// Returns:
//   - MaterialBuilderOption: a function that applies the roughness factor to a material
func WithRoughness(roughness float32) MaterialBuilderOption {
	return func(m *material) {
		m.roughness = clamp01(roughness)
	}
}

// WithLightingModel selects a lighting model. Any model other than LightingModelDefault moves
// the material to the forward path.
func WithLightingModel(model LightingModel) MaterialBuilderOption {
	return func(m *material) {
		m.lightingModel = model
	}
}

// WithBlend sets the blend mode. Blended materials are drawn back to front in the forward pass
// without depth writes.
func WithBlend(mode backend.BlendMode) MaterialBuilderOption {
	return func(m *material) {
		m.blend = mode
	}
}

// WithCullMode sets the face culling mode for every pass.
func WithCullMode(mode backend.CullMode) MaterialBuilderOption {
	return func(m *material) {
		m.cull = mode
	}
}

// WithShadowCasting enables or disables the shadow map pass.
func WithShadowCasting(enabled bool) MaterialBuilderOption {
	return func(m *material) {
		m.castShadows = enabled
	}
}

// WithGeometry replaces the geometry snippets. Empty fields keep the defaults.
//
// Parameters:
//   - g: snippet names providing hx_geometry and hx_surface
//
// Returns:
//   - MaterialBuilderOption: a function that applies the geometry to a material
func WithGeometry(g Geometry) MaterialBuilderOption {
	return func(m *material) {
		if g.VertexSnippet != "" {
			m.geometry.VertexSnippet = g.VertexSnippet
		}
		if g.FragmentSnippet != "" {
			m.geometry.FragmentSnippet = g.FragmentSnippet
		}
	}
}

// WithDefine adds a shader define. An empty value declares a flag.
func WithDefine(name, value string) MaterialBuilderOption {
	return func(m *material) {
		m.defines = cloneDefines(m.defines)
		m.defines[name] = value
	}
}

// WithRenderOrderHint sets the secondary sort key inside render lists.
func WithRenderOrderHint(hint int) MaterialBuilderOption {
	return func(m *material) {
		m.orderHint = hint
	}
}

func clamp01(v float32) float32 {
	return math32.Max(0, math32.Min(1, v))
}

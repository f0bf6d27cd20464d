package material

import (
	"maps"

	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend"
)

// RenderPath selects how a material's opaque geometry is lit.
type RenderPath int

const (
	RenderPathDeferred RenderPath = iota
	RenderPathForward
)

// String returns the path name.
func (p RenderPath) String() string {
	if p == RenderPathDeferred {
		return "deferred"
	}
	return "forward"
}

// materialParamsUniform is the block uniform written by Apply.
const materialParamsUniform = "hx_materialParams"

// material is the implementation of the Material interface.
type material struct {
	name          string
	baseColor     [4]float32
	emission      [3]float32
	metallic      float32
	roughness     float32
	alphaCutoff   float32
	lightingModel LightingModel
	blend         backend.BlendMode
	cull          backend.CullMode
	castShadows   bool
	geometry      Geometry
	defines       map[string]string
	orderHint     int

	passes [NumPassTypes]Pass
}

// Material describes how a mesh is shaded. Its pass set is fixed at construction and derived
// from the lighting model, blend mode and shadow flag; the render collectors consult HasPass
// and Pass to emit one render item per pass.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// HasPass reports whether the material is drawn in the given pass.
	//
	// Parameters:
	//   - t: the pass type
	//
	// Returns:
	//   - bool: true if Pass(t) is non-nil
	HasPass(t PassType) bool

	// Pass returns the pass for t, or nil.
	//
	// Parameters:
	//   - t: the pass type
	//
	// Returns:
	//   - Pass: the pass or nil
	Pass(t PassType) Pass

	// Passes returns every non-nil pass in PassType order.
	Passes() []Pass

	// LightingModel returns the configured model; LightingModelDefault defers to the renderer.
	LightingModel() LightingModel

	// Blended reports whether the material draws with a blend mode other than BlendNone.
	Blended() bool

	// RenderPath is RenderPathDeferred iff the lighting model is the default one and the
	// material is not blended.
	RenderPath() RenderPath

	// RenderOrderHint is a secondary sort key within a render list, lower draws first.
	RenderOrderHint() int

	// CastShadows reports whether the material has a ShadowMapPass.
	CastShadows() bool

	// BaseColor retrieves the linear RGBA base color.
	BaseColor() [4]float32

	// Metallic retrieves the metallic factor in [0, 1].
	Metallic() float32

	// Roughness retrieves the roughness factor in [0, 1].
	Roughness() float32

	// Defines returns the material's shader defines. The returned map must not be modified.
	Defines() map[string]string

	// Apply writes the material parameters into a program that declares hx_materialParams.
	//
	// Parameters:
	//   - p: the program about to draw with this material
	Apply(p backend.Program)
}

var _ Material = &material{}

// NewMaterial creates a material. Without options it is an opaque, shadow casting, deferred
// white dielectric.
//
// Parameters:
//   - name: material identifier
//   - options: functional options
//
// Returns:
//   - Material: the material
func NewMaterial(name string, options ...MaterialBuilderOption) Material {
	m := &material{
		name:        name,
		baseColor:   [4]float32{1, 1, 1, 1},
		roughness:   0.5,
		alphaCutoff: 0,
		blend:       backend.BlendNone,
		cull:        backend.CullBack,
		castShadows: true,
		geometry:    DefaultGeometry,
		defines:     map[string]string{},
	}
	for _, option := range options {
		option(m)
	}
	m.buildPasses()
	return m
}

func (m *material) buildPasses() {
	opaque := backend.RenderState{Cull: m.cull, Blend: backend.BlendNone, DepthTest: true, DepthWrite: true}

	if m.RenderPath() == RenderPathDeferred {
		m.passes[PassGBufferAlbedo] = NewGBufferAlbedoPass(m.geometry, opaque)
		m.passes[PassGBufferNormalDepth] = NewGBufferNormalDepthPass(m.geometry, opaque)
		m.passes[PassGBufferSpecular] = NewGBufferSpecularPass(m.geometry, opaque)
	} else if m.Blended() {
		blended := backend.RenderState{Cull: m.cull, Blend: m.blend, DepthTest: true, DepthWrite: false}
		m.passes[PassForwardLit] = NewForwardLitPass(m.geometry, m.lightingModel, blended)
	} else {
		m.passes[PassForwardLit] = NewApplyGBufferPass(m.geometry, m.lightingModel, opaque)
	}

	if m.castShadows {
		m.passes[PassDirLightShadowMap] = NewShadowMapPass(m.geometry, opaque)
	}
}

func (m *material) Name() string {
	return m.name
}

func (m *material) HasPass(t PassType) bool {
	return m.Pass(t) != nil
}

func (m *material) Pass(t PassType) Pass {
	if t < 0 || t >= NumPassTypes {
		return nil
	}
	return m.passes[t]
}

func (m *material) Passes() []Pass {
	out := make([]Pass, 0, NumPassTypes)
	for _, p := range m.passes {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (m *material) LightingModel() LightingModel {
	return m.lightingModel
}

func (m *material) Blended() bool {
	return m.blend != backend.BlendNone
}

func (m *material) RenderPath() RenderPath {
	if m.lightingModel == LightingModelDefault && !m.Blended() {
		return RenderPathDeferred
	}
	return RenderPathForward
}

func (m *material) RenderOrderHint() int {
	return m.orderHint
}

func (m *material) CastShadows() bool {
	return m.castShadows
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) Metallic() float32 {
	return m.metallic
}

func (m *material) Roughness() float32 {
	return m.roughness
}

func (m *material) Defines() map[string]string {
	return m.defines
}

func (m *material) Apply(p backend.Program) {
	loc, ok := p.UniformLocation(materialParamsUniform)
	if !ok {
		return
	}
	params := GPUMaterialParams{
		BaseColor:   m.baseColor,
		Emission:    m.emission,
		Metallic:    m.metallic,
		Roughness:   m.roughness,
		AlphaCutoff: m.alphaCutoff,
	}
	p.SetFloatArray(loc, params.Floats())
}

// cloneDefines copies d so options never alias caller maps.
func cloneDefines(d map[string]string) map[string]string {
	out := make(map[string]string, len(d))
	maps.Copy(out, d)
	return out
}

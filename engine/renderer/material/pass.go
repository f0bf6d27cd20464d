package material

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend"
)

// PassType is the closed set of passes a material can take part in.
type PassType int

const (
	PassGBufferAlbedo PassType = iota
	PassGBufferNormalDepth
	PassGBufferSpecular
	PassForwardLit
	PassDirLightShadowMap

	// NumPassTypes is the number of pass types, for sizing per-pass tables.
	NumPassTypes
)

// GBufferPasses lists the passes that fill the G-buffer, in draw order.
var GBufferPasses = [...]PassType{PassGBufferAlbedo, PassGBufferNormalDepth, PassGBufferSpecular}

// String returns the pass name.
func (t PassType) String() string {
	switch t {
	case PassGBufferAlbedo:
		return "gbuffer_albedo"
	case PassGBufferNormalDepth:
		return "gbuffer_normal_depth"
	case PassGBufferSpecular:
		return "gbuffer_specular"
	case PassForwardLit:
		return "forward_lit"
	case PassDirLightShadowMap:
		return "dir_light_shadow_map"
	default:
		return fmt.Sprintf("PassType(%d)", int(t))
	}
}

// Pass is one way of drawing a material: a vertex/fragment source pair plus the state it is
// drawn with. Sources contain //@hx:include annotations resolved by the shader pre-processor.
type Pass interface {
	// Type returns the pass slot this pass fills.
	Type() PassType

	// Name returns a descriptive name, e.g. "gbuffer_albedo".
	Name() string

	// VertexSource returns the unexpanded vertex stage source.
	VertexSource() string

	// FragmentSource returns the unexpanded fragment stage source.
	FragmentSource() string

	// Defines returns pass-specific defines merged over the material's defines.
	Defines() map[string]string

	// RenderState returns the fixed-function state.
	RenderState() backend.RenderState
}

// Geometry names the snippets providing hx_geometry (vertex) and hx_surface (fragment).
type Geometry struct {
	VertexSnippet   string
	FragmentSnippet string
}

// DefaultGeometry transforms vertices with the world matrices and shades with constant
// material parameters.
var DefaultGeometry = Geometry{VertexSnippet: "hx_geometry_vertex", FragmentSnippet: "hx_geometry_fragment"}

// basePass holds what every pass variant shares.
type basePass struct {
	typ      PassType
	name     string
	vertex   string
	fragment string
	defines  map[string]string
	state    backend.RenderState
}

func (p *basePass) Type() PassType                   { return p.typ }
func (p *basePass) Name() string                     { return p.name }
func (p *basePass) VertexSource() string             { return p.vertex }
func (p *basePass) FragmentSource() string           { return p.fragment }
func (p *basePass) Defines() map[string]string       { return p.defines }
func (p *basePass) RenderState() backend.RenderState { return p.state }

// includes renders one //@hx:include line per snippet.
func includes(snippets ...string) string {
	var sb strings.Builder
	for _, s := range snippets {
		if s == "" {
			continue
		}
		sb.WriteString("//@hx:include ")
		sb.WriteString(s)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func newBasePass(typ PassType, g Geometry, fragmentSnippets []string, defines map[string]string, state backend.RenderState) basePass {
	return basePass{
		typ:      typ,
		name:     typ.String(),
		vertex:   includes(g.VertexSnippet, "hx_pass_vertex"),
		fragment: includes(append([]string{g.FragmentSnippet}, fragmentSnippets...)...),
		defines:  defines,
		state:    state,
	}
}

// GBufferAlbedoPass writes base color into the albedo target.
type GBufferAlbedoPass struct{ basePass }

// GBufferNormalDepthPass writes the view-space normal and linear depth.
type GBufferNormalDepthPass struct{ basePass }

// GBufferSpecularPass writes metallic and roughness.
type GBufferSpecularPass struct{ basePass }

// ForwardLitPass shades blended geometry against the directional light.
type ForwardLitPass struct{ basePass }

// ApplyGBufferPass shades opaque geometry with a custom lighting model, discarding fragments
// already covered by nearer deferred geometry.
type ApplyGBufferPass struct{ basePass }

// ShadowMapPass renders depth into a shadow cascade.
type ShadowMapPass struct{ basePass }

// NewGBufferAlbedoPass creates the albedo G-buffer pass.
func NewGBufferAlbedoPass(g Geometry, state backend.RenderState) *GBufferAlbedoPass {
	return &GBufferAlbedoPass{newBasePass(PassGBufferAlbedo, g, []string{"hx_pass_gbuffer_albedo"}, nil, state)}
}

// NewGBufferNormalDepthPass creates the normal/depth G-buffer pass.
func NewGBufferNormalDepthPass(g Geometry, state backend.RenderState) *GBufferNormalDepthPass {
	return &GBufferNormalDepthPass{newBasePass(PassGBufferNormalDepth, g, []string{"hx_pass_gbuffer_normal_depth"}, nil, state)}
}

// NewGBufferSpecularPass creates the specular G-buffer pass.
func NewGBufferSpecularPass(g Geometry, state backend.RenderState) *GBufferSpecularPass {
	return &GBufferSpecularPass{newBasePass(PassGBufferSpecular, g, []string{"hx_pass_gbuffer_specular"}, nil, state)}
}

// NewForwardLitPass creates a forward pass lit with the given model.
func NewForwardLitPass(g Geometry, model LightingModel, state backend.RenderState) *ForwardLitPass {
	return &ForwardLitPass{newBasePass(PassForwardLit, g, []string{"hx_pass_forward_lit"}, modelDefines(model), state)}
}

// NewApplyGBufferPass creates an opaque forward pass lit with the given model.
func NewApplyGBufferPass(g Geometry, model LightingModel, state backend.RenderState) *ApplyGBufferPass {
	p := &ApplyGBufferPass{newBasePass(PassForwardLit, g, []string{"hx_pass_apply_gbuffer"}, modelDefines(model), state)}
	p.name = "apply_gbuffer"
	return p
}

// NewShadowMapPass creates the depth-only cascade pass. The surface snippet is not needed.
func NewShadowMapPass(g Geometry, state backend.RenderState) *ShadowMapPass {
	return &ShadowMapPass{newBasePass(PassDirLightShadowMap, Geometry{VertexSnippet: g.VertexSnippet, FragmentSnippet: "hx_common"}, []string{"hx_pass_shadow_map"}, nil, state)}
}

func modelDefines(m LightingModel) map[string]string {
	if d := m.Define(); d != "" {
		return map[string]string{d: ""}
	}
	return nil
}

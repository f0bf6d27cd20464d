package webgpu

import (
	"fmt"

	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

// maxColorTargets bounds the attachments a pipeline signature can describe.
const maxColorTargets = 4

const depthFormat = wgpu.TextureFormatDepth32Float

// targetSignature is what a pipeline must agree on with the render pass it is used in.
type targetSignature struct {
	colors    [maxColorTargets]wgpu.TextureFormat
	numColors int
	depth     bool
}

// pipelineKey identifies one lazily created render pipeline of a program.
type pipelineKey struct {
	target     targetSignature
	state      backend.RenderState
	stride     uint64
	fullscreen bool
}

// textureFormat maps a backend format to its wgpu format.
func textureFormat(f backend.TextureFormat) (wgpu.TextureFormat, error) {
	switch f {
	case backend.FormatRGBA8:
		return wgpu.TextureFormatRGBA8Unorm, nil
	case backend.FormatRGBA16F:
		return wgpu.TextureFormatRGBA16Float, nil
	case backend.FormatDepth32F:
		return wgpu.TextureFormatDepth32Float, nil
	default:
		return wgpu.TextureFormatUndefined, fmt.Errorf("texture format %d: %w", f, backend.ErrUnsupportedCapability)
	}
}

func cullMode(m backend.CullMode) wgpu.CullMode {
	switch m {
	case backend.CullFront:
		return wgpu.CullModeFront
	case backend.CullNone:
		return wgpu.CullModeNone
	default:
		return wgpu.CullModeBack
	}
}

// blendState returns nil for opaque output.
func blendState(m backend.BlendMode) *wgpu.BlendState {
	switch m {
	case backend.BlendAlpha:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	case backend.BlendAdditive:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOne,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOne,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	default:
		return nil
	}
}

// depthStencilState maps the depth flags. A disabled test still writes when DepthWrite is set,
// which the lighting pass relies on.
func depthStencilState(s backend.RenderState) *wgpu.DepthStencilState {
	compare := wgpu.CompareFunctionLessEqual
	if !s.DepthTest {
		compare = wgpu.CompareFunctionAlways
	}
	return &wgpu.DepthStencilState{
		Format:            depthFormat,
		DepthWriteEnabled: s.DepthWrite,
		DepthCompare:      compare,
		StencilFront: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
		StencilBack: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
	}
}

// colorTargets builds the fragment targets of a signature.
func colorTargets(sig targetSignature, blend backend.BlendMode) []wgpu.ColorTargetState {
	targets := make([]wgpu.ColorTargetState, sig.numColors)
	for i := range targets {
		targets[i] = wgpu.ColorTargetState{
			Format:    sig.colors[i],
			WriteMask: wgpu.ColorWriteMaskAll,
			Blend:     blendState(blend),
		}
	}
	return targets
}

// vertexBuffers widens the reflected layout to the mesh stride so extra per-vertex data is
// skipped.
func vertexBuffers(layouts []wgpu.VertexBufferLayout, stride uint64) []wgpu.VertexBufferLayout {
	if len(layouts) == 0 {
		return nil
	}
	out := make([]wgpu.VertexBufferLayout, len(layouts))
	copy(out, layouts)
	if stride > out[0].ArrayStride {
		out[0].ArrayStride = stride
	}
	return out
}

package renderer

import (
	"github.com/Carmen-Shannon/helix-go/engine/renderer/material"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/shader"
)

// DefaultSweepInterval is the number of frames between program cache sweeps.
const DefaultSweepInterval = 60

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithShaderLibrary sets the snippet library programs are expanded against. When not specified
// the renderer creates a library holding only the built-in snippets.
//
// Parameters:
//   - lib: the library
//
// Returns:
//   - RendererBuilderOption: a function that applies the library option to a renderer
func WithShaderLibrary(lib shader.Library) RendererBuilderOption {
	return func(r *renderer) {
		r.lib = lib
	}
}

// WithDefaultLightingModel sets the model used by materials with LightingModelDefault and by
// the deferred lighting pass. LightingModelDefault itself is ignored.
//
// Parameters:
//   - m: the lighting model
//
// Returns:
//   - RendererBuilderOption: a function that applies the lighting model option to a renderer
func WithDefaultLightingModel(m material.LightingModel) RendererBuilderOption {
	return func(r *renderer) {
		if m != material.LightingModelDefault {
			r.lightingModel = m
		}
	}
}

// WithCascadeCount sets the number of shadow cascades used for lights without their own
// cascade configuration.
//
// Parameters:
//   - n: cascade count, clamped to [1, light.MaxCascades]
//
// Returns:
//   - RendererBuilderOption: a function that applies the cascade count option to a renderer
func WithCascadeCount(n int) RendererBuilderOption {
	return func(r *renderer) {
		r.cascadeCount = n
	}
}

// WithCascadeSplitRatios sets the far end of each cascade as a fraction of the camera far distance.
//
// Parameters:
//   - ratios: increasing ratios, one per cascade
//
// Returns:
//   - RendererBuilderOption: a function that applies the split ratio option to a renderer
func WithCascadeSplitRatios(ratios ...float32) RendererBuilderOption {
	return func(r *renderer) {
		r.splitRatios = append([]float32(nil), ratios...)
	}
}

// WithShadowMapResolution sets the per-cascade shadow tile size in texels.
func WithShadowMapResolution(texels int) RendererBuilderOption {
	return func(r *renderer) {
		if texels > 0 {
			r.shadowResolution = texels
		}
	}
}

// WithProgramRetention sets how many frames a program may go unused before a sweep evicts it.
func WithProgramRetention(frames uint64) RendererBuilderOption {
	return func(r *renderer) {
		r.retention = frames
	}
}

// WithSweepInterval sets the number of frames between program cache sweeps. Zero disables
// sweeping.
func WithSweepInterval(frames uint64) RendererBuilderOption {
	return func(r *renderer) {
		r.sweepInterval = frames
	}
}

// WithRenderItemPoolLimit caps the number of render items a collector may issue per frame.
// A frame exceeding it is aborted.
//
// Parameters:
//   - n: the limit, 0 for unbounded
//
// Returns:
//   - RendererBuilderOption: a function that applies the pool limit option to a renderer
func WithRenderItemPoolLimit(n int) RendererBuilderOption {
	return func(r *renderer) {
		r.poolLimit = n
	}
}

// WithCollectorWorkers sets the number of workers collecting top-level subtrees in parallel.
// One collects on the render thread.
func WithCollectorWorkers(n int) RendererBuilderOption {
	return func(r *renderer) {
		r.workers = max(n, 1)
	}
}

// WithClearColor sets the color the HDR target and back buffer are cleared to.
func WithClearColor(c [4]float32) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = c
	}
}

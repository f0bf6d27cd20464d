package webgpu

import (
	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultInitialUniformSlots is the number of draws a program's uniform arena holds before it
// first grows.
const DefaultInitialUniformSlots = 64

// BackendBuilderOption is a functional option applied to the backend during construction via NewBackend.
type BackendBuilderOption func(*wgpuBackend)

// WithPresentMode sets how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - BackendBuilderOption: a function that applies the present mode option to a backend
func WithPresentMode(mode backend.PresentMode) BackendBuilderOption {
	return func(b *wgpuBackend) {
		switch mode {
		case backend.PresentModeUncapped:
			b.presentMode = wgpu.PresentModeImmediate
		default:
			b.presentMode = wgpu.PresentModeFifo
		}
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter
//
// Returns:
//   - BackendBuilderOption: a function that applies the option to a backend
func WithForceSoftwareRenderer(force bool) BackendBuilderOption {
	return func(b *wgpuBackend) {
		b.forceFallbackAdapter = force
	}
}

// WithInitialUniformSlots sets the starting capacity of each program's uniform arena.
func WithInitialUniformSlots(n int) BackendBuilderOption {
	return func(b *wgpuBackend) {
		b.initialSlots = max(n, 1)
	}
}

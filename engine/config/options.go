package config

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/helix-go/engine"
	"github.com/Carmen-Shannon/helix-go/engine/renderer"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend/webgpu"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/material"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/helix-go/engine/window"
)

func (c Config) lightingModel() (material.LightingModel, error) {
	m, err := material.ParseLightingModel(c.Renderer.DefaultLightingModel)
	if err != nil {
		return material.LightingModelDefault, fmt.Errorf("default_lighting_model: %w", err)
	}
	return m, nil
}

func (c Config) presentMode() (backend.PresentMode, error) {
	switch strings.ToLower(strings.TrimSpace(c.Renderer.PresentMode)) {
	case "", "vsync":
		return backend.PresentModeVSync, nil
	case "uncapped", "immediate":
		return backend.PresentModeUncapped, nil
	default:
		return backend.PresentModeVSync, fmt.Errorf("present_mode: unknown mode %q", c.Renderer.PresentMode)
	}
}

// Library builds the shader library: the built-in snippets overlaid with Shaders.LibraryDir.
//
// Returns:
//   - shader.Library: the library
//   - error: if the directory cannot be read
func (c Config) Library() (shader.Library, error) {
	lib := shader.NewLibrary()
	if c.Shaders.LibraryDir == "" {
		return lib, nil
	}
	if err := lib.LoadDir(c.Shaders.LibraryDir); err != nil {
		return nil, fmt.Errorf("failed to load shader library: %w", err)
	}
	return lib, nil
}

// RendererOptions translates the renderer settings. lib may be nil to use the built-in
// snippets.
//
// Parameters:
//   - lib: the shader library, usually from Library
//
// Returns:
//   - []renderer.RendererBuilderOption: options for renderer.NewRenderer
func (c Config) RendererOptions(lib shader.Library) []renderer.RendererBuilderOption {
	r := c.Renderer
	opts := []renderer.RendererBuilderOption{
		renderer.WithCascadeCount(r.CascadeCount),
		renderer.WithShadowMapResolution(r.ShadowMapResolution),
		renderer.WithProgramRetention(r.ProgramRetentionFrames),
		renderer.WithSweepInterval(r.ProgramSweepInterval),
		renderer.WithRenderItemPoolLimit(r.RenderItemPoolLimit),
		renderer.WithCollectorWorkers(r.CollectorWorkers),
		renderer.WithClearColor(r.ClearColor),
	}
	if len(r.CascadeSplitRatios) > 0 {
		opts = append(opts, renderer.WithCascadeSplitRatios(r.CascadeSplitRatios...))
	}
	if m, err := c.lightingModel(); err == nil {
		opts = append(opts, renderer.WithDefaultLightingModel(m))
	}
	if lib != nil {
		opts = append(opts, renderer.WithShaderLibrary(lib))
	}
	return opts
}

// BackendOptions translates the device settings.
func (c Config) BackendOptions() []webgpu.BackendBuilderOption {
	mode, _ := c.presentMode()
	return []webgpu.BackendBuilderOption{
		webgpu.WithPresentMode(mode),
		webgpu.WithForceSoftwareRenderer(c.Renderer.ForceSoftwareRenderer),
	}
}

// WindowOptions translates the window settings.
func (c Config) WindowOptions() []window.WindowBuilderOption {
	return []window.WindowBuilderOption{
		window.WithTitle(c.Window.Title),
		window.WithWidth(c.Window.Width),
		window.WithHeight(c.Window.Height),
	}
}

// EngineOptions translates the host loop settings.
func (c Config) EngineOptions() []engine.EngineBuilderOption {
	return []engine.EngineBuilderOption{
		engine.WithProfiling(c.Engine.Profiling),
		engine.WithRenderFrameLimit(c.Engine.FrameLimit),
		engine.WithTickRate(c.Engine.TickRate),
	}
}

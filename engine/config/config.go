// Package config loads helix settings from TOML or YAML files and translates them into the
// builder options of the window, backend, renderer and engine packages.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Carmen-Shannon/helix-go/common"
	"github.com/Carmen-Shannon/helix-go/engine/light"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/shader"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for files whose extension is neither TOML nor YAML.
var ErrUnknownFormat = errors.New("unknown config format")

// Format selects the decoder used by Parse.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFromPath picks the format from a file extension.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Format: the format
//   - error: ErrUnknownFormat for any other extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Config is the complete helix configuration. Keys missing from a file keep their defaults.
type Config struct {
	Window   WindowConfig   `toml:"window" yaml:"window"`
	Renderer RendererConfig `toml:"renderer" yaml:"renderer"`
	Shaders  ShaderConfig   `toml:"shaders" yaml:"shaders"`
	Engine   EngineConfig   `toml:"engine" yaml:"engine"`
}

// WindowConfig configures the native window.
type WindowConfig struct {
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
}

// RendererConfig configures the backend and the frame graph.
type RendererConfig struct {
	CascadeCount           int        `toml:"cascade_count" yaml:"cascade_count"`
	CascadeSplitRatios     []float32  `toml:"cascade_split_ratios" yaml:"cascade_split_ratios"`
	ShadowMapResolution    int        `toml:"shadow_map_resolution" yaml:"shadow_map_resolution"`
	ProgramRetentionFrames uint64     `toml:"program_retention_frames" yaml:"program_retention_frames"`
	ProgramSweepInterval   uint64     `toml:"program_sweep_interval" yaml:"program_sweep_interval"`
	RenderItemPoolLimit    int        `toml:"render_item_pool_limit" yaml:"render_item_pool_limit"`
	CollectorWorkers       int        `toml:"collector_workers" yaml:"collector_workers"`
	DefaultLightingModel   string     `toml:"default_lighting_model" yaml:"default_lighting_model"`
	PresentMode            string     `toml:"present_mode" yaml:"present_mode"`
	ForceSoftwareRenderer  bool       `toml:"force_software_renderer" yaml:"force_software_renderer"`
	ClearColor             [4]float32 `toml:"clear_color" yaml:"clear_color"`
}

// ShaderConfig points the shader library at a directory of snippet overrides.
type ShaderConfig struct {
	// LibraryDir holds *.wgsl files replacing or extending the built-in snippets.
	LibraryDir string `toml:"library_dir" yaml:"library_dir"`

	// Watch reloads snippets from LibraryDir when they change on disk.
	Watch bool `toml:"watch" yaml:"watch"`
}

// EngineConfig configures the host loop.
type EngineConfig struct {
	Profiling  bool    `toml:"profiling" yaml:"profiling"`
	FrameLimit float64 `toml:"frame_limit" yaml:"frame_limit"`
	TickRate   float64 `toml:"tick_rate" yaml:"tick_rate"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  "helix",
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererConfig{
			CascadeCount:           light.MaxCascades,
			CascadeSplitRatios:     slices.Clone(light.DefaultCascadeSplitRatios),
			ShadowMapResolution:    light.DefaultShadowMapResolution,
			ProgramRetentionFrames: shader.DefaultRetentionFrames,
			ProgramSweepInterval:   60,
			CollectorWorkers:       1,
			DefaultLightingModel:   "ggx",
			PresentMode:            "vsync",
			ClearColor:             [4]float32{0, 0, 0, 1},
		},
		Engine: EngineConfig{
			TickRate: 60,
		},
	}
}

// Load reads the file at path over the defaults, choosing the decoder by extension.
//
// Parameters:
//   - path: a .toml, .yaml or .yml file
//
// Returns:
//   - Config: the validated configuration
//   - error: if the file cannot be read, decoded or validated
func Load(path string) (Config, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	common.Logger().Info("config loaded", "path", path, "format", format.String())
	return cfg, nil
}

// Parse decodes data over the defaults.
//
// Parameters:
//   - data: the encoded configuration
//   - format: the encoding
//
// Returns:
//   - Config: the validated configuration
//   - error: if data cannot be decoded or validated
func Parse(data []byte, format Format) (Config, error) {
	cfg := Default()
	// decoders append into slices, so a file that sets the ratios replaces the defaults
	cfg.Renderer.CascadeSplitRatios = nil

	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &cfg)
	case FormatYAML:
		err = yaml.Unmarshal(data, &cfg)
	default:
		return Config{}, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to decode %s config: %w", format, err)
	}
	if cfg.Renderer.CascadeSplitRatios == nil {
		cfg.Renderer.CascadeSplitRatios = defaultRatios(cfg.Renderer.CascadeCount)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// defaultRatios returns the default split ratios for a cascade count, or nil to let the
// cascade builder spread them.
func defaultRatios(count int) []float32 {
	if count == light.MaxCascades {
		return slices.Clone(light.DefaultCascadeSplitRatios)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}

	r := c.Renderer
	if r.CascadeCount < 1 || r.CascadeCount > light.MaxCascades {
		return fmt.Errorf("cascade_count %d out of range [1, %d]", r.CascadeCount, light.MaxCascades)
	}
	if len(r.CascadeSplitRatios) > 0 {
		if len(r.CascadeSplitRatios) != r.CascadeCount {
			return fmt.Errorf("cascade_split_ratios has %d entries, want %d", len(r.CascadeSplitRatios), r.CascadeCount)
		}
		prev := float32(0)
		for i, ratio := range r.CascadeSplitRatios {
			if ratio <= prev || ratio > 1 {
				return fmt.Errorf("cascade_split_ratios[%d] = %g must increase within (0, 1]", i, ratio)
			}
			prev = ratio
		}
	}
	if r.ShadowMapResolution <= 0 {
		return fmt.Errorf("shadow_map_resolution %d must be positive", r.ShadowMapResolution)
	}
	if r.RenderItemPoolLimit < 0 {
		return fmt.Errorf("render_item_pool_limit %d must not be negative", r.RenderItemPoolLimit)
	}
	if r.CollectorWorkers < 1 {
		return fmt.Errorf("collector_workers %d must be at least 1", r.CollectorWorkers)
	}
	if _, err := c.lightingModel(); err != nil {
		return err
	}
	if _, err := c.presentMode(); err != nil {
		return err
	}
	if c.Shaders.Watch && c.Shaders.LibraryDir == "" {
		return errors.New("shaders.watch requires shaders.library_dir")
	}
	if c.Engine.FrameLimit < 0 {
		return fmt.Errorf("frame_limit %g must not be negative", c.Engine.FrameLimit)
	}
	return nil
}

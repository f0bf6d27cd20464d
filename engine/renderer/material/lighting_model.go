package material

import (
	"fmt"
	"strings"
)

// LightingModel selects the shading function used for a material.
type LightingModel int

const (
	// LightingModelDefault defers to the renderer's default model and allows the deferred path.
	LightingModelDefault LightingModel = iota
	LightingModelUnlit
	LightingModelBlinnPhong
	LightingModelGGX
)

// String returns the config name of the model.
func (m LightingModel) String() string {
	switch m {
	case LightingModelDefault:
		return "default"
	case LightingModelUnlit:
		return "unlit"
	case LightingModelBlinnPhong:
		return "blinn_phong"
	case LightingModelGGX:
		return "ggx"
	default:
		return fmt.Sprintf("LightingModel(%d)", int(m))
	}
}

// Define returns the shader define selecting the model, empty for LightingModelDefault.
func (m LightingModel) Define() string {
	switch m {
	case LightingModelUnlit:
		return "HX_LIGHTING_UNLIT"
	case LightingModelBlinnPhong:
		return "HX_LIGHTING_BLINN_PHONG"
	case LightingModelGGX:
		return "HX_LIGHTING_GGX"
	default:
		return ""
	}
}

// Resolve returns m, or fallback when m is LightingModelDefault.
func (m LightingModel) Resolve(fallback LightingModel) LightingModel {
	if m == LightingModelDefault {
		return fallback
	}
	return m
}

// ParseLightingModel maps a config name back to a model.
//
// Parameters:
//   - s: one of "default", "unlit", "blinn_phong", "ggx" (case-insensitive)
//
// Returns:
//   - LightingModel: the model
//   - error: if s names no model
func ParseLightingModel(s string) (LightingModel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return LightingModelDefault, nil
	case "unlit":
		return LightingModelUnlit, nil
	case "blinn_phong", "blinnphong":
		return LightingModelBlinnPhong, nil
	case "ggx":
		return LightingModelGGX, nil
	default:
		return LightingModelDefault, fmt.Errorf("unknown lighting model %q", s)
	}
}

package scene

import "github.com/Carmen-Shannon/helix-go/engine/light"

// SceneBuilderOption configures a Scene at construction.
type SceneBuilderOption func(s *scene)

// WithActive marks the scene as eligible for rendering by the engine.
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithNodes attaches initial nodes to the root in order.
//
// Parameters:
//   - nodes: the nodes to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithNodes(nodes ...*Node) SceneBuilderOption {
	return func(s *scene) {
		for _, n := range nodes {
			s.root.AttachChild(n)
		}
	}
}

// WithLights registers initial lights.
func WithLights(lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.lights = append(s.lights, lights...)
	}
}

// WithAmbientColor sets the ambient light color.
func WithAmbientColor(color [3]float32) SceneBuilderOption {
	return func(s *scene) {
		s.ambientColor = color
	}
}

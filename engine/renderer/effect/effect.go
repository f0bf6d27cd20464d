// Package effect holds the post-process steps run after forward rendering. Each effect is a
// full-screen program reading the previous step's color from hx_source.
package effect

import "github.com/Carmen-Shannon/helix-go/engine/renderer/backend"

const fullscreenVertexSource = "//@hx:include hx_fullscreen_vertex\n"

// Effect is one full-screen post-process step.
type Effect interface {
	// Name identifies the effect in diagnostics.
	Name() string

	// VertexSource returns the unexpanded vertex source.
	VertexSource() string

	// FragmentSource returns the unexpanded fragment source.
	FragmentSource() string

	// Defines returns the shader defines. The returned map must not be modified.
	Defines() map[string]string

	// Apply writes the effect's own uniforms. Well-known hx_ uniforms are written by the
	// renderer through the program's setters.
	//
	// Parameters:
	//   - p: the effect's compiled program
	Apply(p backend.Program)

	// Enabled reports whether the renderer runs the effect.
	Enabled() bool

	// SetEnabled turns the effect on or off.
	SetEnabled(enabled bool)
}

// base carries the fields every effect shares.
type base struct {
	name     string
	fragment string
	defines  map[string]string
	enabled  bool
}

func (b *base) Name() string {
	return b.name
}

func (b *base) VertexSource() string {
	return fullscreenVertexSource
}

func (b *base) FragmentSource() string {
	return b.fragment
}

func (b *base) Defines() map[string]string {
	return b.defines
}

func (b *base) Enabled() bool {
	return b.enabled
}

func (b *base) SetEnabled(enabled bool) {
	b.enabled = enabled
}

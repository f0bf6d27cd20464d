package effect

import "github.com/Carmen-Shannon/helix-go/engine/renderer/backend"

// passthrough is an effect without parameters of its own.
type passthrough struct {
	base
}

func (p *passthrough) Apply(backend.Program) {}

// NewGamma creates the final step that converts the linear HDR color to display gamma. The
// renderer always runs it last, into the back buffer.
func NewGamma() Effect {
	return &passthrough{base{name: "gamma", fragment: "//@hx:include hx_post_gamma\n", defines: map[string]string{}, enabled: true}}
}

// NewCopy creates a plain copy of the source color.
func NewCopy() Effect {
	return &passthrough{base{name: "copy", fragment: "//@hx:include hx_post_copy\n", defines: map[string]string{}, enabled: true}}
}

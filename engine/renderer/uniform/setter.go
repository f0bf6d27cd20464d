// Package uniform maps the well-known hx_* shader uniforms to the camera and render item
// state they are computed from. A program gets one Setter per well-known uniform it declares;
// the renderer runs them before every draw.
package uniform

import (
	"github.com/Carmen-Shannon/helix-go/engine/camera"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/render_item"
	"github.com/go-gl/mathgl/mgl32"
)

// Setter writes one uniform of one program.
//
// A Setter owns scratch storage for the values it composes, so a single instance must not be
// executed concurrently. Distinct instances are independent.
type Setter interface {
	// Name returns the uniform name, e.g. "hx_wvpMatrix".
	Name() string

	// Execute computes the uniform for item as seen from cam and writes it into the program.
	//
	// Parameters:
	//   - cam: the camera the item is drawn with
	//   - item: the item about to be drawn
	Execute(cam camera.Camera, item *render_item.RenderItem)
}

// writeFunc computes and writes one uniform.
type writeFunc func(s *setter, cam camera.Camera, item *render_item.RenderItem)

// setter is the implementation of the Setter interface.
type setter struct {
	name   string
	writer backend.UniformWriter
	loc    backend.UniformLocation
	write  writeFunc

	// scratch
	floats []float32
}

var _ Setter = &setter{}

func (s *setter) Name() string {
	return s.name
}

func (s *setter) Execute(cam camera.Camera, item *render_item.RenderItem) {
	s.write(s, cam, item)
}

func (s *setter) mat4(m mgl32.Mat4) {
	s.writer.SetMat4(s.loc, m)
}

func (s *setter) mat3(m mgl32.Mat3) {
	s.writer.SetMat3(s.loc, m)
}

// GetSetters returns a setter for every well-known uniform p declares, in registry order.
// Uniforms outside the registry are ignored.
//
// Parameters:
//   - p: the compiled program
//
// Returns:
//   - []Setter: the program's setters
func GetSetters(p backend.Program) []Setter {
	var out []Setter
	for _, e := range registry {
		loc, ok := p.UniformLocation(e.name)
		if !ok {
			continue
		}
		out = append(out, &setter{name: e.name, writer: p, loc: loc, write: e.write})
	}
	return out
}

// Names returns every registered uniform name in registry order.
func Names() []string {
	names := make([]string, len(registry))
	for i, e := range registry {
		names[i] = e.name
	}
	return names
}

// WGSLType returns the WGSL type of a well-known or renderer-owned block uniform.
//
// Parameters:
//   - name: the uniform name
//
// Returns:
//   - string: the WGSL type
//   - bool: false if the name is not known
func WGSLType(name string) (string, bool) {
	for _, e := range registry {
		if e.name == name {
			return e.wgslType, true
		}
	}
	t, ok := rendererOwned[name]
	return t, ok
}

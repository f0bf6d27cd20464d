package backendtest

import (
	"fmt"

	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/wgsl"
	"github.com/go-gl/mathgl/mgl32"
)

// Program is a recorded program. Uniform writes are stored by name.
type Program struct {
	VertexSource   string
	FragmentSource string

	uniforms []backend.UniformInfo
	textures map[string]bool

	// Values holds the last value written per uniform name.
	Values map[string][]float32

	// Writes counts writes per uniform name.
	Writes map[string]int

	// Textures holds the texture bound per name.
	Textures map[string]backend.Texture

	Draws    int
	Released bool
}

var _ backend.Program = &Program{}

// NewProgram creates a program declaring the given block uniforms, each addressed at its own
// binding.
//
// Parameters:
//   - names: uniform names
//
// Returns:
//   - *Program: the program
func NewProgram(names ...string) *Program {
	p := newProgram()
	for i, n := range names {
		p.uniforms = append(p.uniforms, backend.UniformInfo{
			Name:     n,
			Location: backend.UniformLocation{Group: 0, Binding: uint32(i)},
		})
	}
	return p
}

// NewProgramFromSource reflects both stages and exposes the uniform block members and the
// textures they declare.
//
// Parameters:
//   - vertexSource, fragmentSource: pre-processed WGSL
//
// Returns:
//   - *Program: the program
//   - error: if either stage has no entry point or the stages disagree on a binding
func NewProgramFromSource(vertexSource, fragmentSource string) (*Program, error) {
	vs, err := wgsl.Reflect(vertexSource, wgsl.StageVertex)
	if err != nil {
		return nil, fmt.Errorf("vertex stage: %w", err)
	}
	fs, err := wgsl.Reflect(fragmentSource, wgsl.StageFragment)
	if err != nil {
		return nil, fmt.Errorf("fragment stage: %w", err)
	}
	if _, err := wgsl.MergeBindings(vs.Bindings, fs.Bindings); err != nil {
		return nil, err
	}

	p := newProgram()
	p.VertexSource = vertexSource
	p.FragmentSource = fragmentSource

	seen := map[string]bool{}
	for _, r := range []wgsl.Reflection{vs, fs} {
		block, members := r.BlockUniforms()
		for _, m := range members {
			if seen[m.Name] {
				continue
			}
			seen[m.Name] = true
			p.uniforms = append(p.uniforms, backend.UniformInfo{
				Name: m.Name,
				Type: m.Type,
				Location: backend.UniformLocation{
					Group:   block.Group,
					Binding: block.Binding,
					Offset:  m.Offset,
					Size:    m.Size,
				},
			})
		}
		for _, t := range r.Textures() {
			p.textures[t.Name] = true
		}
	}
	return p, nil
}

func newProgram() *Program {
	return &Program{
		textures: map[string]bool{},
		Values:   map[string][]float32{},
		Writes:   map[string]int{},
		Textures: map[string]backend.Texture{},
	}
}

func (p *Program) Uniforms() []backend.UniformInfo {
	return p.uniforms
}

func (p *Program) UniformLocation(name string) (backend.UniformLocation, bool) {
	for _, u := range p.uniforms {
		if u.Name == name {
			return u.Location, true
		}
	}
	return backend.UniformLocation{}, false
}

func (p *Program) SetTexture(name string, tex backend.Texture) bool {
	if !p.textures[name] {
		return false
	}
	p.Textures[name] = tex
	return true
}

func (p *Program) Release() {
	p.Released = true
}

// Mat4 returns the last mat4 written to name.
func (p *Program) Mat4(name string) mgl32.Mat4 {
	var m mgl32.Mat4
	copy(m[:], p.Values[name])
	return m
}

func (p *Program) nameAt(loc backend.UniformLocation) string {
	for _, u := range p.uniforms {
		if u.Location == loc {
			return u.Name
		}
	}
	return fmt.Sprintf("@%d:%d+%d", loc.Group, loc.Binding, loc.Offset)
}

func (p *Program) store(loc backend.UniformLocation, v []float32) {
	name := p.nameAt(loc)
	p.Values[name] = append([]float32(nil), v...)
	p.Writes[name]++
}

func (p *Program) SetFloat(loc backend.UniformLocation, v float32) {
	p.store(loc, []float32{v})
}

func (p *Program) SetVec2(loc backend.UniformLocation, v mgl32.Vec2) {
	p.store(loc, v[:])
}

func (p *Program) SetVec3(loc backend.UniformLocation, v mgl32.Vec3) {
	p.store(loc, v[:])
}

func (p *Program) SetVec4(loc backend.UniformLocation, v mgl32.Vec4) {
	p.store(loc, v[:])
}

func (p *Program) SetMat3(loc backend.UniformLocation, m mgl32.Mat3) {
	p.store(loc, m[:])
}

func (p *Program) SetMat4(loc backend.UniformLocation, m mgl32.Mat4) {
	p.store(loc, m[:])
}

func (p *Program) SetFloatArray(loc backend.UniformLocation, data []float32) {
	p.store(loc, data)
}

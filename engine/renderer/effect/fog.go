package effect

import (
	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultFogDensity       = 0.001
	DefaultFogHeightFallOff = 0.01
	DefaultFogStartDistance = 0

	fogParamsUniform = "hx_fogParams"
	fogTintUniform   = "hx_fogTint"
)

// DefaultFogTint is white.
var DefaultFogTint = [3]float32{1, 1, 1}

// fog is the implementation of the Fog interface.
type fog struct {
	base
	density       float32
	tint          [3]float32
	heightFallOff float32
	startDistance float32
}

// Fog is exponential height fog over the G-buffer depth. Density thins with height above the
// camera according to the fall-off; nothing within the start distance is fogged.
type Fog interface {
	Effect

	Density() float32
	SetDensity(d float32)
	Tint() [3]float32
	SetTint(c [3]float32)
	HeightFallOff() float32
	SetHeightFallOff(f float32)
	StartDistance() float32
	SetStartDistance(d float32)
}

var _ Fog = &fog{}

// NewFog creates an enabled fog effect with the default parameters.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - Fog: the effect
func NewFog(options ...FogBuilderOption) Fog {
	f := &fog{
		base: base{
			name:     "fog",
			fragment: "//@hx:include hx_post_fog\n",
			defines:  map[string]string{},
			enabled:  true,
		},
		density:       DefaultFogDensity,
		tint:          DefaultFogTint,
		heightFallOff: DefaultFogHeightFallOff,
		startDistance: DefaultFogStartDistance,
	}
	for _, option := range options {
		option(f)
	}
	return f
}

func (f *fog) Apply(p backend.Program) {
	if loc, ok := p.UniformLocation(fogParamsUniform); ok {
		p.SetVec4(loc, mgl32.Vec4{f.density, f.heightFallOff, f.startDistance, 0})
	}
	if loc, ok := p.UniformLocation(fogTintUniform); ok {
		p.SetVec4(loc, mgl32.Vec4{f.tint[0], f.tint[1], f.tint[2], 1})
	}
}

func (f *fog) Density() float32 {
	return f.density
}

func (f *fog) SetDensity(d float32) {
	f.density = max(d, 0)
}

func (f *fog) Tint() [3]float32 {
	return f.tint
}

func (f *fog) SetTint(c [3]float32) {
	f.tint = c
}

func (f *fog) HeightFallOff() float32 {
	return f.heightFallOff
}

func (f *fog) SetHeightFallOff(v float32) {
	f.heightFallOff = v
}

func (f *fog) StartDistance() float32 {
	return f.startDistance
}

func (f *fog) SetStartDistance(d float32) {
	f.startDistance = max(d, 0)
}

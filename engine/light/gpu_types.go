package light

import (
	"unsafe"
)

// GPUDirectionalLight is the uniform layout of the hx_directionalLight struct read by the deferred
// lighting and forward lit shaders.
//
// Layout:
//
//	vec3<f32>         direction        (offset 0)
//	f32               intensity        (offset 12)
//	vec3<f32>         color            (offset 16)
//	f32               cast_shadows     (offset 28)
//	array<mat4x4, 4>  shadow_matrices  (offset 32)
//	vec4<f32>         split_distances  (offset 288)
//	f32               bias             (offset 304)
//	f32               num_cascades     (offset 308)
//	vec2<f32>         _pad             (offset 312)
type GPUDirectionalLight struct {
	Direction      [3]float32
	Intensity      float32
	Color          [3]float32
	CastShadows    float32
	ShadowMatrices [MaxCascades][16]float32
	SplitDistances [MaxCascades]float32
	Bias           float32
	NumCascades    float32
	_pad           [2]float32
}

// Size returns the size of the struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (320)
func (g *GPUDirectionalLight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Floats returns a float32 view of the struct suitable for a raw uniform upload.
// The view shares memory with g.
func (g *GPUDirectionalLight) Floats() []float32 {
	return unsafe.Slice((*float32)(unsafe.Pointer(g)), g.Size()/4)
}

// ToGPUDirectionalLight packs a light and its own cascades.
//
// Parameters:
//   - l: a directional light
//
// Returns:
//   - GPUDirectionalLight: the packed light; shadow fields are zero when the light casts no shadows
func ToGPUDirectionalLight(l Light) GPUDirectionalLight {
	return PackDirectionalLight(l, l.Shadows())
}

// PackDirectionalLight packs a light with the cascades its shadow map was rendered with.
//
// Parameters:
//   - l: a directional light
//   - cs: the cascades, nil when no shadow map was rendered
//
// Returns:
//   - GPUDirectionalLight: the packed light
func PackDirectionalLight(l Light, cs *CascadeShadows) GPUDirectionalLight {
	d := l.Direction()
	c := l.Color()
	g := GPUDirectionalLight{
		Direction: [3]float32{d[0], d[1], d[2]},
		Intensity: l.Intensity(),
		Color:     [3]float32{c[0], c[1], c[2]},
	}
	if !l.CastsShadows() || cs == nil {
		return g
	}
	g.CastShadows = 1
	g.Bias = cs.Bias()
	g.NumCascades = float32(cs.NumCascades())
	for i, cascade := range cs.Cascades() {
		g.ShadowMatrices[i] = cascade.Camera.ViewProjectionMatrix()
		g.SplitDistances[i] = cascade.SplitDistance
	}
	return g
}

// MaxLocalLights is the number of point and spot lights shaded per frame.
const MaxLocalLights = 8

// GPULocalLight is one element of the hx_localLights array. LightType holds the LightType
// value as a float.
//
// Layout:
//
//	vec3<f32>  position    (offset 0)
//	f32        range       (offset 12)
//	vec3<f32>  color       (offset 16)
//	f32        intensity   (offset 28)
//	vec3<f32>  direction   (offset 32)
//	f32        light_type  (offset 44)
//	f32        inner_cone  (offset 48)
//	f32        outer_cone  (offset 52)
//	vec2<f32>  _pad        (offset 56)
type GPULocalLight struct {
	Position  [3]float32
	Range     float32
	Color     [3]float32
	Intensity float32
	Direction [3]float32
	LightType float32
	InnerCone float32
	OuterCone float32
	_pad      [2]float32
}

// GPULocalLights is the uniform layout of hx_localLights.
type GPULocalLights struct {
	Count  float32
	_pad   [3]float32
	Lights [MaxLocalLights]GPULocalLight
}

// Size returns the size of the struct in bytes (528).
func (g *GPULocalLights) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Floats returns a float32 view of the struct sharing memory with g.
func (g *GPULocalLights) Floats() []float32 {
	return unsafe.Slice((*float32)(unsafe.Pointer(g)), g.Size()/4)
}

// PackLocalLights packs the enabled point and spot lights in order. Lights past
// MaxLocalLights are dropped.
//
// Parameters:
//   - lights: the scene lights; directional and disabled lights are skipped
//
// Returns:
//   - GPULocalLights: the packed block
//   - int: the number of enabled local lights that did not fit
func PackLocalLights(lights []Light) (GPULocalLights, int) {
	var g GPULocalLights
	dropped := 0
	n := 0
	for _, l := range lights {
		if !l.Enabled() || l.Type() == LightTypeDirectional {
			continue
		}
		if n == MaxLocalLights {
			dropped++
			continue
		}
		p, c, d := l.Position(), l.Color(), l.Direction()
		g.Lights[n] = GPULocalLight{
			Position:  [3]float32{p[0], p[1], p[2]},
			Range:     l.Range(),
			Color:     [3]float32{c[0], c[1], c[2]},
			Intensity: l.Intensity(),
			Direction: [3]float32{d[0], d[1], d[2]},
			LightType: float32(l.Type()),
			InnerCone: l.InnerCone(),
			OuterCone: l.OuterCone(),
		}
		n++
	}
	g.Count = float32(n)
	return g, dropped
}

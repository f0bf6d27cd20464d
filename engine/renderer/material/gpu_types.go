package material

import "unsafe"

// GPUMaterialParams is the layout of the HX_MaterialParams struct in the hx_types snippet.
//
// Layout:
//
//	vec4<f32>  baseColor    (offset 0)
//	vec3<f32>  emission     (offset 16)
//	f32        metallic     (offset 28)
//	f32        roughness    (offset 32)
//	f32        alphaCutoff  (offset 36)
//	vec2<f32>  _pad         (offset 40)
type GPUMaterialParams struct {
	BaseColor   [4]float32
	Emission    [3]float32
	Metallic    float32
	Roughness   float32
	AlphaCutoff float32
	_pad        [2]float32
}

// Size returns the size of the struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPUMaterialParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Floats returns a float32 view of the struct suitable for a raw uniform upload.
// The view shares memory with g.
func (g *GPUMaterialParams) Floats() []float32 {
	return unsafe.Slice((*float32)(unsafe.Pointer(g)), g.Size()/4)
}

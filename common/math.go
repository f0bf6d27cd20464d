package common

import (
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// Mat4ApproxEqual reports whether every element of a and b differs by at most epsilon.
func Mat4ApproxEqual(a, b mgl32.Mat4, epsilon float32) bool {
	for i := range a {
		if math32.Abs(a[i]-b[i]) > epsilon {
			return false
		}
	}
	return true
}

// TransformPoint multiplies p by m with w = 1 and performs the perspective divide.
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	v := m.Mul4x1(p.Vec4(1))
	if v[3] != 0 && v[3] != 1 {
		return v.Vec3().Mul(1 / v[3])
	}
	return v.Vec3()
}

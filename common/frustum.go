package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   [3]float32
	Distance float32
}

// NewPlaneFromPointNormal builds a normalized plane passing through point whose positive
// half-space lies in the direction of normal.
//
// Parameters:
//   - point: any point on the plane
//   - normal: plane normal, need not be unit length
//
// Returns:
//   - Plane: the normalized plane
func NewPlaneFromPointNormal(point, normal mgl32.Vec3) Plane {
	n := normal.Normalize()
	return Plane{
		Normal:   [3]float32{n[0], n[1], n[2]},
		Distance: -n.Dot(point),
	}
}

// SignedDistance returns the signed distance of p from the plane. Positive values lie on the
// side the normal points to.
func (p Plane) SignedDistance(v mgl32.Vec3) float32 {
	return p.Normal[0]*v[0] + p.Normal[1]*v[1] + p.Normal[2]*v[2] + p.Distance
}

// Normalize returns the plane scaled so that its normal has unit length.
func (p Plane) Normalize() Plane {
	length := math32.Sqrt(p.Normal[0]*p.Normal[0] + p.Normal[1]*p.Normal[1] + p.Normal[2]*p.Normal[2])
	if length == 0 {
		return p
	}
	inv := 1 / length
	return Plane{
		Normal:   [3]float32{p.Normal[0] * inv, p.Normal[1] * inv, p.Normal[2] * inv},
		Distance: p.Distance * inv,
	}
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustumFromMatrix extracts frustum planes from a view-projection matrix.
// The matrix should be the combined Projection * View matrix.
// Uses the Gribb/Hartmann method for plane extraction.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the view-projection matrix (column-major, GL clip convention)
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustumFromMatrix(viewProj mgl32.Mat4) Frustum {
	var f Frustum

	r0 := viewProj.Row(0)
	r1 := viewProj.Row(1)
	r2 := viewProj.Row(2)
	r3 := viewProj.Row(3)

	f.Planes[FrustumLeft] = planeFromRow(r3.Add(r0))
	f.Planes[FrustumRight] = planeFromRow(r3.Sub(r0))
	f.Planes[FrustumBottom] = planeFromRow(r3.Add(r1))
	f.Planes[FrustumTop] = planeFromRow(r3.Sub(r1))
	f.Planes[FrustumNear] = planeFromRow(r3.Add(r2))
	f.Planes[FrustumFar] = planeFromRow(r3.Sub(r2))

	return f
}

// PlaneSlice returns the frustum planes as a slice suitable for convex-solid tests.
func (f *Frustum) PlaneSlice() []Plane {
	return f.Planes[:]
}

func planeFromRow(r mgl32.Vec4) Plane {
	return Plane{Normal: [3]float32{r[0], r[1], r[2]}, Distance: r[3]}.Normalize()
}

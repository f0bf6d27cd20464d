package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// PlaneSide classifies a volume against a plane.
type PlaneSide int

const (
	// PlaneSideBack means the volume lies entirely in the negative half-space of the plane.
	PlaneSideBack PlaneSide = iota - 1
	// PlaneSideIntersecting means the volume straddles the plane.
	PlaneSideIntersecting
	// PlaneSideFront means the volume lies entirely in the positive half-space of the plane.
	PlaneSideFront
)

func (s PlaneSide) String() string {
	switch s {
	case PlaneSideBack:
		return "back"
	case PlaneSideFront:
		return "front"
	default:
		return "intersecting"
	}
}

// AABB is an axis-aligned bounding box. The zero value is not empty; use NewEmptyAABB or
// Clear to obtain a box that any grow operation will replace.
type AABB struct {
	Min   [3]float32
	Max   [3]float32
	empty bool
}

// NewEmptyAABB returns a cleared box.
func NewEmptyAABB() AABB {
	var b AABB
	b.Clear()
	return b
}

// NewAABB returns a box spanning min and max.
//
// Parameters:
//   - min: minimum corner
//   - max: maximum corner
//
// Returns:
//   - AABB: the box
func NewAABB(min, max mgl32.Vec3) AABB {
	return AABB{Min: [3]float32(min), Max: [3]float32(max)}
}

// Clear resets the box to the empty state.
func (b *AABB) Clear() {
	inf := math32.Inf(1)
	b.Min = [3]float32{inf, inf, inf}
	b.Max = [3]float32{-inf, -inf, -inf}
	b.empty = true
}

// IsEmpty reports whether the box contains nothing.
func (b AABB) IsEmpty() bool {
	return b.empty
}

// GrowToIncludePoint expands the box to contain p.
func (b *AABB) GrowToIncludePoint(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if b.empty || p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if b.empty || p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
	b.empty = false
}

// GrowToIncludeBound expands the box to contain other. Growing by an empty box is a no-op.
func (b *AABB) GrowToIncludeBound(other AABB) {
	if other.empty {
		return
	}
	if b.empty {
		*b = other
		return
	}
	for i := 0; i < 3; i++ {
		b.Min[i] = math32.Min(b.Min[i], other.Min[i])
		b.Max[i] = math32.Max(b.Max[i], other.Max[i])
	}
}

// Center returns the midpoint of the box.
func (b AABB) Center() mgl32.Vec3 {
	return mgl32.Vec3{
		(b.Min[0] + b.Max[0]) * .5,
		(b.Min[1] + b.Max[1]) * .5,
		(b.Min[2] + b.Max[2]) * .5,
	}
}

// HalfExtents returns half the size of the box along each axis.
func (b AABB) HalfExtents() mgl32.Vec3 {
	return mgl32.Vec3{
		(b.Max[0] - b.Min[0]) * .5,
		(b.Max[1] - b.Min[1]) * .5,
		(b.Max[2] - b.Min[2]) * .5,
	}
}

// Transform returns the axis-aligned box enclosing b after transformation by m.
// Uses the Arvo method: each output extent is the sum of absolute matrix terms.
//
// Parameters:
//   - m: affine transform (column-major)
//
// Returns:
//   - AABB: the enclosing box in the target space; empty if b is empty
func (b AABB) Transform(m mgl32.Mat4) AABB {
	if b.empty {
		return NewEmptyAABB()
	}
	c := b.Center()
	h := b.HalfExtents()
	var out AABB
	for row := 0; row < 3; row++ {
		center := m.At(row, 3)
		extent := float32(0)
		for col := 0; col < 3; col++ {
			center += m.At(row, col) * c[col]
			extent += math32.Abs(m.At(row, col)) * h[col]
		}
		out.Min[row] = center - extent
		out.Max[row] = center + extent
	}
	return out
}

// ClassifyAgainstPlane reports on which side of p the box lies.
//
// Parameters:
//   - p: a normalized plane
//
// Returns:
//   - PlaneSide: PlaneSideFront when the whole box is in the positive half-space,
//     PlaneSideBack when it is entirely in the negative half-space, PlaneSideIntersecting otherwise.
//     An empty box is PlaneSideFront.
func (b AABB) ClassifyAgainstPlane(p Plane) PlaneSide {
	if b.empty {
		return PlaneSideFront
	}
	c := b.Center()
	h := b.HalfExtents()
	dist := p.SignedDistance(c)
	radius := math32.Abs(p.Normal[0])*h[0] + math32.Abs(p.Normal[1])*h[1] + math32.Abs(p.Normal[2])*h[2]
	switch {
	case dist > radius:
		return PlaneSideFront
	case dist < -radius:
		return PlaneSideBack
	default:
		return PlaneSideIntersecting
	}
}

// IntersectsConvexSolid tests the box against a convex solid described by inward-facing planes.
// Uses the positive-vertex test; boxes that are outside but near a corner of the solid may be
// reported as intersecting. An empty plane set contains everything.
//
// Parameters:
//   - planes: planes whose positive half-spaces bound the solid
//
// Returns:
//   - bool: false only if the box is entirely outside at least one plane
func (b AABB) IntersectsConvexSolid(planes []Plane) bool {
	if b.empty {
		return false
	}
	for i := range planes {
		p := &planes[i]
		var px, py, pz float32
		if p.Normal[0] >= 0 {
			px = b.Max[0]
		} else {
			px = b.Min[0]
		}
		if p.Normal[1] >= 0 {
			py = b.Max[1]
		} else {
			py = b.Min[1]
		}
		if p.Normal[2] >= 0 {
			pz = b.Max[2]
		} else {
			pz = b.Min[2]
		}
		if p.Normal[0]*px+p.Normal[1]*py+p.Normal[2]*pz+p.Distance < 0 {
			return false
		}
	}
	return true
}

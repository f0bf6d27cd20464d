package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAABBGrowFromEmpty(t *testing.T) {
	b := NewEmptyAABB()
	require.True(t, b.IsEmpty())

	b.GrowToIncludeBound(NewAABB(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{2, 2, 2}))
	assert.False(t, b.IsEmpty())
	assert.Equal(t, [3]float32{1, 1, 1}, b.Min)
	assert.Equal(t, [3]float32{2, 2, 2}, b.Max)

	b.GrowToIncludeBound(NewAABB(mgl32.Vec3{-1, 0, 3}, mgl32.Vec3{0, 5, 4}))
	assert.Equal(t, [3]float32{-1, 0, 1}, b.Min)
	assert.Equal(t, [3]float32{2, 5, 4}, b.Max)

	b.GrowToIncludeBound(NewEmptyAABB())
	assert.Equal(t, [3]float32{2, 5, 4}, b.Max)
}

func TestAABBClear(t *testing.T) {
	b := NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1})
	b.Clear()
	assert.True(t, b.IsEmpty())
	b.GrowToIncludePoint(mgl32.Vec3{3, 4, 5})
	assert.Equal(t, [3]float32{3, 4, 5}, b.Min)
	assert.Equal(t, [3]float32{3, 4, 5}, b.Max)
}

func TestAABBClassifyAgainstPlane(t *testing.T) {
	plane := NewPlaneFromPointNormal(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{0, 0, 1})

	tests := []struct {
		name string
		box  AABB
		want PlaneSide
	}{
		{"beyond", NewAABB(mgl32.Vec3{-1, -1, 11}, mgl32.Vec3{1, 1, 12}), PlaneSideFront},
		{"before", NewAABB(mgl32.Vec3{-1, -1, 2}, mgl32.Vec3{1, 1, 9}), PlaneSideBack},
		{"straddling", NewAABB(mgl32.Vec3{-1, -1, 9}, mgl32.Vec3{1, 1, 11}), PlaneSideIntersecting},
		{"empty", NewEmptyAABB(), PlaneSideFront},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.box.ClassifyAgainstPlane(plane))
		})
	}
}

func TestAABBTransform(t *testing.T) {
	b := NewAABB(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})
	moved := b.Transform(mgl32.Translate3D(10, 0, 0).Mul4(mgl32.Scale3D(2, 1, 1)))
	assert.InDeltaSlice(t, []float32{8, -1, -1}, moved.Min[:], 1e-5)
	assert.InDeltaSlice(t, []float32{12, 1, 1}, moved.Max[:], 1e-5)

	rotated := b.Transform(mgl32.HomogRotate3DY(mgl32.DegToRad(45)))
	assert.Greater(t, rotated.Max[0], float32(1.4))
}

func TestAABBIntersectsConvexSolid(t *testing.T) {
	planes := []Plane{
		NewPlaneFromPointNormal(mgl32.Vec3{-5, 0, 0}, mgl32.Vec3{1, 0, 0}),
		NewPlaneFromPointNormal(mgl32.Vec3{5, 0, 0}, mgl32.Vec3{-1, 0, 0}),
	}
	inside := NewAABB(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})
	outside := NewAABB(mgl32.Vec3{6, -1, -1}, mgl32.Vec3{7, 1, 1})
	touching := NewAABB(mgl32.Vec3{4, -1, -1}, mgl32.Vec3{6, 1, 1})

	assert.True(t, inside.IntersectsConvexSolid(planes))
	assert.False(t, outside.IntersectsConvexSolid(planes))
	assert.True(t, touching.IntersectsConvexSolid(planes))
	assert.True(t, outside.IntersectsConvexSolid(nil))

	empty := NewEmptyAABB()
	assert.False(t, empty.IntersectsConvexSolid(planes))
}

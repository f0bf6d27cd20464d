package scene

import (
	"github.com/Carmen-Shannon/helix-go/common"
	"github.com/go-gl/mathgl/mgl32"
)

// ModelInstance is the renderable payload of a Node: one or more mesh instances sharing a
// transform, a shadow-casting flag and an optional skeleton pose.
type ModelInstance struct {
	meshInstances    []*MeshInstance
	castShadows      bool
	skeleton         *Skeleton
	skeletonMatrices []mgl32.Mat4
	localBounds      common.AABB
}

// NewModelInstance creates a shadow-casting model from mesh instances.
//
// Parameters:
//   - meshInstances: the mesh/material pairs to draw
//
// Returns:
//   - *ModelInstance: the model
func NewModelInstance(meshInstances ...*MeshInstance) *ModelInstance {
	mi := &ModelInstance{
		meshInstances: meshInstances,
		castShadows:   true,
		localBounds:   common.NewEmptyAABB(),
	}
	for _, m := range meshInstances {
		mi.localBounds.GrowToIncludeBound(m.Mesh.Bounds())
	}
	return mi
}

// MeshInstances returns the mesh instances in draw order.
func (mi *ModelInstance) MeshInstances() []*MeshInstance {
	return mi.meshInstances
}

// NumMeshInstances returns the number of mesh instances.
func (mi *ModelInstance) NumMeshInstances() int {
	return len(mi.meshInstances)
}

// MeshInstance returns the i-th mesh instance.
func (mi *ModelInstance) MeshInstance(i int) *MeshInstance {
	return mi.meshInstances[i]
}

// CastShadows reports whether the model is drawn into shadow maps.
func (mi *ModelInstance) CastShadows() bool {
	return mi.castShadows
}

// SetCastShadows toggles shadow casting.
func (mi *ModelInstance) SetCastShadows(v bool) {
	mi.castShadows = v
}

// Skeleton returns the skeleton, or nil for rigid models.
func (mi *ModelInstance) Skeleton() *Skeleton {
	return mi.skeleton
}

// SkeletonMatrices returns the current joint matrices.
func (mi *ModelInstance) SkeletonMatrices() []mgl32.Mat4 {
	return mi.skeletonMatrices
}

// SetSkeleton attaches a skeleton and its pose. Poses larger than MaxSkinningJoints are truncated
// at upload time.
//
// Parameters:
//   - skeleton: the joint hierarchy, or nil to make the model rigid
//   - matrices: one skinning matrix per joint
func (mi *ModelInstance) SetSkeleton(skeleton *Skeleton, matrices []mgl32.Mat4) {
	mi.skeleton = skeleton
	mi.skeletonMatrices = matrices
}

// LocalBounds returns the union of the mesh bounds in model space.
func (mi *ModelInstance) LocalBounds() common.AABB {
	return mi.localBounds
}

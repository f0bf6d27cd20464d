// Package collector turns a scene graph into render lists. RenderCollector gathers what the
// main camera sees, split by pass; CascadeShadowCasterCollector distributes shadow casters
// over the cascades of a directional light.
package collector

import (
	"github.com/Carmen-Shannon/helix-go/common"
	"github.com/Carmen-Shannon/helix-go/engine/camera"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/material"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/render_item"
	"github.com/Carmen-Shannon/helix-go/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// emit fills a pooled item for one mesh instance in one pass.
func emit(pool *render_item.Pool, pass material.Pass, inst *scene.MeshInstance, mi *scene.ModelInstance,
	world mgl32.Mat4, cam camera.Camera, depth float32) (*render_item.RenderItem, error) {
	item, err := pool.Get()
	if err != nil {
		return nil, err
	}
	item.Pass = pass
	item.MeshInstance = inst
	item.Material = inst.Material
	item.WorldMatrix = world
	item.Camera = cam
	item.Skeleton = mi.Skeleton()
	item.SkeletonMatrices = mi.SkeletonMatrices()
	item.Depth = depth
	return item, nil
}

// viewDepth returns the distance of the bounds' center along the camera's forward axis.
func viewDepth(cam camera.Camera, bounds *common.AABB) float32 {
	if cam == nil {
		return 0
	}
	return bounds.Center().Sub(cam.WorldPosition()).Dot(cam.Forward())
}

// intersects reports whether bounds touch the solid bounded by planes. No planes means no culling.
func intersects(bounds common.AABB, planes []common.Plane) bool {
	if len(planes) == 0 {
		return true
	}
	return bounds.IntersectsConvexSolid(planes)
}

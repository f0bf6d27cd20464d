// Package render_item holds the per-frame draw records produced by the collectors and the
// pool and list types that own and order them.
package render_item

import (
	"errors"

	"github.com/Carmen-Shannon/helix-go/engine/camera"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/material"
	"github.com/Carmen-Shannon/helix-go/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrPoolExhausted is returned by Pool.Get when the configured item limit is reached. A
// collector hitting it aborts the frame.
var ErrPoolExhausted = errors.New("render item pool exhausted")

// RenderItem is one draw: a mesh instance in one pass, with the transforms it is drawn with.
// Items are owned by a Pool and valid until the pool's next Reset.
type RenderItem struct {
	Pass         material.Pass
	MeshInstance *scene.MeshInstance
	Material     material.Material
	WorldMatrix  mgl32.Mat4

	// Camera is the camera the item was collected for. For shadow items this is the cascade camera.
	Camera camera.Camera

	Skeleton         *scene.Skeleton
	SkeletonMatrices []mgl32.Mat4

	// Depth is the view-space distance along the camera forward axis, used for sorting.
	Depth float32
}

// Reset clears every field so a recycled item carries nothing from its previous use.
func (r *RenderItem) Reset() {
	*r = RenderItem{}
}

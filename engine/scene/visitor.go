package scene

import (
	"github.com/Carmen-Shannon/helix-go/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Visitor receives the renderable content of a scene during a depth-first traversal.
// Traversal order is parent before children, children in attachment order.
type Visitor interface {
	// Qualifies decides whether the traversal enters n. Returning false prunes n and its subtree.
	// Only visible nodes are offered.
	//
	// Parameters:
	//   - n: the node about to be entered; its world bounds cover its whole subtree
	//
	// Returns:
	//   - bool: true to visit n and descend into its children
	Qualifies(n *Node) bool

	// VisitModelInstance is called for every model attached to a qualifying node.
	//
	// Parameters:
	//   - mi: the model instance
	//   - worldMatrix: the owning node's world transform
	//   - worldBounds: the model's world-space bounds
	VisitModelInstance(mi *ModelInstance, worldMatrix mgl32.Mat4, worldBounds common.AABB)
}

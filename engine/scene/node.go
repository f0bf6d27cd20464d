package scene

import (
	"slices"

	"github.com/Carmen-Shannon/helix-go/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Node is an element of the scene graph. Nodes carry a local transform and optionally a model.
// World matrices and bounds are refreshed by Update; traversal reads the cached values.
// Nodes are not safe for concurrent mutation, but a scene that is not being mutated may be
// traversed from several goroutines.
type Node struct {
	name     string
	visible  bool
	parent   *Node
	children []*Node

	transform   mgl32.Mat4
	worldMatrix mgl32.Mat4

	model            *ModelInstance
	modelWorldBounds common.AABB
	worldBounds      common.AABB
}

// NewNode creates a visible node with an identity transform.
//
// Parameters:
//   - name: node name
//   - options: functional options
//
// Returns:
//   - *Node: the node
func NewNode(name string, options ...NodeBuilderOption) *Node {
	n := &Node{
		name:             name,
		visible:          true,
		transform:        mgl32.Ident4(),
		worldMatrix:      mgl32.Ident4(),
		modelWorldBounds: common.NewEmptyAABB(),
		worldBounds:      common.NewEmptyAABB(),
	}
	for _, option := range options {
		option(n)
	}
	return n
}

func (n *Node) Name() string {
	return n.name
}

func (n *Node) Visible() bool {
	return n.visible
}

func (n *Node) SetVisible(v bool) {
	n.visible = v
}

func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the attached children. The slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// AttachChild appends child, detaching it from any previous parent. Cycles are not detected.
func (n *Node) AttachChild(child *Node) {
	if child.parent != nil {
		child.parent.DetachChild(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// DetachChild removes child if it is attached to n.
func (n *Node) DetachChild(child *Node) {
	if i := slices.Index(n.children, child); i >= 0 {
		n.children = slices.Delete(n.children, i, i+1)
		child.parent = nil
	}
}

func (n *Node) Transform() mgl32.Mat4 {
	return n.transform
}

// SetTransform sets the parent-relative transform. Takes effect at the next Update.
func (n *Node) SetTransform(m mgl32.Mat4) {
	n.transform = m
}

// WorldMatrix returns the world transform computed by the last Update.
func (n *Node) WorldMatrix() mgl32.Mat4 {
	return n.worldMatrix
}

// WorldBounds returns the world-space bounds of the node and its whole subtree as of the last Update.
func (n *Node) WorldBounds() common.AABB {
	return n.worldBounds
}

// ModelWorldBounds returns the world-space bounds of the attached model alone, empty when the
// node has no model.
func (n *Node) ModelWorldBounds() common.AABB {
	return n.modelWorldBounds
}

// Model returns the attached model, or nil.
func (n *Node) Model() *ModelInstance {
	return n.model
}

// SetModel attaches a model to the node.
func (n *Node) SetModel(mi *ModelInstance) {
	n.model = mi
}

// Update recomputes world matrices and bounds for n and its subtree.
//
// Parameters:
//   - parentWorld: the parent's world transform (identity for roots)
func (n *Node) Update(parentWorld mgl32.Mat4) {
	n.worldMatrix = parentWorld.Mul4(n.transform)
	n.worldBounds.Clear()

	if n.model != nil {
		local := n.model.LocalBounds()
		n.modelWorldBounds = local.Transform(n.worldMatrix)
		n.worldBounds.GrowToIncludeBound(n.modelWorldBounds)
	}
	for _, child := range n.children {
		child.Update(n.worldMatrix)
		if child.visible {
			n.worldBounds.GrowToIncludeBound(child.worldBounds)
		}
	}
}

// AcceptVisitor walks the subtree rooted at n depth-first. Invisible nodes and nodes the visitor
// rejects are pruned together with their descendants.
//
// Parameters:
//   - v: the visitor
func (n *Node) AcceptVisitor(v Visitor) {
	if !n.visible || !v.Qualifies(n) {
		return
	}
	if n.model != nil {
		v.VisitModelInstance(n.model, n.worldMatrix, n.modelWorldBounds)
	}
	for _, child := range n.children {
		child.AcceptVisitor(v)
	}
}

// NodeBuilderOption is a functional option for configuring a Node.
type NodeBuilderOption func(n *Node)

// WithTransform sets the node's local transform.
func WithTransform(m mgl32.Mat4) NodeBuilderOption {
	return func(n *Node) {
		n.transform = m
	}
}

// WithModel attaches a model instance.
//
// Parameters:
//   - mi: the model
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithModel(mi *ModelInstance) NodeBuilderOption {
	return func(n *Node) {
		n.model = mi
	}
}

// WithChildren attaches children in order.
func WithChildren(children ...*Node) NodeBuilderOption {
	return func(n *Node) {
		for _, c := range children {
			n.AttachChild(c)
		}
	}
}

// WithVisible sets the initial visibility.
func WithVisible(v bool) NodeBuilderOption {
	return func(n *Node) {
		n.visible = v
	}
}

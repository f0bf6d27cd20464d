package collector

import (
	"fmt"

	"github.com/Carmen-Shannon/helix-go/common"
	"github.com/Carmen-Shannon/helix-go/engine/camera"
	"github.com/Carmen-Shannon/helix-go/engine/light"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/material"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/render_item"
	"github.com/Carmen-Shannon/helix-go/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// cascadeShadowCasterCollector is the implementation of the CascadeShadowCasterCollector interface.
type cascadeShadowCasterCollector struct {
	numCascades int
	cascades    []light.Cascade
	cullPlanes  []common.Plane

	pool   *render_item.Pool
	lists  []*render_item.List
	bounds common.AABB
	view   camera.Camera
	err    error
}

// CascadeShadowCasterCollector gathers the shadow casters of one directional light into one
// render list per cascade. A caster lands in every cascade whose slice it overlaps, nearest
// first, and in no cascade beyond the first one that fully contains it. The final cascade
// takes everything that reaches it without a split plane test.
//
// The collector implements scene.Visitor; it is not safe for concurrent use.
type CascadeShadowCasterCollector interface {
	scene.Visitor

	// SetCascades sets the cascade contexts used by the next Collect. The slice is read, not
	// copied, and must not change until Collect returns.
	//
	// Parameters:
	//   - cascades: one context per cascade, nearest first
	SetCascades(cascades []light.Cascade)

	// SetCullPlanes sets the planes bounding every potential caster. Subtrees entirely outside
	// are pruned. No planes disables culling.
	//
	// Parameters:
	//   - planes: inward-facing planes
	SetCullPlanes(planes []common.Plane)

	// Collect resets the pool, the bounds and every list, then traverses s.
	//
	// Parameters:
	//   - view: the camera the frame is rendered from, used for item depth
	//   - s: the scene to traverse
	//
	// Returns:
	//   - error: ErrPoolExhausted from the pool, or a cascade count mismatch
	Collect(view camera.Camera, s scene.Scene) error

	// RenderList returns the casters of cascade i, valid until the next Collect.
	//
	// Parameters:
	//   - i: cascade index
	//
	// Returns:
	//   - *render_item.List: the list
	RenderList(i int) *render_item.List

	// Bounds returns the world bounds of every caster visited by the last Collect.
	Bounds() common.AABB

	// NumCascades returns the configured cascade count.
	NumCascades() int
}

var _ CascadeShadowCasterCollector = &cascadeShadowCasterCollector{}

// NewCascadeShadowCasterCollector creates a collector for numCascades cascades.
//
// Parameters:
//   - numCascades: number of cascades, at least 1
//   - options: functional options
//
// Returns:
//   - CascadeShadowCasterCollector: the collector
func NewCascadeShadowCasterCollector(numCascades int, options ...CollectorBuilderOption) CascadeShadowCasterCollector {
	if numCascades < 1 {
		panic(fmt.Sprintf("collector: cascade count must be positive, got %d", numCascades))
	}
	cfg := newConfig(options)
	c := &cascadeShadowCasterCollector{
		numCascades: numCascades,
		pool:        render_item.NewPool(cfg.poolOptions()...),
		lists:       make([]*render_item.List, numCascades),
		bounds:      common.NewEmptyAABB(),
	}
	for i := range c.lists {
		c.lists[i] = render_item.NewList()
	}
	return c
}

func (c *cascadeShadowCasterCollector) SetCascades(cascades []light.Cascade) {
	c.cascades = cascades
}

func (c *cascadeShadowCasterCollector) SetCullPlanes(planes []common.Plane) {
	c.cullPlanes = planes
}

func (c *cascadeShadowCasterCollector) Collect(view camera.Camera, s scene.Scene) error {
	c.pool.Reset()
	c.bounds.Clear()
	for _, l := range c.lists {
		l.Reset()
	}
	c.err = nil

	if len(c.cascades) < c.numCascades {
		return fmt.Errorf("shadow collection needs %d cascades, got %d", c.numCascades, len(c.cascades))
	}

	c.view = view
	s.AcceptVisitor(c)
	c.view = nil
	return c.err
}

func (c *cascadeShadowCasterCollector) Qualifies(n *scene.Node) bool {
	return c.err == nil && intersects(n.WorldBounds(), c.cullPlanes)
}

func (c *cascadeShadowCasterCollector) VisitModelInstance(mi *scene.ModelInstance, worldMatrix mgl32.Mat4, worldBounds common.AABB) {
	// an empty box has nothing to shadow and no side of any split plane
	if c.err != nil || !mi.CastShadows() || worldBounds.IsEmpty() {
		return
	}
	c.bounds.GrowToIncludeBound(worldBounds)

	last := c.numCascades - 1
	for i := 0; i <= last; i++ {
		side := common.PlaneSideBack
		if i < last {
			side = worldBounds.ClassifyAgainstPlane(c.cascades[i].SplitPlane)
		}
		if side == common.PlaneSideFront {
			continue
		}
		if err := c.add(i, mi, worldMatrix, &worldBounds); err != nil {
			c.err = err
			return
		}
		if side == common.PlaneSideBack {
			break
		}
	}
}

// add emits one item per shadow-casting mesh instance of mi into cascade i.
func (c *cascadeShadowCasterCollector) add(i int, mi *scene.ModelInstance, world mgl32.Mat4, bounds *common.AABB) error {
	depth := viewDepth(c.view, bounds)
	for _, inst := range mi.MeshInstances() {
		mat := inst.Material
		if mat == nil || !mat.HasPass(material.PassDirLightShadowMap) {
			continue
		}
		item, err := emit(c.pool, mat.Pass(material.PassDirLightShadowMap), inst, mi, world, c.cascades[i].Camera, depth)
		if err != nil {
			return err
		}
		c.lists[i].Append(item)
	}
	return nil
}

func (c *cascadeShadowCasterCollector) RenderList(i int) *render_item.List {
	return c.lists[i]
}

func (c *cascadeShadowCasterCollector) Bounds() common.AABB {
	return c.bounds
}

func (c *cascadeShadowCasterCollector) NumCascades() int {
	return c.numCascades
}

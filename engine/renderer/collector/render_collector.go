package collector

import (
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/helix-go/common"
	"github.com/Carmen-Shannon/helix-go/engine/camera"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/material"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/render_item"
	"github.com/Carmen-Shannon/helix-go/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// shard is one traversal's output: the items it issued and the lists referencing them.
// Sequential collection uses a single shard; parallel collection uses one per root child.
type shard struct {
	pool    *render_item.Pool
	gbuffer [len(material.GBufferPasses)]*render_item.List
	forward *render_item.List
	bounds  common.AABB
	cam     camera.Camera
	planes  []common.Plane
	err     error
}

func newShard(cfg collectorConfig) *shard {
	s := &shard{
		pool:    render_item.NewPool(cfg.poolOptions()...),
		forward: render_item.NewList(),
		bounds:  common.NewEmptyAABB(),
	}
	for i := range s.gbuffer {
		s.gbuffer[i] = render_item.NewList()
	}
	return s
}

func (s *shard) reset(cam camera.Camera, planes []common.Plane) {
	s.pool.Reset()
	for _, l := range s.gbuffer {
		l.Reset()
	}
	s.forward.Reset()
	s.bounds.Clear()
	s.cam = cam
	s.planes = planes
	s.err = nil
}

func (s *shard) Qualifies(n *scene.Node) bool {
	return s.err == nil && intersects(n.WorldBounds(), s.planes)
}

func (s *shard) VisitModelInstance(mi *scene.ModelInstance, worldMatrix mgl32.Mat4, worldBounds common.AABB) {
	if s.err != nil || !intersects(worldBounds, s.planes) {
		return
	}
	s.bounds.GrowToIncludeBound(worldBounds)
	depth := viewDepth(s.cam, &worldBounds)

	for _, inst := range mi.MeshInstances() {
		mat := inst.Material
		if mat == nil {
			continue
		}
		if mat.RenderPath() == material.RenderPathDeferred {
			for i, pt := range material.GBufferPasses {
				if !mat.HasPass(pt) {
					continue
				}
				item, err := emit(s.pool, mat.Pass(pt), inst, mi, worldMatrix, s.cam, depth)
				if err != nil {
					s.err = err
					return
				}
				s.gbuffer[i].Append(item)
			}
			continue
		}
		if !mat.HasPass(material.PassForwardLit) {
			continue
		}
		item, err := emit(s.pool, mat.Pass(material.PassForwardLit), inst, mi, worldMatrix, s.cam, depth)
		if err != nil {
			s.err = err
			return
		}
		s.forward.Append(item)
	}
}

// renderCollector is the implementation of the RenderCollector interface.
type renderCollector struct {
	cfg    collectorConfig
	main   *shard
	shards []*shard

	mu   *sync.Mutex
	pool worker.DynamicWorkerPool
}

// RenderCollector gathers what a camera sees: one render list per G-buffer pass for deferred
// materials and one forward list for everything else. Items are in traversal order;
// sorting is left to the renderer.
type RenderCollector interface {
	// Collect resets every list and the pool, then traverses s, culling against the camera
	// frustum.
	//
	// Parameters:
	//   - cam: the camera to collect for
	//   - s: the scene to traverse
	//
	// Returns:
	//   - error: ErrPoolExhausted when the item limit is reached
	Collect(cam camera.Camera, s scene.Scene) error

	// RenderList returns the list of a G-buffer pass, or nil for any other pass type.
	//
	// Parameters:
	//   - pass: a G-buffer pass type
	//
	// Returns:
	//   - *render_item.List: the list, valid until the next Collect
	RenderList(pass material.PassType) *render_item.List

	// ForwardList returns the items drawn after deferred lighting.
	ForwardList() *render_item.List

	// Bounds returns the world bounds of every visible model.
	Bounds() common.AABB

	// NumItems returns the number of items issued by the last Collect.
	NumItems() int

	// Release stops the collector's workers.
	Release()
}

var _ RenderCollector = &renderCollector{}

// NewRenderCollector creates a main-camera collector.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - RenderCollector: the collector
func NewRenderCollector(options ...CollectorBuilderOption) RenderCollector {
	cfg := newConfig(options)
	c := &renderCollector{
		cfg:  cfg,
		main: newShard(cfg),
		mu:   &sync.Mutex{},
	}
	if cfg.workers > 1 {
		c.pool = worker.NewDynamicWorkerPool(cfg.workers, 256, time.Second)
	}
	return c
}

func (c *renderCollector) Collect(cam camera.Camera, s scene.Scene) error {
	frustum := cam.Frustum()
	planes := frustum.PlaneSlice()
	c.main.reset(cam, planes)

	root := s.Root()
	if c.pool == nil || len(root.Children()) < 2 {
		s.AcceptVisitor(c.main)
		return c.main.err
	}
	return c.collectParallel(root, cam, planes)
}

// collectParallel visits the root on the calling goroutine and each of its children on the
// worker pool, then appends the children's lists to the main lists in child order. The result
// is identical to a sequential traversal.
func (c *renderCollector) collectParallel(root *scene.Node, cam camera.Camera, planes []common.Plane) error {
	if !root.Visible() || !c.main.Qualifies(root) {
		return nil
	}
	if mi := root.Model(); mi != nil {
		c.main.VisitModelInstance(mi, root.WorldMatrix(), root.ModelWorldBounds())
		if c.main.err != nil {
			return c.main.err
		}
	}

	children := root.Children()
	for len(c.shards) < len(children) {
		c.shards = append(c.shards, newShard(c.cfg))
	}

	var wg sync.WaitGroup
	for i, child := range children {
		sh := c.shards[i]
		sh.reset(cam, planes)
		wg.Add(1)
		c.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				child.AcceptVisitor(sh)
				return nil, sh.err
			},
		})
	}
	wg.Wait()

	total := c.main.pool.Len()
	for _, sh := range c.shards[:len(children)] {
		if sh.err != nil {
			return sh.err
		}
		for i, l := range sh.gbuffer {
			c.main.gbuffer[i].AppendList(l)
		}
		c.main.forward.AppendList(sh.forward)
		c.main.bounds.GrowToIncludeBound(sh.bounds)
		total += sh.pool.Len()
	}
	if c.cfg.maxItems > 0 && total > c.cfg.maxItems {
		return fmt.Errorf("%w: %d items exceed limit %d", render_item.ErrPoolExhausted, total, c.cfg.maxItems)
	}
	return nil
}

func (c *renderCollector) RenderList(pass material.PassType) *render_item.List {
	for i, pt := range material.GBufferPasses {
		if pt == pass {
			return c.main.gbuffer[i]
		}
	}
	return nil
}

func (c *renderCollector) ForwardList() *render_item.List {
	return c.main.forward
}

func (c *renderCollector) Bounds() common.AABB {
	return c.main.bounds
}

func (c *renderCollector) NumItems() int {
	n := c.main.forward.Len()
	for _, l := range c.main.gbuffer {
		n += l.Len()
	}
	return n
}

func (c *renderCollector) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pool != nil {
		c.pool.Stop()
		c.pool = nil
	}
}

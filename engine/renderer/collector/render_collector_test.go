package collector

import (
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/material"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/render_item"
	"github.com/Carmen-Shannon/helix-go/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCollectorSplitsByPath(t *testing.T) {
	deferred, _ := boxNode("deferred", mgl32.Vec3{-1, -1, -11}, mgl32.Vec3{1, 1, -9}, material.NewMaterial("d"))
	blended, _ := boxNode("blended", mgl32.Vec3{-1, -1, -21}, mgl32.Vec3{1, 1, -19},
		material.NewMaterial("b", material.WithBlend(backend.BlendAlpha)))
	custom, _ := boxNode("custom", mgl32.Vec3{-1, -1, -31}, mgl32.Vec3{1, 1, -29},
		material.NewMaterial("c", material.WithLightingModel(material.LightingModelBlinnPhong)))
	s := newScene(deferred, blended, custom)

	c := NewRenderCollector()
	defer c.Release()
	require.NoError(t, c.Collect(viewCamera(), s))

	for _, pt := range material.GBufferPasses {
		l := c.RenderList(pt)
		require.NotNil(t, l)
		assert.Equal(t, []string{"deferred"}, meshNames(l), pt.String())
		assert.Equal(t, pt, l.At(0).Pass.Type())
	}
	assert.Equal(t, []string{"blended", "custom"}, meshNames(c.ForwardList()))
	for _, item := range c.ForwardList().Items() {
		assert.Equal(t, material.PassForwardLit, item.Pass.Type())
	}
	assert.Nil(t, c.RenderList(material.PassForwardLit))
	assert.Equal(t, 5, c.NumItems())
}

func TestRenderCollectorFrustumCulls(t *testing.T) {
	mat := material.NewMaterial("m")
	visible, _ := boxNode("visible", mgl32.Vec3{-1, -1, -11}, mgl32.Vec3{1, 1, -9}, mat)
	behind, _ := boxNode("behind", mgl32.Vec3{-1, -1, 9}, mgl32.Vec3{1, 1, 11}, mat)
	tooFar, _ := boxNode("too_far", mgl32.Vec3{-1, -1, -211}, mgl32.Vec3{1, 1, -209}, mat)
	s := newScene(visible, behind, tooFar)

	c := NewRenderCollector()
	defer c.Release()
	require.NoError(t, c.Collect(viewCamera(), s))

	assert.Equal(t, []string{"visible"}, meshNames(c.RenderList(material.PassGBufferAlbedo)))
	bounds := c.Bounds()
	assert.InDelta(t, -11, bounds.Min[2], 1e-5)
	assert.InDelta(t, -9, bounds.Max[2], 1e-5)
}

func TestRenderCollectorItemDepth(t *testing.T) {
	node, _ := boxNode("box", mgl32.Vec3{-1, -1, -11}, mgl32.Vec3{1, 1, -9}, material.NewMaterial("m"))
	cam := viewCamera()

	c := NewRenderCollector()
	defer c.Release()
	require.NoError(t, c.Collect(cam, newScene(node)))

	item := c.RenderList(material.PassGBufferNormalDepth).At(0)
	assert.InDelta(t, 10, item.Depth, 1e-5)
	assert.Equal(t, cam, item.Camera)
}

func TestRenderCollectorPoolLimit(t *testing.T) {
	node, _ := boxNode("box", mgl32.Vec3{-1, -1, -11}, mgl32.Vec3{1, 1, -9}, material.NewMaterial("m"))

	c := NewRenderCollector(WithPoolLimit(2))
	defer c.Release()
	require.ErrorIs(t, c.Collect(viewCamera(), newScene(node)), render_item.ErrPoolExhausted)
}

func parallelScene() scene.Scene {
	materials := []material.Material{
		material.NewMaterial("deferred"),
		material.NewMaterial("blended", material.WithBlend(backend.BlendAlpha)),
	}
	var roots []*scene.Node
	for i := 0; i < 8; i++ {
		z := -float32(5 + i*3)
		var children []*scene.Node
		for j := 0; j < 3; j++ {
			name := fmt.Sprintf("n%d_%d", i, j)
			child, _ := boxNode(name, mgl32.Vec3{float32(j) - 1, -1, z - 1}, mgl32.Vec3{float32(j), 1, z},
				materials[(i+j)%len(materials)])
			children = append(children, child)
		}
		root, _ := boxNode(fmt.Sprintf("n%d", i), mgl32.Vec3{-1, -1, z - 1}, mgl32.Vec3{1, 1, z},
			materials[i%len(materials)], scene.WithChildren(children...))
		roots = append(roots, root)
	}
	return scene.NewScene("parallel", scene.WithNodes(roots...))
}

func TestRenderCollectorParallelMatchesSequential(t *testing.T) {
	s := parallelScene()
	s.Update()
	cam := viewCamera()

	sequential := NewRenderCollector()
	defer sequential.Release()
	parallel := NewRenderCollector(WithWorkers(4))
	defer parallel.Release()

	require.NoError(t, sequential.Collect(cam, s))
	for frame := 0; frame < 3; frame++ {
		require.NoError(t, parallel.Collect(cam, s))

		for _, pt := range material.GBufferPasses {
			assert.Equal(t, meshNames(sequential.RenderList(pt)), meshNames(parallel.RenderList(pt)))
		}
		assert.Equal(t, meshNames(sequential.ForwardList()), meshNames(parallel.ForwardList()))
		assert.Equal(t, sequential.Bounds(), parallel.Bounds())
		assert.Equal(t, sequential.NumItems(), parallel.NumItems())
	}
	assert.NotZero(t, parallel.NumItems())
}

func TestRenderCollectorParallelPoolLimit(t *testing.T) {
	s := parallelScene()
	s.Update()

	c := NewRenderCollector(WithWorkers(4), WithPoolLimit(10))
	defer c.Release()
	require.ErrorIs(t, c.Collect(viewCamera(), s), render_item.ErrPoolExhausted)
}

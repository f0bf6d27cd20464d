package scene

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/helix-go/common"
	"github.com/Carmen-Shannon/helix-go/engine/light"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend/backendtest"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitCube(name string) *Mesh {
	return NewMesh(name, []float32{-1, -1, -1, 1, 1, 1}, 3, []uint32{0, 1, 0})
}

func modelNode(name string, transform mgl32.Mat4) *Node {
	inst := &MeshInstance{Mesh: unitCube(name), Material: material.NewMaterial(name)}
	return NewNode(name, WithTransform(transform), WithModel(NewModelInstance(inst)))
}

// recorder collects the names of visited models and rejects the listed nodes.
type recorder struct {
	reject  map[string]bool
	offered []string
	visited []string
}

func (r *recorder) Qualifies(n *Node) bool {
	r.offered = append(r.offered, n.Name())
	return !r.reject[n.Name()]
}

func (r *recorder) VisitModelInstance(mi *ModelInstance, _ mgl32.Mat4, _ common.AABB) {
	r.visited = append(r.visited, mi.MeshInstance(0).Mesh.Name())
}

func TestUpdateComputesWorldBounds(t *testing.T) {
	child := modelNode("child", mgl32.Translate3D(0, 5, 0))
	hidden := modelNode("hidden", mgl32.Translate3D(100, 0, 0))
	hidden.SetVisible(false)
	parent := NewNode("parent", WithTransform(mgl32.Translate3D(10, 0, 0)), WithChildren(child, hidden))

	s := NewScene("test", WithNodes(parent))
	s.Update()

	assert.Equal(t, mgl32.Translate3D(10, 5, 0), child.WorldMatrix())

	cb := child.WorldBounds()
	assert.Equal(t, [3]float32{9, 4, -1}, cb.Min)
	assert.Equal(t, [3]float32{11, 6, 1}, cb.Max)

	pb := parent.WorldBounds()
	assert.Equal(t, cb, pb, "invisible children do not grow the parent bounds")
	assert.True(t, parent.ModelWorldBounds().IsEmpty())
	assert.Equal(t, pb, s.Bounds())
}

func TestAcceptVisitorIsPreOrderAndPrunes(t *testing.T) {
	a := modelNode("a", mgl32.Ident4())
	a1 := modelNode("a1", mgl32.Ident4())
	a2 := modelNode("a2", mgl32.Ident4())
	a.AttachChild(a1)
	a.AttachChild(a2)
	a1.AttachChild(modelNode("a1x", mgl32.Ident4()))

	b := modelNode("b", mgl32.Ident4())
	b.AttachChild(modelNode("b1", mgl32.Ident4()))
	c := modelNode("c", mgl32.Ident4())
	c.SetVisible(false)

	s := NewScene("test", WithNodes(a, b, c))
	s.Update()

	r := &recorder{reject: map[string]bool{"a1": true}}
	s.AcceptVisitor(r)

	assert.Equal(t, []string{"a", "a2", "b", "b1"}, r.visited)
	assert.NotContains(t, r.offered, "a1x")
	assert.NotContains(t, r.offered, "c", "invisible nodes are never offered")
}

func TestAttachChildReparents(t *testing.T) {
	a, b := NewNode("a"), NewNode("b")
	n := NewNode("n")
	a.AttachChild(n)
	b.AttachChild(n)

	assert.Empty(t, a.Children())
	assert.Equal(t, []*Node{n}, b.Children())
	assert.Same(t, b, n.Parent())

	s := NewScene("test", WithNodes(b))
	s.Remove(n)
	assert.Nil(t, n.Parent())
	assert.Empty(t, b.Children())
}

func TestSceneLights(t *testing.T) {
	sun := light.NewLight(light.LightTypeDirectional)
	lamp := light.NewLight(light.LightTypePoint)
	s := NewScene("test", WithLights(sun), WithAmbientColor([3]float32{0.1, 0.2, 0.3}))
	s.AddLight(lamp)

	assert.Equal(t, []light.Light{sun, lamp}, s.Lights())
	s.RemoveLight(sun)
	assert.Equal(t, []light.Light{lamp}, s.Lights())
	assert.Equal(t, [3]float32{0.1, 0.2, 0.3}, s.AmbientColor())
}

func TestNewMeshRejectsShortStride(t *testing.T) {
	assert.Panics(t, func() { NewMesh("flat", []float32{0, 0}, 2, nil) })
}

func TestGPUMeshUploadsOnce(t *testing.T) {
	b := backendtest.New()
	m := unitCube("cube")

	first, err := m.GPUMesh(b)
	require.NoError(t, err)
	second, err := m.GPUMesh(b)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, b.MeshesCreated)

	m.ReleaseGPU()
	assert.True(t, first.(*backendtest.Mesh).Released)
}

func TestGPUMeshOutOfMemory(t *testing.T) {
	b := backendtest.New()
	b.OutOfMemory = true

	_, err := unitCube("cube").GPUMesh(b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, backend.ErrOutOfMemory))
}

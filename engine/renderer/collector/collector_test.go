package collector

import (
	"github.com/Carmen-Shannon/helix-go/engine/renderer/material"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/render_item"
	"github.com/Carmen-Shannon/helix-go/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// boxNode builds a node whose model spans [min, max] in world space.
func boxNode(name string, min, max mgl32.Vec3, mat material.Material, options ...scene.NodeBuilderOption) (*scene.Node, *scene.MeshInstance) {
	mesh := scene.NewMesh(name, []float32{min[0], min[1], min[2], max[0], max[1], max[2]}, 3, []uint32{0, 1, 0})
	inst := &scene.MeshInstance{Mesh: mesh, Material: mat}
	options = append([]scene.NodeBuilderOption{scene.WithModel(scene.NewModelInstance(inst))}, options...)
	return scene.NewNode(name, options...), inst
}

func newScene(nodes ...*scene.Node) scene.Scene {
	s := scene.NewScene("test", scene.WithNodes(nodes...))
	s.Update()
	return s
}

func meshNames(l *render_item.List) []string {
	names := make([]string, 0, l.Len())
	for _, item := range l.Items() {
		names = append(names, item.MeshInstance.Mesh.Name())
	}
	return names
}

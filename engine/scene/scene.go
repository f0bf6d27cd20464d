package scene

import (
	"slices"
	"sync"

	"github.com/Carmen-Shannon/helix-go/common"
	"github.com/Carmen-Shannon/helix-go/engine/light"
	"github.com/go-gl/mathgl/mgl32"
)

// Scene owns a node graph and the lights that illuminate it.
// Scenes can be hot-swapped via the Active flag to switch between different views or levels.
// Graph mutation and rendering must not overlap; the lock only guards the scene-level fields.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Root returns the root node. Its transform is applied to everything in the scene.
	//
	// Returns:
	//   - *Node: the root node
	Root() *Node

	// Add attaches nodes to the root.
	//
	// Parameters:
	//   - nodes: the nodes to add
	Add(nodes ...*Node)

	// Remove detaches a node from its parent, wherever it is in the graph.
	//
	// Parameters:
	//   - n: the node to remove
	Remove(n *Node)

	// AddLight adds a light source to the scene.
	//
	// Parameters:
	//   - l: the Light to add
	AddLight(l light.Light)

	// RemoveLight removes a light source from the scene by reference.
	//
	// Parameters:
	//   - l: the Light to remove
	RemoveLight(l light.Light)

	// Lights returns all lights currently registered in the scene.
	//
	// Returns:
	//   - []light.Light: a copy of the scene's light list
	Lights() []light.Light

	// AmbientColor returns the scene's ambient light color.
	//
	// Returns:
	//   - [3]float32: the ambient RGB color
	AmbientColor() [3]float32

	// SetAmbientColor sets the scene's ambient light color.
	//
	// Parameters:
	//   - color: the ambient RGB color
	SetAmbientColor(color [3]float32)

	// Update refreshes world matrices and bounds of the whole graph. The renderer calls it once per
	// frame before collection.
	Update()

	// Bounds returns the world bounds of every visible node as of the last Update.
	//
	// Returns:
	//   - common.AABB: the scene bounds
	Bounds() common.AABB

	// AcceptVisitor traverses the graph depth-first starting at the root.
	//
	// Parameters:
	//   - v: the visitor
	AcceptVisitor(v Visitor)
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	root *Node

	lights       []light.Light
	ambientColor [3]float32
}

var _ Scene = &scene{}

// NewScene creates an empty scene.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:           &sync.RWMutex{},
		name:         name,
		root:         NewNode(name + "_root"),
		ambientColor: [3]float32{0.05, 0.05, 0.05},
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Root() *Node {
	return s.root
}

func (s *scene) Add(nodes ...*Node) {
	for _, n := range nodes {
		s.root.AttachChild(n)
	}
}

func (s *scene) Remove(n *Node) {
	if n.parent != nil {
		n.parent.DetachChild(n)
	}
}

func (s *scene) AddLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, l)
}

func (s *scene) RemoveLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.Index(s.lights, l); i >= 0 {
		s.lights = slices.Delete(s.lights, i, i+1)
	}
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.lights)
}

func (s *scene) AmbientColor() [3]float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ambientColor
}

func (s *scene) SetAmbientColor(color [3]float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ambientColor = color
}

func (s *scene) Update() {
	s.root.Update(mgl32.Ident4())
}

func (s *scene) Bounds() common.AABB {
	return s.root.WorldBounds()
}

func (s *scene) AcceptVisitor(v Visitor) {
	s.root.AcceptVisitor(v)
}

package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/go-gl/mathgl/mgl32"
)

// scene is the implementation of the Scene interface.
type scene struct {
	mu     *sync.RWMutex
	root   Node
	lights []light.Light
	active bool
}

// Scene is the root of the scene graph rendered by a viewport. It owns every node
// added to it for the node's lifetime and the lights that illuminate them.
//
// A scene is safe for concurrent use: nodes may be added from a loader callback
// while the render loop collects drawables.
type Scene interface {
	// Root returns the scene's root node. Its transform is the identity unless changed.
	//
	// Returns:
	//   - Node: the root node
	Root() Node

	// Add attaches a node as a direct child of the root.
	//
	// Parameters:
	//   - n: the node to add
	Add(n Node)

	// Remove detaches a node from the root.
	//
	// Parameters:
	//   - n: the node to remove
	//
	// Returns:
	//   - bool: true if the node was a direct child of the root
	Remove(n Node) bool

	// Contains reports whether a node is reachable from the root.
	//
	// Parameters:
	//   - n: the node to search for
	//
	// Returns:
	//   - bool: true if reachable
	Contains(n Node) bool

	// Traverse visits every node reachable from the root, depth first.
	//
	// Parameters:
	//   - fn: called for every node
	Traverse(fn func(Node))

	// Drawables collects every enabled mesh node with its world transform.
	// Disabled nodes hide their whole subtree.
	//
	// Returns:
	//   - []Drawable: the meshes to draw this frame
	Drawables() []Drawable

	// Lights returns a snapshot of the scene lights.
	//
	// Returns:
	//   - []light.Light: the lights
	Lights() []light.Light

	// AddLight adds a light to the scene.
	//
	// Parameters:
	//   - l: the light to add
	AddLight(l light.Light)

	// Active returns whether the scene should be rendered.
	//
	// Returns:
	//   - bool: true if active
	Active() bool

	// SetActive sets whether the scene should be rendered.
	//
	// Parameters:
	//   - active: true to render
	SetActive(active bool)
}

var _ Scene = &scene{}

// NewScene creates a new Scene configured with the provided options.
//
// Parameters:
//   - options: variadic list of SceneBuilderOption functions
//
// Returns:
//   - Scene: a new Scene instance
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:     &sync.RWMutex{},
		root:   NewNode(WithName("root")),
		active: true,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *scene) Root() Node {
	return s.root
}

func (s *scene) Add(n Node) {
	if n == nil {
		return
	}
	s.root.AddChild(n)
}

func (s *scene) Remove(n Node) bool {
	if n == nil {
		return false
	}
	return s.root.RemoveChild(n)
}

func (s *scene) Contains(n Node) bool {
	if n == nil {
		return false
	}
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur == s.root {
			return true
		}
	}
	return false
}

func (s *scene) Traverse(fn func(Node)) {
	s.root.Traverse(fn)
}

func (s *scene) Drawables() []Drawable {
	var out []Drawable
	collectDrawables(s.root, mgl32.Ident4(), &out)
	return out
}

func collectDrawables(n Node, parentWorld mgl32.Mat4, out *[]Drawable) {
	if !n.Enabled() {
		return
	}
	world := parentWorld.Mul4(n.LocalMatrix())
	if m := n.Mesh(); m != nil {
		*out = append(*out, Drawable{NodeID: n.ID(), Mesh: m, World: world})
	}
	for _, c := range n.Children() {
		collectDrawables(c, world, out)
	}
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]light.Light(nil), s.lights...)
}

func (s *scene) AddLight(l light.Light) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, l)
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

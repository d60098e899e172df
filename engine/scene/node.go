package scene

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/go-gl/mathgl/mgl32"
)

var nextNodeID atomic.Uint64

type node struct {
	mu       *sync.Mutex
	id       uint64
	name     string
	enabled  bool
	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3
	parent   *node
	children []*node
	mesh     *Mesh
}

// Node defines a transform in the scene graph. A node has a local translation,
// rotation and scale, an ordered list of children, and an optional Mesh payload.
// A node carrying a Mesh is a mesh node; a node without one is a pure transform.
//
// All methods are safe for concurrent use. A node has at most one parent; adding
// it to a second parent detaches it from the first.
type Node interface {
	// ID returns the node's process-unique identifier.
	//
	// Returns:
	//   - uint64: the node ID
	ID() uint64

	// Name returns the node's name, as authored in the source asset.
	//
	// Returns:
	//   - string: the node name, possibly empty
	Name() string

	// Enabled returns whether this node and its subtree are drawn.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetEnabled sets whether this node and its subtree are drawn.
	//
	// Parameters:
	//   - enabled: true to draw
	SetEnabled(enabled bool)

	// Position returns the local translation.
	//
	// Returns:
	//   - mgl32.Vec3: translation relative to the parent
	Position() mgl32.Vec3

	// SetPosition sets the local translation.
	//
	// Parameters:
	//   - p: translation relative to the parent
	SetPosition(p mgl32.Vec3)

	// Rotation returns the local orientation.
	//
	// Returns:
	//   - mgl32.Quat: orientation relative to the parent
	Rotation() mgl32.Quat

	// SetRotation sets the local orientation.
	//
	// Parameters:
	//   - q: orientation relative to the parent
	SetRotation(q mgl32.Quat)

	// Scale returns the local per-axis scale.
	//
	// Returns:
	//   - mgl32.Vec3: scale relative to the parent
	Scale() mgl32.Vec3

	// SetScale sets the local per-axis scale.
	//
	// Parameters:
	//   - s: scale relative to the parent
	SetScale(s mgl32.Vec3)

	// LocalMatrix composes the local translation, rotation and scale.
	//
	// Returns:
	//   - mgl32.Mat4: the local transform
	LocalMatrix() mgl32.Mat4

	// WorldMatrix composes this node's local transform with every ancestor's.
	//
	// Returns:
	//   - mgl32.Mat4: the world transform
	WorldMatrix() mgl32.Mat4

	// Parent returns the parent node, or nil for a detached or root node.
	//
	// Returns:
	//   - Node: the parent, or nil
	Parent() Node

	// Children returns a snapshot of the ordered children.
	//
	// Returns:
	//   - []Node: the children in insertion order
	Children() []Node

	// AddChild appends child to this node's children, detaching it from any previous parent.
	// Adding a node to itself or to one of its descendants is ignored.
	//
	// Parameters:
	//   - child: the node to attach
	AddChild(child Node)

	// RemoveChild detaches child if it is a direct child of this node.
	//
	// Parameters:
	//   - child: the node to detach
	//
	// Returns:
	//   - bool: true if the child was found and removed
	RemoveChild(child Node) bool

	// Mesh returns the renderable payload, or nil for a pure transform node.
	//
	// Returns:
	//   - *Mesh: the mesh payload, or nil
	Mesh() *Mesh

	// IsMesh reports whether the node carries a renderable payload.
	//
	// Returns:
	//   - bool: true for mesh nodes
	IsMesh() bool

	// Traverse visits this node and its subtree depth first, parents before children.
	//
	// Parameters:
	//   - fn: called for every node in the subtree
	Traverse(fn func(Node))

	// Find returns the first node in the subtree with the given name, or nil.
	//
	// Parameters:
	//   - name: the name to search for
	//
	// Returns:
	//   - Node: the matching node, or nil
	Find(name string) Node
}

var _ Node = &node{}

// NewNode creates a new Node configured with the provided options.
// Nodes start enabled, at the origin, with identity rotation and unit scale.
//
// Parameters:
//   - options: variadic list of NodeBuilderOption functions
//
// Returns:
//   - Node: a new Node instance
func NewNode(options ...NodeBuilderOption) Node {
	n := &node{
		mu:       &sync.Mutex{},
		id:       nextNodeID.Add(1),
		enabled:  true,
		rotation: mgl32.QuatIdent(),
		scale:    mgl32.Vec3{1, 1, 1},
	}
	for _, opt := range options {
		opt(n)
	}
	return n
}

func (n *node) ID() uint64 {
	return n.id
}

func (n *node) Name() string {
	return n.name
}

func (n *node) Enabled() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.enabled
}

func (n *node) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

func (n *node) Position() mgl32.Vec3 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.position
}

func (n *node) SetPosition(p mgl32.Vec3) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.position = p
}

func (n *node) Rotation() mgl32.Quat {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.rotation
}

func (n *node) SetRotation(q mgl32.Quat) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rotation = q
}

func (n *node) Scale() mgl32.Vec3 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.scale
}

func (n *node) SetScale(s mgl32.Vec3) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.scale = s
}

func (n *node) LocalMatrix() mgl32.Mat4 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return common.ComposeTRS(n.position, n.rotation, n.scale)
}

func (n *node) WorldMatrix() mgl32.Mat4 {
	n.mu.Lock()
	local := common.ComposeTRS(n.position, n.rotation, n.scale)
	parent := n.parent
	n.mu.Unlock()

	if parent == nil {
		return local
	}
	return parent.WorldMatrix().Mul4(local)
}

func (n *node) Parent() Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *node) Children() []Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

func (n *node) AddChild(child Node) {
	c, ok := child.(*node)
	if !ok || c == nil || c.isAncestorOf(n) {
		return
	}

	if old := c.parentNode(); old != nil {
		old.RemoveChild(c)
	}

	n.mu.Lock()
	n.children = append(n.children, c)
	n.mu.Unlock()

	c.mu.Lock()
	c.parent = n
	c.mu.Unlock()
}

func (n *node) RemoveChild(child Node) bool {
	c, ok := child.(*node)
	if !ok || c == nil {
		return false
	}

	n.mu.Lock()
	idx := -1
	for i, existing := range n.children {
		if existing == c {
			idx = i
			break
		}
	}
	if idx >= 0 {
		n.children = append(n.children[:idx], n.children[idx+1:]...)
	}
	n.mu.Unlock()

	if idx < 0 {
		return false
	}

	c.mu.Lock()
	if c.parent == n {
		c.parent = nil
	}
	c.mu.Unlock()
	return true
}

func (n *node) Mesh() *Mesh {
	return n.mesh
}

func (n *node) IsMesh() bool {
	return n.mesh != nil
}

func (n *node) Traverse(fn func(Node)) {
	fn(n)
	for _, c := range n.Children() {
		c.Traverse(fn)
	}
}

func (n *node) Find(name string) Node {
	var found Node
	n.Traverse(func(c Node) {
		if found == nil && c.Name() == name {
			found = c
		}
	})
	return found
}

func (n *node) parentNode() *node {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.parent
}

// isAncestorOf reports whether n is other or one of other's ancestors.
func (n *node) isAncestorOf(other *node) bool {
	for cur := other; cur != nil; cur = cur.parentNode() {
		if cur == n {
			return true
		}
	}
	return false
}

package scene

import "github.com/go-gl/mathgl/mgl32"

// NodeBuilderOption is a functional option for configuring a Node during construction.
type NodeBuilderOption func(*node)

// WithName sets the name of the Node.
//
// Parameters:
//   - name: the node name
//
// Returns:
//   - NodeBuilderOption: functional option to set the name
func WithName(name string) NodeBuilderOption {
	return func(n *node) {
		n.name = name
	}
}

// WithPosition sets the initial local translation of the Node.
//
// Parameters:
//   - p: translation relative to the parent
//
// Returns:
//   - NodeBuilderOption: functional option to set the position
func WithPosition(p mgl32.Vec3) NodeBuilderOption {
	return func(n *node) {
		n.position = p
	}
}

// WithRotation sets the initial local orientation of the Node.
//
// Parameters:
//   - q: orientation relative to the parent
//
// Returns:
//   - NodeBuilderOption: functional option to set the rotation
func WithRotation(q mgl32.Quat) NodeBuilderOption {
	return func(n *node) {
		n.rotation = q
	}
}

// WithScale sets the initial local scale of the Node.
//
// Parameters:
//   - s: scale relative to the parent
//
// Returns:
//   - NodeBuilderOption: functional option to set the scale
func WithScale(s mgl32.Vec3) NodeBuilderOption {
	return func(n *node) {
		n.scale = s
	}
}

// WithMesh attaches a renderable payload, making the Node a mesh node.
//
// Parameters:
//   - m: the mesh payload
//
// Returns:
//   - NodeBuilderOption: functional option to set the mesh
func WithMesh(m *Mesh) NodeBuilderOption {
	return func(n *node) {
		n.mesh = m
	}
}

// WithChildren attaches initial children in order.
//
// Parameters:
//   - children: the nodes to attach
//
// Returns:
//   - NodeBuilderOption: functional option to add children
func WithChildren(children ...Node) NodeBuilderOption {
	return func(n *node) {
		for _, c := range children {
			cn, ok := c.(*node)
			if !ok || cn == nil {
				continue
			}
			n.children = append(n.children, cn)
			cn.parent = n
		}
	}
}

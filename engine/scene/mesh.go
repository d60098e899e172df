package scene

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is the renderable payload of a mesh node: immutable triangle geometry plus
// the material it is drawn with. The material is shared state and may be mutated
// in place; the geometry never changes after import.
type Mesh struct {
	// Name is the mesh identifier from the source asset.
	Name string

	// Vertices are the interleaved vertex attributes.
	Vertices []common.Vertex

	// Indices are the triangle-list indices into Vertices.
	Indices []uint32

	// Material holds the surface properties.
	Material material.Material

	// BoundsMin is the minimum corner of the object-space bounding box.
	BoundsMin mgl32.Vec3

	// BoundsMax is the maximum corner of the object-space bounding box.
	BoundsMax mgl32.Vec3
}

// TriangleCount returns the number of triangles the mesh draws.
func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.Indices) / 3
}

// Drawable is a mesh resolved to its world transform for a single frame.
type Drawable struct {
	// NodeID identifies the mesh node the drawable came from.
	NodeID uint64

	// Mesh is the payload to draw.
	Mesh *Mesh

	// World is the node's world matrix at collection time.
	World mgl32.Mat4
}

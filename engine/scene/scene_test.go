package scene

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func meshNode(name string) Node {
	return NewNode(WithName(name), WithMesh(&Mesh{Name: name, Material: material.NewMaterial()}))
}

func TestAddChildReparents(t *testing.T) {
	a, b, c := NewNode(WithName("a")), NewNode(WithName("b")), NewNode(WithName("c"))
	a.AddChild(c)
	b.AddChild(c)

	assert.Empty(t, a.Children())
	require.Len(t, b.Children(), 1)
	assert.Equal(t, b, c.Parent())
}

func TestAddChildRejectsCycles(t *testing.T) {
	a, b := NewNode(), NewNode()
	a.AddChild(b)
	b.AddChild(a)
	a.AddChild(a)

	assert.Nil(t, a.Parent())
	assert.Len(t, a.Children(), 1)
	assert.Empty(t, b.Children())
}

func TestRemoveChild(t *testing.T) {
	a, b := NewNode(), NewNode()
	a.AddChild(b)

	assert.True(t, a.RemoveChild(b))
	assert.False(t, a.RemoveChild(b))
	assert.Nil(t, b.Parent())
}

func TestTraverseOrderAndFind(t *testing.T) {
	leaf := meshNode("leg")
	mid := NewNode(WithName("frame"), WithChildren(leaf, meshNode("seat")))
	top := NewNode(WithName("chair"), WithChildren(mid))

	var names []string
	top.Traverse(func(n Node) { names = append(names, n.Name()) })

	assert.Equal(t, []string{"chair", "frame", "leg", "seat"}, names)
	assert.Equal(t, leaf, top.Find("leg"))
	assert.Nil(t, top.Find("missing"))
	assert.True(t, leaf.IsMesh())
	assert.False(t, mid.IsMesh())
}

func TestWorldMatrixComposesAncestors(t *testing.T) {
	child := NewNode(WithPosition(mgl32.Vec3{1, 0, 0}))
	parent := NewNode(WithScale(mgl32.Vec3{3, 3, 3}), WithPosition(mgl32.Vec3{0, -0.5, 0}), WithChildren(child))
	_ = parent

	p := child.WorldMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.True(t, p.Vec3().ApproxEqual(mgl32.Vec3{3, -0.5, 0}), "got %v", p)
}

func TestSceneAddContainsRemove(t *testing.T) {
	s := NewScene()
	n := NewNode(WithChildren(meshNode("m")))
	s.Add(n)

	assert.True(t, s.Contains(n))
	assert.True(t, s.Contains(n.Find("m")))
	assert.Equal(t, s.Root(), n.Parent())

	assert.True(t, s.Remove(n))
	assert.False(t, s.Contains(n))
}

func TestDrawablesSkipDisabledSubtrees(t *testing.T) {
	visible := meshNode("visible")
	hidden := meshNode("hidden")
	group := NewNode(WithChildren(hidden))
	group.SetEnabled(false)

	s := NewScene(WithNodes(visible, group))
	ds := s.Drawables()

	require.Len(t, ds, 1)
	assert.Equal(t, visible.ID(), ds[0].NodeID)
	assert.Equal(t, "visible", ds[0].Mesh.Name)
}

func TestSceneLights(t *testing.T) {
	s := NewScene(WithLights(light.NewAmbient(mgl32.Vec3{1, 1, 1}, 1.5)))
	s.AddLight(light.NewDirectional(mgl32.Vec3{1, 1, 1}, 2, mgl32.Vec3{5, 5, 5}))
	s.AddLight(nil)
	assert.Len(t, s.Lights(), 2)
}

package viewport

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHeadless(t *testing.T, w, h int) renderer.Renderer {
	t.Helper()
	r, err := renderer.NewRenderer(renderer.BackendTypeHeadless, renderer.WithSize(w, h))
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}

func TestNewViewportMatchesAspect(t *testing.T) {
	v := NewViewport(newHeadless(t, 800, 400))
	assert.InDelta(t, 2.0, v.Camera().Aspect(), 1e-6)
	assert.NotNil(t, v.Camera().Controller())
}

func TestResizeUpdatesRendererAndProjection(t *testing.T) {
	v := NewViewport(newHeadless(t, 800, 600))
	before := v.Camera().ProjectionMatrix()

	v.Resize(1920, 1080)

	w, h := v.Size()
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)
	assert.InDelta(t, 1920.0/1080.0, v.Camera().Aspect(), 1e-6)
	assert.NotEqual(t, before, v.Camera().ProjectionMatrix())
}

func TestResizeIgnoresZero(t *testing.T) {
	v := NewViewport(newHeadless(t, 800, 600))
	v.Resize(0, 0)
	v.Resize(640, 0)

	w, h := v.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
	assert.InDelta(t, 800.0/600.0, v.Camera().Aspect(), 1e-6)
}

func TestRenderDrawsMeshNodes(t *testing.T) {
	r := newHeadless(t, 640, 480)
	cam := camera.NewCamera(camera.WithController(camera.NewOrbitController()))
	v := NewViewport(r, WithCamera(cam))

	mesh := &scene.Mesh{
		Name: "tri",
		Vertices: []common.Vertex{
			{Position: [3]float32{0, 0, 0}},
			{Position: [3]float32{1, 0, 0}},
			{Position: [3]float32{0, 1, 0}},
		},
		Indices:  []uint32{0, 1, 2},
		Material: material.NewMaterial(),
	}
	s := scene.NewScene(
		scene.WithNodes(scene.NewNode(scene.WithName("tri"), scene.WithMesh(mesh)), scene.NewNode(scene.WithName("empty"))),
		scene.WithLights(light.NewAmbient(mgl32.Vec3{1, 1, 1}, 1.5)),
	)

	require.NoError(t, v.Render(s))
	assert.Equal(t, uint64(1), r.Stats().Frames)
	assert.Equal(t, 1, r.Stats().Draws)

	s.SetActive(false)
	require.NoError(t, v.Render(s))
	assert.Equal(t, uint64(1), r.Stats().Frames)
}

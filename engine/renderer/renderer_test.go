package renderer

import (
	"testing"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangle(mat material.Material) *scene.Mesh {
	return &scene.Mesh{
		Name: "tri",
		Vertices: []common.Vertex{
			{Position: [3]float32{0, 0, 0}, Normal: [3]float32{0, 0, 1}},
			{Position: [3]float32{1, 0, 0}, Normal: [3]float32{0, 0, 1}},
			{Position: [3]float32{0, 1, 0}, Normal: [3]float32{0, 0, 1}},
		},
		Indices:  []uint32{0, 1, 2},
		Material: mat,
	}
}

func headless(t *testing.T) (Renderer, *headlessRendererBackendImpl) {
	t.Helper()
	r, err := NewRenderer(BackendTypeHeadless, WithSize(800, 600))
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r, r.(*renderer).backend.(*headlessRendererBackendImpl)
}

func TestUniformLayouts(t *testing.T) {
	assert.Equal(t, uint64(128), frameUniformSize)
	assert.Equal(t, uint64(160), objectUniformSize)
	assert.Equal(t, uint64(128), objectMaterialOffset)
	assert.Equal(t, common.VertexStride, int(unsafe.Sizeof(common.Vertex{})))
}

func TestFrameUniformFoldsLights(t *testing.T) {
	off := light.NewLight(light.LightTypeDirectional, light.WithPosition(mgl32.Vec3{0, 1, 0}), light.WithEnabled(false))
	frame := Frame{
		Eye: mgl32.Vec3{0, 1.5, 6},
		Lights: []light.Light{
			light.NewAmbient(mgl32.Vec3{1, 1, 1}, 1),
			light.NewAmbient(mgl32.Vec3{1, 0, 0}, 0.5),
			off,
			light.NewDirectional(mgl32.Vec3{1, 1, 1}, 2, mgl32.Vec3{5, 5, 5}),
			light.NewDirectional(mgl32.Vec3{1, 0, 0}, 9, mgl32.Vec3{-5, 0, 0}),
		},
	}

	u := frameUniform(frame)
	assert.Equal(t, [4]float32{1.5, 1, 1, 1}, u.Ambient)
	assert.Equal(t, [4]float32{2, 2, 2, 1}, u.LightColor)
	dir := mgl32.Vec3{u.LightDir[0], u.LightDir[1], u.LightDir[2]}
	assert.True(t, dir.ApproxEqual(mgl32.Vec3{-1, -1, -1}.Normalize()), "light dir %v", dir)
	assert.Equal(t, [4]float32{0, 1.5, 6, 1}, u.Eye)
}

func TestObjectUniformCarriesMaterial(t *testing.T) {
	mat := material.NewMaterial(material.WithBaseColor(common.Color{R: 0, G: 1, B: 0, A: 1}))
	d := scene.Drawable{NodeID: 7, Mesh: triangle(mat), World: mgl32.Scale3D(2, 2, 2)}

	u, version := objectUniform(d)
	assert.Equal(t, [4]float32{0, 1, 0, 1}, u.Material.BaseColor)
	assert.Zero(t, version)
	assert.InDelta(t, 0.5, u.Normal[0], 1e-6)
	assert.Equal(t, float32(2), u.Model[0])
}

func TestHeadlessRenderCountsDraws(t *testing.T) {
	r, backend := headless(t)

	mat := material.NewMaterial()
	frame := Frame{Drawables: []scene.Drawable{
		{NodeID: 1, Mesh: triangle(mat), World: mgl32.Ident4()},
		{NodeID: 2, Mesh: &scene.Mesh{Name: "empty"}, World: mgl32.Ident4()},
		{NodeID: 3, Mesh: nil},
	}}
	require.NoError(t, r.Render(frame))
	require.NoError(t, r.Render(frame))

	stats := r.Stats()
	assert.Equal(t, uint64(2), stats.Frames)
	assert.Equal(t, 1, stats.Draws)
	assert.Equal(t, 800, stats.Width)
	assert.Len(t, backend.lastColors, 1)

	mat.SetColor(common.Color{R: 0, G: 1, B: 0, A: 1})
	require.NoError(t, r.Render(frame))
	assert.Equal(t, common.Color{R: 0, G: 1, B: 0, A: 1}, backend.lastColors[1])
}

func TestResizeIgnoresNonPositiveSizes(t *testing.T) {
	r, backend := headless(t)

	r.Resize(0, 0)
	r.Resize(-1, 400)
	w, h := r.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)

	r.Resize(1024, 768)
	w, h = r.Size()
	assert.Equal(t, 1024, w)
	assert.Equal(t, 768, h)
	assert.Equal(t, 1024, backend.width)
	assert.Equal(t, 768, backend.height)
}

func TestRenderAfterClose(t *testing.T) {
	r, err := NewRenderer(BackendTypeHeadless)
	require.NoError(t, err)
	r.Close()
	r.Close()
	assert.ErrorIs(t, r.Render(Frame{}), ErrRendererClosed)
}

func TestWGPURequiresSurface(t *testing.T) {
	_, err := NewRenderer(BackendTypeWGPU)
	assert.ErrorIs(t, err, ErrNoSurface)
}

func TestSetPresentModeReachesBackend(t *testing.T) {
	r, backend := headless(t)
	r.SetPresentMode(PresentModeUncapped)
	assert.Equal(t, PresentModeUncapped, backend.presentMode)
}

package renderer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: 255, G: uint8(40 * x), B: uint8(40 * y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestMaterialStateStale(t *testing.T) {
	var s materialState
	assert.True(t, s.stale(0), "first sighting is always stale")
	assert.False(t, s.stale(0))
	assert.True(t, s.stale(3))
	assert.False(t, s.stale(3))
	assert.True(t, s.stale(2), "any change of version counts")
}

func TestRenderDuringSetColorKeepsLastColor(t *testing.T) {
	r, backend := headless(t)

	mat := material.NewMaterial()
	frame := Frame{Drawables: []scene.Drawable{{NodeID: 1, Mesh: triangle(mat), World: mgl32.Ident4()}}}

	const n = 500
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= n; i++ {
			mat.SetColor(common.Color{R: float32(i), A: 1})
		}
	}()
	for range n {
		require.NoError(t, r.Render(frame))
	}
	wg.Wait()

	require.NoError(t, r.Render(frame))
	assert.Equal(t, common.Color{R: n, A: 1}, backend.lastColors[1])
}

func TestHeadlessUploadsBaseColorTexture(t *testing.T) {
	r, backend := headless(t)

	tex := &common.ImportedTexture{Name: "checker", MimeType: "image/png", Data: encodePNG(t, 2, 3)}
	textured := material.NewMaterial(material.WithDiffuseTexture(tex))
	plain := material.NewMaterial()
	frame := Frame{Drawables: []scene.Drawable{
		{NodeID: 1, Mesh: triangle(textured), World: mgl32.Ident4()},
		{NodeID: 2, Mesh: triangle(plain), World: mgl32.Ident4()},
		{NodeID: 3, Mesh: triangle(textured), World: mgl32.Ident4()},
	}}
	require.NoError(t, r.Render(frame))

	got := backend.lastTextures[1]
	assert.Equal(t, uint32(2), got.Width)
	assert.Equal(t, uint32(3), got.Height)
	assert.Len(t, got.Pixels, 2*3*4)
	assert.Equal(t, []byte{255, 0, 0, 255}, got.Pixels[:4])
	assert.Equal(t, common.WhiteTexel, backend.lastTextures[2])
	assert.Len(t, backend.textures.decoded, 1, "shared textures decode once")

	require.NoError(t, r.Render(Frame{Drawables: frame.Drawables[1:2]}))
	assert.Empty(t, backend.textures.decoded)
	assert.NotContains(t, backend.lastTextures, uint64(1))
}

func TestUndecodableTextureFallsBackToWhite(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	cache := newTextureCache(zap.New(core))

	tex := &common.ImportedTexture{Name: "broken", MimeType: "image/png", Data: []byte("not a png")}
	m := material.NewMaterial(material.WithName("broken"), material.WithDiffuseTexture(tex))

	assert.Equal(t, common.WhiteTexel, cache.baseColor(m))
	assert.Equal(t, common.WhiteTexel, cache.baseColor(m))
	assert.Equal(t, common.WhiteTexel, cache.baseColor(nil))
	assert.Equal(t, 1, logs.FilterMessage("base colour texture not decodable, drawing untextured").Len())
}

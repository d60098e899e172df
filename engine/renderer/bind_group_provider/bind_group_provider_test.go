package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProviderKeepsLabel(t *testing.T) {
	p := NewBindGroupProvider("mesh_7", WithIndexCount(36))
	assert.Equal(t, "mesh_7", p.Label())
	assert.Equal(t, 36, p.IndexCount())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.Buffer(0))
}

func TestReleaseWithoutGPUResources(t *testing.T) {
	p := NewBindGroupProvider("empty", WithIndexCount(3))
	p.Release()
	assert.Zero(t, p.IndexCount())
	assert.Nil(t, p.VertexBuffer())
	assert.Nil(t, p.IndexBuffer())
}

func TestTextureAndSamplerSlots(t *testing.T) {
	p := NewBindGroupProvider("textured")
	assert.Nil(t, p.TextureView(1))
	assert.Nil(t, p.Sampler(2))

	p.SetTexture(1, nil, nil)
	p.SetSampler(2, nil)
	assert.NotPanics(t, p.Release)
	assert.Nil(t, p.TextureView(1))
	assert.Nil(t, p.Sampler(2))
}

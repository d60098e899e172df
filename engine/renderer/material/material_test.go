package material

import (
	"encoding/binary"
	"math"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/stretchr/testify/assert"
)

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial()
	assert.Equal(t, common.White, m.Color())
	assert.Equal(t, float32(1), m.Roughness())
	assert.Zero(t, m.Version())
}

func TestSetColorBumpsVersion(t *testing.T) {
	m := NewMaterial(WithName("seat"))
	m.SetColor(common.Color{R: 1, A: 1})
	m.SetColor(common.Color{G: 1, A: 1})

	assert.Equal(t, common.Color{G: 1, A: 1}, m.Color())
	assert.Equal(t, uint64(2), m.Version())
}

func TestSetColorConcurrent(t *testing.T) {
	m := NewMaterial()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.SetColor(common.Color{B: 1, A: 1})
			_ = m.Color()
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(16), m.Version())
}

func TestFromImported(t *testing.T) {
	m := FromImported(common.ImportedMaterial{
		Name:      "leather",
		BaseColor: [4]float32{0.5, 0.25, 0, 1},
		Metallic:  0.2,
		Roughness: 0.7,
	})
	assert.Equal(t, "leather", m.Name())
	assert.Equal(t, common.Color{R: 0.5, G: 0.25, A: 1}, m.Color())
	assert.Equal(t, float32(0.2), m.Metallic())
	assert.Nil(t, m.DiffuseTexture())
}

func TestParamsMarshal(t *testing.T) {
	m := NewMaterial(WithBaseColor(common.Color{R: 1, G: 0.5, B: 0.25, A: 1}), WithMetallic(0.3))
	p, version := Params(m)
	assert.Zero(t, version)
	buf := p.Marshal()

	assert.Len(t, buf, p.Size())
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8])))
	assert.Equal(t, float32(0.3), math.Float32frombits(binary.LittleEndian.Uint32(buf[16:20])))
}

func TestSetRGBKeepsAlpha(t *testing.T) {
	m := NewMaterial(WithBaseColor(common.Color{R: 1, G: 1, B: 1, A: 0.5}))
	m.SetRGB(common.Color{R: 1, A: 1})

	assert.Equal(t, common.Color{R: 1, A: 0.5}, m.Color())
	assert.Equal(t, uint64(1), m.Version())
}

func TestParamsPairsColorWithVersion(t *testing.T) {
	m := NewMaterial()
	done := make(chan struct{})
	go func() {
		defer close(done)
		// The red channel always equals the version it is written at.
		for i := 1; i <= 2000; i++ {
			m.SetColor(common.Color{R: float32(i), A: 1})
		}
	}()

	for {
		p, version := Params(m)
		if version > 0 {
			assert.Equal(t, float32(version), p.BaseColor[0])
		}
		select {
		case <-done:
			p, version = Params(m)
			assert.Equal(t, uint64(2000), version)
			assert.Equal(t, float32(2000), p.BaseColor[0])
			return
		default:
		}
	}
}

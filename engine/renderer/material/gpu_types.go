package material

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUMaterialParams is the GPU-aligned uniform for the lit flat-color fragment shader.
// Matches the WGSL MaterialParams struct in the renderer's shader exactly.
// Size: 32 bytes (two vec4<f32>, std140 aligned).
type GPUMaterialParams struct {
	BaseColor [4]float32 // offset 0: RGBA surface color (16 bytes)
	Metallic  float32    // offset 16
	Roughness float32    // offset 20
	_         [2]float32 // offset 24: padding to 32 bytes
}

// Params snapshots the material into its GPU uniform layout.
//
// Parameters:
//   - m: the material to snapshot
//
// Returns:
//   - GPUMaterialParams: the uniform data
//   - uint64: the material version the color was read at
func Params(m Material) (GPUMaterialParams, uint64) {
	c, version := m.Snapshot()
	return GPUMaterialParams{
		BaseColor: c.Vec4(),
		Metallic:  m.Metallic(),
		Roughness: m.Roughness(),
	}, version
}

// Size returns the size of the GPUMaterialParams struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMaterialParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterialParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (g *GPUMaterialParams) Marshal() []byte {
	buf := make([]byte, 32)
	for i, f := range g.BaseColor {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Metallic))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Roughness))
	return buf
}

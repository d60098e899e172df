package renderer

import (
	"unsafe"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// Frame is everything a backend needs to draw one image.
type Frame struct {
	// ViewProjection is the camera's combined projection * view matrix.
	ViewProjection mgl32.Mat4

	// Eye is the world-space camera position.
	Eye mgl32.Vec3

	// Lights are the scene lights; disabled lights are skipped.
	Lights []light.Light

	// Drawables are the mesh nodes to draw with their world transforms.
	Drawables []scene.Drawable
}

// GPUFrameUniform is the per-frame uniform bound at group 0.
// Size: 128 bytes.
type GPUFrameUniform struct {
	ViewProj   [16]float32 // offset   0
	Eye        [4]float32  // offset  64
	Ambient    [4]float32  // offset  80: summed ambient radiance
	LightDir   [4]float32  // offset  96: direction the key light travels
	LightColor [4]float32  // offset 112: key light radiance
}

// GPUObjectUniform is the per-draw uniform bound at group 1.
// Size: 160 bytes.
type GPUObjectUniform struct {
	Model    [16]float32                // offset   0
	Normal   [16]float32                // offset  64: inverse-transpose of Model
	Material material.GPUMaterialParams // offset 128
}

const (
	frameUniformSize  = uint64(unsafe.Sizeof(GPUFrameUniform{}))
	objectUniformSize = uint64(unsafe.Sizeof(GPUObjectUniform{}))

	// objectMaterialOffset is where the material params start inside GPUObjectUniform.
	objectMaterialOffset = uint64(unsafe.Offsetof(GPUObjectUniform{}.Material))
)

// frameUniform folds the frame's lights into the uniform layout. Ambient lights
// accumulate; the first enabled directional light becomes the key light.
func frameUniform(f Frame) GPUFrameUniform {
	u := GPUFrameUniform{
		ViewProj: f.ViewProjection,
		Eye:      f.Eye.Vec4(1),
		LightDir: [4]float32{0, -1, 0, 0},
	}

	var ambient mgl32.Vec3
	keySet := false
	for _, l := range f.Lights {
		if l == nil || !l.Enabled() {
			continue
		}
		switch l.Type() {
		case light.LightTypeAmbient:
			ambient = ambient.Add(l.Radiance())
		case light.LightTypeDirectional:
			if keySet {
				continue
			}
			u.LightDir = l.Direction().Vec4(0)
			u.LightColor = l.Radiance().Vec4(1)
			keySet = true
		}
	}
	u.Ambient = ambient.Vec4(1)
	return u
}

// objectUniform builds the per-draw uniform for a drawable, along with the material
// version its color was read at (0 without a material).
func objectUniform(d scene.Drawable) (GPUObjectUniform, uint64) {
	u := GPUObjectUniform{
		Model:  d.World,
		Normal: d.World.Inv().Transpose(),
	}
	var version uint64
	if d.Mesh != nil && d.Mesh.Material != nil {
		u.Material, version = material.Params(d.Mesh.Material)
	}
	return u, version
}

// materialState remembers which material version a draw last uploaded.
type materialState struct {
	version uint64
	set     bool
}

// stale reports whether version differs from the last upload and records it as uploaded.
func (s *materialState) stale(version uint64) bool {
	if s.set && s.version == version {
		return false
	}
	s.version, s.set = version, true
	return true
}

// Marshal serializes the uniform for upload.
//
// Returns:
//   - []byte: the uniform bytes
func (u *GPUFrameUniform) Marshal() []byte {
	return common.StructToBytes(u)
}

// Marshal serializes the uniform for upload.
//
// Returns:
//   - []byte: the uniform bytes
func (u *GPUObjectUniform) Marshal() []byte {
	return common.StructToBytes(u)
}

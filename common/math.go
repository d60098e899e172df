package common

import (
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}

// Clamp restricts v to the closed range [lo, hi].
func Clamp[T ~float32 | ~float64 | ~int](v, lo, hi T) T {
	return max(lo, min(v, hi))
}

// ComposeTRS builds a column-major model matrix from a translation, rotation and scale.
// The transforms are applied in scale, rotate, translate order.
//
// Parameters:
//   - t: translation
//   - r: rotation quaternion
//   - s: per-axis scale
//
// Returns:
//   - mgl32.Mat4: the composed matrix
func ComposeTRS(t mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(t[0], t[1], t[2]).
		Mul4(r.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
}

// DecomposeTRS splits an affine column-major matrix into translation, rotation and scale.
// Shear is discarded. A negative determinant is folded into the X scale.
//
// Parameters:
//   - m: the matrix to decompose
//
// Returns:
//   - mgl32.Vec3: translation
//   - mgl32.Quat: rotation
//   - mgl32.Vec3: scale
func DecomposeTRS(m mgl32.Mat4) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	t := m.Col(3).Vec3()

	c0, c1, c2 := m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()
	s := mgl32.Vec3{c0.Len(), c1.Len(), c2.Len()}
	if m.Mat3().Det() < 0 {
		s[0] = -s[0]
	}

	if s[0] == 0 || s[1] == 0 || s[2] == 0 {
		return t, mgl32.QuatIdent(), s
	}

	rot := mgl32.Mat3FromCols(c0.Mul(1/s[0]), c1.Mul(1/s[1]), c2.Mul(1/s[2]))
	return t, mgl32.Mat4ToQuat(rot.Mat4()).Normalize(), s
}

// SphericalToCartesian converts orbit coordinates around the origin into a Y-up offset vector.
// Azimuth 0 looks down -Z from +Z; elevation is measured from the XZ plane.
//
// Parameters:
//   - radius: distance from the origin
//   - azimuth: rotation around the Y axis in radians
//   - elevation: angle above the XZ plane in radians
//
// Returns:
//   - mgl32.Vec3: the offset vector
func SphericalToCartesian(radius, azimuth, elevation float32) mgl32.Vec3 {
	cosE := math32.Cos(elevation)
	return mgl32.Vec3{
		radius * cosE * math32.Sin(azimuth),
		radius * math32.Sin(elevation),
		radius * cosE * math32.Cos(azimuth),
	}
}

// CartesianToSpherical is the inverse of SphericalToCartesian.
//
// Parameters:
//   - v: the offset vector
//
// Returns:
//   - float32: radius
//   - float32: azimuth in radians
//   - float32: elevation in radians
func CartesianToSpherical(v mgl32.Vec3) (float32, float32, float32) {
	r := v.Len()
	if r == 0 {
		return 0, 0, 0
	}
	return r, math32.Atan2(v[0], v[2]), math32.Asin(Clamp(v[1]/r, -1, 1))
}

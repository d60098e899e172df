package common

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestComposeDecomposeTRS(t *testing.T) {
	pos := mgl32.Vec3{1, -2, 3}
	rot := mgl32.QuatRotate(math32.Pi/3, mgl32.Vec3{0, 1, 0})
	scale := mgl32.Vec3{2, 3, 4}

	gotPos, gotRot, gotScale := DecomposeTRS(ComposeTRS(pos, rot, scale))

	assert.True(t, gotPos.ApproxEqualThreshold(pos, 1e-5), "pos %v", gotPos)
	assert.True(t, gotScale.ApproxEqualThreshold(scale, 1e-5), "scale %v", gotScale)
	assert.True(t, gotRot.ApproxEqualThreshold(rot, 1e-5) || gotRot.ApproxEqualThreshold(rot.Scale(-1), 1e-5), "rot %v", gotRot)
}

func TestSphericalRoundTrip(t *testing.T) {
	v := SphericalToCartesian(6, 0.4, 0.25)
	r, az, el := CartesianToSpherical(v)
	assert.InDelta(t, 6, r, 1e-5)
	assert.InDelta(t, 0.4, az, 1e-5)
	assert.InDelta(t, 0.25, el, 1e-5)

	// Azimuth 0, elevation 0 sits on +Z.
	assert.True(t, SphericalToCartesian(5, 0, 0).ApproxEqualThreshold(mgl32.Vec3{0, 0, 5}, 1e-5))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(2), Clamp[float32](0.5, 2, 10))
	assert.Equal(t, float32(10), Clamp[float32](100, 2, 10))
	assert.Equal(t, 5, Clamp(5, 2, 10))
}

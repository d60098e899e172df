package light

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestDirectionalPointsAtOrigin(t *testing.T) {
	l := NewDirectional(mgl32.Vec3{1, 1, 1}, 2, mgl32.Vec3{5, 5, 5})
	want := mgl32.Vec3{-1, -1, -1}.Normalize()
	assert.True(t, l.Direction().ApproxEqual(want), "direction %v", l.Direction())
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, l.Radiance())
}

func TestAmbientHasNoDirection(t *testing.T) {
	l := NewAmbient(mgl32.Vec3{1, 1, 1}, 1.5)
	assert.Equal(t, LightTypeAmbient, l.Type())
	assert.Equal(t, mgl32.Vec3{}, l.Direction())
	assert.Equal(t, "ambient", l.Type().String())
}

func TestDisabledLightHasNoRadiance(t *testing.T) {
	l := NewLight(LightTypeDirectional, WithPosition(mgl32.Vec3{0, 1, 0}), WithEnabled(false))
	assert.False(t, l.Enabled())
	assert.Equal(t, mgl32.Vec3{}, l.Radiance())

	l.SetEnabled(true)
	l.SetIntensity(3)
	assert.Equal(t, mgl32.Vec3{3, 3, 3}, l.Radiance())
}

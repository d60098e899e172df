package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultControllerMatchesStartingView(t *testing.T) {
	cc := NewCameraController()
	pos := cc.Position()
	assert.InDeltaSlice(t, []float32{0, 1.5, 6}, pos[:], 1e-4)
	assert.Equal(t, mgl32.Vec3{}, cc.Target())
	assert.Equal(t, float32(2), cc.MinRadius())
	assert.Equal(t, float32(10), cc.MaxRadius())
	assert.True(t, cc.Damping())
	assert.True(t, cc.Settled())
}

func TestDollyNeverLeavesRadiusBounds(t *testing.T) {
	for _, damping := range []bool{true, false} {
		cc := NewCameraController(WithDamping(damping), WithSpring(30, 0.2))

		for i := 0; i < 200; i++ {
			cc.Dolly(1e6)
			cc.Update(1.0 / 60)
			r := cc.Radius()
			require.GreaterOrEqual(t, r, float32(2))
			require.LessOrEqual(t, r, float32(10))
		}
		assert.InDelta(t, 2, cc.Radius(), 1e-3)

		for i := 0; i < 200; i++ {
			cc.Dolly(-1e6)
			cc.Update(1.0 / 60)
			r := cc.Radius()
			require.GreaterOrEqual(t, r, float32(2))
			require.LessOrEqual(t, r, float32(10))
		}
		assert.InDelta(t, 10, cc.Radius(), 1e-3)
	}
}

func TestSetRadiusClamps(t *testing.T) {
	cc := NewCameraController()
	cc.SetRadius(0.5)
	assert.Equal(t, float32(2), cc.Radius())
	cc.SetRadius(50)
	assert.Equal(t, float32(10), cc.Radius())
}

func TestDampingEasesTowardGoal(t *testing.T) {
	cc := NewCameraController()
	start := cc.Azimuth()
	cc.Rotate(1, 0)

	cc.Update(1.0 / 60)
	first := cc.Azimuth()
	assert.Greater(t, first, start)
	assert.Less(t, first, start+1)
	assert.False(t, cc.Settled())

	for i := 0; i < 600 && !cc.Settled(); i++ {
		cc.Update(1.0 / 60)
	}
	assert.True(t, cc.Settled())
	assert.InDelta(t, start+1, cc.Azimuth(), 1e-4)
}

func TestUndampedUpdateSnaps(t *testing.T) {
	cc := NewCameraController(WithDamping(false))
	cc.Rotate(0.5, 0.1)
	cc.Dolly(1)

	assert.False(t, cc.Settled())
	cc.Update(0)
	assert.True(t, cc.Settled())
	assert.InDelta(t, 0.5, cc.Azimuth(), 1e-6)
}

func TestRotateClampsElevation(t *testing.T) {
	cc := NewCameraController(WithDamping(false))
	cc.Rotate(0, 100)
	cc.Update(0)
	assert.Equal(t, cc.MaxElevation(), cc.Elevation())

	cc.OrbitDown()
	cc.Update(0)
	assert.InDelta(t, cc.MaxElevation()-cc.OrbitSpeed(), cc.Elevation(), 1e-6)
}

func TestPanMovesTargetAndEyeTogether(t *testing.T) {
	cc := NewCameraController(WithDamping(false), WithEye(mgl32.Vec3{0, 0, 5}))
	before := cc.Position()

	cc.Pan(1, 2)
	cc.Update(0)

	target, pos := cc.Target(), cc.Position()
	assert.InDeltaSlice(t, []float32{1, 2, 0}, target[:], 1e-5)
	assert.InDeltaSlice(t, []float32{before[0] + 1, before[1] + 2, before[2]}, pos[:], 1e-5)
	assert.InDelta(t, 5, cc.Radius(), 1e-5)
}

func TestCameraAspectUpdatesProjection(t *testing.T) {
	cam := NewCamera(WithController(NewCameraController()))
	before := cam.ProjectionMatrix()

	cam.SetAspect(2)
	assert.Equal(t, float32(2), cam.Aspect())
	assert.Equal(t, mgl32.Perspective(cam.Fov(), 2, cam.Near(), cam.Far()), cam.ProjectionMatrix())
	assert.NotEqual(t, before, cam.ProjectionMatrix())
}

func TestCameraUpdateFollowsController(t *testing.T) {
	cc := NewCameraController(WithDamping(false))
	cam := NewCamera(WithController(cc))
	start := cam.Eye()
	assert.InDeltaSlice(t, []float32{0, 1.5, 6}, start[:], 1e-4)

	cc.SetAzimuth(mgl32.DegToRad(90))
	cam.Update()

	eye := cam.Eye()
	assert.Greater(t, eye[0], float32(5))
	assert.InDelta(t, 0, eye[2], 1e-4)
	assert.InDelta(t, 1.5, eye[1], 1e-4)
	assert.Equal(t, mgl32.LookAtV(cc.Position(), cc.Target(), cam.Up()), cam.ViewMatrix())

	u := Uniform(cam)
	assert.Equal(t, 80, u.Size())
	assert.Len(t, u.Marshal(), 80)
	assert.Equal(t, [3]float32(cam.Eye()), u.CameraPosition)
}

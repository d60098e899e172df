package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/charmbracelet/harmonica"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// settleEpsilon is the distance below which a damped axis snaps to its goal.
const settleEpsilon = 1e-4

// orbitState is a full set of orbit coordinates around a pivot.
type orbitState struct {
	target    mgl32.Vec3
	radius    float32
	azimuth   float32 // Horizontal angle around Y axis
	elevation float32 // Vertical angle from horizontal plane
}

// cameraControllerImpl is the single implementation of CameraController.
// Input mutates goal; Update eases current toward goal with one harmonica
// spring per axis.
type cameraControllerImpl struct {
	mu *sync.Mutex

	current  orbitState
	goal     orbitState
	position mgl32.Vec3

	// Per-axis spring velocities: radius, azimuth, elevation, target xyz.
	velocity [6]float64

	// Orbit constraints
	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	// Input speed settings
	orbitSpeed       float32
	mouseSensitivity float32
	zoomSpeed        float32
	panSpeed         float32

	// Damping
	damping      bool
	frequency    float64
	dampingRatio float64
	spring       harmonica.Spring
	springDelta  float32
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a new orbit controller looking at the origin from
// (0, 1.5, 6), with the radius bounded to [2, 10] and damping enabled.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	r, az, el := common.CartesianToSpherical(mgl32.Vec3{0, 1.5, 6})
	cc := &cameraControllerImpl{
		mu: &sync.Mutex{},

		current: orbitState{radius: r, azimuth: az, elevation: el},

		minRadius:    2.0,
		maxRadius:    10.0,
		minElevation: -(math32.Pi/2 - 0.05),
		maxElevation: math32.Pi/2 - 0.05,

		orbitSpeed:       0.03,
		mouseSensitivity: 0.005,
		zoomSpeed:        0.5,
		panSpeed:         1.0,

		damping:      true,
		frequency:    6.0,
		dampingRatio: 1.0,
	}

	for _, option := range options {
		option(cc)
	}

	cc.current.radius = common.Clamp(cc.current.radius, cc.minRadius, cc.maxRadius)
	cc.current.elevation = common.Clamp(cc.current.elevation, cc.minElevation, cc.maxElevation)
	cc.goal = cc.current
	cc.updatePosition()
	return cc
}

// NewOrbitController creates a new camera controller configured for orbit-style control.
// This is a convenience wrapper around NewCameraController.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewOrbitController(options ...CameraControllerOption) CameraController {
	return NewCameraController(options...)
}

// --- internal helpers ---

// updatePosition recomputes the camera position from the current spherical coordinates.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updatePosition() {
	cc.position = cc.current.target.Add(
		common.SphericalToCartesian(cc.current.radius, cc.current.azimuth, cc.current.elevation),
	)
}

// localAxes computes the camera's right and up axes consistent with the LookAt matrix.
// If position and target coincide, both returned vectors are zero.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) localAxes() (right, up mgl32.Vec3) {
	backward := cc.position.Sub(cc.current.target)
	if backward.Len() < 1e-8 {
		return
	}
	backward = backward.Normalize()

	// right = normalize(cross(worldUp, backward)) where worldUp = (0, 1, 0)
	right = mgl32.Vec3{backward[2], 0, -backward[0]}
	if right.Len() < 1e-8 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	right = right.Normalize()
	up = backward.Cross(right)
	return right, up
}

// step advances one axis toward its goal, snapping once within settleEpsilon.
func (cc *cameraControllerImpl) step(axis int, pos, goal float32) float32 {
	p, v := cc.spring.Update(float64(pos), cc.velocity[axis], float64(goal))
	if math32.Abs(float32(p)-goal) < settleEpsilon && math32.Abs(float32(v)) < settleEpsilon {
		cc.velocity[axis] = 0
		return goal
	}
	cc.velocity[axis] = v
	return float32(p)
}

// --- CameraController shared methods ---

func (cc *cameraControllerImpl) Position() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) Target() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.current.target
}

func (cc *cameraControllerImpl) SetTarget(target mgl32.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.current.target = target
	cc.goal.target = target
	cc.velocity[3], cc.velocity[4], cc.velocity[5] = 0, 0, 0
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Dolly(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.goal.radius = common.Clamp(cc.goal.radius-delta*cc.zoomSpeed, cc.minRadius, cc.maxRadius)
}

func (cc *cameraControllerImpl) Update(dt float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if !cc.damping {
		cc.current = cc.goal
		cc.velocity = [6]float64{}
		cc.updatePosition()
		return
	}
	if dt <= 0 {
		return
	}
	if dt != cc.springDelta {
		cc.spring = harmonica.NewSpring(float64(dt), cc.frequency, cc.dampingRatio)
		cc.springDelta = dt
	}

	cc.current.radius = cc.step(0, cc.current.radius, cc.goal.radius)
	cc.current.azimuth = cc.step(1, cc.current.azimuth, cc.goal.azimuth)
	cc.current.elevation = cc.step(2, cc.current.elevation, cc.goal.elevation)
	for k := 0; k < 3; k++ {
		cc.current.target[k] = cc.step(3+k, cc.current.target[k], cc.goal.target[k])
	}

	// A spring can overshoot; the clamp holds on the current value too.
	cc.current.radius = common.Clamp(cc.current.radius, cc.minRadius, cc.maxRadius)
	cc.current.elevation = common.Clamp(cc.current.elevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Damping() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.damping
}

func (cc *cameraControllerImpl) Settled() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.current == cc.goal
}

// --- orbitCameraController implementation ---

func (cc *cameraControllerImpl) Rotate(dAzimuth, dElevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.goal.azimuth += dAzimuth
	cc.goal.elevation = common.Clamp(cc.goal.elevation+dElevation, cc.minElevation, cc.maxElevation)
}

func (cc *cameraControllerImpl) OrbitLeft() {
	cc.Rotate(-cc.OrbitSpeed(), 0)
}

func (cc *cameraControllerImpl) OrbitRight() {
	cc.Rotate(cc.OrbitSpeed(), 0)
}

func (cc *cameraControllerImpl) OrbitUp() {
	cc.Rotate(0, cc.OrbitSpeed())
}

func (cc *cameraControllerImpl) OrbitDown() {
	cc.Rotate(0, -cc.OrbitSpeed())
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.current.radius
}

func (cc *cameraControllerImpl) SetRadius(radius float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.current.radius = common.Clamp(radius, cc.minRadius, cc.maxRadius)
	cc.goal.radius = cc.current.radius
	cc.velocity[0] = 0
	cc.updatePosition()
}

func (cc *cameraControllerImpl) MinRadius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.minRadius
}

func (cc *cameraControllerImpl) MaxRadius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.maxRadius
}

func (cc *cameraControllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.current.azimuth
}

func (cc *cameraControllerImpl) SetAzimuth(azimuth float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.current.azimuth = azimuth
	cc.goal.azimuth = azimuth
	cc.velocity[1] = 0
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.current.elevation
}

func (cc *cameraControllerImpl) SetElevation(elevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.current.elevation = common.Clamp(elevation, cc.minElevation, cc.maxElevation)
	cc.goal.elevation = cc.current.elevation
	cc.velocity[2] = 0
	cc.updatePosition()
}

func (cc *cameraControllerImpl) MinElevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.minElevation
}

func (cc *cameraControllerImpl) MaxElevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.maxElevation
}

func (cc *cameraControllerImpl) OrbitSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.orbitSpeed
}

func (cc *cameraControllerImpl) MouseSensitivity() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.mouseSensitivity
}

func (cc *cameraControllerImpl) ZoomSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.zoomSpeed
}

// --- planarCameraController implementation ---

func (cc *cameraControllerImpl) Pan(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	right, up := cc.localAxes()
	offset := right.Mul(dx * cc.panSpeed).Add(up.Mul(dy * cc.panSpeed))
	cc.goal.target = cc.goal.target.Add(offset)
}

func (cc *cameraControllerImpl) PanSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.panSpeed
}

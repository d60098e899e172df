package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraController defines the union interface for camera control systems.
// Controllers own positional state (position, target). Camera reads from controller
// and computes view/projection matrices.
//
// Input methods (Rotate, Dolly, Pan and the Orbit steps) move a goal state.
// Update advances the current state toward the goal, with spring damping when
// enabled, so Update must run once per frame before the camera reads from it.
type CameraController interface {
	orbitCameraController
	planarCameraController

	// Position returns the camera's current world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: world-space camera position
	Position() mgl32.Vec3

	// Target returns the current look-at point.
	//
	// Returns:
	//   - mgl32.Vec3: world-space target position
	Target() mgl32.Vec3

	// SetTarget moves the look-at/pivot point immediately, without damping.
	//
	// Parameters:
	//   - target: world-space coordinates
	SetTarget(target mgl32.Vec3)

	// Dolly moves the goal radius toward (positive) or away from (negative) the target.
	// The goal radius is clamped to [MinRadius, MaxRadius].
	//
	// Parameters:
	//   - delta: dolly amount scaled by ZoomSpeed
	Dolly(delta float32)

	// Update advances the current state toward the goal state by dt seconds.
	// With damping disabled the current state snaps to the goal.
	//
	// Parameters:
	//   - dt: elapsed seconds since the previous Update
	Update(dt float32)

	// Damping reports whether spring damping is enabled.
	//
	// Returns:
	//   - bool: true if Update eases toward the goal
	Damping() bool

	// Settled reports whether the current state has reached the goal state.
	//
	// Returns:
	//   - bool: true when no further motion is pending
	Settled() bool
}

// orbitCameraController defines orbit-specific control methods.
// Provides third-person orbit controls using spherical coordinates (radius, azimuth, elevation)
// relative to the target/pivot point.
type orbitCameraController interface {
	// Rotate adds to the goal azimuth and elevation. Elevation is clamped to its bounds.
	//
	// Parameters:
	//   - dAzimuth: horizontal delta in radians
	//   - dElevation: vertical delta in radians
	Rotate(dAzimuth, dElevation float32)

	// OrbitLeft rotates the camera left around the target by one orbit speed step.
	OrbitLeft()

	// OrbitRight rotates the camera right around the target by one orbit speed step.
	OrbitRight()

	// OrbitUp tilts the camera upward by one orbit speed step, clamped to max elevation.
	OrbitUp()

	// OrbitDown tilts the camera downward by one orbit speed step, clamped to min elevation.
	OrbitDown()

	// Radius returns the current orbit radius (distance from target).
	//
	// Returns:
	//   - float32: current distance from target
	Radius() float32

	// SetRadius sets the orbit radius immediately, clamped to min/max bounds.
	//
	// Parameters:
	//   - radius: new distance from target
	SetRadius(radius float32)

	// MinRadius returns the minimum allowed orbit radius.
	//
	// Returns:
	//   - float32: minimum zoom distance
	MinRadius() float32

	// MaxRadius returns the maximum allowed orbit radius.
	//
	// Returns:
	//   - float32: maximum zoom distance
	MaxRadius() float32

	// Azimuth returns the current horizontal angle around the Y axis.
	//
	// Returns:
	//   - float32: azimuth in radians
	Azimuth() float32

	// SetAzimuth sets the horizontal angle immediately.
	//
	// Parameters:
	//   - azimuth: new horizontal angle in radians
	SetAzimuth(azimuth float32)

	// Elevation returns the current vertical angle from the horizontal plane.
	//
	// Returns:
	//   - float32: elevation in radians
	Elevation() float32

	// SetElevation sets the vertical angle immediately, clamped to min/max bounds.
	//
	// Parameters:
	//   - elevation: new vertical angle in radians
	SetElevation(elevation float32)

	// MinElevation returns the minimum allowed elevation angle.
	//
	// Returns:
	//   - float32: minimum elevation in radians
	MinElevation() float32

	// MaxElevation returns the maximum allowed elevation angle.
	//
	// Returns:
	//   - float32: maximum elevation in radians
	MaxElevation() float32

	// OrbitSpeed returns the keyboard orbit speed in radians per step.
	//
	// Returns:
	//   - float32: radians per orbit call
	OrbitSpeed() float32

	// MouseSensitivity returns the pointer drag sensitivity in radians per pixel.
	//
	// Returns:
	//   - float32: multiplier for pointer movement
	MouseSensitivity() float32

	// ZoomSpeed returns the dolly speed multiplier.
	//
	// Returns:
	//   - float32: multiplier for dolly input
	ZoomSpeed() float32
}

// planarCameraController defines planar translation control methods.
// Panning shifts the goal target along the camera's local right and up axes
// without changing orbit angles or radius.
type planarCameraController interface {
	// Pan translates the goal target along the camera's local axes.
	// Positive dx moves right, positive dy moves up.
	//
	// Parameters:
	//   - dx: horizontal amount scaled by PanSpeed
	//   - dy: vertical amount scaled by PanSpeed
	Pan(dx, dy float32)

	// PanSpeed returns the pan speed multiplier.
	//
	// Returns:
	//   - float32: multiplier for pan input
	PanSpeed() float32
}

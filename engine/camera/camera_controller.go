package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraController owns positional state (position, target) for a camera.
// The camera reads from the controller in Update and derives its matrices.
// Orbit methods move the camera on a sphere around the target; pan methods translate
// position and target together, preserving the orbit relationship.
type CameraController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: world-space camera position
	Position() mgl32.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - mgl32.Vec3: world-space target position
	Target() mgl32.Vec3

	// SetTarget sets the pivot point and recomputes position from spherical coordinates.
	//
	// Parameters:
	//   - target: world-space coordinates
	SetTarget(target mgl32.Vec3)

	// OrbitLeft rotates the camera left around the target by one orbit speed step.
	OrbitLeft()

	// OrbitRight rotates the camera right around the target by one orbit speed step.
	OrbitRight()

	// OrbitUp tilts the camera upward by one orbit speed step, clamped to max elevation.
	OrbitUp()

	// OrbitDown tilts the camera downward by one orbit speed step, clamped to min elevation.
	OrbitDown()

	// Zoom adjusts the orbit radius. Positive delta moves closer to the target.
	//
	// Parameters:
	//   - delta: zoom amount scaled by the zoom speed
	Zoom(delta float32)

	// PanRight translates position and target along the local right axis.
	//
	// Parameters:
	//   - delta: pan amount scaled by the pan speed
	PanRight(delta float32)

	// PanForward translates position and target along the horizontal forward axis.
	//
	// Parameters:
	//   - delta: pan amount scaled by the pan speed
	PanForward(delta float32)

	// Radius returns the current distance from the target.
	Radius() float32
}

type ControllerBuilderOption func(*cameraControllerImpl)

// WithTarget sets the initial pivot point.
func WithTarget(target mgl32.Vec3) ControllerBuilderOption {
	return func(cc *cameraControllerImpl) {
		cc.target = target
	}
}

// WithRadius sets the initial orbit radius.
//
// Parameters:
//   - radius: distance from target
//
// Returns:
//   - ControllerBuilderOption: functional option to set the radius
func WithRadius(radius float32) ControllerBuilderOption {
	return func(cc *cameraControllerImpl) {
		cc.radius = radius
	}
}

// WithRadiusLimits clamps the orbit radius.
func WithRadiusLimits(minRadius, maxRadius float32) ControllerBuilderOption {
	return func(cc *cameraControllerImpl) {
		cc.minRadius, cc.maxRadius = minRadius, maxRadius
	}
}

// WithAngles sets the initial azimuth and elevation in radians.
func WithAngles(azimuth, elevation float32) ControllerBuilderOption {
	return func(cc *cameraControllerImpl) {
		cc.azimuth, cc.elevation = azimuth, elevation
	}
}

// WithSpeeds sets the orbit step (radians), zoom multiplier and pan multiplier.
func WithSpeeds(orbit, zoom, pan float32) ControllerBuilderOption {
	return func(cc *cameraControllerImpl) {
		cc.orbitSpeed, cc.zoomSpeed, cc.panSpeed = orbit, zoom, pan
	}
}

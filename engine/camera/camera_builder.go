package camera

import "github.com/go-gl/mathgl/mgl32"

type CameraBuilderOption func(*cameraImpl)

// WithPerspective configures a perspective projection.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: width / height
//   - near, far: clip plane distances
//
// Returns:
//   - CameraBuilderOption: a function that sets the projection
func WithPerspective(fovY, aspect, near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.projection = ProjectionPerspective
		c.fov, c.aspect, c.near, c.far = fovY, aspect, near, far
	}
}

// WithOrthographic configures an orthographic projection.
//
// Parameters:
//   - left, right, bottom, top: view-space extents
//   - near, far: clip plane distances
//
// Returns:
//   - CameraBuilderOption: a function that sets the projection
func WithOrthographic(left, right, bottom, top, near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.projection = ProjectionOrthographic
		c.left, c.right, c.bottom, c.top, c.near, c.far = left, right, bottom, top, near, far
		if top != bottom {
			c.aspect = (right - left) / (top - bottom)
		}
	}
}

// WithFov sets the camera's field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithAspect sets width / height of the perspective projection.
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.aspect = aspect
	}
}

// WithNear sets the near clipping plane distance.
func WithNear(near float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
	}
}

// WithFar sets the far clipping plane distance.
func WithFar(far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.far = far
	}
}

// WithWorldMatrix places the camera with an explicit camera-to-world transform.
//
// Parameters:
//   - m: the world matrix
//
// Returns:
//   - CameraBuilderOption: a function that sets the world matrix
func WithWorldMatrix(m mgl32.Mat4) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.worldMatrix = m
	}
}

// WithLookAt places the camera at eye facing target.
func WithLookAt(eye, target, up mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.worldMatrix = mgl32.LookAtV(eye, target, up).Inv()
	}
}

// WithRenderTargetSize records the pixel size of the camera's render target.
func WithRenderTargetSize(width, height int) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.targetWidth, c.targetHeight = width, height
	}
}

// WithController attaches a controller to the camera.
// After all options are applied, the camera rebuilds its world matrix from the controller's state.
//
// Parameters:
//   - ctrl: the controller to attach
//
// Returns:
//   - CameraBuilderOption: functional option to set the controller
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}

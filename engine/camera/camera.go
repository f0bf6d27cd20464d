package camera

import (
	"sync"

	"github.com/Carmen-Shannon/helix-go/common"
	"github.com/go-gl/mathgl/mgl32"
)

// ProjectionType selects how a camera maps view space to clip space.
type ProjectionType int

const (
	// ProjectionPerspective uses a symmetric perspective frustum.
	ProjectionPerspective ProjectionType = iota
	// ProjectionOrthographic uses an axis-aligned box.
	ProjectionOrthographic
)

type cameraImpl struct {
	mu *sync.Mutex

	projection ProjectionType

	fov    float32
	aspect float32
	near   float32
	far    float32

	left, right, bottom, top float32

	targetWidth  int
	targetHeight int

	worldMatrix                 mgl32.Mat4
	viewMatrix                  mgl32.Mat4
	projectionMatrix            mgl32.Mat4
	viewProjectionMatrix        mgl32.Mat4
	inverseProjectionMatrix     mgl32.Mat4
	inverseViewProjectionMatrix mgl32.Mat4
	frustum                     common.Frustum

	controller CameraController
}

// Camera defines the view and projection used for one rendering pass.
// The camera stores its world transform; the view matrix is its inverse. All derived matrices are
// recomputed whenever the transform or projection changes, so getters never do matrix work.
type Camera interface {
	// Projection returns whether the camera is perspective or orthographic.
	//
	// Returns:
	//   - ProjectionType: the active projection
	Projection() ProjectionType

	// Fov returns the vertical field of view in radians (perspective only).
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// SetPerspective switches to a perspective projection.
	//
	// Parameters:
	//   - fovY: vertical field of view in radians
	//   - aspect: width / height
	//   - near, far: clip plane distances (0 < near < far)
	SetPerspective(fovY, aspect, near, far float32)

	// SetOrthographic switches to an orthographic projection with the given view-space box.
	//
	// Parameters:
	//   - left, right, bottom, top: view-space extents
	//   - near, far: clip plane distances along -Z
	SetOrthographic(left, right, bottom, top, near, far float32)

	// SetAspect changes the aspect ratio and recomputes the projection.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// WorldMatrix returns the camera-to-world transform.
	//
	// Returns:
	//   - mgl32.Mat4: the world matrix
	WorldMatrix() mgl32.Mat4

	// SetWorldMatrix sets the camera-to-world transform.
	//
	// Parameters:
	//   - m: rigid transform placing the camera in the world
	SetWorldMatrix(m mgl32.Mat4)

	// LookAt places the camera at eye looking toward target.
	//
	// Parameters:
	//   - eye: camera position
	//   - target: point the camera faces
	//   - up: approximate up direction
	LookAt(eye, target, up mgl32.Vec3)

	// WorldPosition returns the translation part of the world matrix.
	//
	// Returns:
	//   - mgl32.Vec3: camera position in world space
	WorldPosition() mgl32.Vec3

	// Forward returns the normalized world-space viewing direction.
	//
	// Returns:
	//   - mgl32.Vec3: the -Z axis of the world matrix
	Forward() mgl32.Vec3

	// ViewMatrix returns the world-to-view transform.
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the view-to-clip transform.
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns Projection * View.
	ViewProjectionMatrix() mgl32.Mat4

	// InverseProjectionMatrix returns the inverse of the projection matrix.
	InverseProjectionMatrix() mgl32.Mat4

	// InverseViewProjectionMatrix returns the clip-to-world transform.
	InverseViewProjectionMatrix() mgl32.Mat4

	// Frustum returns the world-space culling frustum.
	//
	// Returns:
	//   - common.Frustum: planes extracted from the view-projection matrix
	Frustum() common.Frustum

	// FrustumCorners returns the eight world-space corners of the view volume, near plane first,
	// each quad ordered (-x,-y), (+x,-y), (+x,+y), (-x,+y).
	//
	// Returns:
	//   - [8]mgl32.Vec3: the corners
	FrustumCorners() [8]mgl32.Vec3

	// RenderTargetSize returns the pixel size of the target this camera renders to.
	//
	// Returns:
	//   - width, height: size in pixels
	RenderTargetSize() (width, height int)

	// SetRenderTargetSize records the pixel size of the render target.
	//
	// Parameters:
	//   - width, height: size in pixels
	SetRenderTargetSize(width, height int)

	// Controller returns the attached controller or nil.
	Controller() CameraController

	// SetController attaches a controller that drives the world matrix on Update.
	//
	// Parameters:
	//   - ctrl: the controller, or nil to detach
	SetController(ctrl CameraController)

	// Update copies the controller's position and target into the world matrix.
	// Does nothing when no controller is attached.
	Update()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a perspective camera at the origin looking down -Z.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:           &sync.Mutex{},
		projection:   ProjectionPerspective,
		fov:          mgl32.DegToRad(45),
		aspect:       1.0,
		near:         0.1,
		far:          100.0,
		targetWidth:  1,
		targetHeight: 1,
		worldMatrix:  mgl32.Ident4(),
	}
	for _, option := range options {
		option(c)
	}
	if c.controller != nil {
		c.applyController()
	}
	c.updateMatrices()
	return c
}

// NewOrthographicCamera creates a camera with an orthographic projection.
//
// Parameters:
//   - left, right, bottom, top: view-space extents
//   - near, far: clip plane distances
//   - options: functional options applied after the projection is set
//
// Returns:
//   - Camera: the newly created camera
func NewOrthographicCamera(left, right, bottom, top, near, far float32, options ...CameraBuilderOption) Camera {
	opts := append([]CameraBuilderOption{WithOrthographic(left, right, bottom, top, near, far)}, options...)
	return NewCamera(opts...)
}

func (c *cameraImpl) Projection() ProjectionType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) SetPerspective(fovY, aspect, near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projection = ProjectionPerspective
	c.fov, c.aspect, c.near, c.far = fovY, aspect, near, far
	c.updateMatrices()
}

func (c *cameraImpl) SetOrthographic(left, right, bottom, top, near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projection = ProjectionOrthographic
	c.left, c.right, c.bottom, c.top, c.near, c.far = left, right, bottom, top, near, far
	if top != bottom {
		c.aspect = (right - left) / (top - bottom)
	}
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) WorldMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.worldMatrix
}

func (c *cameraImpl) SetWorldMatrix(m mgl32.Mat4) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.worldMatrix = m
	c.updateMatrices()
}

func (c *cameraImpl) LookAt(eye, target, up mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.worldMatrix = mgl32.LookAtV(eye, target, up).Inv()
	c.updateMatrices()
}

func (c *cameraImpl) WorldPosition() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.worldMatrix.Col(3).Vec3()
}

func (c *cameraImpl) Forward() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.worldMatrix.Col(2).Vec3().Mul(-1).Normalize()
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) InverseProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inverseProjectionMatrix
}

func (c *cameraImpl) InverseViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inverseViewProjectionMatrix
}

func (c *cameraImpl) Frustum() common.Frustum {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frustum
}

func (c *cameraImpl) FrustumCorners() [8]mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var corners [8]mgl32.Vec3
	ndc := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for i, z := range [2]float32{-1, 1} {
		for j, xy := range ndc {
			corners[i*4+j] = common.TransformPoint(c.inverseViewProjectionMatrix, mgl32.Vec3{xy[0], xy[1], z})
		}
	}
	return corners
}

func (c *cameraImpl) RenderTargetSize() (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.targetWidth, c.targetHeight
}

func (c *cameraImpl) SetRenderTargetSize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.targetWidth, c.targetHeight = width, height
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller == nil {
		return
	}
	c.applyController()
	c.updateMatrices()
}

// applyController rebuilds the world matrix from the controller's position and target.
// Caller must hold the mutex.
func (c *cameraImpl) applyController() {
	eye := c.controller.Position()
	target := c.controller.Target()
	c.worldMatrix = mgl32.LookAtV(eye, target, mgl32.Vec3{0, 1, 0}).Inv()
}

// updateMatrices recalculates every derived matrix and the culling frustum.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.viewMatrix = c.worldMatrix.Inv()

	switch c.projection {
	case ProjectionOrthographic:
		c.projectionMatrix = mgl32.Ortho(c.left, c.right, c.bottom, c.top, c.near, c.far)
	default:
		c.projectionMatrix = mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
	}

	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
	c.inverseProjectionMatrix = c.projectionMatrix.Inv()
	c.inverseViewProjectionMatrix = c.viewProjectionMatrix.Inv()
	c.frustum = common.ExtractFrustumFromMatrix(c.viewProjectionMatrix)
}

package light

import (
	"github.com/Carmen-Shannon/helix-go/common"
	"github.com/Carmen-Shannon/helix-go/engine/camera"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Cascade is the per-frame context of one shadow cascade. It is rebuilt by CascadeShadows.Update
// and must not change while a shadow collection is running.
type Cascade struct {
	// Camera is the orthographic light camera covering this cascade's slice of the view frustum.
	Camera camera.Camera

	// SplitPlane separates this cascade from the next. Its normal points away from the viewer, so a
	// box classified as PlaneSideFront lies entirely beyond the split. Unused for the last cascade.
	SplitPlane common.Plane

	// SplitDistance is the view depth at which the cascade ends.
	SplitDistance float32

	// NormalBias is the world-space normal offset for shadow lookups in this cascade.
	NormalBias float32
}

// CascadeShadows computes cascaded shadow map contexts for a directional light.
// Not safe for concurrent use.
type CascadeShadows struct {
	count           int
	splitRatios     []float32
	resolution      int
	bias            float32
	normalBiasScale float32

	cascades   []Cascade
	cullPlanes []common.Plane
}

// CascadeBuilderOption configures a CascadeShadows.
type CascadeBuilderOption func(*CascadeShadows)

// WithCascadeCount sets the number of cascades, clamped to [1, MaxCascades].
//
// Parameters:
//   - n: cascade count
//
// Returns:
//   - CascadeBuilderOption: the option
func WithCascadeCount(n int) CascadeBuilderOption {
	return func(cs *CascadeShadows) {
		cs.count = min(max(n, 1), MaxCascades)
	}
}

// WithSplitRatios sets the far end of each cascade as a fraction of the view far distance.
// Ratios must be increasing; the last cascade always extends to the far plane.
//
// Parameters:
//   - ratios: one ratio per cascade
//
// Returns:
//   - CascadeBuilderOption: the option
func WithSplitRatios(ratios ...float32) CascadeBuilderOption {
	return func(cs *CascadeShadows) {
		cs.splitRatios = append([]float32(nil), ratios...)
	}
}

// WithResolution sets the per-cascade shadow map resolution in texels.
func WithResolution(texels int) CascadeBuilderOption {
	return func(cs *CascadeShadows) {
		cs.resolution = texels
	}
}

// WithBias sets the constant depth bias and the normal-offset scale.
func WithBias(bias, normalBiasScale float32) CascadeBuilderOption {
	return func(cs *CascadeShadows) {
		cs.bias = bias
		cs.normalBiasScale = normalBiasScale
	}
}

// NewCascadeShadows creates a cascade configuration with MaxCascades cascades and the default
// split ratios.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - *CascadeShadows: the configuration
func NewCascadeShadows(options ...CascadeBuilderOption) *CascadeShadows {
	cs := &CascadeShadows{
		count:           MaxCascades,
		splitRatios:     DefaultCascadeSplitRatios,
		resolution:      DefaultShadowMapResolution,
		bias:            DefaultShadowBias,
		normalBiasScale: DefaultShadowNormalBiasScale,
	}
	for _, option := range options {
		option(cs)
	}
	cs.cascades = make([]Cascade, cs.count)
	for i := range cs.cascades {
		cs.cascades[i].Camera = camera.NewOrthographicCamera(-1, 1, -1, 1, 0, 1,
			camera.WithRenderTargetSize(cs.resolution, cs.resolution))
	}
	return cs
}

// NumCascades returns the cascade count.
func (cs *CascadeShadows) NumCascades() int {
	return cs.count
}

// Resolution returns the per-cascade shadow map size in texels.
func (cs *CascadeShadows) Resolution() int {
	return cs.resolution
}

// Bias returns the constant depth bias.
func (cs *CascadeShadows) Bias() float32 {
	return cs.bias
}

// Cascades returns the contexts computed by the last Update.
func (cs *CascadeShadows) Cascades() []Cascade {
	return cs.cascades
}

// CullPlanes returns the planes bounding every potential shadow caster, as of the last Update.
// The side facing the light is open so that casters between the light and the view frustum are kept.
func (cs *CascadeShadows) CullPlanes() []common.Plane {
	return cs.cullPlanes
}

// splitDistance returns the view depth at which cascade i ends.
func (cs *CascadeShadows) splitDistance(i int, near, far float32) float32 {
	if i >= cs.count-1 || i >= len(cs.splitRatios) {
		return far
	}
	return max(far*cs.splitRatios[i], near)
}

// Update recomputes every cascade for the current view.
//
// Parameters:
//   - view: the camera the scene is rendered from
//   - lightDirection: direction the light travels in
//   - casterBounds: world bounds of potential shadow casters; may be empty
func (cs *CascadeShadows) Update(view camera.Camera, lightDirection mgl32.Vec3, casterBounds common.AABB) {
	dir := lightDirection.Normalize()
	up := mgl32.Vec3{0, 1, 0}
	if math32.Abs(dir[1]) > 0.99 {
		up = mgl32.Vec3{1, 0, 0}
	}

	near, far := view.Near(), view.Far()
	corners := view.FrustumCorners()
	eye := view.WorldPosition()
	forward := view.Forward()

	cs.cullPlanes = cullPlanesFor(corners, dir, up)

	sliceNear := near
	for i := range cs.cascades {
		sliceFar := cs.splitDistance(i, near, far)
		slice := sliceCorners(corners, near, far, sliceNear, sliceFar)

		center := mgl32.Vec3{}
		for _, c := range slice {
			center = center.Add(c)
		}
		center = center.Mul(1.0 / 8.0)
		lightView := mgl32.LookAtV(center.Sub(dir), center, up)

		box := common.NewEmptyAABB()
		for _, c := range slice {
			box.GrowToIncludePoint(common.TransformPoint(lightView, c))
		}
		maxZ := box.Max[2]
		if !casterBounds.IsEmpty() {
			casters := casterBounds.Transform(lightView)
			maxZ = max(maxZ, casters.Max[2])
		}

		c := &cs.cascades[i]
		c.Camera.SetWorldMatrix(lightView.Inv())
		c.Camera.SetOrthographic(box.Min[0], box.Max[0], box.Min[1], box.Max[1], -maxZ, -box.Min[2])
		c.SplitDistance = sliceFar
		c.SplitPlane = common.NewPlaneFromPointNormal(eye.Add(forward.Mul(sliceFar)), forward)
		c.NormalBias = (box.Max[0] - box.Min[0]) / float32(cs.resolution) * cs.normalBiasScale

		sliceNear = sliceFar
	}
}

// SplitPlanes returns the split planes of every cascade but the last.
func (cs *CascadeShadows) SplitPlanes() []common.Plane {
	planes := make([]common.Plane, 0, max(cs.count-1, 0))
	for i := 0; i < cs.count-1; i++ {
		planes = append(planes, cs.cascades[i].SplitPlane)
	}
	return planes
}

// sliceCorners interpolates the frustum edges to the view depths [d0, d1].
// View depth is linear along each edge, so the interpolation is exact.
func sliceCorners(corners [8]mgl32.Vec3, near, far, d0, d1 float32) [8]mgl32.Vec3 {
	var out [8]mgl32.Vec3
	span := far - near
	t0 := (d0 - near) / span
	t1 := (d1 - near) / span
	for j := 0; j < 4; j++ {
		edge := corners[4+j].Sub(corners[j])
		out[j] = corners[j].Add(edge.Mul(t0))
		out[4+j] = corners[j].Add(edge.Mul(t1))
	}
	return out
}

// cullPlanesFor builds the five planes of the light-space box around points, leaving the side
// facing the light open.
func cullPlanesFor(points [8]mgl32.Vec3, dir, up mgl32.Vec3) []common.Plane {
	center := mgl32.Vec3{}
	for _, p := range points {
		center = center.Add(p)
	}
	center = center.Mul(1.0 / 8.0)
	lightView := mgl32.LookAtV(center.Sub(dir), center, up)

	box := common.NewEmptyAABB()
	for _, p := range points {
		box.GrowToIncludePoint(common.TransformPoint(lightView, p))
	}

	rx, ry, rz := lightView.Row(0), lightView.Row(1), lightView.Row(2)
	return []common.Plane{
		{Normal: [3]float32{rx[0], rx[1], rx[2]}, Distance: rx[3] - box.Min[0]},
		{Normal: [3]float32{-rx[0], -rx[1], -rx[2]}, Distance: box.Max[0] - rx[3]},
		{Normal: [3]float32{ry[0], ry[1], ry[2]}, Distance: ry[3] - box.Min[1]},
		{Normal: [3]float32{-ry[0], -ry[1], -ry[2]}, Distance: box.Max[1] - ry[3]},
		{Normal: [3]float32{rz[0], rz[1], rz[2]}, Distance: rz[3] - box.Min[2]},
	}
}

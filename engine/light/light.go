package light

import "github.com/go-gl/mathgl/mgl32"

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional represents a light with no position, only direction.
	// Used for large distant sources like the sun or moon. Affects all fragments
	// uniformly with no distance attenuation. Only directional lights cast cascaded shadows.
	LightTypeDirectional LightType = iota

	// LightTypePoint represents a light that emits in all directions from a position.
	// Attenuates with distance up to a configurable range.
	LightTypePoint

	// LightTypeSpot represents a light that emits in a cone from a position along a direction.
	// Attenuates with both distance and angle from the cone axis.
	LightTypeSpot
)

func (t LightType) String() string {
	switch t {
	case LightTypeDirectional:
		return "directional"
	case LightTypePoint:
		return "point"
	case LightTypeSpot:
		return "spot"
	default:
		return "unknown"
	}
}

type lightImpl struct {
	lightType    LightType
	position     mgl32.Vec3
	direction    mgl32.Vec3
	color        mgl32.Vec3
	intensity    float32
	lightRange   float32
	innerCone    float32 // stored as cos(angle in radians)
	outerCone    float32 // stored as cos(angle in radians)
	enabled      bool
	castsShadows bool
	shadows      *CascadeShadows
}

// Light defines the interface for a light source in the scene.
//
// All light types share this interface; type-specific properties (e.g. cone angles for
// spot lights) return zero values when not applicable. A shadow-casting directional light may
// carry its own CascadeShadows; otherwise the renderer lends it the renderer-wide configuration.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type (directional, point, or spot)
	Type() LightType

	// Position returns the world-space position of the light.
	// Meaningless for directional lights.
	//
	// Returns:
	//   - mgl32.Vec3: position
	Position() mgl32.Vec3

	// Direction returns the normalized direction the light travels in.
	//
	// Returns:
	//   - mgl32.Vec3: direction from the light toward the scene
	Direction() mgl32.Vec3

	// Color returns the linear RGB color.
	Color() mgl32.Vec3

	// Intensity returns the scalar multiplier applied to Color.
	Intensity() float32

	// Range returns the attenuation cutoff for point and spot lights.
	Range() float32

	// InnerCone returns the cosine of the spot light's full-intensity half-angle.
	InnerCone() float32

	// OuterCone returns the cosine of the spot light's cutoff half-angle.
	OuterCone() float32

	// Enabled returns whether the light contributes to shading.
	Enabled() bool

	// CastsShadows returns whether the light renders a shadow map.
	CastsShadows() bool

	// Shadows returns the light's own cascade configuration, or nil when it has none.
	//
	// Returns:
	//   - *CascadeShadows: cascade state updated by the renderer
	Shadows() *CascadeShadows

	// SetShadows attaches a cascade configuration. Nil detaches it.
	SetShadows(cs *CascadeShadows)

	// SetPosition sets the world-space position.
	SetPosition(p mgl32.Vec3)

	// SetDirection sets the direction; it is normalized before storing.
	SetDirection(d mgl32.Vec3)

	// SetColor sets the linear RGB color.
	SetColor(c mgl32.Vec3)

	// SetIntensity sets the scalar multiplier.
	SetIntensity(intensity float32)

	// SetRange sets the attenuation cutoff.
	SetRange(lightRange float32)

	// SetSpotCone sets the cone angles in degrees.
	//
	// Parameters:
	//   - innerDeg: full-intensity half-angle
	//   - outerDeg: cutoff half-angle
	SetSpotCone(innerDeg, outerDeg float32)

	// SetEnabled toggles the light.
	SetEnabled(enabled bool)

	// SetCastsShadows toggles shadow casting.
	SetCastsShadows(castsShadows bool)
}

var _ Light = &lightImpl{}

// NewLight creates a light of the given type with white color and unit intensity.
//
// Parameters:
//   - lightType: the kind of light
//   - opts: functional options
//
// Returns:
//   - Light: the light
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType:  lightType,
		direction:  mgl32.Vec3{0, -1, 0},
		color:      mgl32.Vec3{1, 1, 1},
		intensity:  1.0,
		lightRange: 10.0,
		innerCone:  0.9063, // cos(25°)
		outerCone:  0.8192, // cos(35°)
		enabled:    true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() mgl32.Vec3 {
	return l.position
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	return l.direction
}

func (l *lightImpl) Color() mgl32.Vec3 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Range() float32 {
	return l.lightRange
}

func (l *lightImpl) InnerCone() float32 {
	return l.innerCone
}

func (l *lightImpl) OuterCone() float32 {
	return l.outerCone
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) CastsShadows() bool {
	return l.castsShadows
}

func (l *lightImpl) Shadows() *CascadeShadows {
	return l.shadows
}

func (l *lightImpl) SetPosition(p mgl32.Vec3) {
	l.position = p
}

func (l *lightImpl) SetDirection(d mgl32.Vec3) {
	l.direction = normalize(d)
}

func (l *lightImpl) SetColor(c mgl32.Vec3) {
	l.color = c
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetRange(lightRange float32) {
	l.lightRange = lightRange
}

func (l *lightImpl) SetSpotCone(innerDeg, outerDeg float32) {
	l.innerCone = cosDeg(innerDeg)
	l.outerCone = cosDeg(outerDeg)
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

func (l *lightImpl) SetCastsShadows(castsShadows bool) {
	l.castsShadows = castsShadows
}

func (l *lightImpl) SetShadows(cs *CascadeShadows) {
	l.shadows = cs
}

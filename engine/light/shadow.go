package light

// DefaultShadowMapResolution is the default width and height in texels of one cascade's
// region in the shadow atlas.
const DefaultShadowMapResolution = 2048

// MaxCascades is the largest supported cascade count.
const MaxCascades = 4

// DefaultShadowBias is the constant depth bias applied to shadow comparisons
// to reduce shadow acne artifacts.
const DefaultShadowBias float32 = 0.001

// DefaultShadowNormalBiasScale is the multiplier applied to the shadow map
// texel world-size to compute the normal-offset bias. Higher values push
// the shadow sample point further along the surface normal, reducing
// self-shadowing on concave geometry at the cost of slight shadow
// detachment from contact points. Typical values are 2.0–4.0.
const DefaultShadowNormalBiasScale float32 = 3.0

// DefaultCascadeSplitRatios are the far ends of each cascade as fractions of the view camera's
// far distance.
var DefaultCascadeSplitRatios = []float32{0.12, 0.25, 0.5, 1.0}

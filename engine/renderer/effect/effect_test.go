package effect

import (
	"testing"

	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend/backendtest"
	"github.com/stretchr/testify/assert"
)

func TestFogDefaults(t *testing.T) {
	f := NewFog()

	assert.Equal(t, "fog", f.Name())
	assert.True(t, f.Enabled())
	assert.InDelta(t, 0.001, f.Density(), 1e-6)
	assert.Equal(t, [3]float32{1, 1, 1}, f.Tint())
	assert.InDelta(t, 0.01, f.HeightFallOff(), 1e-6)
	assert.Zero(t, f.StartDistance())
	assert.Contains(t, f.VertexSource(), "hx_fullscreen_vertex")
	assert.Contains(t, f.FragmentSource(), "hx_post_fog")
}

func TestFogOptions(t *testing.T) {
	f := NewFog(
		WithDensity(-1),
		WithTint([3]float32{0.5, 0.6, 0.7}),
		WithHeightFallOff(0.2),
		WithStartDistance(10),
		WithEnabled(false),
	)

	assert.Zero(t, f.Density())
	assert.Equal(t, [3]float32{0.5, 0.6, 0.7}, f.Tint())
	assert.InDelta(t, 0.2, f.HeightFallOff(), 1e-6)
	assert.InDelta(t, 10, f.StartDistance(), 1e-6)
	assert.False(t, f.Enabled())

	f.SetEnabled(true)
	assert.True(t, f.Enabled())
}

func TestFogApply(t *testing.T) {
	f := NewFog(WithDensity(0.05), WithTint([3]float32{0.2, 0.3, 0.4}), WithStartDistance(3))
	p := backendtest.NewProgram("hx_fogParams", "hx_fogTint")

	f.Apply(p)

	assert.Equal(t, []float32{0.05, 0.01, 3, 0}, p.Values["hx_fogParams"])
	assert.Equal(t, []float32{0.2, 0.3, 0.4, 1}, p.Values["hx_fogTint"])
}

func TestFogApplyIgnoresMissingUniforms(t *testing.T) {
	p := backendtest.NewProgram("hx_fogTint")
	NewFog().Apply(p)

	assert.NotContains(t, p.Values, "hx_fogParams")
	assert.Equal(t, 1, p.Writes["hx_fogTint"])
}

func TestPassthroughEffects(t *testing.T) {
	g := NewGamma()
	assert.Equal(t, "gamma", g.Name())
	assert.Contains(t, g.FragmentSource(), "hx_post_gamma")
	assert.Empty(t, g.Defines())

	c := NewCopy()
	assert.Contains(t, c.FragmentSource(), "hx_post_copy")
	p := backendtest.NewProgram()
	c.Apply(p)
	assert.Empty(t, p.Values)
}

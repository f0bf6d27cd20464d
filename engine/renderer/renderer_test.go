package renderer

import (
	"errors"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/helix-go/engine/camera"
	"github.com/Carmen-Shannon/helix-go/engine/light"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend/backendtest"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/effect"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/material"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/render_item"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/helix-go/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var screenTargets = []string{
	TargetGBufferAlbedo,
	TargetGBufferNormalDepth,
	TargetGBufferSpecular,
	TargetHDR,
	TargetBackBuffer,
}

func boxNode(name string, z float32, mat material.Material) *scene.Node {
	mesh := scene.NewMesh(name, []float32{-1, -1, z - 1, 1, 1, z + 1}, 3, []uint32{0, 1, 0})
	inst := &scene.MeshInstance{Mesh: mesh, Material: mat}
	return scene.NewNode(name, scene.WithModel(scene.NewModelInstance(inst)))
}

func testCamera() camera.Camera {
	return camera.NewCamera(
		camera.WithPerspective(mgl32.DegToRad(60), 16.0/9.0, 0.5, 100),
		camera.WithLookAt(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}),
	)
}

func sun() light.Light {
	return light.NewLight(light.LightTypeDirectional,
		light.WithDirection(0.2, -1, -0.3),
		light.WithCastsShadows(true),
	)
}

func newTestRenderer(t *testing.T, options ...RendererBuilderOption) (Renderer, *backendtest.Backend) {
	t.Helper()
	b := backendtest.New()
	r, err := NewRenderer(b, options...)
	require.NoError(t, err)
	t.Cleanup(r.Release)
	return r, b
}

// programsWith returns the compiled programs whose fragment source contains marker.
func programsWith(b *backendtest.Backend, marker string) []*backendtest.Program {
	var out []*backendtest.Program
	for _, p := range b.Programs {
		if strings.Contains(p.FragmentSource, marker) {
			out = append(out, p)
		}
	}
	return out
}

func TestNewRendererRequiresFloatTargets(t *testing.T) {
	b := backendtest.New()
	b.Caps.FloatRenderTargets = false

	r, err := NewRenderer(b)
	assert.Nil(t, r)
	assert.ErrorIs(t, err, ErrFloatTargetsUnsupported)
	assert.ErrorIs(t, err, backend.ErrUnsupportedCapability)
}

func TestNewRendererPanicsWithoutBackend(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = NewRenderer(nil)
	})
}

func TestRenderStageOrder(t *testing.T) {
	r, b := newTestRenderer(t)
	s := scene.NewScene("order", scene.WithNodes(boxNode("box", -10, material.NewMaterial("m"))))

	require.NoError(t, r.Render(testCamera(), s))

	assert.Equal(t, screenTargets, b.TargetsInOrder())
	require.NotEmpty(t, b.Ops)
	assert.Equal(t, "BeginFrame", b.Ops[0])
	assert.Equal(t, []string{"EndFrame", "Present"}, b.Ops[len(b.Ops)-2:])

	for _, target := range screenTargets[:3] {
		draws := b.DrawsTo(target)
		require.Len(t, draws, 1, target)
		assert.Equal(t, "box", draws[0].Mesh.Label)
	}
	lighting := b.DrawsTo(TargetHDR)
	require.Len(t, lighting, 1)
	assert.True(t, lighting[0].Fullscreen)
	assert.Equal(t, lightingState, lighting[0].State)

	final := b.DrawsTo(TargetBackBuffer)
	require.Len(t, final, 1)
	assert.True(t, final[0].Fullscreen)
	assert.Contains(t, final[0].Program.FragmentSource, "hx_linearToGamma")

	assert.Equal(t, StageIdle, r.Stage())
	assert.Equal(t, uint64(1), r.Frame())
	assert.Empty(t, r.Diagnostics())

	stats := r.Stats()
	assert.Equal(t, uint64(1), stats.Frame)
	assert.Equal(t, 3, stats.OpaqueItems)
	assert.Equal(t, 5, stats.Draws)
	assert.Zero(t, stats.SkippedDraws)
	assert.Equal(t, 5, stats.Programs)
}

func TestRenderForwardAfterLighting(t *testing.T) {
	r, b := newTestRenderer(t)
	glass := material.NewMaterial("glass", material.WithBlend(backend.BlendAlpha))
	s := scene.NewScene("forward", scene.WithNodes(
		boxNode("near", -5, glass),
		boxNode("far", -20, glass),
	))

	require.NoError(t, r.Render(testCamera(), s))

	hdr := b.DrawsTo(TargetHDR)
	require.Len(t, hdr, 3)
	assert.True(t, hdr[0].Fullscreen, "lighting runs before forward geometry")
	assert.Equal(t, "far", hdr[1].Mesh.Label)
	assert.Equal(t, "near", hdr[2].Mesh.Label)
	assert.Equal(t, backend.BlendAlpha, hdr[1].State.Blend)
}

func TestRenderWritesFrameConstantsOncePerProgram(t *testing.T) {
	r, b := newTestRenderer(t)
	glass := material.NewMaterial("glass", material.WithBlend(backend.BlendAlpha))
	s := scene.NewScene("constants",
		scene.WithNodes(boxNode("a", -5, glass), boxNode("b", -8, glass)),
		scene.WithAmbientColor([3]float32{0.1, 0.2, 0.3}),
	)

	require.NoError(t, r.Render(testCamera(), s))

	forward := programsWith(b, "Forward shading for blended")
	require.Len(t, forward, 1)
	p := forward[0]
	assert.Equal(t, 2, p.Draws)
	assert.Equal(t, 1, p.Writes[ambientUniform])
	assert.Equal(t, []float32{0.1, 0.2, 0.3, 1}, p.Values[ambientUniform])
	assert.Len(t, p.Values[directionalLightUniform], len((&light.GPUDirectionalLight{}).Floats()))

	require.NoError(t, r.Render(testCamera(), s))
	assert.Equal(t, 2, p.Writes[ambientUniform])
}

func TestRenderShadesLocalLights(t *testing.T) {
	r, b := newTestRenderer(t)
	glass := material.NewMaterial("glass", material.WithBlend(backend.BlendAlpha))
	s := scene.NewScene("local",
		scene.WithNodes(boxNode("box", -10, material.NewMaterial("m")), boxNode("glass", -5, glass)),
		scene.WithLights(
			light.NewLight(light.LightTypeDirectional),
			light.NewLight(light.LightTypePoint, light.WithPosition(0, 2, -8), light.WithRange(6)),
			light.NewLight(light.LightTypeSpot, light.WithPosition(0, 4, -4), light.WithDirection(0, -1, 0)),
		),
	)

	require.NoError(t, r.Render(testCamera(), s))
	assert.Empty(t, r.Diagnostics())

	want := len((&light.GPULocalLights{}).Floats())
	for _, marker := range []string{"Ambient, directional and local lights", "Forward shading for blended"} {
		programs := programsWith(b, marker)
		require.Len(t, programs, 1, marker)
		values := programs[0].Values[localLightsUniform]
		require.Len(t, values, want, marker)
		assert.Equal(t, float32(2), values[0], "light count")
		assert.Equal(t, []float32{0, 2, -8, 6}, values[4:8], "first light position and range")
	}
}

func TestRenderReportsLocalLightOverflow(t *testing.T) {
	r, _ := newTestRenderer(t)
	var lights []light.Light
	for range light.MaxLocalLights + 2 {
		lights = append(lights, light.NewLight(light.LightTypePoint))
	}
	s := scene.NewScene("crowded", scene.WithNodes(boxNode("box", -10, material.NewMaterial("m"))), scene.WithLights(lights...))

	require.NoError(t, r.Render(testCamera(), s))

	diags := r.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
	assert.Equal(t, StageCollectOpaque, diags[0].Stage)
	assert.Contains(t, diags[0].Err.Error(), "2 local lights")
}

func TestRenderShadowCascades(t *testing.T) {
	r, b := newTestRenderer(t, WithCascadeCount(3), WithShadowMapResolution(512))
	s := scene.NewScene("shadows",
		scene.WithNodes(boxNode("box", -10, material.NewMaterial("m"))),
		scene.WithLights(sun()),
	)

	require.NoError(t, r.Render(testCamera(), s))

	targets := b.TargetsInOrder()
	require.NotEmpty(t, targets)
	assert.Equal(t, TargetShadowAtlas, targets[0])
	assert.Equal(t, screenTargets, targets[1:])

	draws := b.DrawsTo(TargetShadowAtlas)
	require.NotEmpty(t, draws)
	for _, d := range draws {
		assert.Equal(t, 0, d.Viewport[0]%512)
		assert.Less(t, d.Viewport[0], 3*512)
		assert.Equal(t, [3]int{0, 512, 512}, [3]int{d.Viewport[1], d.Viewport[2], d.Viewport[3]})
		assert.Equal(t, "box", d.Mesh.Label)
	}
	assert.Equal(t, len(draws), r.Stats().ShadowItems)

	lighting := b.DrawsTo(TargetHDR)
	require.Len(t, lighting, 1)
	assert.NotNil(t, lighting[0].Program.Textures[shadowMapTexture])
}

func TestRenderWithoutShadowCastingLight(t *testing.T) {
	r, b := newTestRenderer(t)
	l := sun()
	l.SetCastsShadows(false)
	s := scene.NewScene("lit",
		scene.WithNodes(boxNode("box", -10, material.NewMaterial("m"))),
		scene.WithLights(l),
	)

	require.NoError(t, r.Render(testCamera(), s))

	assert.Equal(t, screenTargets, b.TargetsInOrder())
	assert.Zero(t, r.Stats().ShadowItems)
}

func TestRenderShadowAtlasTooLarge(t *testing.T) {
	r, b := newTestRenderer(t, WithCascadeCount(4), WithShadowMapResolution(4096))
	s := scene.NewScene("huge",
		scene.WithNodes(boxNode("box", -10, material.NewMaterial("m"))),
		scene.WithLights(sun()),
	)

	require.NoError(t, r.Render(testCamera(), s))

	assert.Empty(t, b.DrawsTo(TargetShadowAtlas))
	diags := r.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
	assert.Equal(t, StageCollectShadows, diags[0].Stage)
	assert.ErrorIs(t, diags[0].Err, backend.ErrFramebufferIncomplete)
}

func TestRenderSkipsProgramsThatFailToCompile(t *testing.T) {
	r, b := newTestRenderer(t)
	b.FailCompile = func(_, fragmentSource string) error {
		if strings.Contains(fragmentSource, "const BROKEN") {
			return errors.New("syntax error")
		}
		return nil
	}
	s := scene.NewScene("broken", scene.WithNodes(
		boxNode("good", -10, material.NewMaterial("good")),
		boxNode("bad", -12, material.NewMaterial("bad", material.WithDefine("BROKEN", ""))),
	))

	require.NoError(t, r.Render(testCamera(), s))

	for _, target := range screenTargets[:3] {
		draws := b.DrawsTo(target)
		require.Len(t, draws, 1, target)
		assert.Equal(t, "good", draws[0].Mesh.Label)
	}
	diags := r.Diagnostics()
	require.Len(t, diags, 3)
	for _, d := range diags {
		assert.Equal(t, SeverityError, d.Severity)
		assert.Equal(t, StageDeferredGBuffer, d.Stage)
		assert.ErrorIs(t, d.Err, shader.ErrShaderCompile)
	}
	assert.Equal(t, 3, r.Stats().SkippedDraws)

	compiles := b.Compiles
	require.NoError(t, r.Render(testCamera(), s))
	assert.Equal(t, compiles, b.Compiles, "failed programs are not recompiled")
	assert.Len(t, r.Diagnostics(), 3)
}

func TestRenderContextLostIsFatal(t *testing.T) {
	r, b := newTestRenderer(t)
	s := scene.NewScene("lost", scene.WithNodes(boxNode("box", -10, material.NewMaterial("m"))))
	b.ContextLost = true

	err := r.Render(testCamera(), s)
	require.Error(t, err)

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, StageIdle, fatal.Stage)
	assert.Equal(t, uint64(1), fatal.Frame)
	assert.ErrorIs(t, err, backend.ErrContextLost)
	assert.Zero(t, b.Presents)
	assert.Empty(t, b.Draws)
	assert.Equal(t, StageIdle, r.Stage())

	b.ContextLost = false
	require.NoError(t, r.Render(testCamera(), s))
	assert.Equal(t, 1, b.Presents)
	assert.Equal(t, uint64(2), r.Frame())
}

func TestRenderPoolLimitIsFatal(t *testing.T) {
	r, b := newTestRenderer(t, WithRenderItemPoolLimit(2))
	s := scene.NewScene("crowded", scene.WithNodes(boxNode("box", -10, material.NewMaterial("m"))))

	err := r.Render(testCamera(), s)

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, StageCollectOpaque, fatal.Stage)
	assert.ErrorIs(t, err, render_item.ErrPoolExhausted)
	assert.Empty(t, b.Draws)
}

func TestRenderDegradesIncompleteGBuffer(t *testing.T) {
	r, b := newTestRenderer(t)
	b.FailTargets[TargetGBufferSpecular] = true
	s := scene.NewScene("degraded", scene.WithNodes(boxNode("box", -10, material.NewMaterial("m"))))

	require.NoError(t, r.Render(testCamera(), s))

	assert.Equal(t, []string{TargetGBufferAlbedo, TargetGBufferNormalDepth, TargetHDR, TargetBackBuffer}, b.TargetsInOrder())
	assert.Empty(t, b.DrawsTo(TargetHDR), "lighting needs the whole G-buffer")
	assert.Len(t, b.DrawsTo(TargetBackBuffer), 1)

	diags := r.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
	assert.ErrorIs(t, diags[0].Err, backend.ErrFramebufferIncomplete)
}

func TestRenderRebuildsTargetsAfterFatalCreate(t *testing.T) {
	r, b := newTestRenderer(t)
	s := scene.NewScene("retry", scene.WithNodes(boxNode("box", -10, material.NewMaterial("m"))))
	b.Caps.FloatRenderTargets = false

	err := r.Render(testCamera(), s)
	require.ErrorIs(t, err, backend.ErrUnsupportedCapability)
	assert.Zero(t, b.Presents)

	b.Caps.FloatRenderTargets = true
	require.NoError(t, r.Render(testCamera(), s))
	assert.Empty(t, r.Diagnostics())
	for _, label := range gbufferLabels {
		assert.NotEmpty(t, b.DrawsTo(label), label)
	}
	assert.Len(t, b.DrawsTo(TargetHDR), 1)
	assert.Equal(t, 1, b.Presents)
}

func TestRenderDegradesIncompleteHDR(t *testing.T) {
	r, b := newTestRenderer(t)
	b.FailTargets[TargetHDR] = true
	r.AddEffect(effect.NewCopy())
	s := scene.NewScene("degraded", scene.WithNodes(
		boxNode("box", -10, material.NewMaterial("m")),
		boxNode("glass", -5, material.NewMaterial("glass", material.WithBlend(backend.BlendAlpha))),
	))

	require.NoError(t, r.Render(testCamera(), s))

	assert.Equal(t, []string{TargetGBufferAlbedo, TargetGBufferNormalDepth, TargetGBufferSpecular, TargetBackBuffer}, b.TargetsInOrder())
	assert.Empty(t, b.DrawsTo(TargetBackBuffer), "nothing to present but the clear color")
	assert.Equal(t, 1, b.Presents)
}

func TestRenderEffectsPingPong(t *testing.T) {
	r, b := newTestRenderer(t)
	first, second := effect.NewCopy(), effect.NewFog()
	disabled := effect.NewFog(effect.WithEnabled(false))
	r.AddEffect(first)
	r.AddEffect(disabled)
	r.AddEffect(second)
	r.AddEffect(nil)
	assert.Equal(t, []effect.Effect{first, disabled, second}, r.Effects())

	s := scene.NewScene("post", scene.WithNodes(boxNode("box", -10, material.NewMaterial("m"))))
	require.NoError(t, r.Render(testCamera(), s))

	assert.Equal(t, append(screenTargets[:4:4], TargetPostA, TargetPostB, TargetBackBuffer), b.TargetsInOrder())
	for _, target := range []string{TargetPostA, TargetPostB, TargetBackBuffer} {
		draws := b.DrawsTo(target)
		require.Len(t, draws, 1, target)
		assert.True(t, draws[0].Fullscreen)
		assert.Equal(t, postState, draws[0].State)
	}

	r.RemoveEffect(second)
	r.RemoveEffect(first)
	assert.Equal(t, []effect.Effect{disabled}, r.Effects())
}

func TestRenderSweepsIdlePrograms(t *testing.T) {
	const retention = 3
	r, b := newTestRenderer(t, WithProgramRetention(retention), WithSweepInterval(1))
	idle := boxNode("idle", -12, material.NewMaterial("idle", material.WithDefine("IDLE_ONLY", "")))
	s := scene.NewScene("sweep", scene.WithNodes(boxNode("box", -10, material.NewMaterial("m")), idle))

	require.NoError(t, r.Render(testCamera(), s))
	before := r.ProgramCache().Len()
	idlePrograms := programsWith(b, "const IDLE_ONLY")
	require.Len(t, idlePrograms, 3)

	idle.SetVisible(false)
	for range retention {
		require.NoError(t, r.Render(testCamera(), s))
	}
	assert.Equal(t, before, r.ProgramCache().Len(), "still within retention")

	require.NoError(t, r.Render(testCamera(), s))
	assert.Equal(t, before-3, r.ProgramCache().Len())
	for _, p := range idlePrograms {
		assert.True(t, p.Released)
	}

	compiles := b.Compiles
	idle.SetVisible(true)
	require.NoError(t, r.Render(testCamera(), s))
	assert.Equal(t, compiles+3, b.Compiles)
}

func TestRenderRecompilesAfterLibraryChange(t *testing.T) {
	r, b := newTestRenderer(t)
	s := scene.NewScene("reload", scene.WithNodes(boxNode("box", -10, material.NewMaterial("m"))))

	require.NoError(t, r.Render(testCamera(), s))
	compiles := b.Compiles
	first := append([]*backendtest.Program(nil), b.Programs...)

	require.NoError(t, r.Render(testCamera(), s))
	assert.Equal(t, compiles, b.Compiles)

	r.Library().Register("hx_unused", "// replaced on disk\n")
	require.NoError(t, r.Render(testCamera(), s))
	assert.Equal(t, 2*compiles, b.Compiles)
	for _, p := range first {
		assert.True(t, p.Released)
	}
}

func TestRenderResizeRebuildsTargets(t *testing.T) {
	r, b := newTestRenderer(t)
	s := scene.NewScene("resize", scene.WithNodes(boxNode("box", -10, material.NewMaterial("m"))))

	require.NoError(t, r.Render(testCamera(), s))
	assert.Equal(t, [4]int{0, 0, 1280, 720}, b.DrawsTo(TargetGBufferAlbedo)[0].Viewport)

	r.Resize(640, 480)
	b.Draws = nil
	require.NoError(t, r.Render(testCamera(), s))
	assert.Equal(t, [4]int{0, 0, 640, 480}, b.DrawsTo(TargetGBufferAlbedo)[0].Viewport)
}

func TestRenderRequiresCameraAndScene(t *testing.T) {
	r, b := newTestRenderer(t)

	assert.Error(t, r.Render(nil, scene.NewScene("empty")))
	assert.Error(t, r.Render(testCamera(), nil))
	assert.Zero(t, b.Frames)
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "collect_shadows", StageCollectShadows.String())
	assert.Equal(t, "present", StagePresent.String())
	assert.Equal(t, "Stage(42)", Stage(42).String())
}

func TestFatalErrorFormat(t *testing.T) {
	err := &FatalError{Frame: 7, Stage: StageForward, Err: backend.ErrOutOfMemory}
	assert.Contains(t, err.Error(), "frame 7")
	assert.Contains(t, err.Error(), "forward")
	assert.ErrorIs(t, err, backend.ErrOutOfMemory)
}

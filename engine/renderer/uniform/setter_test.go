package uniform

import (
	"testing"

	"github.com/Carmen-Shannon/helix-go/common"
	"github.com/Carmen-Shannon/helix-go/engine/camera"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend/backendtest"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/render_item"
	"github.com/Carmen-Shannon/helix-go/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setterNames(setters []Setter) []string {
	names := make([]string, len(setters))
	for i, s := range setters {
		names[i] = s.Name()
	}
	return names
}

func TestGetSetters_RegistryOrderAndUnknownIgnored(t *testing.T) {
	p := backendtest.NewProgram("hx_poissonDisk", "custom_uniform", "hx_wvpMatrix", "hx_worldMatrix")

	setters := GetSetters(p)
	assert.Equal(t, []string{"hx_worldMatrix", "hx_wvpMatrix", "hx_poissonDisk"}, setterNames(setters))

	assert.Empty(t, GetSetters(backendtest.NewProgram("something_else")))
}

func TestRegistry_Complete(t *testing.T) {
	names := Names()
	assert.Len(t, names, 22)
	for _, n := range names {
		typ, ok := WGSLType(n)
		assert.True(t, ok, n)
		assert.NotEmpty(t, typ, n)
	}
	typ, ok := WGSLType("hx_directionalLight")
	assert.True(t, ok)
	assert.Equal(t, "HX_DirectionalLight", typ)
	_, ok = WGSLType("hx_unknown")
	assert.False(t, ok)
}

func TestViewProjection_OrthographicIdentity(t *testing.T) {
	cam := camera.NewOrthographicCamera(-1, 1, -1, 1, -1, 1)
	p := backendtest.NewProgram("hx_viewProjectionMatrix")
	setters := GetSetters(p)
	require.Len(t, setters, 1)

	setters[0].Execute(cam, &render_item.RenderItem{WorldMatrix: mgl32.Ident4()})

	got := p.Mat4("hx_viewProjectionMatrix")
	assert.True(t, common.Mat4ApproxEqual(mgl32.Ortho(-1, 1, -1, 1, -1, 1), got, 1e-6))
	assert.InDelta(t, -1, got.At(2, 2), 1e-6)
}

func TestWVP_RecomputedPerItem(t *testing.T) {
	cam := camera.NewCamera(camera.WithLookAt(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}))
	p := backendtest.NewProgram("hx_wvpMatrix", "hx_inverseWVPMatrix", "hx_normalWorldMatrix")
	setters := GetSetters(p)

	for _, x := range []float32{1, 5} {
		world := mgl32.Translate3D(x, 0, 0).Mul4(mgl32.Scale3D(2, 2, 2))
		item := &render_item.RenderItem{WorldMatrix: world}
		for _, s := range setters {
			s.Execute(cam, item)
		}

		wvp := cam.ViewProjectionMatrix().Mul4(world)
		assert.True(t, common.Mat4ApproxEqual(wvp, p.Mat4("hx_wvpMatrix"), 1e-5))
		assert.True(t, common.Mat4ApproxEqual(wvp.Inv(), p.Mat4("hx_inverseWVPMatrix"), 1e-4))

		normal := p.Values["hx_normalWorldMatrix"]
		require.Len(t, normal, 9)
		assert.InDelta(t, 0.5, normal[0], 1e-6)
	}
	assert.Equal(t, 2, p.Writes["hx_wvpMatrix"])
}

func TestCameraScalars(t *testing.T) {
	cam := camera.NewCamera(camera.WithNear(0.5), camera.WithFar(100.5), camera.WithRenderTargetSize(640, 320))
	p := backendtest.NewProgram(
		"hx_cameraFrustumRange", "hx_rcpCameraFrustumRange",
		"hx_cameraNearPlaneDistance", "hx_cameraFarPlaneDistance",
		"hx_renderTargetResolution", "hx_rcpRenderTargetResolution", "hx_dither2DTextureScale",
	)
	item := &render_item.RenderItem{WorldMatrix: mgl32.Ident4()}
	for _, s := range GetSetters(p) {
		s.Execute(cam, item)
	}

	assert.InDelta(t, 100, p.Values["hx_cameraFrustumRange"][0], 1e-4)
	assert.InDelta(t, 0.01, p.Values["hx_rcpCameraFrustumRange"][0], 1e-6)
	assert.InDelta(t, 0.5, p.Values["hx_cameraNearPlaneDistance"][0], 1e-6)
	assert.InDelta(t, 100.5, p.Values["hx_cameraFarPlaneDistance"][0], 1e-4)
	assert.Equal(t, []float32{640, 320}, p.Values["hx_renderTargetResolution"])
	assert.Equal(t, []float32{1.0 / 640, 1.0 / 320}, p.Values["hx_rcpRenderTargetResolution"])
	assert.Equal(t, []float32{20, 10}, p.Values["hx_dither2DTextureScale"])
}

func TestSkinning_OnlyWithSkeleton(t *testing.T) {
	cam := camera.NewCamera()
	p := backendtest.NewProgram("hx_skinningMatrices")
	setters := GetSetters(p)
	require.Len(t, setters, 1)

	setters[0].Execute(cam, &render_item.RenderItem{WorldMatrix: mgl32.Ident4()})
	assert.Zero(t, p.Writes["hx_skinningMatrices"])

	joints := []mgl32.Mat4{mgl32.Ident4(), mgl32.Translate3D(1, 2, 3)}
	setters[0].Execute(cam, &render_item.RenderItem{
		Skeleton:         &scene.Skeleton{Name: "rig", JointNames: []string{"root", "arm"}},
		SkeletonMatrices: joints,
	})
	assert.Equal(t, 1, p.Writes["hx_skinningMatrices"])
	data := p.Values["hx_skinningMatrices"]
	require.Len(t, data, 32)
	assert.Equal(t, float32(1), data[28])
	assert.Equal(t, float32(3), data[30])
}

func TestPoissonDisk(t *testing.T) {
	p := backendtest.NewProgram("hx_poissonDisk")
	GetSetters(p)[0].Execute(camera.NewCamera(), &render_item.RenderItem{})
	data := p.Values["hx_poissonDisk"]
	require.Len(t, data, 128)
	for i, pt := range PoissonDisk {
		assert.Equal(t, pt[0], data[i*4])
		assert.Equal(t, pt[1], data[i*4+1])
		assert.LessOrEqual(t, pt[0]*pt[0]+pt[1]*pt[1], float32(1))
	}
}

func TestSetters_IndependentScratch(t *testing.T) {
	a := GetSetters(backendtest.NewProgram("hx_skinningMatrices"))[0].(*setter)
	b := GetSetters(backendtest.NewProgram("hx_skinningMatrices"))[0].(*setter)
	item := &render_item.RenderItem{Skeleton: &scene.Skeleton{}, SkeletonMatrices: []mgl32.Mat4{mgl32.Ident4()}}
	a.Execute(camera.NewCamera(), item)
	b.Execute(camera.NewCamera(), item)
	require.NotEmpty(t, a.floats)
	assert.NotSame(t, &a.floats[0], &b.floats[0])
}

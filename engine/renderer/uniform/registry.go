package uniform

import (
	"github.com/Carmen-Shannon/helix-go/engine/camera"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/render_item"
	"github.com/Carmen-Shannon/helix-go/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// DitherTextureSize is the tile size the dither scale is expressed in.
const DitherTextureSize = 32

// entry is one registered uniform.
type entry struct {
	name     string
	wgslType string
	write    writeFunc
}

// rendererOwned lists block uniforms the renderer, materials or effects write directly.
var rendererOwned = map[string]string{
	"hx_directionalLight": "HX_DirectionalLight",
	"hx_localLights":      "HX_LocalLights",
	"hx_ambientColor":     "vec4<f32>",
	"hx_materialParams":   "HX_MaterialParams",
}

// registry is ordered: GetSetters returns setters in this order.
var registry = []entry{
	{"hx_worldMatrix", "mat4x4<f32>", func(s *setter, _ camera.Camera, item *render_item.RenderItem) {
		s.mat4(item.WorldMatrix)
	}},
	{"hx_worldViewMatrix", "mat4x4<f32>", func(s *setter, cam camera.Camera, item *render_item.RenderItem) {
		s.mat4(cam.ViewMatrix().Mul4(item.WorldMatrix))
	}},
	{"hx_wvpMatrix", "mat4x4<f32>", func(s *setter, cam camera.Camera, item *render_item.RenderItem) {
		s.mat4(cam.ViewProjectionMatrix().Mul4(item.WorldMatrix))
	}},
	{"hx_viewMatrix", "mat4x4<f32>", func(s *setter, cam camera.Camera, _ *render_item.RenderItem) {
		s.mat4(cam.ViewMatrix())
	}},
	{"hx_projectionMatrix", "mat4x4<f32>", func(s *setter, cam camera.Camera, _ *render_item.RenderItem) {
		s.mat4(cam.ProjectionMatrix())
	}},
	{"hx_inverseProjectionMatrix", "mat4x4<f32>", func(s *setter, cam camera.Camera, _ *render_item.RenderItem) {
		s.mat4(cam.InverseProjectionMatrix())
	}},
	{"hx_inverseWVPMatrix", "mat4x4<f32>", func(s *setter, cam camera.Camera, item *render_item.RenderItem) {
		s.mat4(cam.ViewProjectionMatrix().Mul4(item.WorldMatrix).Inv())
	}},
	{"hx_viewProjectionMatrix", "mat4x4<f32>", func(s *setter, cam camera.Camera, _ *render_item.RenderItem) {
		s.mat4(cam.ViewProjectionMatrix())
	}},
	{"hx_inverseViewProjectionMatrix", "mat4x4<f32>", func(s *setter, cam camera.Camera, _ *render_item.RenderItem) {
		s.mat4(cam.InverseViewProjectionMatrix())
	}},
	{"hx_normalWorldMatrix", "mat3x3<f32>", func(s *setter, _ camera.Camera, item *render_item.RenderItem) {
		s.mat3(normalMatrix(item.WorldMatrix))
	}},
	{"hx_normalWorldViewMatrix", "mat3x3<f32>", func(s *setter, cam camera.Camera, item *render_item.RenderItem) {
		s.mat3(normalMatrix(cam.ViewMatrix().Mul4(item.WorldMatrix)))
	}},
	{"hx_cameraWorldPosition", "vec3<f32>", func(s *setter, cam camera.Camera, _ *render_item.RenderItem) {
		s.writer.SetVec3(s.loc, cam.WorldPosition())
	}},
	{"hx_cameraWorldMatrix", "mat4x4<f32>", func(s *setter, cam camera.Camera, _ *render_item.RenderItem) {
		s.mat4(cam.WorldMatrix())
	}},
	{"hx_cameraFrustumRange", "f32", func(s *setter, cam camera.Camera, _ *render_item.RenderItem) {
		s.writer.SetFloat(s.loc, cam.Far()-cam.Near())
	}},
	{"hx_rcpCameraFrustumRange", "f32", func(s *setter, cam camera.Camera, _ *render_item.RenderItem) {
		s.writer.SetFloat(s.loc, 1/(cam.Far()-cam.Near()))
	}},
	{"hx_cameraNearPlaneDistance", "f32", func(s *setter, cam camera.Camera, _ *render_item.RenderItem) {
		s.writer.SetFloat(s.loc, cam.Near())
	}},
	{"hx_cameraFarPlaneDistance", "f32", func(s *setter, cam camera.Camera, _ *render_item.RenderItem) {
		s.writer.SetFloat(s.loc, cam.Far())
	}},
	{"hx_renderTargetResolution", "vec2<f32>", func(s *setter, cam camera.Camera, _ *render_item.RenderItem) {
		w, h := cam.RenderTargetSize()
		s.writer.SetVec2(s.loc, mgl32.Vec2{float32(w), float32(h)})
	}},
	{"hx_rcpRenderTargetResolution", "vec2<f32>", func(s *setter, cam camera.Camera, _ *render_item.RenderItem) {
		w, h := cam.RenderTargetSize()
		s.writer.SetVec2(s.loc, mgl32.Vec2{1 / float32(max(w, 1)), 1 / float32(max(h, 1))})
	}},
	{"hx_dither2DTextureScale", "vec2<f32>", func(s *setter, cam camera.Camera, _ *render_item.RenderItem) {
		w, h := cam.RenderTargetSize()
		s.writer.SetVec2(s.loc, mgl32.Vec2{float32(w) / DitherTextureSize, float32(h) / DitherTextureSize})
	}},
	{"hx_skinningMatrices", "array<mat4x4<f32>, 64>", writeSkinning},
	{"hx_poissonDisk", "array<vec4<f32>, 32>", writePoissonDisk},
}

// normalMatrix is the inverse transpose of the upper 3x3 of m.
func normalMatrix(m mgl32.Mat4) mgl32.Mat3 {
	return m.Mat3().Inv().Transpose()
}

// writeSkinning uploads the item's joint matrices. Items without a skeleton leave the
// uniform untouched.
func writeSkinning(s *setter, _ camera.Camera, item *render_item.RenderItem) {
	if item.Skeleton == nil || len(item.SkeletonMatrices) == 0 {
		return
	}
	n := min(len(item.SkeletonMatrices), scene.MaxSkinningJoints)
	if cap(s.floats) < n*16 {
		s.floats = make([]float32, 0, scene.MaxSkinningJoints*16)
	}
	s.floats = s.floats[:0]
	for _, m := range item.SkeletonMatrices[:n] {
		s.floats = append(s.floats, m[:]...)
	}
	s.writer.SetFloatArray(s.loc, s.floats)
}

func writePoissonDisk(s *setter, _ camera.Camera, _ *render_item.RenderItem) {
	s.writer.SetFloatArray(s.loc, poissonDiskData[:])
}

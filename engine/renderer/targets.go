package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/helix-go/common"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/material"
)

// Render target labels.
const (
	TargetGBufferAlbedo      = "gbuffer_albedo"
	TargetGBufferNormalDepth = "gbuffer_normal_depth"
	TargetGBufferSpecular    = "gbuffer_specular"
	TargetHDR                = "hdr"
	TargetPostA              = "post_a"
	TargetPostB              = "post_b"
	TargetShadowAtlas        = "shadow_atlas"
	TargetBackBuffer         = "backbuffer"
)

// gbufferLabels is indexed like material.GBufferPasses.
var gbufferLabels = [len(material.GBufferPasses)]string{
	TargetGBufferAlbedo,
	TargetGBufferNormalDepth,
	TargetGBufferSpecular,
}

// gbufferTextures are the names the G-buffer attachments are bound under, indexed like
// material.GBufferPasses.
var gbufferTextures = [len(material.GBufferPasses)]string{
	"hx_gbufferAlbedo",
	"hx_gbufferNormalDepth",
	"hx_gbufferSpecular",
}

const (
	shadowMapTexture = "hx_shadowMap"
	sourceTexture    = "hx_source"
)

// targetSet owns the offscreen targets of the frame graph. A target that failed to build is
// left nil and every stage drawing to it becomes a no-op until the next resize.
type targetSet struct {
	b backend.Backend

	width, height int
	built         bool

	gbuffer [len(material.GBufferPasses)]backend.RenderTarget
	hdr     backend.RenderTarget
	post    [2]backend.RenderTarget

	shadow            backend.RenderTarget
	shadowW, shadowH  int
	shadowUnavailable bool
}

func newTargetSet(b backend.Backend) *targetSet {
	return &targetSet{b: b}
}

// ensure (re)creates the screen-sized targets when the back buffer size changed. Incomplete
// framebuffers are reported through report and leave the target nil; any other failure is
// returned.
func (t *targetSet) ensure(report func(label string, err error)) error {
	w, h := t.b.Size()
	w, h = max(w, 1), max(h, 1)
	if t.built && w == t.width && h == t.height {
		return nil
	}
	t.releaseScreen()
	t.built = false

	if err := t.createScreen(w, h, report); err != nil {
		t.releaseScreen()
		return err
	}
	t.width, t.height = w, h
	t.built = true
	common.Logger().Debug("render targets created", "width", w, "height", h)
	return nil
}

// createScreen builds every screen-sized target, stopping at the first fatal failure.
func (t *targetSet) createScreen(w, h int, report func(label string, err error)) error {
	var err error
	for i, label := range gbufferLabels {
		if t.gbuffer[i], err = t.create(label, w, h, report); err != nil {
			return err
		}
	}
	if t.hdr, err = t.create(TargetHDR, w, h, report); err != nil {
		return err
	}
	for i, label := range []string{TargetPostA, TargetPostB} {
		if t.post[i], err = t.create(label, w, h, report); err != nil {
			return err
		}
	}
	return nil
}

// ensureShadowAtlas returns an atlas of cascades square tiles of resolution texels laid out
// horizontally, or nil when it could not be created.
func (t *targetSet) ensureShadowAtlas(cascades, resolution int, report func(label string, err error)) (backend.RenderTarget, error) {
	w, h := cascades*resolution, resolution
	if t.shadow != nil && t.shadowW == w && t.shadowH == h {
		return t.shadow, nil
	}
	if t.shadowUnavailable && t.shadowW == w && t.shadowH == h {
		return nil, nil
	}
	if t.shadow != nil {
		t.shadow.Release()
		t.shadow = nil
	}
	t.shadowW, t.shadowH = w, h
	t.shadowUnavailable = false

	if limit := t.b.Capabilities().MaxTextureSize; limit > 0 && w > limit {
		t.shadowUnavailable = true
		report(TargetShadowAtlas, fmt.Errorf("shadow atlas %dx%d exceeds max texture size %d: %w", w, h, limit, backend.ErrFramebufferIncomplete))
		return nil, nil
	}

	rt, err := t.b.CreateRenderTarget(backend.RenderTargetDescriptor{
		Label:        TargetShadowAtlas,
		Width:        w,
		Height:       h,
		Depth:        true,
		DepthSampled: true,
	})
	if err != nil {
		if errors.Is(err, backend.ErrFramebufferIncomplete) {
			t.shadowUnavailable = true
			report(TargetShadowAtlas, err)
			return nil, nil
		}
		return nil, err
	}
	t.shadow = rt
	return rt, nil
}

// create builds an RGBA16F target with a depth attachment.
func (t *targetSet) create(label string, w, h int, report func(string, error)) (backend.RenderTarget, error) {
	rt, err := t.b.CreateRenderTarget(backend.RenderTargetDescriptor{
		Label:        label,
		Width:        w,
		Height:       h,
		ColorFormats: []backend.TextureFormat{backend.FormatRGBA16F},
		Depth:        true,
	})
	if err == nil {
		return rt, nil
	}
	if errors.Is(err, backend.ErrFramebufferIncomplete) {
		report(label, err)
		return nil, nil
	}
	return nil, fmt.Errorf("failed to create render target %s: %w", label, err)
}

// invalidate forces the screen targets to be rebuilt on the next ensure.
func (t *targetSet) invalidate() {
	t.built = false
}

func (t *targetSet) releaseScreen() {
	for i, rt := range t.gbuffer {
		if rt != nil {
			rt.Release()
			t.gbuffer[i] = nil
		}
	}
	if t.hdr != nil {
		t.hdr.Release()
		t.hdr = nil
	}
	for i, rt := range t.post {
		if rt != nil {
			rt.Release()
			t.post[i] = nil
		}
	}
}

func (t *targetSet) release() {
	t.releaseScreen()
	if t.shadow != nil {
		t.shadow.Release()
		t.shadow = nil
	}
	t.built = false
}

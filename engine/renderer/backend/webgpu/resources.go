package webgpu

import (
	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

// mesh is uploaded interleaved geometry.
type mesh struct {
	label    string
	vertices *wgpu.Buffer
	indices  *wgpu.Buffer
	count    int
	stride   uint64
}

var _ backend.Mesh = &mesh{}

func (m *mesh) NumIndices() int {
	return m.count
}

func (m *mesh) Release() {
	if m.vertices != nil {
		m.vertices.Release()
		m.vertices = nil
	}
	if m.indices != nil {
		m.indices.Release()
		m.indices = nil
	}
}

// texture is a sampled view of an attachment.
type texture struct {
	tex    *wgpu.Texture
	view   *wgpu.TextureView
	width  int
	height int
	depth  bool
}

var _ backend.Texture = &texture{}

func (t *texture) Width() int  { return t.width }
func (t *texture) Height() int { return t.height }

func (t *texture) release() {
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.tex != nil {
		t.tex.Release()
		t.tex = nil
	}
}

// renderTarget is a set of offscreen attachments.
type renderTarget struct {
	label  string
	width  int
	height int
	colors []*texture
	depth  *texture
	sig    targetSignature
}

var _ backend.RenderTarget = &renderTarget{}

func (r *renderTarget) Width() int  { return r.width }
func (r *renderTarget) Height() int { return r.height }

func (r *renderTarget) ColorTexture(i int) backend.Texture {
	if i < 0 || i >= len(r.colors) {
		return nil
	}
	return r.colors[i]
}

func (r *renderTarget) DepthTexture() backend.Texture {
	if r.depth == nil {
		return nil
	}
	return r.depth
}

func (r *renderTarget) Release() {
	for _, c := range r.colors {
		c.release()
	}
	r.colors = nil
	if r.depth != nil {
		r.depth.release()
		r.depth = nil
	}
}

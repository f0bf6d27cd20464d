package renderer

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/helix-go/common"
	"github.com/Carmen-Shannon/helix-go/engine/camera"
	"github.com/Carmen-Shannon/helix-go/engine/light"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/collector"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/effect"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/material"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/render_item"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/helix-go/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrFloatTargetsUnsupported is returned by NewRenderer when the device cannot render to
// 16-bit float targets, which the G-buffer and HDR targets require.
var ErrFloatTargetsUnsupported = errors.New("renderer requires float render targets")

const (
	skinningDefine          = "HX_USE_SKINNING"
	directionalLightUniform = "hx_directionalLight"
	localLightsUniform      = "hx_localLights"
	ambientUniform          = "hx_ambientColor"
)

const (
	fullscreenVertexSource = "//@hx:include hx_fullscreen_vertex\n"
	lightingFragmentSource = "//@hx:include hx_deferred_lighting\n"
)

// lightingState draws the lighting pass over the whole target and writes the depth it
// reconstructs from the G-buffer.
var lightingState = backend.RenderState{Cull: backend.CullNone, Blend: backend.BlendNone, DepthTest: false, DepthWrite: true}

// postState draws a full-screen post-process step.
var postState = backend.RenderState{Cull: backend.CullNone, Blend: backend.BlendNone}

// defineKey identifies the define set of one item. Materials and passes are immutable once
// built, so the merged set is computed once per combination.
type defineKey struct {
	pass     material.Pass
	material material.Material
	skinned  bool
}

// programBindings caches the renderer-owned locations of one program. The frame-constant
// values they receive are written once per frame.
type programBindings struct {
	light      backend.UniformLocation
	hasLight   bool
	local      backend.UniformLocation
	hasLocal   bool
	ambient    backend.UniformLocation
	hasAmbient bool
	frame      uint64
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backend   backend.Backend
	ctx       *RenderContext
	lib       shader.Library
	libSeen   uint64
	collector collector.RenderCollector
	shadows   collector.CascadeShadowCasterCollector
	cascades  *light.CascadeShadows
	targets   *targetSet
	gamma     effect.Effect
	effects   []effect.Effect

	defines  map[defineKey]shader.Defines
	bindings map[*shader.CachedProgram]*programBindings

	// frame state
	stage       atomic.Int32
	lightData   []float32
	localLights light.GPULocalLights
	ambient     mgl32.Vec4
	shadowAtlas backend.RenderTarget
	fullscreen  render_item.RenderItem
	stats       Stats

	// builder configuration
	lightingModel    material.LightingModel
	cascadeCount     int
	splitRatios      []float32
	shadowResolution int
	retention        uint64
	sweepInterval    uint64
	poolLimit        int
	workers          int
	clearColor       [4]float32
}

// Renderer draws a scene through the fixed frame graph: opaque collection, cascaded shadow
// maps, the deferred G-buffer and lighting passes, forward rendering, post-processing and
// presentation.
//
// Programs are compiled on first use and cached by source and defines. A program that fails to
// compile is cached as failed; every draw using it is skipped and reported as a diagnostic until
// the shader library changes. Renderer is driven from one thread; only Stage may be read
// concurrently.
type Renderer interface {
	// Render draws one frame of s as seen by cam.
	//
	// Parameters:
	//   - cam: the view camera
	//   - s: the scene, updated by the renderer before collection
	//
	// Returns:
	//   - error: a *FatalError when the frame was aborted, nil otherwise
	Render(cam camera.Camera, s scene.Scene) error

	// Stage returns the stage currently executing, StageIdle between frames.
	Stage() Stage

	// Frame returns the number of the last frame started.
	Frame() uint64

	// Diagnostics returns the non-fatal problems raised by the last frame.
	//
	// Returns:
	//   - []Diagnostic: a copy, in the order they were raised
	Diagnostics() []Diagnostic

	// Stats returns counters of the last frame.
	Stats() Stats

	// ProgramCache returns the cache holding every compiled program.
	ProgramCache() shader.ProgramCache

	// Library returns the shader snippet library programs are expanded against. Changing it
	// invalidates the program cache at the start of the next frame.
	Library() shader.Library

	// AddEffect appends a post-process effect. Effects run in insertion order, before the final
	// gamma step.
	//
	// Parameters:
	//   - e: the effect
	AddEffect(e effect.Effect)

	// RemoveEffect removes a previously added effect.
	//
	// Parameters:
	//   - e: the effect
	RemoveEffect(e effect.Effect)

	// Effects returns the post-process effects in run order.
	Effects() []effect.Effect

	// Resize resizes the back buffer. Screen-sized targets are rebuilt on the next frame.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// Release frees every program, target and worker owned by the renderer. The backend is
	// owned by the caller and stays alive.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a renderer drawing through b.
//
// Parameters:
//   - b: the GPU backend
//   - options: functional options
//
// Returns:
//   - Renderer: the renderer
//   - error: ErrFloatTargetsUnsupported when b cannot render to float targets
func NewRenderer(b backend.Backend, options ...RendererBuilderOption) (Renderer, error) {
	if b == nil {
		panic("renderer: backend is required")
	}
	if !b.Capabilities().FloatRenderTargets {
		return nil, fmt.Errorf("%w: %w", ErrFloatTargetsUnsupported, backend.ErrUnsupportedCapability)
	}

	r := &renderer{
		mu:               &sync.Mutex{},
		backend:          b,
		targets:          newTargetSet(b),
		gamma:            effect.NewGamma(),
		defines:          map[defineKey]shader.Defines{},
		bindings:         map[*shader.CachedProgram]*programBindings{},
		lightingModel:    material.LightingModelGGX,
		cascadeCount:     light.MaxCascades,
		shadowResolution: light.DefaultShadowMapResolution,
		retention:        shader.DefaultRetentionFrames,
		sweepInterval:    DefaultSweepInterval,
		workers:          1,
		fullscreen:       render_item.RenderItem{WorldMatrix: mgl32.Ident4()},
	}
	for _, option := range options {
		option(r)
	}
	if r.lib == nil {
		r.lib = shader.NewLibrary()
	}
	r.libSeen = r.lib.Version()

	cascadeOptions := []light.CascadeBuilderOption{
		light.WithCascadeCount(r.cascadeCount),
		light.WithResolution(r.shadowResolution),
	}
	if len(r.splitRatios) > 0 {
		cascadeOptions = append(cascadeOptions, light.WithSplitRatios(r.splitRatios...))
	}
	r.cascades = light.NewCascadeShadows(cascadeOptions...)

	collectorOptions := []collector.CollectorBuilderOption{collector.WithWorkers(r.workers)}
	if r.poolLimit > 0 {
		collectorOptions = append(collectorOptions, collector.WithPoolLimit(r.poolLimit))
	}
	r.collector = collector.NewRenderCollector(collectorOptions...)
	r.shadows = collector.NewCascadeShadowCasterCollector(r.cascades.NumCascades(), r.shadowCollectorOptions()...)

	programs := shader.NewProgramCache(b, shader.NewPreProcessor(r.lib), shader.WithRetention(r.retention))
	r.ctx = newRenderContext(b, programs)
	r.lightData = make([]float32, len((&light.GPUDirectionalLight{}).Floats()))

	common.Logger().Info("renderer created",
		"backend", b.Type(),
		"lighting_model", r.lightingModel.String(),
		"cascades", r.cascades.NumCascades(),
		"shadow_resolution", r.cascades.Resolution(),
		"workers", r.workers)
	return r, nil
}

func (r *renderer) shadowCollectorOptions() []collector.CollectorBuilderOption {
	if r.poolLimit > 0 {
		return []collector.CollectorBuilderOption{collector.WithPoolLimit(r.poolLimit)}
	}
	return nil
}

func (r *renderer) Render(cam camera.Camera, s scene.Scene) error {
	if cam == nil || s == nil {
		return errors.New("renderer: camera and scene are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.setStage(StageIdle)

	r.ctx.beginFrame(cam)
	r.stats = Stats{Frame: r.ctx.Frame}
	r.setStage(StageIdle)

	if v := r.lib.Version(); v != r.libSeen {
		r.libSeen = v
		r.invalidatePrograms()
		common.Logger().Info("shader library changed, programs invalidated", "version", v)
	}
	if r.sweepInterval > 0 && r.ctx.Frame%r.sweepInterval == 0 {
		if n := r.ctx.Programs.Sweep(r.ctx.Frame); n > 0 {
			clear(r.bindings)
		}
	}

	if err := r.targets.ensure(r.reportTarget); err != nil {
		return r.ctx.fatal(err)
	}
	if err := r.backend.BeginFrame(); err != nil {
		return r.ctx.fatal(err)
	}

	r.setStage(StageCollectOpaque)
	s.Update()
	if err := r.collector.Collect(cam, s); err != nil {
		return r.ctx.fatal(err)
	}
	r.stats.OpaqueItems = r.collector.NumItems()
	r.packLights(s)

	r.setStage(StageCollectShadows)
	if err := r.renderShadows(cam, s); err != nil {
		return r.ctx.fatal(err)
	}

	r.setStage(StageDeferredGBuffer)
	if err := r.renderGBuffer(); err != nil {
		return r.ctx.fatal(err)
	}

	r.setStage(StageDeferredLighting)
	if err := r.renderLighting(cam); err != nil {
		return r.ctx.fatal(err)
	}

	r.setStage(StageForward)
	if err := r.renderForward(); err != nil {
		return r.ctx.fatal(err)
	}

	r.setStage(StagePostProcess)
	if err := r.renderPost(cam); err != nil {
		return r.ctx.fatal(err)
	}

	r.setStage(StagePresent)
	if err := r.backend.EndFrame(); err != nil {
		return r.ctx.fatal(err)
	}
	r.backend.Present()

	r.stats.Programs = r.ctx.Programs.Len()
	return nil
}

func (r *renderer) setStage(s Stage) {
	r.ctx.Stage = s
	r.stage.Store(int32(s))
}

func (r *renderer) reportTarget(label string, err error) {
	r.ctx.Report("target:"+label, SeverityWarning, err)
}

func (r *renderer) invalidatePrograms() {
	r.ctx.Programs.Invalidate()
	clear(r.bindings)
	r.ctx.forgetReports()
}

// packLights stores the frame-constant light uniforms. The first enabled directional light
// is the key light; its shadow fields are filled in once its shadow maps are drawn. Enabled
// point and spot lights are packed up to light.MaxLocalLights.
func (r *renderer) packLights(s scene.Scene) {
	ambient := s.AmbientColor()
	r.ambient = mgl32.Vec4{ambient[0], ambient[1], ambient[2], 1}
	clear(r.lightData)
	if l := keyLight(s.Lights()); l != nil {
		g := light.PackDirectionalLight(l, nil)
		copy(r.lightData, g.Floats())
	}

	var dropped int
	r.localLights, dropped = light.PackLocalLights(s.Lights())
	if dropped > 0 {
		r.ctx.Report("lights:"+s.Name(), SeverityWarning,
			fmt.Errorf("scene %s: %d local lights beyond the limit of %d are not shaded", s.Name(), dropped, light.MaxLocalLights))
	}
}

// keyLight returns the first enabled directional light.
func keyLight(lights []light.Light) light.Light {
	for _, l := range lights {
		if l.Type() == light.LightTypeDirectional && l.Enabled() {
			return l
		}
	}
	return nil
}

func (r *renderer) renderShadows(cam camera.Camera, s scene.Scene) error {
	r.shadowAtlas = nil
	l := keyLight(s.Lights())
	if l == nil || !l.CastsShadows() {
		return nil
	}
	cs := l.Shadows()
	if cs == nil {
		cs = r.cascades
	}

	atlas, err := r.targets.ensureShadowAtlas(cs.NumCascades(), cs.Resolution(), r.reportTarget)
	if err != nil {
		return err
	}
	if atlas == nil {
		return nil
	}

	cs.Update(cam, l.Direction(), s.Bounds())
	if r.shadows.NumCascades() != cs.NumCascades() {
		r.shadows = collector.NewCascadeShadowCasterCollector(cs.NumCascades(), r.shadowCollectorOptions()...)
	}
	r.shadows.SetCascades(cs.Cascades())
	r.shadows.SetCullPlanes(cs.CullPlanes())
	if err := r.shadows.Collect(cam, s); err != nil {
		return err
	}

	r.backend.SetRenderTarget(atlas, backend.ClearOptions{ClearDepth: true, Depth: 1})
	res := cs.Resolution()
	for i := range cs.NumCascades() {
		r.backend.SetViewport(i*res, 0, res, res)
		list := r.shadows.RenderList(i)
		r.stats.ShadowItems += list.Len()
		if err := r.drawList(list); err != nil {
			return err
		}
	}

	g := light.PackDirectionalLight(l, cs)
	copy(r.lightData, g.Floats())
	r.shadowAtlas = atlas
	return nil
}

func (r *renderer) renderGBuffer() error {
	for i, pass := range material.GBufferPasses {
		target := r.targets.gbuffer[i]
		if target == nil {
			continue
		}
		r.backend.SetRenderTarget(target, backend.ClearOptions{ClearColor: true, ClearDepth: true, Depth: 1})
		list := r.collector.RenderList(pass)
		list.SortFrontToBack()
		if err := r.drawList(list); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) gbufferComplete() bool {
	for _, t := range r.targets.gbuffer {
		if t == nil {
			return false
		}
	}
	return true
}

func (r *renderer) renderLighting(cam camera.Camera) error {
	if r.targets.hdr == nil {
		return nil
	}
	r.backend.SetRenderTarget(r.targets.hdr, backend.ClearOptions{ClearColor: true, Color: r.clearColor, ClearDepth: true, Depth: 1})
	if !r.gbufferComplete() {
		return nil
	}
	var defines shader.Defines
	if d := r.lightingModel.Define(); d != "" {
		defines = shader.Defines{d: ""}
	}
	return r.drawFullscreen(cam, fullscreenVertexSource, lightingFragmentSource, defines, lightingState, nil)
}

func (r *renderer) renderForward() error {
	if r.targets.hdr == nil {
		return nil
	}
	r.backend.SetRenderTarget(r.targets.hdr, backend.ClearOptions{})
	list := r.collector.ForwardList()
	list.SortBackToFront()
	return r.drawList(list)
}

func (r *renderer) renderPost(cam camera.Camera) error {
	src := r.targets.hdr
	next := 0
	for _, e := range r.effects {
		if !e.Enabled() || src == nil {
			continue
		}
		dst := r.targets.post[next]
		if dst == nil {
			continue
		}
		r.backend.SetRenderTarget(dst, backend.ClearOptions{ClearColor: true})
		if err := r.drawEffect(cam, e, src); err != nil {
			return err
		}
		src = dst
		next = 1 - next
	}

	r.backend.SetRenderTarget(nil, backend.ClearOptions{ClearColor: true, Color: r.clearColor, ClearDepth: true, Depth: 1})
	if src == nil {
		return nil
	}
	return r.drawEffect(cam, r.gamma, src)
}

func (r *renderer) drawEffect(cam camera.Camera, e effect.Effect, src backend.RenderTarget) error {
	return r.drawFullscreen(cam, e.VertexSource(), e.FragmentSource(), e.Defines(), postState, func(p backend.Program) {
		p.SetTexture(sourceTexture, src.ColorTexture(0))
		e.Apply(p)
	})
}

// drawFullscreen draws one full-screen triangle with the program built from the given
// sources. apply runs after the renderer-owned uniforms are written.
func (r *renderer) drawFullscreen(cam camera.Camera, vs, fs string, defines shader.Defines, state backend.RenderState, apply func(backend.Program)) error {
	entry, err := r.ctx.Programs.Get(vs, fs, defines)
	if err != nil {
		r.skip(entry, err)
		return nil
	}
	p := entry.Program()
	r.backend.UseProgram(p, state)
	r.fullscreen.Camera = cam
	for _, s := range entry.Setters() {
		s.Execute(cam, &r.fullscreen)
	}
	r.prepare(entry)
	if apply != nil {
		apply(p)
	}
	if err := r.backend.DrawFullscreen(); err != nil {
		return r.drawFailed(err)
	}
	r.stats.Draws++
	return nil
}

func (r *renderer) drawList(list *render_item.List) error {
	for _, item := range list.Items() {
		if err := r.drawItem(item); err != nil {
			return err
		}
	}
	return nil
}

// drawItem draws one item with the camera it was collected for. Non-fatal failures skip the
// item and leave a diagnostic; fatal backend errors are returned.
func (r *renderer) drawItem(item *render_item.RenderItem) error {
	pass := item.Pass
	entry, err := r.ctx.Programs.Get(pass.VertexSource(), pass.FragmentSource(), r.definesFor(item))
	if err != nil {
		r.skip(entry, err)
		return nil
	}

	mesh, err := item.MeshInstance.Mesh.GPUMesh(r.backend)
	if err != nil {
		if backend.IsFatal(err) {
			return err
		}
		r.ctx.Report("mesh:"+item.MeshInstance.Mesh.Name(), SeverityError, err)
		r.stats.SkippedDraws++
		return nil
	}

	p := entry.Program()
	r.backend.UseProgram(p, pass.RenderState())
	for _, s := range entry.Setters() {
		s.Execute(item.Camera, item)
	}
	r.prepare(entry)
	item.Material.Apply(p)

	if err := r.backend.Draw(mesh); err != nil {
		return r.drawFailed(err)
	}
	r.stats.Draws++
	return nil
}

func (r *renderer) skip(entry *shader.CachedProgram, err error) {
	key := ""
	if entry != nil {
		key = "program:" + entry.Key()
	}
	r.ctx.Report(key, SeverityError, err)
	r.stats.SkippedDraws++
}

func (r *renderer) drawFailed(err error) error {
	if backend.IsFatal(err) {
		return err
	}
	r.ctx.Report("", SeverityError, err)
	r.stats.SkippedDraws++
	return nil
}

// definesFor returns the define set an item's program is compiled with.
func (r *renderer) definesFor(item *render_item.RenderItem) shader.Defines {
	k := defineKey{pass: item.Pass, material: item.Material, skinned: item.Skeleton != nil}
	if d, ok := r.defines[k]; ok {
		return d
	}
	d := shader.Defines(item.Pass.Defines()).Merge(item.Material.Defines())
	if k.skinned {
		d[skinningDefine] = ""
	}
	if item.Material.LightingModel() == material.LightingModelDefault {
		if model := r.lightingModel.Define(); model != "" {
			d[model] = ""
		}
	}
	r.defines[k] = d
	return d
}

// prepare writes the frame-constant uniforms and textures of a program, once per frame.
func (r *renderer) prepare(entry *shader.CachedProgram) {
	pb, ok := r.bindings[entry]
	if !ok {
		p := entry.Program()
		pb = &programBindings{}
		pb.light, pb.hasLight = p.UniformLocation(directionalLightUniform)
		pb.local, pb.hasLocal = p.UniformLocation(localLightsUniform)
		pb.ambient, pb.hasAmbient = p.UniformLocation(ambientUniform)
		r.bindings[entry] = pb
	}
	if pb.frame == r.ctx.Frame {
		return
	}
	pb.frame = r.ctx.Frame

	p := entry.Program()
	if pb.hasLight {
		p.SetFloatArray(pb.light, r.lightData)
	}
	if pb.hasLocal {
		p.SetFloatArray(pb.local, r.localLights.Floats())
	}
	if pb.hasAmbient {
		p.SetVec4(pb.ambient, r.ambient)
	}
	for i, t := range r.targets.gbuffer {
		if t != nil {
			p.SetTexture(gbufferTextures[i], t.ColorTexture(0))
		}
	}
	if r.shadowAtlas != nil {
		p.SetTexture(shadowMapTexture, r.shadowAtlas.DepthTexture())
	}
}

func (r *renderer) Stage() Stage {
	return Stage(r.stage.Load())
}

func (r *renderer) Frame() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctx.Frame
}

func (r *renderer) Diagnostics() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctx.Diagnostics()
}

func (r *renderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *renderer) ProgramCache() shader.ProgramCache {
	return r.ctx.Programs
}

func (r *renderer) Library() shader.Library {
	return r.lib
}

func (r *renderer) AddEffect(e effect.Effect) {
	if e == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.effects = append(r.effects, e)
}

func (r *renderer) RemoveEffect(e effect.Effect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := slices.Index(r.effects, e); i >= 0 {
		r.effects = slices.Delete(r.effects, i, i+1)
	}
}

func (r *renderer) Effects() []effect.Effect {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.effects)
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.Resize(width, height)
	r.targets.invalidate()
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collector.Release()
	r.targets.release()
	r.ctx.release()
	clear(r.bindings)
	clear(r.defines)
	r.shadowAtlas = nil
}

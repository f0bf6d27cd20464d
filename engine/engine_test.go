package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/helix-go/common"
	"github.com/Carmen-Shannon/helix-go/engine/camera"
	"github.com/Carmen-Shannon/helix-go/engine/renderer"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend/backendtest"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/material"
	"github.com/Carmen-Shannon/helix-go/engine/scene"
	"github.com/Carmen-Shannon/helix-go/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWindow is a window whose event loop is scripted by the test.
type fakeWindow struct {
	polls    int
	closeAt  int
	onPoll   func(n int)
	onResize func(width, height int)
	width    int
	height   int
	closed   bool
}

var _ window.Window = &fakeWindow{}

func (w *fakeWindow) SetResizeCallback(cb func(width, height int)) { w.onResize = cb }
func (w *fakeWindow) SetScrollCallback(func(float32))              {}
func (w *fakeWindow) SetKeyDownCallback(func(common.Key))          {}
func (w *fakeWindow) SetKeyUpCallback(func(common.Key))            {}
func (w *fakeWindow) SetDragCallback(func(dx, dy float32))         {}
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor   { return nil }
func (w *fakeWindow) IsRunning() bool                              { return !w.closed }
func (w *fakeWindow) Close() error                                 { w.closed = true; return nil }
func (w *fakeWindow) Width() int                                   { return w.width }
func (w *fakeWindow) Height() int                                  { return w.height }

func (w *fakeWindow) PollEvents() bool {
	w.polls++
	if w.onPoll != nil {
		w.onPoll(w.polls)
	}
	if w.closeAt > 0 && w.polls >= w.closeAt {
		w.closed = true
	}
	return !w.closed
}

func box(name string) *scene.Node {
	mesh := scene.NewMesh(name, []float32{-1, -1, -6, 1, 1, -4}, 3, []uint32{0, 1, 0})
	inst := &scene.MeshInstance{Mesh: mesh, Material: material.NewMaterial(name)}
	return scene.NewNode(name, scene.WithModel(scene.NewModelInstance(inst)))
}

func testCamera() camera.Camera {
	return camera.NewCamera(
		camera.WithPerspective(mgl32.DegToRad(60), 16.0/9.0, 0.5, 100),
		camera.WithLookAt(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}),
	)
}

func newTestEngine(t *testing.T, rendererOptions []renderer.RendererBuilderOption, options ...EngineBuilderOption) (*engine, *backendtest.Backend) {
	t.Helper()
	b := backendtest.New()
	r, err := renderer.NewRenderer(b, rendererOptions...)
	require.NoError(t, err)
	t.Cleanup(r.Release)
	e := NewEngine(r, testCamera(), options...).(*engine)
	return e, b
}

// quitAfter quits the engine once n frames have been rendered.
func quitAfter(e Engine, n int) {
	frames := 0
	e.SetRenderCallback(func(float32) {
		frames++
		if frames >= n {
			e.Quit()
		}
	})
}

func meshesDrawn(b *backendtest.Backend) map[string]bool {
	out := map[string]bool{}
	for _, d := range b.Draws {
		if d.Mesh != nil {
			out[d.Mesh.Label] = true
		}
	}
	return out
}

func TestNewEnginePanicsWithoutRenderer(t *testing.T) {
	assert.Panics(t, func() { NewEngine(nil, testCamera()) })
}

func TestRunRendersLowestActiveScene(t *testing.T) {
	e, b := newTestEngine(t, nil,
		WithScene(1, scene.NewScene("hidden", scene.WithActive(false), scene.WithNodes(box("hidden")))),
		WithScene(2, scene.NewScene("main", scene.WithNodes(box("main")))),
		WithScene(3, scene.NewScene("overlay", scene.WithNodes(box("overlay")))),
	)
	quitAfter(e, 3)

	require.NoError(t, e.Run(context.Background()))

	assert.Equal(t, 3, b.Presents)
	assert.Equal(t, map[string]bool{"main": true}, meshesDrawn(b))
}

func TestRunWithoutActiveSceneSkipsRendering(t *testing.T) {
	e, b := newTestEngine(t, nil)
	quitAfter(e, 2)

	require.NoError(t, e.Run(context.Background()))
	assert.Zero(t, b.Frames)
}

func TestRunStopsWhenWindowCloses(t *testing.T) {
	w := &fakeWindow{closeAt: 4, width: 1280, height: 720}
	e, b := newTestEngine(t, nil,
		WithWindow(w),
		WithScene(0, scene.NewScene("main", scene.WithNodes(box("main")))),
	)

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, 4, w.polls)
	assert.Equal(t, 3, b.Presents)
}

func TestRunStopsWhenContextDone(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	e.SetRenderCallback(func(float32) {
		calls++
		cancel()
	})

	require.NoError(t, e.Run(ctx))
	assert.Equal(t, 1, calls)
}

func TestRunStopsOnContextLost(t *testing.T) {
	e, b := newTestEngine(t, nil, WithScene(0, scene.NewScene("main", scene.WithNodes(box("main")))))
	b.ContextLost = true

	err := e.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, backend.ErrContextLost))

	var fe *renderer.FatalError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, renderer.StageIdle, fe.Stage)
}

func TestRunContinuesAfterAbortedFrame(t *testing.T) {
	e, b := newTestEngine(t,
		[]renderer.RendererBuilderOption{renderer.WithRenderItemPoolLimit(1)},
		WithScene(0, scene.NewScene("main", scene.WithNodes(box("a"), box("b"), box("c")))),
	)
	quitAfter(e, 3)

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, 3, b.Frames)
	assert.Zero(t, b.Presents)
}

func TestTickCallbackRunsAtFixedRate(t *testing.T) {
	e, _ := newTestEngine(t, nil, WithTickRate(20))
	clock := time.Unix(0, 0)
	e.now = func() time.Time { return clock }

	var ticks []float32
	e.SetTickCallback(func(dt float32) { ticks = append(ticks, dt) })

	frames := 0
	e.SetRenderCallback(func(float32) {
		frames++
		switch {
		case frames < 4:
			clock = clock.Add(50 * time.Millisecond)
		case frames == 4:
			clock = clock.Add(10 * time.Second)
		default:
			e.Quit()
		}
	})

	require.NoError(t, e.Run(context.Background()))
	// three regular ticks, then a long frame capped at maxTicksPerFrame
	require.Len(t, ticks, 3+maxTicksPerFrame)
	for _, dt := range ticks {
		assert.InDelta(t, 0.05, dt, 1e-6)
	}
}

func TestFrameLimitSleepsRemainder(t *testing.T) {
	e, _ := newTestEngine(t, nil, WithRenderFrameLimit(10))
	clock := time.Unix(0, 0)
	e.now = func() time.Time { return clock }
	var slept []time.Duration
	e.sleep = func(d time.Duration) { slept = append(slept, d) }

	frames := 0
	e.SetRenderCallback(func(float32) {
		frames++
		clock = clock.Add(30 * time.Millisecond)
		if frames == 2 {
			e.Quit()
		}
	})

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, []time.Duration{70 * time.Millisecond, 70 * time.Millisecond}, slept)

	e.SetRenderFrameLimit(0)
	assert.Zero(t, e.renderFrameLimit)
}

func TestResizePropagatesToRendererAndCamera(t *testing.T) {
	w := &fakeWindow{width: 1280, height: 720}
	e, b := newTestEngine(t, nil, WithWindow(w))
	w.onPoll = func(n int) {
		if n == 1 {
			w.onResize(640, 480)
		}
	}
	quitAfter(e, 1)

	require.NoError(t, e.Run(context.Background()))

	width, height := b.Size()
	assert.Equal(t, 640, width)
	assert.Equal(t, 480, height)
	assert.InDelta(t, 640.0/480.0, e.Camera().Aspect(), 1e-6)

	tw, th := e.Camera().RenderTargetSize()
	assert.Equal(t, 640, tw)
	assert.Equal(t, 480, th)
}

func TestProfilerTicksWhenEnabled(t *testing.T) {
	e, _ := newTestEngine(t, nil, WithProfiling(true))
	require.True(t, e.profilingEnabled)
	e.DisableProfiler()
	assert.False(t, e.profilingEnabled)
	e.EnableProfiler()

	quitAfter(e, 2)
	require.NoError(t, e.Run(context.Background()))
}

func TestSceneRegistry(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	s := scene.NewScene("main")
	e.AddScene(5, s)

	assert.Same(t, s, e.Scene(5))
	scenes := e.Scenes()
	delete(scenes, 5)
	assert.NotNil(t, e.Scene(5))

	e.RemoveScene(5)
	assert.Nil(t, e.Scene(5))
}

func TestActiveSceneUsesLowestActiveKey(t *testing.T) {
	low := scene.NewScene("low", scene.WithActive(true))
	mid := scene.NewScene("mid")
	high := scene.NewScene("high", scene.WithActive(true))
	e, _ := newTestEngine(t, nil, WithScene(7, high), WithScene(1, low))
	e.AddScene(4, mid)
	e.AddScene(4, mid)
	assert.Equal(t, []int{1, 4, 7}, e.sceneKeys)

	assert.Same(t, low, e.activeScene())
	mid.SetActive(true)
	e.RemoveScene(1)
	assert.Same(t, mid, e.activeScene())
	e.RemoveScene(9)
	assert.Equal(t, []int{4, 7}, e.sceneKeys)

	allocs := testing.AllocsPerRun(100, func() { e.activeScene() })
	assert.Zero(t, allocs)
}

func TestQuitIsIdempotent(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	e.Quit()
	assert.NotPanics(t, e.Quit)
	require.NoError(t, e.Run(context.Background()))
}

func TestSetTickRateDefaults(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	e.SetTickRate(0)
	assert.Equal(t, time.Second/60, e.engineTickRate)
	e.SetTickRate(120)
	assert.Equal(t, time.Second/120, e.engineTickRate)
}

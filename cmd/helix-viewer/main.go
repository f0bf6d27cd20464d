// Command helix-viewer opens a window and renders a small lit scene through the deferred
// pipeline. Settings come from an optional TOML or YAML file.
//
// Controls: middle-mouse drag orbits, the scroll wheel zooms, WASD pans, arrow keys orbit,
// F toggles fog, P toggles the sun's shadows, Escape quits.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/Carmen-Shannon/helix-go/common"
	"github.com/Carmen-Shannon/helix-go/engine"
	"github.com/Carmen-Shannon/helix-go/engine/camera"
	"github.com/Carmen-Shannon/helix-go/engine/config"
	"github.com/Carmen-Shannon/helix-go/engine/light"
	"github.com/Carmen-Shannon/helix-go/engine/renderer"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend/webgpu"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/effect"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/material"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/helix-go/engine/scene"
	"github.com/Carmen-Shannon/helix-go/engine/window"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func main() {
	configPath := flag.String("config", "", "path to a .toml or .yaml settings file")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(*configPath); err != nil {
		common.Logger().Error("viewer stopped", "err", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	w, err := window.NewWindow(cfg.WindowOptions()...)
	if err != nil {
		return err
	}
	defer w.Close()

	b, err := webgpu.NewBackend(w.SurfaceDescriptor(), w.Width(), w.Height(), cfg.BackendOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create backend: %w", err)
	}
	defer b.Release()

	lib, err := cfg.Library()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.Shaders.Watch {
		watcher, err := shader.NewLibraryWatcher(lib, cfg.Shaders.LibraryDir)
		if err != nil {
			return err
		}
		defer watcher.Close()
		go watcher.Run(ctx)
	}

	r, err := renderer.NewRenderer(b, cfg.RendererOptions(lib)...)
	if err != nil {
		return err
	}
	defer r.Release()

	fog := effect.NewFog(
		effect.WithDensity(0.04),
		effect.WithTint([3]float32{0.6, 0.65, 0.75}),
		effect.WithStartDistance(12),
	)
	r.AddEffect(fog)

	ctrl := camera.NewOrbitController(
		camera.WithTarget(mgl32.Vec3{0, 1, 0}),
		camera.WithRadius(18),
		camera.WithRadiusLimits(3, 80),
		camera.WithAngles(0.6, 0.45),
	)
	cam := camera.NewCamera(
		camera.WithPerspective(mgl32.DegToRad(60), float32(w.Width())/float32(w.Height()), 0.1, 200),
		camera.WithRenderTargetSize(w.Width(), w.Height()),
		camera.WithController(ctrl),
	)

	sun := light.NewLight(light.LightTypeDirectional,
		light.WithDirection(-0.4, -1, -0.3),
		light.WithColor(1, 0.95, 0.85),
		light.WithIntensity(3),
		light.WithCastsShadows(true),
	)

	options := append(cfg.EngineOptions(),
		engine.WithWindow(w),
		engine.WithScene(0, buildScene(sun)),
	)
	eng := engine.NewEngine(r, cam, options...)
	bindInput(w, eng, ctrl, sun, fog)

	return eng.Run(ctx)
}

// buildScene lays out a ground plane, a ring of opaque crates and a translucent pane in front.
func buildScene(sun light.Light) scene.Scene {
	ground := scene.NewNode("ground",
		scene.WithTransform(mgl32.Scale3D(60, 1, 60)),
		scene.WithModel(scene.NewModelInstance(&scene.MeshInstance{
			Mesh: scene.NewMesh("ground", unitQuadVertices, vertexStride, unitQuadIndices),
			Material: material.NewMaterial("ground",
				material.WithBaseColor([4]float32{0.45, 0.47, 0.5, 1}),
				material.WithRoughness(0.9),
			),
		})),
	)

	box := scene.NewMesh("box", unitBoxVertices, vertexStride, unitBoxIndices)
	nodes := []*scene.Node{ground}
	for i := range 8 {
		angle := float32(i) * mgl32.DegToRad(45)
		pos := mgl32.Vec3{6 * math32.Cos(angle), 1, 6 * math32.Sin(angle)}
		mat := material.NewMaterial(fmt.Sprintf("crate_%d", i),
			material.WithBaseColor([4]float32{0.8, 0.3 + 0.08*float32(i), 0.2, 1}),
			material.WithMetallic(float32(i%2)),
			material.WithRoughness(0.35),
		)
		nodes = append(nodes, scene.NewNode(fmt.Sprintf("crate_%d", i),
			scene.WithTransform(mgl32.Translate3D(pos[0], pos[1], pos[2]).Mul4(mgl32.HomogRotate3DY(angle)).Mul4(mgl32.Scale3D(2, 2, 2))),
			scene.WithModel(scene.NewModelInstance(&scene.MeshInstance{Mesh: box, Material: mat})),
		))
	}

	pane := material.NewMaterial("glass",
		material.WithBaseColor([4]float32{0.4, 0.7, 1, 0.35}),
		material.WithBlend(backend.BlendAlpha),
		material.WithShadowCasting(false),
	)
	nodes = append(nodes, scene.NewNode("pane",
		scene.WithTransform(mgl32.Translate3D(0, 1.5, 0).Mul4(mgl32.Scale3D(4, 3, 0.1))),
		scene.WithModel(scene.NewModelInstance(&scene.MeshInstance{
			Mesh:     box,
			Material: pane,
		})),
	))

	return scene.NewScene("viewer",
		scene.WithNodes(nodes...),
		scene.WithLights(sun),
		scene.WithAmbientColor([3]float32{0.08, 0.09, 0.11}),
	)
}

// bindInput wires camera and toggle keys. Held keys are applied once per engine tick.
func bindInput(w window.Window, eng engine.Engine, ctrl camera.CameraController, sun light.Light, fog effect.Fog) {
	held := map[common.Key]bool{}

	w.SetKeyDownCallback(func(key common.Key) {
		switch key {
		case common.KeyF:
			if !held[key] {
				fog.SetEnabled(!fog.Enabled())
			}
		case common.KeyP:
			if !held[key] {
				sun.SetCastsShadows(!sun.CastsShadows())
			}
		}
		held[key] = true
	})
	w.SetKeyUpCallback(func(key common.Key) {
		held[key] = false
	})
	w.SetScrollCallback(func(delta float32) {
		ctrl.Zoom(delta)
	})
	w.SetDragCallback(func(dx, dy float32) {
		switch {
		case dx > 0:
			ctrl.OrbitLeft()
		case dx < 0:
			ctrl.OrbitRight()
		}
		switch {
		case dy > 0:
			ctrl.OrbitUp()
		case dy < 0:
			ctrl.OrbitDown()
		}
	})

	eng.SetTickCallback(func(float32) {
		if held[common.KeyW] {
			ctrl.PanForward(1)
		}
		if held[common.KeyS] {
			ctrl.PanForward(-1)
		}
		if held[common.KeyA] {
			ctrl.PanRight(-1)
		}
		if held[common.KeyD] {
			ctrl.PanRight(1)
		}
		if held[common.KeyLeft] {
			ctrl.OrbitLeft()
		}
		if held[common.KeyRight] {
			ctrl.OrbitRight()
		}
		if held[common.KeyUp] {
			ctrl.OrbitUp()
		}
		if held[common.KeyDown] {
			ctrl.OrbitDown()
		}
	})
}

// Package app wires the window, renderer and editor together and runs the
// interactive viewport loop.
package app

import (
	"context"
	"fmt"
	"image"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/keyframe-studio/internal/config"
	"github.com/Faultbox/keyframe-studio/internal/editor"
	"github.com/Faultbox/keyframe-studio/internal/engine/camera"
	"github.com/Faultbox/keyframe-studio/internal/engine/debug"
	"github.com/Faultbox/keyframe-studio/internal/engine/geometry"
	"github.com/Faultbox/keyframe-studio/internal/engine/input"
	"github.com/Faultbox/keyframe-studio/internal/engine/picking"
	"github.com/Faultbox/keyframe-studio/internal/engine/registry"
	"github.com/Faultbox/keyframe-studio/internal/engine/renderer"
	"github.com/Faultbox/keyframe-studio/internal/engine/window"
	"github.com/Faultbox/keyframe-studio/internal/export"
	"github.com/Faultbox/keyframe-studio/internal/logger"
	"github.com/Faultbox/keyframe-studio/internal/scene"
	"github.com/Faultbox/keyframe-studio/internal/scheduler"
	"github.com/Faultbox/keyframe-studio/internal/script"
	"github.com/Faultbox/keyframe-studio/pkg/math"
)

// Title is the window title.
const Title = "Keyframe Studio"

// App is the studio instance.
type App struct {
	cfg  *config.Config
	opts config.RunOptions

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.FlyCamera
	shots    *debug.Screenshots

	scene    *scene.Scene
	registry *registry.Registry
	sched    *scheduler.Scheduler
	editor   *editor.Editor

	// selected is the object picked with the left mouse button.
	selected uuid.UUID

	running bool
	reload  chan struct{}
	log     *zap.Logger
}

// New creates the window and GL context and an empty scene.
func New(cfg *config.Config, opts config.RunOptions) (*App, error) {
	a := &App{
		cfg:    cfg,
		opts:   opts,
		reload: make(chan struct{}, 1),
		log:    logger.Named("app"),
	}

	var err error
	a.window, err = window.New(window.Config{
		Title:      Title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
		Hidden:     opts.Headless,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The GL context must exist before the renderer.
	a.renderer, err = renderer.New(renderer.Config{
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Background: cfg.Graphics.Background,
	})
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.input = input.New()
	a.shots = debug.NewScreenshots("screenshots", "studio")
	a.camera = camera.NewFlyCamera(cameraStart(cfg.Camera))

	a.scene = scene.New(scene.Config{
		MinFrame:  cfg.Timeline.MinFrame,
		MaxFrame:  cfg.Timeline.MaxFrame,
		MaxLights: cfg.Scene.MaxLights,
	})
	a.registry = registry.New(a.renderer)
	a.sched = scheduler.New(a.scene, a.registry, a)
	a.editor = editor.New(a.scene, a.registry, a.sched, exportDefaults(cfg.Export))

	a.log.Info("studio initialized",
		zap.Int("min_frame", cfg.Timeline.MinFrame),
		zap.Int("max_frame", cfg.Timeline.MaxFrame),
		zap.Int("max_lights", a.scene.MaxLights()),
	)
	return a, nil
}

func cameraStart(c config.CameraConfig) camera.Start {
	return camera.Start{
		Position:    math.Vec3{X: c.Position[0], Y: c.Position[1], Z: c.Position[2]},
		Yaw:         c.Yaw,
		Pitch:       c.Pitch,
		FOV:         c.FOV,
		Speed:       c.Speed,
		Sensitivity: c.Sensitivity,
	}
}

func exportDefaults(c config.ExportConfig) export.Config {
	return export.Config{
		Format:     export.Format(c.Format),
		Path:       c.Output,
		FPS:        c.FPS,
		Codec:      c.Codec,
		Width:      c.Width,
		Height:     c.Height,
		FFmpegPath: c.FFmpegPath,
	}
}

// Editor returns the action surface.
func (a *App) Editor() *editor.Editor {
	return a.editor
}

// Close frees GPU buffers and destroys the window.
func (a *App) Close() {
	a.log.Info("closing studio")
	if a.registry != nil {
		if err := a.registry.Clear(); err != nil {
			a.log.Warn("freeing buffers", zap.Error(err))
		}
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}

// Run executes the startup script, if any, then runs the viewport loop until
// the window closes or ctx is done. With Headless set it returns right after
// the script.
func (a *App) Run(ctx context.Context) error {
	if a.opts.Script != "" {
		if err := a.runScript(ctx); err != nil {
			if a.opts.Headless {
				return err
			}
			a.log.Error("script failed", zap.Error(err))
		}
	}
	if a.opts.Headless {
		return nil
	}

	if a.opts.Watch && a.opts.Script != "" {
		go func() {
			err := script.Watch(ctx, a.opts.Script, func() {
				select {
				case a.reload <- struct{}{}:
				default:
				}
			})
			if err != nil {
				a.log.Warn("script watch stopped", zap.Error(err))
			}
		}()
	}

	return a.loop(ctx)
}

func (a *App) runScript(ctx context.Context) error {
	s, err := script.Load(a.opts.Script)
	if err != nil {
		return err
	}
	a.log.Info("running script", zap.String("path", a.opts.Script), zap.Int("actions", len(s.Actions)))
	return s.Run(ctx, a.editor)
}

func (a *App) loop(ctx context.Context) error {
	a.running = true
	last := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	a.log.Info("starting viewport loop")

	for a.running {
		if ctx.Err() != nil {
			return nil
		}
		now := time.Now()
		dt := now.Sub(last).Seconds()
		last = now

		if a.input.Update() {
			a.running = false
			break
		}
		if err := a.handleEvents(ctx); err != nil {
			a.log.Warn("action failed", zap.Error(err))
		}
		a.moveCamera(float32(dt))

		select {
		case <-a.reload:
			if err := a.reloadScript(ctx); err != nil {
				a.log.Error("script failed", zap.Error(err))
			}
		default:
		}

		if err := a.draw(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps", zap.Int("count", frameCount), zap.String("dt", fmt.Sprintf("%.2fms", dt*1000)))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

func (a *App) reloadScript(ctx context.Context) error {
	a.log.Info("script changed, reloading")
	if err := a.editor.Reset(); err != nil {
		return err
	}
	return a.runScript(ctx)
}

// handleEvents applies the viewport key bindings.
func (a *App) handleEvents(ctx context.Context) error {
	// Actions redraw, and a redraw during export pumps events again.
	events := slices.Clone(a.input.Events())
	for _, ev := range events {
		switch ev.Type {
		case input.EventWindowResize:
			a.renderer.Resize(ev.Width, ev.Height)
		case input.EventMouseDown:
			switch ev.Button {
			case sdl.BUTTON_RIGHT:
				a.window.SetRelativeMouse(true)
			case sdl.BUTTON_LEFT:
				a.pick(ev.MouseX, ev.MouseY)
			}
		case input.EventMouseUp:
			if ev.Button == sdl.BUTTON_RIGHT {
				a.window.SetRelativeMouse(false)
			}
		case input.EventKeyDown:
			if err := a.handleKey(ctx, ev.Key); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *App) handleKey(ctx context.Context, key sdl.Scancode) error {
	switch key {
	case sdl.SCANCODE_ESCAPE:
		a.running = false
	case sdl.SCANCODE_R:
		a.camera.Reset()
	case sdl.SCANCODE_LEFT:
		return a.stepFrame(-1)
	case sdl.SCANCODE_RIGHT:
		return a.stepFrame(1)
	case sdl.SCANCODE_K:
		return a.editor.AddFrame()
	case sdl.SCANCODE_DELETE:
		return a.editor.DeleteFrame()
	case sdl.SCANCODE_L:
		_, err := a.editor.AddLight()
		return err
	case sdl.SCANCODE_H:
		if o, err := a.scene.Object(a.selected); err == nil {
			return a.editor.SetObjectVisible(o.ID, !o.Visible)
		}
	case sdl.SCANCODE_X:
		if a.selected != uuid.Nil {
			id := a.selected
			a.selected = uuid.Nil
			return a.editor.DeleteObject(id)
		}
	case sdl.SCANCODE_P:
		img, err := a.renderer.Capture()
		if err != nil {
			return err
		}
		name, err := a.shots.Save(img)
		if err != nil {
			return err
		}
		a.log.Info("screenshot saved", zap.String("path", name))
	case sdl.SCANCODE_E:
		res, err := a.editor.Export(ctx, editor.ExportOptions{})
		if err != nil {
			return err
		}
		a.log.Info("exported", zap.Int("frames", res.Frames))
	}
	return nil
}

func (a *App) stepFrame(delta int) error {
	frame := a.scene.Active + delta
	if !a.scene.Timeline.InRange(frame) {
		return nil
	}
	if err := a.editor.SelectFrame(frame); err != nil {
		return err
	}
	a.window.SetTitle(fmt.Sprintf("%s - frame %d", Title, frame))
	return nil
}

// pick selects the nearest visible object under the cursor, or clears the
// selection when nothing is hit.
func (a *App) pick(x, y int) {
	w, h := a.window.GetSize()
	width, height := a.renderer.Size()
	aspect := float32(width) / float32(max(height, 1))
	ray, ok := picking.ScreenToRay(float32(x), float32(y), float32(w), float32(h),
		a.camera.ViewMatrix(), a.camera.ProjectionMatrix(aspect))
	if !ok {
		return
	}

	var (
		ids   []uuid.UUID
		boxes []geometry.Bounds
	)
	for _, o := range a.scene.Objects() {
		if !o.Visible {
			continue
		}
		world, err := o.WorldVertices(a.scene.Active)
		if err != nil {
			continue
		}
		ids = append(ids, o.ID)
		boxes = append(boxes, geometry.BoundsOf(world))
	}

	a.selected = uuid.Nil
	if i, hit := ray.Nearest(boxes); hit {
		a.selected = ids[i]
		if o, err := a.scene.Object(ids[i]); err == nil {
			a.log.Info("object selected", zap.String("name", o.Name), zap.Stringer("id", o.ID))
		}
	}
}

func (a *App) moveCamera(dt float32) {
	if a.input.Looking {
		a.camera.HandleMouse(a.input.LookDelta())
	}
	if w := a.input.Wheel(); w != 0 {
		a.camera.HandleZoom(w)
	}
	// Camera speed is tuned per 60Hz frame.
	multiplier := dt * 60
	for _, dir := range Movement(a.input.IsKeyHeld) {
		a.camera.HandleMovement(dir, multiplier)
	}
}

// Movement returns the camera directions whose keys are held.
func Movement(held func(sdl.Scancode) bool) []camera.Direction {
	var dirs []camera.Direction
	for _, b := range movementKeys {
		if held(b.key) {
			dirs = append(dirs, b.dir)
		}
	}
	return dirs
}

var movementKeys = []struct {
	key sdl.Scancode
	dir camera.Direction
}{
	{sdl.SCANCODE_W, camera.Forward},
	{sdl.SCANCODE_S, camera.Backward},
	{sdl.SCANCODE_A, camera.Left},
	{sdl.SCANCODE_D, camera.Right},
	{sdl.SCANCODE_SPACE, camera.Up},
	{sdl.SCANCODE_LCTRL, camera.Down},
}

// draw renders the registry into the offscreen target and presents it.
func (a *App) draw() error {
	width, height := a.renderer.Size()
	aspect := float32(width) / float32(max(height, 1))

	a.renderer.Begin(renderer.View{
		ViewMatrix:       a.camera.ViewMatrix(),
		ProjectionMatrix: a.camera.ProjectionMatrix(aspect),
		Eye:              a.camera.Position,
		Lights:           a.scene.LightBuffer(),
	})
	err := a.registry.DrawAll()
	ww, wh := a.window.DrawableSize()
	a.renderer.End(ww, wh)
	a.window.SwapBuffers()
	return err
}

// Redraw implements scheduler.Host. During an export it also pumps window
// events so the window stays responsive; closing the window or pressing
// Escape aborts the export.
func (a *App) Redraw() error {
	if err := a.draw(); err != nil {
		return err
	}
	if !a.sched.Exporting() {
		return nil
	}
	if a.input.Update() {
		a.running = false
		a.editor.Abort()
		return nil
	}
	for _, ev := range a.input.Events() {
		switch ev.Type {
		case input.EventWindowResize:
			a.renderer.Resize(ev.Width, ev.Height)
		case input.EventKeyDown:
			if ev.Key == sdl.SCANCODE_ESCAPE {
				a.editor.Abort()
			}
		}
	}
	return nil
}

// Capture implements scheduler.Host.
func (a *App) Capture() (image.Image, error) {
	img, err := a.renderer.Capture()
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Package editor is the action surface of the studio. Every user action
// (from a GUI or an action script) goes through an Editor method, which
// keeps the scene, the registry and the rendered buffers consistent.
//
// Editor is not safe for concurrent use; it runs on the render thread.
package editor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/keyframe-studio/internal/engine/geometry"
	"github.com/Faultbox/keyframe-studio/internal/engine/registry"
	"github.com/Faultbox/keyframe-studio/internal/export"
	"github.com/Faultbox/keyframe-studio/internal/logger"
	"github.com/Faultbox/keyframe-studio/internal/scene"
	"github.com/Faultbox/keyframe-studio/internal/scheduler"
	"github.com/Faultbox/keyframe-studio/pkg/formats"
	"github.com/Faultbox/keyframe-studio/pkg/math"
)

// ErrImport wraps every mesh import failure.
var ErrImport = errors.New("import failed")

// Editor applies user actions to a scene.
type Editor struct {
	scene    *scene.Scene
	registry *registry.Registry
	sched    *scheduler.Scheduler

	// exportDefaults fills fields an ExportOptions leaves empty.
	exportDefaults export.Config

	log *zap.Logger
}

// New creates an editor over an existing scene, registry and scheduler.
func New(s *scene.Scene, reg *registry.Registry, sched *scheduler.Scheduler, exportDefaults export.Config) *Editor {
	return &Editor{
		scene:          s,
		registry:       reg,
		sched:          sched,
		exportDefaults: exportDefaults,
		log:            logger.Named("editor"),
	}
}

// Scene returns the edited scene for read access.
func (e *Editor) Scene() *scene.Scene {
	return e.scene
}

// refresh re-previews the active frame.
func (e *Editor) refresh() error {
	return e.sched.Preview(e.scene.Active)
}

// ImportFile loads an OBJ file and imports it under its base name.
func (e *Editor) ImportFile(path string) (*scene.Object, error) {
	obj, err := formats.LoadOBJ(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImport, err)
	}
	return e.Import(filepath.Base(path), obj.Positions, obj.Triangles)
}

// Import builds a flat-shaded mesh and adds it to the scene. The new object
// gets an identity keyframe at frame 1 and at every marked timeline frame.
// On failure the scene is left unchanged.
func (e *Editor) Import(name string, positions []math.Vec3, triangles [][3]int) (*scene.Object, error) {
	mesh, err := geometry.FromTriangles(positions, triangles)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrImport, name, err)
	}

	o := scene.NewObject(name, mesh)
	def := o.Default()
	minFrame, _ := e.scene.Timeline.Bounds()
	o.Keyframes.Set(minFrame, def)
	for _, f := range e.scene.Timeline.Frames() {
		o.Keyframes.Set(f, def)
	}

	world, err := o.WorldVertices(e.scene.Active)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrImport, name, err)
	}
	o.Slot, err = e.registry.Create(world)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrImport, name, err)
	}
	if err := e.registry.SetMaterial(o.Slot, o.Material); err != nil {
		_ = e.registry.Delete(o.Slot)
		return nil, fmt.Errorf("%w: %s: %w", ErrImport, name, err)
	}

	e.scene.AddObject(o)
	e.log.Info("object imported",
		zap.String("name", name),
		zap.Stringer("id", o.ID),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Stringer("slot", o.Slot),
	)
	return o, e.refresh()
}

// DeleteObject removes an object and frees its registry slot.
func (e *Editor) DeleteObject(id uuid.UUID) error {
	o, err := e.scene.RemoveObject(id)
	if err != nil {
		return err
	}
	if err := e.registry.Delete(o.Slot); err != nil {
		return fmt.Errorf("delete %q: %w", o.Name, err)
	}
	e.log.Info("object deleted", zap.String("name", o.Name))
	return e.refresh()
}

// SetObjectVisible shows or hides an object.
func (e *Editor) SetObjectVisible(id uuid.UUID, visible bool) error {
	o, err := e.scene.Object(id)
	if err != nil {
		return err
	}
	if err := e.registry.SetVisible(o.Slot, visible); err != nil {
		return err
	}
	o.Visible = visible
	return e.refresh()
}

// AddLight adds a default light. At the light limit it returns
// scene.ErrTooManyLights and changes nothing.
func (e *Editor) AddLight() (*scene.Light, error) {
	l, err := e.scene.AddLight()
	if err != nil {
		e.log.Warn("light not added", zap.Error(err))
		return nil, err
	}
	e.log.Info("light added", zap.String("name", l.Name))
	return l, e.refresh()
}

// DeleteLight removes a light.
func (e *Editor) DeleteLight(id uuid.UUID) error {
	l, err := e.scene.RemoveLight(id)
	if err != nil {
		return err
	}
	e.log.Info("light deleted", zap.String("name", l.Name))
	return e.refresh()
}

// SetLightVisible shows or hides a light.
func (e *Editor) SetLightVisible(id uuid.UUID, visible bool) error {
	l, err := e.scene.Light(id)
	if err != nil {
		return err
	}
	l.Visible = visible
	return e.refresh()
}

// SelectFrame makes frame active and previews it.
func (e *Editor) SelectFrame(frame int) error {
	if err := e.scene.Timeline.CheckRange(frame); err != nil {
		return err
	}
	e.scene.Active = frame
	return e.refresh()
}

// AddFrame marks the active frame as a keyframe. Each object records the
// params it currently displays there and each light records its current
// fields. Adding an existing keyframe does nothing.
func (e *Editor) AddFrame() error {
	frame := e.scene.Active
	added, err := e.scene.Timeline.Mark(frame)
	if err != nil {
		return err
	}
	if !added {
		return nil
	}

	for _, o := range e.scene.Objects() {
		o.Keyframes.Set(frame, o.Display(frame))
	}
	for _, l := range e.scene.Lights() {
		l.Snapshot(frame)
	}
	e.log.Info("keyframe added", zap.Int("frame", frame))
	return e.refresh()
}

// DeleteFrame unmarks the active frame and drops it from every object and
// light. Deleting a frame that is not a keyframe does nothing.
func (e *Editor) DeleteFrame() error {
	frame := e.scene.Active
	if !e.scene.Timeline.Unmark(frame) {
		return nil
	}
	for _, o := range e.scene.Objects() {
		o.Keyframes.Delete(frame)
	}
	for _, l := range e.scene.Lights() {
		l.Keyframes.Delete(frame)
	}
	e.log.Info("keyframe deleted", zap.Int("frame", frame))
	return e.refresh()
}

// ObjectForm returns the parameter form for an object at the active frame.
// Transform fields show the step-held keyframe, never an interpolated value.
func (e *Editor) ObjectForm(id uuid.UUID) (ObjectForm, error) {
	o, err := e.scene.Object(id)
	if err != nil {
		return ObjectForm{}, err
	}
	return newObjectForm(o.Display(e.scene.Active), o.Material), nil
}

// ApplyObjectForm stores the form as the object's keyframe at the active
// frame and replaces its material. If any field is invalid a *FieldError is
// returned and nothing changes. When the active frame is not yet a keyframe
// it is added first.
func (e *Editor) ApplyObjectForm(id uuid.UUID, form ObjectForm) error {
	o, err := e.scene.Object(id)
	if err != nil {
		return err
	}
	params, material, err := form.Parse()
	if err != nil {
		return err
	}

	frame := e.scene.Active
	if !o.Keyframes.Has(frame) {
		if err := e.AddFrame(); err != nil {
			return err
		}
		// The timeline may already hold the frame while this object lacks it.
		if !o.Keyframes.Has(frame) {
			o.Keyframes.Set(frame, o.Display(frame))
		}
	}

	o.Keyframes.Set(frame, params)
	o.Material = material
	if err := e.registry.SetMaterial(o.Slot, material); err != nil {
		return err
	}
	e.log.Debug("object params applied", zap.String("name", o.Name), zap.Int("frame", frame))
	return e.refresh()
}

// LightForm returns the parameter form for a light's current fields.
func (e *Editor) LightForm(id uuid.UUID) (LightForm, error) {
	l, err := e.scene.Light(id)
	if err != nil {
		return LightForm{}, err
	}
	return newLightForm(l.Light), nil
}

// ApplyLightForm replaces a light's current fields. If the active frame is a
// keyframe the light's snapshot there is updated too. An invalid field
// returns a *FieldError and changes nothing.
func (e *Editor) ApplyLightForm(id uuid.UUID, form LightForm) error {
	l, err := e.scene.Light(id)
	if err != nil {
		return err
	}
	fields, err := form.Parse()
	if err != nil {
		return err
	}
	l.Light = fields
	if e.scene.Timeline.Contains(e.scene.Active) {
		l.Snapshot(e.scene.Active)
	}
	return e.refresh()
}

// ExportOptions overrides the configured export defaults. Zero fields keep
// the default; zero Start and End cover the first to last keyframe.
type ExportOptions struct {
	Format export.Format
	Path   string
	FPS    int
	Codec  string
	Start  int
	End    int

	Progress func(frame, done, total int)
}

// Export renders the keyframed range to a file.
func (e *Editor) Export(ctx context.Context, opts ExportOptions) (scheduler.Result, error) {
	cfg := e.exportDefaults
	if opts.Format != "" {
		cfg.Format = opts.Format
	}
	if opts.Path != "" {
		cfg.Path = opts.Path
	}
	if opts.FPS != 0 {
		cfg.FPS = opts.FPS
	}
	if opts.Codec != "" {
		cfg.Codec = opts.Codec
	}

	start, end := opts.Start, opts.End
	if frames := e.scene.Timeline.Frames(); len(frames) > 0 {
		if start == 0 {
			start = frames[0]
		}
		if end == 0 {
			end = frames[len(frames)-1]
		}
	}

	return e.sched.Export(ctx, scheduler.ExportRequest{
		Start:    start,
		End:      end,
		Sink:     cfg,
		Progress: opts.Progress,
	})
}

// Abort stops a running export before its next frame.
func (e *Editor) Abort() {
	e.sched.Abort()
}

// Reset frees every slot and returns the scene to its initial state.
func (e *Editor) Reset() error {
	if err := e.registry.Clear(); err != nil {
		e.log.Warn("freeing buffers on reset", zap.Error(err))
	}
	e.scene.Reset()
	e.log.Info("scene reset")
	return e.refresh()
}

// Package script runs action scripts against an editor. A script is a YAML
// (or TOML) list of actions that mirror what a user does in the GUI:
//
//	actions:
//	  - op: import
//	    path: cube.obj
//	  - op: select_frame
//	    frame: 20
//	  - op: apply
//	    name: cube.obj
//	    location: ["0", "2", "0"]
//	    rotation: ["0", "90", "0"]
//	  - op: export
//	    format: gif
//	    path: out.gif
//	    fps: 24
//
// Numeric form fields are text and go through the same validation as typed
// input. Fields an apply action leaves out keep their current value.
package script

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/keyframe-studio/internal/editor"
	"github.com/Faultbox/keyframe-studio/internal/export"
	"github.com/Faultbox/keyframe-studio/internal/logger"
)

// Ops understood by Run.
const (
	OpImport      = "import"
	OpSelectFrame = "select_frame"
	OpAddFrame    = "add_frame"
	OpDeleteFrame = "delete_frame"
	OpApply       = "apply"
	OpApplyLight  = "apply_light"
	OpAddLight    = "add_light"
	OpDeleteLight = "delete_light"
	OpDelete      = "delete"
	OpVisible     = "visible"
	OpExport      = "export"
	OpReset       = "reset"
)

var (
	ErrUnknownOp    = errors.New("unknown op")
	ErrMissingField = errors.New("missing field")
	ErrFieldCount   = errors.New("wrong number of components")
)

// Action is one scripted user action. Which fields matter depends on Op.
type Action struct {
	Op string `yaml:"op" toml:"op"`

	// import
	Path string `yaml:"path,omitempty" toml:"path,omitempty"`

	// Name selects an object; Light selects a light.
	Name  string `yaml:"name,omitempty" toml:"name,omitempty"`
	Light string `yaml:"light,omitempty" toml:"light,omitempty"`

	// Frame is selected before add_frame, delete_frame, apply and
	// apply_light when set.
	Frame int `yaml:"frame,omitempty" toml:"frame,omitempty"`

	Visible *bool `yaml:"visible,omitempty" toml:"visible,omitempty"`

	// Object form.
	Location []string `yaml:"location,omitempty" toml:"location,omitempty"`
	Scale    []string `yaml:"scale,omitempty" toml:"scale,omitempty"`
	Rotation []string `yaml:"rotation,omitempty" toml:"rotation,omitempty"`

	// Shared by object and light forms. Objects take four components,
	// lights three.
	Diffuse  []string `yaml:"diffuse,omitempty" toml:"diffuse,omitempty"`
	Specular []string `yaml:"specular,omitempty" toml:"specular,omitempty"`

	// Light form.
	Position []string `yaml:"position,omitempty" toml:"position,omitempty"`
	Ambient  []string `yaml:"ambient,omitempty" toml:"ambient,omitempty"`

	// export
	Format string `yaml:"format,omitempty" toml:"format,omitempty"`
	Output string `yaml:"output,omitempty" toml:"output,omitempty"`
	FPS    int    `yaml:"fps,omitempty" toml:"fps,omitempty"`
	Codec  string `yaml:"codec,omitempty" toml:"codec,omitempty"`
	Start  int    `yaml:"start,omitempty" toml:"start,omitempty"`
	End    int    `yaml:"end,omitempty" toml:"end,omitempty"`
}

// Script is a parsed action list.
type Script struct {
	Actions []Action `yaml:"actions" toml:"actions"`

	// Dir resolves relative import and export paths.
	Dir string `yaml:"-" toml:"-"`
}

// ActionError reports the failing action of a run.
type ActionError struct {
	Index int
	Op    string
	Err   error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action %d (%s): %v", e.Index, e.Op, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// Load reads a script file. Files ending in .toml are TOML, everything else
// is YAML. Relative paths inside the script resolve against its directory.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s *Script
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		s, err = ParseTOML(data)
	} else {
		s, err = Parse(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Dir = filepath.Dir(path)
	return s, nil
}

// Parse decodes a YAML script. Unknown keys are an error.
func Parse(data []byte) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &s, s.check()
}

// ParseTOML decodes a TOML script. Unknown keys are an error.
func ParseTOML(data []byte) (*Script, error) {
	var s Script
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return nil, err
	}
	return &s, s.check()
}

func (s *Script) check() error {
	for i, a := range s.Actions {
		if err := a.check(); err != nil {
			return &ActionError{Index: i, Op: a.Op, Err: err}
		}
	}
	return nil
}

func (a Action) check() error {
	switch a.Op {
	case OpImport:
		return requireField("path", a.Path)
	case OpSelectFrame:
		if a.Frame == 0 {
			return fmt.Errorf("%w: frame", ErrMissingField)
		}
	case OpApply, OpDelete:
		return requireField("name", a.Name)
	case OpApplyLight, OpDeleteLight:
		return requireField("light", a.Light)
	case OpVisible:
		if a.Visible == nil {
			return fmt.Errorf("%w: visible", ErrMissingField)
		}
		if a.Name == "" && a.Light == "" {
			return fmt.Errorf("%w: name or light", ErrMissingField)
		}
	case OpAddFrame, OpDeleteFrame, OpAddLight, OpExport, OpReset:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, a.Op)
	}
	return nil
}

func requireField(field, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s", ErrMissingField, field)
	}
	return nil
}

// Run executes the actions in order and stops at the first failure, which is
// returned as an *ActionError.
func (s *Script) Run(ctx context.Context, ed *editor.Editor) error {
	log := logger.Named("script")
	for i, a := range s.Actions {
		if err := ctx.Err(); err != nil {
			return &ActionError{Index: i, Op: a.Op, Err: err}
		}
		if err := s.run(ctx, ed, a); err != nil {
			log.Warn("action failed", zap.Int("index", i), zap.String("op", a.Op), zap.Error(err))
			return &ActionError{Index: i, Op: a.Op, Err: err}
		}
		log.Debug("action done", zap.Int("index", i), zap.String("op", a.Op))
	}
	log.Info("script finished", zap.Int("actions", len(s.Actions)))
	return nil
}

func (s *Script) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || s.Dir == "" {
		return path
	}
	return filepath.Join(s.Dir, path)
}

func (s *Script) run(ctx context.Context, ed *editor.Editor, a Action) error {
	switch a.Op {
	case OpImport:
		_, err := ed.ImportFile(s.resolve(a.Path))
		return err
	case OpSelectFrame:
		return ed.SelectFrame(a.Frame)
	case OpAddFrame:
		if err := selectFrame(ed, a.Frame); err != nil {
			return err
		}
		return ed.AddFrame()
	case OpDeleteFrame:
		if err := selectFrame(ed, a.Frame); err != nil {
			return err
		}
		return ed.DeleteFrame()
	case OpApply:
		return applyObject(ed, a)
	case OpApplyLight:
		return applyLight(ed, a)
	case OpAddLight:
		_, err := ed.AddLight()
		return err
	case OpDeleteLight:
		l, err := ed.Scene().LightByName(a.Light)
		if err != nil {
			return err
		}
		return ed.DeleteLight(l.ID)
	case OpDelete:
		o, err := ed.Scene().ObjectByName(a.Name)
		if err != nil {
			return err
		}
		return ed.DeleteObject(o.ID)
	case OpVisible:
		return setVisible(ed, a)
	case OpExport:
		_, err := ed.Export(ctx, editor.ExportOptions{
			Format: export.Format(a.Format),
			Path:   s.resolve(a.Output),
			FPS:    a.FPS,
			Codec:  a.Codec,
			Start:  a.Start,
			End:    a.End,
		})
		return err
	case OpReset:
		return ed.Reset()
	}
	return fmt.Errorf("%w: %q", ErrUnknownOp, a.Op)
}

func selectFrame(ed *editor.Editor, frame int) error {
	if frame == 0 {
		return nil
	}
	return ed.SelectFrame(frame)
}

func setVisible(ed *editor.Editor, a Action) error {
	if a.Light != "" {
		l, err := ed.Scene().LightByName(a.Light)
		if err != nil {
			return err
		}
		if err := ed.SetLightVisible(l.ID, *a.Visible); err != nil {
			return err
		}
	}
	if a.Name != "" {
		o, err := ed.Scene().ObjectByName(a.Name)
		if err != nil {
			return err
		}
		return ed.SetObjectVisible(o.ID, *a.Visible)
	}
	return nil
}

func applyObject(ed *editor.Editor, a Action) error {
	o, err := ed.Scene().ObjectByName(a.Name)
	if err != nil {
		return err
	}
	if err := selectFrame(ed, a.Frame); err != nil {
		return err
	}
	form, err := ed.ObjectForm(o.ID)
	if err != nil {
		return err
	}
	if err := overlay("location", form.Location[:], a.Location); err != nil {
		return err
	}
	if err := overlay("scale", form.Scale[:], a.Scale); err != nil {
		return err
	}
	if err := overlay("rotation", form.Rotation[:], a.Rotation); err != nil {
		return err
	}
	if err := overlay("diffuse", form.Diffuse[:], a.Diffuse); err != nil {
		return err
	}
	if err := overlay("specular", form.Specular[:], a.Specular); err != nil {
		return err
	}
	return ed.ApplyObjectForm(o.ID, form)
}

func applyLight(ed *editor.Editor, a Action) error {
	l, err := ed.Scene().LightByName(a.Light)
	if err != nil {
		return err
	}
	if err := selectFrame(ed, a.Frame); err != nil {
		return err
	}
	form, err := ed.LightForm(l.ID)
	if err != nil {
		return err
	}
	if err := overlay("position", form.Position[:], a.Position); err != nil {
		return err
	}
	if err := overlay("ambient", form.Ambient[:], a.Ambient); err != nil {
		return err
	}
	if err := overlay("diffuse", form.Diffuse[:], a.Diffuse); err != nil {
		return err
	}
	if err := overlay("specular", form.Specular[:], a.Specular); err != nil {
		return err
	}
	return ed.ApplyLightForm(l.ID, form)
}

// overlay copies src over dst. An empty src keeps dst.
func overlay(field string, dst, src []string) error {
	if len(src) == 0 {
		return nil
	}
	if len(src) != len(dst) {
		return fmt.Errorf("%w: %s has %d, want %d", ErrFieldCount, field, len(src), len(dst))
	}
	copy(dst, src)
	return nil
}

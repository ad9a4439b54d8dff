package editor

import (
	"errors"
	"fmt"
	gomath "math"
	"strconv"
	"strings"

	"github.com/Faultbox/keyframe-studio/internal/engine/lighting"
	"github.com/Faultbox/keyframe-studio/internal/engine/registry"
	"github.com/Faultbox/keyframe-studio/internal/engine/transform"
	"github.com/Faultbox/keyframe-studio/pkg/math"
)

// ErrInvalidNumber is wrapped by every FieldError.
var ErrInvalidNumber = errors.New("not a number")

// FieldError reports a form field whose text is not a finite number.
type FieldError struct {
	Field string
	Text  string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %q is not a number", e.Field, e.Text)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidNumber
}

// ObjectForm is the text shown in an object's parameter panel.
type ObjectForm struct {
	Location [3]string
	Scale    [3]string
	Rotation [3]string
	Diffuse  [4]string
	Specular [4]string
}

// LightForm is the text shown in a light's parameter panel.
type LightForm struct {
	Position [3]string
	Ambient  [3]string
	Diffuse  [3]string
	Specular [3]string
}

var (
	axes     = [3]string{"x", "y", "z"}
	channels = [4]string{"r", "g", "b", "a"}
)

func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

func formatVec3(v math.Vec3) [3]string {
	return [3]string{formatFloat(v.X), formatFloat(v.Y), formatFloat(v.Z)}
}

func formatVec4(v math.Vec4) [4]string {
	return [4]string{formatFloat(v[0]), formatFloat(v[1]), formatFloat(v[2]), formatFloat(v[3])}
}

func parseFloat(field, text string) (float32, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 32)
	if err != nil || gomath.IsNaN(f) || gomath.IsInf(f, 0) {
		return 0, &FieldError{Field: field, Text: text}
	}
	return float32(f), nil
}

func parseVec3(name string, text [3]string, labels [3]string) (math.Vec3, error) {
	var out [3]float32
	for i := range text {
		f, err := parseFloat(name+"."+labels[i], text[i])
		if err != nil {
			return math.Vec3{}, err
		}
		out[i] = f
	}
	return math.Vec3{X: out[0], Y: out[1], Z: out[2]}, nil
}

func parseVec4(name string, text [4]string) (math.Vec4, error) {
	var out math.Vec4
	for i := range text {
		f, err := parseFloat(name+"."+channels[i], text[i])
		if err != nil {
			return math.Vec4{}, err
		}
		out[i] = f
	}
	return out, nil
}

func newObjectForm(p transform.Params, m registry.Material) ObjectForm {
	return ObjectForm{
		Location: formatVec3(p.Centroid),
		Scale:    formatVec3(p.Scale),
		Rotation: formatVec3(p.Rotation),
		Diffuse:  formatVec4(m.Diffuse),
		Specular: formatVec4(m.Specular),
	}
}

// Parse converts every field. The first invalid field is reported and
// nothing is returned.
func (f ObjectForm) Parse() (transform.Params, registry.Material, error) {
	var (
		p   transform.Params
		m   registry.Material
		err error
	)
	if p.Centroid, err = parseVec3("location", f.Location, axes); err != nil {
		return transform.Params{}, registry.Material{}, err
	}
	if p.Scale, err = parseVec3("scale", f.Scale, axes); err != nil {
		return transform.Params{}, registry.Material{}, err
	}
	if p.Rotation, err = parseVec3("rotation", f.Rotation, axes); err != nil {
		return transform.Params{}, registry.Material{}, err
	}
	if m.Diffuse, err = parseVec4("diffuse", f.Diffuse); err != nil {
		return transform.Params{}, registry.Material{}, err
	}
	if m.Specular, err = parseVec4("specular", f.Specular); err != nil {
		return transform.Params{}, registry.Material{}, err
	}
	return p, m, nil
}

func newLightForm(l lighting.Light) LightForm {
	return LightForm{
		Position: formatVec3(l.Position),
		Ambient:  formatVec3(l.Ambient),
		Diffuse:  formatVec3(l.Diffuse),
		Specular: formatVec3(l.Specular),
	}
}

// Parse converts every field. The first invalid field is reported.
func (f LightForm) Parse() (lighting.Light, error) {
	rgb := [3]string{"r", "g", "b"}
	var (
		l   lighting.Light
		err error
	)
	if l.Position, err = parseVec3("position", f.Position, axes); err != nil {
		return lighting.Light{}, err
	}
	if l.Ambient, err = parseVec3("ambient", f.Ambient, rgb); err != nil {
		return lighting.Light{}, err
	}
	if l.Diffuse, err = parseVec3("diffuse", f.Diffuse, rgb); err != nil {
		return lighting.Light{}, err
	}
	if l.Specular, err = parseVec3("specular", f.Specular, rgb); err != nil {
		return lighting.Light{}, err
	}
	return l, nil
}

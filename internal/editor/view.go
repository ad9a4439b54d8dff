package editor

import (
	"github.com/google/uuid"

	"github.com/Faultbox/keyframe-studio/internal/engine/lighting"
	"github.com/Faultbox/keyframe-studio/internal/engine/registry"
	"github.com/Faultbox/keyframe-studio/internal/engine/transform"
)

// View is a read-only snapshot for UI code. Nothing in it points back into
// the scene.
type View struct {
	Active    int
	MinFrame  int
	MaxFrame  int
	Keyframes []int
	Objects   []ObjectView
	Lights    []LightView
}

// ObjectView describes one object as listed in the UI.
type ObjectView struct {
	ID        uuid.UUID
	Name      string
	Visible   bool
	Slot      int
	Keyframes []int
	Params    transform.Params
	Material  registry.Material
}

// LightView describes one light as listed in the UI.
type LightView struct {
	ID        uuid.UUID
	Name      string
	Visible   bool
	Keyframes []int
	lighting.Light
}

// View returns a snapshot of the scene at the active frame. Object params
// are the step-held values an edit form would show.
func (e *Editor) View() View {
	minFrame, maxFrame := e.scene.Timeline.Bounds()
	v := View{
		Active:    e.scene.Active,
		MinFrame:  minFrame,
		MaxFrame:  maxFrame,
		Keyframes: e.scene.Timeline.Frames(),
	}
	for _, o := range e.scene.Objects() {
		slot, _ := e.registry.Index(o.Slot)
		v.Objects = append(v.Objects, ObjectView{
			ID:        o.ID,
			Name:      o.Name,
			Visible:   o.Visible,
			Slot:      slot,
			Keyframes: o.Keyframes.Frames(),
			Params:    o.Display(e.scene.Active),
			Material:  o.Material,
		})
	}
	for _, l := range e.scene.Lights() {
		v.Lights = append(v.Lights, LightView{
			ID:        l.ID,
			Name:      l.Name,
			Visible:   l.Visible,
			Keyframes: l.Keyframes.Frames(),
			Light:     l.Light,
		})
	}
	return v
}

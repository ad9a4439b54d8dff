// Package scene holds the editor's domain state: imported objects, lights
// and the shared keyframe timeline. It owns no GPU resources; objects only
// carry the registry handle assigned to them.
package scene

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/Faultbox/keyframe-studio/internal/engine/lighting"
)

// Scene errors.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrLightNotFound  = errors.New("light not found")
	ErrTooManyLights  = errors.New("light limit reached")
)

// Config bounds a scene.
type Config struct {
	MinFrame  int
	MaxFrame  int
	MaxLights int
}

// Scene owns objects and lights in display order.
type Scene struct {
	Timeline *Timeline

	// Active is the frame the editor currently shows.
	Active int

	objects []*Object
	lights  []*Light

	maxLights int
	lightSeq  int
}

// New creates an empty scene with its first light. Active starts at the
// first timeline frame.
func New(cfg Config) *Scene {
	maxLights := cfg.MaxLights
	if maxLights <= 0 || maxLights > lighting.MaxLights {
		maxLights = lighting.MaxLights
	}
	s := &Scene{
		Timeline:  NewTimeline(cfg.MinFrame, cfg.MaxFrame),
		Active:    cfg.MinFrame,
		maxLights: maxLights,
	}
	// One light is always there to start with.
	_, _ = s.AddLight()
	return s
}

// AddObject appends o to the scene.
func (s *Scene) AddObject(o *Object) {
	s.objects = append(s.objects, o)
}

// RemoveObject removes and returns the object with id.
func (s *Scene) RemoveObject(id uuid.UUID) (*Object, error) {
	i := slices.IndexFunc(s.objects, func(o *Object) bool { return o.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	o := s.objects[i]
	s.objects = slices.Delete(s.objects, i, i+1)
	return o, nil
}

// Object looks up an object by id.
func (s *Scene) Object(id uuid.UUID) (*Object, error) {
	for _, o := range s.objects {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, id)
}

// ObjectByName returns the first object called name.
func (s *Scene) ObjectByName(name string) (*Object, error) {
	for _, o := range s.objects {
		if o.Name == name {
			return o, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrObjectNotFound, name)
}

// Objects returns the objects in display order. The slice is a copy.
func (s *Scene) Objects() []*Object {
	return slices.Clone(s.objects)
}

// AddLight appends a default light named light_<n>. Numbers are never reused.
func (s *Scene) AddLight() (*Light, error) {
	if len(s.lights) >= s.maxLights {
		return nil, fmt.Errorf("%w: max %d", ErrTooManyLights, s.maxLights)
	}
	l := NewLight(fmt.Sprintf("light_%d", s.lightSeq))
	s.lightSeq++
	s.lights = append(s.lights, l)
	return l, nil
}

// RemoveLight removes and returns the light with id.
func (s *Scene) RemoveLight(id uuid.UUID) (*Light, error) {
	i := slices.IndexFunc(s.lights, func(l *Light) bool { return l.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrLightNotFound, id)
	}
	l := s.lights[i]
	s.lights = slices.Delete(s.lights, i, i+1)
	return l, nil
}

// Light looks up a light by id.
func (s *Scene) Light(id uuid.UUID) (*Light, error) {
	for _, l := range s.lights {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrLightNotFound, id)
}

// LightByName returns the first light called name.
func (s *Scene) LightByName(name string) (*Light, error) {
	for _, l := range s.lights {
		if l.Name == name {
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrLightNotFound, name)
}

// Lights returns the lights in display order. The slice is a copy.
func (s *Scene) Lights() []*Light {
	return slices.Clone(s.lights)
}

// MaxLights returns the light limit.
func (s *Scene) MaxLights() int {
	return s.maxLights
}

// LightBuffer packs the visible lights, in scene order, for the shader.
func (s *Scene) LightBuffer() *lighting.Buffer {
	b := lighting.NewBuffer()
	for _, l := range s.lights {
		if l.Visible {
			b.Add(l.Light)
		}
	}
	return b
}

// Reset drops every object, light and keyframe and starts over with one
// light. Light numbering restarts.
func (s *Scene) Reset() {
	minFrame, _ := s.Timeline.Bounds()
	s.Timeline.Clear()
	s.Active = minFrame
	s.objects = nil
	s.lights = nil
	s.lightSeq = 0
	_, _ = s.AddLight()
}

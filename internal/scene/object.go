package scene

import (
	"github.com/google/uuid"

	"github.com/Faultbox/keyframe-studio/internal/engine/geometry"
	"github.com/Faultbox/keyframe-studio/internal/engine/keyframe"
	"github.com/Faultbox/keyframe-studio/internal/engine/registry"
	"github.com/Faultbox/keyframe-studio/internal/engine/transform"
)

// Object is one imported mesh instance.
type Object struct {
	ID      uuid.UUID
	Name    string
	Visible bool

	// Material is shared by every frame; it is not keyframed.
	Material registry.Material

	// Slot is this object's registry entry.
	Slot registry.Handle

	Keyframes keyframe.Table[transform.Params]

	mesh *geometry.Mesh
}

// NewObject wraps an imported mesh. The object starts visible with no
// keyframes and no registry slot.
func NewObject(name string, mesh *geometry.Mesh) *Object {
	return &Object{
		ID:       uuid.New(),
		Name:     name,
		Visible:  true,
		Material: registry.DefaultMaterial,
		mesh:     mesh,
	}
}

// Mesh returns the immutable model-space geometry.
func (o *Object) Mesh() *geometry.Mesh {
	return o.mesh
}

// Original returns a copy of the model-space vertices.
func (o *Object) Original() []geometry.Vertex {
	return o.mesh.Vertices()
}

// Default is the transform used before any keyframe exists: identity,
// centered on the mesh bounds.
func (o *Object) Default() transform.Params {
	return transform.Identity(o.mesh.Bounds().Center())
}

// Sample returns the interpolated transform at frame.
func (o *Object) Sample(frame int) transform.Params {
	return keyframe.Sample(&o.Keyframes, frame, o.Default())
}

// Display returns the step-held transform an editor form shows at frame.
func (o *Object) Display(frame int) transform.Params {
	p, _, _ := o.Keyframes.Display(frame, o.Default())
	return p
}

// WorldVertices runs the transform pipeline for frame.
func (o *Object) WorldVertices(frame int) ([]geometry.Vertex, error) {
	return transform.Apply(o.Original(), o.Sample(frame))
}

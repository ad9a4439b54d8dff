// Package transform implements the vertex pipeline that places a mesh in the
// world: scale and rotate about the mesh's own centroid, then translate so the
// centroid lands on a target point.
package transform

import (
	"errors"
	"fmt"

	"github.com/Faultbox/keyframe-studio/internal/engine/geometry"
	"github.com/Faultbox/keyframe-studio/pkg/math"
)

// Pipeline errors.
var (
	ErrEmptyMesh     = errors.New("transform: no vertices")
	ErrInvalidParams = errors.New("transform: non-finite parameters")
)

// Params is one authored transform. Rotation is Euler angles in degrees,
// applied X first, then Y, then Z.
type Params struct {
	Centroid math.Vec3
	Scale    math.Vec3
	Rotation math.Vec3
}

// Identity returns unit scale and zero rotation with the given target centroid.
func Identity(centroid math.Vec3) Params {
	return Params{
		Centroid: centroid,
		Scale:    math.Splat(1),
	}
}

// Lerp interpolates every field component-wise. Rotation is lerped as plain
// degrees, with no shortest-path wrapping.
func (p Params) Lerp(other Params, t float32) Params {
	return Params{
		Centroid: p.Centroid.Lerp(other.Centroid, t),
		Scale:    p.Scale.Lerp(other.Scale, t),
		Rotation: p.Rotation.Lerp(other.Rotation, t),
	}
}

// Validate rejects NaN and infinite components.
func (p Params) Validate() error {
	switch {
	case !p.Centroid.IsFinite():
		return fmt.Errorf("%w: centroid %v", ErrInvalidParams, p.Centroid)
	case !p.Scale.IsFinite():
		return fmt.Errorf("%w: scale %v", ErrInvalidParams, p.Scale)
	case !p.Rotation.IsFinite():
		return fmt.Errorf("%w: rotation %v", ErrInvalidParams, p.Rotation)
	}
	return nil
}

// Apply returns world-space vertices for params. The input slice is never
// modified.
func Apply(vertices []geometry.Vertex, params Params) ([]geometry.Vertex, error) {
	if len(vertices) == 0 {
		return nil, ErrEmptyMesh
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	out := make([]geometry.Vertex, len(vertices))
	copy(out, vertices)

	// Scale about C0.
	c0 := geometry.Centroid(out)
	for i := range out {
		out[i].Position = out[i].Position.Sub(c0).Mul(params.Scale).Add(c0)
	}

	// Rotate about C0. Scaling about C0 leaves the centroid in place.
	rot := math.EulerXYZ(
		math.Radians(params.Rotation.X),
		math.Radians(params.Rotation.Y),
		math.Radians(params.Rotation.Z),
	)
	for i := range out {
		out[i].Position = rot.TransformVec3(out[i].Position.Sub(c0)).Add(c0)
		out[i].Normal = rot.TransformDirection(out[i].Normal)
	}

	// Move C1 onto the target.
	delta := params.Centroid.Sub(geometry.Centroid(out))
	for i := range out {
		out[i].Position = out[i].Position.Add(delta)
	}

	return out, nil
}

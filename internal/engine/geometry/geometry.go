// Package geometry holds model-space mesh data: flat-shaded vertices built
// from imported triangles, bounds and centroid helpers, and the interleaved
// layout uploaded to the GPU.
package geometry

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/keyframe-studio/pkg/math"
)

// FloatsPerVertex is the interleaved GPU layout: x, y, z, nx, ny, nz.
const FloatsPerVertex = 6

// Geometry errors.
var (
	ErrEmptyMesh    = errors.New("mesh has no vertices")
	ErrBadTriangle  = errors.New("triangle references a missing position")
	ErrBadBufferLen = errors.New("interleaved buffer length is not a multiple of 6")
)

// DegenerateNormal is assigned to zero-area triangles.
var DegenerateNormal = math.Vec3{X: 0, Y: 0, Z: 1}

// Vertex is one position+normal pair.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Center returns the midpoint of the box.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the extent of the box along each axis.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Mesh is immutable model-space geometry. Vertices come in runs of three,
// one run per triangle.
type Mesh struct {
	vertices []Vertex
	bounds   Bounds
}

// FromTriangles builds a flat-shaded mesh: every triangle gets its own three
// vertices, all carrying the triangle's face normal.
func FromTriangles(positions []math.Vec3, triangles [][3]int) (*Mesh, error) {
	if len(positions) == 0 || len(triangles) == 0 {
		return nil, ErrEmptyMesh
	}

	vertices := make([]Vertex, 0, len(triangles)*3)
	for i, tri := range triangles {
		for _, idx := range tri {
			if idx < 0 || idx >= len(positions) {
				return nil, fmt.Errorf("%w: triangle %d index %d (have %d)", ErrBadTriangle, i, idx, len(positions))
			}
		}

		v0, v1, v2 := positions[tri[0]], positions[tri[1]], positions[tri[2]]
		normal := faceNormal(v0, v1, v2)

		vertices = append(vertices,
			Vertex{Position: v0, Normal: normal},
			Vertex{Position: v1, Normal: normal},
			Vertex{Position: v2, Normal: normal},
		)
	}

	return &Mesh{
		vertices: vertices,
		bounds:   boundsOf(positions),
	}, nil
}

// FromVertices wraps already-built vertices. The slice is copied.
func FromVertices(vertices []Vertex) (*Mesh, error) {
	if len(vertices) == 0 {
		return nil, ErrEmptyMesh
	}
	owned := make([]Vertex, len(vertices))
	copy(owned, vertices)

	positions := make([]math.Vec3, len(owned))
	for i, v := range owned {
		positions[i] = v.Position
	}
	return &Mesh{vertices: owned, bounds: boundsOf(positions)}, nil
}

// Vertices returns a copy of the model-space vertices.
func (m *Mesh) Vertices() []Vertex {
	out := make([]Vertex, len(m.vertices))
	copy(out, m.vertices)
	return out
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.vertices)
}

// Bounds returns the bounding box of the source positions.
func (m *Mesh) Bounds() Bounds {
	return m.bounds
}

// faceNormal returns the unit normal of a counter-clockwise triangle.
func faceNormal(v0, v1, v2 math.Vec3) math.Vec3 {
	n := v1.Sub(v0).Cross(v2.Sub(v0))
	if n.Length() == 0 {
		return DegenerateNormal
	}
	return n.Normalize()
}

func boundsOf(positions []math.Vec3) Bounds {
	b := Bounds{
		Min: math.Splat(gomath.MaxFloat32),
		Max: math.Splat(-gomath.MaxFloat32),
	}
	for _, p := range positions {
		b.Min = math.Vec3{X: min(b.Min.X, p.X), Y: min(b.Min.Y, p.Y), Z: min(b.Min.Z, p.Z)}
		b.Max = math.Vec3{X: max(b.Max.X, p.X), Y: max(b.Max.Y, p.Y), Z: max(b.Max.Z, p.Z)}
	}
	return b
}

// BoundsOf returns the axis-aligned box around the vertex positions.
func BoundsOf(vertices []Vertex) Bounds {
	positions := make([]math.Vec3, len(vertices))
	for i, v := range vertices {
		positions[i] = v.Position
	}
	return boundsOf(positions)
}

// Centroid returns the arithmetic mean of the vertex positions. Sums are
// accumulated in float64. An empty slice yields the origin.
func Centroid(vertices []Vertex) math.Vec3 {
	if len(vertices) == 0 {
		return math.Vec3{}
	}
	var x, y, z float64
	for _, v := range vertices {
		x += float64(v.Position.X)
		y += float64(v.Position.Y)
		z += float64(v.Position.Z)
	}
	n := float64(len(vertices))
	return math.Vec3{X: float32(x / n), Y: float32(y / n), Z: float32(z / n)}
}

// Interleave flattens vertices into the GPU layout.
func Interleave(vertices []Vertex) []float32 {
	out := make([]float32, 0, len(vertices)*FloatsPerVertex)
	for _, v := range vertices {
		out = append(out,
			v.Position.X, v.Position.Y, v.Position.Z,
			v.Normal.X, v.Normal.Y, v.Normal.Z,
		)
	}
	return out
}

// Deinterleave is the inverse of Interleave.
func Deinterleave(data []float32) ([]Vertex, error) {
	if len(data)%FloatsPerVertex != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrBadBufferLen, len(data))
	}
	out := make([]Vertex, 0, len(data)/FloatsPerVertex)
	for i := 0; i < len(data); i += FloatsPerVertex {
		out = append(out, Vertex{
			Position: math.Vec3{X: data[i], Y: data[i+1], Z: data[i+2]},
			Normal:   math.Vec3{X: data[i+3], Y: data[i+4], Z: data[i+5]},
		})
	}
	return out, nil
}

package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/keyframe-studio/pkg/math"
)

func triangle() ([]math.Vec3, [][3]int) {
	return []math.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}}, [][3]int{{0, 1, 2}}
}

func TestFromTrianglesFlatNormals(t *testing.T) {
	positions := []math.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 0, Y: 0, Z: 1}}
	triangles := [][3]int{{0, 1, 2}, {0, 2, 3}}

	mesh, err := FromTriangles(positions, triangles)
	require.NoError(t, err)
	require.Equal(t, 6, mesh.VertexCount())

	verts := mesh.Vertices()
	for i := 0; i < 3; i++ {
		assert.Equal(t, math.Vec3{X: 0, Y: 0, Z: 1}, verts[i].Normal, "vertex %d", i)
	}
	for i := 3; i < 6; i++ {
		assert.True(t, verts[i].Normal.ApproxEqual(math.Vec3{X: 1, Y: 0, Z: 0}, 1e-6), "vertex %d: %v", i, verts[i].Normal)
	}
	assert.Equal(t, positions[3], verts[5].Position)
}

func TestFromTrianglesDegenerate(t *testing.T) {
	positions := []math.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 1}, {X: 2, Y: 2, Z: 2}}
	mesh, err := FromTriangles(positions, [][3]int{{0, 1, 2}})
	require.NoError(t, err)

	for _, v := range mesh.Vertices() {
		assert.Equal(t, DegenerateNormal, v.Normal)
	}
}

func TestFromTrianglesErrors(t *testing.T) {
	positions, _ := triangle()

	_, err := FromTriangles(nil, [][3]int{{0, 1, 2}})
	assert.ErrorIs(t, err, ErrEmptyMesh)

	_, err = FromTriangles(positions, nil)
	assert.ErrorIs(t, err, ErrEmptyMesh)

	_, err = FromTriangles(positions, [][3]int{{0, 1, 3}})
	assert.ErrorIs(t, err, ErrBadTriangle)

	_, err = FromTriangles(positions, [][3]int{{-1, 1, 2}})
	assert.ErrorIs(t, err, ErrBadTriangle)
}

func TestBoundsAndCentroid(t *testing.T) {
	// Positions skewed toward +X: bounds center and mean differ.
	positions := []math.Vec3{{X: 0, Y: 0, Z: 0}, {X: 4, Y: 0, Z: 0}, {X: 4, Y: 2, Z: 0}}
	mesh, err := FromTriangles(positions, [][3]int{{0, 1, 2}})
	require.NoError(t, err)

	b := mesh.Bounds()
	assert.Equal(t, math.Vec3{X: 0, Y: 0, Z: 0}, b.Min)
	assert.Equal(t, math.Vec3{X: 4, Y: 2, Z: 0}, b.Max)
	assert.Equal(t, math.Vec3{X: 2, Y: 1, Z: 0}, b.Center())
	assert.Equal(t, math.Vec3{X: 4, Y: 2, Z: 0}, b.Size())

	c := Centroid(mesh.Vertices())
	assert.True(t, c.ApproxEqual(math.Vec3{X: 8.0 / 3, Y: 2.0 / 3, Z: 0}, 1e-6), "centroid %v", c)
}

func TestCentroidSingleVertex(t *testing.T) {
	v := []Vertex{{Position: math.Vec3{X: 3, Y: -1, Z: 2}}}
	assert.Equal(t, math.Vec3{X: 3, Y: -1, Z: 2}, Centroid(v))
	assert.Equal(t, math.Vec3{}, Centroid(nil))
}

func TestVerticesReturnsCopy(t *testing.T) {
	positions, triangles := triangle()
	mesh, err := FromTriangles(positions, triangles)
	require.NoError(t, err)

	verts := mesh.Vertices()
	verts[0].Position = math.Vec3{X: 100, Y: 100, Z: 100}

	assert.Equal(t, math.Vec3{}, mesh.Vertices()[0].Position)
}

func TestInterleaveRoundTrip(t *testing.T) {
	positions, triangles := triangle()
	mesh, err := FromTriangles(positions, triangles)
	require.NoError(t, err)

	data := Interleave(mesh.Vertices())
	require.Len(t, data, 3*FloatsPerVertex)
	assert.Equal(t, []float32{1, 0, 0, 0, 0, 1}, data[6:12])

	back, err := Deinterleave(data)
	require.NoError(t, err)
	assert.Equal(t, mesh.Vertices(), back)

	_, err = Deinterleave(data[:7])
	assert.ErrorIs(t, err, ErrBadBufferLen)
}

func TestFromVertices(t *testing.T) {
	_, err := FromVertices(nil)
	assert.ErrorIs(t, err, ErrEmptyMesh)

	src := []Vertex{{Position: math.Vec3{X: -1}}, {Position: math.Vec3{X: 1}}}
	mesh, err := FromVertices(src)
	require.NoError(t, err)
	src[0].Position.X = 50
	assert.Equal(t, float32(-1), mesh.Vertices()[0].Position.X)
	assert.Equal(t, math.Vec3{}, mesh.Bounds().Center())
}

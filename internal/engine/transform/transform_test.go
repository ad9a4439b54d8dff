package transform

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/keyframe-studio/internal/engine/geometry"
	"github.com/Faultbox/keyframe-studio/pkg/math"
)

const eps = 1e-5

// unitCube returns the 8 corners of a cube of side 1 centered at the origin.
func unitCube() []geometry.Vertex {
	var out []geometry.Vertex
	for _, x := range []float32{-0.5, 0.5} {
		for _, y := range []float32{-0.5, 0.5} {
			for _, z := range []float32{-0.5, 0.5} {
				out = append(out, geometry.Vertex{
					Position: math.Vec3{X: x, Y: y, Z: z},
					Normal:   math.Vec3{X: 0, Y: 0, Z: 1},
				})
			}
		}
	}
	return out
}

func assertVerticesEqual(t *testing.T, want, got []geometry.Vertex) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Position.ApproxEqual(got[i].Position, eps), "vertex %d position: want %v got %v", i, want[i].Position, got[i].Position)
		assert.True(t, want[i].Normal.ApproxEqual(got[i].Normal, eps), "vertex %d normal: want %v got %v", i, want[i].Normal, got[i].Normal)
	}
}

func TestApplyIdentityIsNoop(t *testing.T) {
	meshes := map[string][]geometry.Vertex{
		"cube": unitCube(),
		"offset triangle": {
			{Position: math.Vec3{X: 3, Y: 1, Z: -2}, Normal: math.Vec3{X: 0, Y: 1, Z: 0}},
			{Position: math.Vec3{X: 5, Y: 1, Z: -2}, Normal: math.Vec3{X: 0, Y: 1, Z: 0}},
			{Position: math.Vec3{X: 3, Y: 4, Z: -7}, Normal: math.Vec3{X: 0, Y: 1, Z: 0}},
		},
		"single vertex": {
			{Position: math.Vec3{X: 1, Y: 2, Z: 3}, Normal: math.Vec3{X: 1, Y: 0, Z: 0}},
		},
	}

	for name, verts := range meshes {
		t.Run(name, func(t *testing.T) {
			out, err := Apply(verts, Identity(geometry.Centroid(verts)))
			require.NoError(t, err)
			assertVerticesEqual(t, verts, out)
		})
	}
}

func TestApplyDoubleScale(t *testing.T) {
	cube := unitCube()
	out, err := Apply(cube, Params{Scale: math.Splat(2)})
	require.NoError(t, err)

	for i := range cube {
		want := cube[i].Position.Scale(2)
		assert.True(t, want.ApproxEqual(out[i].Position, eps), "vertex %d: want %v got %v", i, want, out[i].Position)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	cube := unitCube()
	snapshot := make([]geometry.Vertex, len(cube))
	copy(snapshot, cube)

	_, err := Apply(cube, Params{
		Centroid: math.Vec3{X: 10, Y: -4, Z: 2},
		Scale:    math.Vec3{X: 3, Y: 1, Z: 0.5},
		Rotation: math.Vec3{X: 30, Y: 45, Z: 60},
	})
	require.NoError(t, err)
	assert.Equal(t, snapshot, cube)
}

func TestApplyTranslatesCentroidToTarget(t *testing.T) {
	target := math.Vec3{X: 7, Y: -3, Z: 12}
	out, err := Apply(unitCube(), Params{
		Centroid: target,
		Scale:    math.Vec3{X: 1, Y: 2, Z: 3},
		Rotation: math.Vec3{X: 10, Y: 20, Z: 30},
	})
	require.NoError(t, err)

	got := geometry.Centroid(out)
	assert.True(t, target.ApproxEqual(got, 1e-4), "centroid: want %v got %v", target, got)
}

func TestApplyRotation(t *testing.T) {
	verts := []geometry.Vertex{
		{Position: math.Vec3{X: 1, Y: 0, Z: 0}, Normal: math.Vec3{X: 1, Y: 0, Z: 0}},
		{Position: math.Vec3{X: -1, Y: 0, Z: 0}, Normal: math.Vec3{X: -1, Y: 0, Z: 0}},
	}

	tests := []struct {
		name     string
		rotation math.Vec3
		want     math.Vec3
	}{
		{"Z 90 maps X to Y", math.Vec3{Z: 90}, math.Vec3{X: 0, Y: 1, Z: 0}},
		{"Y 90 maps X to -Z", math.Vec3{Y: 90}, math.Vec3{X: 0, Y: 0, Z: -1}},
		{"X 90 leaves X", math.Vec3{X: 90}, math.Vec3{X: 1, Y: 0, Z: 0}},
		// X is applied before Z: the X turn is a no-op on this axis, so only Z shows.
		{"X then Z", math.Vec3{X: 90, Z: 90}, math.Vec3{X: 0, Y: 1, Z: 0}},
		// Y first takes +X to -Z, then Z leaves it there.
		{"Y then Z", math.Vec3{Y: 90, Z: 90}, math.Vec3{X: 0, Y: 0, Z: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Apply(verts, Params{Scale: math.Splat(1), Rotation: tt.rotation})
			require.NoError(t, err)
			assert.True(t, tt.want.ApproxEqual(out[0].Position, eps), "position: want %v got %v", tt.want, out[0].Position)
			assert.True(t, tt.want.ApproxEqual(out[0].Normal, eps), "normal: want %v got %v", tt.want, out[0].Normal)
		})
	}
}

func TestApplyNormalsIgnoreScale(t *testing.T) {
	verts := []geometry.Vertex{
		{Position: math.Vec3{X: 0, Y: 0, Z: 0}, Normal: math.Vec3{X: 0, Y: 0, Z: 1}},
		{Position: math.Vec3{X: 1, Y: 0, Z: 0}, Normal: math.Vec3{X: 0, Y: 0, Z: 1}},
	}
	out, err := Apply(verts, Params{Centroid: math.Vec3{X: 50}, Scale: math.Vec3{X: 4, Y: 4, Z: 9}})
	require.NoError(t, err)
	for _, v := range out {
		assert.Equal(t, math.Vec3{X: 0, Y: 0, Z: 1}, v.Normal)
	}
}

func TestApplyErrors(t *testing.T) {
	_, err := Apply(nil, Identity(math.Vec3{}))
	assert.ErrorIs(t, err, ErrEmptyMesh)

	nan := float32(gomath.NaN())
	inf := float32(gomath.Inf(1))
	bad := []Params{
		{Centroid: math.Vec3{X: nan}, Scale: math.Splat(1)},
		{Scale: math.Vec3{X: 1, Y: inf, Z: 1}},
		{Scale: math.Splat(1), Rotation: math.Vec3{Z: nan}},
	}
	for _, p := range bad {
		_, err := Apply(unitCube(), p)
		assert.ErrorIs(t, err, ErrInvalidParams)
	}
}

func TestParamsLerp(t *testing.T) {
	a := Params{Centroid: math.Vec3{}, Scale: math.Splat(1), Rotation: math.Vec3{Z: 350}}
	b := Params{Centroid: math.Vec3{X: 10}, Scale: math.Splat(3), Rotation: math.Vec3{Z: 10}}

	mid := a.Lerp(b, 0.5)
	assert.Equal(t, math.Vec3{X: 5}, mid.Centroid)
	assert.Equal(t, math.Splat(2), mid.Scale)
	// Plain degree lerp, not the 0 degree short path.
	assert.Equal(t, math.Vec3{Z: 180}, mid.Rotation)
}

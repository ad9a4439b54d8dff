package picking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/keyframe-studio/internal/engine/geometry"
	"github.com/Faultbox/keyframe-studio/pkg/math"
)

func unitBox(center math.Vec3) geometry.Bounds {
	return geometry.Bounds{Min: center.Sub(math.Splat(0.5)), Max: center.Add(math.Splat(0.5))}
}

func TestScreenToRayCenter(t *testing.T) {
	eye := math.Vec3{Z: 5}
	view := math.LookAt(eye, math.Vec3{}, math.Vec3{Y: 1})
	proj := math.Perspective(math.Radians(45), 1, 0.1, 100)

	r, ok := ScreenToRay(400, 300, 800, 600, view, proj)
	require.True(t, ok)
	assert.True(t, r.Direction.ApproxEqual(math.Vec3{Z: -1}, 1e-4), "direction %v", r.Direction)
	assert.True(t, r.Origin.ApproxEqual(math.Vec3{Z: 4.9}, 1e-3), "origin %v", r.Origin)

	// Left half of the screen points left.
	left, ok := ScreenToRay(100, 300, 800, 600, view, proj)
	require.True(t, ok)
	assert.Less(t, left.Direction.X, float32(0))
}

func TestScreenToRaySingular(t *testing.T) {
	_, ok := ScreenToRay(1, 1, 10, 10, math.Scale(0, 0, 0), math.Identity())
	assert.False(t, ok)

	_, ok = ScreenToRay(1, 1, 0, 10, math.Identity(), math.Identity())
	assert.False(t, ok)
}

func TestIntersectBounds(t *testing.T) {
	box := unitBox(math.Vec3{})
	tests := []struct {
		name string
		ray  Ray
		hit  bool
		t    float32
	}{
		{"straight on", Ray{Origin: math.Vec3{Z: 5}, Direction: math.Vec3{Z: -1}}, true, 4.5},
		{"pointing away", Ray{Origin: math.Vec3{Z: 5}, Direction: math.Vec3{Z: 1}}, false, 0},
		{"parallel outside", Ray{Origin: math.Vec3{X: 2, Z: 5}, Direction: math.Vec3{Z: -1}}, false, 0},
		{"from inside", Ray{Origin: math.Vec3{}, Direction: math.Vec3{X: 1}}, true, 0.5},
		{"diagonal", Ray{Origin: math.Vec3{X: -5, Y: -5}, Direction: math.Vec3{X: 1, Y: 1}.Normalize()}, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := tt.ray.IntersectBounds(box)
			assert.Equal(t, tt.hit, hit)
			if tt.hit && tt.t != 0 {
				assert.InDelta(t, tt.t, got, 1e-5)
			}
		})
	}
}

func TestNearest(t *testing.T) {
	r := Ray{Origin: math.Vec3{Z: 10}, Direction: math.Vec3{Z: -1}}
	boxes := []geometry.Bounds{
		unitBox(math.Vec3{Z: -3}),
		unitBox(math.Vec3{X: 4}),
		unitBox(math.Vec3{Z: 2}),
	}

	i, ok := r.Nearest(boxes)
	require.True(t, ok)
	assert.Equal(t, 2, i)
	assert.True(t, r.At(7.5).ApproxEqual(math.Vec3{Z: 2.5}, 1e-5))

	_, ok = r.Nearest(boxes[1:2])
	assert.False(t, ok)
	_, ok = r.Nearest(nil)
	assert.False(t, ok)
}

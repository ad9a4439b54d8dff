// Package camera provides the editor's free-flying viewport camera.
package camera

import (
	gomath "math"

	"github.com/Faultbox/keyframe-studio/pkg/math"
)

// Direction is one keyboard movement axis.
type Direction int

// Movement directions.
const (
	Forward Direction = iota
	Backward
	Left
	Right
	Up
	Down
)

// Clip planes and zoom limits.
const (
	NearPlane = 0.1
	FarPlane  = 100.0
	MinFOV    = 1.0
	MaxFOV    = 75.0
	MaxPitch  = 89.0
)

// FlyCamera moves freely and looks along yaw/pitch angles in degrees.
type FlyCamera struct {
	Position math.Vec3
	WorldUp  math.Vec3
	Yaw      float32
	Pitch    float32
	FOV      float32

	// Sensitivity
	Speed       float32
	Sensitivity float32

	front math.Vec3
	right math.Vec3
	up    math.Vec3

	initial Start
}

// Start is the state restored by Reset.
type Start struct {
	Position    math.Vec3
	Yaw, Pitch  float32
	FOV         float32
	Speed       float32
	Sensitivity float32
}

// NewFlyCamera creates a camera and remembers its starting state for Reset.
func NewFlyCamera(start Start) *FlyCamera {
	c := &FlyCamera{WorldUp: math.Vec3{X: 0, Y: 1, Z: 0}, initial: start}
	c.Reset()
	return c
}

// DefaultFlyCamera returns the camera used when nothing is configured.
func DefaultFlyCamera() *FlyCamera {
	return NewFlyCamera(Start{
		Position:    math.Vec3{X: 3, Y: 3, Z: 5},
		Yaw:         -135,
		Pitch:       -30,
		FOV:         45,
		Speed:       0.1,
		Sensitivity: 0.1,
	})
}

// Reset restores the starting state.
func (c *FlyCamera) Reset() {
	c.Position = c.initial.Position
	c.Yaw = c.initial.Yaw
	c.Pitch = c.initial.Pitch
	c.FOV = c.initial.FOV
	c.Speed = c.initial.Speed
	c.Sensitivity = c.initial.Sensitivity
	c.updateVectors()
}

func (c *FlyCamera) updateVectors() {
	yaw := float64(math.Radians(c.Yaw))
	pitch := float64(math.Radians(c.Pitch))

	c.front = math.Vec3{
		X: float32(gomath.Cos(yaw) * gomath.Cos(pitch)),
		Y: float32(gomath.Sin(pitch)),
		Z: float32(gomath.Sin(yaw) * gomath.Cos(pitch)),
	}.Normalize()
	c.right = c.front.Cross(c.WorldUp).Normalize()
	c.up = c.right.Cross(c.front).Normalize()
}

// Front returns the unit view direction.
func (c *FlyCamera) Front() math.Vec3 {
	return c.front
}

// ViewMatrix returns the view matrix for this camera.
func (c *FlyCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position, c.Position.Add(c.front), c.up)
}

// ProjectionMatrix returns a perspective projection for the given aspect.
func (c *FlyCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	return math.Perspective(math.Radians(c.FOV), aspect, NearPlane, FarPlane)
}

// HandleMouse turns the camera by a mouse delta in pixels. Pitch is clamped
// short of straight up or down.
func (c *FlyCamera) HandleMouse(deltaX, deltaY float32) {
	c.Yaw += deltaX * c.Sensitivity
	c.Pitch = math.Clamp(c.Pitch+deltaY*c.Sensitivity, -MaxPitch, MaxPitch)
	c.updateVectors()
}

// HandleZoom narrows or widens the field of view.
func (c *FlyCamera) HandleZoom(delta float32) {
	c.FOV = math.Clamp(c.FOV-delta, MinFOV, MaxFOV)
}

// HandleMovement moves one step along dir, scaled by multiplier.
func (c *FlyCamera) HandleMovement(dir Direction, multiplier float32) {
	v := c.Speed * multiplier
	switch dir {
	case Forward:
		c.Position = c.Position.Add(c.front.Scale(v))
	case Backward:
		c.Position = c.Position.Sub(c.front.Scale(v))
	case Left:
		c.Position = c.Position.Sub(c.right.Scale(v))
	case Right:
		c.Position = c.Position.Add(c.right.Scale(v))
	case Up:
		c.Position = c.Position.Add(c.WorldUp.Scale(v))
	case Down:
		c.Position = c.Position.Sub(c.WorldUp.Scale(v))
	}
}

// Package lighting packs scene lights into the flat arrays the Phong shader
// expects.
package lighting

import "github.com/Faultbox/keyframe-studio/pkg/math"

// MaxLights is the maximum number of lights supported in shaders.
const MaxLights = 8

// Light is one point light as uploaded to the GPU.
type Light struct {
	Position math.Vec3
	Ambient  math.Vec3
	Diffuse  math.Vec3
	Specular math.Vec3
}

// Default returns the light a new scene light starts with.
func Default() Light {
	return Light{
		Position: math.Vec3{X: 5, Y: 5, Z: 5},
		Ambient:  math.Splat(0.25),
		Diffuse:  math.Splat(0.75),
		Specular: math.Splat(1),
	}
}

// Buffer holds lights for GPU upload.
type Buffer struct {
	Lights []Light
}

// NewBuffer creates an empty light buffer.
func NewBuffer() *Buffer {
	return &Buffer{
		Lights: make([]Light, 0, MaxLights),
	}
}

// Clear removes all lights from the buffer.
func (b *Buffer) Clear() {
	b.Lights = b.Lights[:0]
}

// Add appends a light. Returns false if the buffer is full.
func (b *Buffer) Add(light Light) bool {
	if len(b.Lights) >= MaxLights {
		return false
	}
	b.Lights = append(b.Lights, light)
	return true
}

// Set replaces all lights, truncating to MaxLights.
func (b *Buffer) Set(lights []Light) {
	b.Clear()
	b.Lights = append(b.Lights, lights[:min(len(lights), MaxLights)]...)
}

// Count returns the number of lights the shader should read.
func (b *Buffer) Count() int32 {
	return int32(len(b.Lights))
}

// Positions returns positions as [x0, y0, z0, x1, ...], padded to MaxLights.
func (b *Buffer) Positions() []float32 {
	return b.pack(func(l Light) math.Vec3 { return l.Position })
}

// Ambients returns ambient colors, padded to MaxLights.
func (b *Buffer) Ambients() []float32 {
	return b.pack(func(l Light) math.Vec3 { return l.Ambient })
}

// Diffuses returns diffuse colors, padded to MaxLights.
func (b *Buffer) Diffuses() []float32 {
	return b.pack(func(l Light) math.Vec3 { return l.Diffuse })
}

// Speculars returns specular colors, padded to MaxLights.
func (b *Buffer) Speculars() []float32 {
	return b.pack(func(l Light) math.Vec3 { return l.Specular })
}

func (b *Buffer) pack(field func(Light) math.Vec3) []float32 {
	result := make([]float32, MaxLights*3)
	for i, light := range b.Lights {
		v := field(light)
		result[i*3+0] = v.X
		result[i*3+1] = v.Y
		result[i*3+2] = v.Z
	}
	return result
}

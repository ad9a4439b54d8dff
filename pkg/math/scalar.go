package math

import "math"

// Lerp returns a*(1-t) + b*t.
func Lerp(a, b, t float32) float32 {
	return a*(1-t) + b*t
}

// Radians converts degrees to radians.
func Radians(deg float32) float32 {
	return float32(float64(deg) * math.Pi / 180.0)
}

// Abs returns the absolute value of x.
func Abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func isFinite(x float32) bool {
	f := float64(x)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Vec4 is a 4-component vector, used for RGBA colors.
type Vec4 [4]float32

// IsFinite reports whether no component is NaN or infinite.
func (v Vec4) IsFinite() bool {
	return isFinite(v[0]) && isFinite(v[1]) && isFinite(v[2]) && isFinite(v[3])
}

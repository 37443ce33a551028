package math

import "math"

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

// Lerp interpolates linearly between a and b.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// EaseOutCubic maps linear progress t in [0, 1] to 1-(1-t)^3.
// Input outside [0, 1] is clamped.
func EaseOutCubic(t float32) float32 {
	t = Clamp(t, 0, 1)
	u := 1 - t
	return 1 - u*u*u
}

// Sin is a float32 wrapper around math.Sin.
func Sin(x float32) float32 { return float32(math.Sin(float64(x))) }

// Cos is a float32 wrapper around math.Cos.
func Cos(x float32) float32 { return float32(math.Cos(float64(x))) }

// Atan2 is a float32 wrapper around math.Atan2.
func Atan2(y, x float32) float32 { return float32(math.Atan2(float64(y), float64(x))) }

// Acos is a float32 wrapper around math.Acos with the argument clamped to [-1, 1].
func Acos(x float32) float32 { return float32(math.Acos(float64(Clamp(x, -1, 1)))) }

// Pi as float32.
const Pi = float32(math.Pi)

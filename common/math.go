package common

import "github.com/chewxy/math32"

// Clamp restricts v to the closed interval [lo, hi].
//
// Parameters:
//   - v: the value to clamp
//   - lo: the lower bound
//   - hi: the upper bound
//
// Returns:
//   - float32: v limited to [lo, hi]
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Max32 returns the larger of a and b.
func Max32(a, b float32) float32 {
	return math32.Max(a, b)
}

// ApproxEqual reports whether a and b differ by less than epsilon.
func ApproxEqual(a, b, epsilon float32) bool {
	return math32.Abs(a-b) < epsilon
}

// DegToRad converts an angle in degrees to radians.
func DegToRad(deg float32) float32 {
	return deg * math32.Pi / 180
}

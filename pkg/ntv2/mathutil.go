package ntv2

import "math"

// AlmostEqual reports whether a and b differ by at most eps relative to
// their mean magnitude: |a-b| <= eps * (1 + (|a|+|b|)/2).
func AlmostEqual(a, b, eps float64) bool {
	return a == b || math.Abs(a-b) <= eps*(1+(math.Abs(a)+math.Abs(b))/2)
}

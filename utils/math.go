// Package utils contains shared angle and unit helpers.
package utils

import (
	"math"
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// ModAngDeg normalizes an angle in degrees to [0, 360).
func ModAngDeg(ang float64) float64 {
	return math.Mod(math.Mod(ang, 360)+360, 360)
}

// AngleDiffDeg returns the closest difference from the two given
// angles. The arguments are commutative.
func AngleDiffDeg(a1, a2 float64) float64 {
	return float64(180) - math.Abs(math.Abs(a1-a2)-float64(180))
}

// ShortestAngleDeltaDeg returns the signed rotation in (-180, 180] that
// reaches the target angle from the current one by the shorter arc. Both
// arguments are normalized before the delta is computed.
func ShortestAngleDeltaDeg(current, target float64) float64 {
	delta := ModAngDeg(target-current+180) - 180
	if delta == -180 {
		delta = 180
	}
	return delta
}

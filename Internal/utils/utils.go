package utils

import "math"

// Clamp bounds value to [min, max]. NaN collapses to min.
func Clamp(value, min, max float64) float64 {
	if math.IsNaN(value) {
		return min
	}
	return math.Min(max, math.Max(min, value))
}

// Clamp01 bounds value to the unit interval.
func Clamp01(value float64) float64 {
	return Clamp(value, 0, 1)
}

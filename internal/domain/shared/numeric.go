package shared

import "math"

// RoundHalfUp rounds to the nearest integer with ties toward +Inf,
// so 2.5 becomes 3 and -2.5 becomes -2.
func RoundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// RoundInt is RoundHalfUp converted to int.
func RoundInt(x float64) int {
	return int(RoundHalfUp(x))
}

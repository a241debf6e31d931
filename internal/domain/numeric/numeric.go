// Package numeric holds the rounding and ratio helpers shared by the calculators.
package numeric

import "math"

// Round rounds half up, so -2.5 becomes -2 and 2.5 becomes 3.
func Round(v float64) float64 {
	return math.Floor(v + 0.5)
}

// RoundInt is Round converted to int.
func RoundInt(v float64) int {
	return int(Round(v))
}

// Round1 rounds half up to one decimal place.
func Round1(v float64) float64 {
	return Round(v*10) / 10
}

// Div returns a/b, or 0 when b is 0.
func Div(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Percent returns part/whole*100, or 0 when whole is 0.
func Percent(part, whole float64) float64 {
	return Div(part, whole) * 100
}

// Change returns the rounded percentage change from previous to recent.
// A zero baseline yields 100 when recent is positive and 0 otherwise.
func Change(recent, previous float64) int {
	if previous == 0 {
		if recent > 0 {
			return 100
		}
		return 0
	}
	return RoundInt((recent - previous) / previous * 100)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

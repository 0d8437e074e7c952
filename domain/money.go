package domain

import "math"

// Tolerance absorbs float rounding when comparing currency amounts.
const Tolerance = 0.01

// Round2 rounds to cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

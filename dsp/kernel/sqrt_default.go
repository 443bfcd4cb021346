//go:build !fastmath

package kernel

import "math"

// kernelSqrt computes sqrt(x) using the standard library.
func kernelSqrt(x float64) float64 {
	return math.Sqrt(x)
}

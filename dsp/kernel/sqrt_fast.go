//go:build fastmath

package kernel

import approx "github.com/meko-christian/algo-approx"

// kernelSqrt computes sqrt(x) using algo-approx's fast approximation. Opt
// into this path with -tags fastmath when lower latency matters more than
// the last bit of precision in RMS, variance, and z-score kernels.
func kernelSqrt(x float64) float64 {
	return approx.FastSqrt(x)
}

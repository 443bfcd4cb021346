package kernel

import (
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/streamdsp/dsp/core"
	tstats "github.com/cwbudde/streamdsp/stats/time"
)

// widen copies a float32 sample buffer into a float64 scratch buffer,
// reusing scratch's backing array via core.EnsureLen when it is already
// large enough. Batch-mode statistics compute in double precision
// regardless of the engine's float32 sample type, per the engine's
// numerical-stability requirements for whole-buffer statistics.
func widen(scratch []float64, samples []float32) []float64 {
	out := core.EnsureLen(scratch, len(samples))
	for i, x := range samples {
		out[i] = float64(x)
	}
	return out
}

// BatchMean returns the arithmetic mean of samples, computed in double
// precision via the one-pass Welford moment estimator.
func BatchMean(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	mean, _, _, _ := tstats.Moments(widen(nil, samples))
	return mean
}

// BatchVariance returns the population variance of samples, computed in
// double precision via the one-pass Welford moment estimator.
func BatchVariance(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	_, variance, _, _ := tstats.Moments(widen(nil, samples))
	return variance
}

// BatchMeanAbsoluteValue returns the mean absolute value of samples,
// computed in double precision.
func BatchMeanAbsoluteValue(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, x := range samples {
		sum += math.Abs(float64(x))
	}
	return sum / float64(len(samples))
}

// BatchRMS returns the root-mean-square of samples, computed in double
// precision.
func BatchRMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	return tstats.RMS(widen(nil, samples))
}

// BatchZScoreNormalize fills dst with the z-score normalization of src
// against src's own mean and variance: (x - mean) / sqrt(variance +
// epsilon). len(dst) must equal len(src).
func BatchZScoreNormalize(dst, src []float32, epsilon float64) {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}

	wide := widen(nil, src)
	mean, variance, _, _ := tstats.Moments(wide)
	denom := kernelSqrt(variance + epsilon)

	shifted := core.EnsureLen(wide, len(src))
	for i := range shifted {
		shifted[i] = wide[i] - mean
	}
	vecmath.ScaleBlockInPlace(shifted, 1/denom)

	for i, x := range shifted {
		dst[i] = float32(x)
	}
}

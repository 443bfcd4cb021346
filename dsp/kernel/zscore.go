package kernel

import (
	"math"

	"github.com/cwbudde/streamdsp/dsp/core"
	"github.com/cwbudde/streamdsp/dsp/ring"
)

// DefaultEpsilon guards ZScore's denominator against division by zero on a
// constant (zero-variance) window.
const DefaultEpsilon = 1e-6

// ZScore is a streaming moving z-score-normalization kernel over the last
// N samples: (x - mean) / sqrt(variance + epsilon).
type ZScore struct {
	window  *ring.Window
	epsilon float64
}

// NewZScore returns a ZScore kernel with a window of the given size and
// the given epsilon. A non-positive epsilon falls back to DefaultEpsilon.
func NewZScore(windowSize int, epsilon float64) *ZScore {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	return &ZScore{
		window:  ring.New(windowSize, ring.Sum|ring.SumSq),
		epsilon: epsilon,
	}
}

// WindowSize returns N.
func (k *ZScore) WindowSize() int { return k.window.Capacity() }

// Epsilon returns the configured denominator guard.
func (k *ZScore) Epsilon() float64 { return k.epsilon }

// Count returns the number of samples currently in the window.
func (k *ZScore) Count() int { return k.window.Count() }

// Add feeds x into the window and returns its z-score against the
// window's current mean and variance.
func (k *ZScore) Add(x float32) float32 {
	k.window.Update(x)
	n := k.window.Count()
	if n == 0 {
		return 0
	}

	nf := float64(n)
	mean := float64(k.window.Sum()) / nf
	meanSq := float64(k.window.SumSq()) / nf
	variance := core.Clamp(meanSq-mean*mean, 0, math.MaxFloat64)

	denom := kernelSqrt(variance + k.epsilon)
	return float32((float64(x) - mean) / denom)
}

// Reset clears the window to empty.
func (k *ZScore) Reset() { k.window.Clear() }

// Snapshot returns the window's ordered contents and aggregates for
// serialization.
func (k *ZScore) Snapshot() (samples []float32, sum, sumAbs, sumSq float32) {
	return k.window.Snapshot()
}

// Restore rebuilds the window from a previously snapshotted state.
func (k *ZScore) Restore(samples []float32, sum, sumAbs, sumSq float32) error {
	return k.window.Restore(samples, sum, sumAbs, sumSq)
}

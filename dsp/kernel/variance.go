package kernel

import (
	"math"

	"github.com/cwbudde/streamdsp/dsp/core"
	"github.com/cwbudde/streamdsp/dsp/ring"
)

// Variance is a streaming moving population-variance kernel over the last
// N samples.
type Variance struct {
	window *ring.Window
}

// NewVariance returns a Variance kernel with a window of the given size.
func NewVariance(windowSize int) *Variance {
	return &Variance{window: ring.New(windowSize, ring.Sum|ring.SumSq)}
}

// WindowSize returns N.
func (k *Variance) WindowSize() int { return k.window.Capacity() }

// Count returns the number of samples currently in the window.
func (k *Variance) Count() int { return k.window.Count() }

// Add feeds x into the window and returns the population variance of the
// window's current contents: E[x^2] - E[x]^2, clamped to 0 to absorb
// floating-point rounding.
func (k *Variance) Add(x float32) float32 {
	k.window.Update(x)
	n := k.window.Count()
	if n == 0 {
		return 0
	}

	nf := float64(n)
	mean := float64(k.window.Sum()) / nf
	meanSq := float64(k.window.SumSq()) / nf
	variance := core.Clamp(meanSq-mean*mean, 0, math.MaxFloat64)

	return float32(variance)
}

// Reset clears the window to empty.
func (k *Variance) Reset() { k.window.Clear() }

// Snapshot returns the window's ordered contents and aggregates for
// serialization.
func (k *Variance) Snapshot() (samples []float32, sum, sumAbs, sumSq float32) {
	return k.window.Snapshot()
}

// Restore rebuilds the window from a previously snapshotted state.
func (k *Variance) Restore(samples []float32, sum, sumAbs, sumSq float32) error {
	return k.window.Restore(samples, sum, sumAbs, sumSq)
}

package kernel

import "github.com/cwbudde/streamdsp/dsp/ring"

// RMS is a streaming moving root-mean-square kernel over the last N
// samples.
type RMS struct {
	window *ring.Window
}

// NewRMS returns an RMS kernel with a window of the given size.
func NewRMS(windowSize int) *RMS {
	return &RMS{window: ring.New(windowSize, ring.SumSq)}
}

// WindowSize returns N.
func (k *RMS) WindowSize() int { return k.window.Capacity() }

// Count returns the number of samples currently in the window.
func (k *RMS) Count() int { return k.window.Count() }

// Add feeds x into the window and returns the RMS of the window's current
// contents.
func (k *RMS) Add(x float32) float32 {
	k.window.Update(x)
	n := k.window.Count()
	if n == 0 {
		return 0
	}
	meanSq := float64(k.window.SumSq()) / float64(n)
	return float32(kernelSqrt(meanSq))
}

// Reset clears the window to empty.
func (k *RMS) Reset() { k.window.Clear() }

// Snapshot returns the window's ordered contents and aggregates for
// serialization.
func (k *RMS) Snapshot() (samples []float32, sum, sumAbs, sumSq float32) {
	return k.window.Snapshot()
}

// Restore rebuilds the window from a previously snapshotted state.
func (k *RMS) Restore(samples []float32, sum, sumAbs, sumSq float32) error {
	return k.window.Restore(samples, sum, sumAbs, sumSq)
}

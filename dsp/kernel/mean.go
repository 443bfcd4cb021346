package kernel

import "github.com/cwbudde/streamdsp/dsp/ring"

// Mean is a streaming moving-average kernel over the last N samples.
type Mean struct {
	window *ring.Window
}

// NewMean returns a Mean kernel with a window of the given size.
func NewMean(windowSize int) *Mean {
	return &Mean{window: ring.New(windowSize, ring.Sum)}
}

// WindowSize returns N.
func (k *Mean) WindowSize() int { return k.window.Capacity() }

// Count returns the number of samples currently in the window.
func (k *Mean) Count() int { return k.window.Count() }

// Add feeds x into the window and returns the mean of the window's
// current contents.
func (k *Mean) Add(x float32) float32 {
	k.window.Update(x)
	n := k.window.Count()
	if n == 0 {
		return 0
	}
	return k.window.Sum() / float32(n)
}

// Reset clears the window to empty.
func (k *Mean) Reset() { k.window.Clear() }

// Snapshot returns the window's ordered contents and aggregates for
// serialization.
func (k *Mean) Snapshot() (samples []float32, sum, sumAbs, sumSq float32) {
	return k.window.Snapshot()
}

// Restore rebuilds the window from a previously snapshotted state.
func (k *Mean) Restore(samples []float32, sum, sumAbs, sumSq float32) error {
	return k.window.Restore(samples, sum, sumAbs, sumSq)
}

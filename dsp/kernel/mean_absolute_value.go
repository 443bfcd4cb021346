package kernel

import (
	"math"

	"github.com/cwbudde/streamdsp/dsp/ring"
)

// MeanAbsoluteValue is a streaming moving mean-absolute-value kernel over
// the last N samples.
type MeanAbsoluteValue struct {
	window *ring.Window
}

// NewMeanAbsoluteValue returns a MeanAbsoluteValue kernel with a window of
// the given size.
func NewMeanAbsoluteValue(windowSize int) *MeanAbsoluteValue {
	return &MeanAbsoluteValue{window: ring.New(windowSize, ring.SumAbs)}
}

// WindowSize returns N.
func (k *MeanAbsoluteValue) WindowSize() int { return k.window.Capacity() }

// Count returns the number of samples currently in the window.
func (k *MeanAbsoluteValue) Count() int { return k.window.Count() }

// Add feeds x into the window and returns the mean absolute value of the
// window's current contents.
func (k *MeanAbsoluteValue) Add(x float32) float32 {
	k.window.Update(x)
	n := k.window.Count()
	if n == 0 {
		return 0
	}
	return k.window.SumAbs() / float32(n)
}

// Reset clears the window to empty.
func (k *MeanAbsoluteValue) Reset() { k.window.Clear() }

// Snapshot returns the window's ordered contents and aggregates for
// serialization.
func (k *MeanAbsoluteValue) Snapshot() (samples []float32, sum, sumAbs, sumSq float32) {
	return k.window.Snapshot()
}

// Restore rebuilds the window from a previously snapshotted state.
func (k *MeanAbsoluteValue) Restore(samples []float32, sum, sumAbs, sumSq float32) error {
	return k.window.Restore(samples, sum, sumAbs, sumSq)
}

// targetWindowSeconds is the duration a MAV window should span when its
// size is inferred from sample timestamps rather than configured directly.
const targetWindowSeconds = 0.25

// InferWindowSize derives a sample-count window size from the most recent
// timestamps (in seconds), using at most the last 10 to estimate the mean
// inter-sample interval. It returns 1 if fewer than two timestamps are
// available or the estimated interval is non-positive.
func InferWindowSize(timestamps []float64) int {
	n := len(timestamps)
	if n < 2 {
		return 1
	}

	if n > 10 {
		timestamps = timestamps[n-10:]
		n = 10
	}

	span := timestamps[n-1] - timestamps[0]
	if span <= 0 {
		return 1
	}

	meanInterval := span / float64(n-1)
	if meanInterval <= 0 {
		return 1
	}

	size := int(math.Floor(targetWindowSeconds / meanInterval))
	if size < 1 {
		size = 1
	}

	return size
}

package ring

import (
	"errors"
	"fmt"
)

// Aggregates is a bitmask of the rolling sums a Window maintains. A kernel
// declares only the aggregates its derivation formula needs so the window
// never pays for bookkeeping it never reads.
type Aggregates uint8

const (
	// Sum is the running sum of stored samples.
	Sum Aggregates = 1 << iota
	// SumAbs is the running sum of |sample|.
	SumAbs
	// SumSq is the running sum of sample^2.
	SumSq
)

// Has reports whether mask includes all bits in want.
func (m Aggregates) Has(want Aggregates) bool {
	return m&want == want
}

// ErrInvalidState is returned by Restore when the supplied aggregates
// disagree with the supplied samples beyond the tolerance in Tolerance.
var ErrInvalidState = errors.New("ring: invalid state")

// Tolerance bounds the allowed drift between a restored aggregate and the
// value recomputed from the restored samples: |aggregate - exact| <=
// max(1, |exact|) * Tolerance.
const Tolerance = 1e-4

// Window is a fixed-capacity circular store of recent float32 samples with
// O(1)-per-sample rolling aggregates. Capacity N is fixed at construction;
// the window is never resized.
type Window struct {
	samples []float32
	cursor  int
	count   int
	needed  Aggregates

	sum    float32
	sumAbs float32
	sumSq  float32
}

// New returns an empty Window of capacity n, maintaining the aggregates in
// needed. Panics if n <= 0, matching the spec invariant N > 0.
func New(n int, needed Aggregates) *Window {
	if n <= 0 {
		panic("ring: capacity must be > 0")
	}
	return &Window{
		samples: make([]float32, n),
		needed:  needed,
	}
}

// Capacity returns N.
func (w *Window) Capacity() int { return len(w.samples) }

// Count returns the number of samples currently stored (<= Capacity).
func (w *Window) Count() int { return w.count }

// Full reports whether the window holds Capacity() samples.
func (w *Window) Full() bool { return w.count == len(w.samples) }

// Sum returns the running sum of stored samples. Only meaningful if the
// window was constructed with the Sum aggregate.
func (w *Window) Sum() float32 { return w.sum }

// SumAbs returns the running sum of |sample|.
func (w *Window) SumAbs() float32 { return w.sumAbs }

// SumSq returns the running sum of sample^2.
func (w *Window) SumSq() float32 { return w.sumSq }

// Update adds x to the window, evicting the oldest sample when the window
// is full, and updates exactly the aggregates this window was constructed
// to maintain. Runs in O(1) regardless of capacity.
func (w *Window) Update(x float32) {
	n := len(w.samples)

	if w.count == n {
		evicted := w.samples[w.cursor]
		if w.needed.Has(Sum) {
			w.sum -= evicted
		}
		if w.needed.Has(SumAbs) {
			w.sumAbs -= absf32(evicted)
		}
		if w.needed.Has(SumSq) {
			w.sumSq -= evicted * evicted
		}
	}

	w.samples[w.cursor] = x
	w.cursor++
	if w.cursor >= n {
		w.cursor = 0
	}
	if w.count < n {
		w.count++
	}

	if w.needed.Has(Sum) {
		w.sum += x
	}
	if w.needed.Has(SumAbs) {
		w.sumAbs += absf32(x)
	}
	if w.needed.Has(SumSq) {
		w.sumSq += x * x
	}
}

// Clear zeros aggregates and resets the window to empty, preserving
// capacity and the declared aggregate set.
func (w *Window) Clear() {
	for i := range w.samples {
		w.samples[i] = 0
	}
	w.cursor = 0
	w.count = 0
	w.sum = 0
	w.sumAbs = 0
	w.sumSq = 0
}

// Snapshot returns the logically ordered contents (oldest to newest) and
// the aggregates this window maintains. Used only by state serialization;
// the returned slice is a copy and safe for the caller to retain.
func (w *Window) Snapshot() (samples []float32, sum, sumAbs, sumSq float32) {
	out := make([]float32, w.count)
	start := w.cursor
	if w.count < len(w.samples) {
		start = 0
	}
	for i := 0; i < w.count; i++ {
		out[i] = w.samples[(start+i)%len(w.samples)]
	}
	return out, w.sum, w.sumAbs, w.sumSq
}

// Restore rebuilds the window from a previously snapshotted sample vector
// and its claimed aggregates. Aggregates are always recomputed from
// samples (never trusted blindly); Restore fails with ErrInvalidState if
// a declared aggregate disagrees with the recomputed value beyond
// Tolerance. len(samples) must not exceed Capacity().
func (w *Window) Restore(samples []float32, sum, sumAbs, sumSq float32) error {
	if len(samples) > len(w.samples) {
		return fmt.Errorf("%w: %d samples exceed capacity %d", ErrInvalidState, len(samples), len(w.samples))
	}

	var gotSum, gotSumAbs, gotSumSq float32
	for _, x := range samples {
		gotSum += x
		gotSumAbs += absf32(x)
		gotSumSq += x * x
	}

	if w.needed.Has(Sum) && !withinTolerance(gotSum, sum) {
		return fmt.Errorf("%w: sum checksum mismatch: got %v, recomputed %v", ErrInvalidState, sum, gotSum)
	}
	if w.needed.Has(SumAbs) && !withinTolerance(gotSumAbs, sumAbs) {
		return fmt.Errorf("%w: sumAbs checksum mismatch: got %v, recomputed %v", ErrInvalidState, sumAbs, gotSumAbs)
	}
	if w.needed.Has(SumSq) && !withinTolerance(gotSumSq, sumSq) {
		return fmt.Errorf("%w: sumSq checksum mismatch: got %v, recomputed %v", ErrInvalidState, sumSq, gotSumSq)
	}

	w.Clear()
	for i, x := range samples {
		w.samples[i] = x
	}
	w.count = len(samples)
	w.cursor = w.count % len(w.samples)
	w.sum = gotSum
	w.sumAbs = gotSumAbs
	w.sumSq = gotSumSq

	return nil
}

func withinTolerance(recomputed, claimed float32) bool {
	bound := absf32(recomputed)
	if bound < 1 {
		bound = 1
	}
	return absf32(recomputed-claimed) <= bound*Tolerance
}

func absf32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

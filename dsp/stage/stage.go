package stage

import (
	"encoding/json"

	"github.com/cwbudde/streamdsp/dsp/buffer"
)

// Kind is the closed set of stage types the engine knows how to build and
// run. There is no open extension point: adding behavior means adding a
// Kind and a corresponding stage type, not implementing Stage from outside
// this package.
type Kind string

const (
	KindMovingAverage     Kind = "movingAverage"
	KindMeanAbsoluteValue Kind = "meanAbsoluteValue"
	KindRMS               Kind = "rms"
	KindVariance          Kind = "variance"
	KindZScoreNormalize   Kind = "zScoreNormalize"
	KindRectify           Kind = "rectify"
)

// Mode selects a statistical stage's algorithm family: a stateful sliding
// window (Moving) or a stateless whole-buffer pass (Batch). Every stage
// kind except rectify carries one.
type Mode string

const (
	ModeMoving Mode = "moving"
	ModeBatch  Mode = "batch"
)

// Info is the read-only projection ListState exposes for one stage: enough
// to inspect a running pipeline without parsing its full serialized state.
// Fields that don't apply to a given stage kind are left at their zero
// value and omitted from JSON.
type Info struct {
	Mode        string  `json:"mode,omitempty"`
	WindowSize  int     `json:"windowSize,omitempty"`
	Epsilon     float64 `json:"epsilon,omitempty"`
	NumChannels int     `json:"numChannels,omitempty"`
	BufferSize  int     `json:"bufferSize,omitempty"`
}

// Stage is the contract every stage kind implements. Process mutates buf
// in place; numChannels must be constant across calls to a given stage
// instance (the first call fixes it).
type Stage interface {
	// Type returns the stage's Kind as a string, as it appears in config
	// and state documents.
	Type() string

	// Process applies the stage in place to an interleaved multi-channel
	// sample buffer: sample i belongs to channel i % numChannels.
	Process(buf []float32, numChannels int) error

	// Serialize returns the stage's internal state as a JSON document
	// suitable for later Deserialize, for crash recovery.
	Serialize() (json.RawMessage, error)

	// Deserialize restores internal state previously produced by
	// Serialize. It validates the restored state against the stage's
	// configuration and fails rather than silently adapting to a
	// mismatch.
	Deserialize(data json.RawMessage) error

	// Reset clears all per-channel state, as if no samples had ever been
	// processed. The channel count fixed by the first Process call is
	// kept.
	Reset()

	// Describe returns a snapshot of the stage's configuration and current
	// occupancy for ListState. It never fails and never mutates state.
	Describe() Info
}

// Config is the wire shape for building a stage: a type-id plus an
// arbitrary params document, the shape of which depends on Type.
type Config struct {
	Type   string          `json:"type"`
	Params json.RawMessage `json:"params"`
}

// channelAggregateState is the serialized form of one channel's ring
// window: its ordered samples plus the aggregates needed to resume
// without replaying history.
type channelAggregateState struct {
	Samples []float32 `json:"samples"`
	Sum     float32   `json:"sum,omitempty"`
	SumAbs  float32   `json:"sumAbs,omitempty"`
	SumSq   float32   `json:"sumSq,omitempty"`
}

// movingStateDoc is the serialized form shared by every window-backed
// stage kind in moving mode (movingAverage, meanAbsoluteValue, rms,
// variance, zScoreNormalize).
type movingStateDoc struct {
	Mode        string                  `json:"mode"`
	WindowSize  int                     `json:"windowSize"`
	NumChannels int                     `json:"numChannels"`
	Channels    []channelAggregateState `json:"channels"`
}

// batchStateDoc is the serialized form shared by every stateless batch-mode
// statistical stage. zScoreNormalize is the only kind that populates
// Epsilon; the rest omit it.
type batchStateDoc struct {
	Mode    string  `json:"mode"`
	Epsilon float64 `json:"epsilon,omitempty"`
}

// deinterleaveChannel copies channel ch's samples out of an interleaved
// buffer into dst, reusing dst's backing array when it is already large
// enough, and returns it resized to exactly one channel's sample count.
// dst may be nil, in which case a fresh Buffer is allocated.
func deinterleaveChannel(buf []float32, numChannels, ch int, dst *buffer.Buffer) *buffer.Buffer {
	if dst == nil {
		dst = buffer.New(0)
	}

	n := len(buf) / numChannels
	dst.Resize(n)

	samples := dst.Samples()
	for i := range samples {
		samples[i] = buf[i*numChannels+ch]
	}
	return dst
}

// interleaveChannel writes src back into channel ch of an interleaved
// buffer, the inverse of deinterleaveChannel.
func interleaveChannel(buf []float32, numChannels, ch int, src *buffer.Buffer) {
	samples := src.Samples()
	for i, v := range samples {
		buf[i*numChannels+ch] = v
	}
}

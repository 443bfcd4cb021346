package stage

import (
	"encoding/json"
	"fmt"

	"github.com/cwbudde/streamdsp/dsp/buffer"
	"github.com/cwbudde/streamdsp/dsp/core"
	"github.com/cwbudde/streamdsp/dsp/kernel"
)

// ZScoreNormalize computes either a sliding z-score normalization over a
// fixed window (moving mode), or a whole-buffer standardization against
// each channel's own mean and variance (batch mode): both apply
// (x - mean) / sqrt(variance + epsilon), independently per channel.
type ZScoreNormalize struct {
	mode       Mode
	windowSize int
	epsilon    float64

	channels    []*kernel.ZScore // moving mode only
	numChannels int              // batch mode only
	scratch     *buffer.Buffer   // batch mode scratch buffer, reused per channel
}

type zScoreNormalizeParams struct {
	Mode       string  `json:"mode"`
	WindowSize int     `json:"windowSize"`
	Epsilon    float64 `json:"epsilon,omitempty"`
}

type zScoreStateDoc struct {
	Mode        string                  `json:"mode"`
	WindowSize  int                     `json:"windowSize"`
	NumChannels int                     `json:"numChannels"`
	Epsilon     float64                 `json:"epsilon"`
	Channels    []channelAggregateState `json:"channels"`
}

// NewZScoreNormalize returns a ZScoreNormalize stage in the given mode
// with the given epsilon. In moving mode windowSize must be > 0; in batch
// mode it is ignored. A non-positive epsilon falls back to
// kernel.DefaultEpsilon.
func NewZScoreNormalize(mode Mode, windowSize int, epsilon float64) (*ZScoreNormalize, error) {
	switch mode {
	case ModeMoving:
		if windowSize <= 0 {
			return nil, fmt.Errorf("%w: windowSize must be > 0 for moving mode, got %d", ErrMissingWindowSize, windowSize)
		}
	case ModeBatch:
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, mode)
	}
	if epsilon <= 0 {
		epsilon = kernel.DefaultEpsilon
	}
	return &ZScoreNormalize{mode: mode, windowSize: windowSize, epsilon: epsilon}, nil
}

func newZScoreNormalizeFromParams(raw json.RawMessage) (Stage, error) {
	var p zScoreNormalizeParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return NewZScoreNormalize(Mode(p.Mode), p.WindowSize, p.Epsilon)
}

// Type implements Stage.
func (s *ZScoreNormalize) Type() string { return string(KindZScoreNormalize) }

// Process implements Stage.
func (s *ZScoreNormalize) Process(buf []float32, numChannels int) error {
	if err := s.ensureChannels(numChannels); err != nil {
		return err
	}
	if len(buf)%numChannels != 0 {
		return fmt.Errorf("%w: length %d not divisible by %d channels", ErrInvalidBufferLength, len(buf), numChannels)
	}

	if s.mode == ModeBatch {
		for ch := 0; ch < numChannels; ch++ {
			s.scratch = deinterleaveChannel(buf, numChannels, ch, s.scratch)
			samples := s.scratch.Samples()
			kernel.BatchZScoreNormalize(samples, samples, s.epsilon)
			interleaveChannel(buf, numChannels, ch, s.scratch)
		}
		return nil
	}

	for i := range buf {
		ch := i % numChannels
		buf[i] = s.channels[ch].Add(buf[i])
	}
	return nil
}

func (s *ZScoreNormalize) ensureChannels(numChannels int) error {
	if numChannels <= 0 {
		return fmt.Errorf("%w: numChannels must be > 0", ErrInvalidConfig)
	}

	if s.mode == ModeBatch {
		if s.numChannels == 0 {
			s.numChannels = numChannels
			return nil
		}
		if s.numChannels != numChannels {
			return fmt.Errorf("%w: configured for %d channels, got %d", ErrChannelCountMismatch, s.numChannels, numChannels)
		}
		return nil
	}

	if len(s.channels) == 0 {
		s.channels = make([]*kernel.ZScore, numChannels)
		for i := range s.channels {
			s.channels[i] = kernel.NewZScore(s.windowSize, s.epsilon)
		}
		return nil
	}
	if len(s.channels) != numChannels {
		return fmt.Errorf("%w: configured for %d channels, got %d", ErrChannelCountMismatch, len(s.channels), numChannels)
	}
	return nil
}

// Reset implements Stage.
func (s *ZScoreNormalize) Reset() {
	for _, ch := range s.channels {
		ch.Reset()
	}
}

// Describe implements Stage.
func (s *ZScoreNormalize) Describe() Info {
	info := Info{Mode: string(s.mode), Epsilon: s.epsilon}
	if s.mode == ModeBatch {
		info.NumChannels = s.numChannels
		return info
	}
	info.WindowSize = s.windowSize
	info.NumChannels = len(s.channels)
	if len(s.channels) > 0 {
		info.BufferSize = s.channels[0].Count()
	}
	return info
}

// Serialize implements Stage.
func (s *ZScoreNormalize) Serialize() (json.RawMessage, error) {
	if s.mode == ModeBatch {
		return json.Marshal(batchStateDoc{Mode: string(ModeBatch), Epsilon: s.epsilon})
	}

	doc := zScoreStateDoc{Mode: string(ModeMoving), WindowSize: s.windowSize, NumChannels: len(s.channels), Epsilon: s.epsilon}
	for _, ch := range s.channels {
		samples, sum, _, sumSq := ch.Snapshot()
		doc.Channels = append(doc.Channels, channelAggregateState{Samples: samples, Sum: sum, SumSq: sumSq})
	}
	return json.Marshal(doc)
}

// Deserialize implements Stage.
func (s *ZScoreNormalize) Deserialize(data json.RawMessage) error {
	if s.mode == ModeBatch {
		var doc batchStateDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		if Mode(doc.Mode) != ModeBatch {
			return fmt.Errorf("%w: state mode %q, configured %q", ErrModeMismatch, doc.Mode, ModeBatch)
		}
		if !core.NearlyEqual(doc.Epsilon, s.epsilon, 1e-12) {
			return fmt.Errorf("%w: state epsilon %v, configured %v", ErrEpsilonMismatch, doc.Epsilon, s.epsilon)
		}
		return nil
	}

	var doc zScoreStateDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if Mode(doc.Mode) != ModeMoving {
		return fmt.Errorf("%w: state mode %q, configured %q", ErrModeMismatch, doc.Mode, ModeMoving)
	}
	if doc.WindowSize != s.windowSize {
		return fmt.Errorf("%w: state windowSize %d, configured %d", ErrWindowSizeMismatch, doc.WindowSize, s.windowSize)
	}
	if !core.NearlyEqual(doc.Epsilon, s.epsilon, 1e-12) {
		return fmt.Errorf("%w: state epsilon %v, configured %v", ErrEpsilonMismatch, doc.Epsilon, s.epsilon)
	}

	channels := make([]*kernel.ZScore, len(doc.Channels))
	for i, cs := range doc.Channels {
		z := kernel.NewZScore(s.windowSize, s.epsilon)
		if err := z.Restore(cs.Samples, cs.Sum, 0, cs.SumSq); err != nil {
			return fmt.Errorf("channel %d: %w", i, err)
		}
		channels[i] = z
	}
	s.channels = channels
	return nil
}

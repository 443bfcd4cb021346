package stage

import (
	"encoding/json"
	"fmt"

	"github.com/cwbudde/streamdsp/dsp/buffer"
	"github.com/cwbudde/streamdsp/dsp/kernel"
)

// Variance computes either a sliding population variance over a fixed
// window (moving mode) or a whole-buffer population variance that
// overwrites every channel sample (batch mode), independently per channel.
type Variance struct {
	mode       Mode
	windowSize int

	channels    []*kernel.Variance // moving mode only
	numChannels int                // batch mode only
	scratch     *buffer.Buffer     // batch mode scratch buffer, reused per channel
}

type varianceParams struct {
	Mode       string `json:"mode"`
	WindowSize int    `json:"windowSize"`
}

// NewVariance returns a Variance stage in the given mode. In moving mode
// windowSize must be > 0; in batch mode it is ignored.
func NewVariance(mode Mode, windowSize int) (*Variance, error) {
	switch mode {
	case ModeMoving:
		if windowSize <= 0 {
			return nil, fmt.Errorf("%w: windowSize must be > 0 for moving mode, got %d", ErrMissingWindowSize, windowSize)
		}
	case ModeBatch:
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, mode)
	}
	return &Variance{mode: mode, windowSize: windowSize}, nil
}

func newVarianceFromParams(raw json.RawMessage) (Stage, error) {
	var p varianceParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return NewVariance(Mode(p.Mode), p.WindowSize)
}

// Type implements Stage.
func (s *Variance) Type() string { return string(KindVariance) }

// Process implements Stage.
func (s *Variance) Process(buf []float32, numChannels int) error {
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
			variance := float32(kernel.BatchVariance(samples))
			for i := range samples {
				samples[i] = variance
			}
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

func (s *Variance) ensureChannels(numChannels int) error {
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
		s.channels = make([]*kernel.Variance, numChannels)
		for i := range s.channels {
			s.channels[i] = kernel.NewVariance(s.windowSize)
		}
		return nil
	}
	if len(s.channels) != numChannels {
		return fmt.Errorf("%w: configured for %d channels, got %d", ErrChannelCountMismatch, len(s.channels), numChannels)
	}
	return nil
}

// Reset implements Stage.
func (s *Variance) Reset() {
	for _, ch := range s.channels {
		ch.Reset()
	}
}

// Describe implements Stage.
func (s *Variance) Describe() Info {
	info := Info{Mode: string(s.mode)}
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
func (s *Variance) Serialize() (json.RawMessage, error) {
	if s.mode == ModeBatch {
		return json.Marshal(batchStateDoc{Mode: string(ModeBatch)})
	}

	doc := movingStateDoc{Mode: string(ModeMoving), WindowSize: s.windowSize, NumChannels: len(s.channels)}
	for _, ch := range s.channels {
		samples, sum, _, sumSq := ch.Snapshot()
		doc.Channels = append(doc.Channels, channelAggregateState{Samples: samples, Sum: sum, SumSq: sumSq})
	}
	return json.Marshal(doc)
}

// Deserialize implements Stage.
func (s *Variance) Deserialize(data json.RawMessage) error {
	if s.mode == ModeBatch {
		var doc batchStateDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		if Mode(doc.Mode) != ModeBatch {
			return fmt.Errorf("%w: state mode %q, configured %q", ErrModeMismatch, doc.Mode, ModeBatch)
		}
		return nil
	}

	var doc movingStateDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if Mode(doc.Mode) != ModeMoving {
		return fmt.Errorf("%w: state mode %q, configured %q", ErrModeMismatch, doc.Mode, ModeMoving)
	}
	if doc.WindowSize != s.windowSize {
		return fmt.Errorf("%w: state windowSize %d, configured %d", ErrWindowSizeMismatch, doc.WindowSize, s.windowSize)
	}

	channels := make([]*kernel.Variance, len(doc.Channels))
	for i, cs := range doc.Channels {
		v := kernel.NewVariance(s.windowSize)
		if err := v.Restore(cs.Samples, cs.Sum, 0, cs.SumSq); err != nil {
			return fmt.Errorf("channel %d: %w", i, err)
		}
		channels[i] = v
	}
	s.channels = channels
	return nil
}

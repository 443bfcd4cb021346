package stage

import (
	"encoding/json"
	"fmt"

	"github.com/cwbudde/streamdsp/dsp/buffer"
	"github.com/cwbudde/streamdsp/dsp/kernel"
)

// MeanAbsoluteValue computes either a sliding mean absolute value over a
// fixed window (moving mode) or a whole-buffer mean absolute value that
// overwrites every channel sample (batch mode), independently per channel.
// In moving mode, if configured with windowSize 0 and a non-empty
// timestamps array, the window size is inferred once from the sampling
// rate implied by those timestamps (see kernel.InferWindowSize); an
// explicit non-zero windowSize always takes precedence.
type MeanAbsoluteValue struct {
	mode       Mode
	windowSize int

	channels    []*kernel.MeanAbsoluteValue // moving mode only
	numChannels int                         // batch mode only
	scratch     *buffer.Buffer              // batch mode scratch buffer, reused per channel
}

type meanAbsoluteValueParams struct {
	Mode       string    `json:"mode"`
	WindowSize int       `json:"windowSize"`
	Timestamps []float64 `json:"timestamps,omitempty"`
}

// NewMeanAbsoluteValue returns a MeanAbsoluteValue stage in the given mode.
// In moving mode windowSize must be > 0; in batch mode it is ignored.
func NewMeanAbsoluteValue(mode Mode, windowSize int) (*MeanAbsoluteValue, error) {
	switch mode {
	case ModeMoving:
		if windowSize <= 0 {
			return nil, fmt.Errorf("%w: windowSize must be > 0 for moving mode, got %d", ErrMissingWindowSize, windowSize)
		}
	case ModeBatch:
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, mode)
	}
	return &MeanAbsoluteValue{mode: mode, windowSize: windowSize}, nil
}

func newMeanAbsoluteValueFromParams(raw json.RawMessage) (Stage, error) {
	var p meanAbsoluteValueParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	windowSize := p.WindowSize
	if windowSize == 0 && len(p.Timestamps) > 0 {
		windowSize = kernel.InferWindowSize(p.Timestamps)
	}

	return NewMeanAbsoluteValue(Mode(p.Mode), windowSize)
}

// Type implements Stage.
func (s *MeanAbsoluteValue) Type() string { return string(KindMeanAbsoluteValue) }

// Process implements Stage.
func (s *MeanAbsoluteValue) Process(buf []float32, numChannels int) error {
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
			mav := float32(kernel.BatchMeanAbsoluteValue(samples))
			for i := range samples {
				samples[i] = mav
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

func (s *MeanAbsoluteValue) ensureChannels(numChannels int) error {
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
		s.channels = make([]*kernel.MeanAbsoluteValue, numChannels)
		for i := range s.channels {
			s.channels[i] = kernel.NewMeanAbsoluteValue(s.windowSize)
		}
		return nil
	}
	if len(s.channels) != numChannels {
		return fmt.Errorf("%w: configured for %d channels, got %d", ErrChannelCountMismatch, len(s.channels), numChannels)
	}
	return nil
}

// Reset implements Stage.
func (s *MeanAbsoluteValue) Reset() {
	for _, ch := range s.channels {
		ch.Reset()
	}
}

// Describe implements Stage.
func (s *MeanAbsoluteValue) Describe() Info {
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
func (s *MeanAbsoluteValue) Serialize() (json.RawMessage, error) {
	if s.mode == ModeBatch {
		return json.Marshal(batchStateDoc{Mode: string(ModeBatch)})
	}

	doc := movingStateDoc{Mode: string(ModeMoving), WindowSize: s.windowSize, NumChannels: len(s.channels)}
	for _, ch := range s.channels {
		samples, _, sumAbs, _ := ch.Snapshot()
		doc.Channels = append(doc.Channels, channelAggregateState{Samples: samples, SumAbs: sumAbs})
	}
	return json.Marshal(doc)
}

// Deserialize implements Stage.
func (s *MeanAbsoluteValue) Deserialize(data json.RawMessage) error {
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

	channels := make([]*kernel.MeanAbsoluteValue, len(doc.Channels))
	for i, cs := range doc.Channels {
		m := kernel.NewMeanAbsoluteValue(s.windowSize)
		if err := m.Restore(cs.Samples, 0, cs.SumAbs, 0); err != nil {
			return fmt.Errorf("channel %d: %w", i, err)
		}
		channels[i] = m
	}
	s.channels = channels
	return nil
}

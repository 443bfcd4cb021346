package stage

import (
	"encoding/json"
	"fmt"

	"github.com/cwbudde/streamdsp/dsp/kernel"
)

// RectifyMode selects which rectification formula a Rectify stage applies.
type RectifyMode string

const (
	RectifyFullWave RectifyMode = "full"
	RectifyHalfWave RectifyMode = "half"
)

// Rectify applies full-wave or half-wave rectification sample by sample.
// It is stateless: channel count is tracked only to validate Process calls
// consistently, not because rectification needs per-channel memory.
type Rectify struct {
	mode        RectifyMode
	numChannels int
}

type rectifyParams struct {
	Mode string `json:"mode"`
}

type rectifyStateDoc struct {
	Mode        string `json:"mode"`
	NumChannels int    `json:"numChannels"`
}

// NewRectify returns a Rectify stage in the given mode.
func NewRectify(mode RectifyMode) (*Rectify, error) {
	switch mode {
	case RectifyFullWave, RectifyHalfWave:
		return &Rectify{mode: mode}, nil
	default:
		return nil, fmt.Errorf("%w: unknown rectify mode %q", ErrInvalidConfig, mode)
	}
}

func newRectifyFromParams(raw json.RawMessage) (Stage, error) {
	var p rectifyParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return NewRectify(RectifyMode(p.Mode))
}

// Type implements Stage.
func (s *Rectify) Type() string { return string(KindRectify) }

// Process implements Stage.
func (s *Rectify) Process(buf []float32, numChannels int) error {
	if numChannels <= 0 {
		return fmt.Errorf("%w: numChannels must be > 0", ErrInvalidConfig)
	}
	if s.numChannels == 0 {
		s.numChannels = numChannels
	} else if s.numChannels != numChannels {
		return fmt.Errorf("%w: configured for %d channels, got %d", ErrChannelCountMismatch, s.numChannels, numChannels)
	}
	if len(buf)%numChannels != 0 {
		return fmt.Errorf("%w: length %d not divisible by %d channels", ErrInvalidBufferLength, len(buf), numChannels)
	}

	switch s.mode {
	case RectifyFullWave:
		kernel.RectifyFullBatch(buf, buf)
	case RectifyHalfWave:
		kernel.RectifyHalfBatch(buf, buf)
	}
	return nil
}

// Reset implements Stage. Rectify has no internal state to clear.
func (s *Rectify) Reset() {}

// Describe implements Stage.
func (s *Rectify) Describe() Info {
	return Info{Mode: string(s.mode), NumChannels: s.numChannels}
}

// Serialize implements Stage.
func (s *Rectify) Serialize() (json.RawMessage, error) {
	return json.Marshal(rectifyStateDoc{Mode: string(s.mode), NumChannels: s.numChannels})
}

// Deserialize implements Stage.
func (s *Rectify) Deserialize(data json.RawMessage) error {
	var doc rectifyStateDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if RectifyMode(doc.Mode) != s.mode {
		return fmt.Errorf("%w: state mode %q, configured %q", ErrModeMismatch, doc.Mode, s.mode)
	}
	s.numChannels = doc.NumChannels
	return nil
}

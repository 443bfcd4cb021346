package stage

import "errors"

// ErrUnknownStageType is returned when a config names a type not in the
// closed Kind set.
var ErrUnknownStageType = errors.New("stage: unknown type")

// ErrInvalidConfig is returned when a stage's params fail validation
// (missing or out-of-range fields, malformed JSON).
var ErrInvalidConfig = errors.New("stage: invalid config")

// ErrChannelCountMismatch is returned when Process is called with a
// channel count different from the one a stage was first configured for.
var ErrChannelCountMismatch = errors.New("stage: channel count mismatch")

// ErrInvalidBufferLength is returned when a buffer's length is not evenly
// divisible by the channel count.
var ErrInvalidBufferLength = errors.New("stage: invalid buffer length")

// ErrWindowSizeMismatch is returned when a restored state document's
// window size disagrees with the stage's configured window size.
var ErrWindowSizeMismatch = errors.New("stage: window size mismatch")

// ErrMissingWindowSize is returned when a statistical stage is configured
// for moving mode without a positive windowSize.
var ErrMissingWindowSize = errors.New("stage: missing window size")

// ErrEpsilonMismatch is returned when a restored zScoreNormalize state
// document's epsilon disagrees with the stage's configured epsilon.
var ErrEpsilonMismatch = errors.New("stage: epsilon mismatch")

// ErrModeMismatch is returned when a restored state document's mode
// (batch/moving, or full/half for rectify) disagrees with the stage's
// configured mode.
var ErrModeMismatch = errors.New("stage: mode mismatch")

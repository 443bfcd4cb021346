package pipeline

import "errors"

// ErrInvalidConfig is returned when a state document is malformed or
// references a stage index out of range.
var ErrInvalidConfig = errors.New("pipeline: invalid config")

// ErrStageCountMismatch is returned by LoadState when the saved document
// names a different number of stages than the pipeline currently has.
var ErrStageCountMismatch = errors.New("pipeline: stage count mismatch")

// ErrStageTypeMismatch is returned by LoadState when a saved stage's type
// disagrees with the type of the stage at the same index in the pipeline.
var ErrStageTypeMismatch = errors.New("pipeline: stage type mismatch")

// ErrPipelineClosed is returned by Process once Close has been called.
var ErrPipelineClosed = errors.New("pipeline: closed")

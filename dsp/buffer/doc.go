// Package buffer provides a reusable float32 buffer type for
// allocation-friendly per-channel scratch space in the stage engine's
// batch-mode stages. All stage code accepts raw []float32 slices; Buffer
// is an optional convenience that helps callers manage allocation and
// reuse in hot paths.
package buffer

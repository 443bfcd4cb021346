// Package pipeline orchestrates an ordered sequence of dsp/stage stages
// into a single processing unit: Process applies every stage in order to
// an interleaved multi-channel buffer, and SaveState/LoadState/ClearState
// manage crash-recovery of the stages' internal windows as a single JSON
// document.
package pipeline

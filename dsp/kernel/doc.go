// Package kernel implements the streaming and batch derivation formulas
// used by the stage engine. Each moving kernel owns exactly one
// ring.Window and a pure function from the window's aggregates and count
// to an output sample; stateless kernels operate sample-by-sample with no
// window at all. Kernels know nothing about stage configuration, JSON, or
// channels — that lives one layer up, in dsp/stage.
package kernel

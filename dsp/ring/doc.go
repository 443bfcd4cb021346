// Package ring provides a fixed-capacity circular sample store with O(1)
// rolling aggregates (sum, sum of absolute values, sum of squares). It is
// the substrate every moving filter kernel in dsp/kernel is built on.
package ring

package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float32 {
	out := make([]float32, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = float32(amplitude * math.Sin(step*float64(i)))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float32 {
	out := make([]float32, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = float32((rng.Float64()*2 - 1) * amplitude)
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float32 {
	out := make([]float32, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float32, length int) []float32 {
	out := make([]float32, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Ones returns a slice of length n filled with 1.0.
func Ones(n int) []float32 {
	return DC(1.0, n)
}

// Interleave combines numChannels equal-length single-channel signals into
// one interleaved multi-channel buffer, where sample i of channel c lands
// at index i*numChannels+c. Panics if any channel's length disagrees.
func Interleave(channels ...[]float32) []float32 {
	if len(channels) == 0 {
		return nil
	}

	n := len(channels[0])
	for _, ch := range channels {
		if len(ch) != n {
			panic("testutil: Interleave channels must share one length")
		}
	}

	numChannels := len(channels)
	out := make([]float32, n*numChannels)
	for i := 0; i < n; i++ {
		for c, ch := range channels {
			out[i*numChannels+c] = ch[i]
		}
	}
	return out
}

// Deinterleave splits an interleaved multi-channel buffer back into one
// slice per channel.
func Deinterleave(buf []float32, numChannels int) [][]float32 {
	n := len(buf) / numChannels
	out := make([][]float32, numChannels)
	for c := range out {
		out[c] = make([]float32, n)
		for i := 0; i < n; i++ {
			out[c][i] = buf[i*numChannels+c]
		}
	}
	return out
}

//nolint:revive
package time

import (
	"math"
	"testing"
)

func makeBenchSignal(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * float64(i) / float64(n))
	}

	return out
}

func BenchmarkCalculate(b *testing.B) {
	sizes := []int{64, 256, 1024, 4096, 16384, 65536}
	for _, n := range sizes {
		signal := makeBenchSignal(n)
		b.Run(itoa(n), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(n * 8))

			for range b.N {
				Calculate(signal)
			}
		})
	}
}

func BenchmarkRMS(b *testing.B) {
	sizes := []int{64, 256, 1024, 4096, 16384, 65536}
	for _, n := range sizes {
		signal := makeBenchSignal(n)
		b.Run(itoa(n), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(n * 8))

			for range b.N {
				RMS(signal)
			}
		})
	}
}

func BenchmarkMoments(b *testing.B) {
	sizes := []int{64, 256, 1024, 4096, 16384, 65536}
	for _, n := range sizes {
		signal := makeBenchSignal(n)
		b.Run(itoa(n), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(n * 8))

			for range b.N {
				Moments(signal)
			}
		})
	}
}

// itoa converts an int to a string without importing strconv.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	buf := [20]byte{}
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

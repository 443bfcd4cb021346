package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/streamdsp/dsp/core"
	"github.com/cwbudde/streamdsp/dsp/signal"
)

func newGenerateCommand() *cobra.Command {
	var (
		kind       string
		channels   int
		samples    int
		sampleRate float64
		freqHz     float64
		amplitude  float64
		seed       int64
		output     string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic multi-channel CSV sample file for exercising a pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return generateSamples(kind, channels, samples, sampleRate, freqHz, amplitude, seed, output)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "sine", "signal kind: sine, noise, or impulse")
	cmd.Flags().IntVar(&channels, "channels", 1, "number of channels")
	cmd.Flags().IntVar(&samples, "samples", 100, "samples per channel")
	cmd.Flags().Float64Var(&sampleRate, "sample-rate", 1000, "sample rate in Hz")
	cmd.Flags().Float64Var(&freqHz, "freq", 50, "tone frequency in Hz (sine kind only)")
	cmd.Flags().Float64Var(&amplitude, "amplitude", 1, "peak amplitude")
	cmd.Flags().Int64Var(&seed, "seed", 1, "deterministic RNG seed; each channel offsets it by its index (noise kind only)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "path to output CSV (required)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// generateSamples builds one synthetic signal per channel with dsp/signal,
// interleaves them, and writes the result as a sample CSV.
func generateSamples(kind string, channels, samples int, sampleRate, freqHz, amplitude float64, seed int64, output string) error {
	if channels <= 0 {
		return fmt.Errorf("generate: channels must be > 0: %d", channels)
	}

	gen := signal.NewGenerator(core.WithSampleRate(sampleRate), core.WithBlockSize(samples))

	perChannel := make([][]float64, channels)
	for c := 0; c < channels; c++ {
		gen.SetSeed(seed + int64(c))

		var (
			data []float64
			err  error
		)
		switch kind {
		case "sine":
			data, err = gen.Sine(freqHz, amplitude, samples)
		case "noise":
			data, err = gen.WhiteNoise(amplitude, samples)
		case "impulse":
			data, err = gen.Impulse(amplitude, samples, 0)
		default:
			return fmt.Errorf("generate: unknown kind %q (want sine, noise, or impulse)", kind)
		}
		if err != nil {
			return fmt.Errorf("generate: channel %d: %w", c, err)
		}
		perChannel[c] = data
	}

	buf := make([]float32, samples*channels)
	for i := 0; i < samples; i++ {
		for c := 0; c < channels; c++ {
			buf[i*channels+c] = float32(perChannel[c][i])
		}
	}

	return writeSampleCSV(output, buf, channels)
}

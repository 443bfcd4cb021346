package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	timestats "github.com/cwbudde/streamdsp/stats/time"
)

func newDescribeCommand(logger *slog.Logger) *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print per-channel descriptive statistics for a CSV sample file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return describeSamples(logger, inputPath)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "path to input CSV (required)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func describeSamples(logger *slog.Logger, inputPath string) error {
	samples, numChannels, err := readSampleCSV(inputPath)
	if err != nil {
		return err
	}
	logger.Info("input read", "samples", len(samples), "channels", numChannels)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Channel\tDC\tRMS\tPeak\tCrest\tZeroCrossings\tVariance\tSkewness\tKurtosis\n")

	channel := make([]float64, 0, len(samples)/max(numChannels, 1))
	for ch := 0; ch < numChannels; ch++ {
		channel = channel[:0]
		for i := ch; i < len(samples); i += numChannels {
			channel = append(channel, float64(samples[i]))
		}

		s := timestats.Calculate(channel)
		fmt.Fprintf(tw, "%d\t%.6g\t%.6g\t%.6g\t%.6g\t%d\t%.6g\t%.6g\t%.6g\n",
			ch, s.DC, s.RMS, s.Peak, s.CrestFactor, s.ZeroCrossings, s.Variance, s.Skewness, s.Kurtosis)
	}

	return tw.Flush()
}

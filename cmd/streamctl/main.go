// Command streamctl runs a streamdsp stage pipeline, built from a JSON
// config document, over a CSV file of interleaved multi-channel samples.
//
// Usage:
//
//	streamctl run --config pipeline.json --input samples.csv --output out.csv
//	streamctl list --config pipeline.json
//	streamctl generate --kind sine --channels 2 --samples 1000 --output samples.csv
//	streamctl describe --input samples.csv
//
// Examples:
//
//	streamctl run -c pipeline.json -i emg.csv -o emg.filtered.csv
//	streamctl list -c pipeline.json
//	streamctl generate --kind noise --channels 4 --samples 500 -o noise.csv
//	streamctl describe -i emg.csv
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	root := &cobra.Command{
		Use:   "streamctl",
		Short: "Run a streamdsp stage pipeline over a CSV sample file",
		Long: `streamctl builds a stage pipeline from a JSON config document and
feeds it interleaved multi-channel samples from a CSV file, one column per
channel. It is a reference Go consumer of the dsp/pipeline API, not a
replacement for embedding the package directly.`,
	}

	root.AddCommand(newRunCommand(logger))
	root.AddCommand(newListCommand(logger))
	root.AddCommand(newGenerateCommand())
	root.AddCommand(newDescribeCommand(logger))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

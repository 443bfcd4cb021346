package main

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

func newRunCommand(logger *slog.Logger) *cobra.Command {
	var configPath, inputPath, outputPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process a CSV sample file through a pipeline config",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(logger, configPath, inputPath, outputPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to pipeline config JSON (required)")
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "path to input CSV (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "path to output CSV (required)")
	for _, name := range []string{"config", "input", "output"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runPipeline(logger *slog.Logger, configPath, inputPath, outputPath string) error {
	cfg, err := loadPipelineConfig(configPath)
	if err != nil {
		return err
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	logger.Info("pipeline built", "stages", len(cfg.Stages))

	samples, numChannels, err := readSampleCSV(inputPath)
	if err != nil {
		return err
	}
	logger.Info("input read", "samples", len(samples), "channels", numChannels)

	start := time.Now()
	future := p.Process(samples, numChannels)
	out, err := future.Wait()
	if err != nil {
		return err
	}
	logger.Info("processed", "elapsed", time.Since(start))

	if err := writeSampleCSV(outputPath, out, numChannels); err != nil {
		return err
	}

	for _, s := range p.ListState() {
		logger.Info("stage", "index", s.Index, "type", s.Type)
	}

	return nil
}

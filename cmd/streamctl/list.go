package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCommand(logger *slog.Logger) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the stages a pipeline config would build, without processing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listPipeline(logger, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to pipeline config JSON (required)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func listPipeline(logger *slog.Logger, configPath string) error {
	cfg, err := loadPipelineConfig(configPath)
	if err != nil {
		return err
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Index\tType\n")
	for _, s := range p.ListState() {
		fmt.Fprintf(tw, "%d\t%s\n", s.Index, s.Type)
	}
	return tw.Flush()
}

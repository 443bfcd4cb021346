package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cwbudde/streamdsp/dsp/pipeline"
	"github.com/cwbudde/streamdsp/dsp/stage"
)

// pipelineConfig is the on-disk shape for a pipeline's stage list: an
// ordered array of stage type/params pairs, applied in array order.
type pipelineConfig struct {
	Stages []stage.Config `json:"stages"`
}

func loadPipelineConfig(path string) (pipelineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pipelineConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg pipelineConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return pipelineConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

func buildPipeline(cfg pipelineConfig) (*pipeline.Pipeline, error) {
	p := pipeline.New()
	for i, sc := range cfg.Stages {
		if err := p.AddStage(sc); err != nil {
			p.Close()
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
	}
	return p, nil
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tomas/iqdb/internal/haar"
)

// weightsFile is the shape of an operator-supplied weight-table override:
// six bands, three channels each, matching haar.WeightTable's band-major,
// channel-minor layout.
type weightsFile struct {
	Weights [][]float64 `yaml:"weights"`
}

// LoadWeights returns the scoring weight table for this process:
// haar.DefaultWeights, band-by-band overridden from cfg.Weights.Path if
// set. It always returns a fresh value built from the default — no
// package-level state is mutated, so retuning weights never affects an
// already-open Database or a concurrently starting one.
func LoadWeights(cfg *Config) (haar.WeightTable, error) {
	weights := haar.DefaultWeights
	if cfg.Weights.Path == "" {
		return weights, nil
	}

	data, err := os.ReadFile(cfg.Weights.Path)
	if err != nil {
		return haar.WeightTable{}, fmt.Errorf("config: read weights file %s: %w", cfg.Weights.Path, err)
	}

	var wf weightsFile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return haar.WeightTable{}, fmt.Errorf("config: parse weights file %s: %w", cfg.Weights.Path, err)
	}

	if len(wf.Weights) != len(weights) {
		return haar.WeightTable{}, fmt.Errorf("config: weights file %s must have %d bands, got %d", cfg.Weights.Path, len(weights), len(wf.Weights))
	}
	for band, row := range wf.Weights {
		if len(row) != haar.Channels {
			return haar.WeightTable{}, fmt.Errorf("config: weights file %s band %d must have %d channels, got %d", cfg.Weights.Path, band, haar.Channels, len(row))
		}
		for c, v := range row {
			weights[band][c] = v
		}
	}
	return weights, nil
}

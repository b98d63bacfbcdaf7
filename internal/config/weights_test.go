package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomas/iqdb/internal/haar"
)

func TestLoadWeights_NoPathReturnsDefaults(t *testing.T) {
	cfg := &Config{}
	weights, err := LoadWeights(cfg)
	require.NoError(t, err)
	assert.Equal(t, haar.DefaultWeights, weights)
}

func TestLoadWeights_OverridesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	body := `weights:
  - [1, 2, 3]
  - [4, 5, 6]
  - [7, 8, 9]
  - [10, 11, 12]
  - [13, 14, 15]
  - [16, 17, 18]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg := &Config{Weights: WeightsConfig{Path: path}}
	weights, err := LoadWeights(cfg)
	require.NoError(t, err)
	assert.Equal(t, haar.WeightTable{
		{1, 2, 3}, {4, 5, 6}, {7, 8, 9}, {10, 11, 12}, {13, 14, 15}, {16, 17, 18},
	}, weights)
}

func TestLoadWeights_DoesNotMutateDefaultWeights(t *testing.T) {
	before := haar.DefaultWeights

	path := filepath.Join(t.TempDir(), "weights.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`weights:
  - [99, 99, 99]
  - [0, 0, 0]
  - [0, 0, 0]
  - [0, 0, 0]
  - [0, 0, 0]
  - [0, 0, 0]
`), 0o644))

	cfg := &Config{Weights: WeightsConfig{Path: path}}
	_, err := LoadWeights(cfg)
	require.NoError(t, err)

	assert.Equal(t, before, haar.DefaultWeights)
}

func TestLoadWeights_WrongBandCountIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	require.NoError(t, os.WriteFile(path, []byte("weights:\n  - [1, 2, 3]\n"), 0o644))

	cfg := &Config{Weights: WeightsConfig{Path: path}}
	_, err := LoadWeights(cfg)
	assert.Error(t, err)
}

func TestLoadWeights_MissingFileIsAnError(t *testing.T) {
	cfg := &Config{Weights: WeightsConfig{Path: filepath.Join(t.TempDir(), "missing.yaml")}}
	_, err := LoadWeights(cfg)
	assert.Error(t, err)
}

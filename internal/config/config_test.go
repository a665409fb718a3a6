package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadReadsWeightsFromEnv(t *testing.T) {
	t.Setenv("WEIGHTS", "0.10,0.20,0.30,0.15,0.15,0.10")

	cfg := Load()
	assert.Equal(t, Weights{RoadType: 0.10, Light: 0.20, Crime: 0.30, CCTV: 0.15, Place: 0.15, Traffic: 0.10}, cfg.Weights)
}

func TestLoadIgnoresMalformedWeights(t *testing.T) {
	t.Setenv("WEIGHTS", "not,a,valid,weights,string")

	cfg := Load()
	assert.Equal(t, DefaultWeights, cfg.Weights)
}

func TestLoadIgnoresWeightsNotSummingToOne(t *testing.T) {
	t.Setenv("WEIGHTS", "0.5,0.5,0.5,0.5,0.5,0.5")

	cfg := Load()
	assert.Equal(t, DefaultWeights, cfg.Weights)
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	assert.InDelta(t, 1.0, DefaultWeights.Sum(), 1e-9)
	assert.InDelta(t, 1.0, NightWeights.Sum(), 1e-9)
}

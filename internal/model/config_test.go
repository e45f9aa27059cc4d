package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thep2p/go-eth-outcall/internal/model"
)

// TestDefaultConfigIsValid ensures the defaults pass validation.
func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, model.DefaultConfig().Validate())
}

// TestConfigValidation verifies each constraint rejects out-of-range values.
func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Config)
	}{
		{name: "zero response bound", mutate: func(c *model.Config) { c.MaxResponseBytes = 0 }},
		{name: "response bound above host limit", mutate: func(c *model.Config) { c.MaxResponseBytes = 2_000_001 }},
		{name: "zero cycles", mutate: func(c *model.Config) { c.Cycles = 0 }},
		{name: "balance below one call", mutate: func(c *model.Config) { c.CycleBalance = c.Cycles - 1 }},
		{name: "no replicas", mutate: func(c *model.Config) { c.Replicas = 0 }},
		{name: "quorum above replicas", mutate: func(c *model.Config) { c.Quorum = c.Replicas + 1 }},
		{name: "zero timeout", mutate: func(c *model.Config) { c.RequestTimeout = 0 }},
		{name: "unknown hash mode", mutate: func(c *model.Config) { c.HashMode = "sha256" }},
		{name: "unknown malformed policy", mutate: func(c *model.Config) { c.MalformedSignature = "panic" }},
		{name: "unknown log level", mutate: func(c *model.Config) { c.LogLevel = "loud" }},
		{name: "network without url", mutate: func(c *model.Config) { c.Networks["holesky"] = "not a url" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := model.DefaultConfig()
			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), model.ErrInput)
		})
	}
}

// TestConfigApply verifies options are applied to a copy, leaving the original untouched.
func TestConfigApply(t *testing.T) {
	base := model.DefaultConfig()
	cfg := base.Apply(
		model.WithNetwork("local", "http://127.0.0.1:8545"),
		model.WithReplicas(7, 5),
		model.WithCycleBalance(10*model.DefaultCycles),
	)

	require.Equal(t, "http://127.0.0.1:8545", cfg.Networks["local"])
	require.Equal(t, 7, cfg.Replicas)
	require.Equal(t, 5, cfg.Quorum)
	require.Equal(t, uint64(10*model.DefaultCycles), cfg.CycleBalance)
	require.NoError(t, cfg.Validate())

	require.NotContains(t, base.Networks, "local", "base config must not be mutated")
	require.Equal(t, model.DefaultReplicas, base.Replicas)
}

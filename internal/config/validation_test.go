// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/domain/event/variant/defense"
)

func TestValidateExample(t *testing.T) {
	require.NoError(t, Validate(Example()))
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		field  string
	}{
		{"log level", func(c *AppConfig) { c.LogLevel = "trace" }, "log_level"},
		{"backend", func(c *AppConfig) { c.Store.Backend = "postgres" }, "store.backend"},
		{"sqlite path", func(c *AppConfig) { c.Store.Path = "" }, "store.path"},
		{"redis addr", func(c *AppConfig) { c.Store.Backend = "redis"; c.Store.Redis.Addr = "" }, "store.redis.addr"},
		{"sampling rate", func(c *AppConfig) { c.Telemetry.Enabled = true; c.Telemetry.SamplingRate = 2 }, "telemetry.sampling_rate"},
		{"sweep interval", func(c *AppConfig) { c.Engine.SweepInterval = 0 }, "engine.sweep_interval"},
		{"duplicate names", func(c *AppConfig) { c.Events[1].Name = c.Events[0].Name }, "events[1].name"},
		{"shared map", func(c *AppConfig) { c.Events[1].MapNumber = c.Events[0].MapNumber }, "events[1].map_number"},
		{"capacity", func(c *AppConfig) { c.Events[0].Capacity = 0 }, "events[0].capacity"},
		{"open window", func(c *AppConfig) { c.Events[0].OpenWindow = 0 }, "events[0].open_window"},
		{"unknown variant", func(c *AppConfig) { c.Events[0].Variant = "king_of_the_hill" }, "events[0].variant"},
		{"unknown policy", func(c *AppConfig) { c.Events[0].Policy = "per_guild" }, "events[0].policy"},
		{"missing entrance", func(c *AppConfig) { c.Events[0].Entrance = nil }, "events[0].entrance"},
		{"entrance outside bounds", func(c *AppConfig) { c.Events[0].Entrance = &model.Point{X: 500, Y: 500} }, "events[0].entrance"},
		{"wave order", func(c *AppConfig) { c.Events[2].Waves[0].End = 0 }, "events[2].waves[0].end"},
		{"wave beyond play", func(c *AppConfig) { c.Events[2].Waves[2].End = time.Hour }, "events[2].waves[2].end"},
		{"duplicate wave", func(c *AppConfig) { c.Events[2].Waves[1].Number = 1 }, "events[2].waves[1].number"},
		{"spawn count", func(c *AppConfig) { c.Events[2].Waves[0].Spawns[0].Count = 0 }, "events[2].waves[0].spawns[0].count"},
		{"unknown reward type", func(c *AppConfig) { c.Events[0].Rewards[0].Type = "title" }, "events[0].rewards"},
		{"rank order", func(c *AppConfig) { c.Events[0].RankOrder = "sideways" }, "events[0].rank_order"},
		{"missing block", func(c *AppConfig) { c.Events[0].Capture = nil }, "events[0].capture"},
		{"extra block", func(c *AppConfig) { c.Events[0].Defense = &defense.Config{KillScore: 1} }, "events[0]"},
		{"bad variant block", func(c *AppConfig) { c.Events[1].Arena.Explosion.Chance = 3 }, "events[1].arena"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Example()
			tt.mutate(&cfg)
			err := Validate(cfg)
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), "validation failed for "+tt.field)
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Example()
	cfg.Events[0].Capacity = 0
	cfg.Events[1].Countdown = 0
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "events[0].capacity")
	assert.Contains(t, err.Error(), "events[1].countdown")
}

func TestValidateDefinition(t *testing.T) {
	d := Example().Events[2]
	require.NoError(t, ValidateDefinition(d))

	d.Defense = nil
	require.ErrorIs(t, ValidateDefinition(d), ErrInvalidConfig)
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/eventd/internal/domain/event/model"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eventd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsOnly(t *testing.T) {
	cfg, err := NewLoader("").Load()
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(Defaults(), cfg))
}

func TestLoadExampleRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventd.yaml")
	require.NoError(t, WriteFile(path, Example(), false))

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	if diff := cmp.Diff(Example(), cfg, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeYAML(t, `
log_level: debug
store:
  backend: badger
  path: /var/lib/eventd
engine:
  sweep_interval: 1m
`)
	t.Setenv("EVENTD_STORE_BACKEND", "memory")
	t.Setenv("EVENTD_SWEEP_INTERVAL", "5s")
	t.Setenv("EVENTD_TELEMETRY_SAMPLING_RATE", "not-a-number")

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "/var/lib/eventd", cfg.Store.Path)
	assert.Equal(t, 5*time.Second, cfg.Engine.SweepInterval)
	assert.Equal(t, Defaults().Telemetry.SamplingRate, cfg.Telemetry.SamplingRate)
	assert.Equal(t, Defaults().Engine.BusBuffer, cfg.Engine.BusBuffer)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeYAML(t, "log_levle: debug\n")
	_, err := NewLoader(path).Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownConfigField), "got %v", err)
}

func TestLoadRejectsTrailingDocuments(t *testing.T) {
	path := writeYAML(t, "log_level: info\n---\nlog_level: debug\n")
	_, err := NewLoader(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple documents")
}

func TestLoadRejectsNonYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventd.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	_, err := NewLoader(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only YAML")
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := NewLoader(writeYAML(t, "")).Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults().Store, cfg.Store)
}

func TestLoadNormalizesDefinitions(t *testing.T) {
	path := writeYAML(t, `
events:
  - name: " square "
    variant: Wave_Defense
    map_number: 9
    policy: ONE_PER_PARTY
    capacity: 5
    open_window: 1m
    countdown: 10s
    play_duration: 5m
    entrance: {x: 3, y: 4}
    waves:
      - number: 1
        start: 0s
        end: 1m
        announcement: "ANNOUNCE"
    defense:
      kill_score: 1
`)
	// Decomposed input: "e" followed by a combining acute accent.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(strings.ReplaceAll(string(raw), "ANNOUNCE", "Cafe\u0301 opens")), 0o600))

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	require.Len(t, cfg.Events, 1)

	d := cfg.Events[0]
	assert.Equal(t, "square", d.Name)
	assert.Equal(t, model.VariantDefense, d.Variant)
	assert.Equal(t, model.PolicyOnePerParty, d.Policy)
	assert.Equal(t, 1, d.Levels)
	assert.Equal(t, DefaultGuardLead, d.GuardLead)
	assert.Equal(t, "Caf\u00e9 opens", d.Waves[0].Announcement)
	assert.Equal(t, &model.Point{X: 3, Y: 4}, d.Entrance)

	got, ok := cfg.Definition("square")
	require.True(t, ok)
	assert.Equal(t, d.Name, got.Name)
}

func TestLoadRejectsBadPolicy(t *testing.T) {
	path := writeYAML(t, `
events:
  - name: x
    variant: wave_defense
    policy: per_guild
`)
	_, err := NewLoader(path).Load()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "per_guild")
}

func TestRankDescending(t *testing.T) {
	d := EventDefinition{}
	assert.True(t, d.RankDescending(true))
	d.RankOrder = RankOrderAscending
	assert.False(t, d.RankDescending(true))
	d.RankOrder = RankOrderDescending
	assert.True(t, d.RankDescending(false))
}

func TestLifetime(t *testing.T) {
	d := EventDefinition{OpenWindow: time.Minute, Countdown: 10 * time.Second, PlayDuration: 5 * time.Minute, ExitDelay: 30 * time.Second}
	assert.Equal(t, 6*time.Minute+40*time.Second, d.Lifetime())
}

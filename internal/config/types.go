// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"time"

	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/domain/event/variant/arena"
	"github.com/ManuGH/eventd/internal/domain/event/variant/capture"
	"github.com/ManuGH/eventd/internal/domain/event/variant/defense"
)

// AppConfig is the complete daemon configuration.
type AppConfig struct {
	LogLevel  string            `yaml:"log_level"`
	DryRun    bool              `yaml:"dry_run"` // run against the in-process world
	Store     StoreConfig       `yaml:"store"`
	Status    StatusConfig      `yaml:"status"`
	Telemetry TelemetryConfig   `yaml:"telemetry"`
	Engine    EngineConfig      `yaml:"engine"`
	Events    []EventDefinition `yaml:"events"`
}

// StoreConfig selects the ranking persistence backend.
type StoreConfig struct {
	Backend string      `yaml:"backend"` // memory, sqlite, badger, redis
	Path    string      `yaml:"path"`
	Redis   RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// StatusConfig configures the read-only status server. An empty Listen
// disables it.
type StatusConfig struct {
	Listen    string `yaml:"listen"`
	RateLimit int    `yaml:"rate_limit"` // requests per minute per client
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ServiceName  string  `yaml:"service_name"`
	Exporter     string  `yaml:"exporter"` // grpc or http
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"sampling_rate"`
}

// EngineConfig tunes the instance engine.
type EngineConfig struct {
	SweepInterval   time.Duration `yaml:"sweep_interval"`
	StuckGrace      time.Duration `yaml:"stuck_grace"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	PublishTimeout  time.Duration `yaml:"publish_timeout"`
	BusBuffer       int           `yaml:"bus_buffer"`
}

// RankOrder overrides the variant's score sort direction.
type RankOrder string

const (
	RankOrderVariant    RankOrder = ""
	RankOrderAscending  RankOrder = "asc"
	RankOrderDescending RankOrder = "desc"
)

// EventDefinition describes one configured event. Instances keep the
// definition they were created with; reloads affect only new instances.
type EventDefinition struct {
	Name         string               `yaml:"name"`
	Variant      model.VariantKind    `yaml:"variant"`
	MapNumber    int                  `yaml:"map_number"`
	Levels       int                  `yaml:"levels"` // valid levels are 1..Levels
	Policy       model.CreationPolicy `yaml:"policy"`
	Capacity     int                  `yaml:"capacity"`
	OpenWindow   time.Duration        `yaml:"open_window"`
	Countdown    time.Duration        `yaml:"countdown"`
	PlayDuration time.Duration        `yaml:"play_duration"`
	ExitDelay    time.Duration        `yaml:"exit_delay"`
	GuardLead    time.Duration        `yaml:"guard_lead"` // guard broadcast lead before a phase change
	Entrance     *model.Point         `yaml:"entrance"`
	Bounds       *model.Area          `yaml:"bounds,omitempty"`
	Waves        []model.SpawnWave    `yaml:"waves,omitempty"`
	Rewards      []model.RewardEntry  `yaml:"rewards"`
	RankOrder    RankOrder            `yaml:"rank_order,omitempty"`

	Capture *capture.Config `yaml:"capture,omitempty"`
	Arena   *arena.Config   `yaml:"arena,omitempty"`
	Defense *defense.Config `yaml:"defense,omitempty"`
}

// Lifetime is the nominal wall time of one instance from creation to
// disposal.
func (d EventDefinition) Lifetime() time.Duration {
	return d.OpenWindow + d.Countdown + d.PlayDuration + d.ExitDelay
}

// RankDescending resolves the sort direction against the variant default.
func (d EventDefinition) RankDescending(variantDefault bool) bool {
	switch d.RankOrder {
	case RankOrderAscending:
		return false
	case RankOrderDescending:
		return true
	default:
		return variantDefault
	}
}

// Definition returns the named event definition.
func (c AppConfig) Definition(name string) (EventDefinition, bool) {
	for _, d := range c.Events {
		if d.Name == name {
			return d, true
		}
	}
	return EventDefinition{}, false
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"

	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/domain/event/reward"
	"github.com/ManuGH/eventd/internal/validate"
)

var (
	storeBackends = []string{"memory", "sqlite", "badger", "redis"}
	exporters     = []string{"grpc", "http"}
	variants      = []string{string(model.VariantCapture), string(model.VariantArena), string(model.VariantDefense)}
	rankOrders    = []string{string(RankOrderVariant), string(RankOrderAscending), string(RankOrderDescending)}
)

// Validate checks the configuration and reports every problem at once.
// The returned error wraps ErrInvalidConfig.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.LogLevel("log_level", cfg.LogLevel)

	v.OneOf("store.backend", cfg.Store.Backend, storeBackends)
	switch cfg.Store.Backend {
	case "sqlite":
		v.NotEmpty("store.path", cfg.Store.Path)
	case "redis":
		v.NotEmpty("store.redis.addr", cfg.Store.Redis.Addr)
		v.Range("store.redis.db", cfg.Store.Redis.DB, 0, 15)
	}

	v.NonNegative("status.rate_limit", cfg.Status.RateLimit)

	if cfg.Telemetry.Enabled {
		v.OneOf("telemetry.exporter", cfg.Telemetry.Exporter, exporters)
		v.NotEmpty("telemetry.endpoint", cfg.Telemetry.Endpoint)
		if cfg.Telemetry.SamplingRate < 0 || cfg.Telemetry.SamplingRate > 1 {
			v.AddError("telemetry.sampling_rate", "must be between 0.0 and 1.0", cfg.Telemetry.SamplingRate)
		}
	}

	v.PositiveDuration("engine.sweep_interval", cfg.Engine.SweepInterval)
	v.NonNegativeDuration("engine.stuck_grace", cfg.Engine.StuckGrace)
	v.PositiveDuration("engine.shutdown_timeout", cfg.Engine.ShutdownTimeout)
	v.PositiveDuration("engine.publish_timeout", cfg.Engine.PublishTimeout)
	v.Positive("engine.bus_buffer", cfg.Engine.BusBuffer)

	seen := make(map[string]bool, len(cfg.Events))
	maps := make(map[int]string, len(cfg.Events))
	for i, d := range cfg.Events {
		prefix := fmt.Sprintf("events[%d]", i)
		if seen[d.Name] {
			v.AddError(prefix+".name", "duplicate event name", d.Name)
		}
		seen[d.Name] = true
		// Instances are keyed by map number, so two events cannot share one.
		if other, ok := maps[d.MapNumber]; ok && other != d.Name {
			v.AddError(prefix+".map_number", fmt.Sprintf("map already used by event %q", other), d.MapNumber)
		}
		maps[d.MapNumber] = d.Name
		validateDefinition(v, prefix, d)
	}

	if err := v.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ValidateDefinition checks a single event definition.
func ValidateDefinition(d EventDefinition) error {
	v := validate.New()
	validateDefinition(v, d.Name, d)
	if err := v.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func validateDefinition(v *validate.Validator, prefix string, d EventDefinition) {
	v.NotEmpty(prefix+".name", d.Name)
	v.OneOf(prefix+".variant", string(d.Variant), variants)
	if _, err := model.ParseCreationPolicy(string(d.Policy)); err != nil {
		v.AddError(prefix+".policy", err.Error(), d.Policy)
	}
	v.NonNegative(prefix+".map_number", d.MapNumber)
	v.Positive(prefix+".levels", d.Levels)
	v.Positive(prefix+".capacity", d.Capacity)

	v.PositiveDuration(prefix+".open_window", d.OpenWindow)
	v.PositiveDuration(prefix+".countdown", d.Countdown)
	v.PositiveDuration(prefix+".play_duration", d.PlayDuration)
	v.NonNegativeDuration(prefix+".exit_delay", d.ExitDelay)
	v.NonNegativeDuration(prefix+".guard_lead", d.GuardLead)

	v.Present(prefix+".entrance", d.Entrance != nil)
	if d.Entrance != nil && d.Bounds != nil {
		v.Inside(prefix+".entrance", *d.Entrance, *d.Bounds)
	}

	numbers := make(map[int]bool, len(d.Waves))
	for i, w := range d.Waves {
		field := fmt.Sprintf("%s.waves[%d]", prefix, i)
		v.Positive(field+".number", w.Number)
		if numbers[w.Number] {
			v.AddError(field+".number", "duplicate wave number", w.Number)
		}
		numbers[w.Number] = true
		v.Window(field, w.Start, w.End, d.PlayDuration)
		for j, s := range w.Spawns {
			v.NotEmpty(fmt.Sprintf("%s.spawns[%d].type", field, j), s.Type)
			v.Positive(fmt.Sprintf("%s.spawns[%d].count", field, j), s.Count)
		}
	}

	v.Custom(prefix+".rewards", len(d.Rewards), reward.Validate(d.Rewards))
	v.OneOf(prefix+".rank_order", string(d.RankOrder), rankOrders)

	validateVariantBlock(v, prefix, d)
}

// validateVariantBlock requires exactly the block matching the variant.
func validateVariantBlock(v *validate.Validator, prefix string, d EventDefinition) {
	blocks := 0
	for _, set := range []bool{d.Capture != nil, d.Arena != nil, d.Defense != nil} {
		if set {
			blocks++
		}
	}
	if blocks > 1 {
		v.AddError(prefix, "only the block of the selected variant may be set", d.Variant)
	}

	switch d.Variant {
	case model.VariantCapture:
		if d.Capture == nil {
			v.AddError(prefix+".capture", "capture block is required", nil)
			return
		}
		v.Custom(prefix+".capture", nil, d.Capture.Validate())
	case model.VariantArena:
		if d.Arena == nil {
			v.AddError(prefix+".arena", "arena block is required", nil)
			return
		}
		v.Custom(prefix+".arena", nil, d.Arena.Validate())
	case model.VariantDefense:
		if d.Defense == nil {
			v.AddError(prefix+".defense", "defense block is required", nil)
			return
		}
		v.Custom(prefix+".defense", nil, d.Defense.Validate())
	}
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// envPrefix namespaces every environment override.
const envPrefix = "EVENTD_"

// parseString reads an environment variable or returns defaultValue.
// Sensitive keys are logged without their value.
func parseString(logger zerolog.Logger, key, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	lowerKey := strings.ToLower(key)
	if strings.Contains(lowerKey, "password") || strings.Contains(lowerKey, "token") {
		logger.Debug().
			Str("key", key).
			Str("source", "environment").
			Bool("sensitive", true).
			Msg("using environment variable")
		return value
	}
	logger.Debug().
		Str("key", key).
		Str("value", value).
		Str("source", "environment").
		Msg("using environment variable")
	return value
}

// parseInt reads an integer and falls back to defaultValue on parse errors.
func parseInt(logger zerolog.Logger, key string, defaultValue int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("key", key).
			Str("value", v).
			Int("default", defaultValue).
			Msg("invalid integer in environment variable, using default")
		return defaultValue
	}
	return i
}

// parseBool accepts the strconv.ParseBool spellings plus yes/no and on/off.
func parseBool(logger zerolog.Logger, key string, defaultValue bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("key", key).
			Str("value", v).
			Bool("default", defaultValue).
			Msg("invalid boolean in environment variable, using default")
		return defaultValue
	}
	return b
}

func parseDuration(logger zerolog.Logger, key string, defaultValue time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("key", key).
			Str("value", v).
			Dur("default", defaultValue).
			Msg("invalid duration in environment variable, using default")
		return defaultValue
	}
	return d
}

func parseFloat(logger zerolog.Logger, key string, defaultValue float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("key", key).
			Str("value", v).
			Float64("default", defaultValue).
			Msg("invalid float in environment variable, using default")
		return defaultValue
	}
	return f
}

// mergeEnv applies EVENTD_* overrides. Environment wins over file and defaults.
func mergeEnv(logger zerolog.Logger, cfg *AppConfig) {
	cfg.LogLevel = parseString(logger, envPrefix+"LOG_LEVEL", cfg.LogLevel)
	cfg.DryRun = parseBool(logger, envPrefix+"DRY_RUN", cfg.DryRun)

	cfg.Store.Backend = parseString(logger, envPrefix+"STORE_BACKEND", cfg.Store.Backend)
	cfg.Store.Path = parseString(logger, envPrefix+"STORE_PATH", cfg.Store.Path)
	cfg.Store.Redis.Addr = parseString(logger, envPrefix+"REDIS_ADDR", cfg.Store.Redis.Addr)
	cfg.Store.Redis.Password = parseString(logger, envPrefix+"REDIS_PASSWORD", cfg.Store.Redis.Password)
	cfg.Store.Redis.DB = parseInt(logger, envPrefix+"REDIS_DB", cfg.Store.Redis.DB)

	cfg.Status.Listen = parseString(logger, envPrefix+"STATUS_LISTEN", cfg.Status.Listen)
	cfg.Status.RateLimit = parseInt(logger, envPrefix+"STATUS_RATE_LIMIT", cfg.Status.RateLimit)

	cfg.Telemetry.Enabled = parseBool(logger, envPrefix+"TELEMETRY_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = parseString(logger, envPrefix+"TELEMETRY_EXPORTER", cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = parseString(logger, envPrefix+"TELEMETRY_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = parseFloat(logger, envPrefix+"TELEMETRY_SAMPLING_RATE", cfg.Telemetry.SamplingRate)

	cfg.Engine.SweepInterval = parseDuration(logger, envPrefix+"SWEEP_INTERVAL", cfg.Engine.SweepInterval)
	cfg.Engine.StuckGrace = parseDuration(logger, envPrefix+"STUCK_GRACE", cfg.Engine.StuckGrace)
	cfg.Engine.ShutdownTimeout = parseDuration(logger, envPrefix+"SHUTDOWN_TIMEOUT", cfg.Engine.ShutdownTimeout)
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/log"
)

// Loader builds an AppConfig with precedence ENV > file > defaults.
type Loader struct {
	path   string
	logger zerolog.Logger
}

// NewLoader creates a loader. An empty path means environment-only.
func NewLoader(path string) *Loader {
	return &Loader{path: path, logger: log.WithComponent("config")}
}

// Path returns the config file path the loader reads.
func (l *Loader) Path() string { return l.path }

// Load merges defaults, the file and the environment, normalizes the
// result and validates it.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()
	if l.path != "" {
		if err := l.loadFile(l.path, &cfg); err != nil {
			return AppConfig{}, err
		}
	}
	mergeEnv(l.logger, &cfg)
	if err := normalize(&cfg); err != nil {
		return AppConfig{}, err
	}
	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// loadFile decodes a YAML file over cfg with STRICT parsing.
// Unknown fields cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string, cfg *AppConfig) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("strict config parse error: %w: %v", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}

	l.logger.Debug().Str(log.FieldPath, path).Int("events", len(cfg.Events)).Msg("config file loaded")
	return nil
}

// normalize trims identifiers, applies per-definition defaults and puts
// player-facing texts in NFC.
func normalize(cfg *AppConfig) error {
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	cfg.Telemetry.Exporter = strings.ToLower(strings.TrimSpace(cfg.Telemetry.Exporter))

	for i := range cfg.Events {
		d := &cfg.Events[i]
		d.Name = strings.TrimSpace(d.Name)
		d.Variant = model.VariantKind(strings.ToLower(strings.TrimSpace(string(d.Variant))))
		d.RankOrder = RankOrder(strings.ToLower(strings.TrimSpace(string(d.RankOrder))))

		policy, err := model.ParseCreationPolicy(string(d.Policy))
		if err != nil {
			return fmt.Errorf("%w: events[%d] %s: %v", ErrInvalidConfig, i, d.Name, err)
		}
		d.Policy = policy
		if d.Levels <= 0 {
			d.Levels = 1
		}
		if d.GuardLead == 0 {
			d.GuardLead = DefaultGuardLead
		}

		for w := range d.Waves {
			d.Waves[w].Description = norm.NFC.String(d.Waves[w].Description)
			d.Waves[w].Announcement = norm.NFC.String(d.Waves[w].Announcement)
		}
		if d.Arena != nil {
			for t := range d.Arena.Traps {
				d.Arena.Traps[t].Announcement = norm.NFC.String(d.Arena.Traps[t].Announcement)
			}
		}
	}
	return nil
}

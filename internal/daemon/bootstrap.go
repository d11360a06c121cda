// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ManuGH/eventd/internal/bus"
	"github.com/ManuGH/eventd/internal/config"
	"github.com/ManuGH/eventd/internal/domain/event/manager"
	"github.com/ManuGH/eventd/internal/domain/event/store"
	"github.com/ManuGH/eventd/internal/log"
	"github.com/ManuGH/eventd/internal/telemetry"
	"github.com/ManuGH/eventd/internal/version"
	"github.com/ManuGH/eventd/internal/world/memworld"
)

// Build wires the daemon from a validated configuration. The daemon runs the
// engine against the in-process world; a game server embeds the manager
// package with its own World instead.
func Build(ctx context.Context, cfg config.AppConfig, holder *config.ConfigHolder, logger zerolog.Logger) (*App, error) {
	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version.Version,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	rankings, err := store.Open(ctx, store.Options{
		Backend: cfg.Store.Backend,
		Path:    cfg.Store.Path,
		Redis: store.RedisConfig{
			Addr:      cfg.Store.Redis.Addr,
			Password:  cfg.Store.Redis.Password,
			DB:        cfg.Store.Redis.DB,
			KeyPrefix: cfg.Store.Redis.KeyPrefix,
		},
	})
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("open ranking store: %w", err)
	}
	logger.Info().Str(log.FieldBackend, cfg.Store.Backend).Str(log.FieldPath, cfg.Store.Path).Msg("ranking store opened")

	world := memworld.New()
	for _, d := range cfg.Events {
		if d.Bounds != nil {
			world.SetBounds(d.MapNumber, *d.Bounds)
		}
	}
	notifications := bus.NewMemoryBus(cfg.Engine.BusBuffer)

	engine, err := manager.New(manager.Deps{
		World:     world,
		Grants:    memworld.NewGrants(),
		Messenger: memworld.NewMessenger(cfg.DryRun),
		Store:     rankings,
		Bus:       notifications,
	}, cfg.Events, manager.Options{
		PublishTimeout: cfg.Engine.PublishTimeout,
		StuckGrace:     cfg.Engine.StuckGrace,
		SweepInterval:  cfg.Engine.SweepInterval,
	})
	if err != nil {
		_ = rankings.Close()
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("engine: %w", err)
	}

	status := NewStatusServer(engine, rankings, cfg.Status, cfg.Telemetry.ServiceName)
	mgr, err := NewManager(Deps{
		Logger:          logger,
		StatusAddr:      cfg.Status.Listen,
		StatusHandler:   status.Handler(),
		ShutdownTimeout: cfg.Engine.ShutdownTimeout,
	})
	if err != nil {
		_ = rankings.Close()
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	// LIFO: instances are disposed before their store and tracer go away.
	mgr.RegisterShutdownHook("telemetry", tp.Shutdown)
	mgr.RegisterShutdownHook("ranking_store", func(context.Context) error { return rankings.Close() })
	mgr.RegisterShutdownHook("engine", engine.Shutdown)

	return NewApp(logger, mgr, engine, holder, notifications), nil
}

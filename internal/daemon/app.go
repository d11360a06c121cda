// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/eventd/internal/config"
	"github.com/ManuGH/eventd/internal/domain/event/manager"
	"github.com/ManuGH/eventd/internal/domain/event/ports"
)

// App owns the long-lived runtime: the engine sweeper, config reload wiring,
// the notification relay and the server manager.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	engine       *manager.Engine
	cfgHolder    *config.ConfigHolder
	bus          ports.Bus
	reloadSignal os.Signal
}

func NewApp(logger zerolog.Logger, mgr Manager, engine *manager.Engine, cfgHolder *config.ConfigHolder, bus ports.Bus) *App {
	return &App{
		logger:       logger,
		manager:      mgr,
		engine:       engine,
		cfgHolder:    cfgHolder,
		bus:          bus,
		reloadSignal: syscall.SIGHUP,
	}
}

// Engine returns the instance engine the app drives.
func (a *App) Engine() *manager.Engine { return a.engine }

// Run starts all owned background subsystems and blocks until ctx is cancelled or a fatal error occurs.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}
	if a.engine == nil {
		return ErrMissingEngine
	}

	g, ctx := errgroup.WithContext(ctx)

	// Config watcher is best-effort: startup should not fail if watcher cannot be started.
	if a.cfgHolder != nil {
		if err := a.cfgHolder.StartWatcher(ctx); err != nil {
			a.logger.Warn().Err(err).Str("event", "config.watcher_start_failed").Msg("failed to start config watcher")
		}
		defer a.cfgHolder.Stop()

		applyCh := make(chan config.AppConfig, 1)
		a.cfgHolder.RegisterListener(applyCh)
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case cfg := <-applyCh:
					a.engine.ApplyDefinitions(cfg.Events)
				}
			}
		})
	}

	if a.cfgHolder != nil && a.reloadSignal != nil {
		g.Go(func() error {
			hupChan := make(chan os.Signal, 1)
			signal.Notify(hupChan, a.reloadSignal)
			defer signal.Stop(hupChan)

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-hupChan:
					a.logger.Info().
						Str("event", "config.reload_signal").
						Str("signal", a.reloadSignal.String()).
						Msg("received reload signal, reloading config")
					if err := a.cfgHolder.Reload(context.Background()); err != nil {
						a.logger.Warn().Err(err).Str("event", "config.reload_failed").Msg("config reload failed")
					}
				}
			}
		})
	}

	g.Go(func() error {
		return a.engine.Run(ctx)
	})

	if a.bus != nil {
		relay := newRelay(a.bus, a.logger)
		g.Go(func() error {
			return relay.run(ctx)
		})
	}

	g.Go(func() error {
		err := a.manager.Start(ctx)
		if err != nil {
			_ = a.manager.Shutdown(context.Background())
		}
		return err
	})

	return g.Wait()
}

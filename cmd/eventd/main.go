// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ManuGH/eventd/internal/config"
	"github.com/ManuGH/eventd/internal/daemon"
	xglog "github.com/ManuGH/eventd/internal/log"
	"github.com/ManuGH/eventd/internal/version"
)

func main() {
	loadDotEnv()

	if len(os.Args) > 1 && os.Args[1] == "config" {
		os.Exit(runConfigCLI(os.Args[2:]))
	}

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	// Safe defaults until config is loaded
	xglog.Configure(xglog.Config{
		Level:   "info",
		Service: "eventd",
		Version: version.Version,
	})
	logger := xglog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path := resolveConfigPath(*configPath)
	loader := config.NewLoader(path)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str(xglog.FieldPath, path).
			Msg("failed to load configuration")
	}

	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Service: cfg.Telemetry.ServiceName,
		Version: version.Version,
	})
	logger = xglog.WithComponent("daemon")

	if path != "" {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "file").
			Str(xglog.FieldPath, path).
			Int("events", len(cfg.Events)).
			Msg("loaded configuration from file")
	} else {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
	}
	if len(cfg.Events) == 0 {
		logger.Warn().Msg("no events configured; run `eventd config init` for an example")
	}

	holder := config.NewConfigHolder(cfg, loader)
	app, err := daemon.Build(ctx, cfg, holder, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("event", "startup.failed").Msg("failed to build daemon")
	}

	logger.Info().
		Str("event", "startup").
		Str("version", version.Version).
		Str("status_listen", cfg.Status.Listen).
		Str("store", cfg.Store.Backend).
		Bool("dry_run", cfg.DryRun).
		Msg("starting eventd")

	if err := app.Run(ctx); err != nil {
		logger.Fatal().Err(err).Str("event", "daemon.failed").Msg("daemon exited with error")
	}
	logger.Info().Str("event", "shutdown.complete").Msg("eventd stopped")
}

// loadDotEnv reads .env (or $EVENTD_ENV_FILE) into the environment without
// overriding variables that are already set.
func loadDotEnv() {
	file := strings.TrimSpace(os.Getenv("EVENTD_ENV_FILE"))
	explicit := file != ""
	if !explicit {
		file = ".env"
	}
	if err := godotenv.Load(file); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return
		}
		fmt.Fprintf(os.Stderr, "warning: could not load env file %s: %v\n", file, err)
	}
}

// resolveConfigPath picks --config, then $EVENTD_CONFIG, then ./eventd.yaml
// if it exists. An empty result means environment-only configuration.
func resolveConfigPath(flagValue string) string {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv("EVENTD_CONFIG")); p != "" {
		return p
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile
	}
	return ""
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"mcal/internal/aggregate"
	"mcal/internal/auth"
	"mcal/internal/config"
	"mcal/internal/credstore"
	"mcal/internal/instrumentation"
	"mcal/internal/registry"
)

// app wires the storage, credential, registry, and aggregation layers
// together for one command invocation.
type app struct {
	dir      config.Dir
	settings *config.Settings
	store    *credstore.Store
	manager  *auth.Manager
	registry *registry.Registry
	engine   *aggregate.Engine
	loc      *time.Location
	logger   *slog.Logger
	provider *instrumentation.Provider
}

func newApp(ctx context.Context) (*app, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(),
	}))
	slog.SetDefault(logger)

	dir, err := config.DefaultDir()
	if err != nil {
		return nil, err
	}
	if err := dir.EnsureDirs(); err != nil {
		return nil, err
	}

	settings, err := dir.LoadSettings()
	if err != nil {
		return nil, err
	}
	loc, err := settings.Location()
	if err != nil {
		return nil, err
	}

	provider, err := instrumentation.Setup(ctx, instrumentation.DefaultConfig(), logger)
	if err != nil {
		return nil, err
	}
	metrics, err := instrumentation.NewMetrics()
	if err != nil {
		return nil, err
	}

	store := credstore.New(dir, logger)
	manager := auth.NewManager(store, logger)
	reg := registry.New(dir, settings)
	engine := aggregate.NewEngine(manager, loc,
		aggregate.WithConcurrency(settings.MaxConcurrentFetches),
		aggregate.WithLogger(logger),
		aggregate.WithMetrics(metrics),
	)

	return &app{
		dir:      dir,
		settings: settings,
		store:    store,
		manager:  manager,
		registry: reg,
		engine:   engine,
		loc:      loc,
		logger:   logger,
		provider: provider,
	}, nil
}

// close flushes telemetry; failures there are not worth failing the command.
func (a *app) close(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := a.provider.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("instrumentation shutdown failed", "error", err)
	}
}

func logLevel() slog.Level {
	switch os.Getenv("MCAL_LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// parseWhen parses the time formats the CLI accepts, interpreting
// zone-less forms in the display timezone.
func parseWhen(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
	} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q (use RFC3339, \"2006-01-02 15:04\", or \"2006-01-02\")", s)
}

package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/stagewatch/internal/config"
	"github.com/vk/stagewatch/internal/defstore"
	"github.com/vk/stagewatch/internal/execsvc"
	"github.com/vk/stagewatch/internal/watch"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger

	cfg      *Config
	settings *config.Config

	client *execsvc.Client
	svc    execsvc.Service
	files  *defstore.FileStore
	coord  *watch.Coordinator
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger. A broken settings
// file is a fatal startup error.
func NewApp(outW, errW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, errW)
	logger.Debug("Logger configured successfully.")

	settings, err := config.Load(cfg.ConfigPath)
	if err != nil {
		panic(fmt.Errorf("failed to load settings: %w", err))
	}
	if cfg.ServiceURL != "" {
		settings.Service.BaseURL = cfg.ServiceURL
	}
	logger.Debug("Settings resolved.", "definitions_dir", settings.DefinitionsDir, "service_url", settings.Service.BaseURL)

	a := &App{
		outW:     outW,
		logger:   logger,
		cfg:      cfg,
		settings: settings,
		files:    defstore.NewFileStore(settings.DefinitionsDir),
	}

	if settings.Service.BaseURL != "" {
		a.client = execsvc.NewClient(execsvc.ClientConfig{
			BaseURL: settings.Service.BaseURL,
			Token:   settings.Service.Token,
			Timeout: settings.Service.Timeout,
		})
		a.svc = a.client
		a.coord = watch.NewCoordinator(a.svc, watch.Options{
			StatusInterval: settings.Watch.StatusInterval,
			LogInterval:    settings.Watch.LogInterval,
			GraceDelay:     settings.Watch.GraceDelay,
		})
		logger.Debug("Execution service client ready.")
	}

	return a
}

// newLogger builds the app's isolated logger. Unknown levels fall back to
// info rather than failing startup; the cli package already validated the
// flag values, so this only matters for programmatic construction.
func newLogger(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Coordinator returns the live sync coordinator. This is primarily for testing.
func (a *App) Coordinator() *watch.Coordinator {
	return a.coord
}

// Close releases the app's resources: open sessions first, then the HTTP
// client.
func (a *App) Close() {
	if a.coord != nil {
		a.coord.Close()
	}
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			a.logger.Warn("closing service client", "error", err)
		}
	}
}

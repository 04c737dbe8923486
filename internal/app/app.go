// Package app assembles the application: configuration, the remote analysis
// client, the durable session store, the orchestrator and the health monitor,
// wired once and shared by the TUI and the CLI commands.
package app

import (
	"context"
	"fmt"

	"github.com/veriscope/veriscope/internal/analysis"
	"github.com/veriscope/veriscope/internal/api"
	"github.com/veriscope/veriscope/internal/config"
	"github.com/veriscope/veriscope/internal/health"
	"github.com/veriscope/veriscope/internal/history"
	"github.com/veriscope/veriscope/internal/kv"
)

// App holds the wired application services.
type App struct {
	Config       *config.Config
	Client       *api.Client
	Store        *history.Store
	Orchestrator *analysis.Orchestrator
	Monitor      *health.Monitor

	backend kv.Store
}

// Options tweaks construction.
type Options struct {
	// Ephemeral swaps the durable database for an in-memory store; nothing
	// survives the process.
	Ephemeral bool

	// HealthChange, when non-nil, is invoked whenever the service's online
	// flag flips.
	HealthChange func(bool)
}

// New wires the application from configuration.
func New(cfg *config.Config, opts Options) (*App, error) {
	var backend kv.Store
	if opts.Ephemeral {
		backend = kv.NewMemoryStore()
	} else {
		store, err := kv.Open(cfg.DatabasePath())
		if err != nil {
			return nil, fmt.Errorf("failed to open history database: %w", err)
		}
		backend = store
	}

	client := api.NewClient(cfg.API.BaseURL, api.WithHealthTimeout(cfg.API.HealthTimeout))
	store := history.NewStore(backend)

	return &App{
		Config:       cfg,
		Client:       client,
		Store:        store,
		Orchestrator: analysis.New(client, store),
		Monitor:      health.NewMonitor(client, cfg.API.HealthInterval, opts.HealthChange),
		backend:      backend,
	}, nil
}

// StartMonitor launches background health polling.
func (a *App) StartMonitor(ctx context.Context) {
	a.Monitor.Start(ctx)
}

// Close stops background work and releases the database.
func (a *App) Close() error {
	a.Monitor.Stop()
	a.Orchestrator.Close()
	return a.backend.Close()
}

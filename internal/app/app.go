// Package app wires configuration, storage and services into a ready store
// shared by the API server and the command line tools.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/budgetit/internal/budget"
	"github.com/MrJamesThe3rd/budgetit/internal/config"
	"github.com/MrJamesThe3rd/budgetit/internal/export"
	"github.com/MrJamesThe3rd/budgetit/internal/importer"
	"github.com/MrJamesThe3rd/budgetit/internal/matching"
	"github.com/MrJamesThe3rd/budgetit/internal/metrics"
	"github.com/MrJamesThe3rd/budgetit/internal/storage"
)

type App struct {
	Config   *config.Config
	Store    *budget.Store
	Metrics  *metrics.Metrics
	Importer *importer.Service
	Matching *matching.Service
	Export   *export.Service

	close func() error
}

// Open connects the configured storage backend and loads the persisted state.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	gw, closeFn, err := storage.Open(ctx, cfg.StorageSettings())
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	m := metrics.New()
	store := budget.NewStore(gw, budget.WithObserver(budget.Observers{
		m,
		budget.NewSlogObserver(logger),
	}))
	m.Watch(store)

	if err := store.Load(ctx); err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	learned := matching.NewService(gw)
	if err := learned.Load(ctx); err != nil {
		_ = closeFn()
		return nil, err
	}

	return &App{
		Config:   cfg,
		Store:    store,
		Metrics:  m,
		Importer: importer.NewService(store, importer.WithFiscalYear(cfg.Budget.FiscalYear)),
		Matching: learned,
		Export:   export.NewService(store),
		close:    closeFn,
	}, nil
}

func (a *App) Close() error {
	return a.close()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrJamesThe3rd/budgetit/internal/app"
	"github.com/MrJamesThe3rd/budgetit/internal/config"
	budgetitHttp "github.com/MrJamesThe3rd/budgetit/internal/http"
	budgetHandler "github.com/MrJamesThe3rd/budgetit/internal/http/budget"
	catalogHandler "github.com/MrJamesThe3rd/budgetit/internal/http/catalog"
	expenseHandler "github.com/MrJamesThe3rd/budgetit/internal/http/expense"
	exportHandler "github.com/MrJamesThe3rd/budgetit/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/budgetit/internal/http/importsheet"
	matchingHandler "github.com/MrJamesThe3rd/budgetit/internal/http/matching"
	reportHandler "github.com/MrJamesThe3rd/budgetit/internal/http/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, slog.Default())
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	store := a.Store

	router := budgetitHttp.New(budgetitHttp.Handlers{
		Budgets:  budgetHandler.NewHandler(store),
		Expenses: expenseHandler.NewHandler(store),
		Catalog:  catalogHandler.NewHandler(store),
		Import:   importHandler.NewHandler(a.Importer, a.Matching),
		Matching: matchingHandler.NewHandler(store, a.Matching),
		Reports:  reportHandler.NewHandler(store, cfg.Budget.UnbudgetedWarnThreshold),
		Export:   exportHandler.NewHandler(a.Export, store),
	}, budgetitHttp.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		Timeout:     cfg.Server.Timeout,
		Metrics:     a.Metrics.Handler(),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "addr", srv.Addr, "storage", cfg.Storage.Backend)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/budgetit/internal/http/budget"
	"github.com/MrJamesThe3rd/budgetit/internal/http/catalog"
	"github.com/MrJamesThe3rd/budgetit/internal/http/expense"
	"github.com/MrJamesThe3rd/budgetit/internal/http/export"
	"github.com/MrJamesThe3rd/budgetit/internal/http/importsheet"
	"github.com/MrJamesThe3rd/budgetit/internal/http/matching"
	"github.com/MrJamesThe3rd/budgetit/internal/http/report"
)

// Handlers groups the versioned API handlers.
type Handlers struct {
	Budgets  *budget.Handler
	Expenses *expense.Handler
	Catalog  *catalog.Handler
	Import   *importsheet.Handler
	Matching *matching.Handler
	Reports  *report.Handler
	Export   *export.Handler
}

type Options struct {
	CORSOrigins []string
	Timeout     time.Duration
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics)
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/budgets", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Budgets.Routes(r)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Expenses.Routes(r)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Catalog.CategoryRoutes(r)
		})

		r.Route("/services", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Catalog.ServiceRoutes(r)
		})

		r.Route("/import", h.Import.Routes)
		r.Route("/matching", h.Matching.Routes)
		r.Route("/reports", h.Reports.Routes)
		r.Route("/export", h.Export.Routes)
	})

	return router
}

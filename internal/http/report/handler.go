package report

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/budgetit/internal/budget"
	"github.com/MrJamesThe3rd/budgetit/internal/http/respond"
	"github.com/MrJamesThe3rd/budgetit/internal/report"
)

const (
	defaultRecent = 5
	defaultTop    = 10
	defaultMonths = 11
)

// Handler serves the read-only aggregates computed from the current state.
type Handler struct {
	store     *budget.Store
	threshold float64
}

// NewHandler creates a report handler. threshold is the unbudgeted share, in
// percent, above which the unbudgeted figures are flagged.
func NewHandler(store *budget.Store, threshold float64) *Handler {
	return &Handler{store: store, threshold: threshold}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/summary", h.summary)
	r.Get("/dashboard", h.dashboard)
	r.Get("/analysis", h.analysis)
	r.Get("/unbudgeted", h.unbudgeted)
	r.Get("/progress", h.progress)
	r.Get("/over-budget", h.overBudget)
	r.Get("/by-category", h.byCategory)
	r.Get("/by-service", h.byService)
	r.Get("/budget-vs-expenses", h.budgetVsExpenses)
	r.Get("/monthly", h.monthly)
	r.Get("/top-expenses", h.topExpenses)
}

// intParam reads a non-negative integer query parameter, falling back to def
// when it is absent.
func intParam(r *http.Request, name string, def int) (int, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, true
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}

	return n, true
}

func (h *Handler) summary(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, report.Summarize(h.store.State()))
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	recent, ok := intParam(r, "recent", defaultRecent)
	if !ok {
		respond.BadRequest(w, "recent must be a non-negative integer")
		return
	}

	respond.JSON(w, http.StatusOK, report.NewDashboard(h.store.State(), h.threshold, recent))
}

func (h *Handler) analysis(w http.ResponseWriter, r *http.Request) {
	months, ok := intParam(r, "months", defaultMonths)
	if !ok {
		respond.BadRequest(w, "months must be a non-negative integer")
		return
	}

	top, ok := intParam(r, "top", defaultTop)
	if !ok {
		respond.BadRequest(w, "top must be a non-negative integer")
		return
	}

	respond.JSON(w, http.StatusOK, report.NewAnalysis(h.store.State(), h.store.Now(), months, top))
}

// unbudgeted accepts an optional threshold overriding the configured one.
func (h *Handler) unbudgeted(w http.ResponseWriter, r *http.Request) {
	threshold := h.threshold

	if s := r.URL.Query().Get("threshold"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 {
			respond.BadRequest(w, "threshold must be a non-negative number")
			return
		}

		threshold = v
	}

	respond.JSON(w, http.StatusOK, report.UnbudgetedStats(h.store.State(), threshold))
}

func (h *Handler) progress(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, orEmpty(report.BudgetProgress(h.store.State())))
}

func (h *Handler) overBudget(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, orEmpty(report.OverBudget(h.store.State())))
}

type breakdown struct {
	Budgets  []report.Slice `json:"budgets"`
	Expenses []report.Slice `json:"expenses"`
}

func (h *Handler) byCategory(w http.ResponseWriter, _ *http.Request) {
	st := h.store.State()
	respond.JSON(w, http.StatusOK, breakdown{
		Budgets:  orEmpty(report.BudgetsByCategory(st)),
		Expenses: orEmpty(report.ExpensesByCategory(st)),
	})
}

func (h *Handler) byService(w http.ResponseWriter, _ *http.Request) {
	st := h.store.State()
	respond.JSON(w, http.StatusOK, breakdown{
		Budgets:  orEmpty(report.BudgetsByService(st)),
		Expenses: orEmpty(report.ExpensesByService(st)),
	})
}

func (h *Handler) budgetVsExpenses(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, orEmpty(report.BudgetVsExpenses(h.store.State())))
}

func (h *Handler) monthly(w http.ResponseWriter, r *http.Request) {
	months, ok := intParam(r, "months", defaultMonths)
	if !ok {
		respond.BadRequest(w, "months must be a non-negative integer")
		return
	}

	respond.JSON(w, http.StatusOK, report.Monthly(h.store.State(), h.store.Now(), months))
}

func (h *Handler) topExpenses(w http.ResponseWriter, r *http.Request) {
	n, ok := intParam(r, "n", defaultTop)
	if !ok {
		respond.BadRequest(w, "n must be a non-negative integer")
		return
	}

	respond.JSON(w, http.StatusOK, orEmpty(report.TopExpenses(h.store.State(), n)))
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}

	return items
}

package budget

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/budgetit/internal/budget"
	"github.com/MrJamesThe3rd/budgetit/internal/http/respond"
)

type Handler struct {
	store *budget.Store
}

func NewHandler(store *budget.Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Get("/{id}/expenses", h.expenses)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req budget.Budget
	if !respond.Decode(w, r, &req) {
		return
	}

	b, err := h.store.AddBudget(r.Context(), req)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, b)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	budgets := h.store.ListBudgets(filter)
	if budgets == nil {
		budgets = []budget.Budget{}
	}

	respond.JSON(w, http.StatusOK, budgets)
}

func parseFilter(q url.Values) (budget.BudgetFilter, error) {
	filter := budget.BudgetFilter{
		Search:     q.Get("search"),
		CategoryID: budget.ID(q.Get("categoryId")),
		ServiceID:  budget.ID(q.Get("serviceId")),
	}

	if s := q.Get("minAmount"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return filter, err
		}

		filter.MinAmount = new(v)
	}

	if s := q.Get("maxAmount"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return filter, err
		}

		filter.MaxAmount = new(v)
	}

	if s := q.Get("from"); s != "" {
		d, err := budget.ParseDate(s)
		if err != nil {
			return filter, err
		}

		filter.DateFrom = new(d)
	}

	if s := q.Get("to"); s != "" {
		d, err := budget.ParseDate(s)
		if err != nil {
			return filter, err
		}

		filter.DateTo = new(d)
	}

	return filter, nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	b, err := h.store.GetBudget(budget.ID(chi.URLParam(r, "id")))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, b)
}

func (h *Handler) expenses(w http.ResponseWriter, r *http.Request) {
	id := budget.ID(chi.URLParam(r, "id"))
	if _, err := h.store.GetBudget(id); err != nil {
		respond.Error(w, err)
		return
	}

	expenses := h.store.ExpensesForBudget(id)
	if expenses == nil {
		expenses = []budget.Expense{}
	}

	respond.JSON(w, http.StatusOK, expenses)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req budget.Budget
	if !respond.Decode(w, r, &req) {
		return
	}

	req.ID = budget.ID(chi.URLParam(r, "id"))

	b, err := h.store.UpdateBudget(r.Context(), req)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, b)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteBudget(r.Context(), budget.ID(chi.URLParam(r, "id"))); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

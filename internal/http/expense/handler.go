package expense

import (
	"fmt"
	"net/http"
	"net/url"

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
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req budget.Expense
	if !respond.Decode(w, r, &req) {
		return
	}

	e, err := h.store.AddExpense(r.Context(), req)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, e)
}

type listResponse struct {
	Expenses []budget.Expense `json:"expenses"`
	Count    int              `json:"count"`
}

// list accepts partition=all|budgeted|unbudgeted plus categoryId, budgetId,
// serviceId, from and to.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	expenses := h.store.ListExpenses(filter)
	if expenses == nil {
		expenses = []budget.Expense{}
	}

	respond.JSON(w, http.StatusOK, listResponse{Expenses: expenses, Count: len(expenses)})
}

func parseFilter(q url.Values) (budget.ExpenseFilter, error) {
	filter := budget.ExpenseFilter{
		Partition:  budget.Partition(q.Get("partition")),
		CategoryID: budget.ID(q.Get("categoryId")),
		BudgetID:   budget.ID(q.Get("budgetId")),
		ServiceID:  budget.ID(q.Get("serviceId")),
	}

	switch filter.Partition {
	case "", budget.PartitionAll, budget.PartitionBudgeted, budget.PartitionUnbudgeted:
	default:
		return filter, fmt.Errorf("unknown partition %q", filter.Partition)
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
	e, err := h.store.GetExpense(budget.ID(chi.URLParam(r, "id")))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, e)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req budget.Expense
	if !respond.Decode(w, r, &req) {
		return
	}

	req.ID = budget.ID(chi.URLParam(r, "id"))

	e, err := h.store.UpdateExpense(r.Context(), req)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, e)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteExpense(r.Context(), budget.ID(chi.URLParam(r, "id"))); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

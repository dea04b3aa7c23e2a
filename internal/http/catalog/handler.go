package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/budgetit/internal/budget"
	"github.com/MrJamesThe3rd/budgetit/internal/http/respond"
)

// Handler serves the reference data: categories and services.
type Handler struct {
	store *budget.Store
}

func NewHandler(store *budget.Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) CategoryRoutes(r chi.Router) {
	r.Get("/", h.listCategories)
	r.Post("/", h.createCategory)
	r.Put("/{id}", h.updateCategory)
	r.Delete("/{id}", h.deleteCategory)
}

func (h *Handler) ServiceRoutes(r chi.Router) {
	r.Get("/", h.listServices)
	r.Post("/", h.createService)
	r.Put("/{id}", h.updateService)
	r.Delete("/{id}", h.deleteService)
	r.Get("/{id}/budgets", h.serviceBudgets)
	r.Get("/{id}/expenses", h.serviceExpenses)
}

func (h *Handler) listCategories(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, orEmpty(h.store.Categories()))
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req budget.Category
	if !respond.Decode(w, r, &req) {
		return
	}

	c, err := h.store.AddCategory(r.Context(), req)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, c)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req budget.Category
	if !respond.Decode(w, r, &req) {
		return
	}

	req.ID = budget.ID(chi.URLParam(r, "id"))

	c, err := h.store.UpdateCategory(r.Context(), req)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, c)
}

// deleteCategory leaves budgets and expenses pointing at the removed id.
func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteCategory(r.Context(), budget.ID(chi.URLParam(r, "id"))); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listServices(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, orEmpty(h.store.Services()))
}

func (h *Handler) createService(w http.ResponseWriter, r *http.Request) {
	var req budget.Service
	if !respond.Decode(w, r, &req) {
		return
	}

	s, err := h.store.AddService(r.Context(), req)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, s)
}

func (h *Handler) updateService(w http.ResponseWriter, r *http.Request) {
	var req budget.Service
	if !respond.Decode(w, r, &req) {
		return
	}

	req.ID = budget.ID(chi.URLParam(r, "id"))

	s, err := h.store.UpdateService(r.Context(), req)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, s)
}

func (h *Handler) deleteService(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteService(r.Context(), budget.ID(chi.URLParam(r, "id"))); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) serviceBudgets(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, orEmpty(h.store.BudgetsForService(budget.ID(chi.URLParam(r, "id")))))
}

func (h *Handler) serviceExpenses(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, orEmpty(h.store.ExpensesForService(budget.ID(chi.URLParam(r, "id")))))
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}

	return items
}

package matching

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/budgetit/internal/budget"
	"github.com/MrJamesThe3rd/budgetit/internal/http/respond"
	"github.com/MrJamesThe3rd/budgetit/internal/importer"
	"github.com/MrJamesThe3rd/budgetit/internal/matching"
)

// Handler previews how a free-text reference would resolve on import and
// manages the remembered overrides.
type Handler struct {
	store   *budget.Store
	learned *matching.Service
}

func NewHandler(store *budget.Store, learned *matching.Service) *Handler {
	return &Handler{store: store, learned: learned}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
	r.Get("/overrides", h.listOverrides)
	r.Put("/overrides/{target}", h.learn)
	r.Delete("/overrides/{target}", h.forget)
}

type suggestResponse struct {
	Kind   string          `json:"kind"`
	Value  string          `json:"value"`
	ID     budget.ID       `json:"id,omitempty"`
	Method importer.Method `json:"method"`
}

// suggest answers GET /suggest?kind=category|service|budget&value=...
// without creating anything.
func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	value := r.URL.Query().Get("value")
	if value == "" {
		respond.BadRequest(w, "value query parameter is required")
		return
	}

	kind := r.URL.Query().Get("kind")
	res := importer.NewResolver(h.store.State(), h.learned.Overrides(), h.store.NewID)
	resp := suggestResponse{Kind: kind, Value: value}

	switch kind {
	case string(matching.TargetBudget):
		id, method := res.Budget(value)
		resp.ID, resp.Method = budget.DerefID(id), method
	case string(importer.KindCategory), "":
		resp.Kind = string(importer.KindCategory)
		resp.ID, resp.Method = res.LookupCategory(value)
	case string(importer.KindService):
		resp.ID, resp.Method = res.Lookup(importer.KindService, value)
	default:
		respond.BadRequest(w, "kind must be category, service or budget")
		return
	}

	if resp.Method == importer.MethodNone && kind != string(matching.TargetBudget) {
		resp.Method = importer.MethodCreate
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) listOverrides(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, h.learned.Overrides())
}

type learnRequest struct {
	Text string    `json:"text"`
	ID   budget.ID `json:"id"`
}

// learn remembers that text resolves to an existing entity of the target.
func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	target, err := matching.ParseTarget(chi.URLParam(r, "target"))
	if err != nil {
		respond.Error(w, err)
		return
	}

	var req learnRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	if err := h.exists(target, req.ID); err != nil {
		respond.Error(w, err)
		return
	}

	if err := h.learned.Learn(r.Context(), target, req.Text, req.ID); err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, h.learned.Overrides())
}

func (h *Handler) exists(target matching.Target, id budget.ID) error {
	var err error

	switch target {
	case matching.TargetCategory:
		_, err = h.store.GetCategory(id)
	case matching.TargetService:
		_, err = h.store.GetService(id)
	case matching.TargetBudget:
		_, err = h.store.GetBudget(id)
	}

	return err
}

// forget answers DELETE /overrides/{target}?text=...
func (h *Handler) forget(w http.ResponseWriter, r *http.Request) {
	target, err := matching.ParseTarget(chi.URLParam(r, "target"))
	if err != nil {
		respond.Error(w, err)
		return
	}

	if err := h.learned.Forget(r.Context(), target, r.URL.Query().Get("text")); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

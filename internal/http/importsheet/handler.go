package importsheet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/budgetit/internal/http/respond"
	"github.com/MrJamesThe3rd/budgetit/internal/importer"
	"github.com/MrJamesThe3rd/budgetit/internal/matching"
	"github.com/MrJamesThe3rd/budgetit/internal/spreadsheet"
)

const defaultMaxUpload = 10 << 20

var errTooLarge = errors.New("upload too large")

type Handler struct {
	importSvc *importer.Service
	learned   *matching.Service
	maxUpload int64
}

type Option func(*Handler)

// WithMaxUpload caps the request body of the upload endpoints in bytes.
func WithMaxUpload(n int64) Option {
	return func(h *Handler) {
		h.maxUpload = n
	}
}

func NewHandler(importSvc *importer.Service, learned *matching.Service, opts ...Option) *Handler {
	h := &Handler{importSvc: importSvc, learned: learned, maxUpload: defaultMaxUpload}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/expenses", h.importExpenses)
	r.Post("/budgets", h.importBudgets)
	r.Post("/preview", h.preview)
	r.Get("/template", h.template)
}

// upload is the multipart form shared by the import endpoints: a "file" part
// plus optional "mapping" and "overrides" JSON fields, "replace",
// "fiscalYear" and "remember", which keeps the overrides for later imports.
type upload struct {
	sheet    *spreadsheet.Sheet
	opts     importer.Options
	remember bool
}

func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	if r.ContentLength > h.maxUpload {
		return nil, errTooLarge
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errTooLarge
		}

		return nil, fmt.Errorf("failed to parse form: %w", err)
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, errors.New("file field is required")
	}
	defer file.Close()

	sheet, err := spreadsheet.Read(file)
	if err != nil {
		return nil, err
	}

	u := &upload{sheet: sheet}

	if s := r.FormValue("mapping"); s != "" {
		if err := json.Unmarshal([]byte(s), &u.opts.Mapping); err != nil {
			return nil, fmt.Errorf("invalid mapping: %w", err)
		}
	}

	if s := r.FormValue("overrides"); s != "" {
		if err := json.Unmarshal([]byte(s), &u.opts.Overrides); err != nil {
			return nil, fmt.Errorf("invalid overrides: %w", err)
		}
	}

	if s := r.FormValue("replace"); s != "" {
		if u.opts.Replace, err = strconv.ParseBool(s); err != nil {
			return nil, fmt.Errorf("invalid replace: %w", err)
		}
	}

	if s := r.FormValue("remember"); s != "" {
		if u.remember, err = strconv.ParseBool(s); err != nil {
			return nil, fmt.Errorf("invalid remember: %w", err)
		}
	}

	if s := r.FormValue("fiscalYear"); s != "" {
		if u.opts.FiscalYear, err = strconv.Atoi(s); err != nil {
			return nil, fmt.Errorf("invalid fiscalYear: %w", err)
		}
	}

	return u, nil
}

// uploadError answers 422 for a file that is not a spreadsheet, 413 for a
// body over the limit and 400 for any other form problem.
func uploadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, spreadsheet.ErrUnreadable):
		respond.Error(w, err)
	case errors.Is(err, errTooLarge):
		respond.JSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
	default:
		respond.BadRequest(w, err.Error())
	}
}

type importFunc func(context.Context, *spreadsheet.Sheet, importer.Options) (*importer.Result, error)

func (h *Handler) run(w http.ResponseWriter, r *http.Request, fn importFunc) {
	u, err := h.readUpload(w, r)
	if err != nil {
		uploadError(w, err)
		return
	}

	explicit := u.opts.Overrides
	u.opts.Overrides = h.learned.Merge(explicit)

	result, err := fn(r.Context(), u.sheet, u.opts)
	if err != nil {
		respond.Error(w, err)
		return
	}

	if u.remember {
		if err := h.learned.LearnAll(r.Context(), explicit); err != nil {
			respond.Error(w, err)
			return
		}
	}

	status := http.StatusOK
	if result.Imported > 0 {
		status = http.StatusCreated
	}

	respond.JSON(w, status, result)
}

func (h *Handler) importExpenses(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.importSvc.ImportExpenses)
}

func (h *Handler) importBudgets(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.importSvc.ImportBudgets)
}

// preview answers with the detected mapping and the resolution of every
// distinct category, service and budget value; kind selects the profile.
func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	profile, err := importer.ProfileFor(r.URL.Query().Get("kind"))
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	u, err := h.readUpload(w, r)
	if err != nil {
		uploadError(w, err)
		return
	}

	u.opts.Overrides = h.learned.Merge(u.opts.Overrides)
	respond.JSON(w, http.StatusOK, h.importSvc.Preview(u.sheet, profile, u.opts))
}

func (h *Handler) template(w http.ResponseWriter, r *http.Request) {
	year := spreadsheet.DefaultTemplateYear

	if s := r.URL.Query().Get("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil || y < 1900 {
			respond.BadRequest(w, "invalid year")
			return
		}

		year = y
	}

	var buf bytes.Buffer
	if err := spreadsheet.WriteTemplate(&buf, year); err != nil {
		respond.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", spreadsheet.TemplateFileName))
	_, _ = w.Write(buf.Bytes())
}

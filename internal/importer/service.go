package importer

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetit/internal/budget"
	"github.com/MrJamesThe3rd/budgetit/internal/spreadsheet"
)

// Options tune one import run.
type Options struct {
	// Mapping pins fields to columns; unmapped fields are auto-detected.
	Mapping   Mapping
	Overrides Overrides
	// Replace drops the existing expenses (or budgets) in the same batch.
	Replace bool
	// FiscalYear dates imported budgets; 0 reads it from the amount header,
	// then falls back to the service default and the current year.
	FiscalYear int
	Progress   func(done, total int)
}

// RowIssue explains why a row was not imported.
type RowIssue struct {
	Line      int    `json:"line"`
	Reason    string `json:"reason"`
	Duplicate bool   `json:"duplicate"`
}

// Result is the tally of one import run.
type Result struct {
	Imported            int        `json:"imported"`
	SkippedDuplicate    int        `json:"skippedDuplicate"`
	RejectedMissingData int        `json:"rejectedMissingData"`
	Total               int        `json:"total"`
	CreatedCategories   int        `json:"createdCategories"`
	CreatedServices     int        `json:"createdServices"`
	Mapping             Mapping    `json:"mapping"`
	Issues              []RowIssue `json:"issues,omitempty"`
}

// Service imports spreadsheet rows into a Store. Each run is applied as a
// single batch: either every accepted row lands or the store is untouched.
type Service struct {
	store      *budget.Store
	fiscalYear int
}

type ServiceOption func(*Service)

// WithFiscalYear sets the year imported budgets default to.
func WithFiscalYear(year int) ServiceOption {
	return func(s *Service) { s.fiscalYear = year }
}

func NewService(store *budget.Store, opts ...ServiceOption) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

type run struct {
	store    *budget.Store
	observer budget.Observer
	result   *Result
	total    int
	progress func(done, total int)
}

func (s *Service) newRun(sheet *spreadsheet.Sheet, mapping Mapping, opts Options) *run {
	return &run{
		store:    s.store,
		observer: s.store.Observer(),
		result:   &Result{Total: len(sheet.Rows), Mapping: mapping},
		total:    len(sheet.Rows),
		progress: opts.Progress,
	}
}

func (r *run) step(i int) {
	if r.progress != nil {
		r.progress(i+1, r.total)
	}
}

func (r *run) reject(line int, reason string) {
	r.result.RejectedMissingData++
	r.result.Issues = append(r.result.Issues, RowIssue{Line: line, Reason: reason})
	r.observer.Observe(budget.Event{Kind: budget.KindRowRejected, Row: line, Message: reason})
}

func (r *run) duplicate(line int, what string) {
	r.result.SkippedDuplicate++
	r.result.Issues = append(r.result.Issues, RowIssue{Line: line, Reason: "already exists: " + what, Duplicate: true})
	r.observer.Observe(budget.Event{Kind: budget.KindRowDuplicate, Row: line, Message: what})
}

func (r *run) finish(ctx context.Context, res *Resolver, cmds []budget.Command) (*Result, error) {
	r.result.CreatedCategories = res.Created(KindCategory)
	r.result.CreatedServices = res.Created(KindService)

	batch := slices.Concat(res.Commands(), cmds)
	if len(batch) == 0 {
		return r.result, nil
	}

	if err := r.store.Apply(ctx, batch...); err != nil {
		return nil, err
	}

	for _, cmd := range res.Commands() {
		switch c := cmd.(type) {
		case budget.AddCategory:
			r.observer.Observe(budget.Event{Kind: budget.KindEntityCreated, Entity: "category", ID: c.Category.ID, Message: c.Category.Name})
		case budget.AddService:
			r.observer.Observe(budget.Event{Kind: budget.KindEntityCreated, Entity: "service", ID: c.Service.ID, Message: c.Service.Name})
		}
	}

	return r.result, nil
}

type expenseKey struct {
	Description string
	Amount      float64
	CategoryID  budget.ID
}

// ImportExpenses resolves every row into an expense. Rows lacking a
// description or a positive amount are rejected; rows matching an existing
// expense on description, amount and category are skipped.
func (s *Service) ImportExpenses(ctx context.Context, sheet *spreadsheet.Sheet, opts Options) (*Result, error) {
	mapping := ExpenseProfile.Detect(sheet.Columns, opts.Mapping)
	st := s.store.State()
	r := s.newRun(sheet, mapping, opts)

	var cmds []budget.Command

	if opts.Replace {
		cmds = append(cmds, budget.SetExpenses{})
		st.Expenses = nil
	}

	existing := make(map[expenseKey]struct{}, len(st.Expenses))
	for _, e := range st.Expenses {
		existing[expenseKey{e.Description, e.Amount, e.CategoryID}] = struct{}{}
	}

	res := NewResolver(st, opts.Overrides, s.store.NewID)
	today := budget.NewDate(s.store.Now())

	for i, row := range sheet.Rows {
		r.step(i)

		desc, okDesc := row.Get(mapping[FieldDescription])
		rawAmount, okAmount := row.Get(mapping[FieldAmount])

		if !okDesc || !okAmount {
			r.reject(row.Line, "missing description or amount")
			continue
		}

		amount, ok := positiveAmount(rawAmount)
		if !ok {
			r.reject(row.Line, fmt.Sprintf("invalid amount %q", rawAmount))
			continue
		}

		categoryText, _ := row.Get(mapping[FieldCategory])

		if id, method := res.LookupCategory(categoryText); method != MethodNone {
			if _, dup := existing[expenseKey{desc, amount, id}]; dup {
				r.duplicate(row.Line, desc)
				continue
			}
		}

		categoryID, method := res.Category(categoryText)
		if method == MethodNone {
			r.reject(row.Line, "no category")
			continue
		}

		serviceText, _ := row.Get(mapping[FieldService])
		budgetText, _ := row.Get(mapping[FieldBudget])
		supplier, _ := row.Get(mapping[FieldSupplier])
		notes, _ := row.Get(mapping[FieldNotes])
		budgetID, _ := res.Budget(budgetText)

		date := today
		if raw, ok := row.Get(mapping[FieldDate]); ok {
			if d, ok := parseDate(raw); ok {
				date = d
			}
		}

		cmds = append(cmds, budget.AddExpense{Expense: budget.Expense{
			ID:          s.store.NewID(),
			Description: desc,
			Amount:      amount,
			CategoryID:  categoryID,
			ServiceID:   res.Service(serviceText),
			BudgetID:    budgetID,
			Date:        date,
			Notes:       composeNotes(supplier, notes),
		}})
		r.result.Imported++
	}

	result, err := r.finish(ctx, res, cmds)
	if err != nil {
		return nil, fmt.Errorf("import expenses: %w", err)
	}

	return result, nil
}

type budgetKey struct {
	Name   string
	Amount float64
}

// ImportBudgets resolves every row of the budget template into a budget
// covering one fiscal year.
func (s *Service) ImportBudgets(ctx context.Context, sheet *spreadsheet.Sheet, opts Options) (*Result, error) {
	mapping := BudgetProfile.Detect(sheet.Columns, opts.Mapping)
	st := s.store.State()
	r := s.newRun(sheet, mapping, opts)

	var cmds []budget.Command

	if opts.Replace {
		cmds = append(cmds, budget.SetBudgets{})
		st.Budgets = nil
	}

	existing := make(map[budgetKey]struct{}, len(st.Budgets))
	for _, b := range st.Budgets {
		existing[budgetKey{b.Name, b.Amount}] = struct{}{}
	}

	year := s.yearFor(opts, mapping)
	start := budget.NewDate(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC))
	end := budget.NewDate(time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC))

	res := NewResolver(st, opts.Overrides, s.store.NewID)

	for i, row := range sheet.Rows {
		r.step(i)

		name, okName := row.Get(mapping[FieldName])
		rawAmount, okAmount := row.Get(mapping[FieldAmount])

		if !okName || !okAmount {
			r.reject(row.Line, "missing name or amount")
			continue
		}

		amount, ok := positiveAmount(rawAmount)
		if !ok {
			r.reject(row.Line, fmt.Sprintf("invalid amount %q", rawAmount))
			continue
		}

		if _, dup := existing[budgetKey{name, amount}]; dup {
			r.duplicate(row.Line, name)
			continue
		}

		categoryText, _ := row.Get(mapping[FieldCategory])

		categoryID, method := res.Category(categoryText)
		if method == MethodNone {
			r.reject(row.Line, "no category")
			continue
		}

		serviceText, _ := row.Get(mapping[FieldService])
		supplier, _ := row.Get(mapping[FieldSupplier])
		remark, _ := row.Get(mapping[FieldNotes])
		lieu, _ := row.Get(mapping[FieldLieu])

		cmds = append(cmds, budget.AddBudget{Budget: budget.Budget{
			ID:          s.store.NewID(),
			Name:        name,
			Amount:      amount,
			CategoryID:  categoryID,
			ServiceID:   res.Service(serviceText),
			Description: budgetDescription(supplier, remark),
			StartDate:   start,
			EndDate:     end,
			Lieu:        lieu,
		}})
		r.result.Imported++
	}

	result, err := r.finish(ctx, res, cmds)
	if err != nil {
		return nil, fmt.Errorf("import budgets: %w", err)
	}

	return result, nil
}

func (s *Service) yearFor(opts Options, mapping Mapping) int {
	if opts.FiscalYear > 0 {
		return opts.FiscalYear
	}

	if y, ok := yearIn(mapping[FieldAmount]); ok {
		return y
	}

	if s.fiscalYear > 0 {
		return s.fiscalYear
	}

	return s.store.Now().Year()
}

func positiveAmount(raw string) (float64, bool) {
	d, err := parseAmount(raw)
	if err != nil || !d.GreaterThan(decimal.Zero) {
		return 0, false
	}

	return d.InexactFloat64(), true
}

// Suggestion previews how one distinct cell value would resolve.
type Suggestion struct {
	Value  string    `json:"value"`
	ID     budget.ID `json:"id,omitempty"`
	Method Method    `json:"method"`
}

// Preview describes a sheet before import: the detected mapping, any
// required field left unmapped and how each distinct reference resolves.
type Preview struct {
	Columns    []string           `json:"columns"`
	Rows       int                `json:"rows"`
	Mapping    Mapping            `json:"mapping"`
	Missing    []Field            `json:"missing,omitempty"`
	Categories []Suggestion       `json:"categories"`
	Services   []Suggestion       `json:"services"`
	Budgets    []Suggestion       `json:"budgets,omitempty"`
	Values     map[Field][]string `json:"values"`
}

// Preview runs detection and resolution without touching the store.
func (s *Service) Preview(sheet *spreadsheet.Sheet, profile Profile, opts Options) *Preview {
	mapping := profile.Detect(sheet.Columns, opts.Mapping)
	res := NewResolver(s.store.State(), opts.Overrides, func() budget.ID { return "" })

	p := &Preview{
		Columns: sheet.Columns,
		Rows:    len(sheet.Rows),
		Mapping: mapping,
		Missing: profile.Missing(mapping),
		Values:  make(map[Field][]string),
	}

	for field, col := range mapping {
		p.Values[field] = sheet.Values(col)
	}

	for _, v := range p.Values[FieldCategory] {
		id, method := res.Lookup(KindCategory, v)
		if method == MethodNone {
			method = MethodCreate
		}

		p.Categories = append(p.Categories, Suggestion{Value: v, ID: id, Method: method})
	}

	for _, v := range p.Values[FieldService] {
		id, method := res.Lookup(KindService, v)
		if method == MethodNone {
			method = MethodCreate
		}

		p.Services = append(p.Services, Suggestion{Value: v, ID: id, Method: method})
	}

	for _, v := range p.Values[FieldBudget] {
		id, method := res.Budget(v)
		p.Budgets = append(p.Budgets, Suggestion{Value: v, ID: budget.DerefID(id), Method: method})
	}

	return p
}

// ProfileFor returns the profile named "expenses" or "budgets".
func ProfileFor(name string) (Profile, error) {
	switch strings.ToLower(name) {
	case ExpenseProfile.Name, "":
		return ExpenseProfile, nil
	case BudgetProfile.Name:
		return BudgetProfile, nil
	default:
		return Profile{}, fmt.Errorf("unknown import kind %q", name)
	}
}

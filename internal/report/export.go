package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/MrJamesThe3rd/budgetit/internal/budget"
)

// Export is the downloadable report document.
type Export struct {
	Budgets  []budget.Budget  `json:"budgets"`
	Expenses []budget.Expense `json:"expenses"`
	Summary  Summary          `json:"summary"`
}

func NewExport(st budget.State) Export {
	doc := Export{
		Budgets:  st.Budgets,
		Expenses: st.Expenses,
		Summary:  Summarize(st),
	}

	if doc.Budgets == nil {
		doc.Budgets = []budget.Budget{}
	}

	if doc.Expenses == nil {
		doc.Expenses = []budget.Expense{}
	}

	return doc
}

// ExportFileName names the report downloaded on day t.
func ExportFileName(t time.Time) string {
	return "budget-it-report-" + t.Format(time.DateOnly) + ".json"
}

// WriteExport writes the report of st as indented JSON.
func WriteExport(w io.Writer, st budget.State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(NewExport(st)); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}

	return nil
}

// Dashboard gathers the figures of the landing page.
type Dashboard struct {
	Summary            Summary          `json:"summary"`
	BudgetsByCategory  []Slice          `json:"budgetsByCategory"`
	ExpensesByCategory []Slice          `json:"expensesByCategory"`
	Unbudgeted         Unbudgeted       `json:"unbudgeted"`
	Recent             []budget.Expense `json:"recentExpenses"`
}

func NewDashboard(st budget.State, threshold float64, recent int) Dashboard {
	return Dashboard{
		Summary:            Summarize(st),
		BudgetsByCategory:  BudgetsByCategory(st),
		ExpensesByCategory: ExpensesByCategory(st),
		Unbudgeted:         UnbudgetedStats(st, threshold),
		Recent:             RecentExpenses(st, recent),
	}
}

// Analysis gathers the figures of the reports page.
type Analysis struct {
	Summary          Summary          `json:"summary"`
	ExpensesByCat    []Slice          `json:"expensesByCategory"`
	ExpensesBySvc    []Slice          `json:"expensesByService"`
	BudgetsBySvc     []Slice          `json:"budgetsByService"`
	BudgetVsExpenses []Comparison     `json:"budgetVsExpenses"`
	Monthly          []MonthTotal     `json:"monthly"`
	Top              []budget.Expense `json:"topExpenses"`
	OverBudget       []Overrun        `json:"overBudget"`
}

func NewAnalysis(st budget.State, now time.Time, months, top int) Analysis {
	return Analysis{
		Summary:          Summarize(st),
		ExpensesByCat:    ExpensesByCategory(st),
		ExpensesBySvc:    ExpensesByService(st),
		BudgetsBySvc:     BudgetsByService(st),
		BudgetVsExpenses: BudgetVsExpenses(st),
		Monthly:          Monthly(st, now, months),
		Top:              TopExpenses(st, top),
		OverBudget:       OverBudget(st),
	}
}

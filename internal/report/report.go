// Package report computes the aggregates shown on the dashboard and reports
// pages. Every function is pure over a budget.State snapshot; sums are taken
// in decimal so that partitions of a total add back up to it.
package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetit/internal/budget"
)

// DefaultUnbudgetedWarnThreshold is the share of spending, in percent, above
// which unbudgeted expenses are flagged as high.
const DefaultUnbudgetedWarnThreshold = 20.0

var hundred = decimal.NewFromInt(100)

func sum[T any](items []T, amount func(T) float64) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(decimal.NewFromFloat(amount(it)))
	}

	return total
}

func budgetAmount(b budget.Budget) float64   { return b.Amount }
func expenseAmount(e budget.Expense) float64 { return e.Amount }

// percent returns part/whole*100, or 0 when whole is not positive.
func percent(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}

	return part.Div(whole).Mul(hundred).InexactFloat64()
}

type Summary struct {
	TotalBudget     float64 `json:"totalBudget"`
	TotalExpenses   float64 `json:"totalExpenses"`
	RemainingBudget float64 `json:"remainingBudget"`
	PercentageUsed  float64 `json:"percentageUsed"`
}

func Summarize(st budget.State) Summary {
	budgets := sum(st.Budgets, budgetAmount)
	expenses := sum(st.Expenses, expenseAmount)

	return Summary{
		TotalBudget:     budgets.InexactFloat64(),
		TotalExpenses:   expenses.InexactFloat64(),
		RemainingBudget: budgets.Sub(expenses).InexactFloat64(),
		PercentageUsed:  percent(expenses, budgets),
	}
}

// Slice is one group of a rollup.
type Slice struct {
	ID    budget.ID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
	Total float64   `json:"total"`
}

type group struct {
	id    budget.ID
	name  string
	color string
}

func categoryGroups(st budget.State) []group {
	out := make([]group, 0, len(st.Categories))
	for _, c := range st.Categories {
		out = append(out, group{c.ID, c.Name, c.Color})
	}

	return out
}

func serviceGroups(st budget.State) []group {
	out := make([]group, 0, len(st.Services))
	for _, s := range st.Services {
		out = append(out, group{s.ID, s.Name, s.Color})
	}

	return out
}

// rollup sums items per group in group order and drops groups whose total
// is not positive. Items pointing at unknown groups are not counted.
func rollup[T any](groups []group, items []T, key func(T) budget.ID, amount func(T) float64) []Slice {
	totals := make(map[budget.ID]decimal.Decimal, len(groups))
	for _, it := range items {
		k := key(it)
		totals[k] = totals[k].Add(decimal.NewFromFloat(amount(it)))
	}

	var out []Slice

	for _, g := range groups {
		total := totals[g.id]
		if !total.IsPositive() {
			continue
		}

		out = append(out, Slice{ID: g.id, Name: g.name, Color: g.color, Total: total.InexactFloat64()})
	}

	return out
}

func budgetCategory(b budget.Budget) budget.ID  { return b.CategoryID }
func expenseCategory(e budget.Expense) budget.ID { return e.CategoryID }
func budgetService(b budget.Budget) budget.ID   { return budget.DerefID(b.ServiceID) }
func expenseService(e budget.Expense) budget.ID { return budget.DerefID(e.ServiceID) }

func BudgetsByCategory(st budget.State) []Slice {
	return rollup(categoryGroups(st), st.Budgets, budgetCategory, budgetAmount)
}

func ExpensesByCategory(st budget.State) []Slice {
	return rollup(categoryGroups(st), st.Expenses, expenseCategory, expenseAmount)
}

func BudgetsByService(st budget.State) []Slice {
	return rollup(serviceGroups(st), st.Budgets, budgetService, budgetAmount)
}

func ExpensesByService(st budget.State) []Slice {
	return rollup(serviceGroups(st), st.Expenses, expenseService, expenseAmount)
}

// Comparison sets planned against actual spending for one category.
type Comparison struct {
	ID       budget.ID `json:"id"`
	Name     string    `json:"name"`
	Color    string    `json:"color"`
	Budget   float64   `json:"budget"`
	Expenses float64   `json:"expenses"`
}

// BudgetVsExpenses lists categories having either budgets or expenses.
func BudgetVsExpenses(st budget.State) []Comparison {
	var out []Comparison

	for _, c := range st.Categories {
		planned := sum(filter(st.Budgets, func(b budget.Budget) bool { return b.CategoryID == c.ID }), budgetAmount)
		spent := sum(filter(st.Expenses, func(e budget.Expense) bool { return e.CategoryID == c.ID }), expenseAmount)

		if !planned.IsPositive() && !spent.IsPositive() {
			continue
		}

		out = append(out, Comparison{
			ID:       c.ID,
			Name:     c.Name,
			Color:    c.Color,
			Budget:   planned.InexactFloat64(),
			Expenses: spent.InexactFloat64(),
		})
	}

	return out
}

// Unbudgeted splits spending between expenses linked to a budget and the rest.
// The two parts are summed in decimal: BudgetedTotal + UnbudgetedTotal equals
// Total exactly before conversion, and Total equals Summary.TotalExpenses.
// Re-adding the float fields may be off in the last bit; compare Total instead.
type Unbudgeted struct {
	Total           float64 `json:"totalExpenses"`
	BudgetedTotal   float64 `json:"budgetedTotal"`
	UnbudgetedTotal float64 `json:"unbudgetedTotal"`
	BudgetedCount   int     `json:"budgetedCount"`
	UnbudgetedCount int     `json:"unbudgetedCount"`
	Percentage      float64 `json:"percentageUnbudgeted"`
	Threshold       float64 `json:"threshold"`
	High            bool    `json:"high"`
}

// UnbudgetedStats flags High when the unbudgeted share is strictly above
// threshold percent. A non-positive threshold selects the default.
func UnbudgetedStats(st budget.State, threshold float64) Unbudgeted {
	if threshold <= 0 {
		threshold = DefaultUnbudgetedWarnThreshold
	}

	unbudgeted := filter(st.Expenses, budget.Expense.Unbudgeted)
	budgeted := filter(st.Expenses, func(e budget.Expense) bool { return !e.Unbudgeted() })

	u := sum(unbudgeted, expenseAmount)
	b := sum(budgeted, expenseAmount)
	share := percent(u, u.Add(b))

	return Unbudgeted{
		Total:           u.Add(b).InexactFloat64(),
		BudgetedTotal:   b.InexactFloat64(),
		UnbudgetedTotal: u.InexactFloat64(),
		BudgetedCount:   len(budgeted),
		UnbudgetedCount: len(unbudgeted),
		Percentage:      share,
		Threshold:       threshold,
		High:            share > threshold,
	}
}

// Progress is the consumption of one budget by its linked expenses.
type Progress struct {
	Budget     budget.Budget `json:"budget"`
	Spent      float64       `json:"spent"`
	Remaining  float64       `json:"remaining"`
	Percentage float64       `json:"percentage"`
}

func spentByBudget(st budget.State) map[budget.ID]decimal.Decimal {
	out := make(map[budget.ID]decimal.Decimal, len(st.Budgets))
	for _, e := range st.Expenses {
		if e.BudgetID == nil {
			continue
		}

		out[*e.BudgetID] = out[*e.BudgetID].Add(decimal.NewFromFloat(e.Amount))
	}

	return out
}

func BudgetProgress(st budget.State) []Progress {
	spent := spentByBudget(st)
	out := make([]Progress, 0, len(st.Budgets))

	for _, b := range st.Budgets {
		amount := decimal.NewFromFloat(b.Amount)
		s := spent[b.ID]

		out = append(out, Progress{
			Budget:     b,
			Spent:      s.InexactFloat64(),
			Remaining:  amount.Sub(s).InexactFloat64(),
			Percentage: percent(s, amount),
		})
	}

	return out
}

// Overrun is a budget whose linked expenses exceed its amount.
type Overrun struct {
	Budget         budget.Budget `json:"budget"`
	Spent          float64       `json:"spent"`
	OverAmount     float64       `json:"overAmount"`
	OverPercentage float64       `json:"overPercentage"`
}

func OverBudget(st budget.State) []Overrun {
	spent := spentByBudget(st)

	var out []Overrun

	for _, b := range st.Budgets {
		amount := decimal.NewFromFloat(b.Amount)
		s := spent[b.ID]

		if !s.GreaterThan(amount) {
			continue
		}

		over := s.Sub(amount)
		out = append(out, Overrun{
			Budget:         b,
			Spent:          s.InexactFloat64(),
			OverAmount:     over.InexactFloat64(),
			OverPercentage: percent(over, amount),
		})
	}

	return out
}

// TopExpenses returns the n largest expenses; ties keep store order.
func TopExpenses(st budget.State, n int) []budget.Expense {
	out := slices.Clone(st.Expenses)
	slices.SortStableFunc(out, func(a, b budget.Expense) int { return cmp.Compare(b.Amount, a.Amount) })

	return head(out, n)
}

// RecentExpenses returns the n most recent expenses by date.
func RecentExpenses(st budget.State, n int) []budget.Expense {
	out := slices.Clone(st.Expenses)
	slices.SortStableFunc(out, func(a, b budget.Expense) int { return b.Date.Compare(a.Date.Time) })

	return head(out, n)
}

// MonthTotal is the spending of one calendar month.
type MonthTotal struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// Monthly returns expense totals for the month of now and the months
// preceding it, oldest first: months+1 entries.
func Monthly(st budget.State, now time.Time, months int) []MonthTotal {
	if months < 0 {
		months = 0
	}

	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	totals := make(map[string]decimal.Decimal, months+1)

	for _, e := range st.Expenses {
		if e.Date.IsZero() {
			continue
		}

		k := e.Date.Format("2006-01")
		totals[k] = totals[k].Add(decimal.NewFromFloat(e.Amount))
	}

	out := make([]MonthTotal, 0, months+1)

	for i := months; i >= 0; i-- {
		k := current.AddDate(0, -i, 0).Format("2006-01")
		out = append(out, MonthTotal{Month: k, Total: totals[k].InexactFloat64()})
	}

	return out
}

func filter[T any](items []T, keep func(T) bool) []T {
	var out []T

	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}

	return out
}

func head[T any](items []T, n int) []T {
	if n < 0 || n >= len(items) {
		return items
	}

	return items[:n]
}

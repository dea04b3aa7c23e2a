package report_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetit/internal/budget"
	"github.com/MrJamesThe3rd/budgetit/internal/report"
)

func day(s string) budget.Date {
	d, err := budget.ParseDate(s)
	if err != nil {
		panic(err)
	}

	return d
}

func fixture() budget.State {
	st := budget.InitialState()
	st.Budgets = []budget.Budget{
		{ID: "b1", Name: "Serveurs", Amount: 1000, CategoryID: "1", ServiceID: budget.IDRef("8")},
		{ID: "b2", Name: "Licences", Amount: 500, CategoryID: "2", ServiceID: budget.IDRef("3")},
	}
	st.Expenses = []budget.Expense{
		{ID: "e1", Description: "Baie", Amount: 400, CategoryID: "1", BudgetID: budget.IDRef("b1"), ServiceID: budget.IDRef("8"), Date: day("2025-01-10")},
		{ID: "e2", Description: "Office", Amount: 650, CategoryID: "2", BudgetID: budget.IDRef("b2"), Date: day("2025-03-02")},
		{ID: "e3", Description: "Câbles", Amount: 150, CategoryID: "1", Date: day("2025-03-20")},
		{ID: "e4", Description: "Formation Go", Amount: 800, CategoryID: "4", Date: day("2024-12-01")},
	}

	return st
}

func TestSummarize(t *testing.T) {
	type testCase struct {
		name  string
		state budget.State
		want  report.Summary
	}

	tests := []testCase{
		{
			name:  "Fixture",
			state: fixture(),
			want:  report.Summary{TotalBudget: 1500, TotalExpenses: 2000, RemainingBudget: -500, PercentageUsed: 2000.0 / 15},
		},
		{
			name:  "Empty",
			state: budget.InitialState(),
			want:  report.Summary{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := report.Summarize(tt.state)
			assert.Equal(t, tt.want.TotalBudget, got.TotalBudget)
			assert.Equal(t, tt.want.TotalExpenses, got.TotalExpenses)
			assert.Equal(t, tt.want.RemainingBudget, got.RemainingBudget)
			assert.InDelta(t, tt.want.PercentageUsed, got.PercentageUsed, 1e-9)
		})
	}
}

func TestRollups(t *testing.T) {
	st := fixture()

	assert.Equal(t, []report.Slice{
		{ID: "1", Name: "Hardware", Color: "#3B82F6", Total: 1000},
		{ID: "2", Name: "Software", Color: "#10B981", Total: 500},
	}, report.BudgetsByCategory(st))

	assert.Equal(t, []report.Slice{
		{ID: "1", Name: "Hardware", Color: "#3B82F6", Total: 550},
		{ID: "2", Name: "Software", Color: "#10B981", Total: 650},
		{ID: "4", Name: "Formation", Color: "#8B5CF6", Total: 800},
	}, report.ExpensesByCategory(st))

	assert.Equal(t, []report.Slice{
		{ID: "3", Name: "Finance", Color: "#DC2626", Total: 500},
		{ID: "8", Name: "Infrastructure", Color: budget.DefaultColor, Total: 1000},
	}, report.BudgetsByService(st))

	assert.Equal(t, []report.Slice{
		{ID: "8", Name: "Infrastructure", Color: budget.DefaultColor, Total: 400},
	}, report.ExpensesByService(st))

	assert.Equal(t, []report.Comparison{
		{ID: "1", Name: "Hardware", Color: "#3B82F6", Budget: 1000, Expenses: 550},
		{ID: "2", Name: "Software", Color: "#10B981", Budget: 500, Expenses: 650},
		{ID: "4", Name: "Formation", Color: "#8B5CF6", Budget: 0, Expenses: 800},
	}, report.BudgetVsExpenses(st))
}

func TestUnbudgetedStats(t *testing.T) {
	type testCase struct {
		name      string
		expenses  []budget.Expense
		threshold float64
		wantPct   float64
		wantHigh  bool
	}

	linked := budget.IDRef("b1")

	tests := []testCase{
		{
			name:     "Fixture",
			expenses: fixture().Expenses,
			wantPct:  47.5,
			wantHigh: true,
		},
		{
			name: "ExactlyAtThresholdIsNotHigh",
			expenses: []budget.Expense{
				{ID: "a", Amount: 80, CategoryID: "1", BudgetID: linked},
				{ID: "b", Amount: 20, CategoryID: "1"},
			},
			wantPct:  20,
			wantHigh: false,
		},
		{
			name: "CustomThreshold",
			expenses: []budget.Expense{
				{ID: "a", Amount: 90, CategoryID: "1", BudgetID: linked},
				{ID: "b", Amount: 10, CategoryID: "1"},
			},
			threshold: 5,
			wantPct:   10,
			wantHigh:  true,
		},
		{
			name:    "NoExpenses",
			wantPct: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := budget.InitialState()
			st.Expenses = tt.expenses

			got := report.UnbudgetedStats(st, tt.threshold)
			assert.InDelta(t, tt.wantPct, got.Percentage, 1e-9)
			assert.Equal(t, tt.wantHigh, got.High)
			assert.Equal(t, len(tt.expenses), got.BudgetedCount+got.UnbudgetedCount)
		})
	}
}

func TestUnbudgetedStats_PartitionSumsToTotal(t *testing.T) {
	st := budget.InitialState()

	for i := range 40 {
		e := budget.Expense{ID: budget.ID(fmt.Sprint(i)), Amount: float64(i+1) / 10, CategoryID: "1"}
		if i%3 == 0 {
			e.BudgetID = budget.IDRef("b")
		}

		st.Expenses = append(st.Expenses, e)
	}

	stats := report.UnbudgetedStats(st, 0)
	total := report.Summarize(st).TotalExpenses

	sum := decimal.NewFromFloat(stats.BudgetedTotal).Add(decimal.NewFromFloat(stats.UnbudgetedTotal))
	assert.True(t, sum.Equal(decimal.NewFromFloat(total)), "%s != %v", sum, total)
	assert.Equal(t, total, stats.Total)
	assert.Equal(t, report.DefaultUnbudgetedWarnThreshold, stats.Threshold)
}

func TestUnbudgetedStats_TotalIsExact(t *testing.T) {
	st := budget.InitialState()
	st.Expenses = []budget.Expense{
		{ID: "a", Amount: 0.1, CategoryID: "1"},
		{ID: "b", Amount: 0.2, CategoryID: "1", BudgetID: budget.IDRef("b1")},
	}

	stats := report.UnbudgetedStats(st, 0)

	assert.Equal(t, 0.3, stats.Total)
	assert.Equal(t, report.Summarize(st).TotalExpenses, stats.Total)
	assert.Equal(t, 0.1, stats.UnbudgetedTotal)
	assert.Equal(t, 0.2, stats.BudgetedTotal)
}

func TestBudgetProgressAndOverBudget(t *testing.T) {
	st := fixture()

	progress := report.BudgetProgress(st)
	require.Len(t, progress, 2)
	assert.Equal(t, 400.0, progress[0].Spent)
	assert.Equal(t, 600.0, progress[0].Remaining)
	assert.Equal(t, 40.0, progress[0].Percentage)

	over := report.OverBudget(st)
	require.Len(t, over, 1)
	assert.Equal(t, budget.ID("b2"), over[0].Budget.ID)
	assert.Equal(t, 150.0, over[0].OverAmount)
	assert.Equal(t, 30.0, over[0].OverPercentage)
}

func TestTopAndRecentExpenses(t *testing.T) {
	st := fixture()

	ids := func(es []budget.Expense) []budget.ID {
		var out []budget.ID
		for _, e := range es {
			out = append(out, e.ID)
		}

		return out
	}

	assert.Equal(t, []budget.ID{"e4", "e2", "e1"}, ids(report.TopExpenses(st, 3)))
	assert.Equal(t, []budget.ID{"e3", "e2"}, ids(report.RecentExpenses(st, 2)))
	assert.Len(t, report.TopExpenses(st, 10), 4)
	assert.Equal(t, []budget.ID{"e1", "e2", "e3", "e4"}, ids(st.Expenses))
}

func TestMonthly(t *testing.T) {
	now := time.Date(2025, 3, 28, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, []report.MonthTotal{
		{Month: "2024-12", Total: 800},
		{Month: "2025-01", Total: 400},
		{Month: "2025-02", Total: 0},
		{Month: "2025-03", Total: 800},
	}, report.Monthly(fixture(), now, 3))
}

func TestWriteExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteExport(&buf, budget.InitialState()))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, []any{}, doc["budgets"])
	assert.Equal(t, []any{}, doc["expenses"])
	assert.Equal(t, map[string]any{
		"totalBudget":     0.0,
		"totalExpenses":   0.0,
		"remainingBudget": 0.0,
		"percentageUsed":  0.0,
	}, doc["summary"])
	assert.Contains(t, buf.String(), "\n  \"summary\": {")

	assert.Equal(t, "budget-it-report-2025-03-14.json", report.ExportFileName(time.Date(2025, 3, 14, 23, 0, 0, 0, time.UTC)))
}

package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetit/internal/budget"
	"github.com/MrJamesThe3rd/budgetit/internal/report"
	"github.com/MrJamesThe3rd/budgetit/internal/storage"
)

func newStore(t *testing.T) *budget.Store {
	t.Helper()

	ctx := context.Background()
	store := budget.NewStore(storage.NewMemory(),
		budget.WithClock(func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) }),
		budget.WithIDGenerator(budget.SequentialIDs("id")),
	)

	b, err := store.AddBudget(ctx, budget.Budget{Name: "Serveurs", Amount: 1000, CategoryID: "1"})
	require.NoError(t, err)

	_, err = store.AddExpense(ctx, budget.Expense{Description: "Baie", Amount: 250, CategoryID: "1", BudgetID: budget.IDRef(b.ID)})
	require.NoError(t, err)

	_, err = store.AddExpense(ctx, budget.Expense{Description: "Câbles", Amount: 50.5, CategoryID: "1"})
	require.NoError(t, err)

	return store
}

func TestExportService_Export(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	svc := NewService(newStore(t))

	path, err := svc.Export(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "budget-it-report-2025-03-14.json"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc report.Export
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Len(t, doc.Budgets, 1)
	assert.Len(t, doc.Expenses, 2)
	assert.Equal(t, report.Summary{
		TotalBudget:     1000,
		TotalExpenses:   300.5,
		RemainingBudget: 699.5,
		PercentageUsed:  30.05,
	}, doc.Summary)
}

func TestExportService_Digest(t *testing.T) {
	svc := NewService(newStore(t))

	want := "* 2025-03-14 | Baie | 250.00 € | Serveurs\n" +
		"* 2025-03-14 | Câbles | 50.50 € | Hors budget\n" +
		"\nBudget: 1000.00 € | Dépenses: 300.50 € | Restant: 699.50 € | Utilisé: 30.1%\n"

	assert.Equal(t, want, svc.Digest())
}

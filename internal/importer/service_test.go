package importer_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetit/internal/budget"
	"github.com/MrJamesThe3rd/budgetit/internal/importer"
	"github.com/MrJamesThe3rd/budgetit/internal/spreadsheet"
	"github.com/MrJamesThe3rd/budgetit/internal/storage"
)

var today = time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *budget.Store {
	t.Helper()

	return budget.NewStore(storage.NewMemory(),
		budget.WithClock(func() time.Time { return today }),
		budget.WithIDGenerator(budget.SequentialIDs("id")),
	)
}

func sheet(records ...[]string) *spreadsheet.Sheet {
	return spreadsheet.FromRecords("Feuil1", records)
}

func TestImportExpenses_HeuristicCategory(t *testing.T) {
	store := newStore(t)
	svc := importer.NewService(store)

	res, err := svc.ImportExpenses(context.Background(), sheet(
		[]string{"Description", "Montant", "Catégorie"},
		[]string{"Serveur X", "100", "Hébergement"},
	), importer.Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 0, res.CreatedCategories)

	expenses := store.Expenses()
	require.Len(t, expenses, 1)
	assert.Equal(t, 100.0, expenses[0].Amount)
	assert.Equal(t, budget.ID("3"), expenses[0].CategoryID)
	assert.Nil(t, expenses[0].BudgetID)
	assert.Nil(t, expenses[0].ServiceID)
	assert.Equal(t, budget.NewDate(today), expenses[0].Date)
}

func TestImportExpenses_SecondRunSkipsDuplicates(t *testing.T) {
	for _, n := range []int{1, 3, 25} {
		t.Run(fmt.Sprintf("Rows%d", n), func(t *testing.T) {
			store := newStore(t)
			svc := importer.NewService(store)

			records := [][]string{{"Libellé", "Montant", "Catégorie", "Service"}}
			for i := range n {
				records = append(records, []string{fmt.Sprintf("Ligne %d", i), fmt.Sprintf("%d,50", i+1), "Nouvelle famille", "Juridique"})
			}

			first, err := svc.ImportExpenses(context.Background(), sheet(records...), importer.Options{})
			require.NoError(t, err)
			assert.Equal(t, n, first.Imported)
			assert.Equal(t, 0, first.SkippedDuplicate)
			assert.Equal(t, 1, first.CreatedCategories)
			assert.Equal(t, 1, first.CreatedServices)

			second, err := svc.ImportExpenses(context.Background(), sheet(records...), importer.Options{})
			require.NoError(t, err)
			assert.Equal(t, 0, second.Imported)
			assert.Equal(t, n, second.SkippedDuplicate)
			assert.Equal(t, 0, second.CreatedCategories)
			assert.Equal(t, 0, second.CreatedServices)
			assert.Equal(t, n, second.Total)

			assert.Len(t, store.Expenses(), n)
		})
	}
}

func TestImportExpenses_RejectsIncompleteRows(t *testing.T) {
	type testCase struct {
		name string
		rows [][]string
	}

	tests := []testCase{
		{
			name: "MissingAmountColumnValue",
			rows: [][]string{{"Description", "Montant"}, {"Licence", ""}},
		},
		{
			name: "MissingDescription",
			rows: [][]string{{"Description", "Montant"}, {"", "12"}},
		},
		{
			name: "InvalidAmount",
			rows: [][]string{{"Description", "Montant"}, {"Licence", "douze"}},
		},
		{
			name: "NegativeAmount",
			rows: [][]string{{"Description", "Montant"}, {"Avoir", "-12"}},
		},
		{
			name: "NoAmountColumn",
			rows: [][]string{{"Description", "Quantité"}, {"Licence", "12"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore(t)
			before := store.State()

			res, err := importer.NewService(store).ImportExpenses(context.Background(), sheet(tt.rows...), importer.Options{})
			require.NoError(t, err)

			assert.Equal(t, 1, res.RejectedMissingData)
			assert.Equal(t, 0, res.Imported)
			assert.Equal(t, 1, res.Total)
			require.Len(t, res.Issues, 1)
			assert.Equal(t, 2, res.Issues[0].Line)
			assert.Equal(t, before, store.State())
		})
	}
}

func TestImportExpenses_Resolution(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	licences, err := store.AddBudget(ctx, budget.Budget{Name: "Licences 2025", Amount: 5000, CategoryID: "2"})
	require.NoError(t, err)

	res, err := importer.NewService(store).ImportExpenses(ctx, sheet(
		[]string{"Désignation", "Prix HT", "Famille", "Département", "Date facture", "Fournisseur", "Notes", "Projet"},
		[]string{"Office", "1 200,50 €", "logiciel", "DAF", "45658", "Microsoft", "annuel", "licences"},
		[]string{"Cloud storage", "300", "Cloud", "Équipe data", "03/02/2025", "", "", "Inconnu"},
		[]string{"Backup", "40", "cloud", "", "pas une date", "OVH", "", ""},
		[]string{"Divers", "10", "", "", "2025-04-01", "", "", ""},
	), importer.Options{
		Overrides: importer.Overrides{Services: map[string]budget.ID{"Équipe data": "8"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Imported)
	assert.Equal(t, 1, res.CreatedCategories)
	assert.Equal(t, 0, res.CreatedServices)

	expenses := store.Expenses()
	require.Len(t, expenses, 4)

	office := expenses[0]
	assert.Equal(t, 1200.5, office.Amount)
	assert.Equal(t, budget.ID("2"), office.CategoryID)
	assert.Equal(t, budget.ID("3"), budget.DerefID(office.ServiceID))
	assert.Equal(t, licences.ID, budget.DerefID(office.BudgetID))
	assert.Equal(t, "2025-01-01", office.Date.String())
	assert.Equal(t, "Fournisseur: Microsoft. annuel", office.Notes)

	cloud := expenses[1]
	created, err := store.GetCategory(cloud.CategoryID)
	require.NoError(t, err)
	assert.Equal(t, "Cloud", created.Name)
	assert.Equal(t, budget.DefaultColor, created.Color)
	assert.Equal(t, budget.ID("8"), budget.DerefID(cloud.ServiceID))
	assert.Nil(t, cloud.BudgetID)
	assert.Equal(t, "2025-02-03", cloud.Date.String())

	backup := expenses[2]
	assert.Equal(t, cloud.CategoryID, backup.CategoryID)
	assert.Equal(t, budget.NewDate(today), backup.Date)
	assert.Equal(t, "Fournisseur: OVH", backup.Notes)

	divers := expenses[3]
	assert.Equal(t, budget.ID("6"), divers.CategoryID)
	assert.Equal(t, "2025-04-01", divers.Date.String())
}

func TestImportExpenses_Deterministic(t *testing.T) {
	rows := sheet(
		[]string{"Description", "Montant", "Catégorie", "Service"},
		[]string{"A", "1", "Réseau", "Sécurité"},
		[]string{"B", "2", "Serveur", "Réseau"},
		[]string{"C", "3", "réseau", "rh"},
	)

	run := func() (*importer.Result, budget.State) {
		store := newStore(t)
		res, err := importer.NewService(store).ImportExpenses(context.Background(), rows, importer.Options{})
		require.NoError(t, err)

		return res, store.State()
	}

	res1, st1 := run()
	res2, st2 := run()

	assert.Equal(t, res1, res2)
	assert.Equal(t, st1, st2)
}

func TestImportExpenses_Replace(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	_, err := store.AddExpense(ctx, budget.Expense{Description: "Ancienne", Amount: 9, CategoryID: "1"})
	require.NoError(t, err)

	res, err := importer.NewService(store).ImportExpenses(ctx, sheet(
		[]string{"Description", "Montant"},
		[]string{"Ancienne", "9"},
		[]string{"Nouvelle", "5"},
	), importer.Options{Replace: true})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 0, res.SkippedDuplicate)

	var names []string
	for _, e := range store.Expenses() {
		names = append(names, e.Description)
	}

	assert.Equal(t, []string{"Ancienne", "Nouvelle"}, names)
}

func TestImportBudgets_Template(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	var rows [][]string
	rows = append(rows, spreadsheet.TemplateHeaders(2025))
	rows = append(rows,
		[]string{"OVH", "DAF", "Hébergement", "12000", "Serveur Web Principal", "Renouvellement annuel", "Paris"},
		[]string{"Microsoft", "Production", "Logiciels", "25000", "Licences Office 365", "Pour 50 utilisateurs", "Lyon"},
		[]string{"Free Pro", "DAF", "Télécom", "5000", "Abonnement Fibre", "", "Marseille"},
		[]string{"Inconnu", "", "", "", "Sans montant", "", ""},
	)

	svc := importer.NewService(store)

	res, err := svc.ImportBudgets(ctx, sheet(rows...), importer.Options{})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Imported)
	assert.Equal(t, 1, res.RejectedMissingData)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 3, res.CreatedServices)
	assert.Equal(t, 0, res.CreatedCategories)

	budgets := store.Budgets()
	require.Len(t, budgets, 3)

	ovh := budgets[0]
	assert.Equal(t, "Serveur Web Principal", ovh.Name)
	assert.Equal(t, 12000.0, ovh.Amount)
	assert.Equal(t, budget.ID("3"), ovh.CategoryID)
	assert.Equal(t, "Prestataire: OVH. Remarque: Renouvellement annuel", ovh.Description)
	assert.Equal(t, "Paris", ovh.Lieu)
	assert.Equal(t, "2025-01-01", ovh.StartDate.String())
	assert.Equal(t, "2025-12-31", ovh.EndDate.String())

	hosting, err := store.GetService(budget.DerefID(ovh.ServiceID))
	require.NoError(t, err)
	assert.Equal(t, "Hébergement", hosting.Name)

	assert.Equal(t, "Prestataire: Free Pro.", budgets[2].Description)

	again, err := svc.ImportBudgets(ctx, sheet(rows...), importer.Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, again.Imported)
	assert.Equal(t, 3, again.SkippedDuplicate)
	assert.Len(t, store.Budgets(), 3)
}

func TestImportBudgets_FiscalYear(t *testing.T) {
	type testCase struct {
		name    string
		header  string
		opts    importer.Options
		svcOpts []importer.ServiceOption
		want    string
	}

	tests := []testCase{
		{name: "FromHeader", header: "mt HT estimé 2026", want: "2026-01-01"},
		{name: "Explicit", header: "mt HT estimé 2026", opts: importer.Options{FiscalYear: 2027}, want: "2027-01-01"},
		{name: "ServiceDefault", header: "Montant", svcOpts: []importer.ServiceOption{importer.WithFiscalYear(2024)}, want: "2024-01-01"},
		{name: "CurrentYear", header: "Montant", want: "2025-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore(t)

			_, err := importer.NewService(store, tt.svcOpts...).ImportBudgets(context.Background(), sheet(
				[]string{"Prestation", tt.header, "Catégorie prestation"},
				[]string{"Support", "100", "maintenance"},
			), tt.opts)
			require.NoError(t, err)

			budgets := store.Budgets()
			require.Len(t, budgets, 1)
			assert.Equal(t, tt.want, budgets[0].StartDate.String())
			assert.Equal(t, budget.ID("5"), budgets[0].CategoryID)
		})
	}
}

func TestImportBudgets_NoFallbackCategory(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.DeleteCategory(ctx, "6"))

	res, err := importer.NewService(store).ImportBudgets(ctx, sheet(
		[]string{"Prestation", "Montant", "Catégorie"},
		[]string{"Sans catégorie", "100", ""},
	), importer.Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, res.RejectedMissingData)
	assert.Empty(t, store.Budgets())
}

func TestImport_Progress(t *testing.T) {
	var calls [][2]int

	_, err := importer.NewService(newStore(t)).ImportExpenses(context.Background(), sheet(
		[]string{"Description", "Montant"},
		[]string{"A", "1"},
		[]string{"B", "2"},
	), importer.Options{Progress: func(done, total int) { calls = append(calls, [2]int{done, total}) }})
	require.NoError(t, err)

	assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, calls)
}

func TestPreview(t *testing.T) {
	store := newStore(t)

	p := importer.NewService(store).Preview(sheet(
		[]string{"Libellé", "Montant", "Catégorie", "Service"},
		[]string{"A", "1", "Hébergement", "DAF"},
		[]string{"B", "2", "Cloud", "DAF"},
		[]string{"C", "3", "software", "Finance"},
	), importer.ExpenseProfile, importer.Options{})

	assert.Equal(t, 3, p.Rows)
	assert.Empty(t, p.Missing)
	assert.Equal(t, "Libellé", p.Mapping[importer.FieldDescription])

	assert.Equal(t, []importer.Suggestion{
		{Value: "Hébergement", ID: "3", Method: importer.MethodHeuristic},
		{Value: "Cloud", Method: importer.MethodCreate},
		{Value: "software", ID: "2", Method: importer.MethodExact},
	}, p.Categories)

	assert.Equal(t, []importer.Suggestion{
		{Value: "DAF", ID: "3", Method: importer.MethodHeuristic},
		{Value: "Finance", ID: "3", Method: importer.MethodExact},
	}, p.Services)

	assert.Equal(t, store.State(), newStore(t).State())
}

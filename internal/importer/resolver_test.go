package importer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetit/internal/budget"
	"github.com/MrJamesThe3rd/budgetit/internal/importer"
)

func newResolver(overrides importer.Overrides) *importer.Resolver {
	st := budget.InitialState()
	st.Budgets = []budget.Budget{
		{ID: "b1", Name: "Licences Microsoft", Amount: 1000, CategoryID: "2"},
		{ID: "b2", Name: "Infra", Amount: 500, CategoryID: "1"},
	}

	return importer.NewResolver(st, overrides, budget.SequentialIDs("new"))
}

func TestResolver_Lookup(t *testing.T) {
	type testCase struct {
		name       string
		kind       importer.Kind
		value      string
		overrides  importer.Overrides
		wantID     budget.ID
		wantMethod importer.Method
	}

	tests := []testCase{
		{name: "ExactIgnoresCase", kind: importer.KindCategory, value: "SOFTWARE", wantID: "2", wantMethod: importer.MethodExact},
		{name: "Heuristic", kind: importer.KindCategory, value: "Hébergement web", wantID: "3", wantMethod: importer.MethodHeuristic},
		{name: "HeuristicTableOrder", kind: importer.KindCategory, value: "Licence serveur", wantID: "1", wantMethod: importer.MethodHeuristic},
		{name: "ExactBeforeHeuristic", kind: importer.KindCategory, value: "Maintenance", wantID: "5", wantMethod: importer.MethodExact},
		{
			name:       "OverrideBeforeExact",
			kind:       importer.KindCategory,
			value:      "Software",
			overrides:  importer.Overrides{Categories: map[string]budget.ID{"Software": "4"}},
			wantID:     "4",
			wantMethod: importer.MethodOverride,
		},
		{
			name:       "OverrideToUnknownIgnored",
			kind:       importer.KindCategory,
			value:      "Software",
			overrides:  importer.Overrides{Categories: map[string]budget.ID{"Software": "99"}},
			wantID:     "2",
			wantMethod: importer.MethodExact,
		},
		{name: "ServiceHeuristic", kind: importer.KindService, value: "DRH", wantID: "2", wantMethod: importer.MethodHeuristic},
		{name: "ServiceExact", kind: importer.KindService, value: "finance", wantID: "3", wantMethod: importer.MethodExact},
		{name: "NoMatch", kind: importer.KindCategory, value: "Cloud"},
		{name: "Blank", kind: importer.KindService, value: "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, method := newResolver(tt.overrides).Lookup(tt.kind, tt.value)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantMethod, method)
		})
	}
}

func TestResolver_CreateOnce(t *testing.T) {
	r := newResolver(importer.Overrides{})

	first, method := r.Resolve(importer.KindCategory, "cloud public")
	assert.Equal(t, importer.MethodCreate, method)
	assert.Equal(t, budget.ID("new-1"), first)

	second, method := r.Resolve(importer.KindCategory, "Cloud Public")
	assert.Equal(t, importer.MethodExact, method)
	assert.Equal(t, first, second)

	assert.Equal(t, 1, r.Created(importer.KindCategory))
	assert.Equal(t, 0, r.Created(importer.KindService))

	require.Len(t, r.Commands(), 1)
	assert.Equal(t, budget.AddCategory{Category: budget.Category{
		ID:    "new-1",
		Name:  "Cloud public",
		Color: budget.DefaultColor,
	}}, r.Commands()[0])
}

func TestResolver_Category(t *testing.T) {
	r := newResolver(importer.Overrides{})

	id, method := r.Category("")
	assert.Equal(t, budget.ID("6"), id)
	assert.Equal(t, importer.MethodFallback, method)

	assert.Nil(t, r.Service(""))
	assert.Equal(t, budget.ID("8"), budget.DerefID(r.Service("infra réseau")))
}

func TestResolver_Budget(t *testing.T) {
	type testCase struct {
		name       string
		value      string
		overrides  importer.Overrides
		wantID     budget.ID
		wantMethod importer.Method
	}

	tests := []testCase{
		{name: "Exact", value: "infra", wantID: "b2", wantMethod: importer.MethodExact},
		{name: "ValueContainsName", value: "Licences Microsoft 2025", wantID: "b1", wantMethod: importer.MethodContains},
		{name: "NameContainsValue", value: "licences", wantID: "b1", wantMethod: importer.MethodContains},
		{
			name:       "Override",
			value:      "Projet X",
			overrides:  importer.Overrides{Budgets: map[string]budget.ID{"Projet X": "b2"}},
			wantID:     "b2",
			wantMethod: importer.MethodOverride,
		},
		{name: "NoMatch", value: "Téléphonie"},
		{name: "Blank", value: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolver(tt.overrides)

			id, method := r.Budget(tt.value)
			assert.Equal(t, tt.wantID, budget.DerefID(id))
			assert.Equal(t, tt.wantMethod, method)
			assert.Empty(t, r.Commands())
		})
	}
}

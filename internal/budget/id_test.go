package budget_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetit/internal/budget"
)

func TestDeduplicateByID(t *testing.T) {
	type testCase struct {
		name  string
		input []budget.Category
		want  []budget.ID
	}

	tests := []testCase{
		{name: "Empty", input: nil, want: []budget.ID{}},
		{
			name:  "NoDuplicates",
			input: []budget.Category{{ID: "a"}, {ID: "b"}},
			want:  []budget.ID{"a", "b"},
		},
		{
			name:  "KeepsFirstOccurrence",
			input: []budget.Category{{ID: "b", Name: "first"}, {ID: "a"}, {ID: "b", Name: "second"}, {ID: "c"}, {ID: "a"}},
			want:  []budget.ID{"b", "a", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := budget.DeduplicateByID(tt.input)
			twice := budget.DeduplicateByID(once)

			ids := make([]budget.ID, 0, len(once))
			for _, c := range once {
				ids = append(ids, c.ID)
			}

			assert.Equal(t, tt.want, ids)
			assert.Equal(t, once, twice)

			if tt.name == "KeepsFirstOccurrence" {
				assert.Equal(t, "first", once[0].Name)
			}
		})
	}
}

func TestGenerateID_Unique(t *testing.T) {
	seen := make(map[budget.ID]struct{})

	for range 1000 {
		id := budget.GenerateID()
		require.NotEmpty(t, id)

		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)

		seen[id] = struct{}{}
	}
}

func TestSequentialIDs(t *testing.T) {
	gen := budget.SequentialIDs("cat")

	assert.Equal(t, budget.ID("cat-1"), gen())
	assert.Equal(t, budget.ID("cat-2"), gen())
}

func TestExpense_JSON(t *testing.T) {
	raw := `{"id":17,"description":"Écran","amount":199.9,"categoryId":1,"serviceId":null,"budgetId":"b-1","date":"2025-02-03","notes":"","createdAt":"2025-02-03T10:00:00Z"}`

	var e budget.Expense
	require.NoError(t, json.Unmarshal([]byte(raw), &e))

	assert.Equal(t, budget.ID("17"), e.ID)
	assert.Equal(t, budget.ID("1"), e.CategoryID)
	assert.Nil(t, e.ServiceID)
	assert.Equal(t, budget.ID("b-1"), budget.DerefID(e.BudgetID))
	assert.Equal(t, "2025-02-03", e.Date.String())
	assert.False(t, e.Unbudgeted())

	out, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"date":"2025-02-03"`)
	assert.Contains(t, string(out), `"categoryId":"1"`)
}

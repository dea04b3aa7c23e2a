package importer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/budgetit/internal/importer"
	"github.com/MrJamesThe3rd/budgetit/internal/spreadsheet"
)

func TestDetect(t *testing.T) {
	type testCase struct {
		name     string
		profile  importer.Profile
		columns  []string
		explicit importer.Mapping
		want     importer.Mapping
		missing  []importer.Field
	}

	tests := []testCase{
		{
			name:    "ExpenseExactHeaders",
			profile: importer.ExpenseProfile,
			columns: []string{"Description", "Montant", "Catégorie", "Service", "Date"},
			want: importer.Mapping{
				importer.FieldDescription: "Description",
				importer.FieldAmount:      "Montant",
				importer.FieldCategory:    "Catégorie",
				importer.FieldService:     "Service",
				importer.FieldDate:        "Date",
			},
		},
		{
			name:    "ExpenseSubstringHeaders",
			profile: importer.ExpenseProfile,
			columns: []string{"Libellé facture", "Montant TTC", "Type de dépense", "Date de paiement"},
			want: importer.Mapping{
				importer.FieldDescription: "Libellé facture",
				importer.FieldAmount:      "Montant TTC",
				importer.FieldCategory:    "Type de dépense",
				importer.FieldDate:        "Date de paiement",
			},
		},
		{
			name:     "ExplicitWins",
			profile:  importer.ExpenseProfile,
			columns:  []string{"Objet", "Montant", "Total"},
			explicit: importer.Mapping{importer.FieldDescription: "Objet", importer.FieldAmount: "Total"},
			want: importer.Mapping{
				importer.FieldDescription: "Objet",
				importer.FieldAmount:      "Total",
			},
		},
		{
			name:     "ExplicitUnknownColumnIgnored",
			profile:  importer.ExpenseProfile,
			columns:  []string{"Description", "Montant"},
			explicit: importer.Mapping{importer.FieldCategory: "Absente"},
			want: importer.Mapping{
				importer.FieldDescription: "Description",
				importer.FieldAmount:      "Montant",
			},
		},
		{
			name:    "MissingRequired",
			profile: importer.ExpenseProfile,
			columns: []string{"Description", "Quantité"},
			want:    importer.Mapping{importer.FieldDescription: "Description"},
			missing: []importer.Field{importer.FieldAmount},
		},
		{
			name:    "BudgetTemplate",
			profile: importer.BudgetProfile,
			columns: spreadsheet.TemplateHeaders(2025),
			want: importer.Mapping{
				importer.FieldName:     spreadsheet.ColPrestation,
				importer.FieldSupplier: spreadsheet.ColSupplier,
				importer.FieldAmount:   spreadsheet.AmountHeader(2025),
				importer.FieldService:  spreadsheet.ColSubCategory,
				importer.FieldCategory: spreadsheet.ColCategory,
				importer.FieldNotes:    spreadsheet.ColRemark,
				importer.FieldLieu:     spreadsheet.ColLieu,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.profile.Detect(tt.columns, tt.explicit)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.missing, tt.profile.Missing(got))
		})
	}
}

func TestProfileFor(t *testing.T) {
	p, err := importer.ProfileFor("budgets")
	assert.NoError(t, err)
	assert.Equal(t, importer.BudgetProfile.Name, p.Name)

	p, err = importer.ProfileFor("")
	assert.NoError(t, err)
	assert.Equal(t, importer.ExpenseProfile.Name, p.Name)

	_, err = importer.ProfileFor("invoices")
	assert.Error(t, err)
}

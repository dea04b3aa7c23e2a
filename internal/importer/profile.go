package importer

import (
	"slices"
	"strings"
)

// Field is a logical role a spreadsheet column can play.
type Field string

const (
	FieldDescription Field = "description"
	FieldAmount      Field = "amount"
	FieldCategory    Field = "category"
	FieldService     Field = "service"
	FieldDate        Field = "date"
	FieldSupplier    Field = "supplier"
	FieldNotes       Field = "notes"
	FieldBudget      Field = "budget"
	FieldName        Field = "name"
	FieldLieu        Field = "lieu"
)

// Mapping assigns a source column to each logical field.
type Mapping map[Field]string

// vocabulary lists, for one field, the lowercase words a header may contain.
type vocabulary struct {
	Field Field
	Terms []string
}

// Profile describes the columns one importer understands. Fields are
// detected in order and a column is never assigned to two fields, so a more
// specific field must come before a broader one that could steal its column.
type Profile struct {
	Name     string
	Fields   []vocabulary
	Required []Field
}

var ExpenseProfile = Profile{
	Name: "expenses",
	Fields: []vocabulary{
		{FieldDescription, []string{"description", "libellé", "désignation", "prestation"}},
		{FieldAmount, []string{"montant", "prix", "coût", "ht"}},
		{FieldCategory, []string{"catégorie", "type", "famille"}},
		{FieldService, []string{"service", "département", "direction"}},
		{FieldDate, []string{"date", "période"}},
		{FieldSupplier, []string{"fournisseur", "prestataire", "vendeur"}},
		{FieldNotes, []string{"notes", "remarques", "commentaires"}},
		{FieldBudget, []string{"budget", "projet"}},
	},
	Required: []Field{FieldDescription, FieldAmount},
}

// BudgetProfile matches the budget template: "Sous catégorie prestation" is
// the service and must be claimed before the category field sees it.
var BudgetProfile = Profile{
	Name: "budgets",
	Fields: []vocabulary{
		{FieldName, []string{"prestation", "libellé", "désignation", "description", "nom"}},
		{FieldSupplier, []string{"prestataire", "fournisseur", "vendeur"}},
		{FieldAmount, []string{"mt ht", "montant", "prix", "coût", "ht"}},
		{FieldService, []string{"sous catégorie", "service", "département", "direction"}},
		{FieldCategory, []string{"catégorie", "type", "famille"}},
		{FieldNotes, []string{"remarque", "notes", "commentaires"}},
		{FieldLieu, []string{"lieu", "site", "localisation"}},
	},
	Required: []Field{FieldName, FieldAmount},
}

// Detect maps the profile's fields onto columns. Entries in explicit win and
// their columns are not reused; the remaining fields are found first by exact
// header match, then by case-insensitive substring.
func (p Profile) Detect(columns []string, explicit Mapping) Mapping {
	out := make(Mapping, len(p.Fields))
	claimed := make(map[string]bool, len(columns))

	for field, col := range explicit {
		if col == "" || !slices.Contains(columns, col) {
			continue
		}

		out[field] = col
		claimed[col] = true
	}

	lower := make([]string, len(columns))
	for i, c := range columns {
		lower[i] = strings.ToLower(strings.TrimSpace(c))
	}

	assign := func(field Field, match func(header, term string) bool, terms []string) {
		if _, done := out[field]; done {
			return
		}

		for _, term := range terms {
			for i, header := range lower {
				if claimed[columns[i]] || !match(header, term) {
					continue
				}

				out[field] = columns[i]
				claimed[columns[i]] = true

				return
			}
		}
	}

	for _, v := range p.Fields {
		assign(v.Field, func(h, t string) bool { return h == t }, v.Terms)
	}

	for _, v := range p.Fields {
		assign(v.Field, strings.Contains, v.Terms)
	}

	return out
}

// Missing lists the required fields with no column.
func (p Profile) Missing(m Mapping) []Field {
	var out []Field

	for _, f := range p.Required {
		if m[f] == "" {
			out = append(out, f)
		}
	}

	return out
}

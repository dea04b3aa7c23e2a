package spreadsheet_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetit/internal/spreadsheet"
)

func TestRead_Template(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, spreadsheet.WriteTemplate(&buf, 0))

	sheet, err := spreadsheet.Read(&buf)
	require.NoError(t, err)

	assert.Equal(t, spreadsheet.TemplateSheet, sheet.Name)
	assert.Equal(t, spreadsheet.TemplateHeaders(2025), sheet.Columns)
	require.Len(t, sheet.Rows, 3)

	first := sheet.Rows[0]
	assert.Equal(t, 2, first.Line)

	v, ok := first.Get("mt HT estimé 2025")
	require.True(t, ok)
	assert.Equal(t, "12000", v)

	_, ok = sheet.Rows[2].Get(spreadsheet.ColRemark)
	assert.False(t, ok)
}

func TestRead_Delimited(t *testing.T) {
	type testCase struct {
		name        string
		input       string
		wantColumns []string
		wantRows    int
		wantCell    string
	}

	tests := []testCase{
		{
			name:        "Semicolon",
			input:       "Libellé;Montant;Catégorie\nServeur X;1 200,50;Hébergement\n",
			wantColumns: []string{"Libellé", "Montant", "Catégorie"},
			wantRows:    1,
			wantCell:    "1 200,50",
		},
		{
			name:        "Comma",
			input:       "Libellé,Montant,Catégorie\n\"Serveur X\",1200.50,Hébergement\n",
			wantColumns: []string{"Libellé", "Montant", "Catégorie"},
			wantRows:    1,
			wantCell:    "1200.50",
		},
		{
			name:        "BlankRowsSkipped",
			input:       "Libellé;Montant\n;\nA;1\n\nB;2\n",
			wantColumns: []string{"Libellé", "Montant"},
			wantRows:    2,
			wantCell:    "1",
		},
		{
			name:        "DuplicateAndEmptyHeaders",
			input:       "Montant;;Montant;\n5;x;6;y\n",
			wantColumns: []string{"Montant", "__EMPTY", "Montant_1", "__EMPTY_1"},
			wantRows:    1,
			wantCell:    "5",
		},
		{
			name:     "Empty",
			input:    "",
			wantRows: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet, err := spreadsheet.Read(strings.NewReader(tt.input))
			require.NoError(t, err)

			assert.Equal(t, tt.wantColumns, sheet.Columns)
			require.Len(t, sheet.Rows, tt.wantRows)

			if tt.wantRows > 0 {
				v, _ := sheet.Rows[0].Get("Montant")
				assert.Equal(t, tt.wantCell, v)
			}
		})
	}
}

func TestRead_Unreadable(t *testing.T) {
	type testCase struct {
		name  string
		input []byte
	}

	tests := []testCase{
		{name: "LegacyXLS", input: []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}},
		{name: "CorruptZip", input: []byte("PK\x03\x04garbage")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := spreadsheet.Read(bytes.NewReader(tt.input))
			assert.ErrorIs(t, err, spreadsheet.ErrUnreadable)
		})
	}
}

func TestSheet_Values(t *testing.T) {
	sheet := spreadsheet.FromRecords("s", [][]string{
		{"Catégorie", "Montant"},
		{"Hébergement", "1"},
		{"", "2"},
		{"Logiciel", "3"},
		{"Hébergement", "4"},
	})

	assert.Equal(t, []string{"Hébergement", "Logiciel"}, sheet.Values("Catégorie"))
	assert.Equal(t, 3, sheet.Rows[1].Line)
}

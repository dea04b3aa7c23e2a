package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	TemplateFileName = "modele_import_budgetIT.xlsx"
	TemplateSheet    = "Budget"
	// DefaultTemplateYear is the fiscal year printed in the amount header.
	DefaultTemplateYear = 2025
)

// Template column headers recognized by the budget importer.
const (
	ColSupplier    = "Prestataire"
	ColCategory    = "Catégorie prestation"
	ColSubCategory = "Sous catégorie prestation"
	ColPrestation  = "Prestation"
	ColRemark      = "Remarque"
	ColLieu        = "Lieu"
)

// AmountHeader is the estimated pre-tax amount column for a fiscal year.
func AmountHeader(year int) string {
	return fmt.Sprintf("mt HT estimé %d", year)
}

// TemplateHeaders lists the template columns in order.
func TemplateHeaders(year int) []string {
	return []string{ColSupplier, ColCategory, ColSubCategory, AmountHeader(year), ColPrestation, ColRemark, ColLieu}
}

var templateRows = [][]any{
	{"OVH", "DAF", "Hébergement", 12000, "Serveur Web Principal", "Renouvellement annuel", "Paris"},
	{"Microsoft", "Production", "Logiciels", 25000, "Licences Office 365", "Pour 50 utilisateurs", "Lyon"},
	{"Free Pro", "DAF", "Télécom", 5000, "Abonnement Fibre", "", "Marseille"},
}

// WriteTemplate writes the budget import workbook with its example rows.
func WriteTemplate(w io.Writer, year int) error {
	if year == 0 {
		year = DefaultTemplateYear
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TemplateSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headers := TemplateHeaders(year)
	headerRow := make([]any, len(headers))

	for i, h := range headers {
		headerRow[i] = h
	}

	if err := f.SetSheetRow(TemplateSheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range templateRows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(TemplateSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(TemplateSheet, "A1", last+"1", bold); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	if err := f.SetColWidth(TemplateSheet, "A", last, 24); err != nil {
		return fmt.Errorf("column width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	return nil
}

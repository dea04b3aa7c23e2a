package importer

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/budgetit/internal/budget"
)

var errNoDigits = errors.New("no digits")

var amountNoise = strings.NewReplacer(
	"€", "", "$", "", "EUR", "", "eur", "",
	" ", "", "\u00a0", "", "\u202f", "", "'", "",
)

// parseAmount reads amounts as spreadsheets and French users write them:
// "1200", "1 200,50 €", "1.234,56", "1,234.56", "1.2E+4".
func parseAmount(s string) (decimal.Decimal, error) {
	clean := amountNoise.Replace(strings.TrimSpace(s))
	if clean == "" {
		return decimal.Decimal{}, errNoDigits
	}

	comma := strings.LastIndex(clean, ",")
	dot := strings.LastIndex(clean, ".")

	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.Replace(clean, ",", ".", 1)
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case comma >= 0:
		if strings.Count(clean, ",") > 1 {
			clean = strings.ReplaceAll(clean, ",", "")
		} else {
			clean = strings.Replace(clean, ",", ".", 1)
		}
	case dot >= 0 && strings.Count(clean, ".") > 1:
		clean = strings.ReplaceAll(clean, ".", "")
	}

	return decimal.NewFromString(clean)
}

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.DateTime,
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"2006/01/02",
	"2/1/2006",
	"02/01/06",
}

// Excel serials outside this range are not dates (9999-12-31 is 2958465).
const maxExcelSerial = 2958465

// parseDate accepts ISO dates, day-first French dates and Excel serial numbers.
func parseDate(s string) (budget.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return budget.Date{}, false
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < 1 || serial > maxExcelSerial {
			return budget.Date{}, false
		}

		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return budget.Date{}, false
		}

		return budget.NewDate(t), true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return budget.NewDate(t), true
		}
	}

	return budget.Date{}, false
}

var yearPattern = regexp.MustCompile(`(?:19|20)\d{2}`)

// yearIn extracts a four-digit year from a header such as "mt HT estimé 2025".
func yearIn(header string) (int, bool) {
	m := yearPattern.FindAllString(header, -1)
	if len(m) == 0 {
		return 0, false
	}

	y, err := strconv.Atoi(m[len(m)-1])
	if err != nil {
		return 0, false
	}

	return y, true
}

// composeNotes merges the supplier and notes cells of an expense row.
func composeNotes(supplier, notes string) string {
	switch {
	case notes != "" && supplier != "":
		return "Fournisseur: " + supplier + ". " + notes
	case notes != "":
		return notes
	case supplier != "":
		return "Fournisseur: " + supplier
	default:
		return ""
	}
}

// budgetDescription builds the description of an imported budget.
func budgetDescription(supplier, remark string) string {
	var parts []string

	if supplier != "" {
		parts = append(parts, "Prestataire: "+supplier+".")
	}

	if remark != "" {
		parts = append(parts, "Remarque: "+remark)
	}

	return strings.Join(parts, " ")
}

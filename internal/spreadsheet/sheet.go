package spreadsheet

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnreadable marks input that is neither a workbook nor a delimited export.
var ErrUnreadable = errors.New("unreadable spreadsheet")

const emptyHeader = "__EMPTY"

// Row is one record of a sheet keyed by header name. Blank cells are absent.
type Row struct {
	// Line is the 1-based position of the record in the sheet, header included.
	Line  int
	Cells map[string]string
}

// Get returns the trimmed cell under column and whether it holds anything.
func (r Row) Get(column string) (string, bool) {
	if column == "" {
		return "", false
	}

	v, ok := r.Cells[column]
	if !ok || v == "" {
		return "", false
	}

	return v, true
}

// Sheet is the first sheet of a workbook: the header row becomes Columns and
// every following non-blank row becomes a Row.
type Sheet struct {
	Name    string
	Columns []string
	Rows    []Row
}

// FromRecords builds a sheet from raw records, the first being the header.
func FromRecords(name string, records [][]string) *Sheet {
	sheet := &Sheet{Name: name}
	if len(records) == 0 {
		return sheet
	}

	sheet.Columns = headers(records[0])

	for i, record := range records[1:] {
		cells := make(map[string]string, len(record))

		for j, raw := range record {
			if j >= len(sheet.Columns) {
				break
			}

			if v := strings.TrimSpace(raw); v != "" {
				cells[sheet.Columns[j]] = v
			}
		}

		if len(cells) == 0 {
			continue
		}

		sheet.Rows = append(sheet.Rows, Row{Line: i + 2, Cells: cells})
	}

	return sheet
}

// headers trims names, labels blank ones __EMPTY and suffixes repeats with _1, _2...
func headers(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))

	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = emptyHeader
		}

		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		} else {
			seen[name] = 0
		}

		out[i] = name
	}

	return out
}

// Values returns the distinct non-blank values of column in first-seen order.
func (s *Sheet) Values(column string) []string {
	seen := make(map[string]struct{})

	var out []string

	for _, row := range s.Rows {
		v, ok := row.Get(column)
		if !ok {
			continue
		}

		if _, dup := seen[v]; dup {
			continue
		}

		seen[v] = struct{}{}
		out = append(out, v)
	}

	return out
}

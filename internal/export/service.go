package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/budgetit/internal/budget"
	"github.com/MrJamesThe3rd/budgetit/internal/report"
)

// Service writes report documents out of a Store.
type Service struct {
	store *budget.Store
}

// NewService creates a new export Service.
func NewService(store *budget.Store) *Service {
	return &Service{store: store}
}

// Export writes the report of the current state into outputDir, named after
// the store's current day, and returns the file path.
func (s *Service) Export(outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(outputDir, s.FileName())

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if err := s.Write(f); err != nil {
		return "", err
	}

	return path, nil
}

// FileName is the name a report downloaded now is saved under.
func (s *Service) FileName() string {
	return report.ExportFileName(s.store.Now())
}

// Write encodes the report of the current state into w.
func (s *Service) Write(w io.Writer) error {
	return report.WriteExport(w, s.store.State())
}

// Digest renders the expenses as a plain text list, one line per expense,
// followed by the summary figures.
func (s *Service) Digest() string {
	st := s.store.State()

	budgets := make(map[budget.ID]string, len(st.Budgets))
	for _, b := range st.Budgets {
		budgets[b.ID] = b.Name
	}

	var sb strings.Builder

	for _, e := range st.Expenses {
		target := "Hors budget"
		if e.BudgetID != nil {
			target = budgets[*e.BudgetID]
			if target == "" {
				target = "Budget supprimé"
			}
		}

		fmt.Fprintf(&sb, "* %s | %s | %.2f € | %s\n", e.Date.Format(time.DateOnly), e.Description, e.Amount, target)
	}

	sum := report.Summarize(st)
	fmt.Fprintf(&sb, "\nBudget: %.2f € | Dépenses: %.2f € | Restant: %.2f € | Utilisé: %.1f%%\n",
		sum.TotalBudget, sum.TotalExpenses, sum.RemainingBudget, sum.PercentageUsed)

	return sb.String()
}

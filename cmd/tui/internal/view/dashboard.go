package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budgetit/internal/budget"
	"github.com/MrJamesThe3rd/budgetit/internal/report"
)

const (
	dashboardRecent = 5
	barWidth        = 30
)

// DashboardModel shows the totals, the unbudgeted share and spending per
// category. It reads the store snapshot on every render.
type DashboardModel struct {
	CommonModel
	store     *budget.Store
	threshold float64
}

func NewDashboardModel(store *budget.Store, threshold float64) DashboardModel {
	return DashboardModel{store: store, threshold: threshold}
}

func (m DashboardModel) Title() string     { return "Dashboard" }
func (m DashboardModel) ShortHelp() string { return "Esc: back" }

func (m DashboardModel) Init() tea.Cmd {
	return nil
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	return m, nil
}

func (m DashboardModel) View() string {
	st := m.store.State()
	d := report.NewDashboard(st, m.threshold, dashboardRecent)

	title := lipgloss.NewStyle().Bold(true).Render("Budget IT")

	totals := fmt.Sprintf(
		"Budget total: %s\nDépenses:     %s\nRestant:      %s\nUtilisé:      %.1f %%",
		FormatAmount(d.Summary.TotalBudget),
		FormatAmount(d.Summary.TotalExpenses),
		FormatAmount(d.Summary.RemainingBudget),
		d.Summary.PercentageUsed,
	)

	unbudgeted := fmt.Sprintf("Hors budget: %s (%.1f %%, %d dépenses)",
		FormatAmount(d.Unbudgeted.UnbudgetedTotal), d.Unbudgeted.Percentage, d.Unbudgeted.UnbudgetedCount)
	if d.Unbudgeted.High {
		unbudgeted = errorStyle.Render(unbudgeted + fmt.Sprintf(" > %.0f %%", d.Unbudgeted.Threshold))
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		totals,
		"",
		unbudgeted,
		"",
		lipgloss.NewStyle().Bold(true).Render("Dépenses par catégorie"),
		bars(d.ExpensesByCategory),
		"",
		lipgloss.NewStyle().Bold(true).Render("Dernières dépenses"),
		recent(d.Recent),
	))
}

// bars draws one horizontal bar per slice, scaled to the largest total.
func bars(slices []report.Slice) string {
	var peak float64
	for _, s := range slices {
		peak = max(peak, s.Total)
	}

	var sb strings.Builder

	for _, s := range slices {
		n := 0
		if peak > 0 {
			n = int(s.Total / peak * barWidth)
		}

		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render(strings.Repeat("█", n))
		fmt.Fprintf(&sb, "%-14s %s %s\n", s.Name, bar, FormatAmount(s.Total))
	}

	return strings.TrimRight(sb.String(), "\n")
}

func recent(expenses []budget.Expense) string {
	if len(expenses) == 0 {
		return faintStyle.Render("Aucune dépense")
	}

	lines := make([]string, 0, len(expenses))
	for _, e := range expenses {
		lines = append(lines, fmt.Sprintf("%s  %12s  %s", FormatDate(e.Date), FormatAmount(e.Amount), e.Description))
	}

	return strings.Join(lines, "\n")
}

package view

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budgetit/internal/budget"
)

const storeTimeout = 5 * time.Second

// FormatAmount formats a euro amount with two decimals.
func FormatAmount(amount float64) string {
	return fmt.Sprintf("%.2f €", amount)
}

func FormatDate(d budget.Date) string {
	if d.IsZero() {
		return "-"
	}

	return d.String()
}

// StoreCtx returns a context with a standard timeout for store writes.
func StoreCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

// swatch renders a block in an entity's hex color.
func swatch(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("■")
}

// names indexes category or service names by id.
func names[T budget.Category | budget.Service](items []T) map[budget.ID]string {
	out := make(map[budget.ID]string, len(items))

	for _, it := range items {
		switch v := any(it).(type) {
		case budget.Category:
			out[v.ID] = v.Name
		case budget.Service:
			out[v.ID] = v.Name
		}
	}

	return out
}

package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budgetit/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/budgetit/internal/app"
	"github.com/MrJamesThe3rd/budgetit/internal/config"
)

type model struct {
	app *app.App

	currentView View

	dashboardView view.DashboardModel
	importView    view.ImportModel
	budgetsView   view.BudgetsModel
	expensesView  view.ExpensesModel
	exportView    view.ExportModel
}

type View int

const (
	ViewMenu      View = 0
	ViewDashboard View = 1
	ViewImport    View = 2
	ViewBudgets   View = 3
	ViewExpenses  View = 4
	ViewExport    View = 5
)

func initialModel() model {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Log records would corrupt the alternate screen.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if path := os.Getenv("BUDGETIT_TUI_LOG"); path != "" {
		if f, err := tea.LogToFile(path, "budgetit"); err == nil {
			logger = slog.New(slog.NewTextHandler(f, nil))
		}
	}

	a, err := app.Open(context.Background(), cfg, logger)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}

	return model{
		app:           a,
		currentView:   ViewMenu,
		dashboardView: view.NewDashboardModel(a.Store, cfg.Budget.UnbudgetedWarnThreshold),
		importView:    view.NewImportModel(a.Importer, a.Matching),
		budgetsView:   view.NewBudgetsModel(a.Store),
		expensesView:  view.NewExpensesModel(a.Store),
		exportView:    view.NewExportModel(a.Export),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewDashboard
				return m, m.dashboardView.Init()
			case "2":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.app.Importer, m.app.Matching)

				return m, m.importView.Init()
			case "3":
				m.currentView = ViewBudgets
				m.budgetsView = view.NewBudgetsModel(m.app.Store)

				return m, m.budgetsView.Init()
			case "4":
				m.currentView = ViewExpenses
				m.expensesView = view.NewExpensesModel(m.app.Store)

				return m, m.expensesView.Init()
			case "5":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.app.Export)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewBudgets:
		var newModel tea.Model
		newModel, cmd = m.budgetsView.Update(msg)
		m.budgetsView = newModel.(view.BudgetsModel)
	case ViewExpenses:
		var newModel tea.Model
		newModel, cmd = m.expensesView.Update(msg)
		m.expensesView = newModel.(view.ExpensesModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Budget IT\n\n" +
				"1. Dashboard\n" +
				"2. Import Spreadsheet\n" +
				"3. Budgets\n" +
				"4. Expenses\n" +
				"5. Export Report\n\n" +
				"q. Quit",
		)
	case ViewDashboard:
		return m.dashboardView.View()
	case ViewImport:
		return m.importView.View()
	case ViewBudgets:
		return m.budgetsView.View()
	case ViewExpenses:
		return m.expensesView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	m := initialModel()
	defer m.app.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}

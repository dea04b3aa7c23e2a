package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budgetit/internal/budget"
	"github.com/MrJamesThe3rd/budgetit/internal/report"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateEdit
)

// BudgetsModel lists budgets with their consumption and edits them in a form.
type BudgetsModel struct {
	CommonModel
	store *budget.Store

	state    listState
	table    table.Model
	progress []report.Progress
	form     *huh.Form
	search   *string
	status   string

	searching bool

	// editing is the id of the budget in the form, empty when adding.
	editing budget.ID
	fields  *budgetFields
}

// budgetFields are the form bindings. They live behind a pointer so the
// bindings survive the model being copied on every update.
type budgetFields struct {
	name        string
	amount      string
	categoryID  budget.ID
	serviceID   budget.ID
	description string
	startDate   string
	endDate     string
	lieu        string
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func NewBudgetsModel(store *budget.Store) BudgetsModel {
	m := BudgetsModel{
		store:  store,
		search: new(string),
		fields: &budgetFields{},
		table: newTable([]table.Column{
			{Title: "Name", Width: 30},
			{Title: "Category", Width: 12},
			{Title: "Service", Width: 20},
			{Title: "Amount", Width: 14},
			{Title: "Spent", Width: 14},
			{Title: "Used", Width: 7},
		}),
	}
	m.refresh()

	return m
}

func (m BudgetsModel) Title() string { return "Budgets" }

func (m BudgetsModel) ShortHelp() string {
	if m.state == listStateEdit {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | a: add | e: edit | x: delete | /: search"
}

func (m BudgetsModel) Init() tea.Cmd {
	return nil
}

func (m BudgetsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case saveMsg:
		m.status = ""
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()
		m.refresh()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateEdit:
		return m.updateEdit(msg)
	}

	return m, nil
}

func (m BudgetsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			if *m.search != "" {
				*m.search = ""
				m.refresh()

				return m, nil
			}

			return m, Back
		case "a":
			return m.enterEditMode(budget.Budget{})
		case "e":
			if p, ok := m.selected(); ok {
				return m.enterEditMode(p.Budget)
			}

			return m, nil
		case "x":
			if p, ok := m.selected(); ok {
				return m, m.deleteCmd(p.Budget.ID)
			}

			return m, nil
		case "/":
			return m.enterSearchMode()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m BudgetsModel) selected() (report.Progress, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.progress) {
		return report.Progress{}, false
	}

	return m.progress[idx], true
}

func (m BudgetsModel) enterSearchMode() (tea.Model, tea.Cmd) {
	m.searching = true
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("search").
				Title("Search").
				Description("Matches name, description or lieu").
				Value(m.search),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m BudgetsModel) enterEditMode(b budget.Budget) (tea.Model, tea.Cmd) {
	m.editing = b.ID
	m.fields = &budgetFields{
		name:        b.Name,
		categoryID:  b.CategoryID,
		serviceID:   budget.DerefID(b.ServiceID),
		description: b.Description,
		lieu:        b.Lieu,
	}

	if b.Amount > 0 {
		m.fields.amount = strconv.FormatFloat(b.Amount, 'f', -1, 64)
	}

	if !b.StartDate.IsZero() {
		m.fields.startDate = b.StartDate.String()
	}

	if !b.EndDate.IsZero() {
		m.fields.endDate = b.EndDate.String()
	}

	st := m.store.State()
	if m.fields.categoryID == "" && len(st.Categories) > 0 {
		m.fields.categoryID = st.Categories[0].ID
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Name").
				Value(&m.fields.name).
				Validate(required("name")),

			huh.NewInput().
				Key("amount").
				Title("Amount (€)").
				Value(&m.fields.amount).
				Validate(validAmount),

			huh.NewSelect[budget.ID]().
				Key("category").
				Title("Category").
				Options(categoryOptions(st.Categories)...).
				Value(&m.fields.categoryID),

			huh.NewSelect[budget.ID]().
				Key("service").
				Title("Service").
				Options(serviceOptions(st.Services)...).
				Value(&m.fields.serviceID),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&m.fields.description),

			huh.NewInput().
				Key("start").
				Title("Start date").
				Placeholder("2025-01-01").
				Value(&m.fields.startDate).
				Validate(optionalDate),

			huh.NewInput().
				Key("end").
				Title("End date").
				Placeholder("2025-12-31").
				Value(&m.fields.endDate).
				Validate(optionalDate),

			huh.NewInput().
				Key("lieu").
				Title("Lieu").
				Value(&m.fields.lieu),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m BudgetsModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.searching = false
		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.searching {
		m.searching = false
		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()
		m.refresh()

		return m, nil
	}

	return m, m.saveCmd()
}

func (m BudgetsModel) View() string {
	header := "Budgets"
	if *m.search != "" {
		header = fmt.Sprintf("Budgets matching %s (Esc to clear)", activeStyle(*m.search))
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == listStateEdit && m.form != nil {
		title := "New Budget"
		switch {
		case m.searching:
			title = "Search Budgets"
		case m.editing != "":
			title = "Edit Budget"
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("%s\n\n%s", title, m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *BudgetsModel) refresh() {
	st := m.store.State()
	categories := names(st.Categories)
	services := names(st.Services)
	filter := budget.BudgetFilter{Search: *m.search}

	m.progress = nil

	rows := make([]table.Row, 0, len(st.Budgets))
	for _, p := range report.BudgetProgress(st) {
		if !filter.Match(p.Budget) {
			continue
		}

		m.progress = append(m.progress, p)
		rows = append(rows, table.Row{
			p.Budget.Name,
			categories[p.Budget.CategoryID],
			services[budget.DerefID(p.Budget.ServiceID)],
			FormatAmount(p.Budget.Amount),
			FormatAmount(p.Spent),
			fmt.Sprintf("%.0f %%", p.Percentage),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type saveMsg struct {
	err error
}

func (m BudgetsModel) saveCmd() tea.Cmd {
	f := *m.fields
	id := m.editing

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		amount, _ := strconv.ParseFloat(strings.ReplaceAll(f.amount, ",", "."), 64)
		start, _ := parseOptionalDate(f.startDate)
		end, _ := parseOptionalDate(f.endDate)

		b := budget.Budget{
			ID:          id,
			Name:        strings.TrimSpace(f.name),
			Amount:      amount,
			CategoryID:  f.categoryID,
			ServiceID:   budget.IDRef(f.serviceID),
			Description: f.description,
			StartDate:   start,
			EndDate:     end,
			Lieu:        f.lieu,
		}

		var err error
		if id == "" {
			_, err = m.store.AddBudget(ctx, b)
		} else {
			_, err = m.store.UpdateBudget(ctx, b)
		}

		return saveMsg{err: err}
	}
}

func (m BudgetsModel) deleteCmd(id budget.ID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		return saveMsg{err: m.store.DeleteBudget(ctx, id)}
	}
}

// Form helpers shared with the expenses view.

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}

		return nil
	}
}

func validAmount(s string) error {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil || v <= 0 {
		return fmt.Errorf("amount must be a positive number")
	}

	return nil
}

func parseOptionalDate(s string) (budget.Date, error) {
	if strings.TrimSpace(s) == "" {
		return budget.Date{}, nil
	}

	return budget.ParseDate(s)
}

func optionalDate(s string) error {
	_, err := parseOptionalDate(s)
	return err
}

func categoryOptions(categories []budget.Category) []huh.Option[budget.ID] {
	opts := make([]huh.Option[budget.ID], 0, len(categories))
	for _, c := range categories {
		opts = append(opts, huh.NewOption(swatch(c.Color)+" "+c.Name, c.ID))
	}

	return opts
}

// serviceOptions starts with a "none" entry; services are optional.
func serviceOptions(services []budget.Service) []huh.Option[budget.ID] {
	opts := []huh.Option[budget.ID]{huh.NewOption("(none)", budget.ID(""))}
	for _, s := range services {
		opts = append(opts, huh.NewOption(swatch(s.Color)+" "+s.Name, s.ID))
	}

	return opts
}

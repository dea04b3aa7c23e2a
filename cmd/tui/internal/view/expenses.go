package view

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budgetit/internal/budget"
)

type expenseState int

const (
	expenseStateList expenseState = iota
	expenseStateEditing
)

var partitions = []budget.Partition{budget.PartitionAll, budget.PartitionBudgeted, budget.PartitionUnbudgeted}

// expenseItem wraps an expense to implement list.Item.
type expenseItem struct {
	expense    budget.Expense
	budgetName string
	category   string
}

func (i expenseItem) Title() string {
	return fmt.Sprintf("%s  %12s  %s", FormatDate(i.expense.Date), FormatAmount(i.expense.Amount), i.expense.Description)
}

func (i expenseItem) Description() string {
	target := "Hors budget"
	if !i.expense.Unbudgeted() {
		target = i.budgetName
		if target == "" {
			target = "Budget supprimé"
		}
	}

	return fmt.Sprintf("%s | %s", i.category, target)
}

func (i expenseItem) FilterValue() string {
	return i.expense.Description
}

type expenseDelegate struct{}

func (d expenseDelegate) Height() int                             { return 2 }
func (d expenseDelegate) Spacing() int                            { return 0 }
func (d expenseDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d expenseDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(expenseItem)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	desc := faintStyle.Render(item.Description())
	if item.expense.Unbudgeted() {
		desc = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render(item.Description())
	}

	fmt.Fprintf(w, "%s%s\n    %s", cursor, item.Title(), desc)
}

// ExpensesModel lists expenses split by budget linkage, with a date filter
// and an add/edit form.
type ExpensesModel struct {
	CommonModel
	store *budget.Store
	now   func() time.Time

	state     expenseState
	list      list.Model
	form      *huh.Form
	partition int
	timeframe Timeframe
	status    string

	editing budget.ID
	fields  *expenseFields
}

type expenseFields struct {
	description string
	amount      string
	categoryID  budget.ID
	serviceID   budget.ID
	budgetID    budget.ID
	date        string
	notes       string
}

func NewExpensesModel(store *budget.Store) ExpensesModel {
	l := list.New([]list.Item{}, expenseDelegate{}, 80, 20)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	m := ExpensesModel{
		store:  store,
		now:    store.Now,
		list:   l,
		fields: &expenseFields{},
	}
	m.refresh()

	return m
}

func (m ExpensesModel) Title() string { return "Expenses" }

func (m ExpensesModel) ShortHelp() string {
	if m.state == expenseStateEditing {
		return "Esc: cancel | Enter/Tab: navigate form"
	}

	return "Esc: back | Tab: partition | d: dates | a: add | e: edit | x: delete | /: filter"
}

func (m ExpensesModel) Init() tea.Cmd {
	return nil
}

func (m ExpensesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case saveMsg:
		m.status = "Saved."
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = expenseStateList
		m.form = nil
		m.refresh()

		return m, nil

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	}

	if m.state == expenseStateEditing {
		return m.updateEditing(msg)
	}

	return m.updateList(msg)
}

func (m ExpensesModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch keyMsg.String() {
		case "esc":
			if m.list.FilterState() == list.FilterApplied {
				m.list.ResetFilter()
				return m, nil
			}

			return m, Back
		case "tab":
			m.partition = (m.partition + 1) % len(partitions)
			m.refresh()

			return m, nil
		case "d":
			m.timeframe = m.timeframe.Next()
			m.refresh()

			return m, nil
		case "a":
			return m.enterEditMode(budget.Expense{Date: budget.NewDate(m.now())})
		case "e":
			if item, ok := m.list.SelectedItem().(expenseItem); ok {
				return m.enterEditMode(item.expense)
			}

			return m, nil
		case "x":
			if item, ok := m.list.SelectedItem().(expenseItem); ok {
				return m, m.deleteCmd(item.expense.ID)
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m ExpensesModel) enterEditMode(e budget.Expense) (tea.Model, tea.Cmd) {
	st := m.store.State()

	m.editing = e.ID
	m.fields = &expenseFields{
		description: e.Description,
		categoryID:  e.CategoryID,
		serviceID:   budget.DerefID(e.ServiceID),
		budgetID:    budget.DerefID(e.BudgetID),
		notes:       e.Notes,
	}

	if !e.Date.IsZero() {
		m.fields.date = e.Date.String()
	}

	if e.Amount > 0 {
		m.fields.amount = strconv.FormatFloat(e.Amount, 'f', -1, 64)
	}

	if m.fields.categoryID == "" && len(st.Categories) > 0 {
		m.fields.categoryID = st.Categories[0].ID
	}

	budgetOpts := []huh.Option[budget.ID]{huh.NewOption("Hors budget", budget.ID(""))}
	for _, b := range st.Budgets {
		budgetOpts = append(budgetOpts, huh.NewOption(fmt.Sprintf("%s (%s)", b.Name, FormatAmount(b.Amount)), b.ID))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&m.fields.description).
				Validate(required("description")),

			huh.NewInput().
				Key("amount").
				Title("Amount (€)").
				Value(&m.fields.amount).
				Validate(validAmount),

			huh.NewInput().
				Key("date").
				Title("Date").
				Placeholder("2025-01-31").
				Value(&m.fields.date).
				Validate(required("date")),
		),
		huh.NewGroup(
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

			huh.NewSelect[budget.ID]().
				Key("budget").
				Title("Budget").
				Options(budgetOpts...).
				Value(&m.fields.budgetID),

			huh.NewText().
				Key("notes").
				Title("Notes").
				Value(&m.fields.notes),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = expenseStateEditing

	return m, m.form.Init()
}

func (m ExpensesModel) updateEditing(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = expenseStateList
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m ExpensesModel) View() string {
	if m.state == expenseStateEditing && m.form != nil {
		title := "New Expense"
		if m.editing != "" {
			title = "Edit Expense"
		}

		return lipgloss.NewStyle().Padding(1).Render(
			lipgloss.NewStyle().Bold(true).Render(title) + "\n\n" + m.form.View(),
		)
	}

	tabs := make([]string, len(partitions))
	for i, p := range partitions {
		label := string(p)
		if i == m.partition {
			label = activeStyle("[" + label + "]")
		}

		tabs[i] = label
	}

	header := fmt.Sprintf("%s   Dates: [d] %s", strings.Join(tabs, "  "), activeStyle(m.timeframe.String()))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		m.list.View(),
	)

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *ExpensesModel) refresh() {
	st := m.store.State()
	from, to := m.timeframe.DateRange(m.now())

	expenses := m.store.ListExpenses(budget.ExpenseFilter{
		Partition: partitions[m.partition],
		DateFrom:  from,
		DateTo:    to,
	})

	budgets := make(map[budget.ID]string, len(st.Budgets))
	for _, b := range st.Budgets {
		budgets[b.ID] = b.Name
	}

	categories := names(st.Categories)

	items := make([]list.Item, 0, len(expenses))
	for _, e := range expenses {
		items = append(items, expenseItem{
			expense:    e,
			budgetName: budgets[budget.DerefID(e.BudgetID)],
			category:   categories[e.CategoryID],
		})
	}

	m.list.Title = fmt.Sprintf("Expenses (%d)", len(items))
	m.list.SetItems(items)
}

func (m ExpensesModel) saveCmd() tea.Cmd {
	f := *m.fields
	id := m.editing

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		amount, _ := strconv.ParseFloat(strings.ReplaceAll(f.amount, ",", "."), 64)

		date, err := budget.ParseDate(f.date)
		if err != nil {
			return saveMsg{err: err}
		}

		e := budget.Expense{
			ID:          id,
			Description: strings.TrimSpace(f.description),
			Amount:      amount,
			CategoryID:  f.categoryID,
			ServiceID:   budget.IDRef(f.serviceID),
			BudgetID:    budget.IDRef(f.budgetID),
			Date:        date,
			Notes:       f.notes,
		}

		if id == "" {
			_, err = m.store.AddExpense(ctx, e)
		} else {
			_, err = m.store.UpdateExpense(ctx, e)
		}

		return saveMsg{err: err}
	}
}

func (m ExpensesModel) deleteCmd(id budget.ID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		return saveMsg{err: m.store.DeleteExpense(ctx, id)}
	}
}

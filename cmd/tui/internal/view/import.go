package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budgetit/internal/importer"
	"github.com/MrJamesThe3rd/budgetit/internal/matching"
	"github.com/MrJamesThe3rd/budgetit/internal/spreadsheet"
)

const importTimeout = 2 * time.Minute

type importKind string

const (
	importExpenses importKind = "expenses"
	importBudgets  importKind = "budgets"
)

type importState int

const (
	importStateKindSelect importState = iota
	importStateFilePick
	importStateImporting
	importStateResult
)

type ImportModel struct {
	CommonModel
	importService *importer.Service
	learned       *matching.Service

	state        importState
	filePicker   filepicker.Model
	kindOptions  []importKind
	kindCursor   int
	selectedKind importKind
	replace      bool

	issues list.Model
	status string
	err    error
}

func NewImportModel(impSvc *importer.Service, learned *matching.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".xlsx", ".csv"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		importService: impSvc,
		learned:       learned,
		filePicker:    fp,
		kindOptions:   []importKind{importExpenses, importBudgets},
	}
}

func (m ImportModel) Title() string { return "Import" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateKindSelect {
		return "Esc: back | Enter: select | r: toggle replace"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return nil
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateKindSelect {
			return m.updateKindSelect(msg)
		}

		if m.state == importStateResult && len(m.issues.Items()) > 0 {
			var cmd tea.Cmd
			m.issues, cmd = m.issues.Update(msg)

			return m, cmd
		}

	case importResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		res := msg.result
		m.status = fmt.Sprintf("Imported %d of %d %s: %d duplicates skipped, %d rejected, %d categories and %d services created.",
			res.Imported, res.Total, m.selectedKind, res.SkippedDuplicate, res.RejectedMissingData,
			res.CreatedCategories, res.CreatedServices)

		items := make([]list.Item, len(res.Issues))
		for i, issue := range res.Issues {
			items[i] = issueItem{issue}
		}

		m.issues = list.New(items, issueDelegate{}, 80, 15)
		m.issues.Title = "Skipped rows"
		m.issues.SetShowStatusBar(false)
		m.issues.SetFilteringEnabled(false)
		m.issues.SetShowHelp(false)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing %s from %s...", m.selectedKind, path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick:
		m.state = importStateKindSelect
		return m, nil
	case importStateResult:
		m.state = importStateKindSelect
		m.err = nil
		m.status = ""

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateKindSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.kindCursor > 0 {
			m.kindCursor--
		}
	case "down", "j":
		if m.kindCursor < len(m.kindOptions)-1 {
			m.kindCursor++
		}
	case "r":
		m.replace = !m.replace
	case "enter":
		m.selectedKind = m.kindOptions[m.kindCursor]
		m.state = importStateFilePick

		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateKindSelect:
		return m.viewKindSelect()
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select the %s file (.xlsx or .csv):\n\n%s", m.selectedKind, m.filePicker.View()),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewKindSelect() string {
	s := "Import:\n\n"

	for i, kind := range m.kindOptions {
		cursor := " "
		if i == m.kindCursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, kind)
	}

	mode := "append"
	if m.replace {
		mode = activeStyle("replace existing")
	}

	s += fmt.Sprintf("\nMode: %s", mode)

	return lipgloss.NewStyle().Padding(2).Render(s)
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle.Render(m.status) + "\n\n(Esc to go back)")
	}

	content := successStyle.Render(m.status)
	if len(m.issues.Items()) > 0 {
		content += "\n\n" + m.issues.View()
	}

	return style.Render(content + "\n\n(Esc to go back)")
}

// Messages

type importResultMsg struct {
	result *importer.Result
	err    error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	kind := m.selectedKind
	opts := importer.Options{Replace: m.replace, Overrides: m.learned.Overrides()}

	return func() tea.Msg {
		sheet, err := spreadsheet.ReadFile(path)
		if err != nil {
			return importResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		var res *importer.Result
		if kind == importBudgets {
			res, err = m.importService.ImportBudgets(ctx, sheet, opts)
		} else {
			res, err = m.importService.ImportExpenses(ctx, sheet, opts)
		}

		return importResultMsg{result: res, err: err}
	}
}

// Skipped row list

type issueItem struct {
	issue importer.RowIssue
}

func (i issueItem) Title() string       { return "" }
func (i issueItem) Description() string { return "" }
func (i issueItem) FilterValue() string { return "" }

type issueDelegate struct{}

func (d issueDelegate) Height() int                             { return 1 }
func (d issueDelegate) Spacing() int                            { return 0 }
func (d issueDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d issueDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(issueItem)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	label := "rejected"
	if item.issue.Duplicate {
		label = "duplicate"
	}

	fmt.Fprintf(w, "%sline %-5d %-9s %s", cursor, item.issue.Line, faintStyle.Render(label), item.issue.Reason)
}

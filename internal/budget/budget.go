package budget

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultColor is given to categories and services created without an explicit color.
const DefaultColor = "#6B7280"

// ID identifies any entity held by the Store.
type ID string

// UnmarshalJSON accepts both string and numeric identifiers so that older
// snapshots written with integer ids keep loading.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*id = ID(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}

	*id = ID(n.String())

	return nil
}

// Date is a calendar day without a time component. It serializes as "2006-01-02".
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "2006-01-02" or RFC 3339 value.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)

	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return NewDate(t), nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}

	return NewDate(t), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}

	return d.Format(time.DateOnly)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode date: %w", err)
	}

	if s == "" {
		*d = Date{}
		return nil
	}

	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}

// Category classifies a kind of spending (Hardware, Software, ...).
type Category struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Service is an organizational unit that owns budgets and spends money.
type Service struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Budget is a planned spending allocation.
type Budget struct {
	ID          ID        `json:"id"`
	Name        string    `json:"name"`
	Amount      float64   `json:"amount"`
	CategoryID  ID        `json:"categoryId"`
	ServiceID   *ID       `json:"serviceId"`
	Description string    `json:"description"`
	StartDate   Date      `json:"startDate"`
	EndDate     Date      `json:"endDate"`
	Lieu        string    `json:"lieu"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Expense is an actual recorded cost. A nil BudgetID marks it as unbudgeted.
type Expense struct {
	ID          ID        `json:"id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	CategoryID  ID        `json:"categoryId"`
	ServiceID   *ID       `json:"serviceId"`
	BudgetID    *ID       `json:"budgetId"`
	Date        Date      `json:"date"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Unbudgeted reports whether the expense is not linked to any budget.
func (e Expense) Unbudgeted() bool {
	return e.BudgetID == nil || *e.BudgetID == ""
}

// State is an immutable snapshot of the four collections owned by the Store.
type State struct {
	Budgets    []Budget
	Expenses   []Expense
	Categories []Category
	Services   []Service
}

func (s State) clone() State {
	return State{
		Budgets:    append([]Budget(nil), s.Budgets...),
		Expenses:   append([]Expense(nil), s.Expenses...),
		Categories: append([]Category(nil), s.Categories...),
		Services:   append([]Service(nil), s.Services...),
	}
}

// DefaultCategories returns the reference categories a fresh store starts with.
func DefaultCategories() []Category {
	return []Category{
		{ID: "1", Name: "Hardware", Color: "#3B82F6"},
		{ID: "2", Name: "Software", Color: "#10B981"},
		{ID: "3", Name: "Services", Color: "#F59E0B"},
		{ID: "4", Name: "Formation", Color: "#8B5CF6"},
		{ID: "5", Name: "Maintenance", Color: "#EF4444"},
		{ID: "6", Name: "Autres", Color: DefaultColor},
	}
}

// DefaultServices returns the reference services a fresh store starts with.
func DefaultServices() []Service {
	return []Service{
		{ID: "1", Name: "Direction Générale", Color: "#1F2937"},
		{ID: "2", Name: "Ressources Humaines", Color: "#059669"},
		{ID: "3", Name: "Finance", Color: "#DC2626"},
		{ID: "4", Name: "Marketing", Color: "#7C3AED"},
		{ID: "5", Name: "Ventes", Color: "#EA580C"},
		{ID: "6", Name: "Support Client", Color: "#0891B2"},
		{ID: "7", Name: "Développement", Color: "#059669"},
		{ID: "8", Name: "Infrastructure", Color: DefaultColor},
	}
}

// InitialState is the state of a store that has never been persisted.
func InitialState() State {
	return State{
		Budgets:    []Budget{},
		Expenses:   []Expense{},
		Categories: DefaultCategories(),
		Services:   DefaultServices(),
	}
}

// IDRef returns a pointer to id, or nil when id is empty.
func IDRef(id ID) *ID {
	if id == "" {
		return nil
	}

	return &id
}

// DerefID returns the referenced id, or "" for nil.
func DerefID(id *ID) ID {
	if id == nil {
		return ""
	}

	return *id
}

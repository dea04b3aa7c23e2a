package budget

import (
	"fmt"
	"strings"
)

func (s *Store) Budgets() []Budget {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]Budget(nil), s.state.Budgets...)
}

func (s *Store) Expenses() []Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]Expense(nil), s.state.Expenses...)
}

func (s *Store) Categories() []Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]Category(nil), s.state.Categories...)
}

func (s *Store) Services() []Service {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]Service(nil), s.state.Services...)
}

func (s *Store) GetBudget(id ID) (Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, err := findByID(s.state.Budgets, id)
	if err != nil {
		return Budget{}, fmt.Errorf("budget %s: %w", id, err)
	}

	return b, nil
}

func (s *Store) GetExpense(id ID) (Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, err := findByID(s.state.Expenses, id)
	if err != nil {
		return Expense{}, fmt.Errorf("expense %s: %w", id, err)
	}

	return e, nil
}

func (s *Store) GetCategory(id ID) (Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := findByID(s.state.Categories, id)
	if err != nil {
		return Category{}, fmt.Errorf("category %s: %w", id, err)
	}

	return c, nil
}

func (s *Store) GetService(id ID) (Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	svc, err := findByID(s.state.Services, id)
	if err != nil {
		return Service{}, fmt.Errorf("service %s: %w", id, err)
	}

	return svc, nil
}

// ExpensesForBudget returns the expenses linked to budgetID.
func (s *Store) ExpensesForBudget(budgetID ID) []Expense {
	return s.ListExpenses(ExpenseFilter{BudgetID: budgetID})
}

// BudgetsForService returns the budgets owned by serviceID.
func (s *Store) BudgetsForService(serviceID ID) []Budget {
	return s.ListBudgets(BudgetFilter{ServiceID: serviceID})
}

// ExpensesForService returns the expenses charged to serviceID.
func (s *Store) ExpensesForService(serviceID ID) []Expense {
	return s.ListExpenses(ExpenseFilter{ServiceID: serviceID})
}

// BudgetFilter narrows ListBudgets. Zero values match everything.
type BudgetFilter struct {
	// Search matches name, description or lieu, case-insensitively.
	Search     string
	CategoryID ID
	ServiceID  ID
	MinAmount  *float64
	MaxAmount  *float64
	// DateFrom keeps budgets starting on or after it.
	DateFrom *Date
	// DateTo keeps budgets ending on or before it.
	DateTo *Date
}

func (f BudgetFilter) Match(b Budget) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(b.Name), q) &&
			!strings.Contains(strings.ToLower(b.Description), q) &&
			!strings.Contains(strings.ToLower(b.Lieu), q) {
			return false
		}
	}

	if f.CategoryID != "" && b.CategoryID != f.CategoryID {
		return false
	}

	if f.ServiceID != "" && DerefID(b.ServiceID) != f.ServiceID {
		return false
	}

	if f.MinAmount != nil && b.Amount < *f.MinAmount {
		return false
	}

	if f.MaxAmount != nil && b.Amount > *f.MaxAmount {
		return false
	}

	if f.DateFrom != nil && b.StartDate.Before(f.DateFrom.Time) {
		return false
	}

	if f.DateTo != nil && b.EndDate.After(f.DateTo.Time) {
		return false
	}

	return true
}

func (s *Store) ListBudgets(f BudgetFilter) []Budget {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Budget

	for _, b := range s.state.Budgets {
		if f.Match(b) {
			out = append(out, b)
		}
	}

	return out
}

// Partition selects expenses by whether they are linked to a budget.
type Partition string

const (
	PartitionAll        Partition = "all"
	PartitionBudgeted   Partition = "budgeted"
	PartitionUnbudgeted Partition = "unbudgeted"
)

// ExpenseFilter narrows ListExpenses. Zero values match everything.
type ExpenseFilter struct {
	Partition  Partition
	CategoryID ID
	BudgetID   ID
	ServiceID  ID
	DateFrom   *Date
	DateTo     *Date
}

func (f ExpenseFilter) Match(e Expense) bool {
	switch f.Partition {
	case PartitionBudgeted:
		if e.Unbudgeted() {
			return false
		}
	case PartitionUnbudgeted:
		if !e.Unbudgeted() {
			return false
		}
	}

	if f.CategoryID != "" && e.CategoryID != f.CategoryID {
		return false
	}

	if f.BudgetID != "" && DerefID(e.BudgetID) != f.BudgetID {
		return false
	}

	if f.ServiceID != "" && DerefID(e.ServiceID) != f.ServiceID {
		return false
	}

	if f.DateFrom != nil && e.Date.Before(f.DateFrom.Time) {
		return false
	}

	if f.DateTo != nil && e.Date.After(f.DateTo.Time) {
		return false
	}

	return true
}

func (s *Store) ListExpenses(f ExpenseFilter) []Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Expense

	for _, e := range s.state.Expenses {
		if f.Match(e) {
			out = append(out, e)
		}
	}

	return out
}

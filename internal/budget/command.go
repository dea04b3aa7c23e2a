package budget

import (
	"fmt"
	"slices"
	"time"
)

// Command is a closed set of state transitions understood by the Store.
// Only the types declared in this file implement it.
type Command interface {
	isCommand()
}

type (
	AddBudget    struct{ Budget Budget }
	UpdateBudget struct{ Budget Budget }
	DeleteBudget struct{ ID ID }
	// SetBudgets replaces the whole budget collection.
	SetBudgets struct{ Budgets []Budget }

	AddExpense    struct{ Expense Expense }
	UpdateExpense struct{ Expense Expense }
	DeleteExpense struct{ ID ID }
	// SetExpenses replaces the whole expense collection.
	SetExpenses struct{ Expenses []Expense }

	AddCategory    struct{ Category Category }
	UpdateCategory struct{ Category Category }
	DeleteCategory struct{ ID ID }

	AddService    struct{ Service Service }
	UpdateService struct{ Service Service }
	DeleteService struct{ ID ID }

	// ResetAll drops budgets and expenses and keeps categories and services.
	ResetAll struct{}
)

func (AddBudget) isCommand()      {}
func (UpdateBudget) isCommand()   {}
func (DeleteBudget) isCommand()   {}
func (SetBudgets) isCommand()     {}
func (AddExpense) isCommand()     {}
func (UpdateExpense) isCommand()  {}
func (DeleteExpense) isCommand()  {}
func (SetExpenses) isCommand()    {}
func (AddCategory) isCommand()    {}
func (UpdateCategory) isCommand() {}
func (DeleteCategory) isCommand() {}
func (AddService) isCommand()     {}
func (UpdateService) isCommand()  {}
func (DeleteService) isCommand()  {}
func (ResetAll) isCommand()       {}

// reduction accumulates the effect of a batch of commands on a private copy
// of the state.
type reduction struct {
	state   State
	now     time.Time
	dirty   map[Key]bool
	removed map[Key]bool
	events  []Event
}

func newReduction(s State, now time.Time) *reduction {
	return &reduction{
		state:   s.clone(),
		now:     now,
		dirty:   make(map[Key]bool),
		removed: make(map[Key]bool),
	}
}

func (r *reduction) touch(k Key) {
	r.dirty[k] = true
	delete(r.removed, k)
}

func (r *reduction) drop(k Key) {
	r.removed[k] = true
	delete(r.dirty, k)
}

// missing records an update aimed at an unknown id. The command is dropped
// and the rest of the batch still applies.
func (r *reduction) missing(entity string, id ID) error {
	r.events = append(r.events, Event{
		Kind:    KindReferenceNotFound,
		Entity:  entity,
		ID:      id,
		Message: "update ignored: " + entity + " not found",
	})

	return nil
}

func (r *reduction) hasCategory(id ID) bool {
	return slices.ContainsFunc(r.state.Categories, func(c Category) bool { return c.ID == id })
}

func requireID(entity string, id ID) error {
	if id == "" {
		return invalid(entity, "id", "is required")
	}

	return nil
}

func (r *reduction) apply(cmd Command) error {
	switch c := cmd.(type) {
	case AddBudget:
		return r.addBudget(c.Budget)
	case UpdateBudget:
		return r.updateBudget(c.Budget)
	case DeleteBudget:
		r.state.Budgets = slices.DeleteFunc(r.state.Budgets, func(b Budget) bool { return b.ID == c.ID })
		r.touch(KeyBudgets)
	case SetBudgets:
		for _, b := range c.Budgets {
			if err := ValidateBudget(b); err != nil {
				return err
			}
		}

		r.state.Budgets = DeduplicateByID(c.Budgets)
		r.touch(KeyBudgets)
	case AddExpense:
		return r.addExpense(c.Expense)
	case UpdateExpense:
		return r.updateExpense(c.Expense)
	case DeleteExpense:
		r.state.Expenses = slices.DeleteFunc(r.state.Expenses, func(e Expense) bool { return e.ID == c.ID })
		r.touch(KeyExpenses)
	case SetExpenses:
		for _, e := range c.Expenses {
			if err := ValidateExpense(e); err != nil {
				return err
			}
		}

		r.state.Expenses = DeduplicateByID(c.Expenses)
		r.touch(KeyExpenses)
	case AddCategory:
		return r.addCategory(c.Category)
	case UpdateCategory:
		return r.updateCategory(c.Category)
	case DeleteCategory:
		// Budgets and expenses referencing the category are left orphaned.
		r.state.Categories = slices.DeleteFunc(r.state.Categories, func(x Category) bool { return x.ID == c.ID })
		r.touch(KeyCategories)
	case AddService:
		return r.addService(c.Service)
	case UpdateService:
		return r.updateService(c.Service)
	case DeleteService:
		r.state.Services = slices.DeleteFunc(r.state.Services, func(x Service) bool { return x.ID == c.ID })
		r.touch(KeyServices)
	case ResetAll:
		r.state.Budgets = []Budget{}
		r.state.Expenses = []Expense{}
		r.drop(KeyBudgets)
		r.drop(KeyExpenses)
	default:
		return fmt.Errorf("unknown command %T", cmd)
	}

	return nil
}

func (r *reduction) addBudget(b Budget) error {
	if err := requireID("budget", b.ID); err != nil {
		return err
	}

	if err := ValidateBudget(b); err != nil {
		return err
	}

	if !r.hasCategory(b.CategoryID) {
		return invalid("budget", "categoryId", "references an unknown category")
	}

	if slices.ContainsFunc(r.state.Budgets, func(x Budget) bool { return x.ID == b.ID }) {
		return invalid("budget", "id", "already exists")
	}

	if b.CreatedAt.IsZero() {
		b.CreatedAt = r.now
	}

	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}

	r.state.Budgets = append(r.state.Budgets, b)
	r.touch(KeyBudgets)

	return nil
}

func (r *reduction) updateBudget(b Budget) error {
	i := slices.IndexFunc(r.state.Budgets, func(x Budget) bool { return x.ID == b.ID })
	if i < 0 {
		return r.missing("budget", b.ID)
	}

	if err := ValidateBudget(b); err != nil {
		return err
	}

	b.CreatedAt = r.state.Budgets[i].CreatedAt
	b.UpdatedAt = r.now
	r.state.Budgets[i] = b
	r.touch(KeyBudgets)

	return nil
}

func (r *reduction) addExpense(e Expense) error {
	if err := requireID("expense", e.ID); err != nil {
		return err
	}

	if err := ValidateExpense(e); err != nil {
		return err
	}

	if slices.ContainsFunc(r.state.Expenses, func(x Expense) bool { return x.ID == e.ID }) {
		return invalid("expense", "id", "already exists")
	}

	e.BudgetID = IDRef(DerefID(e.BudgetID))
	e.ServiceID = IDRef(DerefID(e.ServiceID))

	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now
	}

	if e.Date.IsZero() {
		e.Date = NewDate(r.now)
	}

	r.state.Expenses = append(r.state.Expenses, e)
	r.touch(KeyExpenses)

	return nil
}

func (r *reduction) updateExpense(e Expense) error {
	i := slices.IndexFunc(r.state.Expenses, func(x Expense) bool { return x.ID == e.ID })
	if i < 0 {
		return r.missing("expense", e.ID)
	}

	if err := ValidateExpense(e); err != nil {
		return err
	}

	e.BudgetID = IDRef(DerefID(e.BudgetID))
	e.ServiceID = IDRef(DerefID(e.ServiceID))
	e.CreatedAt = r.state.Expenses[i].CreatedAt
	r.state.Expenses[i] = e
	r.touch(KeyExpenses)

	return nil
}

func (r *reduction) addCategory(c Category) error {
	if err := requireID("category", c.ID); err != nil {
		return err
	}

	if err := validateName("category", c.Name); err != nil {
		return err
	}

	if r.hasCategory(c.ID) {
		return invalid("category", "id", "already exists")
	}

	if c.Color == "" {
		c.Color = DefaultColor
	}

	r.state.Categories = append(r.state.Categories, c)
	r.touch(KeyCategories)

	return nil
}

func (r *reduction) updateCategory(c Category) error {
	i := slices.IndexFunc(r.state.Categories, func(x Category) bool { return x.ID == c.ID })
	if i < 0 {
		return r.missing("category", c.ID)
	}

	if err := validateName("category", c.Name); err != nil {
		return err
	}

	if c.Color == "" {
		c.Color = r.state.Categories[i].Color
	}

	r.state.Categories[i] = c
	r.touch(KeyCategories)

	return nil
}

func (r *reduction) addService(s Service) error {
	if err := requireID("service", s.ID); err != nil {
		return err
	}

	if err := validateName("service", s.Name); err != nil {
		return err
	}

	if slices.ContainsFunc(r.state.Services, func(x Service) bool { return x.ID == s.ID }) {
		return invalid("service", "id", "already exists")
	}

	if s.Color == "" {
		s.Color = DefaultColor
	}

	r.state.Services = append(r.state.Services, s)
	r.touch(KeyServices)

	return nil
}

func (r *reduction) updateService(s Service) error {
	i := slices.IndexFunc(r.state.Services, func(x Service) bool { return x.ID == s.ID })
	if i < 0 {
		return r.missing("service", s.ID)
	}

	if err := validateName("service", s.Name); err != nil {
		return err
	}

	if s.Color == "" {
		s.Color = r.state.Services[i].Color
	}

	r.state.Services[i] = s
	r.touch(KeyServices)

	return nil
}

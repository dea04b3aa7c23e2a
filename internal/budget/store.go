package budget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Store owns the budgets, expenses, categories and services of one workspace.
// Every mutation goes through Apply: commands are reduced on a private copy,
// the changed collections are written to the Gateway and only then is the
// new snapshot published. A failed batch leaves the previous snapshot intact.
type Store struct {
	mu       sync.RWMutex
	state    State
	gateway  Gateway
	observer Observer
	now      func() time.Time
	newID    IDGenerator
}

type Option func(*Store)

func WithObserver(o Observer) Option {
	return func(s *Store) {
		if o != nil {
			s.observer = o
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewStore returns a store holding InitialState. Call Load to restore
// previously persisted collections.
func NewStore(gw Gateway, opts ...Option) *Store {
	s := &Store{
		state:    InitialState(),
		gateway:  gw,
		observer: nopObserver{},
		now:      time.Now,
		newID:    GenerateID,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NewID returns a fresh identifier from the store's generator.
func (s *Store) NewID() ID {
	return s.newID()
}

// Now returns the store's clock reading.
func (s *Store) Now() time.Time {
	return s.now()
}

// Observer returns the observer events are sent to.
func (s *Store) Observer() Observer {
	return s.observer
}

// Load replaces the in-memory state with the persisted collections.
// An absent key yields the initial value for that collection. A payload that
// does not decode is reported to the observer and replaced by the initial
// value for that collection only.
func (s *Store) Load(ctx context.Context) error {
	payloads := make([][]byte, len(Keys))
	found := make([]bool, len(Keys))

	g, gctx := errgroup.WithContext(ctx)

	for i, key := range Keys {
		g.Go(func() error {
			data, ok, err := s.gateway.Load(gctx, key)
			if err != nil {
				return fmt.Errorf("load %s: %w", key, err)
			}

			payloads[i], found[i] = data, ok

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	next := InitialState()

	for i, key := range Keys {
		if !found[i] {
			continue
		}

		if err := s.decode(key, payloads[i], &next); err != nil {
			s.observer.Observe(Event{
				Kind:    KindStateCorrupt,
				Key:     key,
				Err:     err,
				Message: "persisted collection unreadable, using defaults",
			})
		}
	}

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()

	return nil
}

func (s *Store) decode(key Key, payload []byte, into *State) error {
	switch key {
	case KeyBudgets:
		items, err := decodeCollection[Budget](payload)
		if err != nil {
			return err
		}

		into.Budgets = dedupeLoaded(s, key, items)
	case KeyExpenses:
		items, err := decodeCollection[Expense](payload)
		if err != nil {
			return err
		}

		into.Expenses = dedupeLoaded(s, key, items)
	case KeyCategories:
		items, err := decodeCollection[Category](payload)
		if err != nil {
			return err
		}

		into.Categories = dedupeLoaded(s, key, items)
	case KeyServices:
		items, err := decodeCollection[Service](payload)
		if err != nil {
			return err
		}

		into.Services = dedupeLoaded(s, key, items)
	}

	return nil
}

func decodeCollection[T Identifiable](payload []byte) ([]T, error) {
	var items []T
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}

	if items == nil {
		items = []T{}
	}

	return items, nil
}

func dedupeLoaded[T Identifiable](s *Store, key Key, items []T) []T {
	out := DeduplicateByID(items)

	if dropped := len(items) - len(out); dropped > 0 {
		s.observer.Observe(Event{
			Kind:    KindDuplicateDropped,
			Key:     key,
			Count:   dropped,
			Message: "dropped entries with repeated ids",
		})
	}

	return out
}

// State returns a copy of the current snapshot.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.clone()
}

// Apply reduces cmds in order and persists the result as one batch.
// A command that fails validation discards the whole batch; an update of an
// unknown id is skipped with a KindReferenceNotFound event. Collections are
// saved one key at a time without rollback: if a later Save fails the
// in-memory snapshot is kept, but keys already saved stay written.
func (s *Store) Apply(ctx context.Context, cmds ...Command) error {
	_, err := s.apply(ctx, cmds...)
	return err
}

func (s *Store) apply(ctx context.Context, cmds ...Command) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := newReduction(s.state, s.now())

	for _, cmd := range cmds {
		if err := r.apply(cmd); err != nil {
			for _, e := range r.events {
				s.observer.Observe(e)
			}

			return State{}, err
		}
	}

	if err := s.persist(ctx, r); err != nil {
		return State{}, err
	}

	s.state = r.state

	for _, e := range r.events {
		s.observer.Observe(e)
	}

	s.observer.Observe(Event{Kind: KindApplied, Count: len(cmds)})

	return r.state.clone(), nil
}

func (s *Store) persist(ctx context.Context, r *reduction) error {
	for _, key := range Keys {
		if r.removed[key] {
			if err := s.gateway.Remove(ctx, key); err != nil {
				return fmt.Errorf("remove %s: %w", key, err)
			}

			continue
		}

		if !r.dirty[key] {
			continue
		}

		payload, err := encodeCollection(r.state, key)
		if err != nil {
			return err
		}

		if err := s.gateway.Save(ctx, key, payload); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	return nil
}

func encodeCollection(st State, key Key) ([]byte, error) {
	var v any

	switch key {
	case KeyBudgets:
		v = st.Budgets
	case KeyExpenses:
		v = st.Expenses
	case KeyCategories:
		v = st.Categories
	case KeyServices:
		v = st.Services
	default:
		return nil, fmt.Errorf("unknown key %q", key)
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}

	return payload, nil
}

func (s *Store) AddBudget(ctx context.Context, b Budget) (Budget, error) {
	if b.ID == "" {
		b.ID = s.newID()
	}

	st, err := s.apply(ctx, AddBudget{Budget: b})
	if err != nil {
		return Budget{}, fmt.Errorf("add budget: %w", err)
	}

	return findByID(st.Budgets, b.ID)
}

// UpdateBudget replaces a budget, keeping its createdAt and stamping updatedAt.
// An unknown id leaves the store unchanged and returns an error wrapping ErrNotFound.
func (s *Store) UpdateBudget(ctx context.Context, b Budget) (Budget, error) {
	st, err := s.apply(ctx, UpdateBudget{Budget: b})
	if err != nil {
		return Budget{}, fmt.Errorf("update budget: %w", err)
	}

	got, err := findByID(st.Budgets, b.ID)
	if err != nil {
		return Budget{}, fmt.Errorf("update budget %s: %w", b.ID, err)
	}

	return got, nil
}

// DeleteBudget removes a budget. Expenses pointing at it keep their budgetId.
func (s *Store) DeleteBudget(ctx context.Context, id ID) error {
	if err := s.Apply(ctx, DeleteBudget{ID: id}); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}

	return nil
}

func (s *Store) AddExpense(ctx context.Context, e Expense) (Expense, error) {
	if e.ID == "" {
		e.ID = s.newID()
	}

	st, err := s.apply(ctx, AddExpense{Expense: e})
	if err != nil {
		return Expense{}, fmt.Errorf("add expense: %w", err)
	}

	return findByID(st.Expenses, e.ID)
}

func (s *Store) UpdateExpense(ctx context.Context, e Expense) (Expense, error) {
	st, err := s.apply(ctx, UpdateExpense{Expense: e})
	if err != nil {
		return Expense{}, fmt.Errorf("update expense: %w", err)
	}

	got, err := findByID(st.Expenses, e.ID)
	if err != nil {
		return Expense{}, fmt.Errorf("update expense %s: %w", e.ID, err)
	}

	return got, nil
}

func (s *Store) DeleteExpense(ctx context.Context, id ID) error {
	if err := s.Apply(ctx, DeleteExpense{ID: id}); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	return nil
}

func (s *Store) AddCategory(ctx context.Context, c Category) (Category, error) {
	if c.ID == "" {
		c.ID = s.newID()
	}

	st, err := s.apply(ctx, AddCategory{Category: c})
	if err != nil {
		return Category{}, fmt.Errorf("add category: %w", err)
	}

	return findByID(st.Categories, c.ID)
}

func (s *Store) UpdateCategory(ctx context.Context, c Category) (Category, error) {
	st, err := s.apply(ctx, UpdateCategory{Category: c})
	if err != nil {
		return Category{}, fmt.Errorf("update category: %w", err)
	}

	got, err := findByID(st.Categories, c.ID)
	if err != nil {
		return Category{}, fmt.Errorf("update category %s: %w", c.ID, err)
	}

	return got, nil
}

// DeleteCategory removes a category without touching budgets or expenses
// that reference it.
func (s *Store) DeleteCategory(ctx context.Context, id ID) error {
	if err := s.Apply(ctx, DeleteCategory{ID: id}); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	return nil
}

func (s *Store) AddService(ctx context.Context, svc Service) (Service, error) {
	if svc.ID == "" {
		svc.ID = s.newID()
	}

	st, err := s.apply(ctx, AddService{Service: svc})
	if err != nil {
		return Service{}, fmt.Errorf("add service: %w", err)
	}

	return findByID(st.Services, svc.ID)
}

func (s *Store) UpdateService(ctx context.Context, svc Service) (Service, error) {
	st, err := s.apply(ctx, UpdateService{Service: svc})
	if err != nil {
		return Service{}, fmt.Errorf("update service: %w", err)
	}

	got, err := findByID(st.Services, svc.ID)
	if err != nil {
		return Service{}, fmt.Errorf("update service %s: %w", svc.ID, err)
	}

	return got, nil
}

func (s *Store) DeleteService(ctx context.Context, id ID) error {
	if err := s.Apply(ctx, DeleteService{ID: id}); err != nil {
		return fmt.Errorf("delete service: %w", err)
	}

	return nil
}

// ResetAll clears budgets and expenses. Categories and services are kept.
func (s *Store) ResetAll(ctx context.Context) error {
	if err := s.Apply(ctx, ResetAll{}); err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	return nil
}

func findByID[T Identifiable](items []T, id ID) (T, error) {
	for _, item := range items {
		if idOf(item) == id {
			return item, nil
		}
	}

	var zero T

	return zero, ErrNotFound
}

// IsNotFound reports whether err stems from a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

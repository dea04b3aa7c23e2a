// Package matching remembers the operator's override decisions so that later
// imports resolve the same cell text the same way.
package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"sync"

	"github.com/MrJamesThe3rd/budgetit/internal/budget"
	"github.com/MrJamesThe3rd/budgetit/internal/importer"
)

// KeyOverrides is the gateway key of the learned overrides. It sits outside
// budget.Keys so the store never loads or resets it.
const KeyOverrides budget.Key = "overrides"

// Target names the collection an override points into.
type Target string

const (
	TargetCategory Target = "category"
	TargetService  Target = "service"
	TargetBudget   Target = "budget"
)

func ParseTarget(s string) (Target, error) {
	switch t := Target(s); t {
	case TargetCategory, TargetService, TargetBudget:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown override target %q", budget.ErrValidation, s)
	}
}

type Service struct {
	gw budget.Gateway

	mu      sync.RWMutex
	learned importer.Overrides
}

func NewService(gw budget.Gateway) *Service {
	return &Service{gw: gw}
}

// Load restores the learned overrides; a missing key leaves them empty.
func (s *Service) Load(ctx context.Context) error {
	payload, ok, err := s.gw.Load(ctx, KeyOverrides)
	if err != nil {
		return fmt.Errorf("load overrides: %w", err)
	}

	var o importer.Overrides
	if ok {
		if err := json.Unmarshal(payload, &o); err != nil {
			return fmt.Errorf("decode overrides: %w", err)
		}
	}

	s.mu.Lock()
	s.learned = o
	s.mu.Unlock()

	return nil
}

// Overrides returns a copy of everything learned so far.
func (s *Service) Overrides() importer.Overrides {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return importer.Overrides{
		Categories: maps.Clone(s.learned.Categories),
		Services:   maps.Clone(s.learned.Services),
		Budgets:    maps.Clone(s.learned.Budgets),
	}
}

// Merge layers explicit on top of the learned overrides; explicit entries win.
func (s *Service) Merge(explicit importer.Overrides) importer.Overrides {
	out := s.Overrides()
	out.Categories = merged(out.Categories, explicit.Categories)
	out.Services = merged(out.Services, explicit.Services)
	out.Budgets = merged(out.Budgets, explicit.Budgets)

	return out
}

func merged(base, top map[string]budget.ID) map[string]budget.ID {
	if len(top) == 0 {
		return base
	}

	if base == nil {
		base = make(map[string]budget.ID, len(top))
	}

	maps.Copy(base, top)

	return base
}

// Learn records that text resolves to id within target.
func (s *Service) Learn(ctx context.Context, target Target, text string, id budget.ID) error {
	if text == "" || id == "" {
		return fmt.Errorf("%w: override needs a text and an id", budget.ErrValidation)
	}

	return s.update(ctx, func(o *overrides) {
		m := o.forTarget(target)
		if *m == nil {
			*m = make(map[string]budget.ID)
		}

		(*m)[text] = id
	})
}

// LearnAll records every entry of o.
func (s *Service) LearnAll(ctx context.Context, o importer.Overrides) error {
	return s.update(ctx, func(cur *overrides) {
		cur.Categories = merged(cur.Categories, o.Categories)
		cur.Services = merged(cur.Services, o.Services)
		cur.Budgets = merged(cur.Budgets, o.Budgets)
	})
}

// Forget drops the override of text within target.
func (s *Service) Forget(ctx context.Context, target Target, text string) error {
	return s.update(ctx, func(o *overrides) {
		delete(*o.forTarget(target), text)
	})
}

// overrides is importer.Overrides with per-target access.
type overrides importer.Overrides

func (o *overrides) forTarget(t Target) *map[string]budget.ID {
	switch t {
	case TargetService:
		return &o.Services
	case TargetBudget:
		return &o.Budgets
	default:
		return &o.Categories
	}
}

// update applies fn to a copy, persists it, then publishes it.
func (s *Service) update(ctx context.Context, fn func(*overrides)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := overrides{
		Categories: maps.Clone(s.learned.Categories),
		Services:   maps.Clone(s.learned.Services),
		Budgets:    maps.Clone(s.learned.Budgets),
	}
	fn(&next)

	payload, err := json.Marshal(importer.Overrides(next))
	if err != nil {
		return fmt.Errorf("encode overrides: %w", err)
	}

	if err := s.gw.Save(ctx, KeyOverrides, payload); err != nil {
		return fmt.Errorf("save overrides: %w", err)
	}

	s.learned = importer.Overrides(next)

	return nil
}

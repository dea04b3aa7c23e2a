package importer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/MrJamesThe3rd/budgetit/internal/budget"
)

// Method records how a value was resolved.
type Method string

const (
	MethodNone      Method = ""
	MethodOverride  Method = "override"
	MethodExact     Method = "exact"
	MethodHeuristic Method = "heuristic"
	MethodContains  Method = "contains"
	MethodFallback  Method = "fallback"
	MethodCreate    Method = "create"
)

// Overrides are operator decisions keyed by the exact cell text.
type Overrides struct {
	Categories map[string]budget.ID `json:"categories,omitempty"`
	Services   map[string]budget.ID `json:"services,omitempty"`
	Budgets    map[string]budget.ID `json:"budgets,omitempty"`
}

func (o Overrides) forKind(kind Kind) map[string]budget.ID {
	if kind == KindService {
		return o.Services
	}

	return o.Categories
}

type named struct {
	id   budget.ID
	name string
}

// Resolver turns free-text category, service and budget references into ids.
// It works on a private copy of the reference data: entities it creates are
// visible to later lookups and queued as commands for the caller to apply.
type Resolver struct {
	entities  map[Kind][]named
	budgets   []named
	overrides Overrides
	newID     budget.IDGenerator
	pending   []budget.Command
	created   map[Kind]int
}

func NewResolver(st budget.State, overrides Overrides, newID budget.IDGenerator) *Resolver {
	r := &Resolver{
		entities:  make(map[Kind][]named, 2),
		overrides: overrides,
		newID:     newID,
		created:   make(map[Kind]int, 2),
	}

	for _, c := range st.Categories {
		r.entities[KindCategory] = append(r.entities[KindCategory], named{c.ID, c.Name})
	}

	for _, s := range st.Services {
		r.entities[KindService] = append(r.entities[KindService], named{s.ID, s.Name})
	}

	for _, b := range st.Budgets {
		r.budgets = append(r.budgets, named{b.ID, b.Name})
	}

	return r
}

// Lookup resolves value without creating anything: override, then exact
// case-insensitive name, then the keyword table.
func (r *Resolver) Lookup(kind Kind, value string) (budget.ID, Method) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", MethodNone
	}

	if id, ok := r.overrides.forKind(kind)[value]; ok && r.has(kind, id) {
		return id, MethodOverride
	}

	if id, ok := r.byName(kind, value); ok {
		return id, MethodExact
	}

	for _, target := range heuristicTargets(kind, value) {
		if id, ok := r.byName(kind, target); ok {
			return id, MethodHeuristic
		}
	}

	return "", MethodNone
}

// Resolve is Lookup followed by creation of a new entity named after value.
// A blank value resolves to nothing.
func (r *Resolver) Resolve(kind Kind, value string) (budget.ID, Method) {
	if id, method := r.Lookup(kind, value); method != MethodNone {
		return id, method
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return "", MethodNone
	}

	return r.create(kind, capitalize(value)), MethodCreate
}

// Category resolves a category cell. A blank cell falls back to "Autres"
// when that category exists.
func (r *Resolver) Category(value string) (budget.ID, Method) {
	if strings.TrimSpace(value) == "" {
		if id, ok := r.byName(KindCategory, fallbackCategory); ok {
			return id, MethodFallback
		}

		return "", MethodNone
	}

	return r.Resolve(KindCategory, value)
}

// LookupCategory is Category without creation.
func (r *Resolver) LookupCategory(value string) (budget.ID, Method) {
	if strings.TrimSpace(value) == "" {
		return r.Category(value)
	}

	return r.Lookup(KindCategory, value)
}

// Service resolves a service cell; blank yields nil.
func (r *Resolver) Service(value string) *budget.ID {
	id, _ := r.Resolve(KindService, value)
	return budget.IDRef(id)
}

// Budget resolves a budget reference by override, exact name, then either
// string containing the other. Budgets are never created; no match is nil.
func (r *Resolver) Budget(value string) (*budget.ID, Method) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, MethodNone
	}

	if id, ok := r.overrides.Budgets[value]; ok && r.hasBudget(id) {
		return budget.IDRef(id), MethodOverride
	}

	lower := strings.ToLower(value)

	for _, b := range r.budgets {
		if strings.ToLower(b.name) == lower {
			return budget.IDRef(b.id), MethodExact
		}
	}

	for _, b := range r.budgets {
		name := strings.ToLower(strings.TrimSpace(b.name))
		if name == "" {
			continue
		}

		if strings.Contains(lower, name) || strings.Contains(name, lower) {
			return budget.IDRef(b.id), MethodContains
		}
	}

	return nil, MethodNone
}

// Commands returns the creations queued so far.
func (r *Resolver) Commands() []budget.Command {
	return r.pending
}

// Created reports how many entities of kind were created.
func (r *Resolver) Created(kind Kind) int {
	return r.created[kind]
}

func (r *Resolver) create(kind Kind, name string) budget.ID {
	id := r.newID()
	r.entities[kind] = append(r.entities[kind], named{id, name})
	r.created[kind]++

	switch kind {
	case KindService:
		r.pending = append(r.pending, budget.AddService{Service: budget.Service{ID: id, Name: name, Color: budget.DefaultColor}})
	default:
		r.pending = append(r.pending, budget.AddCategory{Category: budget.Category{ID: id, Name: name, Color: budget.DefaultColor}})
	}

	return id
}

func (r *Resolver) byName(kind Kind, name string) (budget.ID, bool) {
	for _, e := range r.entities[kind] {
		if strings.EqualFold(e.name, name) {
			return e.id, true
		}
	}

	return "", false
}

func (r *Resolver) has(kind Kind, id budget.ID) bool {
	for _, e := range r.entities[kind] {
		if e.id == id {
			return true
		}
	}

	return false
}

func (r *Resolver) hasBudget(id budget.ID) bool {
	for _, b := range r.budgets {
		if b.id == id {
			return true
		}
	}

	return false
}

func capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError {
		return s
	}

	return string(unicode.ToUpper(first)) + s[size:]
}

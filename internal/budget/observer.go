package budget

import (
	"context"
	"log/slog"
)

// EventKind classifies a diagnostic event.
type EventKind string

const (
	KindReferenceNotFound EventKind = "reference_not_found"
	KindStateCorrupt      EventKind = "state_corrupt"
	KindDuplicateDropped  EventKind = "duplicate_dropped"
	KindEntityCreated     EventKind = "entity_created"
	KindRowRejected       EventKind = "import_row_rejected"
	KindRowDuplicate      EventKind = "import_row_duplicate"
	KindApplied           EventKind = "applied"
)

// Event is a structured diagnostic emitted by the store and the importer.
type Event struct {
	Kind    EventKind
	Entity  string
	ID      ID
	Key     Key
	Row     int
	Count   int
	Message string
	Err     error
}

// Observer receives diagnostic events. Implementations must not block.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

type nopObserver struct{}

func (nopObserver) Observe(Event) {}

// Observers fans an event out to several observers.
type Observers []Observer

func (o Observers) Observe(e Event) {
	for _, obs := range o {
		obs.Observe(e)
	}
}

// SlogObserver writes events as structured log records.
type SlogObserver struct {
	Logger *slog.Logger
}

func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	if logger == nil {
		logger = slog.Default()
	}

	return &SlogObserver{Logger: logger}
}

func (o *SlogObserver) Observe(e Event) {
	attrs := []slog.Attr{slog.String("kind", string(e.Kind))}

	if e.Entity != "" {
		attrs = append(attrs, slog.String("entity", e.Entity))
	}

	if e.ID != "" {
		attrs = append(attrs, slog.String("id", string(e.ID)))
	}

	if e.Key != "" {
		attrs = append(attrs, slog.String("key", string(e.Key)))
	}

	if e.Row > 0 {
		attrs = append(attrs, slog.Int("row", e.Row))
	}

	if e.Count > 0 {
		attrs = append(attrs, slog.Int("count", e.Count))
	}

	if e.Err != nil {
		attrs = append(attrs, slog.Any("error", e.Err))
	}

	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}

	o.Logger.LogAttrs(context.Background(), levelFor(e.Kind), msg, attrs...)
}

func levelFor(kind EventKind) slog.Level {
	switch kind {
	case KindStateCorrupt:
		return slog.LevelError
	case KindReferenceNotFound, KindDuplicateDropped, KindRowRejected:
		return slog.LevelWarn
	case KindApplied:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

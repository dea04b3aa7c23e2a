package budget

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces identifiers for new entities.
type IDGenerator func() ID

// GenerateID returns a time-ordered identifier with a random suffix (UUIDv7).
func GenerateID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		return ID(uuid.NewString())
	}

	return ID(id.String())
}

// SequentialIDs returns a generator yielding prefix-1, prefix-2, ...
// It is safe for concurrent use.
func SequentialIDs(prefix string) IDGenerator {
	var n atomic.Int64

	return func() ID {
		return ID(fmt.Sprintf("%s-%d", prefix, n.Add(1)))
	}
}

// Identifiable is implemented by every entity kind held by the Store.
type Identifiable interface {
	Budget | Expense | Category | Service
}

func idOf[T Identifiable](v T) ID {
	switch e := any(v).(type) {
	case Budget:
		return e.ID
	case Expense:
		return e.ID
	case Category:
		return e.ID
	case Service:
		return e.ID
	}

	return ""
}

// DeduplicateByID keeps the first occurrence of every id and preserves the
// relative order of the survivors.
func DeduplicateByID[T Identifiable](items []T) []T {
	seen := make(map[ID]struct{}, len(items))
	out := make([]T, 0, len(items))

	for _, item := range items {
		id := idOf(item)
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, item)
	}

	return out
}

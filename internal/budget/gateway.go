package budget

import "context"

// Key names one persisted collection.
type Key string

const (
	KeyBudgets    Key = "budgets"
	KeyExpenses   Key = "expenses"
	KeyCategories Key = "categories"
	KeyServices   Key = "services"
)

// Keys lists every persisted collection in load order.
var Keys = []Key{KeyBudgets, KeyExpenses, KeyCategories, KeyServices}

// Gateway is a key to bytes store mirroring the Store's collections.
// Load reports ok=false for a key that was never saved or has been removed.
//
//go:generate mockgen -source=gateway.go -destination=gateway_mock.go -package=budget
type Gateway interface {
	Load(ctx context.Context, key Key) (payload []byte, ok bool, err error)
	Save(ctx context.Context, key Key, payload []byte) error
	Remove(ctx context.Context, key Key) error
}

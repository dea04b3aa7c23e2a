package storage

import (
	"context"
	"fmt"

	"github.com/MrJamesThe3rd/budgetit/internal/budget"
	"github.com/MrJamesThe3rd/budgetit/internal/database"
)

// Backend names a Gateway implementation.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendS3       Backend = "s3"
)

type Settings struct {
	Backend     Backend
	SQLitePath  string
	PostgresURL string
	S3          S3Config
}

// Open builds the gateway selected by settings, migrating SQL schemas first.
// The returned close function releases the underlying connections.
func Open(ctx context.Context, settings Settings) (budget.Gateway, func() error, error) {
	noop := func() error { return nil }

	switch settings.Backend {
	case BackendMemory, "":
		return NewMemory(), noop, nil

	case BackendSQLite:
		db, err := database.NewSQLite(settings.SQLitePath)
		if err != nil {
			return nil, nil, err
		}

		if err := Migrate(DialectSQLite, settings.SQLitePath); err != nil {
			db.Close()
			return nil, nil, err
		}

		return NewSQL(db, DialectSQLite), db.Close, nil

	case BackendPostgres:
		if err := Migrate(DialectPostgres, settings.PostgresURL); err != nil {
			return nil, nil, err
		}

		db, err := database.New(settings.PostgresURL)
		if err != nil {
			return nil, nil, err
		}

		return NewSQL(db, DialectPostgres), db.Close, nil

	case BackendS3:
		gw, err := NewS3(ctx, settings.S3)
		if err != nil {
			return nil, nil, err
		}

		return gw, noop, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", settings.Backend)
	}
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/MrJamesThe3rd/budgetit/internal/budget"
)

// SQL stores each collection as one row of the state table.
type SQL struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQL(db *sql.DB, dialect Dialect) *SQL {
	return &SQL{db: db, dialect: dialect}
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *SQL) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}

	var sb strings.Builder

	n := 0

	for _, r := range query {
		if r != '?' {
			sb.WriteRune(r)
			continue
		}

		n++
		sb.WriteString("$" + strconv.Itoa(n))
	}

	return sb.String()
}

func (s *SQL) Load(ctx context.Context, key budget.Key) ([]byte, bool, error) {
	var payload []byte

	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT payload FROM state WHERE bucket = ?`), string(key)).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("loading %s: %w", key, err)
	}

	return payload, true, nil
}

func (s *SQL) Save(ctx context.Context, key budget.Key, payload []byte) error {
	query := `
		INSERT INTO state (bucket, payload, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (bucket) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`

	if _, err := s.db.ExecContext(ctx, s.rebind(query), string(key), payload); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}

	return nil
}

func (s *SQL) Remove(ctx context.Context, key budget.Key) error {
	if _, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM state WHERE bucket = ?`), string(key)); err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}

	return nil
}

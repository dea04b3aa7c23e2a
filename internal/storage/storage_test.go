package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetit/internal/budget"
)

// fakeS3 answers the path-style GetObject, PutObject and DeleteObject calls.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.TrimPrefix(req.URL.Path, "/")

	respond := func(status int, body []byte) *http.Response {
		return &http.Response{
			StatusCode: status,
			Header:     http.Header{"Content-Type": {"application/xml"}},
			Body:       io.NopCloser(bytes.NewReader(body)),
			Request:    req,
		}
	}

	switch req.Method {
	case http.MethodGet:
		body, ok := f.objects[key]
		if !ok {
			return respond(http.StatusNotFound, []byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)), nil
		}

		return respond(http.StatusOK, body), nil
	case http.MethodPut:
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}

		f.objects[key] = body

		return respond(http.StatusOK, nil), nil
	case http.MethodDelete:
		delete(f.objects, key)
		return respond(http.StatusNoContent, nil), nil
	}

	return respond(http.StatusNotImplemented, nil), nil
}

func newFakeS3(t *testing.T) (*S3, *fakeS3) {
	t.Helper()

	fake := &fakeS3{objects: make(map[string][]byte)}

	gw, err := NewS3(context.Background(), S3Config{
		Bucket:          "budgets",
		Region:          "eu-west-3",
		Endpoint:        "https://s3.test.local",
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		PathStyle:       true,
		Prefix:          "team-it",
		HTTPClient:      &http.Client{Transport: fake},
	})
	require.NoError(t, err)

	return gw, fake
}

func TestGateways(t *testing.T) {
	type testCase struct {
		name string
		open func(t *testing.T) budget.Gateway
	}

	tests := []testCase{
		{
			name: "Memory",
			open: func(t *testing.T) budget.Gateway { return NewMemory() },
		},
		{
			name: "SQLite",
			open: func(t *testing.T) budget.Gateway {
				gw, closeFn, err := Open(context.Background(), Settings{
					Backend:    BackendSQLite,
					SQLitePath: filepath.Join(t.TempDir(), "data", "budget.db"),
				})
				require.NoError(t, err)
				t.Cleanup(func() { _ = closeFn() })

				return gw
			},
		},
		{
			name: "S3",
			open: func(t *testing.T) budget.Gateway {
				gw, _ := newFakeS3(t)
				return gw
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			gw := tt.open(t)

			_, ok, err := gw.Load(ctx, budget.KeyBudgets)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, gw.Save(ctx, budget.KeyBudgets, []byte(`[{"id":"1"}]`)))
			require.NoError(t, gw.Save(ctx, budget.KeyBudgets, []byte(`[{"id":"2"}]`)))

			payload, ok, err := gw.Load(ctx, budget.KeyBudgets)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.JSONEq(t, `[{"id":"2"}]`, string(payload))

			_, ok, err = gw.Load(ctx, budget.KeyExpenses)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, gw.Remove(ctx, budget.KeyBudgets))
			require.NoError(t, gw.Remove(ctx, budget.KeyBudgets))

			_, ok, err = gw.Load(ctx, budget.KeyBudgets)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestS3_ObjectLayout(t *testing.T) {
	gw, fake := newFakeS3(t)

	require.NoError(t, gw.Save(context.Background(), budget.KeyServices, []byte(`[]`)))

	_, ok := fake.objects["budgets/team-it/services.json"]
	assert.True(t, ok)
}

func TestSQLite_StoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "budget.db")

	gw, closeFn, err := Open(ctx, Settings{Backend: BackendSQLite, SQLitePath: path})
	require.NoError(t, err)

	store := budget.NewStore(gw, budget.WithIDGenerator(budget.SequentialIDs("b")))
	require.NoError(t, store.Load(ctx))

	_, err = store.AddBudget(ctx, budget.Budget{Name: "Serveurs", Amount: 1200, CategoryID: "1"})
	require.NoError(t, err)
	require.NoError(t, closeFn())

	gw, closeFn, err = Open(ctx, Settings{Backend: BackendSQLite, SQLitePath: path})
	require.NoError(t, err)
	defer closeFn()

	reopened := budget.NewStore(gw)
	require.NoError(t, reopened.Load(ctx))

	budgets := reopened.Budgets()
	require.Len(t, budgets, 1)
	assert.Equal(t, "Serveurs", budgets[0].Name)
	assert.Len(t, reopened.Categories(), 6)
}

func TestSQL_Rebind(t *testing.T) {
	pg := NewSQL(nil, DialectPostgres)
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", pg.rebind("SELECT a FROM t WHERE x = ? AND y = ?"))

	lite := NewSQL(nil, DialectSQLite)
	assert.Equal(t, "SELECT a FROM t WHERE x = ?", lite.rebind("SELECT a FROM t WHERE x = ?"))
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, _, err := Open(context.Background(), Settings{Backend: "floppy"})
	assert.Error(t, err)
}

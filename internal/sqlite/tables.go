package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/focusflow/pkg/types"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// quoteIdent quotes a collection name for use as a table name. Collection
// names may contain characters such as '-'.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func createTable(ctx context.Context, q querier, name string) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s ("key" TEXT PRIMARY KEY, "value" TEXT NOT NULL)`,
		quoteIdent(name))
	if _, err := q.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("creating collection %s: %w", name, err)
	}
	return nil
}

func dropTable(ctx context.Context, q querier, name string) error {
	if _, err := q.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(name)); err != nil {
		return fmt.Errorf("dropping collection %s: %w", name, err)
	}
	return nil
}

func tableExists(ctx context.Context, q querier, name string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("looking up collection %s: %w", name, err)
	}
	return n > 0, nil
}

func upsert(ctx context.Context, q querier, name, key string, value json.RawMessage) error {
	stmt := fmt.Sprintf(`INSERT INTO %s ("key", "value") VALUES (?, ?)
ON CONFLICT("key") DO UPDATE SET "value" = excluded."value"`, quoteIdent(name))
	if _, err := q.ExecContext(ctx, stmt, key, string(value)); err != nil {
		return fmt.Errorf("writing %s/%s: %w", name, key, err)
	}
	return nil
}

func selectEntries(ctx context.Context, q querier, name string) ([]types.Entry, error) {
	rows, err := q.QueryContext(ctx,
		fmt.Sprintf(`SELECT "key", "value" FROM %s ORDER BY "key"`, quoteIdent(name)))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	defer rows.Close()

	entries := []types.Entry{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", name, err)
		}
		entries = append(entries, types.Entry{Key: key, Value: json.RawMessage(value)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return entries, nil
}

// schemaTx adapts a SQL transaction to schema.Tx.
type schemaTx struct {
	q querier
}

func (t *schemaTx) HasCollection(ctx context.Context, name string) (bool, error) {
	return tableExists(ctx, t.q, name)
}

func (t *schemaTx) CreateCollection(ctx context.Context, name string) error {
	return createTable(ctx, t.q, name)
}

func (t *schemaTx) DropCollection(ctx context.Context, name string) error {
	return dropTable(ctx, t.q, name)
}

func (t *schemaTx) Entries(ctx context.Context, name string) ([]types.Entry, error) {
	return selectEntries(ctx, t.q, name)
}

func (t *schemaTx) Put(ctx context.Context, name, key string, value json.RawMessage) error {
	return upsert(ctx, t.q, name, key, value)
}

package store

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// SQLBackend runs plans through database/sql, used with SQLite for local
// development and tests. SQLite has no timestamp type: date columns are
// expected to hold RFC3339 text in UTC, and time.Time arguments are bound in
// that form so equality filters match.
type SQLBackend struct {
	db *sql.DB
}

func NewSQLBackend(db *sql.DB) *SQLBackend {
	return &SQLBackend{db: db}
}

func (b *SQLBackend) Placeholder() sq.PlaceholderFormat { return sq.Question }

func (b *SQLBackend) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := b.db.QueryContext(ctx, query, bindArgs(args)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []Row
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (b *SQLBackend) Count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := b.db.QueryRowContext(ctx, query, bindArgs(args)...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func bindArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		if ts, ok := a.(time.Time); ok {
			a = ts.UTC().Format(time.RFC3339)
		}
		out[i] = a
	}
	return out
}

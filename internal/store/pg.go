package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PgxQuerier is the subset of pgxpool.Pool the Postgres backend needs.
type PgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgBackend runs plans on Postgres through pgx.
type PgBackend struct {
	pool PgxQuerier
}

func NewPgBackend(pool PgxQuerier) *PgBackend {
	return &PgBackend{pool: pool}
}

func (b *PgBackend) Placeholder() sq.PlaceholderFormat { return sq.Dollar }

func (b *PgBackend) Query(ctx context.Context, sql string, args ...any) ([]Row, error) {
	rows, err := b.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}

	result := make([]Row, len(maps))
	for i, m := range maps {
		for k, v := range m {
			m[k] = normalizePg(v)
		}
		result[i] = Row(m)
	}
	return result, nil
}

func (b *PgBackend) Count(ctx context.Context, sql string, args ...any) (int64, error) {
	var n int64
	if err := b.pool.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// normalizePg converts pgx's decoded uuid arrays to their string form.
func normalizePg(v any) any {
	if b, ok := v.([16]byte); ok {
		return uuid.UUID(b).String()
	}
	return v
}

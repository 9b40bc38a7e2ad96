package schema

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
)

const loadQuery = `
SELECT c.table_name, c.column_name
FROM information_schema.columns c
WHERE c.table_schema = current_schema()
ORDER BY c.table_name, c.ordinal_position
`

// Querier is the subset of pgxpool.Pool used to read catalog metadata.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Catalog maps table name to the set of its column names.
type Catalog map[string]map[string]bool

// LoadCatalog reads the column layout of the current schema.
func LoadCatalog(ctx context.Context, q Querier) (Catalog, error) {
	rows, err := q.Query(ctx, loadQuery)
	if err != nil {
		return nil, fmt.Errorf("schema catalog load: %w", err)
	}
	defer rows.Close()

	cat := make(Catalog)
	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return nil, fmt.Errorf("schema catalog scan: %w", err)
		}
		if cat[table] == nil {
			cat[table] = make(map[string]bool)
		}
		cat[table][column] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("schema catalog rows: %w", err)
	}
	return cat, nil
}

// Check reports every table, column, or relation key a descriptor names that
// the catalog does not contain.
func (c Catalog) Check(tables ...*Table) error {
	var errs []error
	for _, t := range tables {
		cols, ok := c[t.Name]
		if !ok {
			errs = append(errs, fmt.Errorf("table %q does not exist", t.Name))
			continue
		}
		for _, col := range t.Columns {
			if !cols[col.Name] {
				errs = append(errs, fmt.Errorf("column %q.%q does not exist", t.Name, col.Name))
			}
		}
		for _, r := range t.Relations {
			rcols, ok := c[r.Table]
			if !ok {
				errs = append(errs, fmt.Errorf("relation %s: table %q does not exist", r.Name, r.Table))
				continue
			}
			if !rcols[r.ForeignKey] {
				errs = append(errs, fmt.Errorf("relation %s: column %q.%q does not exist", r.Name, r.Table, r.ForeignKey))
			}
		}
	}
	return errors.Join(errs...)
}

// ColumnRef names a column read on a related table, such as the column an
// aggregate counts.
type ColumnRef struct {
	Table  string
	Column string
}

// CheckRefs reports every referenced column the catalog does not contain.
func (c Catalog) CheckRefs(refs ...ColumnRef) error {
	var errs []error
	for _, ref := range refs {
		cols, ok := c[ref.Table]
		if !ok {
			errs = append(errs, fmt.Errorf("referenced table %q does not exist", ref.Table))
			continue
		}
		if !cols[ref.Column] {
			errs = append(errs, fmt.Errorf("referenced column %q.%q does not exist", ref.Table, ref.Column))
		}
	}
	return errors.Join(errs...)
}

// Tables returns the catalog's table names in order.
func (c Catalog) Tables() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Verify loads the live catalog and checks the given descriptors and
// related-column references against it.
func Verify(ctx context.Context, q Querier, tables []*Table, refs ...ColumnRef) error {
	cat, err := LoadCatalog(ctx, q)
	if err != nil {
		return err
	}
	return errors.Join(cat.Check(tables...), cat.CheckRefs(refs...))
}

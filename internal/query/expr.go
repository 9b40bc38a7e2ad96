package query

import (
	"fmt"

	"github.com/atlekbai/tourney/internal/schema"
)

// Expr is a column or computed expression an entity can project or sort by.
// Expressions are resolved against a table once, when the entity is compiled.
type Expr interface {
	resolve(t *schema.Table) (resolvedExpr, error)
}

// resolvedExpr is an Expr bound to a concrete table.
type resolvedExpr struct {
	sql       string
	relation  *schema.Relation // nil when no join is needed
	aggregate bool
	column    *schema.Column    // set for plain columns
	ref       *schema.ColumnRef // column read on a related table
}

type columnExpr struct{ apiName string }

// Column references a column of the entity's own table by API name.
func Column(apiName string) Expr { return columnExpr{apiName: apiName} }

func (c columnExpr) resolve(t *schema.Table) (resolvedExpr, error) {
	col := t.Column(c.apiName)
	if col == nil {
		return resolvedExpr{}, fmt.Errorf("unknown column %q", c.apiName)
	}
	return resolvedExpr{
		sql:    columnRef(qAlias, col.Name),
		column: col,
	}, nil
}

type countDistinctExpr struct {
	relation string
	column   string
}

// CountDistinct counts distinct values of column across the rows reached
// through relation. Zero related rows yield 0.
func CountDistinct(relation, column string) Expr {
	return countDistinctExpr{relation: relation, column: column}
}

func (c countDistinctExpr) resolve(t *schema.Table) (resolvedExpr, error) {
	rel := t.Relation(c.relation)
	if rel == nil {
		return resolvedExpr{}, fmt.Errorf("unknown relation %q", c.relation)
	}
	return resolvedExpr{
		sql:       fmt.Sprintf(`COUNT(DISTINCT %s)`, columnRef(joinAlias(rel), c.column)),
		relation:  rel,
		aggregate: true,
		ref:       &schema.ColumnRef{Table: rel.Table, Column: c.column},
	}, nil
}

// columnRef returns alias."column".
func columnRef(alias, column string) string {
	return QI(alias) + "." + QI(column)
}

// QI is shorthand for schema.QuoteIdent.
func QI(name string) string { return schema.QuoteIdent(name) }

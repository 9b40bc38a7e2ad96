package query

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// Render turns a plan into SQL for the given placeholder format
// (sq.Dollar for Postgres, sq.Question for SQLite).
func Render(p *Plan, ph sq.PlaceholderFormat) (string, []any, error) {
	columns := make([]string, len(p.projections))
	for i, proj := range p.projections {
		columns[i] = fmt.Sprintf(`%s AS %s`, proj.SQL, QI(proj.Alias))
	}

	qb := sq.Select(columns...).
		From(source(p)).
		PlaceholderFormat(ph)

	for _, j := range p.joins {
		qb = qb.LeftJoin(j.SQL())
	}
	qb = applyConditions(qb, p)
	if len(p.groupBy) > 0 {
		qb = qb.GroupBy(p.groupBy...)
	}
	for _, o := range p.order {
		qb = qb.OrderBy(orderClause(o))
	}
	if p.limit > 0 {
		qb = qb.Limit(p.limit)
	}
	if p.offset > 0 {
		qb = qb.Offset(p.offset)
	}

	return qb.ToSql()
}

// RenderCount returns the total-count query of a list plan: same predicates,
// no joins, no ordering, no paging.
func RenderCount(p *Plan, ph sq.PlaceholderFormat) (string, []any, error) {
	if p.kind != KindList {
		return "", nil, fmt.Errorf("count requested for %s plan", p.kind)
	}
	qb := sq.Select("count(*)").
		From(source(p)).
		PlaceholderFormat(ph)
	qb = applyConditions(qb, p)
	return qb.ToSql()
}

func source(p *Plan) string {
	return QI(p.table) + " " + QI(qAlias)
}

// applyConditions adds invariants then filter predicates. Squirrel omits
// the WHERE clause when there are none.
func applyConditions(qb sq.SelectBuilder, p *Plan) sq.SelectBuilder {
	for _, inv := range p.invariants {
		qb = qb.Where(inv.Sqlizer())
	}
	for _, pred := range p.predicates {
		qb = qb.Where(pred.Sqlizer())
	}
	return qb
}

func orderClause(o OrderTerm) string {
	if o.Desc {
		return o.SQL + " DESC"
	}
	return o.SQL + " ASC"
}

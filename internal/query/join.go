package query

import (
	"fmt"

	"github.com/atlekbai/tourney/internal/schema"
)

// Join is a LEFT JOIN against a related table. Joins are always outer so an
// entity row with no related rows survives with zero-valued aggregates.
type Join struct {
	Relation string
	Table    string
	Alias    string
	On       string
}

// SQL returns the join clause without the LEFT JOIN keyword.
func (j Join) SQL() string {
	return fmt.Sprintf(`%s %s ON %s`, QI(j.Table), QI(j.Alias), j.On)
}

// joinAlias returns the alias for a relation, e.g. "_followers".
func joinAlias(rel *schema.Relation) string { return "_" + rel.Name }

func newJoin(rel *schema.Relation) Join {
	alias := joinAlias(rel)
	return Join{
		Relation: rel.Name,
		Table:    rel.Table,
		Alias:    alias,
		On:       fmt.Sprintf(`%s = %s`, columnRef(alias, rel.ForeignKey), columnRef(qAlias, rel.LocalKey)),
	}
}

// joinPlan accumulates joins in order of first use, one per relation.
type joinPlan struct {
	list []Join
	seen map[string]bool
}

func (p *joinPlan) add(rel *schema.Relation) {
	if rel == nil {
		return
	}
	p.addJoin(newJoin(rel))
}

func (p *joinPlan) addJoin(j Join) {
	if p.seen == nil {
		p.seen = make(map[string]bool)
	}
	if p.seen[j.Relation] {
		return
	}
	p.seen[j.Relation] = true
	p.list = append(p.list, j)
}

func (p *joinPlan) joins() []Join {
	return append([]Join(nil), p.list...)
}

// JoinsFor returns the joins a shape's fields need, derived from the fields
// themselves.
func (e *Entity) JoinsFor(shape string) ([]Join, error) {
	rs, err := e.shape(shape)
	if err != nil {
		return nil, err
	}
	return append([]Join(nil), rs.joins...), nil
}

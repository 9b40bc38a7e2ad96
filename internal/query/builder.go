package query

import (
	"fmt"
	"log/slog"
)

// Observer is notified of assembler events. The metrics package implements it.
type Observer interface {
	FilterDropped(entity string, d DroppedFilter)
	PlanBuilt(entity string, kind PlanKind)
}

// Assembler composes projection, joins, predicates, ordering, and paging
// into a Plan. It holds no per-request state.
type Assembler struct {
	log      *slog.Logger
	observer Observer
}

type Option func(*Assembler)

func WithLogger(l *slog.Logger) Option {
	return func(a *Assembler) { a.log = l }
}

func WithObserver(o Observer) Option {
	return func(a *Assembler) { a.observer = o }
}

func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{log: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ListParams is a list request after boundary validation.
type ListParams struct {
	Shape     string
	Filter    Filter
	Sort      *SortSpec
	Page      Pagination
	WantCount bool
}

// BuildList assembles a list plan: project, join, filter, sort, paginate.
// Without a sort rows come back in primary-key order.
func (a *Assembler) BuildList(e *Entity, params ListParams) (*Plan, error) {
	rs, err := e.shape(params.Shape)
	if err != nil {
		return nil, err
	}
	if err := params.Page.Validate(); err != nil {
		return nil, err
	}

	var jp joinPlan
	for _, j := range rs.joins {
		jp.addJoin(j)
	}
	aggregate := rs.aggregate

	preds, dropped := e.PredicatesFor(params.Filter)
	for _, d := range dropped {
		a.log.Warn("filter ignored",
			"entity", e.name,
			"key", d.Key,
			"reason", string(d.Reason))
		if a.observer != nil {
			a.observer.FilterDropped(e.name, d)
		}
	}

	pk := columnRef(qAlias, e.table.PrimaryKey)
	var order []OrderTerm
	if params.Sort != nil {
		se, err := e.SortExpressionFor(params.Sort.Field)
		if err != nil {
			return nil, err
		}
		desc, err := isDesc(params.Sort.Direction)
		if err != nil {
			return nil, err
		}
		if se.Join != nil {
			jp.addJoin(*se.Join)
		}
		aggregate = aggregate || se.Aggregate
		order = append(order, OrderTerm{SQL: se.SQL, Desc: desc})
		if se.SQL != pk {
			order = append(order, OrderTerm{SQL: pk, Desc: desc})
		}
	} else {
		order = append(order, OrderTerm{SQL: pk})
	}

	plan := &Plan{
		kind:        KindList,
		entity:      e.name,
		table:       e.table.Name,
		projections: append([]Projection(nil), rs.projections...),
		joins:       jp.joins(),
		predicates:  preds,
		dropped:     dropped,
		order:       order,
		page:        params.Page,
		limit:       uint64(params.Page.PageSize),
		offset:      params.Page.Offset(),
		wantCount:   params.WantCount,
	}
	if aggregate || len(plan.joins) > 0 {
		plan.groupBy = []string{pk}
	}

	a.built(e.name, KindList)
	return plan, nil
}

// BuildSingle assembles a plan for one row by primary key. The entity's
// invariants and any extra invariants are always applied; no caller filter
// reaches a single-item plan.
func (a *Assembler) BuildSingle(e *Entity, id any, shape string, extra ...Invariant) (*Plan, error) {
	rs, err := e.shape(shape)
	if err != nil {
		return nil, err
	}

	pk := columnRef(qAlias, e.table.PrimaryKey)
	invariants := []Predicate{{Field: e.table.PrimaryKey, Column: pk, Value: id}}
	invariants = append(invariants, e.invariants...)
	for _, inv := range extra {
		col := e.table.Column(inv.Field)
		if col == nil {
			return nil, fmt.Errorf("%w: entity %s: invariant on unknown column %q", ErrRegistry, e.name, inv.Field)
		}
		invariants = append(invariants, Predicate{
			Field:  inv.Field,
			Column: columnRef(qAlias, col.Name),
			Value:  inv.Value,
		})
	}

	plan := &Plan{
		kind:        KindSingle,
		entity:      e.name,
		table:       e.table.Name,
		projections: append([]Projection(nil), rs.projections...),
		joins:       append([]Join(nil), rs.joins...),
		invariants:  invariants,
		limit:       1,
	}
	if rs.aggregate || len(plan.joins) > 0 {
		plan.groupBy = []string{pk}
	}

	a.built(e.name, KindSingle)
	return plan, nil
}

func (a *Assembler) built(entity string, kind PlanKind) {
	if a.observer != nil {
		a.observer.PlanBuilt(entity, kind)
	}
}

func isDesc(d SortDirection) (bool, error) {
	switch d {
	case "", SortAsc:
		return false, nil
	case SortDesc:
		return true, nil
	}
	return false, &InvalidParamError{Param: "order", Reason: fmt.Sprintf("unknown direction %q", d), Err: ErrInvalidOrder}
}

package query

// PlanKind distinguishes list plans from single-item plans.
type PlanKind string

const (
	KindList   PlanKind = "list"
	KindSingle PlanKind = "single"
)

// OrderTerm is one ORDER BY entry.
type OrderTerm struct {
	SQL  string
	Desc bool
}

// Plan is the engine-agnostic description of one query. It is built fresh
// for every request and never modified afterwards; accessors return copies.
type Plan struct {
	kind        PlanKind
	entity      string
	table       string
	projections []Projection
	joins       []Join
	predicates  []Predicate
	invariants  []Predicate
	dropped     []DroppedFilter
	groupBy     []string
	order       []OrderTerm
	page        Pagination
	limit       uint64
	offset      uint64
	wantCount   bool
}

func (p *Plan) Kind() PlanKind { return p.kind }

func (p *Plan) Entity() string { return p.entity }

func (p *Plan) Table() string { return p.table }

func (p *Plan) Projections() []Projection { return append([]Projection(nil), p.projections...) }

func (p *Plan) Joins() []Join { return append([]Join(nil), p.joins...) }

// Predicates returns the caller-supplied filter predicates that survived.
func (p *Plan) Predicates() []Predicate { return append([]Predicate(nil), p.predicates...) }

// Invariants returns the fixed conditions of a single-item plan, including
// the primary-key match.
func (p *Plan) Invariants() []Predicate { return append([]Predicate(nil), p.invariants...) }

// Dropped returns the filter keys that contributed no predicate.
func (p *Plan) Dropped() []DroppedFilter { return append([]DroppedFilter(nil), p.dropped...) }

func (p *Plan) GroupBy() []string { return append([]string(nil), p.groupBy...) }

func (p *Plan) Order() []OrderTerm { return append([]OrderTerm(nil), p.order...) }

func (p *Plan) Page() Pagination { return p.page }

func (p *Plan) Limit() uint64 { return p.limit }

func (p *Plan) Offset() uint64 { return p.offset }

// WantCount reports whether the total matching-row count was requested.
func (p *Plan) WantCount() bool { return p.wantCount }

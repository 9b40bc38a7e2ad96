package query

import (
	"fmt"
	"sort"

	"github.com/atlekbai/tourney/internal/schema"
)

const qAlias = "_e"

// Alias returns the alias of the primary table in generated SQL.
func Alias() string { return qAlias }

// Invariant is a fixed equality every single-item lookup applies.
type Invariant struct {
	Field string // column API name
	Value any
}

// Requires builds an Invariant.
func Requires(field string, value any) Invariant {
	return Invariant{Field: field, Value: value}
}

// EntityDef is the declarative description of one entity. Entities supply
// data; all behavior lives in Entity.
type EntityDef struct {
	Name         string
	Table        *schema.Table
	Shapes       []ShapeDef // poorest first
	DefaultShape string
	Filterable   []string        // filter allow-list, column API names
	Sorts        map[string]Expr // sort key -> expression
	Invariants   []Invariant     // applied to single-item lookups
}

// Entity is a compiled EntityDef. It is immutable once built and safe for
// concurrent use.
type Entity struct {
	name         string
	table        *schema.Table
	shapes       map[string]*resolvedShape
	shapeOrder   []string
	defaultShape string
	filterable   map[string]bool
	sorts        map[string]SortExpr
	sortKeys     []string
	invariants   []Predicate
	refs         []schema.ColumnRef
}

// NewEntity compiles a definition. Any inconsistency between shapes,
// columns, relations, filters, and sorts is reported here so it fails at
// startup rather than per request.
func NewEntity(def EntityDef) (*Entity, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("%w: entity has no name", ErrRegistry)
	}
	if def.Table == nil {
		return nil, fmt.Errorf("%w: entity %s has no table", ErrRegistry, def.Name)
	}

	e := &Entity{
		name:         def.Name,
		table:        def.Table,
		defaultShape: def.DefaultShape,
		filterable:   make(map[string]bool, len(def.Filterable)),
		sorts:        make(map[string]SortExpr, len(def.Sorts)),
	}

	shapes, order, err := resolveShapes(e, def.Shapes)
	if err != nil {
		return nil, fmt.Errorf("%w: entity %s: %v", ErrRegistry, def.Name, err)
	}
	e.shapes, e.shapeOrder = shapes, order

	if e.defaultShape == "" {
		e.defaultShape = order[0]
	}
	if _, ok := e.shapes[e.defaultShape]; !ok {
		return nil, fmt.Errorf("%w: entity %s: default shape %q is not declared", ErrRegistry, def.Name, e.defaultShape)
	}

	for _, key := range def.Filterable {
		if def.Table.Column(key) == nil {
			return nil, fmt.Errorf("%w: entity %s: filterable %q is not a column", ErrRegistry, def.Name, key)
		}
		e.filterable[key] = true
	}

	for key, expr := range def.Sorts {
		re, err := expr.resolve(def.Table)
		if err != nil {
			return nil, fmt.Errorf("%w: entity %s: sort %q: %v", ErrRegistry, def.Name, key, err)
		}
		e.addRef(re)
		se := SortExpr{Key: key, SQL: re.sql, Aggregate: re.aggregate}
		if re.relation != nil {
			j := newJoin(re.relation)
			se.Join = &j
		}
		e.sorts[key] = se
		e.sortKeys = append(e.sortKeys, key)
	}
	sort.Strings(e.sortKeys)

	for _, inv := range def.Invariants {
		col := def.Table.Column(inv.Field)
		if col == nil {
			return nil, fmt.Errorf("%w: entity %s: invariant on unknown column %q", ErrRegistry, def.Name, inv.Field)
		}
		if !matchesType(col.Type, inv.Value) {
			return nil, fmt.Errorf("%w: entity %s: invariant %q has %T, column is %s", ErrRegistry, def.Name, inv.Field, inv.Value, col.Type)
		}
		e.invariants = append(e.invariants, Predicate{
			Field:  inv.Field,
			Column: columnRef(qAlias, col.Name),
			Value:  inv.Value,
		})
	}

	return e, nil
}

// MustEntity is NewEntity for package-level catalogs; it panics on error.
func MustEntity(def EntityDef) *Entity {
	e, err := NewEntity(def)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Entity) Name() string { return e.name }

func (e *Entity) Table() *schema.Table { return e.table }

func (e *Entity) DefaultShape() string { return e.defaultShape }

// Filterable reports whether key is on the entity's filter allow-list.
func (e *Entity) Filterable(key string) bool { return e.filterable[key] }

func (e *Entity) addRef(re resolvedExpr) {
	if re.ref == nil {
		return
	}
	for _, r := range e.refs {
		if r == *re.ref {
			return
		}
	}
	e.refs = append(e.refs, *re.ref)
}

// ColumnRefs returns the related-table columns the entity's expressions read.
func (e *Entity) ColumnRefs() []schema.ColumnRef {
	return append([]schema.ColumnRef(nil), e.refs...)
}

// Registry holds the compiled entities of a process. It is built once at
// startup and only read afterwards.
type Registry struct {
	entities map[string]*Entity
	names    []string
}

// NewRegistry indexes entities by name.
func NewRegistry(entities ...*Entity) (*Registry, error) {
	r := &Registry{entities: make(map[string]*Entity, len(entities))}
	for _, e := range entities {
		if _, dup := r.entities[e.name]; dup {
			return nil, fmt.Errorf("%w: duplicate entity %q", ErrRegistry, e.name)
		}
		r.entities[e.name] = e
		r.names = append(r.names, e.name)
	}
	sort.Strings(r.names)
	return r, nil
}

// Get returns the entity named name, or nil.
func (r *Registry) Get(name string) *Entity {
	return r.entities[name]
}

// Names returns the registered entity names in order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// ColumnRefs returns the related-table columns read by any registered
// entity, without duplicates, ordered by table then column.
func (r *Registry) ColumnRefs() []schema.ColumnRef {
	seen := make(map[schema.ColumnRef]bool)
	var refs []schema.ColumnRef
	for _, name := range r.names {
		for _, ref := range r.entities[name].refs {
			if !seen[ref] {
				seen[ref] = true
				refs = append(refs, ref)
			}
		}
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Table != refs[j].Table {
			return refs[i].Table < refs[j].Table
		}
		return refs[i].Column < refs[j].Column
	})
	return refs
}

// Tables returns the descriptor of every registered entity.
func (r *Registry) Tables() []*schema.Table {
	tables := make([]*schema.Table, 0, len(r.names))
	for _, name := range r.names {
		tables = append(tables, r.entities[name].table)
	}
	return tables
}

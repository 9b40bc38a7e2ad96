package query

import (
	"fmt"
)

// Field is one output column of a shape.
type Field struct {
	Alias string
	Expr  Expr
}

// Col is a Field that exposes a table column under its API name.
func Col(apiName string) Field {
	return Field{Alias: apiName, Expr: Column(apiName)}
}

// Cols is shorthand for several Col fields.
func Cols(apiNames ...string) []Field {
	fields := make([]Field, len(apiNames))
	for i, name := range apiNames {
		fields[i] = Col(name)
	}
	return fields
}

// Agg is a Field backed by an aggregate expression.
func Agg(alias string, expr Expr) Field {
	return Field{Alias: alias, Expr: expr}
}

// ShapeDef declares a shape as the fields it adds on top of its predecessor
// in the declaration order.
type ShapeDef struct {
	Name string
	Adds []Field
}

// Shape builds a ShapeDef from a flat list of additions.
func Shape(name string, adds ...[]Field) ShapeDef {
	var fields []Field
	for _, group := range adds {
		fields = append(fields, group...)
	}
	return ShapeDef{Name: name, Adds: fields}
}

// Projection is a resolved output column.
type Projection struct {
	Alias     string
	SQL       string
	Aggregate bool
}

// resolvedShape is a shape flattened at compile time: every field of every
// predecessor plus its own, and the joins those fields need.
type resolvedShape struct {
	name        string
	rank        int
	projections []Projection
	joins       []Join
	aggregate   bool
}

// resolveShapes flattens the ordered diffs into cumulative shapes. A shape
// that re-declares an alias a predecessor already exposes is rejected.
func resolveShapes(e *Entity, defs []ShapeDef) (map[string]*resolvedShape, []string, error) {
	if len(defs) == 0 {
		return nil, nil, fmt.Errorf("no shapes declared")
	}

	var (
		shapes = make(map[string]*resolvedShape, len(defs))
		order  = make([]string, 0, len(defs))
		seen   = make(map[string]bool)
		acc    []Projection
		jp     joinPlan
	)

	for rank, def := range defs {
		if def.Name == "" {
			return nil, nil, fmt.Errorf("shape #%d has no name", rank)
		}
		if _, dup := shapes[def.Name]; dup {
			return nil, nil, fmt.Errorf("duplicate shape %q", def.Name)
		}

		for _, f := range def.Adds {
			if seen[f.Alias] {
				return nil, nil, fmt.Errorf("shape %s: field %q already exposed by a previous shape", def.Name, f.Alias)
			}
			seen[f.Alias] = true

			re, err := f.Expr.resolve(e.table)
			if err != nil {
				return nil, nil, fmt.Errorf("shape %s: field %q: %w", def.Name, f.Alias, err)
			}
			acc = append(acc, Projection{Alias: f.Alias, SQL: re.sql, Aggregate: re.aggregate})
			jp.add(re.relation)
			e.addRef(re)
		}

		rs := &resolvedShape{
			name:        def.Name,
			rank:        rank,
			projections: append([]Projection(nil), acc...),
			joins:       jp.joins(),
		}
		for _, p := range rs.projections {
			if p.Aggregate {
				rs.aggregate = true
				break
			}
		}
		shapes[def.Name] = rs
		order = append(order, def.Name)
	}

	return shapes, order, nil
}

// shape returns the resolved shape for name, or the default for "".
func (e *Entity) shape(name string) (*resolvedShape, error) {
	if name == "" {
		name = e.defaultShape
	}
	rs, ok := e.shapes[name]
	if !ok {
		return nil, &InvalidParamError{Param: "responseType", Reason: fmt.Sprintf("unknown shape %q for %s", name, e.name), Err: ErrUnknownShape}
	}
	return rs, nil
}

// FieldsFor returns the projection of a shape. An empty name selects the
// entity's default shape; an unknown name is an invalid parameter.
func (e *Entity) FieldsFor(shape string) ([]Projection, error) {
	rs, err := e.shape(shape)
	if err != nil {
		return nil, err
	}
	return append([]Projection(nil), rs.projections...), nil
}

// Shapes returns the shape names in declaration order, poorest first.
func (e *Entity) Shapes() []string {
	return append([]string(nil), e.shapeOrder...)
}

// RicherThan reports whether shape a comes after shape b in the declared order.
func (e *Entity) RicherThan(a, b string) bool {
	ra, oka := e.shapes[a]
	rb, okb := e.shapes[b]
	return oka && okb && ra.rank > rb.rank
}

package query

import (
	"sort"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/atlekbai/tourney/internal/schema"
)

// Filter is a sparse key/value request filter. Keys are column API names.
type Filter map[string]any

// DropReason says why a filter key contributed no predicate.
type DropReason string

const (
	DropEmpty         DropReason = "empty"
	DropUnknown       DropReason = "unknown"
	DropTypeMismatch  DropReason = "type_mismatch"
	DropNotFilterable DropReason = "not_filterable"
)

// DroppedFilter records a filter key that was ignored.
type DroppedFilter struct {
	Key    string
	Reason DropReason
}

// Predicate is a single equality condition on an entity column.
type Predicate struct {
	Field  string // API name
	Column string // qualified SQL column
	Value  any
}

// Sqlizer returns the squirrel condition for the predicate.
func (p Predicate) Sqlizer() sq.Sqlizer {
	return sq.Eq{p.Column: p.Value}
}

// PredicatesFor turns a filter into equality predicates, AND-ed by the
// caller. It never fails: keys with falsy values, unknown keys, values whose
// type does not match the column, and keys outside the entity's filter
// allow-list are dropped and reported instead.
//
// Falsy values (empty string, zero, false, zero time) mean "not provided",
// so filtering on false or 0 is not expressible.
func (e *Entity) PredicatesFor(filter Filter) ([]Predicate, []DroppedFilter) {
	if len(filter) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		preds   []Predicate
		dropped []DroppedFilter
	)
	for _, key := range keys {
		value := filter[key]
		if isEmptyValue(value) {
			dropped = append(dropped, DroppedFilter{Key: key, Reason: DropEmpty})
			continue
		}

		col := e.table.Column(key)
		if col == nil {
			dropped = append(dropped, DroppedFilter{Key: key, Reason: DropUnknown})
			continue
		}

		if !matchesType(col.Type, value) {
			dropped = append(dropped, DroppedFilter{Key: key, Reason: DropTypeMismatch})
			continue
		}

		if !e.filterable[key] {
			dropped = append(dropped, DroppedFilter{Key: key, Reason: DropNotFilterable})
			continue
		}

		preds = append(preds, Predicate{
			Field:  key,
			Column: columnRef(qAlias, col.Name),
			Value:  value,
		})
	}

	return preds, dropped
}

func isEmptyValue(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	case int:
		return v == 0
	case int8:
		return v == 0
	case int16:
		return v == 0
	case int32:
		return v == 0
	case int64:
		return v == 0
	case uint:
		return v == 0
	case uint8:
		return v == 0
	case uint16:
		return v == 0
	case uint32:
		return v == 0
	case uint64:
		return v == 0
	case float32:
		return v == 0
	case float64:
		return v == 0
	case time.Time:
		return v.IsZero()
	}
	return false
}

func matchesType(t schema.ColumnType, v any) bool {
	switch t {
	case schema.TypeString:
		_, ok := v.(string)
		return ok
	case schema.TypeNumber:
		switch v.(type) {
		case int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64,
			float32, float64:
			return true
		}
		return false
	case schema.TypeBoolean:
		_, ok := v.(bool)
		return ok
	case schema.TypeDate:
		_, ok := v.(time.Time)
		return ok
	}
	return false
}

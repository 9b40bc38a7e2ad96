package query

import (
	"fmt"
	"strings"
)

// SortDirection is ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection accepts "asc"/"desc" in any case. Empty means ascending.
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToLower(s) {
	case "", "asc":
		return SortAsc, nil
	case "desc":
		return SortDesc, nil
	}
	return "", fmt.Errorf("invalid sort order %q, expected asc or desc", s)
}

// SortSpec is a requested ordering.
type SortSpec struct {
	Field     string
	Direction SortDirection
}

// SortExpr is a resolved sort registry entry.
type SortExpr struct {
	Key       string
	SQL       string
	Join      *Join // nil when the expression needs no join
	Aggregate bool
}

// SortExpressionFor looks up a sort key. Unregistered keys are a client error.
func (e *Entity) SortExpressionFor(key string) (SortExpr, error) {
	se, ok := e.sorts[key]
	if !ok {
		return SortExpr{}, &InvalidParamError{
			Param:  "sort",
			Reason: fmt.Sprintf("%s cannot be sorted by %q", e.name, key),
			Err:    ErrUnknownSortKey,
		}
	}
	return se, nil
}

// SortKeys returns the registered sort keys.
func (e *Entity) SortKeys() []string {
	return append([]string(nil), e.sortKeys...)
}

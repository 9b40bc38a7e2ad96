package query

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/atlekbai/tourney/internal/schema"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination is a 1-indexed page request.
type Pagination struct {
	Page     int
	PageSize int
}

// DefaultPagination is the first page at the default size.
func DefaultPagination() Pagination {
	return Pagination{Page: DefaultPage, PageSize: DefaultPageSize}
}

// Validate rejects pages below 1, sizes outside [1, MaxPageSize] and pages
// whose offset does not fit in int64.
// Out-of-range values are never clamped.
func (p Pagination) Validate() error {
	if p.Page < 1 {
		return invalidPagination(fmt.Sprintf("page must be >= 1, got %d", p.Page))
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		return invalidPagination(fmt.Sprintf("pageSize must be between 1 and %d, got %d", MaxPageSize, p.PageSize))
	}
	if int64(p.Page-1) > math.MaxInt64/int64(p.PageSize) {
		return invalidPagination(fmt.Sprintf("page %d is out of range for pageSize %d", p.Page, p.PageSize))
	}
	return nil
}

// Offset is the number of rows before the first row of the page. It is only
// meaningful for a pagination that passed Validate.
func (p Pagination) Offset() uint64 {
	return uint64(p.Page-1) * uint64(p.PageSize)
}

var reservedParams = map[string]bool{
	"responseType":    true,
	"sort":            true,
	"order":           true,
	"page":            true,
	"pageSize":        true,
	"returnFullCount": true,
}

// ParamsInput is the raw list request as a transport decodes it.
type ParamsInput struct {
	ResponseType    string
	Filter          map[string]any
	SortField       string
	SortOrder       string
	Page            *int
	PageSize        *int
	ReturnFullCount bool
}

// ParseParams validates a list request for e and coerces filter values to
// the semantic type of the column they name.
func ParseParams(e *Entity, in ParamsInput) (ListParams, error) {
	p := ListParams{
		Shape:     in.ResponseType,
		Page:      DefaultPagination(),
		WantCount: in.ReturnFullCount,
	}

	if _, err := e.shape(in.ResponseType); err != nil {
		return ListParams{}, err
	}

	if in.Page != nil {
		p.Page.Page = *in.Page
	}
	if in.PageSize != nil {
		p.Page.PageSize = *in.PageSize
	}
	if err := p.Page.Validate(); err != nil {
		return ListParams{}, err
	}

	if in.SortField != "" {
		dir, err := ParseSortDirection(in.SortOrder)
		if err != nil {
			return ListParams{}, &InvalidParamError{Param: "order", Reason: err.Error(), Err: ErrInvalidOrder}
		}
		p.Sort = &SortSpec{Field: in.SortField, Direction: dir}
	} else if in.SortOrder != "" {
		return ListParams{}, &InvalidParamError{Param: "order", Reason: "order given without sort", Err: ErrInvalidOrder}
	}

	if len(in.Filter) > 0 {
		p.Filter = make(Filter, len(in.Filter))
		for key, raw := range in.Filter {
			if col := e.table.Column(key); col != nil {
				p.Filter[key] = CoerceValue(col.Type, raw)
			} else {
				p.Filter[key] = raw
			}
		}
	}

	return p, nil
}

// ParseValues reads a list request from query-string values. Keys other
// than the reserved paging/sorting/shape keys are filters.
func ParseValues(e *Entity, q url.Values) (ListParams, error) {
	in := ParamsInput{
		ResponseType: q.Get("responseType"),
		SortField:    q.Get("sort"),
		SortOrder:    q.Get("order"),
	}

	var err error
	if in.Page, err = intParam(q, "page"); err != nil {
		return ListParams{}, err
	}
	if in.PageSize, err = intParam(q, "pageSize"); err != nil {
		return ListParams{}, err
	}
	if raw := q.Get("returnFullCount"); raw != "" {
		in.ReturnFullCount, err = strconv.ParseBool(raw)
		if err != nil {
			return ListParams{}, &InvalidParamError{Param: "returnFullCount", Reason: fmt.Sprintf("%q is not a boolean", raw)}
		}
	}

	for key, values := range q {
		if reservedParams[key] || len(values) == 0 {
			continue
		}
		if in.Filter == nil {
			in.Filter = make(map[string]any)
		}
		in.Filter[key] = values[0]
	}

	return ParseParams(e, in)
}

// ParseQueryParams reads a list request from r's URL.
func ParseQueryParams(r *http.Request, e *Entity) (ListParams, error) {
	return ParseValues(e, r.URL.Query())
}

func intParam(q url.Values, name string) (*int, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, invalidPagination(fmt.Sprintf("%s %q is not an integer", name, raw))
	}
	return &n, nil
}

// CoerceValue converts transport values (strings from query strings, float64
// from JSON) to the Go type matching t. Values that do not convert are
// returned unchanged.
func CoerceValue(t schema.ColumnType, v any) any {
	switch t {
	case schema.TypeNumber:
		switch x := v.(type) {
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
			if err != nil {
				return v
			}
			return wholeNumber(f)
		case float64:
			return wholeNumber(x)
		}
	case schema.TypeBoolean:
		if s, ok := v.(string); ok {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return v
			}
			return b
		}
	case schema.TypeDate:
		if s, ok := v.(string); ok {
			if ts, err := time.Parse(time.RFC3339, s); err == nil {
				return ts
			}
			if ts, err := time.Parse(time.DateOnly, s); err == nil {
				return ts
			}
		}
	}
	return v
}

func wholeNumber(f float64) any {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f)
	}
	return f
}

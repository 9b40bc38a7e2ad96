package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/atlekbai/tourney/internal/query"
	"github.com/atlekbai/tourney/internal/store"
)

const (
	QueryServiceName = "tourney.query.v1.QueryService"

	ListProcedure = "/" + QueryServiceName + "/List"
	GetProcedure  = "/" + QueryServiceName + "/Get"
)

// QueryService serves list and single-item lookups over Connect. Requests
// and responses are google.protobuf.Struct, i.e. plain JSON objects.
type QueryService struct {
	registry  *query.Registry
	assembler *query.Assembler
	store     *store.Store
}

func NewQueryService(registry *query.Registry, assembler *query.Assembler, st *store.Store) *QueryService {
	return &QueryService{registry: registry, assembler: assembler, store: st}
}

func (s *QueryService) RegisterHandler(interceptors ...connect.Interceptor) (string, http.Handler) {
	opts := connect.WithInterceptors(interceptors...)
	mux := http.NewServeMux()
	mux.Handle(ListProcedure, connect.NewUnaryHandler(ListProcedure, s.List, opts))
	mux.Handle(GetProcedure, connect.NewUnaryHandler(GetProcedure, s.Get, opts))
	return "/" + QueryServiceName + "/", mux
}

// List expects:
//
//	{"entity": "user", "responseType": "BASE", "filter": {...},
//	 "sort": {"field": "username", "order": "asc"},
//	 "pagination": {"page": 1, "pageSize": 10}, "returnFullCount": true}
func (s *QueryService) List(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	msg := req.Msg.AsMap()

	e, err := s.entity(msg)
	if err != nil {
		return nil, err
	}

	in, err := listInput(msg)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	params, err := query.ParseParams(e, in)
	if err != nil {
		return nil, toConnectError(err)
	}

	plan, err := s.assembler.BuildList(e, params)
	if err != nil {
		return nil, toConnectError(err)
	}

	page, err := s.store.List(ctx, plan)
	if err != nil {
		return nil, toConnectError(err)
	}

	body := map[string]any{
		"page":     page.Page,
		"pageSize": page.PageSize,
		"results":  page.Results,
	}
	if page.TotalCount != nil {
		body["totalCount"] = *page.TotalCount
	}

	out, err := toStruct(body)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("marshal result: %w", err))
	}
	return connect.NewResponse(out), nil
}

// Get expects {"entity": "user", "id": "<uuid>", "responseType": "BASE"}.
func (s *QueryService) Get(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	msg := req.Msg.AsMap()

	e, err := s.entity(msg)
	if err != nil {
		return nil, err
	}

	rawID, _ := msg["id"].(string)
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid ID format: %w", err))
	}

	shape, _ := msg["responseType"].(string)
	plan, err := s.assembler.BuildSingle(e, id.String(), shape)
	if err != nil {
		return nil, toConnectError(err)
	}

	row, err := s.store.Get(ctx, plan)
	if err != nil {
		return nil, toConnectError(err)
	}

	out, err := toStruct(row)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("marshal result: %w", err))
	}
	return connect.NewResponse(out), nil
}

func (s *QueryService) entity(msg map[string]any) (*query.Entity, error) {
	name, _ := msg["entity"].(string)
	e := s.registry.Get(name)
	if e == nil {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("no entity registered with name %q", name))
	}
	return e, nil
}

// listInput decodes the JSON request body into boundary parameters.
func listInput(msg map[string]any) (query.ParamsInput, error) {
	var in query.ParamsInput
	in.ResponseType, _ = msg["responseType"].(string)
	in.ReturnFullCount, _ = msg["returnFullCount"].(bool)

	if f, ok := msg["filter"]; ok && f != nil {
		filter, ok := f.(map[string]any)
		if !ok {
			return in, fmt.Errorf("filter must be an object")
		}
		in.Filter = filter
	}

	if raw, ok := msg["sort"]; ok && raw != nil {
		sort, ok := raw.(map[string]any)
		if !ok {
			return in, fmt.Errorf("sort must be an object")
		}
		in.SortField, _ = sort["field"].(string)
		in.SortOrder, _ = sort["order"].(string)
	}

	if raw, ok := msg["pagination"]; ok && raw != nil {
		pg, ok := raw.(map[string]any)
		if !ok {
			return in, fmt.Errorf("pagination must be an object")
		}
		var err error
		if in.Page, err = intField(pg, "page"); err != nil {
			return in, err
		}
		if in.PageSize, err = intField(pg, "pageSize"); err != nil {
			return in, err
		}
	}

	return in, nil
}

func intField(m map[string]any, key string) (*int, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return nil, nil
	}
	f, ok := raw.(float64)
	if !ok || f != math.Trunc(f) {
		return nil, fmt.Errorf("%s must be an integer", key)
	}
	n := int(f)
	return &n, nil
}

func toConnectError(err error) error {
	switch {
	case query.IsInvalidParam(err):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, store.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	default:
		return connect.NewError(connect.CodeInternal, fmt.Errorf("query failed: %w", err))
	}
}

// toStruct round-trips v through JSON so driver types (time.Time, int32)
// become values structpb accepts.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlekbai/tourney/internal/catalog"
	"github.com/atlekbai/tourney/internal/query"
	"github.com/atlekbai/tourney/internal/store/storetest"
)

func newRouter(t *testing.T) *mux.Router {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(catalog.MustNew(), query.NewAssembler(query.WithLogger(log)), storetest.New(t))
	r := mux.NewRouter()
	h.Register(r)
	return r
}

func get(t *testing.T, r http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

type listBody struct {
	TotalCount *int64           `json:"total_count"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	Results    []map[string]any `json:"results"`
}

func TestList(t *testing.T) {
	r := newRouter(t)

	rec := get(t, r, "/api/user?responseType=MINI_WITH_COUNTRY&country=HR&sort=username&pageSize=2&returnFullCount=true")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode[listBody](t, rec)
	require.NotNil(t, body.TotalCount)
	assert.Equal(t, int64(3), *body.TotalCount)
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 2, body.PageSize)
	require.Len(t, body.Results, 2)
	assert.Equal(t, "ann", body.Results[0]["username"])
	assert.Equal(t, "HR", body.Results[0]["country"])
	assert.Equal(t, "cid", body.Results[1]["username"])
}

func TestListOmitsCountUnlessRequested(t *testing.T) {
	r := newRouter(t)

	rec := get(t, r, "/api/user?responseType=MINI")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "total_count")
}

func TestListDateFilter(t *testing.T) {
	r := newRouter(t)

	for _, value := range []string{"2024-01-01", "2024-01-01T02:00:00%2B02:00"} {
		rec := get(t, r, "/api/user?responseType=MINI&returnFullCount=true&createdAt="+value)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := decode[listBody](t, rec)
		require.NotNil(t, body.TotalCount, value)
		assert.Equal(t, int64(4), *body.TotalCount, value)
		assert.Len(t, body.Results, 4, value)
	}

	rec := get(t, r, "/api/user?responseType=MINI&createdAt=2024-01-02")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[listBody](t, rec).Results)
}

func TestListEmptyPageIsEmptyArray(t *testing.T) {
	r := newRouter(t)

	rec := get(t, r, "/api/user?responseType=MINI&page=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"results":[]`)
}

func TestListClientErrors(t *testing.T) {
	r := newRouter(t)

	for _, target := range []string{
		"/api/user?responseType=HUGE",
		"/api/user?sort=email",
		"/api/user?pageSize=500",
		"/api/user?page=0",
		"/api/user?page=abc",
	} {
		rec := get(t, r, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, "INVALID_PARAM", decode[ErrorResponse](t, rec).Code, target)
	}
}

func TestUnknownEntity(t *testing.T) {
	r := newRouter(t)

	rec := get(t, r, "/api/chess-club")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "ENTITY_NOT_FOUND", decode[ErrorResponse](t, rec).Code)
}

func TestCount(t *testing.T) {
	r := newRouter(t)

	rec := get(t, r, "/api/user/count?country=HR&pageSize=1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, map[string]int64{"count": 3}, decode[map[string]int64](t, rec))
}

func TestGetByID(t *testing.T) {
	r := newRouter(t)

	rec := get(t, r, "/api/user/"+storetest.Ann+"?responseType=BASE")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	row := decode[map[string]any](t, rec)
	assert.Equal(t, "ann", row["username"])
	assert.Equal(t, float64(2), row["followers"])
	assert.NotContains(t, row, "email")
}

func TestGetByIDNotFound(t *testing.T) {
	r := newRouter(t)

	for _, id := range []string{storetest.Dan, "7d4d5a7e-0000-4000-8000-000000000000"} {
		rec := get(t, r, "/api/user/"+id)
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
		assert.Equal(t, "RECORD_NOT_FOUND", decode[ErrorResponse](t, rec).Code)
	}
}

func TestGetByIDInvalid(t *testing.T) {
	r := newRouter(t)

	rec := get(t, r, "/api/user/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, r, "/api/user/"+storetest.Ann+"?responseType=HUGE")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atlekbai/tourney/internal/query"
	"github.com/atlekbai/tourney/internal/store"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// ListResponse is the body of a list request.
type ListResponse struct {
	TotalCount *int64      `json:"total_count,omitempty"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	Results    []store.Row `json:"results"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message, details string) {
	writeJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// writeQueryError maps query and store errors onto HTTP statuses.
func writeQueryError(w http.ResponseWriter, err error) {
	switch {
	case query.IsInvalidParam(err):
		writeError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error(), "")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "RECORD_NOT_FOUND", "Record not found", "")
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Query failed", err.Error())
	}
}

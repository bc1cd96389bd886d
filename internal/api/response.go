package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chainaware/trace-engine/internal/errs"
)

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the standard error envelope. Violations are present
// only for validation failures.
type errorResponse struct {
	Error      string   `json:"error"`
	Violations []string `json:"violations,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps the error taxonomy onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrNoData):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		if ve, ok := errs.AsValidation(err); ok {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error:      "validation failed",
				Violations: ve.Violations,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

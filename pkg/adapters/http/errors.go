package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aretw0/knots/pkg/domain"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps engine errors onto HTTP status codes and stable error codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, domain.ErrStructural):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrConditionUnmet):
		return http.StatusConflict, "condition_unmet"
	case errors.Is(err, domain.ErrMissingResolver):
		return http.StatusUnprocessableEntity, "missing_resolver"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

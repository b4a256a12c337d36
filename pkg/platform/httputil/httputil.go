// Package httputil maps domain errors onto HTTP responses and provides small
// JSON response helpers shared by all handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "capela/pkg/domain-errors"
)

type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error code onto an HTTP status and writes the
// error body. Internal errors omit the description so infrastructure details
// never leak to callers.
func WriteError(w http.ResponseWriter, err error) {
	var de *dErrors.Error
	if !errors.As(err, &de) {
		WriteJSON(w, http.StatusInternalServerError, errorBody{Error: "internal_error"})
		return
	}

	switch de.Code {
	case dErrors.CodeBadRequest, dErrors.CodeInvariantViolation:
		WriteJSON(w, http.StatusBadRequest, errorBody{Error: string(de.Code), Description: de.Message})
	case dErrors.CodeUnauthorized:
		WriteJSON(w, http.StatusUnauthorized, errorBody{Error: string(de.Code), Description: de.Message})
	case dErrors.CodeForbidden:
		WriteJSON(w, http.StatusForbidden, errorBody{Error: string(de.Code), Description: de.Message})
	case dErrors.CodeNotFound:
		WriteJSON(w, http.StatusNotFound, errorBody{Error: string(de.Code), Description: de.Message})
	case dErrors.CodeConflict:
		WriteJSON(w, http.StatusConflict, errorBody{Error: string(de.Code), Description: de.Message})
	case dErrors.CodeUnavailable:
		WriteJSON(w, http.StatusServiceUnavailable, errorBody{Error: string(de.Code), Description: de.Message})
	default:
		WriteJSON(w, http.StatusInternalServerError, errorBody{Error: "internal_error"})
	}
}

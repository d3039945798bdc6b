package httpapi

import (
	"encoding/json"
	"net/http"

	"adapterd/internal/engine"
	"adapterd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// statusForError maps engine errors to HTTP status codes:
//
//	not initialized / runtime unavailable -> 503
//	invalid adapter bundle                -> 422
//	adapter mismatch                      -> 409
//	fatal                                 -> 500
func statusForError(err error) int {
	switch {
	case engine.IsNotInitialized(err), engine.IsRuntimeUnavailable(err):
		return http.StatusServiceUnavailable
	case engine.IsInvalidAdapter(err):
		return http.StatusUnprocessableEntity
	case engine.IsAdapterMismatch(err):
		return http.StatusConflict
	case engine.IsFatal(err):
		return http.StatusInternalServerError
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

func writeEngineError(w http.ResponseWriter, err error) {
	writeJSONError(w, statusForError(err), err.Error())
}

// Package httputil holds the JSON response helpers and middleware shared by
// every HTTP handler.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"gochat/internal/errs"
)

const maxBodyBytes = 1 << 20

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage writes the {"message": ...} body every non-data response uses.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"message": msg})
}

// DecodeJSON reads a JSON body into v. Malformed bodies are invalid input.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errs.New(errs.ErrInvalidInput, "Invalid request body")
	}
	return nil
}

// StatusFor maps a service error onto an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrInvalidInput),
		errors.Is(err, errs.ErrAlreadyExists),
		errors.Is(err, errs.ErrUnauthorized):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteError answers with the mapped status. Client errors carry their
// public message; server errors are logged and answered generically.
func WriteError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.Error(err),
		)
		WriteMessage(w, status, "Server error")
		return
	}

	msg := http.StatusText(status)
	var pub *errs.Public
	if errors.As(err, &pub) {
		msg = pub.Msg
	}
	WriteMessage(w, status, msg)
}

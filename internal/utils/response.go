package utils

import (
	"encoding/json"
	"net/http"
	"time"

	"ms-events/internal/apperror"
)

// ErrorBody is the JSON shape of every non-2xx response.
type ErrorBody struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// WriteJSON writes data as the response body with the given status code.
// A nil data writes only the status (used for 204 responses).
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	if data == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError maps err to an HTTP status via the apperror taxonomy and writes
// the standard error body.
func WriteError(w http.ResponseWriter, message string, err error) {
	status := apperror.HTTPStatus(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorBody{
		Success:   false,
		Message:   message,
		Error:     err.Error(),
		Timestamp: time.Now(),
	})
}

// WriteBadRequest reports a malformed request body or query parameter.
func WriteBadRequest(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(ErrorBody{
		Success:   false,
		Message:   message,
		Timestamp: time.Now(),
	})
}

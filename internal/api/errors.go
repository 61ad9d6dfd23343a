package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// StatusError is returned for any non-2xx response from the backend.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("api: %s %s returned %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("api: %s %s returned %d: %s", e.Method, e.Path, e.Status, body)
}

// Message extracts the server's human-readable message from a JSON error body.
// The backend has used "message", "mesage" and "error" over time.
func (e *StatusError) Message() string {
	var payload map[string]any
	if err := json.Unmarshal([]byte(e.Body), &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "mesage", "error"} {
		if s, ok := payload[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// IsConflict reports whether err is a 409 from the backend.
func IsConflict(err error) bool {
	return HasStatus(err, http.StatusConflict)
}

// HasStatus reports whether err is a StatusError with the given code.
func HasStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}

// ServerMessage returns the backend message carried by err, or fallback.
func ServerMessage(err error, fallback string) string {
	var se *StatusError
	if errors.As(err, &se) {
		if msg := se.Message(); msg != "" {
			return msg
		}
	}
	return fallback
}

package common

import (
	"fmt"
	"net/http"
)

type APIError struct {
	Status  int            `json:"-"`
	Message string         `json:"error"`
	Fields  map[string]any `json:"fields,omitempty"`
}

func (e APIError) Error() string {
	return e.Message
}

func Errf(status int, format string, args ...any) APIError {
	return APIError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// NewAPIError creates an APIError with status, message, and optional fields
func NewAPIError(status int, message string, fields map[string]any) APIError {
	return APIError{
		Status:  status,
		Message: message,
		Fields:  fields,
	}
}

// ValidationErr reports a caller mistake that should never reach the job store.
func ValidationErr(format string, args ...any) APIError {
	return Errf(http.StatusBadRequest, format, args...)
}

// InternalErr hides internal failure detail from callers; the wrapped cause
// only goes to the logs.
func InternalErr(message string) APIError {
	return Errf(http.StatusInternalServerError, message)
}

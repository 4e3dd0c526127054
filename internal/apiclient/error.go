package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mkrupp/skillsphere/internal/domain"
)

// Error is a non-2xx backend response.
type Error struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	}

	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

// Is maps status codes onto the domain failure classes.
func (e *Error) Is(target error) bool {
	switch target { //nolint:errorlint
	case domain.ErrBadRequest:
		return e.Status == http.StatusBadRequest
	case domain.ErrUnauthenticated:
		return e.Status == http.StatusUnauthorized
	case domain.ErrNotFound:
		return e.Status == http.StatusNotFound
	case domain.ErrConflict:
		return e.Status == http.StatusConflict
	default:
		return false
	}
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func newError(method, path string, status int, body []byte) *Error {
	var parsed errorBody

	message := ""
	if err := json.Unmarshal(body, &parsed); err == nil {
		message = strings.TrimSpace(parsed.Message)
		if message == "" {
			message = strings.TrimSpace(parsed.Error)
		}
	}

	return &Error{
		Method:  method,
		Path:    path,
		Status:  status,
		Message: message,
	}
}

// AsError extracts the *Error from err.
func AsError(err error) (*Error, bool) {
	var apiErr *Error

	return apiErr, errors.As(err, &apiErr)
}

// MessageOr returns the backend's message for err, or fallback if err is not
// an *Error or the backend sent none.
func MessageOr(err error, fallback string) string {
	if apiErr, ok := AsError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}

	return fallback
}

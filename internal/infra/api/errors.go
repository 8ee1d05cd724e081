package api

import (
	"errors"
	"fmt"
	"net/http"
)

const fallbackMessage = "Something went wrong. Please try again."

// Error is a server-reported failure: a non-2xx status plus whatever
// human-readable message the body carried. Message always holds something
// presentable, falling back to a generic string when the body had none.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401/403 response, the signal the
// route guard uses to drop the session and return to login.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusNotFound
}

package backend

import (
	"fmt"
	"strings"

	"github.com/vecadmin/vecadmin/internal/domain"
)

// StatusError reports a non-2xx backend response. The status code and body
// text are carried verbatim for the caller's error mapping.
type StatusError struct {
	Code int
	Body string

	sentinel error
}

// NewStatusError builds a StatusError, classifying known backend messages
// so callers can match them with errors.Is.
func NewStatusError(code int, body string) *StatusError {
	return &StatusError{Code: code, Body: body, sentinel: classify(body)}
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return e.sentinel }

// QueryError carries a query failure the backend reported inside an
// otherwise successful response. The message is surfaced verbatim so
// callers cannot distinguish protocol version from error shape.
type QueryError struct {
	Message string

	sentinel error
}

// NewQueryError builds a QueryError, classifying known backend messages.
func NewQueryError(message string) *QueryError {
	return &QueryError{Message: message, sentinel: classify(message)}
}

func (e *QueryError) Error() string { return e.Message }

func (e *QueryError) Unwrap() error { return e.sentinel }

// classify maps well-known backend error messages onto domain sentinels.
// Unrecognized messages stay unclassified and reach the caller verbatim.
func classify(message string) error {
	if strings.Contains(message, "InvalidDimension") ||
		strings.Contains(message, "dimensionality") {
		return domain.ErrInvalidDimension
	}
	return nil
}

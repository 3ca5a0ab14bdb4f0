// Package apierrs defines the error taxonomy shared by all services:
// validation failures, missing resources, and collaborator failures.
package apierrs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound marks a referenced user, movie or rating that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks malformed or rejected input.
	ErrValidation = errors.New("validation failed")
)

type apiError struct {
	msg  string
	kind error
}

func (e *apiError) Error() string { return e.msg }

func (e *apiError) Unwrap() error { return e.kind }

// NotFound builds an error that satisfies errors.Is(err, ErrNotFound)
// while keeping the message caller-facing.
func NotFound(format string, args ...any) error {
	return &apiError{msg: fmt.Sprintf(format, args...), kind: ErrNotFound}
}

// Invalid builds an error that satisfies errors.Is(err, ErrValidation).
func Invalid(format string, args ...any) error {
	return &apiError{msg: fmt.Sprintf(format, args...), kind: ErrValidation}
}

// UpstreamError reports a collaborator service that returned a non-success
// status or could not be reached. It carries the upstream status so callers
// can surface it instead of masking the failure as an empty result.
type UpstreamError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Service, e.StatusCode, e.Message)
}

// Upstream builds an UpstreamError for a failed collaborator call.
// statusCode 0 means the collaborator was unreachable.
func Upstream(service string, statusCode int, message string) error {
	return &UpstreamError{Service: service, StatusCode: statusCode, Message: message}
}

// StatusCode maps an error to the HTTP status a handler should return.
func StatusCode(err error) int {
	var upstream *UpstreamError
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &upstream):
		if upstream.StatusCode >= 400 {
			return upstream.StatusCode
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

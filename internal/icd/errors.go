package icd

import (
	"errors"
	"fmt"
)

// Upstream error kinds. Every *Error also matches ErrUpstream.
var (
	ErrUpstream        = errors.New("upstream error")
	ErrUpstreamAuth    = errors.New("upstream auth error")
	ErrUpstreamTimeout = errors.New("upstream timeout")
	ErrUpstreamSearch  = errors.New("upstream search error")
	ErrUpstreamFormat  = errors.New("upstream format error")
)

// Caller errors, produced before any network call.
var (
	ErrQueryTooShort = errors.New("query must be at least 2 characters")
	ErrNotConfigured = errors.New("classification provider credentials are not configured")
)

var (
	errUnexpectedShape = errors.New("unexpected API response format")
	errMalformedToken  = errors.New("token response missing access_token or expires_in")
)

// Error is a failed call to the classification provider.
type Error struct {
	Op   string // token, search, categories
	Kind error  // one of the ErrUpstream* sentinels
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("icd %s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Is makes every *Error match ErrUpstream.
func (e *Error) Is(target error) bool {
	return target == ErrUpstream
}

// KindName returns a short label for metrics and logs.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrUpstreamTimeout):
		return "timeout"
	case errors.Is(err, ErrUpstreamAuth):
		return "auth"
	case errors.Is(err, ErrUpstreamFormat):
		return "format"
	case errors.Is(err, ErrUpstreamSearch):
		return "search"
	default:
		return "upstream"
	}
}

// PublicMessage describes err for API clients: the failed operation, its
// kind and, where known, the status code or shape problem. Response bodies
// and transport details are left out.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "Classification service request failed"
	}
	msg := fmt.Sprintf("Classification service %s failed: %v", e.Op, e.Kind)

	var se *statusError
	switch {
	case errors.As(err, &se):
		msg += fmt.Sprintf(": unexpected status %d", se.Code)
	case errors.Is(err, errUnexpectedShape), errors.Is(err, errMalformedToken):
		msg += ": " + e.Err.Error()
	}
	return msg
}

// statusError is a non-2xx response.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

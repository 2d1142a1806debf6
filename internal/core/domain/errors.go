package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCriteria is returned when a route code or ranking mode is
	// outside the supported set.
	ErrInvalidCriteria = errors.New("invalid search criteria")

	// ErrSearchFailed is the single caller-visible failure of a search.
	ErrSearchFailed = errors.New("trip search failed")

	ErrNotFound       = errors.New("not found")
	ErrInvalidTrip    = errors.New("invalid trip")
	ErrMissingSession = errors.New("session id is required")
)

// InvalidCriteriaError names the offending field.
type InvalidCriteriaError struct {
	Field string
	Value string
}

func (e *InvalidCriteriaError) Error() string {
	if e.Field == "sort_by" {
		return fmt.Sprintf("sort_by must be one of cheapest, fastest (got %q)", e.Value)
	}
	return fmt.Sprintf("%s must be a supported IATA code (got %q)", e.Field, e.Value)
}

func (e *InvalidCriteriaError) Is(target error) bool { return target == ErrInvalidCriteria }

// ValidationError describes an invalid trip snapshot.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Field + " " + e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidTrip }

// ConfigurationError means the gateway was built without an endpoint or
// credential. It is raised at construction, before any network attempt.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return "trips api misconfigured: " + e.Field + " is required"
}

// TransportError wraps a network or timeout failure reaching the upstream.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "trips api transport: " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// UpstreamError covers a non-2xx response (Status set) and any other
// unexpected gateway failure (Status zero).
type UpstreamError struct {
	Status int
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("trips api returned status %d", e.Status)
	}
	if e.Err != nil {
		return "trips api unexpected failure: " + e.Err.Error()
	}
	return "trips api unexpected failure"
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// MalformedResponseError means a 2xx body failed shape or type checks.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return "trips api malformed response: " + e.Reason + ": " + e.Err.Error()
	}
	return "trips api malformed response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// SearchError hides the cause behind a fixed message. Cause is kept for
// logs and tests; it must not be rendered to callers.
type SearchError struct {
	Cause error
}

func (e *SearchError) Error() string { return ErrSearchFailed.Error() }

func (e *SearchError) Is(target error) bool { return target == ErrSearchFailed }

func (e *SearchError) Unwrap() error { return e.Cause }

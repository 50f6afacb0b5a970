package geolib

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNoFile           = errors.New("no file was uploaded")
	ErrNotCSV           = errors.New("file is not a csv")
	ErrEmptyCSV         = errors.New("csv file is empty")
	ErrIPColumnNotFound = errors.New("ip column is not found")
	ErrBadLocation      = errors.New("location is not a <latitude>,<longitude> pair")

	ErrCircuitBreakerOpened = errors.New("circuit breaker is opened")
	ErrCircuitBreakerIgnore = errors.New("this error should be ignored by circuit breaker")
)

type LookupFailureReason string

const (
	FailureNetwork     LookupFailureReason = "network"
	FailureStatus      LookupFailureReason = "status"
	FailureRateLimited LookupFailureReason = "rate_limited"
	FailureParse       LookupFailureReason = "parse"
)

// LookupError is a classified failure of a single provider lookup.
type LookupError struct {
	Reason LookupFailureReason
	Err    error
}

func (l *LookupError) Error() string {
	if l.Err == nil {
		return string(l.Reason)
	}

	return string(l.Reason) + ": " + l.Err.Error()
}

func (l *LookupError) Unwrap() error {
	return l.Err
}

func NewLookupError(reason LookupFailureReason, err error) error {
	return &LookupError{
		Reason: reason,
		Err:    err,
	}
}

// LookupFailure returns a reason of the lookup failure. Errors which
// are not *LookupError are network failures.
func LookupFailure(err error) LookupFailureReason {
	var lookupErr *LookupError

	if errors.As(err, &lookupErr) {
		return lookupErr.Reason
	}

	return FailureNetwork
}

// HTTPStatusError is returned by HTTPClient if netloc has responded
// with 4xx or 5xx.
type HTTPStatusError struct {
	StatusCode int
	Status     string
}

func (h *HTTPStatusError) Error() string {
	return fmt.Sprintf("netloc has responded with %s", h.Status)
}

func (h *HTTPStatusError) Temporary() bool {
	return h.StatusCode == http.StatusTooManyRequests || h.StatusCode >= http.StatusInternalServerError
}

type httpError struct {
	message    string
	err        error
	statusCode int
}

func (h *httpError) Message() string {
	if h == nil {
		return ""
	}

	return h.message
}

func (h *httpError) StatusCode() int {
	if h != nil && h.statusCode != 0 {
		return h.statusCode
	}

	return http.StatusInternalServerError
}

// Body is a text which is sent to the client. Server errors are
// reported as "Error: <cause>", client errors carry their message only.
func (h *httpError) Body() string {
	switch {
	case h == nil:
		return ""
	case h.StatusCode() >= http.StatusInternalServerError && h.err != nil:
		return "Error: " + h.err.Error()
	case h.StatusCode() >= http.StatusInternalServerError:
		return "Error: " + h.message
	}

	return h.message
}

func (h *httpError) Unwrap() error {
	if h == nil {
		return nil
	}

	return h.err
}

func (h *httpError) Error() string {
	switch {
	case h == nil:
		return ""
	case h.err != nil && h.message != "":
		return h.message + ": " + h.err.Error()
	case h.err != nil:
		return h.err.Error()
	}

	return h.message
}

package geolib

import (
	"context"
	"net/http"
)

// Provider resolves a location of the given IP address.
//
// Providers are free to return any error. If error is (or wraps)
// *LookupError, its Reason is used to classify the failure. Everything
// else is considered to be a network failure.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, ip string) (Location, error)
}

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

type Logger interface {
	LookupError(ip string, row int, err error)
	RateLimited(ip string, row int)
	Progress(processed uint64)
	Complete(counters RunCounters)
}

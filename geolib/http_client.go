package geolib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"golang.org/x/time/rate"
)

const httpClientRetryMaxDelay = 5 * time.Second

type httpClient struct {
	userAgent      string
	client         *http.Client
	rateLimiter    *rate.Limiter
	circuitBreaker *circuitBreaker
	retryAttempts  uint
}

func (h httpClient) Do(req *http.Request) (*http.Response, error) {
	ctx, cancel := req.Context(), context.CancelFunc(func() {})

	if h.client.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, h.client.Timeout)
	}

	resp, err := h.do(ctx, req)
	if err != nil {
		cancel()

		return nil, err
	}

	resp.Body = cancelOnClose{
		ReadCloser: resp.Body,
		cancel:     cancel,
	}

	return resp, nil
}

func (h httpClient) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", h.userAgent)

	var (
		resp    *http.Response
		lastErr error
	)

	err := retry.Do(
		func() error {
			lastErr = h.circuitBreaker.Do(ctx, func(ctx context.Context) error {
				if err := h.rateLimiter.Wait(ctx); err != nil {
					return fmt.Errorf("%w: %w", ErrCircuitBreakerIgnore, err)
				}

				response, err := h.client.Do(req.WithContext(ctx))
				if err != nil {
					return err
				}

				if response.StatusCode >= http.StatusBadRequest {
					flushResponse(response.Body)

					statusErr := &HTTPStatusError{
						StatusCode: response.StatusCode,
						Status:     response.Status,
					}

					// a netloc is fine if it rejects a single bad address
					if !statusErr.Temporary() {
						return fmt.Errorf("%w: %w", ErrCircuitBreakerIgnore, statusErr)
					}

					return statusErr
				}

				resp = response

				return nil
			})

			if lastErr != nil && !h.retriable(ctx, lastErr) {
				return retry.Unrecoverable(lastErr)
			}

			return lastErr
		},
		retry.Attempts(h.retryAttempts),
		retry.DelayType(retry.BackOffDelay),
		retry.MaxDelay(httpClientRetryMaxDelay),
		retry.Context(ctx),
	)

	switch {
	case err == nil:
		return resp, nil
	case lastErr != nil:
		return nil, lastErr
	}

	return nil, err
}

func (h httpClient) retriable(ctx context.Context, err error) bool {
	var statusErr *HTTPStatusError

	switch {
	case ctx.Err() != nil:
		return false
	case errors.Is(err, ErrCircuitBreakerOpened), errors.Is(err, ErrCircuitBreakerIgnore):
		return false
	case errors.As(err, &statusErr):
		return statusErr.Temporary()
	}

	return true
}

type cancelOnClose struct {
	io.ReadCloser

	cancel context.CancelFunc
}

func (c cancelOnClose) Close() error {
	defer c.cancel()

	return c.ReadCloser.Close()
}

// NewHTTPClient prepares a new HTTP client, wraps it with rate limiter,
// circuit breaker, retries, sets a user agent etc. Each response with
// status code >= 400 is converted into *HTTPStatusError, 4xx other
// than 429 are not counted by circuit breaker. Timeout of the given
// client limits the whole call, retries included.
//
// Please see https://pkg.go.dev/golang.org/x/time/rate to get a meaning
// of rate limiter parameters.
//
// A meaning of circuit breaker parameters:
//
// circuitBreakerOpenThreshold - a number of failures after which
// circuit breaker becomes OPEN and blocks access to a target. 0 disables
// circuit breaker.
//
// circuitBreakerResetFailuresTimeout - each time period when circuit
// breaker is closed, a failure counter is reset.
//
// circuitBreakerHalfOpenTimeout - after this time period an opened
// circuit breaker goes into HALF_OPEN state and allows 1 attempt. If it
// fails, circuit breaker goes back to OPEN. If it succeeds - to CLOSED.
//
// retryAttempts is a total number of attempts, including the first one.
// Only network errors, 429 and 5xx responses are retried.
func NewHTTPClient(client *http.Client,
	userAgent string,
	rateLimiterInterval time.Duration,
	rateLimitBurst int,
	circuitBreakerOpenThreshold uint32,
	circuitBreakerHalfOpenTimeout, circuitBreakerResetFailuresTimeout time.Duration,
	retryAttempts uint) HTTPClient {
	if retryAttempts == 0 {
		retryAttempts = 1
	}

	return httpClient{
		userAgent:   userAgent,
		client:      client,
		rateLimiter: rate.NewLimiter(rate.Every(rateLimiterInterval), rateLimitBurst),
		circuitBreaker: newCircuitBreaker(circuitBreakerOpenThreshold,
			circuitBreakerHalfOpenTimeout,
			circuitBreakerResetFailuresTimeout),
		retryAttempts: retryAttempts,
	}
}

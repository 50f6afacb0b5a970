package geolib

import (
	"context"
	"errors"
	"sync"
	"time"
)

type circuitBreakerCallback func(context.Context) error

type circuitBreakerState uint8

const (
	circuitBreakerStateClosed circuitBreakerState = iota
	circuitBreakerStateHalfOpened
	circuitBreakerStateOpened
)

// circuitBreaker guards a netloc of the lookup provider.
//
// CLOSED: everything passes, failures are counted. When a counter
// reaches openThreshold, circuit breaker becomes OPEN. The counter is
// reset each resetFailuresTimeout. Zero threshold keeps it CLOSED
// forever.
//
// OPEN: all calls fail immediately with ErrCircuitBreakerOpened. After
// halfOpenTimeout it goes to HALF_OPEN.
//
// HALF_OPEN: exactly one call is allowed. Its result decides whether
// we go to CLOSED or back to OPEN. Everyone else gets
// ErrCircuitBreakerOpened meanwhile.
//
// Transitions by timeout are evaluated lazily on each call.
type circuitBreaker struct {
	mutex sync.Mutex
	now   func() time.Time

	state         circuitBreakerState
	failures      uint32
	failuresSince time.Time
	openedAt      time.Time
	probing       bool

	openThreshold        uint32
	halfOpenTimeout      time.Duration
	resetFailuresTimeout time.Duration
}

func (c *circuitBreaker) Do(ctx context.Context, callback circuitBreakerCallback) error {
	probe, err := c.acquire()
	if err != nil {
		return err
	}

	err = callback(ctx)

	c.release(probe, err)

	return err
}

func (c *circuitBreaker) State() circuitBreakerState {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.tick(c.now())

	return c.state
}

func (c *circuitBreaker) acquire() (bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.tick(c.now())

	switch c.state {
	case circuitBreakerStateClosed:
		return false, nil
	case circuitBreakerStateHalfOpened:
		if c.probing {
			return false, ErrCircuitBreakerOpened
		}

		c.probing = true

		return true, nil
	}

	return false, ErrCircuitBreakerOpened
}

func (c *circuitBreaker) release(probe bool, err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()

	if probe {
		c.probing = false

		switch {
		case errors.Is(err, ErrCircuitBreakerIgnore):
		case err != nil:
			c.open(now)
		default:
			c.close(now)
		}

		return
	}

	if err == nil || errors.Is(err, ErrCircuitBreakerIgnore) {
		return
	}

	c.tick(now)

	if c.state != circuitBreakerStateClosed {
		return
	}

	c.failures++

	if c.openThreshold > 0 && c.failures >= c.openThreshold {
		c.open(now)
	}
}

func (c *circuitBreaker) tick(now time.Time) {
	switch c.state {
	case circuitBreakerStateClosed:
		if now.Sub(c.failuresSince) >= c.resetFailuresTimeout {
			c.failures = 0
			c.failuresSince = now
		}
	case circuitBreakerStateOpened:
		if now.Sub(c.openedAt) >= c.halfOpenTimeout {
			c.state = circuitBreakerStateHalfOpened
			c.probing = false
		}
	case circuitBreakerStateHalfOpened:
	}
}

func (c *circuitBreaker) open(now time.Time) {
	c.state = circuitBreakerStateOpened
	c.openedAt = now
	c.failures = 0
}

func (c *circuitBreaker) close(now time.Time) {
	c.state = circuitBreakerStateClosed
	c.failures = 0
	c.failuresSince = now
}

func newCircuitBreaker(openThreshold uint32,
	halfOpenTimeout, resetFailuresTimeout time.Duration) *circuitBreaker {
	cb := &circuitBreaker{
		now:                  time.Now,
		openThreshold:        openThreshold,
		halfOpenTimeout:      halfOpenTimeout,
		resetFailuresTimeout: resetFailuresTimeout,
	}

	cb.close(cb.now())

	return cb
}

package enrichlib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

var errServerSide = errors.New("server side failure")

type httpClient struct {
	userAgent      string
	client         *http.Client
	rateLimiter    *rate.Limiter
	circuitBreaker *circuitBreaker
}

// Do sends a request. Unlike http.Client, it returns responses with any
// status code: 4xx are decisions of a provider (429 especially) so they
// are left to a caller. 5xx and transport errors are counted by circuit
// breaker if it is enabled.
func (h httpClient) Do(req *http.Request) (*http.Response, error) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)

	if h.client.Timeout > 0 {
		ctx, cancel = context.WithTimeout(req.Context(), h.client.Timeout)
	} else {
		ctx, cancel = context.WithCancel(req.Context())
	}

	req.Header.Set("User-Agent", h.userAgent)

	send := func(ctx context.Context) (*http.Response, error) {
		if err := h.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w: %w", err, ErrCircuitBreakerIgnore)
		}

		resp, err := h.client.Do(req.WithContext(ctx))
		if err != nil {
			if resp != nil {
				io.Copy(io.Discard, resp.Body) // nolint: errcheck
				resp.Body.Close()
			}

			return nil, err
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errServerSide
		}

		return resp, nil
	}

	var (
		resp *http.Response
		err  error
	)

	if h.circuitBreaker != nil {
		resp, err = h.circuitBreaker.Do(ctx, send)
	} else {
		resp, err = send(ctx)
	}

	if err != nil && !errors.Is(err, errServerSide) {
		cancel()

		return nil, err
	}

	resp.Body = cancelOnCloseBody{
		ReadCloser: resp.Body,
		cancel:     cancel,
	}

	return resp, nil
}

// cancelOnCloseBody releases a request context only when a caller is done
// with a body.
type cancelOnCloseBody struct {
	io.ReadCloser

	cancel context.CancelFunc
}

func (c cancelOnCloseBody) Close() error {
	err := c.ReadCloser.Close()

	c.cancel()

	return err
}

// NewHTTPClient prepares a new HTTP client, wraps it with rate limiter,
// circuit breaker, sets a user agent etc.
//
// Please see https://pkg.go.dev/golang.org/x/time/rate to get a meaning
// of rate limiter parameters.
//
// A meaning of circuit breaker parameters:
//
// circuitBreakerOpenThreshold - this is a threshold of failures when
// circuit breaker becomes OPEN. Only transport errors and 5xx responses
// are failures. 0 disables circuit breaker: each request goes to the
// network regardless of previous failures.
//
// circuitBreakerResetFailuresTimeout - each time period when circuit
// breaker is closed, failure counter is reset.
//
// circuitBreakerHalfOpenTimeout - when circuit breaker is open, it goes
// into HALF_OPEN state after this time period. Within this state we
// allow 1 attempt. If this attempt fails, then it goes into OPEN state
// again. If succeed - goes to CLOSED.
func NewHTTPClient(client *http.Client,
	userAgent string,
	rateLimiterInterval time.Duration,
	rateLimitBurst int,
	circuitBreakerOpenThreshold uint32,
	circuitBreakerHalfOpenTimeout, circuitBreakerResetFailuresTimeout time.Duration) HTTPClient {
	rv := httpClient{
		userAgent:   userAgent,
		client:      client,
		rateLimiter: rate.NewLimiter(rate.Every(rateLimiterInterval), rateLimitBurst),
	}

	if circuitBreakerOpenThreshold > 0 {
		rv.circuitBreaker = newCircuitBreaker(circuitBreakerOpenThreshold,
			circuitBreakerHalfOpenTimeout,
			circuitBreakerResetFailuresTimeout)
	}

	return rv
}

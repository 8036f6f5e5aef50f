package enrichlib

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEnricherShutdown = errors.New("enricher instance was shutdown")
	ErrContextIsClosed  = errors.New("context is closed")

	// ErrMissingColumns is a structural error: input has no columns
	// which are required to run enrichment.
	ErrMissingColumns = errors.New("required columns are missing")

	// ErrRateLimitExhausted is returned if provider kept responding with
	// 429 for all allowed attempts.
	ErrRateLimitExhausted = errors.New("rate limit retries are exhausted")

	ErrCircuitBreakerOpened = errors.New("circuit breaker is opened")
	ErrCircuitBreakerIgnore = errors.New("circuit breaker has ignored a result")
)

// MissingColumnsError is returned if input table has no required
// columns. This error is fatal for the whole run.
type MissingColumnsError struct {
	Missing []string
}

func (m *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingColumns.Error(), strings.Join(m.Missing, ", "))
}

func (m *MissingColumnsError) Unwrap() error {
	return ErrMissingColumns
}

// LookupErrorKind classifies why lookup has failed.
type LookupErrorKind uint8

const (
	LookupTransport LookupErrorKind = iota
	LookupStatus
	LookupDecode
	LookupProvider
	LookupRateLimitExhausted
)

func (l LookupErrorKind) String() string {
	switch l {
	case LookupTransport:
		return "transport"
	case LookupStatus:
		return "status"
	case LookupDecode:
		return "decode"
	case LookupProvider:
		return "provider"
	case LookupRateLimitExhausted:
		return "rate_limit_exhausted"
	}

	return "unknown"
}

// LookupError is a failure of a single IP lookup. It is never fatal for
// the run: rows of this IP are simply omitted.
type LookupError struct {
	IP         string
	Kind       LookupErrorKind
	StatusCode int
	Err        error
}

func (l *LookupError) Error() string {
	msg := fmt.Sprintf("cannot lookup %s (%s)", l.IP, l.Kind)

	if l.StatusCode != 0 {
		msg += fmt.Sprintf(", status code %d", l.StatusCode)
	}

	if l.Err != nil {
		msg += ": " + l.Err.Error()
	}

	return msg
}

func (l *LookupError) Unwrap() error {
	return l.Err
}

// Package resilience provides the per-provider protection primitives used in
// front of every upstream call: a rolling-window circuit breaker, a token
// bucket rate limiter, a bulkhead, and a deadline guard.
package resilience

import (
	"context"
	"errors"
)

// Sentinel errors returned by the primitives. All of them are treated as a
// provider failure by callers.
var (
	ErrCircuitOpen  = errors.New("circuit breaker open")
	ErrRateLimited  = errors.New("rate limited")
	ErrBulkheadFull = errors.New("bulkhead full")
	ErrTimeout      = errors.New("call timed out")
)

// IsRejection reports whether err came from a primitive refusing the call
// before the upstream was reached.
func IsRejection(err error) bool {
	return errors.Is(err, ErrCircuitOpen) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrBulkheadFull)
}

// Reason classifies err into a short label for metrics and logs.
func Reason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrBulkheadFull):
		return "bulkhead_full"
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "upstream"
	}
}

// Package resilience wraps outbound HTTP for the Google OAuth and YouTube
// Data API gateways: a per-attempt timeout, exponential-backoff retries on
// transient failures, and one circuit breaker per upstream so a failing
// provider sheds load quickly instead of tying up request handlers.
package resilience

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerConfig configures the circuit breaker for one upstream.
type BreakerConfig struct {
	// Name identifies the upstream in breaker state and logs.
	Name string

	// MaxRequests is how many probe requests the half-open state admits.
	MaxRequests uint32

	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration

	// ReadyToTrip decides when the closed breaker opens. Nil falls back to
	// DefaultReadyToTrip.
	ReadyToTrip func(counts gobreaker.Counts) bool
}

// DefaultBreakerConfig returns the breaker settings both gateways run with:
// a single half-open probe and a one-minute open period.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:        name,
		MaxRequests: 1,
		OpenTimeout: time.Minute,
		ReadyToTrip: DefaultReadyToTrip,
	}
}

// DefaultReadyToTrip opens the breaker once at least 5 requests have been
// seen and half or more of them failed.
func DefaultReadyToTrip(counts gobreaker.Counts) bool {
	if counts.Requests < 5 {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
}

func newBreaker[T any](cfg BreakerConfig) *gobreaker.CircuitBreaker[T] {
	ready := cfg.ReadyToTrip
	if ready == nil {
		ready = DefaultReadyToTrip
	}
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: ready,
	})
}

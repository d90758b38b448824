package resilience

import (
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned while the upstream's breaker is open; callers
// get it immediately, without burning the retry budget.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name is the upstream name, also used for the breaker.
	Name string

	// Timeout bounds each individual attempt. Default 10s.
	Timeout time.Duration

	// MaxRetries is how many times a failed attempt is retried. Default 3.
	MaxRetries uint64

	// InitialInterval is the first backoff delay. Default 100ms.
	InitialInterval time.Duration

	// MaxInterval caps the backoff delay. Default 5s.
	MaxInterval time.Duration

	// Breaker overrides the breaker settings. Nil uses
	// DefaultBreakerConfig(Name).
	Breaker *BreakerConfig
}

// DefaultClientConfig returns the settings the gateways are constructed
// with when no explicit client is injected.
func DefaultClientConfig(name string) ClientConfig {
	breaker := DefaultBreakerConfig(name)
	return ClientConfig{
		Name:            name,
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Breaker:         &breaker,
	}
}

// Client is an HTTP client that retries transient failures and trips a
// circuit breaker on sustained ones.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	config     ClientConfig
}

// NewClient creates a new resilient HTTP client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}

	breakerCfg := cfg.Breaker
	if breakerCfg == nil {
		defaultCfg := DefaultBreakerConfig(cfg.Name)
		breakerCfg = &defaultCfg
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    newBreaker[*http.Response](*breakerCfg),
		config:     cfg,
	}
}

// Do executes the request. Network errors and 5xx responses are retried
// with exponential backoff; 4xx responses are final and returned as-is. A
// 5xx response that survives the whole retry budget is also returned as-is
// so callers can read the upstream's error body. While the breaker is open,
// Do fails fast with ErrCircuitOpen.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0 // attempts are bounded by MaxRetries, not wall time

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)

	var last *http.Response

	attempt := func() error {
		resp, err := c.breaker.Execute(func() (*http.Response, error) {
			// Clone so a retry never reuses a consumed request.
			r, doErr := c.httpClient.Do(req.Clone(ctx))
			if doErr != nil {
				return nil, doErr
			}
			// 5xx counts as a breaker failure.
			if r.StatusCode >= http.StatusInternalServerError {
				return r, &UpstreamError{StatusCode: r.StatusCode}
			}
			return r, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			if resp != nil {
				last = resp
			}
			return err
		}
		last = resp
		return nil
	}

	if err := backoff.Retry(attempt, policy); err != nil {
		if last != nil {
			return last, nil
		}
		return nil, err
	}
	return last, nil
}

// BreakerState returns the current circuit breaker state.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// UpstreamError marks a 5xx response inside the retry loop.
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return "upstream error: " + http.StatusText(e.StatusCode)
}

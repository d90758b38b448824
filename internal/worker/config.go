// Package worker provides background job processing for KidTunes.
package worker

import "time"

// RefreshConfig holds configuration for the credential refresh job.
type RefreshConfig struct {
	// Staleness is how old an access token may get before it is
	// refreshed. Google access tokens expire after an hour; refreshing
	// at 45 minutes keeps stored credentials usable.
	// Default: 45 minutes
	Staleness time.Duration

	// BatchSize caps how many accounts a single run refreshes.
	// Default: 100
	BatchSize int

	// Concurrency is the number of concurrent refresh operations.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for each refresh operation.
	// Default: 30 seconds
	Timeout time.Duration
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Staleness:   45 * time.Minute,
		BatchSize:   100,
		Concurrency: 3,
		Timeout:     30 * time.Second,
	}
}

// withDefaults fills zero fields with defaults.
func (c RefreshConfig) withDefaults() RefreshConfig {
	defaults := DefaultRefreshConfig()
	if c.Staleness == 0 {
		c.Staleness = defaults.Staleness
	}
	if c.BatchSize == 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.Concurrency == 0 {
		c.Concurrency = defaults.Concurrency
	}
	if c.Timeout == 0 {
		c.Timeout = defaults.Timeout
	}
	return c
}

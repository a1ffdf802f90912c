// Package worker provides background job processing for AirSight.
package worker

import (
	"time"
)

// RefreshConfig holds configuration for the site refresh job.
type RefreshConfig struct {
	// Tenants whose sites get refreshed. If empty, uses DefaultTenants.
	Tenants []string

	// Concurrency is the number of concurrent site refreshes.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for refreshing a single site.
	// Default: 30 seconds
	Timeout time.Duration
}

// DefaultTenants returns the monitoring networks refreshed by default.
func DefaultTenants() []string {
	return []string{"airsight", "kcca", "usembassy", "urban"}
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Tenants:     DefaultTenants(),
		Concurrency: 3,
		Timeout:     30 * time.Second,
	}
}

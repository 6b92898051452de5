package client

import "context"

// HealthState is the reported health of a service client.
type HealthState string

const (
	StatusHealthy   HealthState = "healthy"
	StatusUnhealthy HealthState = "unhealthy"
)

// Health is a derived, on-demand probe result: it is recomputed from auth
// validity and the last-observed transport outcome, never persisted.
type Health struct {
	Status  HealthState `json:"status"`
	Details string      `json:"details,omitempty"`
}

// Healthy reports the transport health flag: true after any successful
// attempt, false after any classified failure.
func (c *Client) Healthy() bool {
	return c.healthy.Load()
}

// Health combines auth validity with the transport health flag. The probe
// is local; ctx exists for service interfaces whose checks reach out.
func (c *Client) Health(_ context.Context) Health {
	cfg, _, _ := c.snapshot()
	if !cfg.Auth.Valid() {
		return Health{Status: StatusUnhealthy, Details: "auth credentials missing or cleared"}
	}
	if !c.healthy.Load() {
		return Health{Status: StatusUnhealthy, Details: "last request attempt failed"}
	}
	return Health{Status: StatusHealthy}
}

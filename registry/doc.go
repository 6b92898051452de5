// Package registry holds named service clients behind lazy, once-per-name
// construction so callers never re-specify configuration.
//
// Factories are registered up front; the first Get for a name builds the
// instance (under the registry lock, so concurrent first access yields a
// single instance) and every later Get returns the same one until Reset.
// Registry-wide defaults are handed to each factory, which merges them under
// its own explicit settings.
//
// HealthAll aggregates every registered service's own probe into a single
// report; a failing factory or a panicking probe becomes an unhealthy entry
// rather than an error.
package registry

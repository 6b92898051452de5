// Package retry implements a bounded attempt loop with exponential backoff.
//
// The delay before retry n (1-based) is exactly Delay * 2^(n-1). There is no
// jitter and no upper cap; under long outages with many attempts the delay
// keeps doubling. Callers that need a ceiling should bound Attempts
// accordingly.
//
// Retry eligibility is decided by inspecting the returned error through the
// ShouldRetry predicate, never by error type assertions at the call site.
package retry

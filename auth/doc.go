// Package auth provides pluggable credential-injection strategies for
// outgoing HTTP requests.
//
// A Strategy augments a request with credential material and reports whether
// it currently holds a usable credential. Strategies are constructed once per
// service configuration and shared across calls; token-bearing strategies
// mutate their held credential in place (Refresh/Clear) instead of being
// replaced.
//
// Available strategies:
//
//   - None: no authentication
//   - Bearer: Authorization: Bearer <token>, static or lazily supplied
//   - APIKey: named header or query parameter
//   - Basic: Authorization: Basic base64(user:pass)
//   - Headers: arbitrary static header set
package auth

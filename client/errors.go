package client

import (
	"errors"
	"fmt"
)

// Kind classifies a request failure. The set is closed: every transport
// outcome maps to exactly one kind, so callers can switch exhaustively.
type Kind int

const (
	// KindBadRequest is an HTTP 400 response.
	KindBadRequest Kind = iota
	// KindUnauthorized is an HTTP 401 response.
	KindUnauthorized
	// KindForbidden is an HTTP 403 response.
	KindForbidden
	// KindNotFound is an HTTP 404 response.
	KindNotFound
	// KindValidation is an HTTP 422 response.
	KindValidation
	// KindRateLimit is an HTTP 429 response.
	KindRateLimit
	// KindInternalServer is an HTTP 500 response.
	KindInternalServer
	// KindGeneric is any other non-2xx response; Status carries the code.
	KindGeneric
	// KindNetwork means the request was sent but no response arrived
	// (timeout, connection reset).
	KindNetwork
	// KindRequest means the request could not be constructed or sent at all
	// (auth resolution failure, malformed URL). Never retried.
	KindRequest
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindRateLimit:
		return "rate_limit"
	case KindInternalServer:
		return "internal_server"
	case KindGeneric:
		return "generic"
	case KindNetwork:
		return "network"
	case KindRequest:
		return "request"
	default:
		return "unknown"
	}
}

// Error is a classified request failure. Service names the owning client so
// messages stay traceable; Body holds the raw response payload when one was
// received, so nothing the server said is discarded.
type Error struct {
	// Service is the name of the client that produced the error.
	Service string
	// Kind classifies the failure.
	Kind Kind
	// Status is the HTTP status code, 0 when no response was received.
	Status int
	// Message describes the failure.
	Message string
	// Body is the raw response payload, nil when none was received.
	Body []byte
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface. The service name prefixes every
// message.
func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (HTTP %d): %s", e.Service, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Service, e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Classify converts a received HTTP status into a typed error. Returns nil
// for 2xx. The mapping is total: unlisted statuses become KindGeneric.
func Classify(service string, status int, body []byte) *Error {
	if status >= 200 && status < 300 {
		return nil
	}

	kind := KindGeneric
	message := fmt.Sprintf("HTTP %d", status)
	switch status {
	case 400:
		kind = KindBadRequest
		message = "bad request"
	case 401:
		kind = KindUnauthorized
		message = "unauthorized"
	case 403:
		kind = KindForbidden
		message = "forbidden"
	case 404:
		kind = KindNotFound
		message = "resource not found"
	case 422:
		kind = KindValidation
		message = "validation failed"
	case 429:
		kind = KindRateLimit
		message = "rate limited"
	case 500:
		kind = KindInternalServer
		message = "internal server error"
	}

	return &Error{
		Service: service,
		Kind:    kind,
		Status:  status,
		Message: message,
		Body:    body,
	}
}

// NewNetworkError creates an error for a request that got no response.
func NewNetworkError(service string, err error) *Error {
	return &Error{
		Service: service,
		Kind:    KindNetwork,
		Message: err.Error(),
		Err:     err,
	}
}

// NewRequestError creates an error for a request that could not be prepared
// or sent.
func NewRequestError(service string, err error) *Error {
	return &Error{
		Service: service,
		Kind:    KindRequest,
		Message: err.Error(),
		Err:     err,
	}
}

// KindOf returns the kind of a classified error and true, or false when the
// error does not originate from this taxonomy.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// StatusOf returns the HTTP status of a classified error, 0 when no response
// was received or the error is foreign.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

func isKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// IsBadRequest checks for a 400 classification.
func IsBadRequest(err error) bool { return isKind(err, KindBadRequest) }

// IsUnauthorized checks for a 401 classification.
func IsUnauthorized(err error) bool { return isKind(err, KindUnauthorized) }

// IsForbidden checks for a 403 classification.
func IsForbidden(err error) bool { return isKind(err, KindForbidden) }

// IsNotFound checks for a 404 classification.
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

// IsValidation checks for a 422 classification.
func IsValidation(err error) bool { return isKind(err, KindValidation) }

// IsRateLimit checks for a 429 classification.
func IsRateLimit(err error) bool { return isKind(err, KindRateLimit) }

// IsInternalServer checks for a 500 classification.
func IsInternalServer(err error) bool { return isKind(err, KindInternalServer) }

// IsGeneric checks for an unlisted-status classification.
func IsGeneric(err error) bool { return isKind(err, KindGeneric) }

// IsNetwork checks whether the request got no response.
func IsNetwork(err error) bool { return isKind(err, KindNetwork) }

// IsRequest checks whether the request could not be prepared or sent.
func IsRequest(err error) bool { return isKind(err, KindRequest) }

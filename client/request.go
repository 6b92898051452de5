package client

import "time"

// Request describes one logical outbound call. Descriptors are ephemeral:
// created per call, never reused across retries by the caller (the pipeline
// re-executes the same descriptor internally).
type Request struct {
	// Method is the HTTP method (GET, POST, PUT, PATCH, DELETE).
	Method string
	// Path is resolved against the client's base URL.
	Path string
	// Body is the request payload. For POST/PUT/PATCH it is JSON-encoded
	// (io.Reader, []byte, and string pass through); for GET a map body is
	// attached as query parameters instead.
	Body any
	// Headers are merged over the client's default headers.
	Headers map[string]string
	// Query are URL query parameters.
	Query map[string]string
	// Timeout overrides the client's per-attempt timeout when positive.
	Timeout time.Duration
	// Retries overrides the client's retry budget when non-nil.
	Retries *int
}

// Response is the raw result of a request.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers, flattened to single values.
	Headers map[string]string
	// Body is the raw response body.
	Body []byte
}

// IsSuccess returns true for 2xx responses.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError returns true for 4xx and 5xx responses.
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

// TypedResponse wraps a response with a decoded body of type T.
type TypedResponse[T any] struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers.
	Headers map[string]string
	// Data is the decoded response body.
	Data T
}

// RequestOption configures a single request.
type RequestOption func(*Request)

// WithHeader adds a header to the request.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		if r.Headers == nil {
			r.Headers = make(map[string]string)
		}
		r.Headers[key] = value
	}
}

// WithQueryParam adds a query parameter to the request.
func WithQueryParam(key, value string) RequestOption {
	return func(r *Request) {
		if r.Query == nil {
			r.Query = make(map[string]string)
		}
		r.Query[key] = value
	}
}

// WithTimeout overrides the per-attempt timeout for this request.
func WithTimeout(d time.Duration) RequestOption {
	return func(r *Request) { r.Timeout = d }
}

// WithRetries overrides the retry budget for this request.
func WithRetries(n int) RequestOption {
	return func(r *Request) { r.Retries = &n }
}

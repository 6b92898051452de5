package auth

import "net/http"

// Placement specifies where an API key is injected.
type Placement string

const (
	// InHeader sends the API key as a request header.
	InHeader Placement = "header"
	// InQuery sends the API key as a URL query parameter.
	InQuery Placement = "query"
)

// DefaultAPIKeyName is the header or parameter name used when none is given.
const DefaultAPIKeyName = "X-API-Key"

// Strategy augments an outgoing request with credential material.
//
// Apply must be idempotent and must not modify the request beyond adding the
// credential (header or query parameter). A missing credential is not an
// error: Apply leaves the request unauthenticated and lets the server reject
// it. Apply returns an error only when credential resolution itself fails
// (e.g. a token supplier callback fails); callers treat that as a
// request-preparation failure and do not retry.
type Strategy interface {
	Apply(req *http.Request) error
	Valid() bool
}

// None is the no-op strategy.
type None struct{}

// NewNone creates a strategy that applies no authentication.
func NewNone() *None { return &None{} }

// Apply is a no-op.
func (*None) Apply(*http.Request) error { return nil }

// Valid always reports true: the absence of credentials is intentional.
func (*None) Valid() bool { return true }

// APIKey injects a fixed key as a header or query parameter. Placement and
// name are fixed at construction.
type APIKey struct {
	key       string
	name      string
	placement Placement
}

// NewAPIKey creates an API key strategy. An empty name defaults to
// DefaultAPIKeyName, an empty placement to InHeader.
func NewAPIKey(key, name string, placement Placement) *APIKey {
	if name == "" {
		name = DefaultAPIKeyName
	}
	if placement == "" {
		placement = InHeader
	}
	return &APIKey{key: key, name: name, placement: placement}
}

// Apply injects the key. A missing key yields an unauthenticated request.
func (a *APIKey) Apply(req *http.Request) error {
	if a.key == "" {
		return nil
	}
	if a.placement == InQuery {
		q := req.URL.Query()
		q.Set(a.name, a.key)
		req.URL.RawQuery = q.Encode()
		return nil
	}
	req.Header.Set(a.name, a.key)
	return nil
}

// Valid reports whether a key is held.
func (a *APIKey) Valid() bool { return a.key != "" }

// Basic injects HTTP Basic credentials.
type Basic struct {
	username string
	password string
}

// NewBasic creates a basic auth strategy.
func NewBasic(username, password string) *Basic {
	return &Basic{username: username, password: password}
}

// Apply sets the Authorization header via the standard basic auth encoding.
func (b *Basic) Apply(req *http.Request) error {
	if b.username == "" && b.password == "" {
		return nil
	}
	req.SetBasicAuth(b.username, b.password)
	return nil
}

// Valid reports whether a username is held.
func (b *Basic) Valid() bool { return b.username != "" }

// Headers injects an arbitrary static header set.
type Headers struct {
	headers map[string]string
}

// NewHeaders creates a custom-headers strategy. The map is copied.
func NewHeaders(headers map[string]string) *Headers {
	h := make(map[string]string, len(headers))
	for k, v := range headers {
		h[k] = v
	}
	return &Headers{headers: h}
}

// Apply sets each configured header.
func (h *Headers) Apply(req *http.Request) error {
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}
	return nil
}

// Valid reports whether any headers are held.
func (h *Headers) Valid() bool { return len(h.headers) > 0 }

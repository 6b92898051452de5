package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"
)

// TokenFunc supplies a bearer token on demand, e.g. from a token endpoint or
// a secrets store. It receives the context of the request being prepared.
type TokenFunc func(ctx context.Context) (string, error)

// Bearer injects an Authorization: Bearer header. The token is either static
// or resolved lazily through a TokenFunc: the first Apply without a cached
// token invokes the supplier once and caches the result until Refresh or
// Clear. The strategy is safe for concurrent use.
type Bearer struct {
	mu       sync.Mutex
	token    string
	supplier TokenFunc
}

// NewBearer creates a bearer strategy with a static token.
func NewBearer(token string) *Bearer {
	return &Bearer{token: token}
}

// NewBearerFunc creates a bearer strategy that resolves its token lazily.
func NewBearerFunc(supplier TokenFunc) *Bearer {
	return &Bearer{supplier: supplier}
}

// Apply resolves the token if needed and sets the Authorization header.
// Supplier failure propagates to the caller; no header is added when neither
// a token nor a supplier is held.
func (b *Bearer) Apply(req *http.Request) error {
	token, err := b.resolve(req.Context())
	if err != nil {
		return fmt.Errorf("resolve bearer token: %w", err)
	}
	if token == "" {
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// Valid reports whether a token is currently cached.
func (b *Bearer) Valid() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token != ""
}

// Refresh drops the cached token so the next Apply re-resolves it through
// the supplier. A static token without a supplier is kept.
func (b *Bearer) Refresh() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.supplier != nil {
		b.token = ""
	}
}

// Clear drops the credential entirely, including the supplier. Subsequent
// requests go out unauthenticated.
func (b *Bearer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = ""
	b.supplier = nil
}

// SetToken replaces the cached token in place.
func (b *Bearer) SetToken(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = token
}

func (b *Bearer) resolve(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.token != "" || b.supplier == nil {
		return b.token, nil
	}

	token, err := b.supplier(ctx)
	if err != nil {
		return "", err
	}
	b.token = token
	return token, nil
}

package posts

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/kbukum/apikit/client"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/registry"
)

// DefaultCacheDuration bounds how long a cached listing stays valid.
const DefaultCacheDuration = 5 * time.Minute

// Post is one entry in the remote posts resource.
type Post struct {
	ID     int    `json:"id"`
	UserID int    `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// snapshot is the cache unit: data and timestamp replaced together, so a
// concurrent reader never observes one without the other.
type snapshot struct {
	posts     []Post
	fetchedAt time.Time
}

// Service is the posts client. It embeds the request pipeline, so Name,
// Health, UpdateAuth, and UpdateConfig come from client.Client.
type Service struct {
	*client.Client

	cacheTTL time.Duration
	cache    atomic.Pointer[snapshot]
	log      *logger.Logger

	// now is a test hook for cache expiry.
	now func() time.Time
}

var (
	_ registry.Service       = (*Service)(nil)
	_ registry.AuthUpdater   = (*Service)(nil)
	_ registry.ConfigUpdater = (*Service)(nil)
)

// Option customizes the service.
type Option func(*Service)

// WithCacheDuration overrides the listing cache validity window.
func WithCacheDuration(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.cacheTTL = d
		}
	}
}

// New creates a posts service from the given configuration.
func New(cfg client.Config, opts ...Option) (*Service, error) {
	c, err := client.New(cfg)
	if err != nil {
		return nil, err
	}

	s := &Service{
		Client:   c,
		cacheTTL: DefaultCacheDuration,
		log:      logger.WithComponent("posts"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Factory returns a registry factory for the service, merging registry-wide
// defaults under the builder's explicit settings.
func Factory(baseURL string, opts ...Option) registry.Factory {
	return func(defaults client.Defaults) (registry.Service, error) {
		cfg, err := client.NewBuilder("posts").
			BaseURL(baseURL).
			WithDefaults(defaults).
			Build()
		if err != nil {
			return nil, err
		}
		return New(cfg, opts...)
	}
}

// GetAll returns the full listing. With useCache, a snapshot younger than
// the cache duration is served without a transport call; otherwise the
// listing is fetched and the snapshot replaced atomically.
func (s *Service) GetAll(ctx context.Context, useCache bool) ([]Post, error) {
	if useCache {
		if snap := s.cache.Load(); snap != nil && s.now().Sub(snap.fetchedAt) < s.cacheTTL {
			s.log.Debug("serving posts from cache", logger.Fields("count", len(snap.posts)))
			return snap.posts, nil
		}
	}

	resp, err := client.Get[[]Post](ctx, s.Client, "/posts")
	if err != nil {
		return nil, err
	}

	s.cache.Store(&snapshot{posts: resp.Data, fetchedAt: s.now()})
	s.log.Debug("posts cache refreshed", logger.Fields("count", len(resp.Data)))
	return resp.Data, nil
}

// GetByID fetches a single post. Never cached.
func (s *Service) GetByID(ctx context.Context, id int) (*Post, error) {
	resp, err := client.Get[Post](ctx, s.Client, fmt.Sprintf("/posts/%d", id))
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Create adds a post. The listing cache is invalidated whether or not the
// write succeeds.
func (s *Service) Create(ctx context.Context, p Post) (*Post, error) {
	defer s.ClearCache()

	resp, err := client.Post[Post](ctx, s.Client, "/posts", p)
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Update replaces a post. The listing cache is invalidated whether or not
// the write succeeds.
func (s *Service) Update(ctx context.Context, id int, p Post) (*Post, error) {
	defer s.ClearCache()

	resp, err := client.Put[Post](ctx, s.Client, fmt.Sprintf("/posts/%d", id), p)
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Delete removes a post and invalidates the listing cache.
func (s *Service) Delete(ctx context.Context, id int) error {
	defer s.ClearCache()

	_, err := client.Delete[struct{}](ctx, s.Client, fmt.Sprintf("/posts/%d", id))
	return err
}

// ClearCache drops the cached listing; the next GetAll fetches live.
func (s *Service) ClearCache() {
	s.cache.Store(nil)
}

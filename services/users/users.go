package users

import (
	"context"
	"fmt"

	"github.com/kbukum/apikit/auth"
	"github.com/kbukum/apikit/client"
	"github.com/kbukum/apikit/registry"
)

// User is one entry in the remote users resource.
type User struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Service is the users client. Name, Health, UpdateAuth, and UpdateConfig
// come from client.Client.
type Service struct {
	*client.Client
}

var (
	_ registry.Service       = (*Service)(nil)
	_ registry.AuthUpdater   = (*Service)(nil)
	_ registry.ConfigUpdater = (*Service)(nil)
)

// New creates a users service from the given configuration.
func New(cfg client.Config) (*Service, error) {
	c, err := client.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Service{Client: c}, nil
}

// Factory returns a registry factory for the service, merging registry-wide
// defaults under the builder's explicit settings. A nil strategy leaves the
// service unauthenticated.
func Factory(baseURL string, strategy auth.Strategy) registry.Factory {
	return func(defaults client.Defaults) (registry.Service, error) {
		b := client.NewBuilder("users").BaseURL(baseURL)
		if strategy != nil {
			b.Auth(strategy)
		}
		cfg, err := b.WithDefaults(defaults).Build()
		if err != nil {
			return nil, err
		}
		return New(cfg)
	}
}

// GetAll returns the full user listing.
func (s *Service) GetAll(ctx context.Context) ([]User, error) {
	resp, err := client.Get[[]User](ctx, s.Client, "/users")
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetByID fetches a single user.
func (s *Service) GetByID(ctx context.Context, id int) (*User, error) {
	resp, err := client.Get[User](ctx, s.Client, fmt.Sprintf("/users/%d", id))
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Create adds a user.
func (s *Service) Create(ctx context.Context, u User) (*User, error) {
	resp, err := client.Post[User](ctx, s.Client, "/users", u)
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

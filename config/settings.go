package config

import (
	"fmt"
	"time"

	"github.com/kbukum/apikit/auth"
	"github.com/kbukum/apikit/client"
	"github.com/kbukum/apikit/logger"
)

// Settings is the root configuration document.
type Settings struct {
	Logging  logger.Config              `mapstructure:"logging"`
	Defaults DefaultSettings            `mapstructure:"defaults"`
	Services map[string]ServiceSettings `mapstructure:"services"`
}

// Service returns the named service settings.
func (s *Settings) Service(name string) (ServiceSettings, bool) {
	svc, ok := s.Services[name]
	return svc, ok
}

// DefaultSettings are shared across all services; per-service settings win.
type DefaultSettings struct {
	Timeout    time.Duration     `mapstructure:"timeout"`
	Retries    *int              `mapstructure:"retries"`
	RetryDelay time.Duration     `mapstructure:"retry_delay"`
	RetryOn408 *bool             `mapstructure:"retry_on_408"`
	Headers    map[string]string `mapstructure:"headers"`
}

// ClientDefaults converts to the client package's partial configuration.
func (d DefaultSettings) ClientDefaults() client.Defaults {
	return client.Defaults{
		Timeout:    d.Timeout,
		Retries:    d.Retries,
		RetryDelay: d.RetryDelay,
		RetryOn408: d.RetryOn408,
		Headers:    d.Headers,
	}
}

// ServiceSettings configure one named service.
type ServiceSettings struct {
	BaseURL    string            `mapstructure:"base_url"`
	Timeout    time.Duration     `mapstructure:"timeout"`
	Retries    *int              `mapstructure:"retries"`
	RetryDelay time.Duration     `mapstructure:"retry_delay"`
	RetryOn408 *bool             `mapstructure:"retry_on_408"`
	Headers    map[string]string `mapstructure:"headers"`
	Auth       AuthSettings      `mapstructure:"auth"`
}

// ClientConfig converts the settings into a validated client.Config, merging
// the given shared defaults into unset fields.
func (s ServiceSettings) ClientConfig(name string, defaults client.Defaults) (client.Config, error) {
	strategy, err := s.Auth.Strategy()
	if err != nil {
		return client.Config{}, fmt.Errorf("service %q: %w", name, err)
	}

	b := client.NewBuilder(name).BaseURL(s.BaseURL).Auth(strategy)
	if s.Timeout > 0 {
		b.Timeout(s.Timeout)
	}
	if s.Retries != nil {
		b.Retries(*s.Retries)
	}
	if s.RetryDelay > 0 {
		b.RetryDelay(s.RetryDelay)
	}
	if s.RetryOn408 != nil {
		b.RetryOn408(*s.RetryOn408)
	}
	if len(s.Headers) > 0 {
		b.Headers(s.Headers)
	}
	return b.WithDefaults(defaults).Build()
}

// AuthSettings declare a credential strategy in configuration.
type AuthSettings struct {
	// Type selects the strategy: none (default), bearer, api_key, basic,
	// or headers.
	Type string `mapstructure:"type"`
	// Token is the bearer token.
	Token string `mapstructure:"token"`
	// Key is the API key value.
	Key string `mapstructure:"key"`
	// Name is the API key header or query parameter name.
	Name string `mapstructure:"name"`
	// In places the API key: header (default) or query.
	In string `mapstructure:"in"`
	// Username and Password are the basic auth credentials.
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	// Headers is the static header set for the headers strategy.
	Headers map[string]string `mapstructure:"headers"`
}

// Strategy converts the settings into an auth.Strategy.
func (a AuthSettings) Strategy() (auth.Strategy, error) {
	switch a.Type {
	case "", "none":
		return auth.NewNone(), nil
	case "bearer":
		return auth.NewBearer(a.Token), nil
	case "api_key":
		return auth.NewAPIKey(a.Key, a.Name, auth.Placement(a.In)), nil
	case "basic":
		return auth.NewBasic(a.Username, a.Password), nil
	case "headers":
		return auth.NewHeaders(a.Headers), nil
	default:
		return nil, fmt.Errorf("unknown auth type %q", a.Type)
	}
}

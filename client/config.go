package client

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/apikit/auth"
)

// Defaults applied when a Config leaves the corresponding field unset.
const (
	DefaultTimeout    = 10 * time.Second
	DefaultRetries    = 3
	DefaultRetryDelay = 1000 * time.Millisecond
)

// DefaultHeaders returns the headers applied to every request unless
// overridden: JSON in, JSON out.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Accept":       "application/json",
		"Content-Type": "application/json",
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config configures a service client. Build one through Builder; a Config is
// immutable once the client is constructed, except via Client.UpdateConfig.
type Config struct {
	// Name identifies the service; it prefixes error messages and tags logs.
	Name string `validate:"required"`
	// BaseURL is the absolute URL all request paths are resolved against.
	BaseURL string `validate:"required,url"`
	// Timeout bounds each attempt. Defaults to 10s.
	Timeout time.Duration `validate:"gte=0"`
	// Headers are default headers applied to all requests.
	Headers map[string]string
	// Auth is the credential-injection strategy. Defaults to auth.None.
	Auth auth.Strategy `validate:"-"`
	// Retries is the number of retries after the first attempt. Defaults to 3.
	Retries int `validate:"gte=0"`
	// RetryDelay is the base backoff delay; the wait doubles each retry.
	// Defaults to 1s.
	RetryDelay time.Duration `validate:"gte=0"`
	// RetryOn408 additionally retries HTTP 408 responses. The default policy
	// retries only missing responses, 5xx, and 429.
	RetryOn408 bool
}

// ApplyDefaults fills zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Headers == nil {
		c.Headers = DefaultHeaders()
	}
	if c.Auth == nil {
		c.Auth = auth.NewNone()
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("client config for %q: %w", c.Name, err)
	}
	return nil
}

// Defaults is a partial configuration shared across services, typically held
// by a registry. Only set fields are merged; per-service explicit settings
// always win.
type Defaults struct {
	Timeout    time.Duration
	Headers    map[string]string
	Retries    *int
	RetryDelay time.Duration
	RetryOn408 *bool
}

// Builder assembles a Config fluently and validates it on Build.
type Builder struct {
	cfg Config

	timeoutSet    bool
	retriesSet    bool
	retryDelaySet bool
	retryOn408Set bool
}

// NewBuilder creates a builder for the named service.
func NewBuilder(name string) *Builder {
	return &Builder{cfg: Config{Name: name, Retries: DefaultRetries}}
}

// BaseURL sets the required base URL.
func (b *Builder) BaseURL(u string) *Builder {
	b.cfg.BaseURL = u
	return b
}

// Timeout sets the per-attempt timeout.
func (b *Builder) Timeout(d time.Duration) *Builder {
	b.cfg.Timeout = d
	b.timeoutSet = true
	return b
}

// Header adds a default header.
func (b *Builder) Header(key, value string) *Builder {
	if b.cfg.Headers == nil {
		b.cfg.Headers = DefaultHeaders()
	}
	b.cfg.Headers[key] = value
	return b
}

// Headers merges a default header set.
func (b *Builder) Headers(headers map[string]string) *Builder {
	for k, v := range headers {
		b.Header(k, v)
	}
	return b
}

// Auth sets the authentication strategy.
func (b *Builder) Auth(s auth.Strategy) *Builder {
	b.cfg.Auth = s
	return b
}

// Retries sets the retry budget.
func (b *Builder) Retries(n int) *Builder {
	b.cfg.Retries = n
	b.retriesSet = true
	return b
}

// RetryDelay sets the base backoff delay.
func (b *Builder) RetryDelay(d time.Duration) *Builder {
	b.cfg.RetryDelay = d
	b.retryDelaySet = true
	return b
}

// RetryOn408 toggles retrying HTTP 408 responses.
func (b *Builder) RetryOn408(v bool) *Builder {
	b.cfg.RetryOn408 = v
	b.retryOn408Set = true
	return b
}

// WithDefaults merges shared defaults into fields the builder has not set
// explicitly.
func (b *Builder) WithDefaults(d Defaults) *Builder {
	if !b.timeoutSet && d.Timeout > 0 {
		b.cfg.Timeout = d.Timeout
	}
	if !b.retriesSet && d.Retries != nil {
		b.cfg.Retries = *d.Retries
	}
	if !b.retryDelaySet && d.RetryDelay > 0 {
		b.cfg.RetryDelay = d.RetryDelay
	}
	if !b.retryOn408Set && d.RetryOn408 != nil {
		b.cfg.RetryOn408 = *d.RetryOn408
	}
	for k, v := range d.Headers {
		if b.cfg.Headers == nil {
			b.cfg.Headers = DefaultHeaders()
		}
		if _, explicit := b.cfg.Headers[k]; !explicit {
			b.cfg.Headers[k] = v
		}
	}
	return b
}

// Build applies defaults and validates. BaseURL must be present.
func (b *Builder) Build() (Config, error) {
	cfg := b.cfg
	if cfg.Headers != nil {
		headers := make(map[string]string, len(cfg.Headers))
		for k, v := range cfg.Headers {
			headers[k] = v
		}
		cfg.Headers = headers
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

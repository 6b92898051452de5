package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kbukum/apikit/auth"
	"github.com/kbukum/apikit/client"
	"github.com/kbukum/apikit/logger"
)

// Service is a named client with a health probe. Concrete services embed
// *client.Client, which satisfies both methods.
type Service interface {
	Name() string
	Health(ctx context.Context) client.Health
}

// AuthUpdater is implemented by services whose credentials can be swapped
// in place.
type AuthUpdater interface {
	UpdateAuth(s auth.Strategy)
}

// ConfigUpdater is implemented by services whose configuration can be
// replaced, re-initializing the transport.
type ConfigUpdater interface {
	UpdateConfig(cfg client.Config) error
}

// Factory constructs a service instance. The registry's shared defaults are
// passed in; the factory merges them under its own explicit settings
// (typically via client.Builder.WithDefaults).
type Factory func(defaults client.Defaults) (Service, error)

// Registry is a concurrency-safe holder of named service instances.
type Registry struct {
	mu        sync.Mutex
	defaults  client.Defaults
	factories map[string]Factory
	instances map[string]Service
	log       *logger.Logger
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		instances: make(map[string]Service),
		log:       logger.WithComponent("registry"),
	}
}

// SetDefaults sets the shared partial configuration passed to factories.
// It affects services constructed after the call.
func (r *Registry) SetDefaults(d client.Defaults) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaults = d
}

// RegisterFactory registers a lazy constructor for a named service.
func (r *Registry) RegisterFactory(name string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("service %q already registered", name)
	}
	if _, exists := r.instances[name]; exists {
		return fmt.Errorf("service %q already registered", name)
	}
	r.factories[name] = factory
	r.log.Debug("service factory registered", logger.Fields(logger.FieldService, name))
	return nil
}

// Register registers an already-constructed service instance.
func (r *Registry) Register(name string, svc Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.instances[name]; exists {
		return fmt.Errorf("service %q already registered", name)
	}
	r.instances[name] = svc
	r.log.Debug("service instance registered", logger.Fields(logger.FieldService, name))
	return nil
}

// Get returns the named service, constructing it on first access. Repeated
// calls return the same instance until Reset. Construction happens under the
// registry lock, so concurrent first access produces exactly one instance.
func (r *Registry) Get(name string) (Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getLocked(name)
}

func (r *Registry) getLocked(name string) (Service, error) {
	if svc, ok := r.instances[name]; ok {
		return svc, nil
	}

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("service %q not registered", name)
	}

	svc, err := factory(r.defaults)
	if err != nil {
		return nil, fmt.Errorf("construct service %q: %w", name, err)
	}
	r.instances[name] = svc
	r.log.Info("service constructed", logger.Fields(logger.FieldService, name))
	return svc, nil
}

// Has reports whether a name is registered, as factory or instance.
func (r *Registry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.instances[name]; ok {
		return true
	}
	_, ok := r.factories[name]
	return ok
}

// Names returns all registered service names, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(r.factories)+len(r.instances))
	for name := range r.factories {
		seen[name] = struct{}{}
	}
	for name := range r.instances {
		seen[name] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HealthAll probes every registered service. Construction failures and
// panicking probes become unhealthy entries; nothing propagates.
func (r *Registry) HealthAll(ctx context.Context) map[string]client.Health {
	report := make(map[string]client.Health)
	for _, name := range r.Names() {
		svc, err := r.Get(name)
		if err != nil {
			report[name] = client.Health{Status: client.StatusUnhealthy, Details: err.Error()}
			continue
		}
		report[name] = probe(ctx, svc)
	}
	return report
}

// probe isolates a single health check so a panicking service cannot take
// down the whole report.
func probe(ctx context.Context, svc Service) (h client.Health) {
	defer func() {
		if rec := recover(); rec != nil {
			h = client.Health{
				Status:  client.StatusUnhealthy,
				Details: fmt.Sprintf("health probe panic: %v", rec),
			}
		}
	}()
	return svc.Health(ctx)
}

// UpdateAuth swaps the named service's credentials in place.
func (r *Registry) UpdateAuth(name string, s auth.Strategy) error {
	svc, err := r.Get(name)
	if err != nil {
		return err
	}
	updater, ok := svc.(AuthUpdater)
	if !ok {
		return fmt.Errorf("service %q does not support auth updates", name)
	}
	updater.UpdateAuth(s)
	r.log.Info("service auth updated", logger.Fields(logger.FieldService, name))
	return nil
}

// UpdateConfig replaces the named service's configuration.
func (r *Registry) UpdateConfig(name string, cfg client.Config) error {
	svc, err := r.Get(name)
	if err != nil {
		return err
	}
	updater, ok := svc.(ConfigUpdater)
	if !ok {
		return fmt.Errorf("service %q does not support config updates", name)
	}
	if err := updater.UpdateConfig(cfg); err != nil {
		return fmt.Errorf("update config for %q: %w", name, err)
	}
	r.log.Info("service config updated", logger.Fields(logger.FieldService, name))
	return nil
}

// Reset drops all cached instances. Factories stay registered, so the next
// Get per name reconstructs.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances = make(map[string]Service)
	r.log.Info("registry reset")
}

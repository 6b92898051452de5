package registry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kbukum/apikit/auth"
	"github.com/kbukum/apikit/client"
)

type fakeService struct {
	name     string
	health   client.Health
	panics   bool
	authed   auth.Strategy
	config   client.Config
	cfgError error
}

func (f *fakeService) Name() string { return f.name }

func (f *fakeService) Health(ctx context.Context) client.Health {
	if f.panics {
		panic("probe exploded")
	}
	return f.health
}

func (f *fakeService) UpdateAuth(s auth.Strategy) { f.authed = s }

func (f *fakeService) UpdateConfig(cfg client.Config) error {
	if f.cfgError != nil {
		return f.cfgError
	}
	f.config = cfg
	return nil
}

func healthyFactory(name string) Factory {
	return func(defaults client.Defaults) (Service, error) {
		return &fakeService{name: name, health: client.Health{Status: client.StatusHealthy}}, nil
	}
}

func TestRegistry_Get_LazySingleInstance(t *testing.T) {
	r := New()
	var constructions int32
	r.RegisterFactory("posts", func(defaults client.Defaults) (Service, error) {
		atomic.AddInt32(&constructions, 1)
		return &fakeService{name: "posts"}, nil
	})

	if atomic.LoadInt32(&constructions) != 0 {
		t.Fatal("factory must not run before first Get")
	}

	first, err := r.Get("posts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := r.Get("posts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Error("repeated Get must return the same instance")
	}
	if got := atomic.LoadInt32(&constructions); got != 1 {
		t.Errorf("constructions = %d, want 1", got)
	}
}

func TestRegistry_Get_ConcurrentFirstAccess(t *testing.T) {
	r := New()
	var constructions int32
	r.RegisterFactory("posts", func(defaults client.Defaults) (Service, error) {
		atomic.AddInt32(&constructions, 1)
		return &fakeService{name: "posts"}, nil
	})

	var wg sync.WaitGroup
	instances := make([]Service, 16)
	for i := range instances {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			svc, err := r.Get("posts")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			instances[i] = svc
		}(i)
	}
	wg.Wait()

	if got := atomic.LoadInt32(&constructions); got != 1 {
		t.Errorf("constructions = %d, want exactly 1", got)
	}
	for i := 1; i < len(instances); i++ {
		if instances[i] != instances[0] {
			t.Fatal("concurrent Get produced distinct instances")
		}
	}
}

func TestRegistry_Get_Unknown(t *testing.T) {
	r := New()
	if _, err := r.Get("nope"); err == nil {
		t.Fatal("expected error for unregistered service")
	}
}

func TestRegistry_Get_PassesDefaults(t *testing.T) {
	r := New()
	retries := 5
	r.SetDefaults(client.Defaults{Retries: &retries})

	var seen client.Defaults
	r.RegisterFactory("posts", func(defaults client.Defaults) (Service, error) {
		seen = defaults
		return &fakeService{name: "posts"}, nil
	})

	if _, err := r.Get("posts"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen.Retries == nil || *seen.Retries != 5 {
		t.Errorf("defaults not passed to factory: %+v", seen)
	}
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := New()
	r.RegisterFactory("posts", healthyFactory("posts"))
	if err := r.RegisterFactory("posts", healthyFactory("posts")); err == nil {
		t.Error("expected duplicate factory error")
	}
	if err := r.Register("users", &fakeService{name: "users"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Register("users", &fakeService{name: "users"}); err == nil {
		t.Error("expected duplicate instance error")
	}
}

func TestRegistry_HasAndNames(t *testing.T) {
	r := New()
	r.RegisterFactory("posts", healthyFactory("posts"))
	r.Register("users", &fakeService{name: "users"})

	if !r.Has("posts") || !r.Has("users") {
		t.Error("Has should see factories and instances")
	}
	if r.Has("albums") {
		t.Error("Has should not invent services")
	}

	names := r.Names()
	if len(names) != 2 || names[0] != "posts" || names[1] != "users" {
		t.Errorf("names = %v, want [posts users]", names)
	}
}

func TestRegistry_HealthAll(t *testing.T) {
	r := New()
	r.Register("ok", &fakeService{name: "ok", health: client.Health{Status: client.StatusHealthy}})
	r.Register("panicky", &fakeService{name: "panicky", panics: true})
	r.RegisterFactory("broken", func(defaults client.Defaults) (Service, error) {
		return nil, errors.New("no base url")
	})

	report := r.HealthAll(context.Background())
	if len(report) != 3 {
		t.Fatalf("report = %v", report)
	}
	if report["ok"].Status != client.StatusHealthy {
		t.Errorf("ok = %v", report["ok"])
	}
	if report["panicky"].Status != client.StatusUnhealthy {
		t.Errorf("panicky = %v", report["panicky"])
	}
	if report["broken"].Status != client.StatusUnhealthy {
		t.Errorf("broken = %v", report["broken"])
	}
}

func TestRegistry_UpdateAuth(t *testing.T) {
	r := New()
	svc := &fakeService{name: "posts"}
	r.Register("posts", svc)

	strategy := auth.NewBearer("t")
	if err := r.UpdateAuth("posts", strategy); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.authed != strategy {
		t.Error("auth not forwarded to service")
	}
	if err := r.UpdateAuth("missing", strategy); err == nil {
		t.Error("expected error for unknown service")
	}
}

func TestRegistry_UpdateConfig(t *testing.T) {
	r := New()
	svc := &fakeService{name: "posts"}
	r.Register("posts", svc)

	cfg := client.Config{Name: "posts", BaseURL: "https://api.example.com"}
	if err := r.UpdateConfig("posts", cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.config.BaseURL != cfg.BaseURL {
		t.Error("config not forwarded to service")
	}

	svc.cfgError = errors.New("bad config")
	if err := r.UpdateConfig("posts", cfg); err == nil {
		t.Error("expected propagated config error")
	}
}

func TestRegistry_Reset(t *testing.T) {
	r := New()
	var constructions int32
	r.RegisterFactory("posts", func(defaults client.Defaults) (Service, error) {
		atomic.AddInt32(&constructions, 1)
		return &fakeService{name: "posts"}, nil
	})

	first, _ := r.Get("posts")
	r.Reset()

	if !r.Has("posts") {
		t.Error("factories must survive Reset")
	}
	second, err := r.Get("posts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == second {
		t.Error("Reset must drop cached instances")
	}
	if got := atomic.LoadInt32(&constructions); got != 2 {
		t.Errorf("constructions = %d, want 2", got)
	}
}

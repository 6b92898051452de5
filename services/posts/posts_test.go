package posts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/apikit/client"
)

type fixture struct {
	svc   *Service
	calls *int32
	clock *time.Time
}

// newFixture serves a small listing and counts GET /posts transport calls.
func newFixture(t *testing.T, handler http.HandlerFunc) *fixture {
	t.Helper()

	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/posts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			atomic.AddInt32(&calls, 1)
			json.NewEncoder(w).Encode([]Post{{ID: 1, Title: "first"}, {ID: 2, Title: "second"}})
			return
		}
		if handler != nil {
			handler(w, r)
			return
		}
		w.WriteHeader(201)
		json.NewEncoder(w).Encode(Post{ID: 3, Title: "created"})
	})
	mux.HandleFunc("/posts/", func(w http.ResponseWriter, r *http.Request) {
		if handler != nil {
			handler(w, r)
			return
		}
		json.NewEncoder(w).Encode(Post{ID: 1, Title: "first"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg, err := client.NewBuilder("posts").
		BaseURL(srv.URL).
		Retries(0).
		RetryDelay(time.Millisecond).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clock := time.Now()
	svc.now = func() time.Time { return clock }

	f := &fixture{svc: svc, calls: &calls, clock: &clock}
	return f
}

func (f *fixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func (f *fixture) transportCalls() int32 {
	return atomic.LoadInt32(f.calls)
}

func TestGetAll_CacheRoundTrip(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.svc.GetAll(ctx, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 2 {
		t.Errorf("posts = %v", first)
	}

	if _, err := f.svc.GetAll(ctx, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.transportCalls(); got != 1 {
		t.Errorf("calls = %d, want 1 (second read served from cache)", got)
	}

	f.advance(DefaultCacheDuration + time.Second)
	if _, err := f.svc.GetAll(ctx, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.transportCalls(); got != 2 {
		t.Errorf("calls = %d, want 2 after expiry", got)
	}
}

func TestGetAll_BypassCache(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.svc.GetAll(ctx, true)
	f.svc.GetAll(ctx, false)
	if got := f.transportCalls(); got != 2 {
		t.Errorf("calls = %d, want 2 with useCache=false", got)
	}
}

func TestClearCache_ForcesFetch(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.svc.GetAll(ctx, true)
	f.svc.ClearCache()
	f.svc.GetAll(ctx, true)
	if got := f.transportCalls(); got != 2 {
		t.Errorf("calls = %d, want 2 after ClearCache", got)
	}
}

func TestCreate_InvalidatesCache(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.svc.GetAll(ctx, true)
	created, err := f.svc.Create(ctx, Post{Title: "new"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != 3 {
		t.Errorf("created = %+v", created)
	}

	f.svc.GetAll(ctx, true)
	if got := f.transportCalls(); got != 2 {
		t.Errorf("calls = %d, want 2 (write must bypass a still-fresh cache)", got)
	}
}

func TestUpdate_InvalidatesCacheEvenOnFailure(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(503)
	})
	ctx := context.Background()

	f.svc.GetAll(ctx, true)
	if _, err := f.svc.Update(ctx, 1, Post{Title: "x"}); err == nil {
		t.Fatal("expected error")
	}

	f.svc.GetAll(ctx, true)
	if got := f.transportCalls(); got != 2 {
		t.Errorf("calls = %d, want 2 (failed write still clears the cache)", got)
	}
}

func TestDelete_InvalidatesCache(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	})
	ctx := context.Background()

	f.svc.GetAll(ctx, true)
	if err := f.svc.Delete(ctx, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.svc.GetAll(ctx, true)
	if got := f.transportCalls(); got != 2 {
		t.Errorf("calls = %d, want 2 after delete", got)
	}
}

func TestGetByID_NeverCached(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	p, err := f.svc.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != 1 || p.Title != "first" {
		t.Errorf("post = %+v", p)
	}
}

func TestService_HealthPassthrough(t *testing.T) {
	f := newFixture(t, nil)
	if got := f.svc.Health(context.Background()); got.Status != client.StatusHealthy {
		t.Errorf("health = %v", got)
	}
	if f.svc.Name() != "posts" {
		t.Errorf("name = %q", f.svc.Name())
	}
}

func TestFactory_MergesDefaults(t *testing.T) {
	retries := 7
	factory := Factory("https://posts.example.com")
	svc, err := factory(client.Defaults{Retries: &retries, Timeout: 20 * time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ps, ok := svc.(*Service)
	if !ok {
		t.Fatalf("service type = %T", svc)
	}
	cfg := ps.Config()
	if cfg.Retries != 7 || cfg.Timeout != 20*time.Second {
		t.Errorf("defaults not merged: %+v", cfg)
	}
}

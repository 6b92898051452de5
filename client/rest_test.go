package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type testPost struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

func TestGet_DecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]testPost{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}})
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	resp, err := Get[[]testPost](context.Background(), c, "/posts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Data) != 2 || resp.Data[0].Title != "a" {
		t.Errorf("decoded = %+v", resp.Data)
	}
}

func TestPost_EncodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in testPost
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("body not JSON: %v", err)
		}
		if in.Title != "new" {
			t.Errorf("title = %q", in.Title)
		}
		w.WriteHeader(201)
		in.ID = 101
		json.NewEncoder(w).Encode(in)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	resp, err := Post[testPost](context.Background(), c, "/posts", testPost{Title: "new"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 201 || resp.Data.ID != 101 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestDelete_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	resp, err := Delete[struct{}](context.Background(), c, "/posts/1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestDoTyped_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	_, err := Get[testPost](context.Background(), c, "/posts/1")
	if !IsRequest(err) {
		t.Fatalf("expected request error for undecodable body, got %v", err)
	}
}

func TestDoTyped_ErrorPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		w.Write([]byte(`{"error":"gone"}`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	_, err := Get[testPost](context.Background(), c, "/posts/99")
	if !IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

package peppol

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"rechnungswerk/ms_einvoice_core/internal/testutil"
)

func TestAuthManager_GetToken(t *testing.T) {
	var requests int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)

		if r.URL.Path != "/api/v1/token" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %q", r.Method)
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("test-token-abc"))
	}))
	defer server.Close()

	auth := NewAuthManager(server.URL, "user", "pass", 1*time.Hour, server.Client(), testutil.NewNullLogger())

	token, err := auth.GetToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "test-token-abc" {
		t.Errorf("expected token 'test-token-abc', got %q", token)
	}

	// Second call must hit the cache, not the server.
	if _, err := auth.GetToken(context.Background()); err != nil {
		t.Fatalf("unexpected error on cached call: %v", err)
	}
	if got := atomic.LoadInt32(&requests); got != 1 {
		t.Errorf("expected 1 authentication request, got %d", got)
	}
}

func TestAuthManager_GetToken_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	auth := NewAuthManager(server.URL, "user", "pass", 1*time.Hour, server.Client(), testutil.NewNullLogger())

	if _, err := auth.GetToken(context.Background()); err == nil {
		t.Fatal("expected error for failed authentication")
	}
}

func TestAuthManager_GetToken_EmptyToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("  \n"))
	}))
	defer server.Close()

	auth := NewAuthManager(server.URL, "user", "pass", 1*time.Hour, server.Client(), testutil.NewNullLogger())

	if _, err := auth.GetToken(context.Background()); err == nil {
		t.Fatal("expected error for empty token response")
	}
}

func TestAuthManager_ClearToken(t *testing.T) {
	var requests int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("token"))
	}))
	defer server.Close()

	auth := NewAuthManager(server.URL, "user", "pass", 1*time.Hour, server.Client(), testutil.NewNullLogger())

	if _, err := auth.GetToken(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	auth.ClearToken()

	if _, err := auth.GetToken(context.Background()); err != nil {
		t.Fatalf("unexpected error after clear: %v", err)
	}
	if got := atomic.LoadInt32(&requests); got != 2 {
		t.Errorf("expected 2 authentication requests after clear, got %d", got)
	}
}

func TestAuthManager_ConcurrentRefresh(t *testing.T) {
	var requests int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		time.Sleep(10 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("token"))
	}))
	defer server.Close()

	auth := NewAuthManager(server.URL, "user", "pass", 1*time.Hour, server.Client(), testutil.NewNullLogger())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := auth.GetToken(context.Background()); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&requests); got != 1 {
		t.Errorf("expected a single authentication request under contention, got %d", got)
	}
}

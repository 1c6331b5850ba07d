package llmclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"lessonforge/internal/core"
)

func testConfig(name, baseURL string) Config {
	cfg := DefaultConfig(name, baseURL)
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 5 * time.Millisecond
	return cfg
}

func TestDo_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing auth header")
		}
		w.Write([]byte(`{"value": "ok"}`))
	}))
	defer server.Close()

	client := New(testConfig("testprov", server.URL), func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer test-key")
	})

	var result struct {
		Value string `json:"value"`
	}
	err := client.Do(context.Background(), Request{Method: http.MethodGet, Endpoint: "/thing"}, &result)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if result.Value != "ok" {
		t.Errorf("Value = %q", result.Value)
	}
}

func TestDo_RetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := New(testConfig("testprov", server.URL), nil)

	err := client.Do(context.Background(), Request{Method: http.MethodGet, Endpoint: "/"}, nil)
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestDo_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": {"message": "no such model"}}`))
	}))
	defer server.Close()

	client := New(testConfig("testprov", server.URL), nil)

	err := client.Do(context.Background(), Request{Method: http.MethodGet, Endpoint: "/"}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (4xx must not retry)", calls.Load())
	}

	var gatewayErr *core.GatewayError
	if !errors.As(err, &gatewayErr) {
		t.Fatalf("expected *core.GatewayError, got %T", err)
	}
	if gatewayErr.Type != core.ErrorTypeRemote {
		t.Errorf("Type = %s", gatewayErr.Type)
	}
	if gatewayErr.Message != "status 404: no such model" {
		t.Errorf("Message = %q", gatewayErr.Message)
	}
}

func TestDo_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := testConfig("testprov", server.URL)
	cfg.MaxRetries = 2
	client := New(cfg, nil)

	err := client.Do(context.Background(), Request{Method: http.MethodGet, Endpoint: "/"}, nil)
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestDo_AttemptTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	cfg := testConfig("slowprov", server.URL)
	cfg.AttemptTimeout = 20 * time.Millisecond
	cfg.MaxRetries = 0
	client := New(cfg, nil)

	start := time.Now()
	err := client.Do(context.Background(), Request{Method: http.MethodGet, Endpoint: "/"}, nil)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
		t.Errorf("attempt was not bounded: took %v", elapsed)
	}
}

func TestDo_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := New(testConfig("testprov", server.URL), nil)

	var result map[string]interface{}
	err := client.Do(context.Background(), Request{Method: http.MethodGet, Endpoint: "/"}, &result)
	if err == nil {
		t.Fatal("expected unmarshal error")
	}

	var gatewayErr *core.GatewayError
	if !errors.As(err, &gatewayErr) || gatewayErr.Type != core.ErrorTypeRemote {
		t.Errorf("expected remote_error, got %v", err)
	}
}

package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-plaid/core"
)

func TestFastHTTPAdapter_RoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/transactions/get" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("expected accept header, got %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"count":10}` {
			t.Errorf("unexpected body %q", string(body))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"transactions":[]}`))
	}))
	defer server.Close()

	adapter := NewFastHTTPAdapter(nil)
	result, err := adapter.Do(context.Background(), core.TransportRequest{
		Method:  http.MethodPost,
		URL:     server.URL + "/transactions/get",
		Headers: map[string]string{"Accept": "application/json"},
		Body:    []byte(`{"count":10}`),
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("fasthttp round trip: %v", err)
	}
	if result.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", result.StatusCode)
	}
	if string(result.Body) != `{"transactions":[]}` {
		t.Fatalf("unexpected body %q", string(result.Body))
	}
	if result.Headers["Content-Type"] != "application/json" {
		t.Fatalf("expected content type header, got %#v", result.Headers)
	}
	if result.Metadata["kind"] != KindFastHTTP {
		t.Fatalf("expected fasthttp metadata kind")
	}
}

func TestFastHTTPAdapter_ReturnsErrorStatusBodies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error_code":"INVALID_API_KEYS"}`))
	}))
	defer server.Close()

	result, err := NewFastHTTPAdapter(nil).Do(context.Background(), core.TransportRequest{
		Method: http.MethodPost,
		URL:    server.URL,
	})
	if err != nil {
		t.Fatalf("expected status to be surfaced as a response: %v", err)
	}
	if result.StatusCode != http.StatusUnauthorized || !strings.Contains(string(result.Body), "INVALID_API_KEYS") {
		t.Fatalf("unexpected response %d %q", result.StatusCode, string(result.Body))
	}
}

func TestFastHTTPAdapter_BodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("12345"))
	}))
	defer server.Close()

	adapter := NewFastHTTPAdapter(nil)
	adapter.MaxResponseBodyBytes = 4
	_, err := adapter.Do(context.Background(), core.TransportRequest{Method: http.MethodGet, URL: server.URL})
	if err == nil || !strings.Contains(err.Error(), "response body exceeds limit of 4 bytes") {
		t.Fatalf("expected body limit error, got %v", err)
	}
}

func TestFastHTTPAdapter_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFastHTTPAdapter(nil).Do(ctx, core.TransportRequest{Method: http.MethodPost, URL: "http://127.0.0.1:1"})
	if err == nil {
		t.Fatalf("expected canceled context error")
	}
	if !core.IsTransportError(err) {
		t.Fatalf("expected transport failure, got %v", err)
	}
}

func TestFastHTTPAdapter_DeadlineHonorsContext(t *testing.T) {
	adapter := NewFastHTTPAdapter(nil)
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	if got := adapter.deadline(context.Background(), now, 0); !got.Equal(now.Add(defaultClientTimeout)) {
		t.Fatalf("expected adapter timeout deadline, got %s", got)
	}
	if got := adapter.deadline(context.Background(), now, time.Second); !got.Equal(now.Add(time.Second)) {
		t.Fatalf("expected request timeout deadline, got %s", got)
	}

	ctxDeadline := now.Add(100 * time.Millisecond)
	ctx, cancel := context.WithDeadline(context.Background(), ctxDeadline)
	defer cancel()
	if got := adapter.deadline(ctx, now, time.Second); !got.Equal(ctxDeadline) {
		t.Fatalf("expected context deadline, got %s", got)
	}
}

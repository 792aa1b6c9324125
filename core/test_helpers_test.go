package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"
)

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.values))
	for key, value := range l.values {
		out[key] = value
	}
	return out, nil
}

type recordingTransport struct {
	mu        sync.Mutex
	responses []TransportResponse
	errs      []error
	requests  []TransportRequest
}

func (a *recordingTransport) Kind() string { return "recording" }

func (a *recordingTransport) Do(_ context.Context, req TransportRequest) (TransportResponse, error) {
	if a == nil {
		return TransportResponse{}, fmt.Errorf("adapter is nil")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	copied := req
	copied.Body = append([]byte(nil), req.Body...)
	a.requests = append(a.requests, copied)
	index := len(a.requests) - 1
	if index < len(a.errs) && a.errs[index] != nil {
		return TransportResponse{}, a.errs[index]
	}
	if index < len(a.responses) {
		return a.responses[index], nil
	}
	if len(a.responses) > 0 {
		return a.responses[len(a.responses)-1], nil
	}
	return TransportResponse{StatusCode: 200, Body: []byte(`{}`)}, nil
}

func (a *recordingTransport) last(t *testing.T) TransportRequest {
	t.Helper()
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.requests) == 0 {
		t.Fatalf("expected at least one transport request")
	}
	return a.requests[len(a.requests)-1]
}

func (a *recordingTransport) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.requests)
}

func jsonResponse(status int, body string) TransportResponse {
	return TransportResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       []byte(body),
	}
}

var testNow = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

func testConfig() Config {
	return Config{
		ClientID:  "client_123",
		Secret:    "secret_456",
		PublicKey: "public_789",
	}
}

func newTestClient(t *testing.T, transport *recordingTransport, opts ...Option) *Client {
	t.Helper()
	base := []Option{
		WithTransport(transport),
		WithClock(func() time.Time { return testNow }),
	}
	client, err := NewClient(testConfig(), append(base, opts...)...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func decodeRequestBody(t *testing.T, req TransportRequest) map[string]any {
	t.Helper()
	if len(req.Body) == 0 {
		t.Fatalf("expected request body for %s %s", req.Method, req.URL)
	}
	var body map[string]any
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	return body
}

func optionsOf(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	options, ok := body["options"].(map[string]any)
	if !ok {
		t.Fatalf("expected options object, got %#v", body["options"])
	}
	return options
}

type memoryActivitySink struct {
	mu      sync.Mutex
	entries []ActivityEntry
	err     error
}

func (s *memoryActivitySink) Record(_ context.Context, entry ActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return s.err
}

func (s *memoryActivitySink) snapshot() []ActivityEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ActivityEntry(nil), s.entries...)
}

package devkit

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/goliatone/go-plaid/core"
)

const KindFake = "fake"

// TransportScript is one canned round trip. A non-nil Err is returned in
// place of the response.
type TransportScript struct {
	Response core.TransportResponse
	Err      error
}

// FakeTransportAdapter replays scripts and records every request. Route
// scripts, keyed by method and path, win over the sequential scripts; each
// list repeats its last entry once exhausted.
type FakeTransportAdapter struct {
	mu       sync.Mutex
	kind     string
	scripts  []TransportScript
	routes   map[string][]TransportScript
	served   map[string]int
	requests []core.TransportRequest
}

func NewFakeTransportAdapter(scripts ...TransportScript) *FakeTransportAdapter {
	return &FakeTransportAdapter{
		kind:    KindFake,
		scripts: append([]TransportScript(nil), scripts...),
		routes:  map[string][]TransportScript{},
		served:  map[string]int{},
	}
}

func (a *FakeTransportAdapter) Kind() string {
	if a == nil {
		return ""
	}
	return a.kind
}

// Route scripts responses for method and path, for example
// Route("POST", "accounts/get", ...). Paths are matched without the base
// url and without leading slashes.
func (a *FakeTransportAdapter) Route(method string, path string, scripts ...TransportScript) *FakeTransportAdapter {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	key := routeKey(method, path)
	a.routes[key] = append(a.routes[key], scripts...)
	return a
}

func (a *FakeTransportAdapter) Do(_ context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	if a == nil {
		return core.TransportResponse{}, fmt.Errorf("devkit: fake transport adapter is nil")
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.requests = append(a.requests, cloneTransportRequest(req))

	key := routeKey(req.Method, requestPath(req.URL))
	if scripts, ok := a.routes[key]; ok && len(scripts) > 0 {
		index := a.served[key]
		a.served[key] = index + 1
		return replay(scripts, index)
	}

	index := a.served[""]
	a.served[""] = index + 1
	if len(a.scripts) > 0 {
		return replay(a.scripts, index)
	}
	return core.TransportResponse{
		StatusCode: 200,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       []byte(`{}`),
		Metadata:   map[string]any{"kind": a.kind},
	}, nil
}

func (a *FakeTransportAdapter) Requests() []core.TransportRequest {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]core.TransportRequest, 0, len(a.requests))
	for _, item := range a.requests {
		out = append(out, cloneTransportRequest(item))
	}
	return out
}

// LastRequest returns the most recent request, false when none was made.
func (a *FakeTransportAdapter) LastRequest() (core.TransportRequest, bool) {
	if a == nil {
		return core.TransportRequest{}, false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.requests) == 0 {
		return core.TransportRequest{}, false
	}
	return cloneTransportRequest(a.requests[len(a.requests)-1]), true
}

// Reset forgets recorded requests and rewinds every script.
func (a *FakeTransportAdapter) Reset() {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests = nil
	a.served = map[string]int{}
}

func replay(scripts []TransportScript, index int) (core.TransportResponse, error) {
	if index >= len(scripts) {
		index = len(scripts) - 1
	}
	script := scripts[index]
	if script.Err != nil {
		return core.TransportResponse{}, script.Err
	}
	return cloneTransportResponse(script.Response), nil
}

func routeKey(method string, path string) string {
	method = strings.TrimSpace(strings.ToUpper(method))
	if method == "" {
		method = "GET"
	}
	return method + " " + strings.Trim(strings.TrimSpace(path), "/")
}

func requestPath(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	return parsed.Path
}

func cloneTransportRequest(in core.TransportRequest) core.TransportRequest {
	out := core.TransportRequest{
		Method:               in.Method,
		URL:                  in.URL,
		Headers:              map[string]string{},
		Query:                map[string]string{},
		Body:                 append([]byte(nil), in.Body...),
		Metadata:             map[string]any{},
		Timeout:              in.Timeout,
		MaxResponseBodyBytes: in.MaxResponseBodyBytes,
	}
	for key, value := range in.Headers {
		out.Headers[key] = value
	}
	for key, value := range in.Query {
		out.Query[key] = value
	}
	for key, value := range in.Metadata {
		out.Metadata[key] = value
	}
	return out
}

func cloneTransportResponse(in core.TransportResponse) core.TransportResponse {
	out := core.TransportResponse{
		StatusCode: in.StatusCode,
		Headers:    map[string]string{},
		Body:       append([]byte(nil), in.Body...),
		Metadata:   map[string]any{},
	}
	for key, value := range in.Headers {
		out.Headers[key] = value
	}
	for key, value := range in.Metadata {
		out.Metadata[key] = value
	}
	return out
}

var _ core.TransportAdapter = (*FakeTransportAdapter)(nil)

package transport

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-plaid/core"
	"github.com/valyala/fasthttp"
)

// AdapterFactory builds an adapter from loosely typed settings. Recognized
// keys are "timeout" (duration string, time.Duration or seconds) and
// "max_response_body_bytes".
type AdapterFactory func(config map[string]any) (core.TransportAdapter, error)

type Registry struct {
	mu        sync.RWMutex
	adapters  map[string]core.TransportAdapter
	factories map[string]AdapterFactory
}

func NewRegistry() *Registry {
	return &Registry{
		adapters:  map[string]core.TransportAdapter{},
		factories: map[string]AdapterFactory{},
	}
}

// NewDefaultRegistry knows how to build the rest and fasthttp adapters.
func NewDefaultRegistry() *Registry {
	registry := NewRegistry()
	_ = registry.RegisterFactory(KindREST, restFactory)
	_ = registry.RegisterFactory(KindFastHTTP, fastHTTPFactory)
	return registry
}

func (r *Registry) Register(adapter core.TransportAdapter) error {
	if r == nil {
		return fmt.Errorf("transport: registry is nil")
	}
	if adapter == nil {
		return fmt.Errorf("transport: adapter is nil")
	}
	kind := normalizeKind(adapter.Kind())
	if kind == "" {
		return fmt.Errorf("transport: adapter kind is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[kind]; exists {
		return fmt.Errorf("transport: adapter kind %q already registered", kind)
	}
	r.adapters[kind] = adapter
	return nil
}

func (r *Registry) RegisterFactory(kind string, factory AdapterFactory) error {
	if r == nil {
		return fmt.Errorf("transport: registry is nil")
	}
	kind = normalizeKind(kind)
	if kind == "" {
		return fmt.Errorf("transport: adapter kind is required")
	}
	if factory == nil {
		return fmt.Errorf("transport: adapter factory is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("transport: adapter factory kind %q already registered", kind)
	}
	r.factories[kind] = factory
	return nil
}

// Build returns a registered adapter instance for kind, or builds a new one
// from the kind's factory.
func (r *Registry) Build(kind string, config map[string]any) (core.TransportAdapter, error) {
	if r == nil {
		return nil, fmt.Errorf("transport: registry is nil")
	}
	kind = normalizeKind(kind)
	if kind == "" {
		return nil, fmt.Errorf("transport: adapter kind is required")
	}

	r.mu.RLock()
	adapter, ok := r.adapters[kind]
	factory := r.factories[kind]
	r.mu.RUnlock()
	if ok {
		return adapter, nil
	}
	if factory == nil {
		return nil, fmt.Errorf("transport: adapter kind %q not registered", kind)
	}
	built, err := factory(cloneMap(config))
	if err != nil {
		return nil, err
	}
	if built == nil {
		return nil, fmt.Errorf("transport: factory for %q returned nil adapter", kind)
	}
	return built, nil
}

func (r *Registry) Get(kind string) (core.TransportAdapter, bool) {
	if r == nil {
		return nil, false
	}
	kind = normalizeKind(kind)
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[kind]
	return adapter, ok
}

func (r *Registry) List() []core.TransportAdapter {
	if r == nil {
		return []core.TransportAdapter{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.adapters))
	for kind := range r.adapters {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	result := make([]core.TransportAdapter, 0, len(kinds))
	for _, kind := range kinds {
		result = append(result, r.adapters[kind])
	}
	return result
}

// Kinds lists every kind the registry can resolve, instances and factories.
func (r *Registry) Kinds() []string {
	if r == nil {
		return []string{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]struct{}{}
	for kind := range r.adapters {
		seen[kind] = struct{}{}
	}
	for kind := range r.factories {
		seen[kind] = struct{}{}
	}
	kinds := make([]string, 0, len(seen))
	for kind := range seen {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

func restFactory(config map[string]any) (core.TransportAdapter, error) {
	timeout, err := durationSetting(config, "timeout", defaultClientTimeout)
	if err != nil {
		return nil, err
	}
	limit, err := int64Setting(config, "max_response_body_bytes", defaultResponseBodyLimit)
	if err != nil {
		return nil, err
	}
	adapter := NewRESTAdapter(&http.Client{Timeout: timeout})
	adapter.MaxResponseBodyBytes = limit
	return adapter, nil
}

func fastHTTPFactory(config map[string]any) (core.TransportAdapter, error) {
	timeout, err := durationSetting(config, "timeout", defaultClientTimeout)
	if err != nil {
		return nil, err
	}
	limit, err := int64Setting(config, "max_response_body_bytes", defaultResponseBodyLimit)
	if err != nil {
		return nil, err
	}
	adapter := NewFastHTTPAdapter(&fasthttp.Client{
		Name:                     defaultUserAgent,
		NoDefaultUserAgentHeader: true,
		ReadTimeout:              timeout,
		WriteTimeout:             timeout,
	})
	adapter.Timeout = timeout
	adapter.MaxResponseBodyBytes = limit
	return adapter, nil
}

func durationSetting(config map[string]any, key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := config[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	switch value := raw.(type) {
	case time.Duration:
		if value > 0 {
			return value, nil
		}
		return fallback, nil
	case int:
		return time.Duration(value) * time.Second, nil
	case int64:
		return time.Duration(value) * time.Second, nil
	case float64:
		return time.Duration(value * float64(time.Second)), nil
	case string:
		if strings.TrimSpace(value) == "" {
			return fallback, nil
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return 0, fmt.Errorf("transport: invalid %s %q: %w", key, value, err)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("transport: unsupported %s type %T", key, raw)
	}
}

func int64Setting(config map[string]any, key string, fallback int64) (int64, error) {
	raw, ok := config[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	switch value := raw.(type) {
	case int:
		return int64(value), nil
	case int64:
		return value, nil
	case float64:
		return int64(value), nil
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("transport: invalid %s %q: %w", key, value, err)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("transport: unsupported %s type %T", key, raw)
	}
}

func normalizeKind(kind string) string {
	return strings.TrimSpace(strings.ToLower(kind))
}

func cloneMap(input map[string]any) map[string]any {
	if len(input) == 0 {
		return map[string]any{}
	}
	output := make(map[string]any, len(input))
	for key, value := range input {
		output[key] = value
	}
	return output
}

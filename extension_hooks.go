package plaid

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-plaid/core"
)

// OperationPack groups catalog operations contributed by a downstream
// package, e.g. endpoints not covered by the built-in catalog.
type OperationPack struct {
	Name       string
	Operations []core.Operation
}

type CommandQueryBundleFactory func(client *core.Client) (any, error)

type ExtensionHooks struct {
	mu sync.RWMutex

	operationPacks map[string]OperationPack
	bundles        map[string]CommandQueryBundleFactory
}

func NewExtensionHooks() *ExtensionHooks {
	return &ExtensionHooks{
		operationPacks: map[string]OperationPack{},
		bundles:        map[string]CommandQueryBundleFactory{},
	}
}

func (h *ExtensionHooks) RegisterOperationPack(pack OperationPack) error {
	if h == nil {
		return fmt.Errorf("plaid: extension hooks are nil")
	}
	name := strings.TrimSpace(pack.Name)
	if name == "" {
		return fmt.Errorf("plaid: operation pack name is required")
	}
	if len(pack.Operations) == 0 {
		return fmt.Errorf("plaid: operation pack %q has no operations", name)
	}
	for _, op := range pack.Operations {
		if strings.TrimSpace(op.Name) == "" {
			return fmt.Errorf("plaid: operation pack %q contains an unnamed operation", name)
		}
		if strings.TrimSpace(op.Path) == "" && op.PathFunc == nil {
			return fmt.Errorf("plaid: operation %q in pack %q has no path", op.Name, name)
		}
	}

	normalized := OperationPack{
		Name:       name,
		Operations: append([]core.Operation(nil), pack.Operations...),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.operationPacks[name]; exists {
		return fmt.Errorf("plaid: operation pack %q already registered", name)
	}
	h.operationPacks[name] = normalized
	return nil
}

func (h *ExtensionHooks) RegisterCommandQueryBundle(
	name string,
	factory CommandQueryBundleFactory,
) error {
	if h == nil {
		return fmt.Errorf("plaid: extension hooks are nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("plaid: command/query bundle name is required")
	}
	if factory == nil {
		return fmt.Errorf("plaid: command/query bundle %q factory is required", name)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.bundles[name]; exists {
		return fmt.Errorf("plaid: command/query bundle %q already registered", name)
	}
	h.bundles[name] = factory
	return nil
}

// ClientOptions turns the registered packs into client options. Packs apply
// in name order, so a later pack overrides an operation of the same name.
func (h *ExtensionHooks) ClientOptions() []core.Option {
	packs := h.OperationPacks()
	if len(packs) == 0 {
		return nil
	}
	operations := []core.Operation{}
	for _, pack := range packs {
		operations = append(operations, pack.Operations...)
	}
	return []core.Option{core.WithOperations(operations...)}
}

func (h *ExtensionHooks) BuildCommandQueryBundles(client *core.Client) (map[string]any, error) {
	if h == nil {
		return map[string]any{}, nil
	}
	if client == nil {
		return nil, fmt.Errorf("plaid: client is required")
	}

	h.mu.RLock()
	names := make([]string, 0, len(h.bundles))
	for name := range h.bundles {
		names = append(names, name)
	}
	sort.Strings(names)
	factories := make(map[string]CommandQueryBundleFactory, len(h.bundles))
	for name, factory := range h.bundles {
		factories[name] = factory
	}
	h.mu.RUnlock()

	result := make(map[string]any, len(names))
	for _, name := range names {
		bundle, err := factories[name](client)
		if err != nil {
			return nil, fmt.Errorf("plaid: build bundle %q: %w", name, err)
		}
		result[name] = bundle
	}
	return result, nil
}

func (h *ExtensionHooks) OperationPacks() []OperationPack {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.operationPacks))
	for name := range h.operationPacks {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]OperationPack, 0, len(names))
	for _, name := range names {
		pack := h.operationPacks[name]
		out = append(out, OperationPack{
			Name:       pack.Name,
			Operations: append([]core.Operation(nil), pack.Operations...),
		})
	}
	return out
}

func (h *ExtensionHooks) BundleNames() []string {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.bundles))
	for name := range h.bundles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

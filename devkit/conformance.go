package devkit

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goliatone/go-plaid/core"
)

// ValidateTransportAdapterConformance checks that adapter names its kind and
// completes one round trip for request.
func ValidateTransportAdapterConformance(
	ctx context.Context,
	adapter core.TransportAdapter,
	request core.TransportRequest,
) error {
	if adapter == nil {
		return fmt.Errorf("devkit: transport adapter is required")
	}
	if strings.TrimSpace(adapter.Kind()) == "" {
		return fmt.Errorf("devkit: transport adapter kind is required")
	}
	_, err := adapter.Do(ctx, request)
	return err
}

// ValidateEnvelopeConformance invokes operation name through client and
// inspects the request recorded by fake: method and path must match the
// catalog, and the body must carry exactly the credential pair of the
// operation's auth mode.
func ValidateEnvelopeConformance(
	ctx context.Context,
	client *core.Client,
	fake *FakeTransportAdapter,
	name string,
	args core.Args,
) error {
	if client == nil || fake == nil {
		return fmt.Errorf("devkit: client and fake transport are required")
	}
	op, ok := client.Lookup(name)
	if !ok {
		return fmt.Errorf("devkit: operation %q is not in the catalog", name)
	}
	if _, err := client.Invoke(ctx, name, args); err != nil {
		return fmt.Errorf("devkit: invoke %s: %w", name, err)
	}
	req, ok := fake.LastRequest()
	if !ok {
		return fmt.Errorf("devkit: %s made no request", name)
	}
	if !strings.EqualFold(req.Method, op.Method) {
		return fmt.Errorf("devkit: %s expected method %s, got %s", name, op.Method, req.Method)
	}
	if path := strings.Trim(requestPath(req.URL), "/"); !strings.HasPrefix(path, strings.Trim(op.Path, "/")) {
		return fmt.Errorf("devkit: %s expected path %s, got %s", name, op.Path, path)
	}
	if len(req.Body) == 0 {
		if op.Auth == core.AuthNone {
			return nil
		}
		return fmt.Errorf("devkit: %s sent no envelope", name)
	}

	envelope := map[string]any{}
	if err := sonic.Unmarshal(req.Body, &envelope); err != nil {
		return fmt.Errorf("devkit: %s envelope is not json: %w", name, err)
	}
	_, hasID := envelope["client_id"]
	_, hasSecret := envelope["secret"]
	_, hasPublic := envelope["public_key"]
	switch op.Auth {
	case core.AuthClientSecret:
		if !hasID || !hasSecret || hasPublic {
			return fmt.Errorf("devkit: %s must carry client_id and secret only", name)
		}
	case core.AuthPublicKey:
		if !hasPublic || hasID || hasSecret {
			return fmt.Errorf("devkit: %s must carry public_key only", name)
		}
	case core.AuthNone:
		if hasID || hasSecret || hasPublic {
			return fmt.Errorf("devkit: %s must not carry credentials", name)
		}
	}
	return nil
}

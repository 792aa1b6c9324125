package plaid

import (
	"github.com/goliatone/go-plaid/core"
	"github.com/goliatone/go-plaid/transport"
)

func RESTTransport(client transport.HTTPDoer) core.TransportAdapter {
	return transport.NewRESTAdapter(client)
}

func FastHTTPTransport(client transport.FastHTTPDoer) core.TransportAdapter {
	return transport.NewFastHTTPAdapter(client)
}

// TransportFromKind builds an adapter from the default registry. Settings
// accept "timeout" and "max_response_body_bytes".
func TransportFromKind(kind string, settings map[string]any) (core.TransportAdapter, error) {
	return transport.NewDefaultRegistry().Build(kind, settings)
}

// TransportKinds lists the kinds TransportFromKind resolves.
func TransportKinds() []string {
	return transport.NewDefaultRegistry().Kinds()
}

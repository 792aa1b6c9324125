package gocommand

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-command"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	plaidcommand "github.com/goliatone/go-plaid/command"
	"github.com/goliatone/go-plaid/core"
	plaidquery "github.com/goliatone/go-plaid/query"
)

type okMessage struct{}

func (okMessage) Type() string { return "plaid.command.ok" }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "" }

type failingMessage struct{}

func (failingMessage) Type() string { return "plaid.command.fail" }

func (failingMessage) Validate() error { return errors.New("invalid payload") }

type queueMessage struct{}

func (queueMessage) Type() string { return "plaid.command.queue" }

type cannedTransport struct {
	mu   sync.Mutex
	urls []string
	body string
}

func (c *cannedTransport) Kind() string { return "canned" }

func (c *cannedTransport) Do(_ context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.urls = append(c.urls, req.URL)
	return core.TransportResponse{StatusCode: http.StatusOK, Body: []byte(c.body)}, nil
}

func newClient(t *testing.T, transport core.TransportAdapter) *core.Client {
	t.Helper()
	client, err := core.NewClient(core.Config{
		ClientID:  "client_123",
		Secret:    "secret_456",
		PublicKey: "public_789",
	}, core.WithTransport(transport))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestValidateMessageContract(t *testing.T) {
	if err := ValidateMessageContract(okMessage{}); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
	if err := ValidateMessageContract(invalidMessage{}); err == nil {
		t.Fatalf("expected empty type to fail contract validation")
	}
	if err := ValidateMessageContract(failingMessage{}); err == nil {
		t.Fatalf("expected Validate() failure to bubble")
	}
	if err := ValidateMessageContract(plaidcommand.ExchangeTokenMessage{}); err == nil {
		t.Fatalf("expected missing public token to fail")
	}
}

func TestRegisterClient_DispatchesCommandsAndQueries(t *testing.T) {
	transport := &cannedTransport{body: `{"accounts":[{"account_id":"acc_1"}],"access_token":"access-sandbox-1"}`}
	client := newClient(t, transport)
	adapter := NewRegistryAdapter(command.NewRegistry())

	subs, err := RegisterClient(adapter, client, nil)
	if err != nil {
		t.Fatalf("register client: %v", err)
	}
	defer subs.Unsubscribe()
	if len(subs) != 9 {
		t.Fatalf("expected 9 subscriptions without activity reader, got %d", len(subs))
	}
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}

	exchanged, err := DispatchResult[plaidcommand.ExchangeTokenMessage, core.Result](
		context.Background(),
		plaidcommand.ExchangeTokenMessage{PublicToken: "public-sandbox-1"},
	)
	if err != nil {
		t.Fatalf("dispatch exchange token: %v", err)
	}
	if exchanged.Operation != core.OpLinkExchangeToken {
		t.Fatalf("expected exchange result, got %#v", exchanged)
	}

	accounts, err := Query[plaidquery.GetAccountsMessage, core.Result](
		context.Background(),
		plaidquery.GetAccountsMessage{AccessToken: "access-sandbox-1"},
	)
	if err != nil {
		t.Fatalf("query accounts: %v", err)
	}
	items, ok := accounts.Value.([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("expected extracted accounts, got %#v", accounts.Value)
	}

	transport.mu.Lock()
	defer transport.mu.Unlock()
	if len(transport.urls) != 2 ||
		!strings.HasSuffix(transport.urls[0], "/item/public_token/exchange") ||
		!strings.HasSuffix(transport.urls[1], "/accounts/get") {
		t.Fatalf("unexpected request urls %v", transport.urls)
	}
}

func TestRegisterClient_RequiresClient(t *testing.T) {
	if _, err := RegisterClient(NewRegistryAdapter(nil), nil, nil); err == nil {
		t.Fatalf("expected missing client error")
	}
}

func TestQueueResolverHookWiring(t *testing.T) {
	adapter := NewRegistryAdapter(command.NewRegistry())
	queueRegistry := jobqueuecommand.NewRegistry()

	cmd := command.CommandFunc[queueMessage](func(context.Context, queueMessage) error { return nil })

	if err := adapter.AddQueueResolver("queue", queueRegistry); err != nil {
		t.Fatalf("add queue resolver: %v", err)
	}
	if err := adapter.register(cmd); err != nil {
		t.Fatalf("register command: %v", err)
	}
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}

	if _, ok := queueRegistry.Get("plaid.command.queue"); !ok {
		t.Fatalf("expected command to be mirrored into queue registry")
	}
}

package plaid

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/goliatone/go-command"
	"github.com/goliatone/go-plaid/adapters/gocommand"
	plaidcommand "github.com/goliatone/go-plaid/command"
	"github.com/goliatone/go-plaid/core"
	"github.com/goliatone/go-plaid/devkit"
	plaidquery "github.com/goliatone/go-plaid/query"
)

func TestNewFacade_WiresCommandsAndQueries(t *testing.T) {
	facade, err := NewFacade(&stubClientService{}, WithActivityReader(&memoryActivity{}))
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	commands := facade.Commands()
	if commands.InvokeOperation == nil || commands.ExchangeToken == nil || commands.MFAStep == nil || commands.DeleteUser == nil {
		t.Fatalf("expected command handlers to be wired")
	}
	queries := facade.Queries()
	if queries.ReadOperation == nil || queries.GetTransactions == nil || queries.GetAccounts == nil ||
		queries.GetBalances == nil || queries.GetCategories == nil || queries.ListActivity == nil {
		t.Fatalf("expected query handlers to be wired")
	}
}

func TestFacade_CommandAndQueryDelegation(t *testing.T) {
	svc := &stubClientService{}
	activity := &memoryActivity{entries: []core.ActivityEntry{{ID: "act_1", Operation: core.OpConnectAccounts, Status: core.ActivityStatusOK}}}

	facade, err := NewFacade(svc, WithActivityReader(activity))
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}
	ctx := context.Background()

	if err := facade.Commands().DeleteUser.Execute(ctx, plaidcommand.DeleteUserMessage{
		Product:     "connect",
		AccessToken: "access-sandbox-1",
	}); err != nil {
		t.Fatalf("execute delete user command: %v", err)
	}
	if svc.lastDeleteProduct != "connect" || svc.lastDeleteToken != "access-sandbox-1" {
		t.Fatalf("unexpected delete delegation payload %#v", svc)
	}

	balances, err := facade.Queries().GetBalances.Query(ctx, plaidquery.GetBalancesMessage{
		AccessToken: "access-sandbox-1",
		AccountIDs:  []string{"acc_1", "acc_2"},
	})
	if err != nil {
		t.Fatalf("query balances: %v", err)
	}
	if balances.Operation != core.OpBalanceGet || len(svc.lastAccountIDs) != 2 {
		t.Fatalf("unexpected balances delegation %#v / %v", balances, svc.lastAccountIDs)
	}

	page, err := facade.Queries().ListActivity.Query(ctx, plaidquery.ListActivityMessage{
		Filter: core.ActivityFilter{Operation: core.OpConnectAccounts, Page: 1, PerPage: 20},
	})
	if err != nil {
		t.Fatalf("query list activity: %v", err)
	}
	if page.Total != 1 || page.Items[0].ID != "act_1" {
		t.Fatalf("unexpected activity page result: %#v", page)
	}
}

func TestNewFacade_RequiresService(t *testing.T) {
	facade, err := NewFacade(nil)
	if err == nil {
		t.Fatalf("expected nil service error")
	}
	if facade != nil {
		t.Fatalf("expected nil facade on error")
	}
}

func TestNewFacade_ResolvesActivityReaderFromClientSink(t *testing.T) {
	activity := &memoryActivity{}
	client, err := NewClient(
		testConfig("https://sandbox.plaid.test"),
		core.WithTransport(devkit.NewFakeTransportAdapter()),
		core.WithActivitySink(activity),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	facade, err := NewFacade(client)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}
	if facade.ActivityReader() != core.ActivityReader(activity) {
		t.Fatalf("expected activity reader resolved from client sink")
	}

	withoutSink, err := NewFacade(&stubClientService{})
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}
	if withoutSink.ActivityReader() != nil {
		t.Fatalf("expected no activity reader for stub service")
	}
	if _, err := withoutSink.Queries().ListActivity.Query(context.Background(), plaidquery.ListActivityMessage{}); err == nil {
		t.Fatalf("expected missing activity reader error")
	}
}

func TestFacade_SubscribeDispatchesThroughRegistry(t *testing.T) {
	activity := &memoryActivity{}
	fake := devkit.NewFakeTransportAdapter().
		Route(http.MethodPost, "item/public_token/exchange", devkit.JSONResponse(http.StatusOK, map[string]any{
			"access_token": "access-sandbox-1",
			"item_id":      "item_1",
		})).
		Route(http.MethodPost, "accounts/get", devkit.JSONResponse(http.StatusOK, devkit.AccountsFixture()))
	client, err := NewClient(testConfig("https://sandbox.plaid.test"), core.WithTransport(fake), core.WithActivitySink(activity))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	facade, err := NewFacade(client)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	adapter := gocommand.NewRegistryAdapter(command.NewRegistry())
	subs, err := facade.Subscribe(adapter)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer subs.Unsubscribe()
	if len(subs) != 10 {
		t.Fatalf("expected 10 subscriptions with activity reader, got %d", len(subs))
	}
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}

	ctx := context.Background()
	exchanged, err := gocommand.DispatchResult[plaidcommand.ExchangeTokenMessage, core.Result](
		ctx,
		plaidcommand.ExchangeTokenMessage{PublicToken: "public-sandbox-1"},
	)
	if err != nil {
		t.Fatalf("dispatch exchange token: %v", err)
	}
	if exchanged.Operation != core.OpLinkExchangeToken || exchanged.StatusCode != http.StatusOK {
		t.Fatalf("unexpected exchange result %#v", exchanged)
	}

	accounts, err := gocommand.Query[plaidquery.GetAccountsMessage, core.Result](
		ctx,
		plaidquery.GetAccountsMessage{AccessToken: "access-sandbox-1"},
	)
	if err != nil {
		t.Fatalf("query accounts: %v", err)
	}
	if items, ok := accounts.Value.([]any); !ok || len(items) != 2 {
		t.Fatalf("expected two accounts, got %#v", accounts.Value)
	}

	page, err := gocommand.Query[plaidquery.ListActivityMessage, core.ActivityPage](
		ctx,
		plaidquery.ListActivityMessage{Filter: core.ActivityFilter{}},
	)
	if err != nil {
		t.Fatalf("query activity: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("expected both invocations recorded, got %#v", page)
	}
}

func TestFacade_SubscribeRequiresClient(t *testing.T) {
	facade, err := NewFacade(&stubClientService{})
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}
	if _, err := facade.Subscribe(gocommand.NewRegistryAdapter(command.NewRegistry())); err == nil {
		t.Fatalf("expected subscribe to require a client")
	}
}

type stubClientService struct {
	lastDeleteProduct string
	lastDeleteToken   string
	lastAccountIDs    []string
}

func (s *stubClientService) Invoke(_ context.Context, name string, _ core.Args) (core.Result, error) {
	return core.Result{Operation: name, StatusCode: http.StatusOK}, nil
}

func (s *stubClientService) Lookup(name string) (core.Operation, bool) {
	return core.Operation{Name: name, ReadOnly: true}, true
}

func (s *stubClientService) ExchangeToken(context.Context, string) (core.Result, error) {
	return core.Result{Operation: core.OpLinkExchangeToken, StatusCode: http.StatusOK}, nil
}

func (s *stubClientService) MFAStep(context.Context, string, core.MFARequest) (core.Result, error) {
	return core.Result{StatusCode: http.StatusOK}, nil
}

func (s *stubClientService) DeleteUser(_ context.Context, product string, accessToken string) (core.Result, error) {
	s.lastDeleteProduct = product
	s.lastDeleteToken = accessToken
	return core.Result{StatusCode: http.StatusOK}, nil
}

func (s *stubClientService) GetConnectAccounts(context.Context, string) (core.Result, error) {
	return core.Result{Operation: core.OpConnectAccounts, StatusCode: http.StatusOK}, nil
}

func (s *stubClientService) GetConnectTransactions(context.Context, string, core.DateRange) (core.Result, error) {
	return core.Result{Operation: core.OpConnectGet, StatusCode: http.StatusOK}, nil
}

func (s *stubClientService) GetBalances(_ context.Context, _ string, accountIDs ...string) (core.Result, error) {
	s.lastAccountIDs = append([]string(nil), accountIDs...)
	return core.Result{Operation: core.OpBalanceGet, StatusCode: http.StatusOK}, nil
}

func (s *stubClientService) Categories(context.Context, string) (core.Result, error) {
	return core.Result{Operation: core.OpCategoriesGet, StatusCode: http.StatusOK}, nil
}

type memoryActivity struct {
	mu      sync.Mutex
	entries []core.ActivityEntry
}

func (m *memoryActivity) Record(_ context.Context, entry core.ActivityEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memoryActivity) List(context.Context, core.ActivityFilter) (core.ActivityPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return core.ActivityPage{
		Items: append([]core.ActivityEntry(nil), m.entries...),
		Total: len(m.entries),
	}, nil
}

var _ ClientService = (*stubClientService)(nil)

package plaid

import (
	"fmt"

	"github.com/goliatone/go-command/runner"
	"github.com/goliatone/go-plaid/adapters/gocommand"
	plaidcommand "github.com/goliatone/go-plaid/command"
	"github.com/goliatone/go-plaid/core"
	plaidquery "github.com/goliatone/go-plaid/query"
)

// ClientService is the surface the facade handlers drive. *core.Client
// satisfies it.
type ClientService interface {
	plaidcommand.MutatingService
	plaidquery.OperationReader
	plaidquery.AccountsReader
	plaidquery.CategoriesReader
}

type Commands struct {
	InvokeOperation *plaidcommand.InvokeOperationCommand
	ExchangeToken   *plaidcommand.ExchangeTokenCommand
	MFAStep         *plaidcommand.MFAStepCommand
	DeleteUser      *plaidcommand.DeleteUserCommand
}

type Queries struct {
	ReadOperation   *plaidquery.ReadOperationQuery
	GetTransactions *plaidquery.GetTransactionsQuery
	GetAccounts     *plaidquery.GetAccountsQuery
	GetBalances     *plaidquery.GetBalancesQuery
	GetCategories   *plaidquery.GetCategoriesQuery
	ListActivity    *plaidquery.ListActivityQuery
}

type Facade struct {
	service  ClientService
	activity core.ActivityReader
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	activityReader core.ActivityReader
}

func WithActivityReader(reader core.ActivityReader) FacadeOption {
	return func(options *facadeOptions) {
		options.activityReader = reader
	}
}

func NewFacade(service ClientService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("plaid: client service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	reader := cfg.activityReader
	if reader == nil {
		reader = resolveActivityReader(service)
	}

	facade := &Facade{service: service, activity: reader}
	facade.commands = Commands{
		InvokeOperation: plaidcommand.NewInvokeOperationCommand(service),
		ExchangeToken:   plaidcommand.NewExchangeTokenCommand(service),
		MFAStep:         plaidcommand.NewMFAStepCommand(service),
		DeleteUser:      plaidcommand.NewDeleteUserCommand(service),
	}
	facade.queries = Queries{
		ReadOperation:   plaidquery.NewReadOperationQuery(service),
		GetTransactions: plaidquery.NewGetTransactionsQuery(service),
		GetAccounts:     plaidquery.NewGetAccountsQuery(service),
		GetBalances:     plaidquery.NewGetBalancesQuery(service),
		GetCategories:   plaidquery.NewGetCategoriesQuery(service),
		ListActivity:    plaidquery.NewListActivityQuery(reader),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() ClientService {
	if f == nil {
		return nil
	}
	return f.service
}

func (f *Facade) ActivityReader() core.ActivityReader {
	if f == nil {
		return nil
	}
	return f.activity
}

// Subscribe registers the handlers with the go-command registry behind
// adapter. It needs the service to be a *core.Client.
func (f *Facade) Subscribe(adapter *gocommand.RegistryAdapter, runnerOpts ...runner.Option) (gocommand.Subscriptions, error) {
	if f == nil {
		return nil, fmt.Errorf("plaid: facade is nil")
	}
	client, ok := f.service.(*core.Client)
	if !ok || client == nil {
		return nil, fmt.Errorf("plaid: subscribe requires a *core.Client service, got %T", f.service)
	}
	return gocommand.RegisterClient(adapter, client, f.activity, runnerOpts...)
}

func resolveActivityReader(service ClientService) core.ActivityReader {
	if service == nil {
		return nil
	}
	if reader, ok := service.(core.ActivityReader); ok {
		return reader
	}
	provider, ok := service.(interface {
		Dependencies() core.ClientDependencies
	})
	if !ok {
		return nil
	}
	sink := provider.Dependencies().ActivitySink
	if sink == nil {
		return nil
	}
	reader, ok := sink.(core.ActivityReader)
	if !ok {
		return nil
	}
	return reader
}

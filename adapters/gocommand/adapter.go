package gocommand

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	plaidcommand "github.com/goliatone/go-plaid/command"
	"github.com/goliatone/go-plaid/core"
	plaidquery "github.com/goliatone/go-plaid/query"
)

// ValidateMessageContract enforces Type() plus optional Validate() contract.
func ValidateMessageContract(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	return nil
}

type RegistryAdapter struct {
	registry *command.Registry
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) Registry() *command.Registry {
	if a == nil {
		return nil
	}
	return a.registry
}

func (a *RegistryAdapter) register(handler any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(handler)
}

func (a *RegistryAdapter) AddResolver(key string, resolver command.Resolver) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.AddResolver(strings.TrimSpace(key), resolver)
}

// AddQueueResolver mirrors registered commands into a go-job queue registry
// so they can also run as queued jobs.
func (a *RegistryAdapter) AddQueueResolver(key string, queueRegistry *jobqueuecommand.Registry) error {
	if queueRegistry == nil {
		return fmt.Errorf("gocommand: queue registry is required")
	}
	return a.AddResolver(key, jobqueuecommand.QueueResolver(queueRegistry))
}

func (a *RegistryAdapter) Initialize() error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.Initialize()
}

func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}

// DispatchResult dispatches a command and returns the result it stored.
func DispatchResult[T any, R any](ctx context.Context, msg T) (R, error) {
	var zero R
	if ctx == nil {
		ctx = context.Background()
	}
	collector := command.NewResult[R]()
	if err := commanddispatcher.Dispatch(command.ContextWithResult(ctx, collector), msg); err != nil {
		return zero, err
	}
	value, ok := collector.Load()
	if !ok {
		return zero, nil
	}
	return value, nil
}

func RegisterAndSubscribe[T any](
	adapter *RegistryAdapter,
	cmd command.Commander[T],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if cmd == nil {
		return nil, fmt.Errorf("gocommand: command is required")
	}
	subscription := commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
	if err := adapter.register(cmd); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

func RegisterAndSubscribeQuery[T any, R any](
	adapter *RegistryAdapter,
	qry command.Querier[T, R],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if qry == nil {
		return nil, fmt.Errorf("gocommand: query is required")
	}
	subscription := commanddispatcher.SubscribeQuery(qry, runnerOpts...)
	if err := adapter.register(qry); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

// Subscriptions groups the handlers registered by RegisterClient.
type Subscriptions []commanddispatcher.Subscription

func (s Subscriptions) Unsubscribe() {
	for _, subscription := range s {
		if subscription != nil {
			subscription.Unsubscribe()
		}
	}
}

// RegisterClient wires every plaid command and query handler for client.
// Activity listing is only registered when activity is not nil.
func RegisterClient(
	adapter *RegistryAdapter,
	client *core.Client,
	activity core.ActivityReader,
	runnerOpts ...runner.Option,
) (Subscriptions, error) {
	if client == nil {
		return nil, fmt.Errorf("gocommand: plaid client is required")
	}
	subs := Subscriptions{}
	fail := func(err error) (Subscriptions, error) {
		subs.Unsubscribe()
		return nil, err
	}

	steps := []func() (commanddispatcher.Subscription, error){
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe(adapter, plaidcommand.NewInvokeOperationCommand(client), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe(adapter, plaidcommand.NewExchangeTokenCommand(client), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe(adapter, plaidcommand.NewMFAStepCommand(client), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe(adapter, plaidcommand.NewDeleteUserCommand(client), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery(adapter, plaidquery.NewReadOperationQuery(client), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery(adapter, plaidquery.NewGetTransactionsQuery(client), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery(adapter, plaidquery.NewGetAccountsQuery(client), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery(adapter, plaidquery.NewGetBalancesQuery(client), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery(adapter, plaidquery.NewGetCategoriesQuery(client), runnerOpts...)
		},
	}
	if activity != nil {
		steps = append(steps, func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery(adapter, plaidquery.NewListActivityQuery(activity), runnerOpts...)
		})
	}

	for _, step := range steps {
		subscription, err := step()
		if err != nil {
			return fail(err)
		}
		subs = append(subs, subscription)
	}
	return subs, nil
}

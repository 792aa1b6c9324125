package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-plaid/core"
)

// MutatingService is the slice of *core.Client the commands drive.
type MutatingService interface {
	Invoke(ctx context.Context, name string, args core.Args) (core.Result, error)
	ExchangeToken(ctx context.Context, publicToken string) (core.Result, error)
	MFAStep(ctx context.Context, product string, req core.MFARequest) (core.Result, error)
	DeleteUser(ctx context.Context, product string, accessToken string) (core.Result, error)
}

type InvokeOperationCommand struct {
	service MutatingService
}

func NewInvokeOperationCommand(service MutatingService) *InvokeOperationCommand {
	return &InvokeOperationCommand{service: service}
}

func (c *InvokeOperationCommand) Execute(ctx context.Context, msg InvokeOperationMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: operation service is required")
	}
	out, err := c.service.Invoke(ctx, msg.Operation, msg.Args)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ExchangeTokenCommand struct {
	service MutatingService
}

func NewExchangeTokenCommand(service MutatingService) *ExchangeTokenCommand {
	return &ExchangeTokenCommand{service: service}
}

func (c *ExchangeTokenCommand) Execute(ctx context.Context, msg ExchangeTokenMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: exchange token service is required")
	}
	out, err := c.service.ExchangeToken(ctx, msg.PublicToken)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type MFAStepCommand struct {
	service MutatingService
}

func NewMFAStepCommand(service MutatingService) *MFAStepCommand {
	return &MFAStepCommand{service: service}
}

func (c *MFAStepCommand) Execute(ctx context.Context, msg MFAStepMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: mfa service is required")
	}
	out, err := c.service.MFAStep(ctx, msg.Product, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DeleteUserCommand struct {
	service MutatingService
}

func NewDeleteUserCommand(service MutatingService) *DeleteUserCommand {
	return &DeleteUserCommand{service: service}
}

func (c *DeleteUserCommand) Execute(ctx context.Context, msg DeleteUserMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: delete user service is required")
	}
	out, err := c.service.DeleteUser(ctx, msg.Product, msg.AccessToken)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}

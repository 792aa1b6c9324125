package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-plaid/core"
)

var (
	_ gocmd.Commander[InvokeOperationMessage] = (*InvokeOperationCommand)(nil)
	_ gocmd.Commander[ExchangeTokenMessage]   = (*ExchangeTokenCommand)(nil)
	_ gocmd.Commander[MFAStepMessage]         = (*MFAStepCommand)(nil)
	_ gocmd.Commander[DeleteUserMessage]      = (*DeleteUserCommand)(nil)

	_ MutatingService = (*core.Client)(nil)
)

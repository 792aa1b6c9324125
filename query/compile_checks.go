package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-plaid/core"
)

var (
	_ gocmd.Querier[ReadOperationMessage, core.Result]      = (*ReadOperationQuery)(nil)
	_ gocmd.Querier[GetTransactionsMessage, core.Result]    = (*GetTransactionsQuery)(nil)
	_ gocmd.Querier[GetAccountsMessage, core.Result]        = (*GetAccountsQuery)(nil)
	_ gocmd.Querier[GetBalancesMessage, core.Result]        = (*GetBalancesQuery)(nil)
	_ gocmd.Querier[GetCategoriesMessage, core.Result]      = (*GetCategoriesQuery)(nil)
	_ gocmd.Querier[ListActivityMessage, core.ActivityPage] = (*ListActivityQuery)(nil)

	_ OperationReader  = (*core.Client)(nil)
	_ AccountsReader   = (*core.Client)(nil)
	_ CategoriesReader = (*core.Client)(nil)
)

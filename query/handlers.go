package query

import (
	"context"

	"github.com/goliatone/go-plaid/core"
)

// OperationReader is the read side of *core.Client.
type OperationReader interface {
	Lookup(name string) (core.Operation, bool)
	Invoke(ctx context.Context, name string, args core.Args) (core.Result, error)
}

type AccountsReader interface {
	GetConnectAccounts(ctx context.Context, accessToken string) (core.Result, error)
	GetConnectTransactions(ctx context.Context, accessToken string, window core.DateRange) (core.Result, error)
	GetBalances(ctx context.Context, accessToken string, accountIDs ...string) (core.Result, error)
}

type CategoriesReader interface {
	Categories(ctx context.Context, categoryID string) (core.Result, error)
}

type ReadOperationQuery struct {
	reader OperationReader
}

func NewReadOperationQuery(reader OperationReader) *ReadOperationQuery {
	return &ReadOperationQuery{reader: reader}
}

func (q *ReadOperationQuery) Query(ctx context.Context, msg ReadOperationMessage) (core.Result, error) {
	if q == nil || q.reader == nil {
		return core.Result{}, queryDependencyError("query: operation reader is required")
	}
	op, ok := q.reader.Lookup(msg.Operation)
	if ok && !op.ReadOnly {
		return core.Result{}, queryInvalidInputError(
			"query: operation "+op.Name+" mutates remote state",
			map[string]any{"operation": op.Name},
		)
	}
	// unknown names fall through so the client reports them
	return q.reader.Invoke(ctx, msg.Operation, msg.Args)
}

type GetTransactionsQuery struct {
	reader AccountsReader
}

func NewGetTransactionsQuery(reader AccountsReader) *GetTransactionsQuery {
	return &GetTransactionsQuery{reader: reader}
}

func (q *GetTransactionsQuery) Query(ctx context.Context, msg GetTransactionsMessage) (core.Result, error) {
	if q == nil || q.reader == nil {
		return core.Result{}, queryDependencyError("query: accounts reader is required")
	}
	return q.reader.GetConnectTransactions(ctx, msg.AccessToken, msg.Window)
}

type GetAccountsQuery struct {
	reader AccountsReader
}

func NewGetAccountsQuery(reader AccountsReader) *GetAccountsQuery {
	return &GetAccountsQuery{reader: reader}
}

func (q *GetAccountsQuery) Query(ctx context.Context, msg GetAccountsMessage) (core.Result, error) {
	if q == nil || q.reader == nil {
		return core.Result{}, queryDependencyError("query: accounts reader is required")
	}
	return q.reader.GetConnectAccounts(ctx, msg.AccessToken)
}

type GetBalancesQuery struct {
	reader AccountsReader
}

func NewGetBalancesQuery(reader AccountsReader) *GetBalancesQuery {
	return &GetBalancesQuery{reader: reader}
}

func (q *GetBalancesQuery) Query(ctx context.Context, msg GetBalancesMessage) (core.Result, error) {
	if q == nil || q.reader == nil {
		return core.Result{}, queryDependencyError("query: accounts reader is required")
	}
	return q.reader.GetBalances(ctx, msg.AccessToken, msg.AccountIDs...)
}

type GetCategoriesQuery struct {
	reader CategoriesReader
}

func NewGetCategoriesQuery(reader CategoriesReader) *GetCategoriesQuery {
	return &GetCategoriesQuery{reader: reader}
}

func (q *GetCategoriesQuery) Query(ctx context.Context, msg GetCategoriesMessage) (core.Result, error) {
	if q == nil || q.reader == nil {
		return core.Result{}, queryDependencyError("query: categories reader is required")
	}
	return q.reader.Categories(ctx, msg.CategoryID)
}

type ListActivityQuery struct {
	reader core.ActivityReader
}

func NewListActivityQuery(reader core.ActivityReader) *ListActivityQuery {
	return &ListActivityQuery{reader: reader}
}

func (q *ListActivityQuery) Query(ctx context.Context, msg ListActivityMessage) (core.ActivityPage, error) {
	if q == nil || q.reader == nil {
		return core.ActivityPage{}, queryDependencyError("query: activity reader is required")
	}
	return q.reader.List(ctx, msg.Filter)
}

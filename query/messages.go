package query

import (
	"strings"

	"github.com/goliatone/go-plaid/core"
)

const (
	TypeReadOperation   = "plaid.query.operation.read"
	TypeGetTransactions = "plaid.query.transactions.get"
	TypeGetAccounts     = "plaid.query.accounts.get"
	TypeGetBalances     = "plaid.query.balances.get"
	TypeGetCategories   = "plaid.query.categories.get"
	TypeListActivity    = "plaid.query.activity.list"
)

// ReadOperationMessage runs a catalog operation marked read only.
type ReadOperationMessage struct {
	Operation string
	Args      core.Args
}

func (ReadOperationMessage) Type() string { return TypeReadOperation }

func (m ReadOperationMessage) Validate() error {
	if strings.TrimSpace(m.Operation) == "" {
		return queryValidationError("operation", "is required")
	}
	return nil
}

type GetTransactionsMessage struct {
	AccessToken string
	Window      core.DateRange
}

func (GetTransactionsMessage) Type() string { return TypeGetTransactions }

func (m GetTransactionsMessage) Validate() error {
	return requireAccessToken(m.AccessToken)
}

type GetAccountsMessage struct {
	AccessToken string
}

func (GetAccountsMessage) Type() string { return TypeGetAccounts }

func (m GetAccountsMessage) Validate() error {
	return requireAccessToken(m.AccessToken)
}

type GetBalancesMessage struct {
	AccessToken string
	AccountIDs  []string
}

func (GetBalancesMessage) Type() string { return TypeGetBalances }

func (m GetBalancesMessage) Validate() error {
	return requireAccessToken(m.AccessToken)
}

// GetCategoriesMessage lists every category when CategoryID is empty.
type GetCategoriesMessage struct {
	CategoryID string
}

func (GetCategoriesMessage) Type() string { return TypeGetCategories }

func (GetCategoriesMessage) Validate() error { return nil }

type ListActivityMessage struct {
	Filter core.ActivityFilter
}

func (ListActivityMessage) Type() string { return TypeListActivity }

func (m ListActivityMessage) Validate() error {
	if m.Filter.Page < 0 {
		return queryValidationError("page", "must be >= 0")
	}
	if m.Filter.PerPage < 0 {
		return queryValidationError("per_page", "must be >= 0")
	}
	if m.Filter.From != nil && m.Filter.To != nil && m.Filter.To.Before(*m.Filter.From) {
		return queryValidationError("to", "must not be before from")
	}
	return nil
}

func requireAccessToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return queryValidationError("access_token", "is required")
	}
	return nil
}

package devkit

import (
	"errors"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/goliatone/go-plaid/core"
)

// JSONResponse encodes body and wraps it in a script with the given status.
// It panics when body cannot be encoded, which only happens for fixtures
// written wrong.
func JSONResponse(status int, body any) TransportScript {
	payload, err := sonic.Marshal(body)
	if err != nil {
		panic("devkit: encode fixture body: " + err.Error())
	}
	return TransportScript{Response: core.TransportResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       payload,
	}}
}

// RawResponse scripts an unparsed body, for decode failure cases.
func RawResponse(status int, body string) TransportScript {
	return TransportScript{Response: core.TransportResponse{
		StatusCode: status,
		Headers:    map[string]string{},
		Body:       []byte(body),
	}}
}

// RemoteErrorResponse scripts the remote error envelope.
func RemoteErrorResponse(status int, errorType string, errorCode string, message string) TransportScript {
	return JSONResponse(status, map[string]any{
		"error_type":      errorType,
		"error_code":      errorCode,
		"error_message":   message,
		"display_message": nil,
		"request_id":      "req_devkit",
	})
}

// ConnectionRefused scripts a transport failure shaped like the adapters'
// own dial errors.
func ConnectionRefused() TransportScript {
	return TransportScript{Err: core.TransportError(
		errors.New("dial tcp 127.0.0.1:1: connect: connection refused"),
		map[string]any{"adapter": KindFake},
	)}
}

// ItemLoginRequired is the remote error returned for items needing relink.
func ItemLoginRequired() TransportScript {
	return RemoteErrorResponse(
		http.StatusBadRequest,
		"ITEM_ERROR",
		"ITEM_LOGIN_REQUIRED",
		"the login details of this item have changed",
	)
}

func AccountsFixture() map[string]any {
	return map[string]any{
		"accounts": []any{
			map[string]any{
				"account_id": "acc_checking",
				"name":       "Plaid Checking",
				"type":       "depository",
				"subtype":    "checking",
				"balances":   map[string]any{"available": 100, "current": 110, "iso_currency_code": "USD"},
			},
			map[string]any{
				"account_id": "acc_savings",
				"name":       "Plaid Saving",
				"type":       "depository",
				"subtype":    "savings",
				"balances":   map[string]any{"available": 200, "current": 210, "iso_currency_code": "USD"},
			},
		},
		"item":       map[string]any{"item_id": "item_devkit", "institution_id": "ins_109508"},
		"request_id": "req_accounts",
	}
}

func TransactionsFixture() map[string]any {
	return map[string]any{
		"accounts": AccountsFixture()["accounts"],
		"transactions": []any{
			map[string]any{
				"transaction_id": "txn_1",
				"account_id":     "acc_checking",
				"amount":         12.5,
				"date":           "2026-01-15",
				"name":           "Coffee",
			},
			map[string]any{
				"transaction_id": "txn_2",
				"account_id":     "acc_checking",
				"amount":         89.4,
				"date":           "2026-01-16",
				"name":           "Groceries",
			},
		},
		"total_transactions": 2,
		"request_id":         "req_transactions",
	}
}

func CategoriesFixture() map[string]any {
	return map[string]any{
		"categories": []any{
			map[string]any{"category_id": "10000000", "group": "special", "hierarchy": []any{"Bank Fees"}},
			map[string]any{"category_id": "13005000", "group": "place", "hierarchy": []any{"Food and Drink", "Restaurants"}},
		},
		"request_id": "req_categories",
	}
}

func InstitutionFixture(institutionID string) map[string]any {
	return map[string]any{
		"institution": map[string]any{
			"institution_id": institutionID,
			"name":           "First Platypus Bank",
			"products":       []any{"auth", "balance", "transactions"},
		},
		"request_id": "req_institution",
	}
}

package command

import (
	"context"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-plaid/core"
)

func TestExchangeTokenMessage_ValidateReturnsRichError(t *testing.T) {
	err := (ExchangeTokenMessage{}).Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryValidation {
		t.Fatalf("expected validation category, got %q", rich.Category)
	}
	if rich.TextCode != core.ErrorBadInput {
		t.Fatalf("expected %q text code, got %q", core.ErrorBadInput, rich.TextCode)
	}
	if rich.Code != http.StatusBadRequest {
		t.Fatalf("expected %d code, got %d", http.StatusBadRequest, rich.Code)
	}
	fields := rich.AllValidationErrors()
	if len(fields) == 0 || fields[0].Field != "public_token" {
		t.Fatalf("expected public_token field error, got %#v", fields)
	}
}

func TestInvokeOperationCommand_NilServiceReturnsRichError(t *testing.T) {
	var cmd *InvokeOperationCommand
	err := cmd.Execute(context.Background(), InvokeOperationMessage{})
	if err == nil {
		t.Fatalf("expected command dependency error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal category, got %q", rich.Category)
	}
	if rich.TextCode != core.ErrorInternal {
		t.Fatalf("expected %q text code, got %q", core.ErrorInternal, rich.TextCode)
	}
}

package command

import (
	"strings"

	"github.com/goliatone/go-plaid/core"
)

const (
	TypeInvokeOperation = "plaid.command.operation.invoke"
	TypeExchangeToken   = "plaid.command.link.exchange_token"
	TypeMFAStep         = "plaid.command.mfa.step"
	TypeDeleteUser      = "plaid.command.user.delete"
)

// InvokeOperationMessage runs any catalog operation by name.
type InvokeOperationMessage struct {
	Operation string
	Args      core.Args
}

func (InvokeOperationMessage) Type() string { return TypeInvokeOperation }

func (m InvokeOperationMessage) Validate() error {
	if strings.TrimSpace(m.Operation) == "" {
		return commandValidationError("operation", "is required")
	}
	return nil
}

type ExchangeTokenMessage struct {
	PublicToken string
}

func (ExchangeTokenMessage) Type() string { return TypeExchangeToken }

func (m ExchangeTokenMessage) Validate() error {
	if strings.TrimSpace(m.PublicToken) == "" {
		return commandValidationError("public_token", "is required")
	}
	return nil
}

type MFAStepMessage struct {
	Product string
	Request core.MFARequest
}

func (MFAStepMessage) Type() string { return TypeMFAStep }

func (m MFAStepMessage) Validate() error {
	if err := validateProduct(m.Product); err != nil {
		return err
	}
	if strings.TrimSpace(m.Request.AccessToken) == "" {
		return commandValidationError("access_token", "is required")
	}
	if m.Request.MFA == nil {
		return commandValidationError("mfa", "is required")
	}
	return nil
}

type DeleteUserMessage struct {
	Product     string
	AccessToken string
}

func (DeleteUserMessage) Type() string { return TypeDeleteUser }

func (m DeleteUserMessage) Validate() error {
	if err := validateProduct(m.Product); err != nil {
		return err
	}
	if strings.TrimSpace(m.AccessToken) == "" {
		return commandValidationError("access_token", "is required")
	}
	return nil
}

func validateProduct(product string) error {
	if strings.TrimSpace(product) == "" {
		return commandValidationError("product", "is required")
	}
	if _, err := core.ProductOperation(product, "mfa"); err != nil {
		return commandValidationError("product", "must be one of "+strings.Join(core.Products, ", "))
	}
	return nil
}

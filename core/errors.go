package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorBadInput           = "PLAID_BAD_INPUT"
	ErrorCredentialsMissing = "PLAID_CREDENTIALS_MISSING"
	ErrorOperationNotFound  = "PLAID_OPERATION_NOT_FOUND"
	ErrorTransportFailure   = "PLAID_TRANSPORT_FAILURE"
	ErrorDecodeFailure      = "PLAID_DECODE_FAILURE"
	ErrorRemote             = "PLAID_REMOTE_ERROR"
	ErrorInternal           = "PLAID_INTERNAL_ERROR"
)

func newClientError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

// TransportError reports a round trip that produced no response body.
func TransportError(source error, metadata map[string]any) error {
	err := goerrors.Wrap(source, goerrors.CategoryExternal, "core: transport failure").
		WithCode(http.StatusBadGateway).
		WithTextCode(ErrorTransportFailure)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// DecodeError reports a response body that is not valid JSON.
func DecodeError(source error, metadata map[string]any) error {
	err := goerrors.Wrap(source, goerrors.CategoryExternal, "core: response body is not valid json").
		WithCode(http.StatusBadGateway).
		WithTextCode(ErrorDecodeFailure)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func badInputError(message string, metadata map[string]any) error {
	err := newClientError(message, goerrors.CategoryBadInput, ErrorBadInput)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func validationError(operation string, fields []goerrors.FieldError) error {
	return goerrors.NewValidation("core: "+operation+" arguments failed validation", fields...).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorBadInput).
		WithSeverity(goerrors.SeverityError).
		WithMetadata(map[string]any{"operation": operation})
}

func credentialsMissingError(operation string, mode AuthMode) error {
	return newClientError(
		"core: credentials for "+string(mode)+" are not configured",
		goerrors.CategoryAuth,
		ErrorCredentialsMissing,
	).WithMetadata(map[string]any{"operation": operation, "auth_mode": string(mode)})
}

func operationNotFoundError(name string) error {
	return newClientError("core: operation "+name+" is not registered", goerrors.CategoryNotFound, ErrorOperationNotFound).
		WithMetadata(map[string]any{"operation": name})
}

func IsTransportError(err error) bool {
	return hasTextCode(err, ErrorTransportFailure)
}

func IsDecodeError(err error) bool {
	return hasTextCode(err, ErrorDecodeFailure)
}

func IsBadInput(err error) bool {
	return hasTextCode(err, ErrorBadInput)
}

func IsRemoteError(err error) bool {
	return hasTextCode(err, ErrorRemote)
}

func hasTextCode(err error, textCode string) bool {
	if err == nil {
		return false
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == textCode
}

func clientErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "not registered"):
		return newClientError(err.Error(), goerrors.CategoryNotFound, ErrorOperationNotFound)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "must be"):
		return newClientError(err.Error(), goerrors.CategoryBadInput, ErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureErrorEnvelope(mapped)
}

func ensureErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = errorHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ErrorBadInput
	case goerrors.CategoryNotFound:
		return ErrorOperationNotFound
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return ErrorCredentialsMissing
	case goerrors.CategoryExternal:
		return ErrorTransportFailure
	default:
		return ErrorInternal
	}
}

func errorHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

package transport

import (
	"context"
	"errors"
	"net"
	"net/http"
	"syscall"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-plaid/core"
	"github.com/valyala/fasthttp"
)

// Failure reasons attached as the "reason" metadata member of external
// transport errors.
const (
	ReasonTimeout           = "timeout"
	ReasonCanceled          = "canceled"
	ReasonConnectionRefused = "connection_refused"
	ReasonDNS               = "dns"
	ReasonBodyLimit         = "body_limit"
)

func transportError(
	message string,
	category goerrors.Category,
	code int,
	metadata map[string]any,
) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(transportTextCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// transportWrapError wraps an adapter failure. External failures are tagged
// with a reason, and timeouts answer 504 instead of 502.
func transportWrapError(
	source error,
	category goerrors.Category,
	message string,
	code int,
	metadata map[string]any,
) error {
	if source == nil {
		return transportError(message, category, code, metadata)
	}
	if category == goerrors.CategoryExternal {
		if reason := failureReason(source); reason != "" {
			enriched := make(map[string]any, len(metadata)+1)
			for key, value := range metadata {
				enriched[key] = value
			}
			enriched["reason"] = reason
			metadata = enriched
			if reason == ReasonTimeout {
				code = http.StatusGatewayTimeout
			}
		}
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(code).
		WithTextCode(transportTextCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func transportTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return core.ErrorBadInput
	case goerrors.CategoryExternal:
		return core.ErrorTransportFailure
	default:
		return core.ErrorInternal
	}
}

func failureReason(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) {
		return ReasonCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, fasthttp.ErrTimeout) ||
		errors.Is(err, fasthttp.ErrDialTimeout) {
		return ReasonTimeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ReasonDNS
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return ReasonConnectionRefused
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}
	return ""
}

// FailureReason reports why a transport error happened, or "" when the
// error carries no reason.
func FailureReason(err error) string {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich == nil {
		return ""
	}
	reason, _ := rich.Metadata["reason"].(string)
	return reason
}

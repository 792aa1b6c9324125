package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"syscall"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-plaid/core"
	"github.com/valyala/fasthttp"
)

func TestRESTAdapter_ResponseLimitReturnsRichError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("12345"))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client())
	adapter.MaxResponseBodyBytes = 4

	_, err := adapter.Do(context.Background(), core.TransportRequest{Method: http.MethodGet, URL: server.URL})
	if err == nil {
		t.Fatalf("expected response body limit error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryExternal {
		t.Fatalf("expected external category, got %q", rich.Category)
	}
	if rich.TextCode != core.ErrorTransportFailure {
		t.Fatalf("expected %q text code, got %q", core.ErrorTransportFailure, rich.TextCode)
	}
	if rich.Code != http.StatusBadGateway {
		t.Fatalf("expected %d code, got %d", http.StatusBadGateway, rich.Code)
	}
	if FailureReason(err) != ReasonBodyLimit {
		t.Fatalf("expected body limit reason, got %q", FailureReason(err))
	}
}

func TestAdapters_NilReturnsRichError(t *testing.T) {
	adapters := []core.TransportAdapter{(*RESTAdapter)(nil), (*FastHTTPAdapter)(nil)}
	for _, adapter := range adapters {
		_, err := adapter.Do(context.Background(), core.TransportRequest{})
		if err == nil {
			t.Fatalf("%T: expected nil adapter error", adapter)
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
		if rich.Code != http.StatusInternalServerError {
			t.Fatalf("expected %d code, got %d", http.StatusInternalServerError, rich.Code)
		}
	}
}

func TestTransportTextCode(t *testing.T) {
	cases := map[goerrors.Category]string{
		goerrors.CategoryBadInput:   core.ErrorBadInput,
		goerrors.CategoryValidation: core.ErrorBadInput,
		goerrors.CategoryExternal:   core.ErrorTransportFailure,
		goerrors.CategoryInternal:   core.ErrorInternal,
	}
	for category, want := range cases {
		if got := transportTextCode(category); got != want {
			t.Fatalf("%s: expected %q, got %q", category, want, got)
		}
	}
}

func TestFailureReason_ClassifiesSources(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}
	cases := []struct {
		name   string
		source error
		want   string
	}{
		{"deadline", fmt.Errorf("do: %w", context.DeadlineExceeded), ReasonTimeout},
		{"canceled", context.Canceled, ReasonCanceled},
		{"fasthttp timeout", fasthttp.ErrTimeout, ReasonTimeout},
		{"refused", refused, ReasonConnectionRefused},
		{"dns", &net.DNSError{Err: "no such host", Name: "sandbox.plaid.invalid", IsNotFound: true}, ReasonDNS},
		{"other", errors.New("tls: handshake failure"), ""},
	}
	for _, tc := range cases {
		err := transportWrapError(tc.source, goerrors.CategoryExternal, "transport: execute http request", http.StatusBadGateway, map[string]any{"adapter": KindREST})
		if got := FailureReason(err); got != tc.want {
			t.Fatalf("%s: expected reason %q, got %q", tc.name, tc.want, got)
		}
		if !core.IsTransportError(err) {
			t.Fatalf("%s: expected transport failure text code", tc.name)
		}
		var rich *goerrors.Error
		if !goerrors.As(err, &rich) {
			t.Fatalf("%s: expected go-errors envelope", tc.name)
		}
		wantCode := http.StatusBadGateway
		if tc.want == ReasonTimeout {
			wantCode = http.StatusGatewayTimeout
		}
		if rich.Code != wantCode {
			t.Fatalf("%s: expected code %d, got %d", tc.name, wantCode, rich.Code)
		}
		if rich.Metadata["adapter"] != KindREST {
			t.Fatalf("%s: expected caller metadata kept, got %#v", tc.name, rich.Metadata)
		}
	}

	if reason := FailureReason(transportWrapError(context.DeadlineExceeded, goerrors.CategoryBadInput, "transport: bad", http.StatusBadRequest, nil)); reason != "" {
		t.Fatalf("expected no reason for bad input, got %q", reason)
	}
}

func TestRESTAdapter_TimeoutAndRefusedReasons(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	_, err := NewRESTAdapter(slow.Client()).Do(context.Background(), core.TransportRequest{
		Method:  http.MethodPost,
		URL:     slow.URL,
		Timeout: 20 * time.Millisecond,
	})
	if FailureReason(err) != ReasonTimeout {
		t.Fatalf("expected timeout reason, got %q (%v)", FailureReason(err), err)
	}

	closed := httptest.NewServer(http.NotFoundHandler())
	target := closed.URL
	closed.Close()
	_, err = NewRESTAdapter(nil).Do(context.Background(), core.TransportRequest{Method: http.MethodPost, URL: target})
	if FailureReason(err) != ReasonConnectionRefused {
		t.Fatalf("expected connection refused reason, got %q (%v)", FailureReason(err), err)
	}
}

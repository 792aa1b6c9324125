package transport

import (
	"context"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-plaid/core"
	"github.com/valyala/fasthttp"
)

const KindFastHTTP = "fasthttp"

// FastHTTPDoer is satisfied by *fasthttp.Client and *fasthttp.HostClient.
type FastHTTPDoer interface {
	DoDeadline(req *fasthttp.Request, resp *fasthttp.Response, deadline time.Time) error
}

// FastHTTPAdapter trades net/http compatibility for pooled request and
// response buffers. Suited to high volume balance and transaction polling.
type FastHTTPAdapter struct {
	Client               FastHTTPDoer
	DefaultHeaders       map[string]string
	Timeout              time.Duration
	MaxResponseBodyBytes int64
}

func NewFastHTTPAdapter(client FastHTTPDoer) *FastHTTPAdapter {
	if client == nil {
		client = &fasthttp.Client{
			Name:                     defaultUserAgent,
			NoDefaultUserAgentHeader: true,
		}
	}
	return &FastHTTPAdapter{
		Client:               client,
		DefaultHeaders:       map[string]string{"User-Agent": defaultUserAgent},
		Timeout:              defaultClientTimeout,
		MaxResponseBodyBytes: defaultResponseBodyLimit,
	}
}

func (*FastHTTPAdapter) Kind() string {
	return KindFastHTTP
}

func (a *FastHTTPAdapter) Do(ctx context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	if a == nil || a.Client == nil {
		return core.TransportResponse{}, transportError(
			"transport: fasthttp adapter requires a client",
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			map[string]any{"adapter": KindFastHTTP},
		)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return core.TransportResponse{}, transportWrapError(
			err,
			goerrors.CategoryExternal,
			"transport: request context done",
			http.StatusBadGateway,
			map[string]any{"adapter": KindFastHTTP},
		)
	}

	method := normalizeMethod(req.Method)
	target, err := resolveURL(req.URL, req.Query)
	if err != nil {
		return core.TransportResponse{}, err
	}

	httpReq := fasthttp.AcquireRequest()
	httpRes := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(httpReq)
		fasthttp.ReleaseResponse(httpRes)
	}()

	httpReq.SetRequestURI(target)
	httpReq.Header.SetMethod(method)
	for key, value := range a.DefaultHeaders {
		if strings.TrimSpace(key) != "" {
			httpReq.Header.Set(strings.TrimSpace(key), strings.TrimSpace(value))
		}
	}
	for key, value := range req.Headers {
		if strings.TrimSpace(key) != "" {
			httpReq.Header.Set(strings.TrimSpace(key), strings.TrimSpace(value))
		}
	}
	if len(req.Body) > 0 {
		httpReq.SetBody(req.Body)
	}

	startedAt := time.Now().UTC()
	deadline := a.deadline(ctx, startedAt, req.Timeout)
	if err := a.Client.DoDeadline(httpReq, httpRes, deadline); err != nil {
		return core.TransportResponse{}, transportWrapError(
			err,
			goerrors.CategoryExternal,
			"transport: execute http request",
			http.StatusBadGateway,
			map[string]any{"adapter": KindFastHTTP, "method": method, "url": target},
		)
	}

	limit := resolveResponseBodyLimit(req.MaxResponseBodyBytes, a.MaxResponseBodyBytes)
	body := httpRes.Body()
	if err := checkBodyLimit(KindFastHTTP, httpRes.StatusCode(), int64(len(body)), limit); err != nil {
		return core.TransportResponse{}, err
	}

	// the response buffer is released on return
	payload := make([]byte, len(body))
	copy(payload, body)

	return core.TransportResponse{
		StatusCode: httpRes.StatusCode(),
		Headers:    fastHTTPHeaders(&httpRes.Header),
		Body:       payload,
		Metadata: map[string]any{
			"duration_ms": time.Since(startedAt).Milliseconds(),
			"kind":        KindFastHTTP,
		},
	}, nil
}

func (a *FastHTTPAdapter) deadline(ctx context.Context, now time.Time, timeout time.Duration) time.Time {
	if timeout <= 0 {
		timeout = a.Timeout
	}
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}
	deadline := now.Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		return ctxDeadline
	}
	return deadline
}

func fastHTTPHeaders(header *fasthttp.ResponseHeader) map[string]string {
	flat := map[string]string{}
	header.VisitAll(func(key, value []byte) {
		name := string(key)
		if existing, ok := flat[name]; ok {
			flat[name] = existing + "," + string(value)
			return
		}
		flat[name] = string(value)
	})
	return flat
}

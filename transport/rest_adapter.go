package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-plaid/core"
)

const KindREST = "rest"

const (
	defaultClientTimeout           = 30 * time.Second
	defaultResponseBodyLimit int64 = 10 << 20 // 10 MiB
	defaultUserAgent               = "go-plaid"
)

// HTTPDoer is satisfied by *http.Client. TLS, pooling and timeouts belong to
// the doer.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RESTAdapter performs round trips over net/http and returns the body for
// every status code.
type RESTAdapter struct {
	Client               HTTPDoer
	DefaultHeaders       map[string]string
	MaxResponseBodyBytes int64
}

func NewRESTAdapter(client HTTPDoer) *RESTAdapter {
	if client == nil {
		client = &http.Client{Timeout: defaultClientTimeout}
	}
	return &RESTAdapter{
		Client:               client,
		DefaultHeaders:       map[string]string{"User-Agent": defaultUserAgent},
		MaxResponseBodyBytes: defaultResponseBodyLimit,
	}
}

func (*RESTAdapter) Kind() string {
	return KindREST
}

func (a *RESTAdapter) Do(ctx context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	if a == nil || a.Client == nil {
		return core.TransportResponse{}, transportError(
			"transport: rest adapter requires an http client",
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			map[string]any{"adapter": KindREST},
		)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	method := normalizeMethod(req.Method)
	target, err := resolveURL(req.URL, req.Query)
	if err != nil {
		return core.TransportResponse{}, err
	}

	requestCtx := ctx
	cancel := func() {}
	if req.Timeout > 0 {
		requestCtx, cancel = context.WithTimeout(ctx, req.Timeout)
	}
	defer cancel()

	var body io.Reader = http.NoBody
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(requestCtx, method, target, body)
	if err != nil {
		return core.TransportResponse{}, transportWrapError(
			err,
			goerrors.CategoryBadInput,
			"transport: create http request",
			http.StatusBadRequest,
			map[string]any{"adapter": KindREST, "method": method, "url": target},
		)
	}
	applyHeaders(httpReq.Header, a.DefaultHeaders)
	applyHeaders(httpReq.Header, req.Headers)

	startedAt := time.Now().UTC()
	httpRes, err := a.Client.Do(httpReq)
	if err != nil {
		return core.TransportResponse{}, transportWrapError(
			err,
			goerrors.CategoryExternal,
			"transport: execute http request",
			http.StatusBadGateway,
			map[string]any{"adapter": KindREST, "method": method, "url": target},
		)
	}
	defer httpRes.Body.Close()

	limit := resolveResponseBodyLimit(req.MaxResponseBodyBytes, a.MaxResponseBodyBytes)
	payload, err := io.ReadAll(io.LimitReader(httpRes.Body, limit+1))
	if err != nil {
		return core.TransportResponse{}, transportWrapError(
			err,
			goerrors.CategoryExternal,
			"transport: read response body",
			http.StatusBadGateway,
			map[string]any{"adapter": KindREST, "status_code": httpRes.StatusCode},
		)
	}
	if err := checkBodyLimit(KindREST, httpRes.StatusCode, int64(len(payload)), limit); err != nil {
		return core.TransportResponse{}, err
	}

	return core.TransportResponse{
		StatusCode: httpRes.StatusCode,
		Headers:    flattenHeaders(httpRes.Header),
		Body:       payload,
		Metadata: map[string]any{
			"duration_ms": time.Since(startedAt).Milliseconds(),
			"kind":        KindREST,
		},
	}, nil
}

func normalizeMethod(method string) string {
	method = strings.TrimSpace(strings.ToUpper(method))
	if method == "" {
		return http.MethodGet
	}
	return method
}

// resolveURL validates the absolute request url and merges query members.
func resolveURL(raw string, query map[string]string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", transportError(
			"transport: request url is required",
			goerrors.CategoryBadInput,
			http.StatusBadRequest,
			nil,
		)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", transportWrapError(
			err,
			goerrors.CategoryBadInput,
			"transport: invalid request url",
			http.StatusBadRequest,
			map[string]any{"url": raw},
		)
	}
	if len(query) > 0 {
		values := parsed.Query()
		for key, value := range query {
			if strings.TrimSpace(key) == "" {
				continue
			}
			values.Set(strings.TrimSpace(key), strings.TrimSpace(value))
		}
		parsed.RawQuery = values.Encode()
	}
	return parsed.String(), nil
}

func applyHeaders(target http.Header, headers map[string]string) {
	for key, value := range headers {
		if strings.TrimSpace(key) == "" {
			continue
		}
		target.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}
}

func checkBodyLimit(kind string, statusCode int, size int64, limit int64) error {
	if size <= limit {
		return nil
	}
	return transportError(
		fmt.Sprintf("transport: response body exceeds limit of %d bytes", limit),
		goerrors.CategoryExternal,
		http.StatusBadGateway,
		map[string]any{
			"adapter":          kind,
			"status_code":      statusCode,
			"response_limit_b": limit,
			"reason":           ReasonBodyLimit,
		},
	)
}

func flattenHeaders(headers http.Header) map[string]string {
	if len(headers) == 0 {
		return map[string]string{}
	}
	flat := make(map[string]string, len(headers))
	for key, values := range headers {
		flat[key] = strings.Join(values, ",")
	}
	return flat
}

func resolveResponseBodyLimit(requestLimit int64, adapterLimit int64) int64 {
	if requestLimit > 0 {
		return requestLimit
	}
	if adapterLimit > 0 {
		return adapterLimit
	}
	return defaultResponseBodyLimit
}

package core

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bytedance/sonic"
	goerrors "github.com/goliatone/go-errors"
)

var jsonCodec = sonic.Config{
	EscapeHTML:  true,
	SortMapKeys: true,
	UseNumber:   true,
}.Froze()

// Dispatcher issues one request against the configured base URL and decodes
// the JSON body of any response. It never retries.
type Dispatcher struct {
	baseURL   *url.URL
	transport TransportAdapter
	headers   map[string]string
}

func NewDispatcher(baseURL string, transport TransportAdapter) (*Dispatcher, error) {
	if transport == nil {
		return nil, goerrors.New("core: dispatcher requires a transport adapter", goerrors.CategoryInternal).
			WithCode(http.StatusInternalServerError).
			WithTextCode(ErrorInternal)
	}
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, badInputError("core: dispatcher base url is invalid", map[string]any{"base_url": baseURL})
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}
	return &Dispatcher{
		baseURL:   parsed,
		transport: transport,
		headers: map[string]string{
			"Accept": "application/json",
		},
	}, nil
}

// Dispatch sends payload as JSON (no body when payload is nil) and returns
// the decoded response body for any status code.
func (d *Dispatcher) Dispatch(ctx context.Context, method string, path string, payload map[string]any) (Response, error) {
	if d == nil || d.transport == nil {
		return Response{}, goerrors.New("core: dispatcher is not configured", goerrors.CategoryInternal).
			WithCode(http.StatusInternalServerError).
			WithTextCode(ErrorInternal)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodPost
	}

	target := d.resolve(path)
	headers := make(map[string]string, len(d.headers)+1)
	for key, value := range d.headers {
		headers[key] = value
	}

	var body []byte
	if payload != nil {
		encoded, err := jsonCodec.Marshal(payload)
		if err != nil {
			return Response{}, badInputError("core: encode request payload", map[string]any{
				"path":  path,
				"error": err.Error(),
			})
		}
		body = encoded
		headers["Content-Type"] = "application/json"
	}

	res, err := d.transport.Do(ctx, TransportRequest{
		Method:  method,
		URL:     target,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		return Response{}, TransportError(err, map[string]any{
			"method":    method,
			"path":      path,
			"transport": d.transport.Kind(),
		})
	}

	decoded, err := decodeBody(res.Body)
	if err != nil {
		return Response{}, DecodeError(err, map[string]any{
			"method":      method,
			"path":        path,
			"status_code": res.StatusCode,
		})
	}

	return Response{
		StatusCode: res.StatusCode,
		Headers:    res.Headers,
		Body:       decoded,
		Raw:        res.Body,
	}, nil
}

// resolve joins path onto the base URL. Operation paths arrive already
// escaped, so RawPath keeps their escapes from being encoded twice.
func (d *Dispatcher) resolve(path string) string {
	escaped := strings.TrimLeft(strings.TrimSpace(path), "/")
	relative := &url.URL{Path: escaped}
	if unescaped, err := url.PathUnescape(escaped); err == nil && unescaped != escaped {
		relative = &url.URL{Path: unescaped, RawPath: escaped}
	}
	return d.baseURL.ResolveReference(relative).String()
}

func decodeBody(raw []byte) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var decoded any
	if err := jsonCodec.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode json body: %w", err)
	}
	return decoded, nil
}

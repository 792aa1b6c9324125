package core

import (
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Response is the dispatcher view of a round trip: the status code and the
// decoded JSON body, whatever the status.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       any
	Raw        []byte
}

// RemoteError is the remote service's own error envelope.
type RemoteError struct {
	StatusCode     int    `json:"-"`
	ErrorType      string `json:"error_type,omitempty"`
	ErrorCode      string `json:"error_code,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`
	DisplayMessage string `json:"display_message,omitempty"`
	RequestID      string `json:"request_id,omitempty"`
}

func (e *RemoteError) Error() string {
	if e == nil {
		return ""
	}
	code := e.ErrorCode
	if code == "" {
		code = http.StatusText(e.StatusCode)
	}
	if e.ErrorMessage == "" {
		return fmt.Sprintf("plaid: remote error %s (status %d)", code, e.StatusCode)
	}
	return fmt.Sprintf("plaid: remote error %s (status %d): %s", code, e.StatusCode, e.ErrorMessage)
}

// Result is what an operation returns. Value holds the decoded body, or the
// member named by the operation's response key when the body is not an
// error envelope.
type Result struct {
	Operation  string
	StatusCode int
	Value      any
	Remote     *RemoteError
}

// IsRemoteError reports whether the decoded body is the remote error envelope.
func (r Result) IsRemoteError() bool {
	return r.Remote != nil
}

// Err promotes a remote error envelope into a go-errors value. It returns nil
// for successful responses.
func (r Result) Err() error {
	if r.Remote == nil {
		return nil
	}
	code := r.Remote.StatusCode
	if code == 0 {
		code = http.StatusBadGateway
	}
	return goerrors.New(r.Remote.Error(), remoteCategory(r.Remote)).
		WithCode(code).
		WithTextCode(ErrorRemote).
		WithMetadata(map[string]any{
			"operation":   r.Operation,
			"error_type":  r.Remote.ErrorType,
			"error_code":  r.Remote.ErrorCode,
			"request_id":  r.Remote.RequestID,
			"status_code": r.Remote.StatusCode,
		})
}

// Map returns Value as a JSON object, or nil.
func (r Result) Map() map[string]any {
	out, _ := r.Value.(map[string]any)
	return out
}

// List returns Value as a JSON array, or nil.
func (r Result) List() []any {
	out, _ := r.Value.([]any)
	return out
}

func remoteCategory(remote *RemoteError) goerrors.Category {
	switch {
	case remote.StatusCode == http.StatusUnauthorized:
		return goerrors.CategoryAuth
	case remote.StatusCode == http.StatusForbidden:
		return goerrors.CategoryAuthz
	case remote.StatusCode == http.StatusNotFound:
		return goerrors.CategoryNotFound
	case remote.StatusCode == http.StatusTooManyRequests:
		return goerrors.CategoryRateLimit
	case remote.StatusCode >= 400 && remote.StatusCode < 500:
		return goerrors.CategoryBadInput
	default:
		return goerrors.CategoryExternal
	}
}

// detectRemoteError recognizes an error envelope by a non-2xx status or a
// non-empty error_code member.
func detectRemoteError(statusCode int, body any) *RemoteError {
	object, _ := body.(map[string]any)
	errorCode := stringMember(object, "error_code")
	if statusCode < 400 && errorCode == "" {
		return nil
	}
	return &RemoteError{
		StatusCode:     statusCode,
		ErrorType:      stringMember(object, "error_type"),
		ErrorCode:      errorCode,
		ErrorMessage:   stringMember(object, "error_message"),
		DisplayMessage: stringMember(object, "display_message"),
		RequestID:      stringMember(object, "request_id"),
	}
}

func stringMember(object map[string]any, key string) string {
	if len(object) == 0 {
		return ""
	}
	value, ok := object[key]
	if !ok || value == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(value))
}

package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// AuthMode selects which credential pair is attached to a request envelope.
type AuthMode string

const (
	AuthClientSecret AuthMode = "client_secret"
	AuthPublicKey    AuthMode = "public_key"
	AuthNone         AuthMode = "none"
)

type TransportRequest struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Query                map[string]string
	Body                 []byte
	Metadata             map[string]any
	Timeout              time.Duration
	MaxResponseBodyBytes int64
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

// TransportAdapter performs a single HTTP round trip. Implementations must
// return the response body for every status code and must be safe for
// concurrent use.
type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// Clock returns the current time. Date windows are computed from it.
type Clock func() time.Time

type ActivityStatus string

const (
	ActivityStatusOK     ActivityStatus = "ok"
	ActivityStatusRemote ActivityStatus = "remote_error"
	ActivityStatusError  ActivityStatus = "error"
)

// ActivityEntry is an audit record of one operation invocation. It never
// carries credentials or payload values.
type ActivityEntry struct {
	ID         string
	Operation  string
	Method     string
	Path       string
	StatusCode int
	Status     ActivityStatus
	ErrorCode  string
	DurationMS int64
	Metadata   map[string]any
	CreatedAt  time.Time
}

type ActivityFilter struct {
	Operation string
	Status    ActivityStatus
	From      *time.Time
	To        *time.Time
	Page      int
	PerPage   int
}

type ActivityPage struct {
	Items      []ActivityEntry
	Page       int
	PerPage    int
	Total      int
	HasNext    bool
	NextCursor string
}

type ActivitySink interface {
	Record(ctx context.Context, entry ActivityEntry) error
}

type ActivityReader interface {
	List(ctx context.Context, filter ActivityFilter) (ActivityPage, error)
}

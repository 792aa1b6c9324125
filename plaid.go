package plaid

import (
	"github.com/goliatone/go-plaid/core"
	"github.com/goliatone/go-plaid/transport"
)

type Config = core.Config

type Option = core.Option

type Client = core.Client

type ClientDependencies = core.ClientDependencies

type Args = core.Args
type Operation = core.Operation
type Result = core.Result
type RemoteError = core.RemoteError

type AddAuthUserRequest = core.AddAuthUserRequest
type AddUserRequest = core.AddUserRequest
type UpdateUserRequest = core.UpdateUserRequest
type MFARequest = core.MFARequest
type DateRange = core.DateRange
type SearchRequest = core.SearchRequest

type TransportAdapter = core.TransportAdapter
type TransportRequest = core.TransportRequest
type TransportResponse = core.TransportResponse

type ActivityEntry = core.ActivityEntry
type ActivityFilter = core.ActivityFilter
type ActivityPage = core.ActivityPage
type ActivitySink = core.ActivitySink
type ActivityReader = core.ActivityReader

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// NewClient builds a client over the net/http transport unless opts carry a
// transport of their own.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	withDefaults := make([]Option, 0, len(opts)+1)
	withDefaults = append(withDefaults, core.WithTransport(transport.NewRESTAdapter(nil)))
	withDefaults = append(withDefaults, opts...)
	return core.NewClient(cfg, withDefaults...)
}

// NewClientWithTransport builds a client over the transport kind registered
// in the default transport registry ("rest" or "fasthttp").
func NewClientWithTransport(cfg Config, kind string, settings map[string]any, opts ...Option) (*Client, error) {
	adapter, err := TransportFromKind(kind, settings)
	if err != nil {
		return nil, err
	}
	return NewClient(cfg, append(opts, core.WithTransport(adapter))...)
}

package core

import (
	"context"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"
)

// Client runs catalog operations through a single Dispatcher. It is
// immutable after NewClient and safe for concurrent use.
type Client struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorFactory    ErrorFactory
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	transport       TransportAdapter
	dispatcher      *Dispatcher
	catalog         *Catalog
	activitySink    ActivitySink
	clock           Clock
}

type ClientDependencies struct {
	Logger          Logger
	LoggerProvider  LoggerProvider
	MetricsRecorder MetricsRecorder
	ErrorFactory    ErrorFactory
	ErrorMapper     ErrorMapper
	ConfigProvider  ConfigProvider
	OptionsResolver OptionsResolver
	Transport       TransportAdapter
	ActivitySink    ActivitySink
	Clock           Clock
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	builder := defaultClientBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("plaid", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("plaid"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.clock == nil {
		builder.clock = time.Now
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	dispatcher, err := NewDispatcher(finalConfig.BaseURL, builder.transport)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	catalog := DefaultCatalog()
	if len(builder.operations) > 0 {
		catalog = NewCatalog(append(catalog.Operations(), builder.operations...)...)
	}

	return &Client{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorFactory:    builder.errorFactory,
		errorMapper:     builder.errorMapper,
		configProvider:  builder.configProvider,
		optionsResolver: builder.optionsResolver,
		transport:       builder.transport,
		dispatcher:      dispatcher,
		catalog:         catalog,
		activitySink:    builder.activitySink,
		clock:           builder.clock,
	}, nil
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (c *Client) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.config
}

func (c *Client) Dependencies() ClientDependencies {
	if c == nil {
		return ClientDependencies{}
	}
	return ClientDependencies{
		Logger:          c.logger,
		LoggerProvider:  c.loggerProvider,
		MetricsRecorder: c.metricsRecorder,
		ErrorFactory:    c.errorFactory,
		ErrorMapper:     c.errorMapper,
		ConfigProvider:  c.configProvider,
		OptionsResolver: c.optionsResolver,
		Transport:       c.transport,
		ActivitySink:    c.activitySink,
		Clock:           c.clock,
	}
}

// Operations lists every operation the client can invoke.
func (c *Client) Operations() []Operation {
	if c == nil {
		return nil
	}
	return c.catalog.Operations()
}

func (c *Client) Lookup(name string) (Operation, bool) {
	if c == nil {
		return Operation{}, false
	}
	return c.catalog.Lookup(name)
}

// Dispatcher exposes the underlying dispatcher for raw calls.
func (c *Client) Dispatcher() *Dispatcher {
	if c == nil {
		return nil
	}
	return c.dispatcher
}

// Invoke runs the named operation. Remote error envelopes come back as a
// Result with Remote set and a nil error; the returned error is reserved for
// bad input, missing credentials and structural failures.
func (c *Client) Invoke(ctx context.Context, name string, args Args) (result Result, err error) {
	startedAt := time.Now().UTC()
	if ctx == nil {
		ctx = context.Background()
	}
	fields := map[string]any{
		"operation": strings.TrimSpace(name),
	}
	defer func() {
		if result.StatusCode != 0 {
			fields["status_code"] = result.StatusCode
		}
		if result.Remote != nil {
			fields["error_code"] = result.Remote.ErrorCode
			fields["request_id"] = result.Remote.RequestID
		}
		c.observeOperation(ctx, startedAt, name, err, fields)
		c.recordActivity(ctx, startedAt, result, err, fields)
	}()

	if c == nil || c.dispatcher == nil {
		err = goerrors.New("core: client is not configured", goerrors.CategoryInternal).
			WithCode(http.StatusInternalServerError).
			WithTextCode(ErrorInternal)
		return Result{}, err
	}

	op, ok := c.catalog.Lookup(name)
	if !ok {
		err = c.mapError(operationNotFoundError(name))
		return Result{}, err
	}
	result.Operation = op.Name
	path := op.resolvePath(args)
	fields["method"] = op.Method
	fields["path"] = path

	if err = validateArgs(op, args); err != nil {
		err = c.mapError(err)
		return result, err
	}
	if !c.config.credentialsFor(op.Auth) {
		err = c.mapError(credentialsMissingError(op.Name, op.Auth))
		return result, err
	}

	var envelope Envelope
	if op.Build != nil {
		envelope, err = op.Build(BuildRequest{
			Args:   args.Clone(),
			Config: c.config,
			Now:    c.clock(),
		})
		if err != nil {
			err = c.mapError(err)
			return result, err
		}
	}

	var payload map[string]any
	if envelope != nil {
		attachCredentials(envelope, op.Auth, c.config)
		payload = map[string]any(prune(envelope))
	}

	response, err := c.dispatcher.Dispatch(ctx, op.Method, path, payload)
	if err != nil {
		err = c.mapError(err)
		return result, err
	}

	result.StatusCode = response.StatusCode
	result.Remote = detectRemoteError(response.StatusCode, response.Body)
	result.Value = extractValue(op.ResponseKey, response.Body, result.Remote)
	return result, nil
}

// extractValue returns body[key] for successful responses of keyed
// operations, nil when the key is absent, and the whole body otherwise.
func extractValue(key string, body any, remote *RemoteError) any {
	if key == "" || remote != nil {
		return body
	}
	object, ok := body.(map[string]any)
	if !ok {
		return nil
	}
	return object[key]
}

func (c *Client) recordActivity(ctx context.Context, startedAt time.Time, result Result, err error, fields map[string]any) {
	if c == nil || c.activitySink == nil {
		return
	}
	entry := ActivityEntry{
		ID:         uuid.NewString(),
		Operation:  normalizeOperation(stringField(fields["operation"])),
		Method:     stringField(fields["method"]),
		Path:       stringField(fields["path"]),
		StatusCode: result.StatusCode,
		Status:     ActivityStatusOK,
		DurationMS: time.Since(startedAt).Milliseconds(),
		CreatedAt:  c.clock().UTC(),
	}
	switch {
	case err != nil:
		entry.Status = ActivityStatusError
		var rich *goerrors.Error
		if goerrors.As(err, &rich) {
			entry.ErrorCode = rich.TextCode
		}
	case result.Remote != nil:
		entry.Status = ActivityStatusRemote
		entry.ErrorCode = result.Remote.ErrorCode
		if request := strings.TrimSpace(result.Remote.RequestID); request != "" {
			entry.Metadata = map[string]any{"request_id": request}
		}
	}
	if recordErr := c.activitySink.Record(ctx, entry); recordErr != nil {
		c.logWithLevel(ctx, "warn", "activity record failed", map[string]any{
			"operation": entry.Operation,
			"error":     recordErr.Error(),
		})
	}
}

func stringField(value any) string {
	text, _ := value.(string)
	return strings.TrimSpace(text)
}

func (c *Client) mapError(err error) error {
	if err == nil {
		return nil
	}
	if c == nil || c.errorMapper == nil {
		return err
	}
	mapped := c.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

type ErrorFactory func(message string, category ...goerrors.Category) *goerrors.Error

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type clientBuilder struct {
	runtimeConfig   Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorFactory    ErrorFactory
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	transport       TransportAdapter
	activitySink    ActivitySink
	clock           Clock
	operations      []Operation
}

type Option func(*clientBuilder)

func WithLogger(logger Logger) Option {
	return func(b *clientBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *clientBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *clientBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithErrorFactory(factory ErrorFactory) Option {
	return func(b *clientBuilder) {
		b.errorFactory = factory
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *clientBuilder) {
		b.errorMapper = mapper
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *clientBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *clientBuilder) {
		b.optionsResolver = resolver
	}
}

// WithTransport sets the adapter every dispatched request goes through.
func WithTransport(transport TransportAdapter) Option {
	return func(b *clientBuilder) {
		b.transport = transport
	}
}

// WithActivitySink records one audit entry per invocation.
func WithActivitySink(sink ActivitySink) Option {
	return func(b *clientBuilder) {
		b.activitySink = sink
	}
}

func WithClock(clock Clock) Option {
	return func(b *clientBuilder) {
		b.clock = clock
	}
}

// WithOperations registers extra operations next to the built-in catalog.
// An operation with an existing name replaces the built-in entry.
func WithOperations(operations ...Operation) Option {
	return func(b *clientBuilder) {
		b.operations = append(b.operations, operations...)
	}
}

func defaultClientBuilder(runtime Config) clientBuilder {
	loggerProvider, logger := glog.Resolve("plaid", nil, nil)
	return clientBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: NopMetricsRecorder{},
		errorFactory:    goerrors.New,
		errorMapper:     defaultErrorMapper,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
		clock:           time.Now,
	}
}

func defaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	return clientErrorMapper(err)
}

// StaticConfigLoader serves a fixed raw configuration map.
type StaticConfigLoader struct {
	Values map[string]any
}

func (l StaticConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = StaticConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// GoOptionsResolver layers defaults, loaded config and runtime config in
// that order. Zero values in the upper layers never override a lower layer,
// so a boolean cannot be switched back to false by the runtime layer.
type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			configToLayerMap(defaults, true),
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			configToLayerMap(loaded, false),
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			configToLayerMap(runtime, false),
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	putString(layer, "base_url", cfg.BaseURL, includeZero)
	putString(layer, "client_id", cfg.ClientID, includeZero)
	putString(layer, "secret", cfg.Secret, includeZero)
	putString(layer, "public_key", cfg.PublicKey, includeZero)

	auth := map[string]any{}
	putBool(auth, "login_only", cfg.Auth.LoginOnly, includeZero)
	putSection(layer, "auth", auth)

	connect := map[string]any{}
	putInt(connect, "start_date", cfg.Connect.StartDate, includeZero)
	putInt(connect, "end_date", cfg.Connect.EndDate, includeZero)
	putBool(connect, "login_only", cfg.Connect.LoginOnly, includeZero)
	putBool(connect, "pending", cfg.Connect.Pending, includeZero)
	putBool(connect, "list", cfg.Connect.List, includeZero)
	putInt(connect, "transaction_count", cfg.Connect.TransactionCount, includeZero)
	putSection(layer, "connect", connect)

	income := map[string]any{}
	putBool(income, "list", cfg.Income.List, includeZero)
	putSection(layer, "income", income)

	risk := map[string]any{}
	putBool(risk, "list", cfg.Risk.List, includeZero)
	putSection(layer, "risk", risk)

	institutions := map[string]any{}
	putInt(institutions, "longtail_count", cfg.Institutions.LongtailCount, includeZero)
	putInt(institutions, "longtail_offset", cfg.Institutions.LongtailOffset, includeZero)
	putInt(institutions, "product_count", cfg.Institutions.ProductCount, includeZero)
	putBool(institutions, "include_display_data", cfg.Institutions.IncludeDisplayData, includeZero)
	putSection(layer, "institutions", institutions)

	link := map[string]any{}
	putString(link, "webhook", cfg.Link.Webhook, includeZero)
	putSection(layer, "link", link)
	return layer
}

func putString(layer map[string]any, key string, value string, includeZero bool) {
	if includeZero || strings.TrimSpace(value) != "" {
		layer[key] = value
	}
}

func putInt(layer map[string]any, key string, value int, includeZero bool) {
	if includeZero || value != 0 {
		layer[key] = value
	}
}

func putBool(layer map[string]any, key string, value bool, includeZero bool) {
	if includeZero || value {
		layer[key] = value
	}
}

func putSection(layer map[string]any, key string, section map[string]any) {
	if len(section) > 0 {
		layer[key] = section
	}
}

package core

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

const (
	EnvAPIKey  = "APPNIGMA_API_KEY"
	EnvBaseURL = "APPNIGMA_BASE_URL"
	EnvTimeout = "APPNIGMA_TIMEOUT"
	EnvDebug   = "APPNIGMA_DEBUG"
)

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
	runtimeConfig    Config
	logger           Logger
	loggerProvider   LoggerProvider
	metricsRecorder  MetricsRecorder
	errorMapper      ErrorMapper
	configProvider   ConfigProvider
	optionsResolver  OptionsResolver
	transport        TransportAdapter
	transportFactory TransportFactory
	httpClient       HTTPDoer
	signer           Signer
	credentialCache  CredentialCache
	explicitKeys     []string
	now              func() time.Time
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

// WithTransport replaces the transport used for API calls. When set,
// WithHTTPClient is ignored.
func WithTransport(transport TransportAdapter) Option {
	return func(b *clientBuilder) {
		b.transport = transport
	}
}

// TransportFactory builds the default transport from the resolved config.
type TransportFactory func(cfg Config, httpClient HTTPDoer) (TransportAdapter, error)

func WithTransportFactory(factory TransportFactory) Option {
	return func(b *clientBuilder) {
		b.transportFactory = factory
	}
}

func WithHTTPClient(client HTTPDoer) Option {
	return func(b *clientBuilder) {
		b.httpClient = client
	}
}

func WithSigner(signer Signer) Option {
	return func(b *clientBuilder) {
		b.signer = signer
	}
}

func WithCredentialCache(cache CredentialCache) Option {
	return func(b *clientBuilder) {
		b.credentialCache = cache
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *clientBuilder) {
		b.now = now
	}
}

// WithExplicitConfig marks runtime Config fields, by config key (for example
// "debug" or "credential_expiry_skew"), as set even when they hold the zero
// value. Without it a zero runtime value falls through to env and defaults.
func WithExplicitConfig(keys ...string) Option {
	return func(b *clientBuilder) {
		b.explicitKeys = append(b.explicitKeys, keys...)
	}
}

func defaultClientBuilder(runtime Config) clientBuilder {
	loggerProvider, logger := glog.Resolve("appnigma", nil, nil)
	return clientBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: NopMetricsRecorder{},
		errorMapper:     MapError,
		configProvider:  NewCfgxConfigProvider(NewEnvConfigLoader()),
		optionsResolver: GoOptionsResolver{},
		now:             func() time.Time { return time.Now().UTC() },
	}
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func NewStaticConfigLoader(values map[string]any) RawConfigLoader {
	return staticRawConfigLoader{Values: values}
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

// EnvConfigLoader reads APPNIGMA_* variables. Unset variables are omitted so
// they do not override defaults.
type EnvConfigLoader struct {
	LookupEnv func(key string) (string, bool)
}

func NewEnvConfigLoader() *EnvConfigLoader {
	return &EnvConfigLoader{LookupEnv: os.LookupEnv}
}

func (l *EnvConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	raw := map[string]any{}
	if l == nil {
		return raw, nil
	}
	lookup := l.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if value, ok := lookupTrimmed(lookup, EnvAPIKey); ok {
		raw["api_key"] = value
	}
	if value, ok := lookupTrimmed(lookup, EnvBaseURL); ok {
		raw["base_url"] = value
	}
	if value, ok := lookupTrimmed(lookup, EnvTimeout); ok {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("core: %s: %w", EnvTimeout, err)
		}
		raw["timeout"] = timeout
	}
	if value, ok := lookupTrimmed(lookup, EnvDebug); ok {
		debug, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("core: %s: %w", EnvDebug, err)
		}
		raw["debug"] = debug
	}
	return raw, nil
}

func lookupTrimmed(lookup func(string) (string, bool), key string) (string, bool) {
	value, ok := lookup(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

// Load does not validate; required fields may still arrive from the runtime
// layer in GoOptionsResolver.
func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw, cfgx.WithDefaults(defaults))
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
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

func applyExplicitConfig(resolved Config, runtime Config, keys []string) (Config, error) {
	if len(keys) == 0 {
		return resolved, nil
	}
	for _, key := range keys {
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "api_key":
			resolved.APIKey = strings.TrimSpace(runtime.APIKey)
		case "base_url":
			resolved.BaseURL = strings.TrimSpace(runtime.BaseURL)
		case "timeout":
			resolved.Timeout = runtime.Timeout
		case "debug":
			resolved.Debug = runtime.Debug
		case "user_agent":
			resolved.UserAgent = strings.TrimSpace(runtime.UserAgent)
		case "max_response_body_bytes":
			resolved.MaxResponseBodyBytes = runtime.MaxResponseBodyBytes
		case "credential_expiry_skew":
			resolved.CredentialExpirySkew = runtime.CredentialExpirySkew
		default:
			return Config{}, fmt.Errorf("core: unknown config key %q", key)
		}
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

// configToLayerMap drops zero fields from non-default layers so they do not
// mask lower layers; see WithExplicitConfig.
func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.APIKey) != "" {
		layer["api_key"] = strings.TrimSpace(cfg.APIKey)
	}
	if includeZero || strings.TrimSpace(cfg.BaseURL) != "" {
		layer["base_url"] = strings.TrimSpace(cfg.BaseURL)
	}
	if includeZero || cfg.Timeout > 0 {
		layer["timeout"] = cfg.Timeout
	}
	if includeZero || cfg.Debug {
		layer["debug"] = cfg.Debug
	}
	if includeZero || strings.TrimSpace(cfg.UserAgent) != "" {
		layer["user_agent"] = strings.TrimSpace(cfg.UserAgent)
	}
	if includeZero || cfg.MaxResponseBodyBytes > 0 {
		layer["max_response_body_bytes"] = cfg.MaxResponseBodyBytes
	}
	if includeZero || cfg.CredentialExpirySkew > 0 {
		layer["credential_expiry_skew"] = cfg.CredentialExpirySkew
	}
	return layer
}

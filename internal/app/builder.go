package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/stacklok/dataset-registrar/internal/api"
	"github.com/stacklok/dataset-registrar/internal/config"
	"github.com/stacklok/dataset-registrar/internal/definitions"
	"github.com/stacklok/dataset-registrar/internal/endpoint"
	"github.com/stacklok/dataset-registrar/internal/events"
	"github.com/stacklok/dataset-registrar/internal/registration"
	"github.com/stacklok/dataset-registrar/internal/service"
	"github.com/stacklok/dataset-registrar/internal/state"
	"github.com/stacklok/dataset-registrar/internal/status"
	"github.com/stacklok/dataset-registrar/internal/telemetry"
)

const (
	defaultHTTPAddress    = ":8080"
	defaultRequestTimeout = 10 * time.Second
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 15 * time.Second
	defaultIdleTimeout    = 60 * time.Second
)

// RegistrarAppOptions is a function that configures the registrar app builder
type RegistrarAppOptions func(*registrarAppConfig) error

// registrarAppConfig collects everything needed to assemble a RegistrarApp.
// Overrides exist mostly for tests; production uses the defaults.
type registrarAppConfig struct {
	config *config.Config

	// Optional component overrides
	source              definitions.Source
	resolverOpts        []endpoint.ResolverOption
	telemetryOpts       []telemetry.Option
	registeredListeners []events.Listener[events.DataSetRegistered]

	// HTTP server options
	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration
}

func baseConfig(opts ...RegistrarAppOptions) (*registrarAppConfig, error) {
	cfg := &registrarAppConfig{
		address:        defaultHTTPAddress,
		requestTimeout: defaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// NewRegistrarApp assembles the registrar from its configuration
func NewRegistrarApp(
	ctx context.Context,
	opts ...RegistrarAppOptions,
) (*RegistrarApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}
	if cfg.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	tel, err := telemetry.New(ctx, append(
		[]telemetry.Option{telemetry.WithTelemetryConfig(cfg.config.Telemetry)},
		cfg.telemetryOpts...,
	)...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	appCtx, cancel := context.WithCancel(ctx)

	// Ensure cleanup happens on error
	cleanupNeeded := true
	defer func() {
		if cleanupNeeded {
			cancel()
			if shutdownErr := tel.Shutdown(context.Background()); shutdownErr != nil {
				slog.Warn("Failed to shutdown telemetry", "error", shutdownErr)
			}
		}
	}()

	components, err := buildRegistrationComponents(appCtx, cfg, tel)
	if err != nil {
		return nil, fmt.Errorf("failed to build registration components: %w", err)
	}

	httpServer, err := buildHTTPServer(cfg, components)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	cleanupNeeded = false

	return &RegistrarApp{
		config:     cfg.config,
		components: components,
		httpServer: httpServer,
		cancelFunc: cancel,
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) RegistrarAppOptions {
	return func(cfg *registrarAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) RegistrarAppOptions {
	return func(cfg *registrarAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return fmt.Errorf("address is not valid: %w", err)
		}
		if port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		switch host {
		case "localhost":
			host = "127.0.0.1"
		case "":
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(net.JoinHostPort(host, port)); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares sets custom HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) RegistrarAppOptions {
	return func(cfg *registrarAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithDefinitionSource replaces the definitions file named in the configuration
func WithDefinitionSource(src definitions.Source) RegistrarAppOptions {
	return func(cfg *registrarAppConfig) error {
		cfg.source = src
		return nil
	}
}

// WithResolverOptions passes options to the endpoint resolver
func WithResolverOptions(opts ...endpoint.ResolverOption) RegistrarAppOptions {
	return func(cfg *registrarAppConfig) error {
		cfg.resolverOpts = append(cfg.resolverOpts, opts...)
		return nil
	}
}

// WithTelemetryOptions passes options to the telemetry providers
func WithTelemetryOptions(opts ...telemetry.Option) RegistrarAppOptions {
	return func(cfg *registrarAppConfig) error {
		cfg.telemetryOpts = append(cfg.telemetryOpts, opts...)
		return nil
	}
}

// WithRegisteredListeners subscribes additional listeners to completed registrations
func WithRegisteredListeners(ls ...events.Listener[events.DataSetRegistered]) RegistrarAppOptions {
	return func(cfg *registrarAppConfig) error {
		cfg.registeredListeners = append(cfg.registeredListeners, ls...)
		return nil
	}
}

// buildRegistrationComponents wires definitions, endpoints, events and runs together.
// ctx bounds the lifetime of background registration runs.
func buildRegistrationComponents(
	ctx context.Context,
	b *registrarAppConfig,
	tel *telemetry.Telemetry,
) (*AppComponents, error) {
	slog.Info("Initializing registration components")

	source := b.source
	if source == nil {
		var err error
		source, err = definitions.NewFileSource(b.config.Definitions.File.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open definitions: %w", err)
		}
	}

	stateService := state.NewFileStateService(status.NewFileStatusPersistence(b.config.Status.Dir))
	if err := stateService.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize run state: %w", err)
	}

	endpointMetrics, err := telemetry.NewEndpointMetrics(tel.MeterProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to create endpoint metrics: %w", err)
	}
	templates := make([]endpoint.Template, 0, len(b.config.ServerTemplates))
	for _, tmpl := range b.config.ServerTemplates {
		templates = append(templates, endpoint.Template{
			ID:             tmpl.ID,
			Endpoints:      tmpl.Endpoints,
			RequestTimeout: tmpl.RequestTimeout,
			ProbePath:      tmpl.ProbePath,
		})
	}
	resolver, err := endpoint.NewGroupResolver(templates, append(
		[]endpoint.ResolverOption{endpoint.WithEndpointMetrics(endpointMetrics)},
		b.resolverOpts...,
	)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create endpoint resolver: %w", err)
	}

	registered := events.NewBus[events.DataSetRegistered]("dataset-registered")
	registered.Subscribe(events.NewLogListener[events.DataSetRegistered]("Data set registered"))
	for i, hook := range b.config.GetWebhooks() {
		listener, err := events.NewWebhookListener(hook)
		if err != nil {
			return nil, fmt.Errorf("webhook %d: %w", i, err)
		}
		registered.Subscribe(listener)
	}
	for _, l := range b.registeredListeners {
		registered.Subscribe(l)
	}

	registrationMetrics, err := telemetry.NewRegistrationMetrics(tel.MeterProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to create registration metrics: %w", err)
	}
	synchronizer := registration.NewSynchronizer(resolver, registered,
		registration.WithTotalBudget(b.config.Registration.TotalBudget),
		registration.WithBackoffInterval(b.config.Registration.BackoffInterval),
		registration.WithStateService(stateService),
		registration.WithRegistrationMetrics(registrationMetrics),
		registration.WithTracerProvider(tel.TracerProvider()),
	)

	scheduler := registration.NewAsyncScheduler(ctx, b.config.Registration.MaxConcurrentRuns)

	connected := events.NewBus[events.ServerInstanceConnected]("server-instance-connected")
	connected.Subscribe(registration.NewTrigger(source, synchronizer, scheduler))

	svc := service.NewRegistrarService(source, connected, stateService, resolver)

	slog.Info("Registration components initialized",
		"server_templates", len(templates),
		"webhooks", len(b.config.GetWebhooks()),
		"max_concurrent_runs", b.config.Registration.MaxConcurrentRuns)

	return &AppComponents{
		Resolver:         resolver,
		Scheduler:        scheduler,
		Connected:        connected,
		Registered:       registered,
		StateService:     stateService,
		RegistrarService: svc,
		Telemetry:        tel,
	}, nil
}

// buildHTTPServer builds the HTTP server with router and middleware
func buildHTTPServer(
	b *registrarAppConfig,
	components *AppComponents,
) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// Tracing and metrics come first so that every request is observed
	httpMetrics, err := telemetry.NewHTTPMetrics(components.Telemetry.MeterProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
	}
	observability := []func(http.Handler) http.Handler{
		telemetry.TracingMiddleware(components.Telemetry.TracerProvider()),
	}
	if httpMetrics != nil {
		observability = append(observability, httpMetrics.Middleware)
	}
	middlewares := append(observability, b.middlewares...)

	serverOpts := []api.ServerOption{api.WithMiddlewares(middlewares...)}
	if h := components.Telemetry.MetricsHandler(); h != nil {
		serverOpts = append(serverOpts, api.WithMetricsHandler(h))
		slog.Info("Prometheus metrics endpoint enabled", "path", "/metrics")
	}
	router := api.NewServer(components.RegistrarService, serverOpts...)

	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}

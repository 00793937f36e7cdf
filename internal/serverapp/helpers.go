package serverapp

import (
	"context"
	"crypto/tls"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/go-sql-driver/mysql"
	"github.com/graphql-go/handler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"nameparse/internal/config"
	"nameparse/internal/logging"
	"nameparse/internal/middleware"
	"nameparse/internal/observability"
	"nameparse/internal/resolver"
)

const (
	graphqlPath         = "/graphql"
	healthPath          = "/health"
	metricsPath         = "/metrics"
	reloadOverridesPath = "/admin/reload-overrides"

	defaultHealthTimeout = 2 * time.Second
)

// InitLogger builds the process logger. When OTLP log export is enabled
// the returned provider must be shut down by the caller.
func InitLogger(cfg *config.Config) (*logging.Logger, *observability.LoggerProvider, error) {
	loggerCfg := logging.Config{
		Level:  cfg.Observability.Logging.Level,
		Format: cfg.Observability.Logging.Format,
	}
	logger := logging.NewLogger(loggerCfg)
	slog.SetDefault(logger.Logger)

	if !cfg.Observability.Logging.ExportsEnabled {
		return logger, nil, nil
	}

	logsConfig := cfg.Observability.GetLogsConfig()
	logger.Info("initializing OpenTelemetry logging",
		slog.String("service_name", cfg.Observability.ServiceName),
		slog.String("otlp_endpoint", logsConfig.Endpoint),
		slog.String("otlp_protocol", logsConfig.Protocol),
		slog.Bool("insecure", logsConfig.Insecure),
	)

	loggerProvider, err := observability.InitLoggerProvider(context.Background(), observabilityConfig(cfg, logsConfig))
	if err != nil {
		return nil, nil, err
	}

	loggerCfg.LoggerProvider = loggerProvider.Provider()
	logger = logging.NewLogger(loggerCfg)
	slog.SetDefault(logger.Logger)
	logger.Info("OpenTelemetry logging initialized")

	return logger, loggerProvider, nil
}

// observabilityConfig maps the configured service identity and one
// signal's OTLP settings onto the observability package.
func observabilityConfig(cfg *config.Config, otlp config.OTLPConfig) observability.Config {
	return observability.Config{
		ServiceName:      cfg.Observability.ServiceName,
		ServiceVersion:   cfg.Observability.ServiceVersion,
		Environment:      cfg.Observability.Environment,
		TraceSampleRatio: cfg.Observability.TraceSampleRatio,
		OTLPConfig: observability.OTLPExporterConfig{
			Endpoint:          otlp.Endpoint,
			Protocol:          otlp.Protocol,
			Insecure:          otlp.Insecure,
			TLSCertFile:       otlp.TLSCertFile,
			TLSClientCertFile: otlp.TLSClientCertFile,
			TLSClientKeyFile:  otlp.TLSClientKeyFile,
			Headers:           otlp.Headers,
			Timeout:           otlp.Timeout,
			Compression:       otlp.Compression,
			RetryEnabled:      otlp.RetryEnabled,
			RetryMaxAttempts:  otlp.RetryMaxAttempts,
		},
	}
}

func initMetrics(cfg *config.Config, logger *logging.Logger) (*observability.MeterProvider, *observability.ParseMetrics, error) {
	if !cfg.Observability.MetricsEnabled {
		return nil, nil, nil
	}

	meterProvider, err := observability.InitMeterProvider(observabilityConfig(cfg, config.OTLPConfig{}))
	if err != nil {
		return nil, nil, err
	}
	logger.Info("OpenTelemetry metrics initialized",
		slog.String("service_name", cfg.Observability.ServiceName),
		slog.String("environment", cfg.Observability.Environment),
	)

	metrics, err := observability.InitMetrics(logger.Logger)
	if err != nil {
		_ = meterProvider.Shutdown(context.Background(), logger.Logger)
		return nil, nil, err
	}
	return meterProvider, metrics, nil
}

func initTracing(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*observability.TracerProvider, error) {
	if !cfg.Observability.TracingEnabled {
		return nil, nil
	}

	tracesConfig := cfg.Observability.GetTracesConfig()
	logger.Info("initializing OpenTelemetry tracing",
		slog.String("otlp_endpoint", tracesConfig.Endpoint),
		slog.String("otlp_protocol", tracesConfig.Protocol),
		slog.Float64("sample_ratio", cfg.Observability.TraceSampleRatio),
	)

	tracerProvider, err := observability.InitTracerProvider(ctx, observabilityConfig(cfg, tracesConfig))
	if err != nil {
		return nil, err
	}
	logger.Info("OpenTelemetry tracing initialized")
	return tracerProvider, nil
}

func connectDB(cfg *config.Config, logger *logging.Logger) (*sql.DB, interface{ Unregister() error }, error) {
	dsn, err := cfg.Database.DSN()
	if err != nil {
		return nil, nil, err
	}

	if !cfg.Observability.MetricsEnabled && !cfg.Observability.TracingEnabled {
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, nil, err
		}
		return db, nil, nil
	}

	opts := []otelsql.Option{
		otelsql.WithAttributes(semconv.DBSystemMySQL),
	}
	if cfg.Observability.TracingEnabled {
		opts = append(opts, otelsql.WithSpanOptions(otelsql.SpanOptions{
			DisableErrSkip: true,
		}))
		if cfg.Observability.SQLCommenterEnabled {
			opts = append(opts, otelsql.WithSQLCommenter(true))
		}
	} else if cfg.Observability.SQLCommenterEnabled {
		logger.Warn("SQLCommenter requires tracing to be enabled - skipping SQLCommenter")
	}

	db, err := otelsql.Open("mysql", dsn, opts...)
	if err != nil {
		return nil, nil, err
	}

	var dbStatsReg interface{ Unregister() error }
	if cfg.Observability.MetricsEnabled {
		dbStatsReg, err = otelsql.RegisterDBStatsMetrics(db, otelsql.WithAttributes(semconv.DBSystemMySQL))
		if err != nil {
			logger.Warn("failed to register DB stats metrics", slog.String("error", err.Error()))
		}
	}

	logger.Info("database instrumentation enabled",
		slog.Bool("metrics", cfg.Observability.MetricsEnabled),
		slog.Bool("tracing", cfg.Observability.TracingEnabled),
		slog.Bool("sqlcommenter", cfg.Observability.SQLCommenterEnabled && cfg.Observability.TracingEnabled),
	)
	return db, dbStatsReg, nil
}

func configureDatabase(ctx context.Context, cfg *config.Config, logger *logging.Logger, db *sql.DB, databaseName string) error {
	db.SetMaxOpenConns(cfg.Database.Pool.MaxOpen)
	db.SetMaxIdleConns(cfg.Database.Pool.MaxIdle)
	db.SetConnMaxLifetime(cfg.Database.Pool.MaxLifetime)

	if cfg.Database.ConnectionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Database.ConnectionTimeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database %q unreachable: %w", databaseName, err)
	}

	logger.Info("connected to database",
		slog.String("database", databaseName),
		slog.Int("pool_max_open", cfg.Database.Pool.MaxOpen),
		slog.Int("pool_max_idle", cfg.Database.Pool.MaxIdle),
		slog.Duration("pool_max_lifetime", cfg.Database.Pool.MaxLifetime),
	)
	return nil
}

// buildGraphQLHandler assembles the chain
// request -> logging -> bearer auth (optional) -> request analysis -> metrics -> tracing -> graphql.
func buildGraphQLHandler(ctx context.Context, cfg *config.Config, logger *logging.Logger, parsers resolver.ParserProvider, metrics *observability.ParseMetrics) (http.Handler, error) {
	schema, err := resolver.NewResolver(parsers, metrics, cfg.Server.MaxBatchSize).BuildGraphQLSchema()
	if err != nil {
		return nil, err
	}

	var h http.Handler = handler.New(&handler.Config{
		Schema:   &schema,
		Pretty:   true,
		GraphiQL: cfg.Server.GraphiQLEnabled,
	})
	h = middleware.GraphQLTracingMiddleware()(h)
	if cfg.Observability.MetricsEnabled && metrics != nil {
		h = middleware.GraphQLMetricsMiddleware(metrics)(h)
		logger.Info("GraphQL metrics middleware enabled")
	}
	h = middleware.GraphQLRequestMiddleware()(h)

	if cfg.Server.Auth.OIDCEnabled && cfg.Server.Auth.ProtectGraphQL {
		auth, err := oidcMiddleware(ctx, cfg, logger, metrics)
		if err != nil {
			return nil, err
		}
		h = auth(h)
		logger.Info("GraphQL bearer authentication enabled", slog.String("issuer", cfg.Server.Auth.OIDCIssuerURL))
	}

	return middleware.LoggingMiddleware(logger)(h), nil
}

// buildAdminHandler returns nil when the reload endpoint is disabled. OIDC
// bearer auth takes precedence over the shared admin token when enabled.
func buildAdminHandler(ctx context.Context, cfg *config.Config, logger *logging.Logger, parsers *parserStore, metrics *observability.ParseMetrics) (http.Handler, error) {
	if !cfg.Server.Admin.ReloadEnabled {
		return nil, nil
	}

	var auth func(http.Handler) http.Handler
	var err error
	mode := "token"
	switch {
	case cfg.Server.Auth.OIDCEnabled:
		mode = "oidc"
		auth, err = oidcMiddleware(ctx, cfg, logger, metrics)
	case strings.TrimSpace(cfg.Server.Admin.AuthToken) == "":
		return nil, fmt.Errorf("server.admin.reload_enabled requires server.admin.auth_token or server.auth.oidc_enabled")
	default:
		auth, err = middleware.AdminTokenAuthMiddleware(middleware.AdminTokenAuthConfig{
			Token:   cfg.Server.Admin.AuthToken,
			Metrics: metrics,
		})
	}
	if err != nil {
		return nil, err
	}
	logger.Info("override reload endpoint enabled",
		slog.String("path", reloadOverridesPath),
		slog.String("auth", mode),
	)

	return middleware.LoggingMiddleware(logger)(auth(reloadOverridesHandler(parsers))), nil
}

func oidcMiddleware(ctx context.Context, cfg *config.Config, logger *logging.Logger, metrics *observability.ParseMetrics) (func(http.Handler) http.Handler, error) {
	auth := cfg.Server.Auth
	return middleware.OIDCAuthMiddleware(ctx, middleware.OIDCAuthConfig{
		IssuerURL:     auth.OIDCIssuerURL,
		Audience:      auth.OIDCAudience,
		ClockSkew:     auth.OIDCClockSkew,
		CAFile:        auth.OIDCCAFile,
		SkipTLSVerify: auth.OIDCSkipTLSVerify,
		Metrics:       metrics,
	}, logger)
}

func buildRouter(cfg *config.Config, logger *logging.Logger, db *sql.DB, parsers *parserStore, graphqlHandler http.Handler, adminHandler http.Handler, meterProvider *observability.MeterProvider) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(graphqlPath, graphqlHandler)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, graphqlPath, http.StatusFound)
			return
		}
		http.NotFound(w, r)
	})

	timeout := cfg.Database.ConnectionTimeout
	if timeout <= 0 || timeout > defaultHealthTimeout {
		timeout = defaultHealthTimeout
	}
	mux.HandleFunc(healthPath, healthHandler(db, parsers, timeout))

	if adminHandler != nil {
		mux.Handle(reloadOverridesPath, adminHandler)
	}

	if cfg.Observability.MetricsEnabled && meterProvider != nil {
		mux.Handle(metricsPath, promhttp.Handler())
		logger.Info("metrics endpoint enabled", slog.String("path", metricsPath))
	}

	return mux
}

func wrapHTTPHandler(cfg *config.Config, logger *logging.Logger, h http.Handler) http.Handler {
	if cfg.Observability.MetricsEnabled || cfg.Observability.TracingEnabled {
		h = otelhttp.NewHandler(h, "http.server",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return httpRootSpanName(r)
			}),
		)
		logger.Info("HTTP instrumentation enabled")
	}

	if cfg.Server.RateLimitEnabled {
		h = middleware.RateLimitMiddleware(middleware.RateLimitConfig{
			Enabled: cfg.Server.RateLimitEnabled,
			RPS:     cfg.Server.RateLimitRPS,
			Burst:   cfg.Server.RateLimitBurst,
		})(h)
	}

	return h
}

func httpRootSpanName(r *http.Request) string {
	if r == nil {
		return "HTTP /*"
	}
	method := strings.TrimSpace(r.Method)
	if method == "" {
		method = "HTTP"
	}
	return method + " " + normalizeHTTPSpanRoute(r.URL.Path)
}

// normalizeHTTPSpanRoute keeps span names bounded to the known routes.
func normalizeHTTPSpanRoute(rawPath string) string {
	switch rawPath {
	case "/", graphqlPath, healthPath, metricsPath, reloadOverridesPath:
		return rawPath
	default:
		return "/*"
	}
}

func tlsEnabled(cfg *config.Config) bool {
	return cfg.Server.TLSCertFile != "" && cfg.Server.TLSKeyFile != ""
}

func buildServer(cfg *config.Config, h http.Handler, serverAddr string) *http.Server {
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	if tlsEnabled(cfg) {
		srv.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return srv
}

func startServer(cfg *config.Config, logger *logging.Logger, srv *http.Server, serverAddr string) chan error {
	serverErrors := make(chan error, 1)
	useTLS := tlsEnabled(cfg)
	go func() {
		protocol := "http"
		if useTLS {
			protocol = "https"
		}

		logAttrs := []any{
			slog.String("protocol", protocol),
			slog.String("address", serverAddr),
			slog.String("graphql_endpoint", graphqlPath),
			slog.String("health_endpoint", healthPath),
			slog.Bool("graphiql", cfg.Server.GraphiQLEnabled),
			slog.Int("max_batch_size", cfg.Server.MaxBatchSize),
			slog.String("log_level", cfg.Observability.Logging.Level),
		}
		if cfg.Observability.MetricsEnabled {
			logAttrs = append(logAttrs, slog.String("metrics_endpoint", metricsPath))
		}
		if cfg.Server.RateLimitEnabled {
			logAttrs = append(logAttrs,
				slog.Float64("rate_limit_rps", cfg.Server.RateLimitRPS),
				slog.Int("rate_limit_burst", cfg.Server.RateLimitBurst),
			)
		}
		logger.Info("server starting", logAttrs...)

		var err error
		if useTLS {
			err = srv.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("server failed: %w", err)
		}
	}()
	return serverErrors
}

type overridesStatus struct {
	Source  string `json:"source"`
	Entries int    `json:"entries"`
}

type healthStatus struct {
	Status    string          `json:"status"`
	Database  string          `json:"database,omitempty"`
	Overrides overridesStatus `json:"overrides"`
}

// healthHandler reports the override table and, when the overrides come
// from a database, its reachability.
func healthHandler(db *sql.DB, parsers *parserStore, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqLogger := logging.FromContext(r.Context())
		status := healthStatus{
			Status: "healthy",
			Overrides: overridesStatus{
				Source:  parsers.Describe(),
				Entries: parsers.Size(),
			},
		}
		code := http.StatusOK

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				reqLogger.Error("health check failed",
					slog.String("error", err.Error()),
					slog.String("check", "database"),
				)
				status.Status = "unhealthy"
				status.Database = "failed"
				code = http.StatusServiceUnavailable
			} else {
				status.Database = "ok"
			}
		}

		writeJSON(w, code, status)
	}
}

func reloadOverridesHandler(parsers *parserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqLogger := logging.FromContext(r.Context())

		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}

		reqLogger.Info("admin endpoint accessed",
			slog.String("operation", "reload_overrides"),
			slog.String("remote_addr", r.RemoteAddr),
		)

		entries, err := parsers.Reload(r.Context(), reqLogger)
		if err != nil {
			reqLogger.Error("override reload failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"status":  "error",
				"message": "override reload failed",
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "entries": entries})
	}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

package serverapp

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"nameparse/internal/config"
)

// Init initializes all runtime resources. It is idempotent.
func (a *App) Init(ctx context.Context) error {
	a.stateMu.Lock()
	if a.initialized {
		a.stateMu.Unlock()
		return nil
	}
	a.stateMu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}

	cleanup := cleanupStack{}
	success := false
	defer func() {
		if !success {
			cleanup.run(context.Background(), a.logger)
		}
	}()

	if a.loggerProvider != nil {
		cleanup.push("logger provider", func(shutdownCtx context.Context) error {
			return a.loggerProvider.Shutdown(shutdownCtx, a.logger.Logger)
		})
	}

	meterProvider, metrics, err := initMetrics(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry metrics: %w", err)
	}
	if meterProvider != nil {
		cleanup.push("meter provider", func(shutdownCtx context.Context) error {
			return meterProvider.Shutdown(shutdownCtx, a.logger.Logger)
		})
	}

	tracerProvider, err := initTracing(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry tracing: %w", err)
	}
	if tracerProvider != nil {
		cleanup.push("tracer provider", func(shutdownCtx context.Context) error {
			return tracerProvider.Shutdown(shutdownCtx, a.logger.Logger)
		})
	}

	var db *sql.DB
	var dbStatsReg interface{ Unregister() error }
	if a.cfg.Overrides.Source == config.OverridesSourceDatabase {
		a.logger.Info("connecting to override database",
			slog.String("host", a.cfg.Database.Host),
			slog.Int("port", a.cfg.Database.Port),
			slog.String("database", a.databaseName),
			slog.Bool("dsn_present", a.cfg.Database.ConnectionString != ""),
		)

		db, dbStatsReg, err = connectDB(a.cfg, a.logger)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		cleanup.push("database", func(_ context.Context) error {
			if dbStatsReg != nil {
				if err := dbStatsReg.Unregister(); err != nil {
					a.logger.Warn("failed to unregister DB stats metrics", slog.String("error", err.Error()))
				}
			}
			return db.Close()
		})

		if err := configureDatabase(ctx, a.cfg, a.logger, db, a.databaseName); err != nil {
			return fmt.Errorf("failed to verify database connection: %w", err)
		}
	}

	source, err := buildOverrideSource(a.cfg.Overrides, db)
	if err != nil {
		return fmt.Errorf("failed to configure surname overrides: %w", err)
	}
	parsers := newParserStore(a.cfg.Parser, source, metrics, a.cfg.Database.ConnectionTimeout)
	if _, err := parsers.Reload(ctx, a.logger); err != nil {
		return err
	}

	graphqlHandler, err := buildGraphQLHandler(ctx, a.cfg, a.logger, parsers, metrics)
	if err != nil {
		return fmt.Errorf("failed to initialize GraphQL handler: %w", err)
	}

	adminHandler, err := buildAdminHandler(ctx, a.cfg, a.logger, parsers, metrics)
	if err != nil {
		return fmt.Errorf("failed to initialize admin handler: %w", err)
	}

	mux := buildRouter(a.cfg, a.logger, db, parsers, graphqlHandler, adminHandler, meterProvider)
	handler := wrapHTTPHandler(a.cfg, a.logger, mux)

	serverAddr := fmt.Sprintf(":%d", a.cfg.Server.Port)
	srv := buildServer(a.cfg, handler, serverAddr)
	cleanup.push("HTTP server", func(shutdownCtx context.Context) error {
		return srv.Shutdown(shutdownCtx)
	})

	a.stateMu.Lock()
	a.meterProvider = meterProvider
	a.metrics = metrics
	a.tracerProvider = tracerProvider
	a.db = db
	a.dbStatsReg = dbStatsReg
	a.parsers = parsers
	a.graphqlHandler = graphqlHandler
	a.adminHandler = adminHandler
	a.mux = mux
	a.handler = handler
	a.serverAddr = serverAddr
	a.srv = srv
	a.cleanup = cleanup
	a.initialized = true
	a.stateMu.Unlock()

	success = true
	return nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AntonStoeckl/library-desk-go/config"
	"github.com/AntonStoeckl/library-desk-go/library/catalog"
	"github.com/AntonStoeckl/library-desk-go/library/desk"
	"github.com/AntonStoeckl/library-desk-go/library/shell"
	"github.com/AntonStoeckl/library-desk-go/recordstore/fileengine"
	"github.com/AntonStoeckl/library-desk-go/recordstore/memengine"
	"github.com/AntonStoeckl/library-desk-go/recordstore/oteladapters"
	"github.com/AntonStoeckl/library-desk-go/recordstore/postgresengine"
)

const instrumentationName = "github.com/AntonStoeckl/library-desk-go"

// observability bundles the optional collectors. Unset fields are nil interfaces.
type observability struct {
	contextualLogger shell.ContextualLogger
	metricsCollector shell.MetricsCollector
	tracingCollector shell.TracingCollector
	shutdown         func(ctx context.Context) error
}

func newObservability(ctx context.Context, cfg config.Config) (observability, error) {
	if !cfg.Observability.Enabled {
		return observability{shutdown: func(context.Context) error { return nil }}, nil
	}

	providers, err := config.NewObservabilityProviders(ctx, cfg.Observability, version)
	if err != nil {
		return observability{}, fmt.Errorf("failed to create observability providers: %w", err)
	}

	return observability{
		contextualLogger: newContextualLogger(cfg.Observability.LogBridge, providers),
		metricsCollector: oteladapters.NewMetricsCollector(providers.MeterProvider.Meter(instrumentationName)),
		tracingCollector: oteladapters.NewTracingCollector(providers.TracerProvider.Tracer(instrumentationName)),
		shutdown:         providers.Shutdown,
	}, nil
}

// newContextualLogger returns the adapter that turns desk logs into OpenTelemetry log records
// carrying the trace and span ids of the current operation. The otel bridge writes to the OTel log
// API directly, anything else goes through otelslog.
func newContextualLogger(bridge string, providers *config.ObservabilityProviders) shell.ContextualLogger {
	if bridge == config.LogBridgeOTel {
		return oteladapters.NewOTelLogger(providers.LoggerProvider.Logger(instrumentationName))
	}

	return oteladapters.NewSlogBridgeLogger(instrumentationName)
}

// openStore creates the configured record store engine. The returned close function releases
// database connections and is a no-op for the other engines.
func openStore(
	ctx context.Context,
	cfg config.StoreConfig,
	logger *slog.Logger,
	obs observability,
) (shell.RecordStore, func(), error) {

	noop := func() {}

	switch cfg.Engine {
	case config.StoreEngineMemory:
		store, err := memengine.NewStore(memengine.WithLogger(logger))
		return store, noop, err

	case config.StoreEngineFile:
		store, err := fileengine.NewStore(cfg.Dir, fileengine.WithLogger(logger))
		return store, noop, err

	case config.StoreEnginePostgres:
		return openPostgresStore(ctx, cfg.Postgres, logger, obs)

	default:
		return nil, noop, config.ErrUnknownStoreEngine
	}
}

func openPostgresStore(
	ctx context.Context,
	cfg config.PostgresConfig,
	logger *slog.Logger,
	obs observability,
) (shell.RecordStore, func(), error) {

	options := []postgresengine.Option{
		postgresengine.WithTableName(cfg.Table),
		postgresengine.WithLogger(logger),
	}

	if obs.contextualLogger != nil {
		options = append(options, postgresengine.WithContextualLogger(obs.contextualLogger))
	}

	if obs.metricsCollector != nil {
		options = append(options, postgresengine.WithMetrics(obs.metricsCollector))
	}

	if obs.tracingCollector != nil {
		options = append(options, postgresengine.WithTracing(obs.tracingCollector))
	}

	var (
		store     *postgresengine.Store
		closeConn func()
		err       error
	)

	switch cfg.Driver {
	case config.PostgresDriverSQL:
		db, openErr := config.OpenPostgresSQLDB(ctx, cfg)
		if openErr != nil {
			return nil, func() {}, openErr
		}
		closeConn = func() { logCleanupError(logger, "postgres sql.DB", db.Close()) }
		store, err = postgresengine.NewStoreFromSQLDB(db, options...)

	case config.PostgresDriverSQLX:
		db, openErr := config.OpenPostgresSQLX(ctx, cfg)
		if openErr != nil {
			return nil, func() {}, openErr
		}
		closeConn = func() { logCleanupError(logger, "postgres sqlx.DB", db.Close()) }
		store, err = postgresengine.NewStoreFromSQLX(db, options...)

	default:
		pool, openErr := config.OpenPostgresPGXPool(ctx, cfg)
		if openErr != nil {
			return nil, func() {}, openErr
		}
		closeConn = pool.Close
		store, err = postgresengine.NewStoreFromPGXPool(pool, options...)
	}

	if err != nil {
		closeConn()
		return nil, func() {}, err
	}

	if err := store.EnsureTable(ctx); err != nil {
		closeConn()
		return nil, func() {}, err
	}

	return store, closeConn, nil
}

func newRecords(store shell.RecordStore, logger *slog.Logger, obs observability) (*shell.Records, error) {
	options := []shell.RecordsOption{shell.WithRecordsLogger(logger)}

	if obs.contextualLogger != nil {
		options = append(options, shell.WithRecordsContextualLogger(obs.contextualLogger))
	}

	if obs.metricsCollector != nil {
		options = append(options, shell.WithRecordsMetrics(obs.metricsCollector))
	}

	return shell.NewRecords(store, options...)
}

func newService(cfg config.Config, records *shell.Records, logger *slog.Logger, obs observability) (*desk.Service, error) {
	options := []desk.Option{
		desk.WithStudents(cfg.Students),
		desk.WithRetryOptions(shell.WithMaxAttempts(cfg.Desk.RetryAttempts)),
		desk.WithLogger(logger),
		desk.WithContextualLogger(obs.contextualLogger),
		desk.WithMetrics(obs.metricsCollector),
		desk.WithTracing(obs.tracingCollector),
	}

	if cfg.Catalog.Enabled {
		catalogOptions := []catalog.Option{
			catalog.WithRateLimit(cfg.Catalog.RequestsPerSecond, cfg.Catalog.Burst),
			catalog.WithCacheTTL(cfg.Catalog.CacheTTL),
			catalog.WithLogger(logger),
		}

		if obs.contextualLogger != nil {
			catalogOptions = append(catalogOptions, catalog.WithContextualLogger(obs.contextualLogger))
		}

		client, err := catalog.NewClient(cfg.Catalog.URLTemplate, catalogOptions...)
		if err != nil {
			return nil, fmt.Errorf("failed to create catalog client: %w", err)
		}

		options = append(options, desk.WithCatalog(client))
	}

	return desk.NewService(records, options...)
}

package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/bikestore/internal/config"
	"github.com/mamadbah2/bikestore/internal/platform/events"
	"github.com/mamadbah2/bikestore/internal/platform/observability"
	"github.com/mamadbah2/bikestore/internal/repository"
	"github.com/mamadbah2/bikestore/internal/repository/memory"
	"github.com/mamadbah2/bikestore/internal/repository/mongodb"
	"github.com/mamadbah2/bikestore/internal/repository/postgres"
	"github.com/mamadbah2/bikestore/internal/repository/sheets"
	"github.com/mamadbah2/bikestore/internal/server/handlers"
	"github.com/mamadbah2/bikestore/internal/server/router"
	"github.com/mamadbah2/bikestore/internal/service/catalog"
	"github.com/mamadbah2/bikestore/internal/service/customers"
	"github.com/mamadbah2/bikestore/internal/service/inventory"
	"github.com/mamadbah2/bikestore/internal/service/reporting"
	"github.com/mamadbah2/bikestore/internal/service/sales"
	"github.com/mamadbah2/bikestore/pkg/clients/notify"
)

// Container holds the long-lived resources and services of the process.
type Container struct {
	Store     repository.Store
	Notifier  notify.Notifier
	Publisher events.Publisher

	Catalog   *catalog.Service
	Customers *customers.Service
	Sales     *sales.Service
	Inventory *inventory.Service
	Reporting *reporting.Service

	logger          *zap.Logger
	shutdownTracing func(context.Context) error
	shutdownLogging func(context.Context) error
}

// New opens the configured store and outbound integrations and wires the services.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Tracing, logger.Named("tracing"))
	if err != nil {
		// Tracing is optional; keep serving without it.
		logger.Error("failed to setup tracing", zap.Error(err))
	}

	exported, shutdownLogging, err := observability.SetupLogging(ctx, cfg.Tracing, logger)
	if err != nil {
		logger.Error("failed to setup log export", zap.Error(err))
	}
	logger = exported

	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		_ = shutdownLogging(ctx)
		_ = shutdownTracing(ctx)
		return nil, err
	}

	c := &Container{
		Store:           store,
		Notifier:        notify.New(cfg.Alerts),
		Publisher:       events.Nop{},
		logger:          logger,
		shutdownTracing: shutdownTracing,
		shutdownLogging: shutdownLogging,
	}

	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := events.NewKafkaPublisher(cfg.Kafka, cfg.Tracing.ServiceName, logger.Named("events.kafka"))
		if err != nil {
			c.Close(ctx)
			return nil, err
		}
		c.Publisher = publisher
		logger.Info("sale events enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	var ledger sales.Ledger
	if cfg.Sheets.Enabled() {
		client, err := sheets.NewClient(ctx, cfg.Sheets, logger.Named("repo.sheets"))
		if err != nil {
			c.Close(ctx)
			return nil, err
		}
		salesLedger := sheets.NewSalesLedger(client, logger.Named("ledger"))
		if err := salesLedger.EnsureHeader(ctx); err != nil {
			logger.Warn("sales ledger header check failed", zap.Error(err))
		}
		ledger = salesLedger
	}

	c.Catalog = catalog.NewService(store, logger.Named("svc.catalog"))
	c.Customers = customers.NewService(store, logger.Named("svc.customers"))
	c.Inventory = inventory.NewService(store, logger.Named("svc.inventory"))
	c.Reporting = reporting.NewService(store, logger.Named("svc.reporting"))
	c.Sales = sales.NewService(store, sales.Dependencies{
		Publisher:         c.Publisher,
		Ledger:            ledger,
		Notifier:          c.Notifier,
		LowStockThreshold: cfg.Alerts.LowStockThreshold,
	}, logger.Named("svc.sales"))

	return c, nil
}

// OpenStore connects the backend selected by cfg.Storage.Driver.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		return memory.NewStore(), nil
	case config.StorageMongoDB:
		store, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, logger.Named("repo.mongodb"))
		if err != nil {
			return nil, fmt.Errorf("init mongodb repository: %w", err)
		}
		return store, nil
	case config.StoragePostgres:
		store, err := postgres.NewRepository(ctx, cfg.Postgres.URL, logger.Named("repo.postgres"))
		if err != nil {
			return nil, fmt.Errorf("init postgres repository: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

// Logger returns the process logger, teed to the OTLP exporter when enabled.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Handlers builds the HTTP adapters over the container's services.
func (c *Container) Handlers() router.Handlers {
	return router.Handlers{
		Bikes:     handlers.NewBikeHandler(c.Catalog, c.Inventory, c.logger.Named("handlers.bikes")),
		Suppliers: handlers.NewSupplierHandler(c.Catalog, c.logger.Named("handlers.suppliers")),
		Customers: handlers.NewCustomerHandler(c.Customers, c.logger.Named("handlers.customers")),
		Sales:     handlers.NewSaleHandler(c.Sales, c.logger.Named("handlers.sales")),
		Reports:   handlers.NewReportHandler(c.Reporting, c.logger.Named("handlers.reports")),
	}
}

// Close releases every resource, logging failures.
func (c *Container) Close(ctx context.Context) {
	c.logger.Info("shutting down application resources")

	if err := c.Publisher.Close(); err != nil {
		c.logger.Error("failed to close event publisher", zap.Error(err))
	}
	if err := c.Store.Close(ctx); err != nil {
		c.logger.Error("failed to close store", zap.Error(err))
	}
	if c.shutdownLogging != nil {
		if err := c.shutdownLogging(ctx); err != nil {
			c.logger.Error("failed to shutdown log export", zap.Error(err))
		}
	}
	if c.shutdownTracing != nil {
		if err := c.shutdownTracing(ctx); err != nil {
			c.logger.Error("failed to shutdown tracing", zap.Error(err))
		}
	}
}

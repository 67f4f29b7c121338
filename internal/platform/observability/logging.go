package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mamadbah2/bikestore/internal/config"
)

const logScope = "github.com/mamadbah2/bikestore"

// SetupLogging exports log records over OTLP to the tracing endpoint and
// returns a logger that writes both to the base core and to the exporter.
// With no endpoint configured the base logger is returned unchanged.
func SetupLogging(ctx context.Context, cfg config.TracingConfig, base *zap.Logger) (*zap.Logger, func(context.Context) error, error) {
	if base == nil {
		base = zap.NewNop()
	}
	noop := func(context.Context) error { return nil }
	if cfg.Endpoint == "" {
		return base, noop, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(ServiceVersion),
		),
	)
	if err != nil {
		return base, noop, fmt.Errorf("failed to create resource: %w", err)
	}

	host, insecure, err := collectorHost(cfg.Endpoint)
	if err != nil {
		return base, noop, err
	}
	opts := []otlploghttp.Option{
		otlploghttp.WithEndpoint(host),
		otlploghttp.WithURLPath(logsPath),
	}
	if insecure {
		opts = append(opts, otlploghttp.WithInsecure())
	}

	exporter, err := otlploghttp.New(ctx, opts...)
	if err != nil {
		return base, noop, fmt.Errorf("failed to create OTLP log exporter: %w", err)
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter,
			sdklog.WithExportTimeout(exportTimeout),
			sdklog.WithMaxQueueSize(maxQueueSize),
		)),
	)
	global.SetLoggerProvider(provider)

	otelCore := otelzap.NewCore(logScope, otelzap.WithLoggerProvider(provider))
	logger := base.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, otelCore)
	}))

	logger.Info("log exporter enabled", zap.String("endpoint", cfg.Endpoint))
	return logger, provider.Shutdown, nil
}

// Package telemetry exports proxy metrics and traces over OTLP.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"time"

	"github.com/go-logr/stdr"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// ShutdownFunc flushes and stops the exporters.
type ShutdownFunc func(context.Context) error

// Init installs global OTLP trace and meter providers. Exporter endpoints and
// headers come from the standard OTEL_EXPORTER_OTLP_* environment variables.
// A provider that fails to start is skipped with a warning so the proxy can
// still serve.
func Init(ctx context.Context, serviceName, version string) (ShutdownFunc, error) {
	routeLogs(log.Logger)

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithHost(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	var shutdowns []ShutdownFunc

	traceExporter, err := otlptracegrpc.New(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Tracing disabled, could not create trace exporter")
	} else {
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(traceExporter, sdktrace.WithBatchTimeout(5*time.Second)),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		shutdowns = append(shutdowns, tp.Shutdown)
	}

	metricExporter, err := otlpmetricgrpc.New(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Metrics disabled, could not create metric exporter")
	} else {
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(10*time.Second))),
			sdkmetric.WithResource(res),
		)
		otel.SetMeterProvider(mp)
		shutdowns = append(shutdowns, mp.Shutdown)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info().Str("service", serviceName).Str("version", version).Msg("OpenTelemetry initialized")

	return func(ctx context.Context) error {
		var errs []error
		for _, shutdown := range shutdowns {
			if err := shutdown(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}, nil
}

// routeLogs sends otel's internal diagnostics and export errors to logger
// instead of its default stderr logger.
func routeLogs(logger zerolog.Logger) {
	otel.SetLogger(stdr.New(stdlog.New(logger, "", 0)))
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		logger.Error().Err(err).Msg("OpenTelemetry error")
	}))
}

// Package telemetry installs OTLP exporting TracerProvider and MeterProvider as the
// otel globals, which the metrics package's tracer and otel recorder report through.
package telemetry

import (
	"context"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"

	"github.com/tigerroll/durable/pkg/durable/core/config"
	"github.com/tigerroll/durable/pkg/durable/support/util/exception"
	"github.com/tigerroll/durable/pkg/durable/support/util/logger"
)

const module = "telemetry"

// NewTracerProvider builds a TracerProvider batching spans to the OTLP endpoint.
func NewTracerProvider(ctx context.Context, oc config.OTLPConfig) (*sdktrace.TracerProvider, error) {
	var (
		exporter sdktrace.SpanExporter
		err      error
	)
	switch oc.Protocol {
	case "grpc":
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(oc.Endpoint)}
		if oc.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, opts...)
	case "http", "":
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(oc.Endpoint)}
		if oc.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exporter, err = otlptracehttp.New(ctx, opts...)
	default:
		return nil, exception.NewDurableErrorf(module, "unknown OTLP protocol '%s'", oc.Protocol)
	}
	if err != nil {
		return nil, exception.NewDurableError(module, "failed to create OTLP trace exporter", err)
	}
	return sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter)), nil
}

// NewMeterProvider builds a MeterProvider pushing to the OTLP endpoint every
// ExportInterval seconds.
func NewMeterProvider(ctx context.Context, oc config.OTLPConfig) (*sdkmetric.MeterProvider, error) {
	var (
		exporter sdkmetric.Exporter
		err      error
	)
	switch oc.Protocol {
	case "grpc":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(oc.Endpoint)}
		if oc.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exporter, err = otlpmetricgrpc.New(ctx, opts...)
	case "http", "":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(oc.Endpoint)}
		if oc.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exporter, err = otlpmetrichttp.New(ctx, opts...)
	default:
		return nil, exception.NewDurableErrorf(module, "unknown OTLP protocol '%s'", oc.Protocol)
	}
	if err != nil {
		return nil, exception.NewDurableError(module, "failed to create OTLP metric exporter", err)
	}
	var readerOpts []sdkmetric.PeriodicReaderOption
	if oc.ExportInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(time.Duration(oc.ExportInterval)*time.Second))
	}
	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...))), nil
}

// Register installs both providers as otel globals when metrics are enabled and an OTLP
// endpoint is configured, and flushes them on stop.
func Register(lc fx.Lifecycle, cfg *config.Config) error {
	mc := cfg.Durable.Metrics
	if !mc.Enabled || mc.OTLP.Endpoint == "" {
		return nil
	}
	ctx := context.Background()
	tp, err := NewTracerProvider(ctx, mc.OTLP)
	if err != nil {
		return err
	}
	mp, err := NewMeterProvider(ctx, mc.OTLP)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return err
	}
	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	logger.Infof("Exporting telemetry over OTLP/%s to %s", mc.OTLP.Protocol, mc.OTLP.Endpoint)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			var result *multierror.Error
			if err := tp.Shutdown(ctx); err != nil {
				result = multierror.Append(result, err)
			}
			if err := mp.Shutdown(ctx); err != nil {
				result = multierror.Append(result, err)
			}
			return result.ErrorOrNil()
		},
	})
	return nil
}

// Module installs the OTLP providers. Add it before the metrics module.
var Module = fx.Options(
	fx.Invoke(Register),
)

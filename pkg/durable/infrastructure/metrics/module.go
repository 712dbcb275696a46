package metrics

import (
	"go.opentelemetry.io/otel"
	"go.uber.org/fx"

	"github.com/tigerroll/durable/pkg/durable/core/config"
	metrics "github.com/tigerroll/durable/pkg/durable/core/metrics"
)

// NewPrometheusRecorderFromConfig builds the recorder with the configured namespace.
func NewPrometheusRecorderFromConfig(cfg *config.Config) *PrometheusRecorder {
	return NewPrometheusRecorder(cfg.Durable.Metrics.Namespace)
}

// NewMetricRecorder returns the recorder of the configured backend when metrics are
// enabled. The otel backend records on the global MeterProvider.
func NewMetricRecorder(cfg *config.Config, r *PrometheusRecorder) (metrics.MetricRecorder, error) {
	mc := cfg.Durable.Metrics
	if !mc.Enabled {
		return metrics.NewNoOpMetricRecorder(), nil
	}
	if mc.Backend == config.MetricsBackendOTel {
		return NewOTelMetricRecorder(otel.GetMeterProvider(), mc.TracerName)
	}
	return r, nil
}

// NewTracer returns an OTelTracer on the global TracerProvider. Without a provider
// installed by the application this is the otel no-op tracer.
func NewTracer(cfg *config.Config) metrics.Tracer {
	if !cfg.Durable.Metrics.Enabled {
		return metrics.NewNoOpTracer()
	}
	return NewOTelTracer(otel.GetTracerProvider(), cfg.Durable.Metrics.TracerName)
}

// Module provides metrics.MetricRecorder and metrics.Tracer, and the HTTP exporter.
var Module = fx.Options(
	fx.Provide(NewPrometheusRecorderFromConfig),
	fx.Provide(NewMetricRecorder),
	fx.Provide(NewTracer),
	fx.Invoke(RegisterMetricsServer),
)

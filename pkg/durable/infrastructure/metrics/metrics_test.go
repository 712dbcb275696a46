package metrics_test

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/tigerroll/durable/pkg/durable/core/config"
	model "github.com/tigerroll/durable/pkg/durable/core/domain/model"
	coremetrics "github.com/tigerroll/durable/pkg/durable/core/metrics"
	"github.com/tigerroll/durable/pkg/durable/infrastructure/metrics"
)

func TestPrometheusRecorder(t *testing.T) {
	ctx := context.Background()
	r := metrics.NewPrometheusRecorder("durable")

	r.RecordJobStart(ctx, "pipeline", model.KindOrchestration)
	r.RecordJobStart(ctx, "pipeline", model.KindOrchestration)
	r.RecordJobEnd(ctx, "pipeline", model.KindOrchestration, model.JobStatusCompleted, 2*time.Second)
	r.RecordReplay(ctx, "pipeline", 3)
	r.RecordMessage(ctx, "run", false)
	r.RecordMessage(ctx, "childResolved", true)

	families, err := r.Registry().Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	series := map[string]int{}
	for _, f := range families {
		names[f.GetName()] = true
		series[f.GetName()] = len(f.GetMetric())
	}
	for _, want := range []string{
		"durable_job_started_total",
		"durable_job_finished_total",
		"durable_job_duration_seconds",
		"durable_orchestration_replay_total",
		"durable_orchestration_history_size",
		"durable_actor_messages_total",
	} {
		assert.True(t, names[want], "missing metric %s", want)
	}

	assert.Equal(t, 1, series["durable_job_started_total"])
	assert.Equal(t, 2, series["durable_actor_messages_total"])
}

func TestMetricsHandler(t *testing.T) {
	r := metrics.NewPrometheusRecorder("durable")
	r.RecordMessage(context.Background(), "run", false)

	srv := httptest.NewServer(metrics.NewMetricsHandler(r))
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `durable_actor_messages_total{message_type="run",outcome="handled"} 1`)
}

func TestOTelTracer(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	tracer := metrics.NewOTelTracer(tp, "test")

	parent := model.NewJobID()
	st := model.NewJobState(model.NewJobID(), "fetch", model.KindUnitOfWork, nil)
	st.SetParent(parent, 0)

	ctx, end := tracer.StartJobSpan(context.Background(), "execute", st)
	tracer.RecordEvent(ctx, "progress", map[string]interface{}{"step": 1, "note": "half"})
	tracer.RecordError(ctx, "engine", errors.New("boom"))
	end()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "durable.execute", span.Name())
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, "boom", span.Status().Description)

	attrs := map[string]string{}
	for _, kv := range span.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, st.ID.String(), attrs["durable.job.id"])
	assert.Equal(t, "fetch", attrs["durable.job.type"])
	assert.Equal(t, parent.String(), attrs["durable.job.parent_id"])

	var eventNames []string
	for _, e := range span.Events() {
		eventNames = append(eventNames, e.Name)
	}
	assert.Contains(t, eventNames, "progress")
	assert.Contains(t, eventNames, "exception")
}

func TestSelectionByConfig(t *testing.T) {
	cfg := config.NewConfig()
	r := metrics.NewPrometheusRecorderFromConfig(cfg)

	rec, err := metrics.NewMetricRecorder(cfg, r)
	require.NoError(t, err)
	assert.IsType(t, &coremetrics.NoOpMetricRecorder{}, rec)
	assert.IsType(t, &coremetrics.NoOpTracer{}, metrics.NewTracer(cfg))

	cfg.Durable.Metrics.Enabled = true
	rec, err = metrics.NewMetricRecorder(cfg, r)
	require.NoError(t, err)
	assert.Same(t, r, rec)
	assert.IsType(t, &metrics.OTelTracer{}, metrics.NewTracer(cfg))

	cfg.Durable.Metrics.Backend = config.MetricsBackendOTel
	rec, err = metrics.NewMetricRecorder(cfg, r)
	require.NoError(t, err)
	assert.IsType(t, &metrics.OTelMetricRecorder{}, rec)
}

func TestOTelMetricRecorder(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(ctx)

	r, err := metrics.NewOTelMetricRecorder(mp, "test")
	require.NoError(t, err)
	r.RecordJobStart(ctx, "pipeline", model.KindOrchestration)
	r.RecordJobStart(ctx, "pipeline", model.KindOrchestration)
	r.RecordJobEnd(ctx, "pipeline", model.KindOrchestration, model.JobStatusFailed, time.Second)
	r.RecordReplay(ctx, "pipeline", 4)
	r.RecordMessage(ctx, "cancel", true)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	found := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			found[m.Name] = m
		}
	}
	for _, want := range []string{
		"durable.job.started",
		"durable.job.finished",
		"durable.job.duration",
		"durable.orchestration.replays",
		"durable.orchestration.history_size",
		"durable.actor.messages",
	} {
		assert.Contains(t, found, want)
	}

	started, ok := found["durable.job.started"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, started.DataPoints, 1)
	assert.Equal(t, int64(2), started.DataPoints[0].Value)

	messages, ok := found["durable.actor.messages"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, messages.DataPoints, 1)
	outcome, _ := messages.DataPoints[0].Attributes.Value("outcome")
	assert.Equal(t, "dropped", outcome.AsString())
}

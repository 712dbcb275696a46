package metrics

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	model "github.com/tigerroll/durable/pkg/durable/core/domain/model"
	metrics "github.com/tigerroll/durable/pkg/durable/core/metrics"
)

// OTelMetricRecorder is an OpenTelemetry implementation of metrics.MetricRecorder.
// Instruments are created on a Meter of the given MeterProvider, so the exporter is
// whatever reader the provider was built with.
type OTelMetricRecorder struct {
	jobStarted  metric.Int64Counter
	jobFinished metric.Int64Counter
	jobDuration metric.Float64Histogram
	replays     metric.Int64Counter
	historySize metric.Int64Histogram
	messages    metric.Int64Counter
}

// NewOTelMetricRecorder creates the recorder's instruments under the meter name.
func NewOTelMetricRecorder(provider metric.MeterProvider, name string) (*OTelMetricRecorder, error) {
	meter := provider.Meter(name)
	var errs *multierror.Error
	record := func(err error) {
		if err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	r := &OTelMetricRecorder{}
	var err error
	r.jobStarted, err = meter.Int64Counter("durable.job.started",
		metric.WithDescription("Jobs that started running, by type and kind."))
	record(err)
	r.jobFinished, err = meter.Int64Counter("durable.job.finished",
		metric.WithDescription("Jobs that reached a terminal status."))
	record(err)
	r.jobDuration, err = meter.Float64Histogram("durable.job.duration",
		metric.WithDescription("Time from job creation to its terminal status."),
		metric.WithUnit("s"))
	record(err)
	r.replays, err = meter.Int64Counter("durable.orchestration.replays",
		metric.WithDescription("Runs of orchestration bodies."))
	record(err)
	r.historySize, err = meter.Int64Histogram("durable.orchestration.history_size",
		metric.WithDescription("History length an orchestration was replayed against."))
	record(err)
	r.messages, err = meter.Int64Counter("durable.actor.messages",
		metric.WithDescription("Actor messages by type and outcome."))
	record(err)

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *OTelMetricRecorder) RecordJobStart(ctx context.Context, jobType string, kind model.JobKind) {
	r.jobStarted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("job_type", jobType),
		attribute.String("kind", kindLabel(kind)),
	))
}

func (r *OTelMetricRecorder) RecordJobEnd(ctx context.Context, jobType string, kind model.JobKind, status model.JobStatus, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("job_type", jobType),
		attribute.String("kind", kindLabel(kind)),
		attribute.String("status", strings.ToLower(string(status))),
	)
	r.jobFinished.Add(ctx, 1, attrs)
	r.jobDuration.Record(ctx, duration.Seconds(), attrs)
}

func (r *OTelMetricRecorder) RecordReplay(ctx context.Context, jobType string, historySize int) {
	attrs := metric.WithAttributes(attribute.String("job_type", jobType))
	r.replays.Add(ctx, 1, attrs)
	r.historySize.Record(ctx, int64(historySize), attrs)
}

func (r *OTelMetricRecorder) RecordMessage(ctx context.Context, messageType string, dropped bool) {
	outcome := "handled"
	if dropped {
		outcome = "dropped"
	}
	r.messages.Add(ctx, 1, metric.WithAttributes(
		attribute.String("message_type", messageType),
		attribute.String("outcome", outcome),
	))
}

var _ metrics.MetricRecorder = (*OTelMetricRecorder)(nil)

package metrics

import (
	"context"
	"time"

	model "github.com/tigerroll/durable/pkg/durable/core/domain/model"
)

// NoOpMetricRecorder discards everything.
type NoOpMetricRecorder struct{}

func NewNoOpMetricRecorder() MetricRecorder { return &NoOpMetricRecorder{} }

func (r *NoOpMetricRecorder) RecordJobStart(context.Context, string, model.JobKind) {}
func (r *NoOpMetricRecorder) RecordJobEnd(context.Context, string, model.JobKind, model.JobStatus, time.Duration) {
}
func (r *NoOpMetricRecorder) RecordReplay(context.Context, string, int)   {}
func (r *NoOpMetricRecorder) RecordMessage(context.Context, string, bool) {}

var _ MetricRecorder = (*NoOpMetricRecorder)(nil)

// NoOpTracer returns ctx unchanged and records nothing.
type NoOpTracer struct{}

func NewNoOpTracer() Tracer { return &NoOpTracer{} }

func (t *NoOpTracer) StartJobSpan(ctx context.Context, _ string, _ *model.JobState) (context.Context, func()) {
	return ctx, func() {}
}

func (t *NoOpTracer) RecordError(context.Context, string, error)                  {}
func (t *NoOpTracer) RecordEvent(context.Context, string, map[string]interface{}) {}

var _ Tracer = (*NoOpTracer)(nil)

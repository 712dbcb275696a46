package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	model "github.com/tigerroll/durable/pkg/durable/core/domain/model"
	metrics "github.com/tigerroll/durable/pkg/durable/core/metrics"
)

// OTelTracer is an implementation of metrics.Tracer using OpenTelemetry.
type OTelTracer struct {
	tracer trace.Tracer
}

// NewOTelTracer creates a tracer named name on provider.
func NewOTelTracer(provider trace.TracerProvider, name string) *OTelTracer {
	return &OTelTracer{tracer: provider.Tracer(name)}
}

// StartJobSpan starts "durable.<operation>" carrying the job's identity.
func (t *OTelTracer) StartJobSpan(ctx context.Context, operation string, state *model.JobState) (context.Context, func()) {
	attrs := []attribute.KeyValue{
		attribute.String("durable.job.id", state.ID.String()),
		attribute.String("durable.job.type", state.Type),
		attribute.String("durable.job.kind", string(state.Kind)),
		attribute.Int("durable.job.history_size", len(state.History)),
	}
	if state.ParentJobID != nil {
		attrs = append(attrs, attribute.String("durable.job.parent_id", state.ParentJobID.String()))
	}
	ctx, span := t.tracer.Start(ctx, "durable."+operation,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	return ctx, func() { span.End() }
}

func (t *OTelTracer) RecordError(ctx context.Context, module string, err error) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err, trace.WithAttributes(attribute.String("durable.module", module)))
	span.SetStatus(codes.Error, err.Error())
}

func (t *OTelTracer) RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	attrs := make([]attribute.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		attrs = append(attrs, toAttribute(k, v))
	}
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

func toAttribute(key string, v interface{}) attribute.KeyValue {
	switch val := v.(type) {
	case string:
		return attribute.String(key, val)
	case int:
		return attribute.Int(key, val)
	case int64:
		return attribute.Int64(key, val)
	case bool:
		return attribute.Bool(key, val)
	case float64:
		return attribute.Float64(key, val)
	case fmt.Stringer:
		return attribute.String(key, val.String())
	default:
		return attribute.String(key, fmt.Sprint(val))
	}
}

var _ metrics.Tracer = (*OTelTracer)(nil)

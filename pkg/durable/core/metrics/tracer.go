package metrics

import (
	"context"

	model "github.com/tigerroll/durable/pkg/durable/core/domain/model"
)

// Tracer is the distributed tracing abstraction.
type Tracer interface {
	// StartJobSpan starts a span for one piece of work done on behalf of the job:
	// a replay of an orchestration, or the execution of a unit of work.
	// The returned function ends the span.
	StartJobSpan(ctx context.Context, operation string, state *model.JobState) (context.Context, func())

	// RecordError records err on the span in ctx.
	RecordError(ctx context.Context, module string, err error)

	// RecordEvent adds an event to the span in ctx.
	RecordEvent(ctx context.Context, name string, attributes map[string]interface{})
}

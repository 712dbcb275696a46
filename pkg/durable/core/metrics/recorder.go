// Package metrics defines the observation hooks the engine reports through.
// Implementations live in the infrastructure layer; the no-op versions here are
// used when nothing else is wired.
package metrics

import (
	"context"
	"time"

	model "github.com/tigerroll/durable/pkg/durable/core/domain/model"
)

// MetricRecorder records engine activity.
type MetricRecorder interface {
	// RecordJobStart records a job moving to Running for the first time.
	RecordJobStart(ctx context.Context, jobType string, kind model.JobKind)

	// RecordJobEnd records a job reaching a terminal status. duration is measured
	// from the job's creation time.
	RecordJobEnd(ctx context.Context, jobType string, kind model.JobKind, status model.JobStatus, duration time.Duration)

	// RecordReplay records one run of an orchestration body with the history
	// size it was replayed against.
	RecordReplay(ctx context.Context, jobType string, historySize int)

	// RecordMessage records one actor message by type, and whether the handler dropped it.
	RecordMessage(ctx context.Context, messageType string, dropped bool)
}

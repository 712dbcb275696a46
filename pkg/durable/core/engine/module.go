package engine

import (
	"context"

	"go.uber.org/fx"

	"github.com/tigerroll/durable/pkg/durable/core/config"
	"github.com/tigerroll/durable/pkg/durable/core/domain/repository"
	"github.com/tigerroll/durable/pkg/durable/core/job"
	metrics "github.com/tigerroll/durable/pkg/durable/core/metrics"
	"github.com/tigerroll/durable/pkg/durable/support/util/serialization"
)

// ManagerParams are the Manager's fx dependencies. Metrics and tracing are optional.
type ManagerParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Registry  *job.Registry
	Store     repository.JobStateStore
	Recorder  metrics.MetricRecorder `optional:"true"`
	Tracer    metrics.Tracer         `optional:"true"`
}

// NewManagerFromParams builds the Manager and ties Start and Stop to the fx lifecycle.
func NewManagerFromParams(p ManagerParams) (*Manager, error) {
	codec, err := serialization.GetCodec(p.Config.Durable.Store.Codec)
	if err != nil {
		return nil, err
	}
	m := New(p.Registry, p.Store,
		WithCodec(codec),
		WithEngineConfig(p.Config.Durable.Engine),
		WithMetricRecorder(p.Recorder),
		WithTracer(p.Tracer),
	)
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return m.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return m.Stop(ctx)
		},
	})
	return m, nil
}

// Module provides the *Manager. It needs *config.Config, *job.Registry and a
// repository.JobStateStore.
var Module = fx.Options(
	fx.Provide(NewManagerFromParams),
)

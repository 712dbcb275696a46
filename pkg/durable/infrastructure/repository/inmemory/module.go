package inmemory

import (
	"go.uber.org/fx"

	"github.com/tigerroll/durable/pkg/durable/core/domain/repository"
)

// Module provides the in-memory Store as the repository.JobStateStore.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewStore,
			fx.As(new(repository.JobStateStore)),
		),
	),
)

package job

import (
	"go.uber.org/fx"

	"github.com/tigerroll/durable/pkg/durable/core/job"
)

// Module contributes the pipeline's job types to the registry.
var Module = fx.Options(
	job.Provide(NewCountWords, NewPublish, NewWordCount),
	fx.Provide(fx.Annotated{
		Group:  job.DescriptorGroup,
		Target: NewExportCountsFactory,
	}),
)

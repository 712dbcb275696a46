package main

import (
	"context"

	"go.uber.org/fx"

	appjob "github.com/tigerroll/durable/example/pipeline/internal/app/job"
	"github.com/tigerroll/durable/example/pipeline/internal/app/runner"
	gormadapter "github.com/tigerroll/durable/pkg/durable/adapter/database/gorm"
	"github.com/tigerroll/durable/pkg/durable/adapter/database/gorm/mysql"
	"github.com/tigerroll/durable/pkg/durable/adapter/database/gorm/postgres"
	"github.com/tigerroll/durable/pkg/durable/adapter/database/gorm/sqlite"
	config "github.com/tigerroll/durable/pkg/durable/core/config"
	"github.com/tigerroll/durable/pkg/durable/core/engine"
	"github.com/tigerroll/durable/pkg/durable/core/job"
	inframetrics "github.com/tigerroll/durable/pkg/durable/infrastructure/metrics"
	"github.com/tigerroll/durable/pkg/durable/infrastructure/repository"
	"github.com/tigerroll/durable/pkg/durable/infrastructure/telemetry"
	"github.com/tigerroll/durable/pkg/durable/support/util/logger"
)

// GetApplicationOptions builds the fx options of the pipeline application.
func GetApplicationOptions(appCtx context.Context, envFilePath string, embeddedConfig config.EmbeddedConfig) []fx.Option {
	var options []fx.Option

	options = append(options, fx.Supply(
		embeddedConfig,
		fx.Annotate(envFilePath, fx.ResultTags(`name:"envFilePath"`)),
		fx.Annotate(appCtx, fx.As(new(context.Context)), fx.ResultTags(`name:"appCtx"`)),
		runner.DefaultDocuments,
	))
	options = append(options, logger.Module)
	options = append(options, config.Module)
	options = append(options, gormadapter.Module)
	options = append(options, sqlite.Module)
	options = append(options, postgres.Module)
	options = append(options, mysql.Module)
	options = append(options, repository.Module)
	options = append(options, telemetry.Module)
	options = append(options, inframetrics.Module)
	options = append(options, job.Module)
	options = append(options, appjob.Module)
	options = append(options, engine.Module)
	options = append(options, runner.Module)

	return options
}

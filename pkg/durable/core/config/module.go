package config

import "go.uber.org/fx"

// NewEngineConfigProvider exposes the engine section on its own.
func NewEngineConfigProvider(cfg *Config) *EngineConfig {
	return &cfg.Durable.Engine
}

// Module provides *Config, *EngineConfig and the EnvironmentExpander.
// The application supplies EmbeddedConfig (and optionally a `name:"envFilePath"` string).
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewOsEnvironmentExpander,
			fx.As(new(EnvironmentExpander)),
		),
	),
	fx.Provide(NewConfigProvider),
	fx.Provide(NewEngineConfigProvider),
)

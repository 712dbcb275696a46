package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"

	"github.com/tigerroll/durable/pkg/durable/support/util/exception"
	"github.com/tigerroll/durable/pkg/durable/support/util/logger"
)

const moduleName = "config"

// ConfigParams defines the dependencies for NewConfigProvider.
type ConfigParams struct {
	fx.In
	EmbeddedConfig EmbeddedConfig
	EnvFilePath    string              `name:"envFilePath" optional:"true"`
	Expander       EnvironmentExpander `optional:"true"`
}

// LoadConfig builds a Config from defaults, the embedded YAML and the environment, in that
// order of precedence (later wins). ${VAR} placeholders in the YAML are expanded first.
func LoadConfig(envFilePath string, embedded EmbeddedConfig, expander EnvironmentExpander) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Warnf(".env file (%s) not found or could not be loaded: %v", envFilePath, err)
		}
	} else if err := godotenv.Load(); err != nil {
		logger.Debugf(".env file not found or could not be loaded: %v", err)
	}
	if expander == nil {
		expander = NewOsEnvironmentExpander()
	}

	cfg := NewConfig()
	raw, err := expander.Expand(embedded)
	if err != nil {
		return nil, exception.NewDurableError(moduleName, "failed to expand environment in embedded config", err)
	}
	var fromYAML Config
	if err := yaml.Unmarshal(raw, &fromYAML); err != nil {
		return nil, exception.NewDurableError(moduleName, "failed to unmarshal embedded config", err)
	}
	mergeDurableConfig(&cfg.Durable, &fromYAML.Durable)

	if err := loadStructFromEnv(reflect.ValueOf(cfg).Elem(), ""); err != nil {
		return nil, exception.NewDurableError(moduleName, "failed to load config from environment variables", err)
	}
	cfg.EmbeddedConfig = embedded

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewConfigProvider is the fx constructor for *Config. It also applies the log level.
func NewConfigProvider(p ConfigParams) (*Config, error) {
	cfg, err := LoadConfig(p.EnvFilePath, p.EmbeddedConfig, p.Expander)
	if err != nil {
		return nil, err
	}
	logger.SetLogLevel(cfg.Durable.System.Logging.Level)
	logger.Infof("Log level set to: %s", cfg.Durable.System.Logging.Level)
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func Validate(cfg *Config) error {
	e := cfg.Durable.Engine
	switch e.ResumePolicy {
	case ResumePolicyManual, ResumePolicyRestart:
	default:
		return exception.NewDurableErrorf(moduleName, "unknown resume_policy %q (want %q or %q)", e.ResumePolicy, ResumePolicyManual, ResumePolicyRestart)
	}
	if e.MailboxBatchSize < 1 {
		return exception.NewDurableErrorf(moduleName, "mailbox_batch_size must be positive, got %d", e.MailboxBatchSize)
	}
	if e.MaxWorkers < 0 {
		return exception.NewDurableErrorf(moduleName, "max_workers must not be negative, got %d", e.MaxWorkers)
	}
	switch cfg.Durable.Store.Type {
	case StoreTypeMemory, StoreTypeSQL, StoreTypeBlob, StoreTypeRedis:
	default:
		return exception.NewDurableErrorf(moduleName, "unknown store type %q", cfg.Durable.Store.Type)
	}
	switch cfg.Durable.Metrics.Backend {
	case MetricsBackendPrometheus, MetricsBackendOTel:
	default:
		return exception.NewDurableErrorf(moduleName, "unknown metrics backend %q", cfg.Durable.Metrics.Backend)
	}
	switch cfg.Durable.Metrics.OTLP.Protocol {
	case "http", "grpc":
	default:
		return exception.NewDurableErrorf(moduleName, "unknown OTLP protocol %q", cfg.Durable.Metrics.OTLP.Protocol)
	}
	return nil
}

// DecodeSection decodes a raw map section (e.g. one entry of AdapterConfigs) into out,
// matching keys against yaml tags.
func DecodeSection(raw interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("failed to decode config section: %w", err)
	}
	return nil
}

func mergeDurableConfig(dest, source *DurableConfig) {
	if source.Engine.MailboxBatchSize != 0 {
		dest.Engine.MailboxBatchSize = source.Engine.MailboxBatchSize
	}
	if source.Engine.MaxWorkers != 0 {
		dest.Engine.MaxWorkers = source.Engine.MaxWorkers
	}
	if source.Engine.StatusBufferSize != 0 {
		dest.Engine.StatusBufferSize = source.Engine.StatusBufferSize
	}
	if source.Engine.RetainFinished {
		dest.Engine.RetainFinished = true
	}
	if source.Engine.ResumePolicy != "" {
		dest.Engine.ResumePolicy = strings.ToLower(source.Engine.ResumePolicy)
	}
	if source.Engine.StopTimeout != 0 {
		dest.Engine.StopTimeout = source.Engine.StopTimeout
	}

	mergeStoreConfig(&dest.Store, &source.Store)

	if source.System.Logging.Level != "" {
		dest.System.Logging.Level = source.System.Logging.Level
	}

	if source.Metrics.Enabled {
		dest.Metrics.Enabled = true
	}
	if source.Metrics.Backend != "" {
		dest.Metrics.Backend = strings.ToLower(source.Metrics.Backend)
	}
	if source.Metrics.OTLP.Endpoint != "" {
		dest.Metrics.OTLP.Endpoint = source.Metrics.OTLP.Endpoint
	}
	if source.Metrics.OTLP.Protocol != "" {
		dest.Metrics.OTLP.Protocol = strings.ToLower(source.Metrics.OTLP.Protocol)
	}
	if source.Metrics.OTLP.Insecure {
		dest.Metrics.OTLP.Insecure = true
	}
	if source.Metrics.OTLP.ExportInterval != 0 {
		dest.Metrics.OTLP.ExportInterval = source.Metrics.OTLP.ExportInterval
	}
	if source.Metrics.Namespace != "" {
		dest.Metrics.Namespace = source.Metrics.Namespace
	}
	if source.Metrics.TracerName != "" {
		dest.Metrics.TracerName = source.Metrics.TracerName
	}
	if source.Metrics.ListenAddr != "" {
		dest.Metrics.ListenAddr = source.Metrics.ListenAddr
	}
	if source.Metrics.MetricsPath != "" {
		dest.Metrics.MetricsPath = source.Metrics.MetricsPath
	}

	for key, value := range source.AdapterConfigs {
		dest.AdapterConfigs[key] = value
	}
	for key, value := range source.StorageConfigs {
		dest.StorageConfigs[key] = value
	}
}

func mergeStoreConfig(dest, source *StoreConfig) {
	if source.Type != "" {
		dest.Type = strings.ToLower(source.Type)
	}
	if source.Codec != "" {
		dest.Codec = source.Codec
	}
	if source.DBRef != "" {
		dest.DBRef = source.DBRef
	}
	if source.StorageRef != "" {
		dest.StorageRef = source.StorageRef
	}
	if source.Prefix != "" {
		dest.Prefix = source.Prefix
	}
	if source.Redis.Addr != "" {
		dest.Redis.Addr = source.Redis.Addr
	}
	if source.Redis.Password != "" {
		dest.Redis.Password = source.Redis.Password
	}
	if source.Redis.DB != 0 {
		dest.Redis.DB = source.Redis.DB
	}
	if source.Redis.KeyPrefix != "" {
		dest.Redis.KeyPrefix = source.Redis.KeyPrefix
	}
}

// loadStructFromEnv overrides scalar fields from environment variables named after the
// yaml tag path, e.g. DURABLE_STORE_REDIS_ADDR. Map fields are left to their providers.
func loadStructFromEnv(val reflect.Value, prefix string) error {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		yamlTag := strings.Split(fieldType.Tag.Get("yaml"), ",")[0]
		if yamlTag == "" || yamlTag == "-" {
			continue
		}
		envVarName := strings.ToUpper(prefix + yamlTag)

		if field.Kind() == reflect.Struct {
			if err := loadStructFromEnv(field, envVarName+"_"); err != nil {
				return err
			}
			continue
		}
		envValue, exists := os.LookupEnv(envVarName)
		if !exists {
			continue
		}
		if err := setField(field, envValue); err != nil {
			return fmt.Errorf("failed to set field '%s' from env var '%s': %w", fieldType.Name, envVarName, err)
		}
	}
	return nil
}

func setField(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(intValue)
	case reflect.Bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(boolValue)
	}
	return nil
}

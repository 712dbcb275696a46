// Package config holds the durable engine's configuration and its loader.
package config

import "time"

// EmbeddedConfig is the raw YAML embedded into the application binary.
type EmbeddedConfig []byte

// LogLevel names a logging level.
type LogLevel string

const (
	LogLevelDebug  LogLevel = "DEBUG"
	LogLevelInfo   LogLevel = "INFO"
	LogLevelWarn   LogLevel = "WARN"
	LogLevelError  LogLevel = "ERROR"
	LogLevelSilent LogLevel = "SILENT"
)

// Resume policies for units of work that were running when the process stopped.
const (
	// ResumePolicyManual leaves them Waiting until an operator calls Resume.
	ResumePolicyManual = "manual"
	// ResumePolicyRestart re-executes them from scratch on Start. Only safe for idempotent bodies.
	ResumePolicyRestart = "restart"
)

// Store types.
const (
	StoreTypeMemory = "memory"
	StoreTypeSQL    = "sql"
	StoreTypeBlob   = "blob"
	StoreTypeRedis  = "redis"
)

type EngineConfig struct {
	MailboxBatchSize int    `yaml:"mailbox_batch_size"` // Messages per actor scheduling quantum.
	MaxWorkers       int    `yaml:"max_workers"`        // Concurrent actor quanta; 0 means one goroutine per quantum.
	StatusBufferSize int    `yaml:"status_buffer_size"` // Buffer of status subscription channels.
	RetainFinished   bool   `yaml:"retain_finished"`    // Keep finished child records in the store.
	ResumePolicy     string `yaml:"resume_policy"`      // "manual" or "restart".
	StopTimeout      int    `yaml:"stop_timeout_seconds"`
}

// StopTimeoutDuration returns StopTimeout as a duration.
func (e EngineConfig) StopTimeoutDuration() time.Duration {
	return time.Duration(e.StopTimeout) * time.Second
}

type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

type StoreConfig struct {
	Type       string      `yaml:"type"`        // memory, sql, blob or redis.
	Codec      string      `yaml:"codec"`       // json or msgpack.
	DBRef      string      `yaml:"db_ref"`      // Key into the database section, for type sql.
	StorageRef string      `yaml:"storage_ref"` // Key into the storage section, for type blob.
	Prefix     string      `yaml:"prefix"`      // Object name prefix, for type blob.
	Redis      RedisConfig `yaml:"redis"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type SystemConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// Metrics backends.
const (
	MetricsBackendPrometheus = "prometheus"
	MetricsBackendOTel       = "otel"
)

type MetricsConfig struct {
	Enabled     bool       `yaml:"enabled"`
	Backend     string     `yaml:"backend"`     // prometheus or otel.
	Namespace   string     `yaml:"namespace"`   // Prometheus metric name prefix.
	TracerName  string     `yaml:"tracer_name"` // Instrumentation scope of spans and OTel instruments.
	ListenAddr  string     `yaml:"listen_addr"` // Address of the Prometheus scrape endpoint; empty disables it.
	MetricsPath string     `yaml:"path"`
	OTLP        OTLPConfig `yaml:"otlp"`
}

// OTLPConfig configures export of spans and OTel metrics to a collector.
type OTLPConfig struct {
	Endpoint       string `yaml:"endpoint"` // host:port; empty keeps telemetry in process.
	Protocol       string `yaml:"protocol"` // http or grpc.
	Insecure       bool   `yaml:"insecure"`
	ExportInterval int    `yaml:"export_interval_seconds"`
}

type DurableConfig struct {
	Engine  EngineConfig  `yaml:"engine"`
	Store   StoreConfig   `yaml:"store"`
	System  SystemConfig  `yaml:"system"`
	Metrics MetricsConfig `yaml:"metrics"`
	// AdapterConfigs holds named database connection settings, decoded by the database providers.
	AdapterConfigs map[string]interface{} `yaml:"database"`
	// StorageConfigs holds named object storage settings, decoded by the storage providers.
	StorageConfigs map[string]interface{} `yaml:"storage"`
}

type Config struct {
	Durable        DurableConfig  `yaml:"durable"`
	EmbeddedConfig EmbeddedConfig `yaml:"-"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Durable: DurableConfig{
			Engine: EngineConfig{
				MailboxBatchSize: 100,
				StatusBufferSize: 16,
				ResumePolicy:     ResumePolicyManual,
				StopTimeout:      30,
			},
			Store: StoreConfig{
				Type:       StoreTypeMemory,
				Codec:      "json",
				DBRef:      "durable",
				StorageRef: "durable",
				Prefix:     "jobs/",
				Redis:      RedisConfig{Addr: "localhost:6379", KeyPrefix: "durable:"},
			},
			System: SystemConfig{
				Logging: LoggingConfig{Level: "INFO"},
			},
			Metrics: MetricsConfig{
				Backend:     MetricsBackendPrometheus,
				Namespace:   "durable",
				TracerName:  "github.com/tigerroll/durable",
				MetricsPath: "/metrics",
				OTLP:        OTLPConfig{Protocol: "http", ExportInterval: 60},
			},
			AdapterConfigs: map[string]interface{}{},
			StorageConfigs: map[string]interface{}{},
		},
	}
}

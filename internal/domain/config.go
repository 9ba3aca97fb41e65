package domain

import (
	"os"
	"strconv"
)

// Config holds the complete Kestrel configuration.
type Config struct {
	// InputPath is the transactions CSV to analyze.
	InputPath string `json:"inputPath"`

	// OutputDir receives the six report CSVs.
	OutputDir string `json:"outputDir"`

	// RulesPath is an optional JSON file of custom CEL rules.
	RulesPath string `json:"rulesPath"`

	// Optional sinks
	Repository RepositoryConfig `json:"repository"`
	Bus        BusConfig        `json:"bus"`
	Dedup      DedupConfig      `json:"dedup"`
	Metrics    MetricsConfig    `json:"metrics"`

	// Observability
	Logging LoggingConfig `json:"logging"`
	Tracing TracingConfig `json:"tracing"`
}

// RepositoryConfig holds persistence settings. Driver "none" disables
// persistence entirely.
type RepositoryConfig struct {
	Driver string `json:"driver"` // none, sqlite, postgres

	// SQLite specific
	SQLitePath string `json:"sqlitePath"`

	// PostgreSQL specific
	PostgresHost     string `json:"postgresHost"`
	PostgresPort     int    `json:"postgresPort"`
	PostgresUser     string `json:"postgresUser"`
	PostgresPassword string `json:"postgresPassword"`
	PostgresDB       string `json:"postgresDb"`
	PostgresSSLMode  string `json:"postgresSslMode"`
}

// BusConfig holds alert-publishing settings. Type "none" disables
// publishing.
type BusConfig struct {
	Type  string `json:"type"` // none, channel, nats
	Topic string `json:"topic"`

	ChannelBufferSize int `json:"channelBufferSize"`

	NATSUrl           string `json:"natsUrl"`
	NATSMaxReconnects int    `json:"natsMaxReconnects"`
	NATSReconnectWait int    `json:"natsReconnectWait"` // seconds
}

// DedupConfig holds alert de-duplication settings for the publisher.
type DedupConfig struct {
	Type string `json:"type"` // none, memory, redis

	TTLSecs int `json:"ttlSecs"`

	RedisAddr     string `json:"redisAddr"`
	RedisPassword string `json:"redisPassword"`
	RedisDB       int    `json:"redisDb"`
}

// MetricsConfig holds Prometheus push settings.
type MetricsConfig struct {
	PushgatewayURL string `json:"pushgatewayUrl"`
	JobName        string `json:"jobName"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool   `json:"enabled"`
	ServiceName string `json:"serviceName"`
}

// DefaultConfig returns the default configuration: reports only, no
// optional sinks.
func DefaultConfig() *Config {
	return &Config{
		InputPath: "data/transactions.csv",
		OutputDir: "reports",
		Repository: RepositoryConfig{
			Driver:     "none",
			SQLitePath: "./kestrel.db",
		},
		Bus: BusConfig{
			Type:              "none",
			Topic:             "kestrel.alerts",
			ChannelBufferSize: 1000,
		},
		Dedup: DedupConfig{
			Type:    "none",
			TTLSecs: 86400,
		},
		Metrics: MetricsConfig{
			JobName: "kestrel",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "kestrel",
		},
	}
}

// FromEnv overlays KESTREL_* environment variables onto the config.
func (c *Config) FromEnv() *Config {
	strVar(&c.InputPath, "KESTREL_INPUT")
	strVar(&c.OutputDir, "KESTREL_OUTPUT_DIR")
	strVar(&c.RulesPath, "KESTREL_RULES")

	strVar(&c.Repository.Driver, "KESTREL_DB_DRIVER")
	strVar(&c.Repository.SQLitePath, "KESTREL_SQLITE_PATH")
	strVar(&c.Repository.PostgresHost, "KESTREL_PG_HOST")
	intVar(&c.Repository.PostgresPort, "KESTREL_PG_PORT")
	strVar(&c.Repository.PostgresUser, "KESTREL_PG_USER")
	strVar(&c.Repository.PostgresPassword, "KESTREL_PG_PASSWORD")
	strVar(&c.Repository.PostgresDB, "KESTREL_PG_DB")
	strVar(&c.Repository.PostgresSSLMode, "KESTREL_PG_SSLMODE")

	strVar(&c.Bus.Type, "KESTREL_BUS")
	strVar(&c.Bus.Topic, "KESTREL_BUS_TOPIC")
	strVar(&c.Bus.NATSUrl, "KESTREL_NATS_URL")

	strVar(&c.Dedup.Type, "KESTREL_DEDUP")
	intVar(&c.Dedup.TTLSecs, "KESTREL_DEDUP_TTL_SECS")
	strVar(&c.Dedup.RedisAddr, "KESTREL_REDIS_ADDR")
	strVar(&c.Dedup.RedisPassword, "KESTREL_REDIS_PASSWORD")
	intVar(&c.Dedup.RedisDB, "KESTREL_REDIS_DB")

	strVar(&c.Metrics.PushgatewayURL, "KESTREL_PUSHGATEWAY_URL")
	strVar(&c.Metrics.JobName, "KESTREL_METRICS_JOB")

	strVar(&c.Logging.Level, "KESTREL_LOG_LEVEL")
	strVar(&c.Logging.Format, "KESTREL_LOG_FORMAT")

	if os.Getenv("KESTREL_TRACING") == "true" {
		c.Tracing.Enabled = true
	}
	strVar(&c.Tracing.ServiceName, "KESTREL_SERVICE_NAME")

	return c
}

func strVar(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func intVar(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"strata/pkg/errors"
)

type Config struct {
	App           AppConfig
	ClickHouse    ClickHouseConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Analysis      AnalysisConfig
	Output        OutputConfig
	Workers       WorkerConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"strata"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type ClickHouseConfig struct {
	Host     string `envconfig:"CLICKHOUSE_HOST" required:"true"`
	Port     int    `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	User     string `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password string `envconfig:"CLICKHOUSE_PASSWORD"`
	Database string `envconfig:"CLICKHOUSE_DB" default:"market"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" required:"true"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type KafkaConfig struct {
	Enabled bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	Brokers []string `envconfig:"KAFKA_BROKERS"`
}

// AnalysisConfig carries the tunable knobs of the level engine plus the
// data-loading defaults around it. Engine-side validation lives in
// internal/domain/levels; this only shapes the environment surface.
type AnalysisConfig struct {
	Symbol    string `envconfig:"ANALYSIS_SYMBOL" default:"SPX"`
	VixSymbol string `envconfig:"ANALYSIS_VIX_SYMBOL" default:"VIX"`
	Timeframe string `envconfig:"ANALYSIS_TIMEFRAME" default:"1d"`
	Lookback  int    `envconfig:"ANALYSIS_LOOKBACK" default:"252"`

	SwingWindow         int     `envconfig:"ANALYSIS_SWING_WINDOW" default:"20"`
	MaxSwingPairs       int     `envconfig:"ANALYSIS_MAX_SWING_PAIRS" default:"3"`
	VolumeBinCount      int     `envconfig:"ANALYSIS_VOLUME_BINS" default:"40"`
	VolumeTopN          int     `envconfig:"ANALYSIS_VOLUME_TOP_N" default:"10"`
	ClusterTolerancePct float64 `envconfig:"ANALYSIS_CLUSTER_TOLERANCE_PCT" default:"0.002"`
	PsychProximityPct   float64 `envconfig:"ANALYSIS_PSYCH_PROXIMITY_PCT" default:"0.02"`
	MAProximityPct      float64 `envconfig:"ANALYSIS_MA_PROXIMITY_PCT" default:"0.05"`
	PriceActionLookback int     `envconfig:"ANALYSIS_PRICE_ACTION_LOOKBACK" default:"90"`
	IncludeVix          bool    `envconfig:"ANALYSIS_INCLUDE_VIX" default:"true"`

	CacheEnabled bool          `envconfig:"ANALYSIS_CACHE_ENABLED" default:"true"`
	CacheTTL     time.Duration `envconfig:"ANALYSIS_CACHE_TTL" default:"10m"`
}

type OutputConfig struct {
	Dir          string `envconfig:"OUTPUT_DIR" default:"outputs"`
	ReportLevels int    `envconfig:"OUTPUT_REPORT_LEVELS" default:"8"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// WorkerConfig contains intervals for background workers
type WorkerConfig struct {
	Enabled                bool          `envconfig:"WORKER_ENABLED" default:"false"`
	LevelsInterval         time.Duration `envconfig:"WORKER_LEVELS_INTERVAL" default:"1h"`
	LevelsSymbols          []string      `envconfig:"WORKER_LEVELS_SYMBOLS" default:"SPX"`
	MetricsListenAddr      string        `envconfig:"METRICS_LISTEN_ADDR" default:":9090"`
	MetricsEnabled         bool          `envconfig:"METRICS_ENABLED" default:"true"`
	ShutdownTimeoutSeconds int           `envconfig:"WORKER_SHUTDOWN_TIMEOUT_SECONDS" default:"30"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}

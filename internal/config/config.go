package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	pkgRetry "github.com/hwangtech/linebot-backend/internal/pkg/retry"
)

// History backends
const (
	HistoryBackendMemory   = "memory"
	HistoryBackendPostgres = "postgres"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	// LINE messaging channel
	LineCfg LineConfig `envPrefix:"LINE_"`

	// Answer pipeline service
	PipelineCfg PipelineConfig `envPrefix:"PIPELINE_"`

	// Conversation history
	HistoryCfg HistoryConfig `envPrefix:"HISTORY_"`

	// Database configuration (required when HISTORY_BACKEND=postgres)
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL,notEmpty"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

// LineConfig holds LINE channel credentials and endpoints.
type LineConfig struct {
	HTTPClientConfig
	ChannelSecret string `env:"CHANNEL_SECRET,notEmpty"`
}

// PipelineConfig holds the answer pipeline service configuration.
type PipelineConfig struct {
	HTTPClientConfig
	AnswerEndpoint string          `env:"ANSWER_ENDPOINT" envDefault:"/answer"`
	IndexEndpoint  string          `env:"INDEX_ENDPOINT" envDefault:"/index"`
	Retry          pkgRetry.Config `envPrefix:"RETRY_"`
}

// HistoryConfig makes the eviction bound and persistence choice explicit
// configuration rather than implicit constants.
type HistoryConfig struct {
	Backend  string        `env:"BACKEND" envDefault:"memory"`
	MaxTurns int           `env:"MAX_TURNS" envDefault:"5"`
	IdleTTL  time.Duration `env:"IDLE_TTL" envDefault:"24h"`

	// FallbackMessage is sent when the pipeline fails. Empty means the
	// event is dropped silently.
	FallbackMessage string `env:"FALLBACK_MESSAGE"`
}

// HTTPClientConfig tunes one outbound HTTP client.
type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"10s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL,notEmpty"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errs []string

	switch cfg.HistoryCfg.Backend {
	case HistoryBackendMemory:
	case HistoryBackendPostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required when HISTORY_BACKEND=postgres")
		}
	default:
		errs = append(errs, fmt.Sprintf("HISTORY_BACKEND must be %q or %q, got %q",
			HistoryBackendMemory, HistoryBackendPostgres, cfg.HistoryCfg.Backend))
	}

	if cfg.HistoryCfg.MaxTurns < 1 || cfg.HistoryCfg.MaxTurns > 50 {
		errs = append(errs, fmt.Sprintf("HISTORY_MAX_TURNS must be between 1 and 50, got %d", cfg.HistoryCfg.MaxTurns))
	}

	if !cfg.EnableMocks && cfg.LineCfg.Token == "" {
		errs = append(errs, "LINE_TOKEN (channel access token) is required unless ENABLE_MOCKS=true")
	}

	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errs = append(errs, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}

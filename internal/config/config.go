// Package config reads the console's settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/jcmexdev/koi-console/internal/console/infra/adapters/service"
	"github.com/jcmexdev/koi-console/internal/pkg/telemetry"
)

type HTTPConfig struct {
	Addr            string        `env:"ADDR" env-default:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// APIConfig locates the koi shipping REST API. The path prefixes differ
// between deployments.
type APIConfig struct {
	BaseURL      string        `env:"BASE_URL" env-default:"http://localhost:8081"`
	Timeout      time.Duration `env:"TIMEOUT" env-default:"15s"`
	ContentPath  string        `env:"CONTENT_PATH" env-default:"/content"`
	PricesPath   string        `env:"PRICES_PATH" env-default:"/prices"`
	OrdersPath   string        `env:"ORDERS_PATH" env-default:"/orders"`
	PaymentsPath string        `env:"PAYMENTS_PATH" env-default:"/payments"`
}

func (c APIConfig) Paths() service.Paths {
	return service.Paths{
		Content:  c.ContentPath,
		Prices:   c.PricesPath,
		Orders:   c.OrdersPath,
		Payments: c.PaymentsPath,
	}
}

// RedisConfig backs the session store. An empty Addr keeps sessions in
// process memory.
type RedisConfig struct {
	Addr      string `env:"ADDR"`
	Password  string `env:"PASSWORD"`
	DB        int    `env:"DB" env-default:"0"`
	Namespace string `env:"NAMESPACE" env-default:"koi-console"`
}

// AuditConfig points at the sqlite audit log. An empty Path keeps the log in
// memory.
type AuditConfig struct {
	Path string `env:"DB_PATH"`
}

type OTelConfig struct {
	Enabled     bool    `env:"ENABLED" env-default:"false"`
	Endpoint    string  `env:"EXPORTER_OTLP_ENDPOINT"`
	Environment string  `env:"ENVIRONMENT" env-default:"local"`
	SampleRatio float64 `env:"SAMPLE_RATIO" env-default:"1"`
}

func (c OTelConfig) Tracer() telemetry.TracerConfig {
	return telemetry.TracerConfig{
		Enabled:     c.Enabled,
		Endpoint:    c.Endpoint,
		Environment: c.Environment,
		SampleRatio: c.SampleRatio,
	}
}

type Config struct {
	ServiceName string      `env:"SERVICE_NAME" env-default:"koi-console"`
	LogLevel    string      `env:"LOG_LEVEL" env-default:"info"`
	HTTP        HTTPConfig  `env-prefix:"CONSOLE_HTTP_"`
	API         APIConfig   `env-prefix:"KOI_API_"`
	Redis       RedisConfig `env-prefix:"REDIS_"`
	Audit       AuditConfig `env-prefix:"AUDIT_"`
	OTel        OTelConfig  `env-prefix:"OTEL_"`
}

// loadDotEnv copies a .env file in the working directory into the
// environment. Variables already set win.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func TryRead() (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read env variables: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("config: KOI_API_BASE_URL is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("config: KOI_API_TIMEOUT must be positive, got %s", c.API.Timeout)
	}
	return nil
}

// MockAPIConfig configures the stand-in API used for local runs.
type MockAPIConfig struct {
	Addr             string        `env:"MOCK_API_ADDR" env-default:":8081"`
	PaymentThreshold float64       `env:"MOCK_API_PAYMENT_THRESHOLD" env-default:"0"`
	PaymentBaseURL   string        `env:"MOCK_API_PAYMENT_BASE_URL"`
	Latency          time.Duration `env:"MOCK_API_LATENCY" env-default:"0s"`
	Seed             bool          `env:"MOCK_API_SEED" env-default:"true"`
	LogLevel         string        `env:"LOG_LEVEL" env-default:"info"`
}

func TryReadMockAPI() (MockAPIConfig, error) {
	if err := loadDotEnv(); err != nil {
		return MockAPIConfig{}, err
	}
	var cfg MockAPIConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return MockAPIConfig{}, fmt.Errorf("failed to read env variables: %w", err)
	}
	return cfg, nil
}

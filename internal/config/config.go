package config

import (
	"fmt"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/tenant"
	pkgconfig "github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/config"
)

// Config holds all configuration for the review service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"REVIEW_HTTP_PORT" envDefault:"8010"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"platform"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"platform_secret"`
	PostgresDB   string `env:"REVIEW_DB_NAME" envDefault:"review_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Redis
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REVIEW_REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Auth
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`

	// Public API rate limits
	PublicKeyedPerMinute int `env:"PUBLIC_RATE_LIMIT_KEYED" envDefault:"600"`
	PublicAnonPerMinute  int `env:"PUBLIC_RATE_LIMIT_ANON" envDefault:"60"`

	// Submissions per author per target per rolling 24h
	FloodLimit int `env:"REVIEW_FLOOD_LIMIT" envDefault:"1"`

	// Collaborator services
	OrderServiceURL     string `env:"ORDER_SERVICE_URL" envDefault:"http://localhost:8004"`
	SentimentServiceURL string `env:"SENTIMENT_SERVICE_URL" envDefault:""`

	// Tracing
	TracingEnabled  bool   `env:"TRACING_ENABLED" envDefault:"false"`
	TracingEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`

	// Tenant review settings
	Tenant tenant.Settings
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load review config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.PublicKeyedPerMinute < 1 || c.PublicAnonPerMinute < 1 {
		return fmt.Errorf("rate limits must be positive")
	}
	if c.FloodLimit < 1 {
		return fmt.Errorf("flood limit must be positive")
	}
	if c.Tenant.MinReviewLength < 0 || c.Tenant.MaxReviewLength < c.Tenant.MinReviewLength {
		return fmt.Errorf("invalid tenant review length bounds")
	}
	return nil
}

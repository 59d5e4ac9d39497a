package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	stringutil "clientview/pkg/platform/strings"
)

// Config is the full process configuration, read once at startup.
type Config struct {
	Server    Server
	Store     StoreConfig
	Redis     RedisConfig
	Admin     AdminConfig
	Auth      AuthConfig
	Audit     AuditConfig
	RateLimit RateLimitConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"CLIENTVIEW_ADDR" envDefault:":3000"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// StoreConfig selects the document store. An empty DatabaseURL selects the
// in-memory store.
type StoreConfig struct {
	DatabaseURL   string        `env:"DATABASE_URL"`
	MaxConns      int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	ProbeInterval time.Duration `env:"STORE_PROBE_INTERVAL" envDefault:"10s"`
	MaxBackoff    time.Duration `env:"STORE_MAX_BACKOFF" envDefault:"30s"`
}

// InMemory reports whether no database is configured.
func (c StoreConfig) InMemory() bool {
	return c.DatabaseURL == ""
}

// RedisConfig configures the optional Redis connection used by the rate limiter.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// AdminConfig holds the gateway credentials. An empty Token disables every
// admin route; an empty RawToken disables the unrestricted routes only.
type AdminConfig struct {
	Token    string `env:"ADMIN_TOKEN"`
	RawToken string `env:"ADMIN_RAW_TOKEN"`
}

// AuthConfig enables bearer authentication on client mutations when
// SigningKey is set.
type AuthConfig struct {
	SigningKey string `env:"JWT_SIGNING_KEY"`
	Issuer     string `env:"JWT_ISSUER"`
}

func (c AuthConfig) Enabled() bool {
	return c.SigningKey != ""
}

// AuditConfig configures where audit events go besides the primary store.
type AuditConfig struct {
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_AUDIT_TOPIC" envDefault:"clientview.audit"`
	AsyncBuffer  int      `env:"AUDIT_ASYNC_BUFFER" envDefault:"0"`
}

type RateLimitConfig struct {
	AdminLimit  int           `env:"ADMIN_RATE_LIMIT" envDefault:"30"`
	AdminWindow time.Duration `env:"ADMIN_RATE_WINDOW" envDefault:"1m"`
	Disabled    bool          `env:"DISABLE_RATE_LIMITING" envDefault:"false"`
}

// FromEnv builds the configuration from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Audit.KafkaBrokers = stringutil.DedupeAndTrim(cfg.Audit.KafkaBrokers)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.RateLimit.AdminLimit <= 0 {
		return fmt.Errorf("ADMIN_RATE_LIMIT must be positive, got %d", c.RateLimit.AdminLimit)
	}
	if c.RateLimit.AdminWindow <= 0 {
		return fmt.Errorf("ADMIN_RATE_WINDOW must be positive, got %s", c.RateLimit.AdminWindow)
	}
	if c.Audit.AsyncBuffer < 0 {
		return fmt.Errorf("AUDIT_ASYNC_BUFFER must not be negative, got %d", c.Audit.AsyncBuffer)
	}
	return nil
}

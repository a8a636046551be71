package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	HTTPAddr           string        `env:"HTTP_ADDR" envDefault:":8080"`
	TrustedProxies     []string      `env:"TRUSTED_PROXIES" envSeparator:","`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	TelegramToken      string        `env:"TELEGRAM_TOKEN"`
	AdminIDs           []int64       `env:"ADMIN_IDS" envSeparator:","`
	StorageBackend     string        `env:"STORAGE_BACKEND" envDefault:"redis"`
	CartTTL            time.Duration `env:"CART_TTL" envDefault:"2160h"`
	HTTPRequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	SessionIdle        time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`
	SessionSweep       time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"5m"`

	Content   ContentConfig   `envPrefix:"CONTENT_"`
	MailRelay MailRelayConfig `envPrefix:"MAIL_RELAY_"`
	Redis     RedisConfig     `envPrefix:"REDIS_"`
	Database  DatabaseConfig  `envPrefix:"DB_"`
	Pricing   PricingConfig   `envPrefix:"PRICE_"`
	Quote     QuoteConfig     `envPrefix:"QUOTE_"`
}

type ContentConfig struct {
	BaseURL          string `env:"BASE_URL,required,notEmpty"`
	PlaceholderImage string `env:"PLACEHOLDER_IMAGE" envDefault:"/images/placeholder.jpg"`
}

type MailRelayConfig struct {
	URL string `env:"URL,required,notEmpty"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type DatabaseConfig struct {
	Host            string        `env:"HOST"`
	Port            int           `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER"`
	Password        string        `env:"PASSWORD"`
	Name            string        `env:"NAME"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"2m"`
}

// PricingConfig holds the configurator surcharges, in euros.
type PricingConfig struct {
	Base            float64 `env:"BASE" envDefault:"350"`
	BladeEngraving  float64 `env:"BLADE_ENGRAVING" envDefault:"50"`
	HandleEngraving float64 `env:"HANDLE_ENGRAVING" envDefault:"30"`
	OtherDetails    float64 `env:"OTHER_DETAILS" envDefault:"20"`
}

type QuoteConfig struct {
	RateLimit   int64         `env:"RATE_LIMIT" envDefault:"5"`
	IPRateLimit int64         `env:"IP_RATE_LIMIT" envDefault:"20"`
	RateWindow  time.Duration `env:"RATE_WINDOW" envDefault:"1h"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendMemory:
	case BackendRedis:
		if c.Redis.Addr == "" {
			return errors.New("REDIS_ADDR is required for the redis storage backend")
		}
	case BackendPostgres:
		if c.Database.Host == "" || c.Database.User == "" || c.Database.Name == "" {
			return errors.New("DB_HOST, DB_USER and DB_NAME are required for the postgres storage backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}

	if c.Pricing.Base < 0 || c.Pricing.BladeEngraving < 0 ||
		c.Pricing.HandleEngraving < 0 || c.Pricing.OtherDetails < 0 {
		return errors.New("pricing amounts cannot be negative")
	}

	if c.SessionIdle <= 0 || c.SessionSweep <= 0 {
		return errors.New("SESSION_IDLE_TIMEOUT and SESSION_SWEEP_INTERVAL must be positive")
	}

	if c.Quote.RateLimit <= 0 {
		return fmt.Errorf("invalid quote rate limit: %d", c.Quote.RateLimit)
	}
	if c.Quote.IPRateLimit <= 0 {
		return fmt.Errorf("invalid quote ip rate limit: %d", c.Quote.IPRateLimit)
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name,
	)
}

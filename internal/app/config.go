package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// StorageDriver выбирает реализацию хранилища.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска API-сервера.
// Все поля переопределяются переменными окружения SALES_*.
type Config struct {
	APIAddr     string `env:"SALES_API_ADDR" envDefault:":8080"`
	MetricsAddr string `env:"SALES_METRICS_ADDR" envDefault:":9090"`

	StorageDriver       StorageDriver `env:"SALES_STORAGE_DRIVER" envDefault:"memory"`
	PostgresDSN         string        `env:"SALES_POSTGRES_DSN"`
	PostgresAutoMigrate bool          `env:"SALES_POSTGRES_AUTO_MIGRATE" envDefault:"true"`

	// Пустой список брокеров означает запуск без Kafka.
	KafkaBrokers string `env:"SALES_KAFKA_BROKERS"`

	JWTSecret string        `env:"SALES_JWT_SECRET" envDefault:"dev-secret"`
	TokenTTL  time.Duration `env:"SALES_TOKEN_TTL" envDefault:"24h"`

	// SeedDemo наполняет справочники демо-данными; имеет смысл только
	// для memory-хранилища.
	SeedDemo bool `env:"SALES_SEED_DEMO" envDefault:"true"`
}

// DefaultConfig возвращает конфигурацию со значениями по умолчанию,
// без чтения окружения.
func DefaultConfig() Config {
	return Config{
		APIAddr:             ":8080",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		JWTSecret:           "dev-secret",
		TokenTTL:            24 * time.Hour,
		SeedDemo:            true,
	}
}

// ReadConfig собирает конфигурацию из переменных окружения.
func ReadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет согласованность конфигурации.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("SALES_POSTGRES_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q (use memory|postgres)", c.StorageDriver)
	}

	if c.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive, got %s", c.TokenTTL)
	}
	return nil
}

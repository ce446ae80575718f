package config

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

// StoreConfig selects and locates the persistence backend.
type StoreConfig struct {
	Driver        string
	DSN           string
	MongoURI      string
	MongoDatabase string
}

// Config holds the application configuration.
type Config struct {
	AppPort          string
	Store            StoreConfig
	JWTSecret        string
	JWTTTL           time.Duration
	AdminSecret      string
	DemoLoginEnabled bool
	RabbitMQURL      string
	SeedOnStart      bool
	LogLevel         string
	LogFormat        string
}

// Load reads the configuration from environment variables, falling back to defaults.
func Load() (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// SetDefaults registers the default value of every known key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("STORE_DRIVER", DriverMemory)
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=backoffice port=5432 sslmode=disable")
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DATABASE", "backoffice")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("ADMIN_SECRET", "")
	v.SetDefault("DEMO_LOGIN_ENABLED", false)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("SEED_ON_START", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort: v.GetString("APP_PORT"),
		Store: StoreConfig{
			Driver:        v.GetString("STORE_DRIVER"),
			DSN:           v.GetString("DATABASE_DSN"),
			MongoURI:      v.GetString("MONGODB_URI"),
			MongoDatabase: v.GetString("MONGODB_DATABASE"),
		},
		JWTSecret:        v.GetString("JWT_SECRET"),
		JWTTTL:           v.GetDuration("JWT_TTL"),
		AdminSecret:      v.GetString("ADMIN_SECRET"),
		DemoLoginEnabled: v.GetBool("DEMO_LOGIN_ENABLED"),
		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		SeedOnStart:      v.GetBool("SEED_ON_START"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogFormat:        v.GetString("LOG_FORMAT"),
	}

	switch cfg.Store.Driver {
	case DriverMemory, DriverPostgres, DriverSQLite, DriverMongo:
	default:
		return nil, errors.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
	}
	if cfg.JWTTTL <= 0 {
		return nil, errors.Errorf("JWT_TTL must be positive, got %s", cfg.JWTTTL)
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must not be empty")
	}
	return cfg, nil
}

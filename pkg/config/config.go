package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var Empty = new(Config)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverDynamoDB = "dynamodb"
)

type Config struct {
	AppEnv       string `envconfig:"APP_ENV"`
	Port         int    `envconfig:"PORT" default:"8080"`
	SentryDSN    string `envconfig:"SENTRY_DSN"`
	AllowOrigins string `envconfig:"ALLOW_ORIGINS"`
	// RateLimit is requests per second per client IP; 0 disables limiting.
	RateLimit float64 `envconfig:"RATE_LIMIT"`

	DB struct {
		Driver     string `envconfig:"DB_DRIVER" default:"postgres"`
		Name       string `envconfig:"DB_NAME"`
		Host       string `envconfig:"DB_HOST"`
		Port       int    `envconfig:"DB_PORT"`
		User       string `envconfig:"DB_USER"`
		Pass       string `envconfig:"DB_PASS"`
		EnableSSL  bool   `envconfig:"ENABLE_SSL"`
		SQLitePath string `envconfig:"SQLITE_PATH" default:"movies.db"`
	}
	DynamoDB struct {
		Region        string `envconfig:"DDB_REGION"`
		Endpoint      string `envconfig:"DDB_ENDPOINT"`
		AccessKey     string `envconfig:"DDB_ACCESS_KEY"`
		SecretKey     string `envconfig:"DDB_SECRET_KEY"`
		SessionToken  string `envconfig:"DDB_SESSION_TOKEN"`
		MoviesTable   string `envconfig:"DDB_MOVIES_TABLE"`
		CountersTable string `envconfig:"DDB_COUNTERS_TABLE"`
	}
	Auth struct {
		JWTSecret string `envconfig:"AUTH_JWT_SECRET"`
	}
}

func LoadConfig() (*Config, error) {
	// load default .env file, ignore the error
	_ = godotenv.Load()

	cfg := new(Config)
	err := envconfig.Process("", cfg)
	if err != nil {
		return nil, fmt.Errorf("load config error: %v", err)
	}

	switch cfg.DB.Driver {
	case DriverPostgres, DriverSQLite, DriverDynamoDB:
	default:
		return nil, fmt.Errorf("load config error: unsupported DB_DRIVER %q", cfg.DB.Driver)
	}

	return cfg, nil
}

// Origins splits AllowOrigins into trimmed, non-empty entries.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

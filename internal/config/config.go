package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application's configuration values.
// Tags like `envconfig:"APP_PORT"` specify the environment variable name.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat  string `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json console"`
	HttpServer ServerConfig
	GrpcServer GrpcServerConfig
	Dataset    DatasetConfig
	SQLite     SQLiteConfig
	Postgres   PostgresConfig
}

// ServerConfig holds HTTP server-specific configurations.
type ServerConfig struct {
	Port         string        `envconfig:"HTTP_SERVER_PORT" default:"8080"`
	TimeoutRead  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_READ" default:"15s"`
	TimeoutWrite time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_WRITE" default:"15s"`
	TimeoutIdle  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_IDLE" default:"60s"`
}

// GrpcServerConfig holds gRPC server-specific configurations.
type GrpcServerConfig struct {
	Enabled bool   `envconfig:"GRPC_SERVER_ENABLED" default:"true"`
	Port    string `envconfig:"GRPC_SERVER_PORT" default:"9090"`
}

// DatasetConfig selects where the four dashboard tables are read from.
// The file names double as table names for the filesql source.
type DatasetConfig struct {
	Source       string `envconfig:"DATASET_SOURCE" default:"csv" validate:"oneof=csv filesql sqlite postgres"`
	Dir          string `envconfig:"DATASET_DIR" default:"."`
	OrderItems   string `envconfig:"DATASET_ORDER_ITEMS" default:"order_items_dataset.csv" validate:"required"`
	OrderReviews string `envconfig:"DATASET_ORDER_REVIEWS" default:"order_reviews_dataset.csv" validate:"required"`
	Products     string `envconfig:"DATASET_PRODUCTS" default:"products_dataset.csv" validate:"required"`
	Sellers      string `envconfig:"DATASET_SELLERS" default:"sellers_dataset.csv" validate:"required"`
}

// SQLiteConfig locates the database used by the sqlite source.
type SQLiteConfig struct {
	Path string `envconfig:"SQLITE_PATH" default:"olist.db"`
}

// PostgresConfig holds PostgreSQL connection details for the postgres source.
// The fields are only required when DATASET_SOURCE=postgres.
type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST"`
	Port     string `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER"`
	Password string `envconfig:"POSTGRES_PASSWORD"`
	DBName   string `envconfig:"POSTGRES_DBNAME"`
	Schema   string `envconfig:"POSTGRES_SCHEMA" default:"public"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
}

// DSN constructs the Data Source Name string for connecting to PostgreSQL.
func (pc *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		pc.Host, pc.Port, pc.User, pc.Password, pc.DBName, pc.SSLMode)
}

// Load reads the configuration from environment variables and validates it.
// It should be called once during application startup.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Dataset.Source == "postgres" {
		pg := cfg.Postgres
		if pg.Host == "" || pg.User == "" || pg.DBName == "" {
			return fmt.Errorf("invalid configuration: POSTGRES_HOST, POSTGRES_USER and POSTGRES_DBNAME are required for the postgres source")
		}
	}
	return nil
}

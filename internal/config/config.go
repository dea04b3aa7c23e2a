package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/MrJamesThe3rd/budgetit/internal/storage"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"BudgetIT"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Storage struct {
		Backend    string `envconfig:"STORAGE_BACKEND" default:"sqlite"`
		SQLitePath string `envconfig:"SQLITE_PATH" default:"data/budgetit.db"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"budgetit"`
	}

	S3 struct {
		Bucket    string `envconfig:"S3_BUCKET"`
		Region    string `envconfig:"S3_REGION" default:"us-east-1"`
		Endpoint  string `envconfig:"S3_ENDPOINT"`
		PathStyle bool   `envconfig:"S3_PATH_STYLE" default:"false"`
		Prefix    string `envconfig:"S3_PREFIX" default:"budgetit"`
		// Credentials fall back to the default AWS chain when unset.
		AccessKeyID     string `envconfig:"S3_ACCESS_KEY_ID"`
		SecretAccessKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	}

	Budget struct {
		// UnbudgetedWarnThreshold is a percentage of total spending.
		UnbudgetedWarnThreshold float64 `envconfig:"UNBUDGETED_WARN_THRESHOLD" default:"20"`
		// FiscalYear dates imported budgets; 0 means the current year.
		FiscalYear int `envconfig:"BUDGET_FISCAL_YEAR" default:"0"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// StorageSettings translates the storage section for storage.Open.
func (c *Config) StorageSettings() storage.Settings {
	return storage.Settings{
		Backend:     storage.Backend(strings.ToLower(c.Storage.Backend)),
		SQLitePath:  c.Storage.SQLitePath,
		PostgresURL: c.ConnectionString(),
		S3: storage.S3Config{
			Bucket:    c.S3.Bucket,
			Region:    c.S3.Region,
			Endpoint:  c.S3.Endpoint,
			PathStyle: c.S3.PathStyle,
			Prefix:    c.S3.Prefix,

			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
		},
	}
}

// Load reads the environment, after merging variables from the given .env
// files (default ".env") that are not already set. Missing files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

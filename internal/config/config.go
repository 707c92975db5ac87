// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.adroit-assistant/config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - AI: chat model, embedder model, temperature
//   - Storage: PostgreSQL connection for members/resources (see storage.go)
//   - Data: directories for the document corpus and persisted indexes
//
// Security: the PostgreSQL password is never logged. GEMINI_API_KEY is read
// directly by the Genkit plugin, not via Viper.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidModelName indicates the chat model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidEmbedderModel indicates the embedder model is invalid.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidDataDir indicates the data directory is invalid.
	ErrInvalidDataDir = errors.New("invalid data directory")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresSSLMode indicates the PostgreSQL SSL mode is invalid.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")
)

const (
	// DefaultChatModel is the provider-qualified default generation model.
	DefaultChatModel = "googleai/gemini-2.5-flash"

	// DefaultEmbedderModel is the default Gemini embedding model.
	DefaultEmbedderModel = "text-embedding-004"

	// DefaultTemperature keeps answers close to the retrieved context.
	DefaultTemperature float32 = 0.3
)

// Config stores application configuration.
type Config struct {
	// AI model configuration
	ModelName     string  `mapstructure:"model_name"`
	EmbedderModel string  `mapstructure:"embedder_model"`
	Temperature   float32 `mapstructure:"temperature"`

	// Data layout: DataDir holds the markdown corpus (docs/), the persisted
	// index partitions (index/global, index/resources) and per-user trees
	// (users/<id>/docs, users/<id>/index).
	DataDir string `mapstructure:"data_dir"`

	// HTTP server address for serve mode.
	Addr string `mapstructure:"addr"`

	// Storage configuration (see storage.go for documentation)
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"` // SENSITIVE: never logged
	PostgresDBName   string `mapstructure:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".adroit-assistant")

	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v, configDir)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL overrides individual postgres_* settings when set.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper, configDir string) {
	// AI defaults
	v.SetDefault("model_name", DefaultChatModel)
	v.SetDefault("embedder_model", DefaultEmbedderModel)
	v.SetDefault("temperature", DefaultTemperature)

	// Data layout defaults
	v.SetDefault("data_dir", filepath.Join(configDir, "data"))

	// HTTP defaults
	v.SetDefault("addr", "127.0.0.1:8080")

	// PostgreSQL defaults (matching docker-compose.yml)
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "adroit")
	v.SetDefault("postgres_password", "adroit_dev_password")
	v.SetDefault("postgres_db_name", "adroit")
	v.SetDefault("postgres_ssl_mode", "disable")
}

// bindEnvVariables binds environment overrides explicitly.
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a panic here is a bug, not a
	// runtime condition.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("model_name", "ADROIT_MODEL_NAME")
	mustBind("embedder_model", "ADROIT_EMBEDDER_MODEL")
	mustBind("data_dir", "ADROIT_DATA_DIR")
	mustBind("addr", "ADROIT_ADDR")

	// NOTE: GEMINI_API_KEY is read directly by Genkit, not via Viper.
	// Chat degrades to a "not initialized" answer when it is missing.
}

// DocsDir returns the markdown corpus directory for the global partition.
func (c *Config) DocsDir() string {
	return filepath.Join(c.DataDir, "docs")
}

// GlobalIndexDir returns the persisted location of the global index.
func (c *Config) GlobalIndexDir() string {
	return filepath.Join(c.DataDir, "index", "global")
}

// ResourcesIndexDir returns the persisted location of the resources index.
func (c *Config) ResourcesIndexDir() string {
	return filepath.Join(c.DataDir, "index", "resources")
}

// UsersDir returns the root of all per-user data trees.
func (c *Config) UsersDir() string {
	return filepath.Join(c.DataDir, "users")
}

// UserDocsDir returns the uploaded-documents directory for one user.
func (c *Config) UserDocsDir(userID string) string {
	return filepath.Join(c.UsersDir(), userID, "docs")
}

// UserIndexDir returns the persisted location of one user's private index.
func (c *Config) UserIndexDir(userID string) string {
	return filepath.Join(c.UsersDir(), userID, "index")
}

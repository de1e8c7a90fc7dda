package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Storage backends for the client session
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	StorageDisk   = "disk"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	API      APIConfig      `mapstructure:"api"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Development  bool          `mapstructure:"development"`
}

// APIConfig points at the Billed backend. An empty URL runs the client
// without a store.
type APIConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StorageConfig selects where the session (user, jwt) is persisted
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	// Path is the diskv directory of the disk backend
	Path string `mapstructure:"path"`
}

// DatabaseConfig holds database configuration for the sqlite backend
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from an optional .env file, the config file
// and environment variables, in increasing precedence. A missing config
// file leaves the defaults in place.
func Load(configPath string) (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("BILLED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.development", false)

	// Backend defaults
	v.SetDefault("api.url", "http://localhost:5678")
	v.SetDefault("api.timeout", 15*time.Second)

	// Session storage defaults
	v.SetDefault("storage.backend", StorageSQLite)
	v.SetDefault("storage.path", "data/session")

	// Database defaults
	v.SetDefault("database.path", "data/billed.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds the documented environment variables
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("api.url", "BILLED_API_URL")
	v.BindEnv("storage.backend", "BILLED_STORAGE_BACKEND")
	v.BindEnv("storage.path", "BILLED_STORAGE_PATH")
	v.BindEnv("database.path", "BILLED_DATABASE_PATH")
	v.BindEnv("server.port", "BILLED_PORT")
	v.BindEnv("logger.level", "BILLED_LOG_LEVEL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}

	if c.API.URL != "" {
		u, err := url.Parse(c.API.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("api.url %q is not an absolute url", c.API.URL)
		}
	}

	switch c.Storage.Backend {
	case StorageMemory:
	case StorageSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite storage backend")
		}
	case StorageDisk:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the disk storage backend")
		}
	default:
		return fmt.Errorf("unknown storage.backend %q", c.Storage.Backend)
	}

	switch c.Logger.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown logger.format %q", c.Logger.Format)
	}

	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/lostfound/internal/auth"
	"github.com/JaimeStill/lostfound/internal/classifier"
	"github.com/JaimeStill/lostfound/pkg/database"
	"github.com/JaimeStill/lostfound/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvLostFoundEnv             = "LOSTFOUND_ENV"
	EnvLostFoundShutdownTimeout = "LOSTFOUND_SHUTDOWN_TIMEOUT"
	EnvLostFoundVersion         = "LOSTFOUND_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "LOSTFOUND_DB_HOST",
	Port:            "LOSTFOUND_DB_PORT",
	Name:            "LOSTFOUND_DB_NAME",
	User:            "LOSTFOUND_DB_USER",
	Password:        "LOSTFOUND_DB_PASSWORD",
	SSLMode:         "LOSTFOUND_DB_SSL_MODE",
	MaxOpenConns:    "LOSTFOUND_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "LOSTFOUND_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "LOSTFOUND_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "LOSTFOUND_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:         "LOSTFOUND_STORAGE_PROVIDER",
	ContainerName:    "LOSTFOUND_STORAGE_CONTAINER_NAME",
	ConnectionString: "LOSTFOUND_STORAGE_CONNECTION_STRING",
	ServiceURL:       "LOSTFOUND_STORAGE_SERVICE_URL",
}

var classifierEnv = &classifier.Env{
	Provider:            "LOSTFOUND_CLASSIFIER_PROVIDER",
	BaseURL:             "LOSTFOUND_CLASSIFIER_BASE_URL",
	Token:               "LOSTFOUND_CLASSIFIER_TOKEN",
	Model:               "LOSTFOUND_CLASSIFIER_MODEL",
	APIVersion:          "LOSTFOUND_CLASSIFIER_API_VERSION",
	Timeout:             "LOSTFOUND_CLASSIFIER_TIMEOUT",
	MaxPredictions:      "LOSTFOUND_CLASSIFIER_MAX_PREDICTIONS",
	BackfillConcurrency: "LOSTFOUND_CLASSIFIER_BACKFILL_CONCURRENCY",
}

var authEnv = &auth.Env{
	Mode:      "LOSTFOUND_AUTH_MODE",
	IssuerURL: "LOSTFOUND_AUTH_ISSUER_URL",
	ClientID:  "LOSTFOUND_AUTH_CLIENT_ID",
	RoleClaim: "LOSTFOUND_AUTH_ROLE_CLAIM",
	AdminRole: "LOSTFOUND_AUTH_ADMIN_ROLE",
	Secret:    "LOSTFOUND_AUTH_SECRET",
}

// Config is the root configuration for the lost and found service.
type Config struct {
	Server          ServerConfig      `toml:"server"`
	Database        database.Config   `toml:"database"`
	Storage         storage.Config    `toml:"storage"`
	API             APIConfig         `toml:"api"`
	Classifier      classifier.Config `toml:"classifier"`
	Auth            auth.Config       `toml:"auth"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
}

// Env returns the LOSTFOUND_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvLostFoundEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom is Load with the config files resolved against dir.
func LoadFrom(dir string) (*Config, error) {
	cfg := &Config{}

	base := filepath.Join(dir, BaseConfigFile)
	if _, err := os.Stat(base); err == nil {
		loaded, err := load(base)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(dir); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Classifier.Merge(&overlay.Classifier)
	c.Auth.Merge(&overlay.Auth)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Classifier.Finalize(classifierEnv); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvLostFoundShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvLostFoundVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath(dir string) string {
	if env := os.Getenv(EnvLostFoundEnv); env != "" {
		path := filepath.Join(dir, fmt.Sprintf(OverlayConfigPattern, env))
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/lostfound/pkg/formatting"
	"github.com/JaimeStill/lostfound/pkg/middleware"
	"github.com/JaimeStill/lostfound/pkg/pagination"
)

const defaultMaxUploadSize = 10 * 1024 * 1024

var corsEnv = &middleware.CORSEnv{
	Enabled:          "LOSTFOUND_CORS_ENABLED",
	Origins:          "LOSTFOUND_CORS_ORIGINS",
	AllowedMethods:   "LOSTFOUND_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "LOSTFOUND_CORS_ALLOWED_HEADERS",
	AllowCredentials: "LOSTFOUND_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "LOSTFOUND_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "LOSTFOUND_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "LOSTFOUND_PAGINATION_MAX_PAGE_SIZE",
}

var rateLimitEnv = &middleware.RateLimitEnv{
	Enabled:           "LOSTFOUND_RATE_LIMIT_ENABLED",
	RequestsPerMinute: "LOSTFOUND_RATE_LIMIT_REQUESTS_PER_MINUTE",
	Burst:             "LOSTFOUND_RATE_LIMIT_BURST",
	IdleTimeout:       "LOSTFOUND_RATE_LIMIT_IDLE_TIMEOUT",
}

// APIConfig holds API routing, upload, CORS, pagination and rate limit settings.
type APIConfig struct {
	BasePath      string                     `toml:"base_path"`
	MaxUploadSize string                     `toml:"max_upload_size"`
	CORS          middleware.CORSConfig      `toml:"cors"`
	Pagination    pagination.Config          `toml:"pagination"`
	RateLimit     middleware.RateLimitConfig `toml:"rate_limit"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return defaultMaxUploadSize
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.RateLimit.Finalize(rateLimitEnv); err != nil {
		return fmt.Errorf("rate_limit: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.RateLimit.Merge(&overlay.RateLimit)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "10MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("LOSTFOUND_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("LOSTFOUND_API_MAX_UPLOAD_SIZE"); v != "" {
		c.MaxUploadSize = v
	}
}

func (c *APIConfig) validate() error {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	return nil
}

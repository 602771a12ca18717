package classifier

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Provider selects the vision model backend.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderAzure  Provider = "azure"
	ProviderNone   Provider = "none"
)

const (
	DefaultMaxPredictions      = 5
	DefaultBackfillConcurrency = 4
	DefaultTimeout             = "30s"
)

// Config holds classifier backend settings.
type Config struct {
	Provider            Provider `toml:"provider"`
	BaseURL             string   `toml:"base_url"`
	Token               string   `toml:"token"`
	Model               string   `toml:"model"`
	APIVersion          string   `toml:"api_version"`
	Timeout             string   `toml:"timeout"`
	MaxPredictions      int      `toml:"max_predictions"`
	BackfillConcurrency int      `toml:"backfill_concurrency"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider            string
	BaseURL             string
	Token               string
	Model               string
	APIVersion          string
	Timeout             string
	MaxPredictions      string
	BackfillConcurrency string
}

// TimeoutDuration parses Timeout.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Token != "" {
		c.Token = overlay.Token
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.APIVersion != "" {
		c.APIVersion = overlay.APIVersion
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxPredictions != 0 {
		c.MaxPredictions = overlay.MaxPredictions
	}
	if overlay.BackfillConcurrency != 0 {
		c.BackfillConcurrency = overlay.BackfillConcurrency
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderNone
	}
	if c.Timeout == "" {
		c.Timeout = DefaultTimeout
	}
	if c.MaxPredictions <= 0 {
		c.MaxPredictions = DefaultMaxPredictions
	}
	if c.BackfillConcurrency <= 0 {
		c.BackfillConcurrency = DefaultBackfillConcurrency
	}
}

func (c *Config) loadEnv(env *Env) {
	str := func(name string, target *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*target = v
		}
	}
	num := func(name string, target *int) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				*target = n
			}
		}
	}

	if env.Provider != "" {
		if v := os.Getenv(env.Provider); v != "" {
			c.Provider = Provider(v)
		}
	}
	str(env.BaseURL, &c.BaseURL)
	str(env.Token, &c.Token)
	str(env.Model, &c.Model)
	str(env.APIVersion, &c.APIVersion)
	str(env.Timeout, &c.Timeout)
	num(env.MaxPredictions, &c.MaxPredictions)
	num(env.BackfillConcurrency, &c.BackfillConcurrency)
}

func (c *Config) validate() error {
	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid timeout: %q", c.Timeout)
	}

	switch c.Provider {
	case ProviderNone:
		return nil
	case ProviderOpenAI:
	case ProviderAzure:
		if c.BaseURL == "" {
			return fmt.Errorf("base_url required for azure provider")
		}
	default:
		return fmt.Errorf("unknown classifier provider %q", c.Provider)
	}

	if c.Token == "" {
		return fmt.Errorf("token required for %s provider", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("model required for %s provider", c.Provider)
	}
	return nil
}

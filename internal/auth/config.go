package auth

import (
	"fmt"
	"os"
)

// Mode selects how bearer tokens are verified.
type Mode string

const (
	ModeOIDC Mode = "oidc"
	ModeHMAC Mode = "hmac"
)

// Config holds bearer-token verification settings.
type Config struct {
	Mode      Mode   `toml:"mode"`
	IssuerURL string `toml:"issuer_url"`
	ClientID  string `toml:"client_id"`
	RoleClaim string `toml:"role_claim"`
	AdminRole string `toml:"admin_role"`
	Secret    string `toml:"secret"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Mode      string
	IssuerURL string
	ClientID  string
	RoleClaim string
	AdminRole string
	Secret    string
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
	if overlay.Mode != "" {
		c.Mode = overlay.Mode
	}
	if overlay.IssuerURL != "" {
		c.IssuerURL = overlay.IssuerURL
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
	if overlay.RoleClaim != "" {
		c.RoleClaim = overlay.RoleClaim
	}
	if overlay.AdminRole != "" {
		c.AdminRole = overlay.AdminRole
	}
	if overlay.Secret != "" {
		c.Secret = overlay.Secret
	}
}

func (c *Config) loadDefaults() {
	if c.Mode == "" {
		c.Mode = ModeHMAC
	}
	if c.RoleClaim == "" {
		c.RoleClaim = "roles"
	}
	if c.AdminRole == "" {
		c.AdminRole = string(RoleAdmin)
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(name string, target *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*target = v
		}
	}

	if env.Mode != "" {
		if v := os.Getenv(env.Mode); v != "" {
			c.Mode = Mode(v)
		}
	}
	set(env.IssuerURL, &c.IssuerURL)
	set(env.ClientID, &c.ClientID)
	set(env.RoleClaim, &c.RoleClaim)
	set(env.AdminRole, &c.AdminRole)
	set(env.Secret, &c.Secret)
}

func (c *Config) validate() error {
	switch c.Mode {
	case ModeOIDC:
		if c.IssuerURL == "" {
			return fmt.Errorf("issuer_url required for oidc mode")
		}
		if c.ClientID == "" {
			return fmt.Errorf("client_id required for oidc mode")
		}
	case ModeHMAC:
		if len(c.Secret) < 32 {
			return fmt.Errorf("secret must be at least 32 bytes for hmac mode")
		}
	default:
		return fmt.Errorf("unknown auth mode %q", c.Mode)
	}
	return nil
}

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/lostfound/internal/auth"
	"github.com/JaimeStill/lostfound/internal/classifier"
	"github.com/JaimeStill/lostfound/internal/config"
	"github.com/JaimeStill/lostfound/pkg/storage"
)

const secret = "0123456789abcdef0123456789abcdef"

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "2m"
shutdown_timeout = "30s"

[database]
host = "localhost"
port = 5432
name = "lostfound"
user = "lostfound"
password = "lostfound"

[storage]
provider = "azure"
container_name = "photos"
connection_string = "UseDevelopmentStorage=true"

[api]
base_path = "/api"
max_upload_size = "8MB"

[api.pagination]
default_page_size = 25
max_page_size = 50

[api.rate_limit]
enabled = true
requests_per_minute = 60

[classifier]
provider = "openai"
token = "sk-test"
model = "gpt-4o-mini"

[auth]
mode = "hmac"
secret = "0123456789abcdef0123456789abcdef"
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"

[api.rate_limit]
enabled = true
burst = 10

[classifier]
max_predictions = 3
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)

	cfg, err := config.LoadFrom(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "lostfound" {
		t.Errorf("db name: got %s, want lostfound", cfg.Database.Name)
	}
	if cfg.Storage.Provider != storage.ProviderAzure {
		t.Errorf("storage provider: got %s, want azure", cfg.Storage.Provider)
	}
	if cfg.API.MaxUploadSizeBytes() != 8*1024*1024 {
		t.Errorf("max upload: got %d, want 8MB", cfg.API.MaxUploadSizeBytes())
	}
	if cfg.API.Pagination.DefaultPageSize != 25 {
		t.Errorf("pagination default_page_size: got %d, want 25", cfg.API.Pagination.DefaultPageSize)
	}
	if !cfg.API.RateLimit.Enabled {
		t.Error("rate limit should be enabled")
	}
	if cfg.API.RateLimit.Burst != 60 {
		t.Errorf("rate limit burst: got %d, want 60 (defaults to rpm)", cfg.API.RateLimit.Burst)
	}
	if cfg.Classifier.Provider != classifier.ProviderOpenAI {
		t.Errorf("classifier provider: got %s, want openai", cfg.Classifier.Provider)
	}
	if cfg.Classifier.MaxPredictions != classifier.DefaultMaxPredictions {
		t.Errorf("max predictions: got %d, want default", cfg.Classifier.MaxPredictions)
	}
	if cfg.Auth.Mode != auth.ModeHMAC {
		t.Errorf("auth mode: got %s, want hmac", cfg.Auth.Mode)
	}
	if cfg.Auth.RoleClaim != "roles" {
		t.Errorf("auth role claim: got %s, want roles", cfg.Auth.RoleClaim)
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)

	t.Setenv(config.EnvLostFoundEnv, "staging")

	cfg, err := config.LoadFrom(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("db host: got %s, want prodhost (from overlay)", cfg.Database.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("db port: got %d, want 5432 (from base)", cfg.Database.Port)
	}
	if cfg.API.RateLimit.Burst != 10 {
		t.Errorf("rate limit burst: got %d, want 10 (from overlay)", cfg.API.RateLimit.Burst)
	}
	if cfg.Classifier.MaxPredictions != 3 {
		t.Errorf("max predictions: got %d, want 3 (from overlay)", cfg.Classifier.MaxPredictions)
	}
	if cfg.Classifier.Model != "gpt-4o-mini" {
		t.Errorf("classifier model: got %s, want base value", cfg.Classifier.Model)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)

	t.Setenv("LOSTFOUND_VERSION", "2.0.0")
	t.Setenv("LOSTFOUND_SERVER_PORT", "3000")
	t.Setenv("LOSTFOUND_STORAGE_PROVIDER", "memory")
	t.Setenv("LOSTFOUND_CLASSIFIER_PROVIDER", "none")
	t.Setenv("LOSTFOUND_RATE_LIMIT_REQUESTS_PER_MINUTE", "30")
	t.Setenv("LOSTFOUND_API_MAX_UPLOAD_SIZE", "1MB")

	cfg, err := config.LoadFrom(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.Storage.Provider != storage.ProviderMemory {
		t.Errorf("storage provider: got %s, want memory", cfg.Storage.Provider)
	}
	if cfg.Classifier.Provider != classifier.ProviderNone {
		t.Errorf("classifier provider: got %s, want none", cfg.Classifier.Provider)
	}
	if cfg.API.RateLimit.RequestsPerMinute != 30 {
		t.Errorf("rate limit rpm: got %d, want 30", cfg.API.RateLimit.RequestsPerMinute)
	}
	if cfg.API.MaxUploadSizeBytes() != 1024*1024 {
		t.Errorf("max upload: got %d, want 1MB", cfg.API.MaxUploadSizeBytes())
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("LOSTFOUND_DB_NAME", "testdb")
	t.Setenv("LOSTFOUND_DB_USER", "testuser")
	t.Setenv("LOSTFOUND_STORAGE_CONNECTION_STRING", "conn")
	t.Setenv("LOSTFOUND_AUTH_SECRET", secret)

	cfg, err := config.LoadFrom(dir)
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port default: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "testdb" {
		t.Errorf("db name from env: got %s, want testdb", cfg.Database.Name)
	}
	if cfg.Storage.ContainerName != "photos" {
		t.Errorf("storage container default: got %s, want photos", cfg.Storage.ContainerName)
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("api base_path default: got %s, want /api", cfg.API.BasePath)
	}
	if cfg.API.MaxUploadSizeBytes() != 10*1024*1024 {
		t.Errorf("max upload default: got %d, want 10MB", cfg.API.MaxUploadSizeBytes())
	}
	if cfg.Classifier.Provider != classifier.ProviderNone {
		t.Errorf("classifier provider default: got %s, want none", cfg.Classifier.Provider)
	}
	if cfg.API.RateLimit.Enabled {
		t.Error("rate limit should default to disabled")
	}
}

func TestLoadValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "invalid toml",
			content: `shutdown_timeout = `,
			want:    "parse config",
		},
		{
			name: "short hmac secret",
			content: `
[database]
name = "lostfound"
user = "lostfound"
[storage]
provider = "memory"
[auth]
secret = "short"
`,
			want: "auth",
		},
		{
			name: "oidc without issuer",
			content: `
[database]
name = "lostfound"
user = "lostfound"
[storage]
provider = "memory"
[auth]
mode = "oidc"
client_id = "lostfound"
`,
			want: "issuer_url",
		},
		{
			name: "classifier missing token",
			content: `
[database]
name = "lostfound"
user = "lostfound"
[storage]
provider = "memory"
[classifier]
provider = "openai"
model = "gpt-4o-mini"
[auth]
secret = "0123456789abcdef0123456789abcdef"
`,
			want: "classifier",
		},
		{
			name: "bad upload size",
			content: `
[database]
name = "lostfound"
user = "lostfound"
[storage]
provider = "memory"
[api]
max_upload_size = "lots"
[auth]
secret = "0123456789abcdef0123456789abcdef"
`,
			want: "max_upload_size",
		},
		{
			name: "unknown storage provider",
			content: `
[database]
name = "lostfound"
user = "lostfound"
[storage]
provider = "s3"
[auth]
secret = "0123456789abcdef0123456789abcdef"
`,
			want: "storage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "config.toml", tt.content)

			_, err := config.LoadFrom(dir)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestEnv(t *testing.T) {
	var cfg config.Config

	t.Setenv(config.EnvLostFoundEnv, "")
	if cfg.Env() != "local" {
		t.Errorf("env: got %s, want local", cfg.Env())
	}

	t.Setenv(config.EnvLostFoundEnv, "production")
	if cfg.Env() != "production" {
		t.Errorf("env: got %s, want production", cfg.Env())
	}
}

func TestShutdownTimeoutDuration(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)

	t.Setenv(config.EnvLostFoundShutdownTimeout, "45s")

	cfg, err := config.LoadFrom(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if got := cfg.ShutdownTimeoutDuration(); got != 45*time.Second {
		t.Errorf("shutdown timeout: got %s, want 45s", got)
	}
}

package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/lostfound/internal/api"
	"github.com/JaimeStill/lostfound/internal/auth"
	"github.com/JaimeStill/lostfound/internal/classifier"
	"github.com/JaimeStill/lostfound/internal/config"
	"github.com/JaimeStill/lostfound/internal/infrastructure"
	"github.com/JaimeStill/lostfound/pkg/database"
	"github.com/JaimeStill/lostfound/pkg/middleware"
	"github.com/JaimeStill/lostfound/pkg/module"
	"github.com/JaimeStill/lostfound/pkg/pagination"
	"github.com/JaimeStill/lostfound/pkg/storage"
)

const secret = "0123456789abcdef0123456789abcdef"

func validConfig() *config.Config {
	return &config.Config{
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "lostfound",
			User:            "lostfound",
			Password:        "lostfound",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Storage: storage.Config{
			Provider: storage.ProviderMemory,
		},
		API: config.APIConfig{
			BasePath:      "/api",
			MaxUploadSize: "4MB",
			Pagination: pagination.Config{
				DefaultPageSize: 20,
				MaxPageSize:     100,
			},
			RateLimit: middleware.RateLimitConfig{
				Enabled:           false,
				RequestsPerMinute: 60,
				Burst:             60,
				IdleTimeout:       "10m",
			},
		},
		Classifier: classifier.Config{
			Provider:            classifier.ProviderNone,
			Timeout:             "30s",
			MaxPredictions:      5,
			BackfillConcurrency: 2,
		},
		Auth: auth.Config{
			Mode:   auth.ModeHMAC,
			Secret: secret,
		},
		ShutdownTimeout: "30s",
		Version:         "0.1.0",
	}
}

func setup(t *testing.T, cfg *config.Config) (*infrastructure.Infrastructure, http.Handler) {
	t.Helper()

	infra, err := infrastructure.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	t.Cleanup(func() { infra.Lifecycle.Shutdown(time.Second) })

	m, err := api.NewModule(cfg, infra)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	router := module.NewRouter()
	router.Mount(m)
	return infra, router
}

func token(t *testing.T, role auth.Role) string {
	t.Helper()
	tok, err := auth.IssueToken(secret, auth.Actor{ID: uuid.New(), Role: role}, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	return tok
}

func get(handler http.Handler, path, tok string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestNewModule(t *testing.T) {
	cfg := validConfig()
	infra, err := infrastructure.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}

	m, err := api.NewModule(cfg, infra)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	if m.Prefix() != "/api" {
		t.Errorf("prefix: got %s, want /api", m.Prefix())
	}
}

func TestNewRuntime(t *testing.T) {
	cfg := validConfig()
	infra, err := infrastructure.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}

	runtime := api.NewRuntime(cfg, infra)

	if runtime.Pagination.DefaultPageSize != 20 {
		t.Errorf("pagination default page size: got %d, want 20", runtime.Pagination.DefaultPageSize)
	}
	if runtime.MaxUploadSize != 4*1024*1024 {
		t.Errorf("max upload size: got %d, want 4MB", runtime.MaxUploadSize)
	}
	if runtime.Classifier.BackfillConcurrency != 2 {
		t.Errorf("backfill concurrency: got %d, want 2", runtime.Classifier.BackfillConcurrency)
	}
	if runtime.Logger == nil {
		t.Error("runtime logger is nil")
	}
	if runtime.Authenticator == nil {
		t.Error("runtime authenticator is nil")
	}
	if runtime.Metrics == nil {
		t.Error("runtime metrics is nil")
	}
}

func TestNewDomain(t *testing.T) {
	cfg := validConfig()
	infra, err := infrastructure.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}

	domain := api.NewDomain(api.NewRuntime(cfg, infra))

	if domain.Categories == nil || domain.Classifier == nil || domain.Claims == nil || domain.Notifications == nil {
		t.Fatal("domain system is nil")
	}
	if got := domain.LostItems.Kind(); got != "lost" {
		t.Errorf("lost items kind: got %s", got)
	}
	if got := domain.FoundItems.Kind(); got != "found" {
		t.Errorf("found items kind: got %s", got)
	}
}

func TestModuleRequiresBearerToken(t *testing.T) {
	_, handler := setup(t, validConfig())

	rec := get(handler, "/api/classifier/status", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Error("missing WWW-Authenticate header")
	}

	rec = get(handler, "/api/classifier/status", "not-a-jwt")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status with bad token: got %d, want 401", rec.Code)
	}
}

func TestModuleServesAuthenticatedRequest(t *testing.T) {
	_, handler := setup(t, validConfig())

	rec := get(handler, "/api/classifier/status", token(t, auth.RoleResident))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200; body %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), `"provider":"none"`) {
		t.Errorf("body: %s", rec.Body)
	}
}

func TestModuleRateLimitsPerActor(t *testing.T) {
	cfg := validConfig()
	cfg.API.RateLimit.Enabled = true
	cfg.API.RateLimit.Burst = 1
	_, handler := setup(t, cfg)

	first := token(t, auth.RoleResident)

	if rec := get(handler, "/api/classifier/status", first); rec.Code != http.StatusOK {
		t.Fatalf("first request: got %d, want 200", rec.Code)
	}

	rec := get(handler, "/api/classifier/status", first)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: got %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}

	if rec := get(handler, "/api/classifier/status", token(t, auth.RoleResident)); rec.Code != http.StatusOK {
		t.Errorf("other actor: got %d, want 200", rec.Code)
	}
}

func TestModuleRecordsRequestMetrics(t *testing.T) {
	infra, handler := setup(t, validConfig())

	get(handler, "/api/classifier/status", token(t, auth.RoleAdmin))

	families, err := infra.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, f := range families {
		if f.GetName() == "lostfound_http_requests_total" {
			return
		}
	}
	t.Error("lostfound_http_requests_total not recorded")
}

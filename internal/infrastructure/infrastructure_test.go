package infrastructure_test

import (
	"context"
	"testing"

	"github.com/JaimeStill/lostfound/internal/auth"
	"github.com/JaimeStill/lostfound/internal/classifier"
	"github.com/JaimeStill/lostfound/internal/config"
	"github.com/JaimeStill/lostfound/internal/infrastructure"
	"github.com/JaimeStill/lostfound/pkg/database"
	"github.com/JaimeStill/lostfound/pkg/storage"
)

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
		Classifier: classifier.Config{
			Provider: classifier.ProviderNone,
			Timeout:  "30s",
		},
		Auth: auth.Config{
			Mode:   auth.ModeHMAC,
			Secret: "0123456789abcdef0123456789abcdef",
		},
		Version: "0.1.0",
	}
}

func TestNew(t *testing.T) {
	infra, err := infrastructure.New(context.Background(), validConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if infra.Lifecycle == nil {
		t.Error("Lifecycle is nil")
	}
	if infra.Logger == nil {
		t.Error("Logger is nil")
	}
	if infra.Database == nil {
		t.Error("Database is nil")
	}
	if infra.Storage == nil {
		t.Error("Storage is nil")
	}
	if infra.Authenticator == nil {
		t.Error("Authenticator is nil")
	}
	if infra.Metrics == nil || infra.Registry == nil {
		t.Error("metrics not initialized")
	}
	if infra.Model == nil {
		t.Fatal("Model is nil")
	}
	if infra.Model.Available() {
		t.Error("disabled classifier reports available")
	}
}

func TestNewDatabaseConnection(t *testing.T) {
	infra, err := infrastructure.New(context.Background(), validConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if infra.Database.Connection() == nil {
		t.Error("Connection() returned nil")
	}
}

func TestNewRejectsUnknownAuthMode(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.Mode = "basic"

	if _, err := infrastructure.New(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unknown auth mode")
	}
}

func TestMetricsRegistryGathers(t *testing.T) {
	infra, err := infrastructure.New(context.Background(), validConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	infra.Metrics.ClaimFiled()

	families, err := infra.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	found := false
	for _, f := range families {
		if f.GetName() == "lostfound_claims_filed_total" {
			found = true
		}
	}
	if !found {
		t.Error("lostfound_claims_filed_total not registered")
	}
}

// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, classifier model,
// authentication and metrics) that domain systems require.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/JaimeStill/lostfound/internal/auth"
	"github.com/JaimeStill/lostfound/internal/classifier"
	"github.com/JaimeStill/lostfound/internal/config"
	"github.com/JaimeStill/lostfound/internal/metrics"
	"github.com/JaimeStill/lostfound/pkg/database"
	"github.com/JaimeStill/lostfound/pkg/lifecycle"
	"github.com/JaimeStill/lostfound/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, database access, photo storage, the vision model, bearer-token
// authentication and metrics.
type Infrastructure struct {
	Lifecycle     *lifecycle.Coordinator
	Logger        *slog.Logger
	Database      database.System
	Storage       storage.System
	Model         classifier.Model
	Authenticator auth.Authenticator
	Registry      *prometheus.Registry
	Metrics       *metrics.Collector
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
// OIDC discovery runs here, bounded by ctx.
func New(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	model, err := classifier.NewModel(&cfg.Classifier)
	if err != nil {
		return nil, fmt.Errorf("classifier init failed: %w", err)
	}
	if !model.Available() {
		logger.Warn("classifier disabled; items are saved without suggestions")
	}

	authn, err := auth.New(ctx, &cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("auth init failed: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Infrastructure{
		Lifecycle:     lc,
		Logger:        logger,
		Database:      db,
		Storage:       store,
		Model:         model,
		Authenticator: authn,
		Registry:      reg,
		Metrics:       metrics.NewCollector(reg),
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// Database and storage hooks are registered for startup and shutdown coordination.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}

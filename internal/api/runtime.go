package api

import (
	"github.com/JaimeStill/lostfound/internal/classifier"
	"github.com/JaimeStill/lostfound/internal/config"
	"github.com/JaimeStill/lostfound/internal/infrastructure"
	"github.com/JaimeStill/lostfound/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Classifier    classifier.Config
	Pagination    pagination.Config
	MaxUploadSize int64
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle:     infra.Lifecycle,
			Logger:        infra.Logger.With("module", "api"),
			Database:      infra.Database,
			Storage:       infra.Storage,
			Model:         infra.Model,
			Authenticator: infra.Authenticator,
			Registry:      infra.Registry,
			Metrics:       infra.Metrics,
		},
		Classifier:    cfg.Classifier,
		Pagination:    cfg.API.Pagination,
		MaxUploadSize: cfg.API.MaxUploadSizeBytes(),
	}
}

// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net"
	"net/http"

	"github.com/JaimeStill/lostfound/internal/auth"
	"github.com/JaimeStill/lostfound/internal/config"
	"github.com/JaimeStill/lostfound/internal/infrastructure"
	"github.com/JaimeStill/lostfound/pkg/middleware"
	"github.com/JaimeStill/lostfound/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// Every route requires a bearer token; requests are rate limited per actor.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime.MaxUploadSize)

	limiter := middleware.NewRateLimiter(&cfg.API.RateLimit)
	limiter.Start(runtime.Lifecycle)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(runtime.Metrics.Middleware())
	m.Use(auth.Middleware(runtime.Authenticator, runtime.Logger))
	m.Use(limiter.Middleware(clientKey))

	return m, nil
}

// clientKey identifies the caller for rate limiting: the authenticated
// actor, or the remote host when no actor is present.
func clientKey(r *http.Request) string {
	if actor, ok := auth.FromContext(r.Context()); ok {
		return "actor:" + actor.ID.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "addr:" + r.RemoteAddr
	}
	return "addr:" + host
}

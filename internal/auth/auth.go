// Package auth resolves bearer tokens into the Actor making a request.
// Identity management lives with an external provider; this package only
// verifies tokens and extracts a subject and role.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JaimeStill/lostfound/pkg/handlers"
)

// ErrUnauthenticated indicates a missing, malformed or rejected bearer token.
var ErrUnauthenticated = errors.New("authentication required")

// Authenticator verifies a raw bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Actor, error)
}

// New builds the Authenticator selected by cfg.Mode. OIDC discovery runs
// against the issuer during construction.
func New(ctx context.Context, cfg *Config) (Authenticator, error) {
	switch cfg.Mode {
	case ModeOIDC:
		return NewOIDC(ctx, cfg)
	case ModeHMAC:
		return NewHMAC(cfg.Secret), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}

// Middleware authenticates every request and stores the Actor on its context.
func Middleware(authn Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearer(r.Header.Get("Authorization"))
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="lostfound"`)
				handlers.RespondError(w, logger, http.StatusUnauthorized, ErrUnauthenticated)
				return
			}

			actor, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="lostfound", error="invalid_token"`)
				handlers.RespondError(w, logger, http.StatusUnauthorized, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Current returns the request's actor, writing a 401 when none is present.
func Current(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (Actor, bool) {
	actor, ok := FromContext(r.Context())
	if !ok {
		handlers.RespondError(w, logger, http.StatusUnauthorized, ErrUnauthenticated)
	}
	return actor, ok
}

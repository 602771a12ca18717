package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
)

type oidcAuth struct {
	verifier  *oidc.IDTokenVerifier
	issuer    string
	roleClaim string
	adminRole string
}

// NewOIDC discovers the issuer's signing keys and returns an Authenticator
// for its ID tokens. Subjects that are not UUIDs are mapped to a stable
// name-based UUID.
func NewOIDC(ctx context.Context, cfg *Config) (Authenticator, error) {
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("discover oidc issuer: %w", err)
	}

	return &oidcAuth{
		verifier:  provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		issuer:    cfg.IssuerURL,
		roleClaim: cfg.RoleClaim,
		adminRole: cfg.AdminRole,
	}, nil
}

func (o *oidcAuth) Authenticate(ctx context.Context, raw string) (Actor, error) {
	token, err := o.verifier.Verify(ctx, raw)
	if err != nil {
		return Actor{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	var claims map[string]any
	if err := token.Claims(&claims); err != nil {
		return Actor{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	role := RoleResident
	if HasRole(claims[o.roleClaim], o.adminRole) {
		role = RoleAdmin
	}

	return Actor{ID: SubjectID(o.issuer, token.Subject), Role: role}, nil
}

// SubjectID returns sub as a UUID, or a SHA-1 name UUID derived from the
// issuer and subject when sub is not one.
func SubjectID(issuer, sub string) uuid.UUID {
	if id, err := uuid.Parse(sub); err == nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(issuer+"#"+sub))
}

// HasRole reports whether a role claim, either a string or a list of
// strings, contains want.
func HasRole(claim any, want string) bool {
	switch v := claim.(type) {
	case string:
		return v == want
	case []any:
		for _, r := range v {
			if s, ok := r.(string); ok && s == want {
				return true
			}
		}
	case []string:
		for _, s := range v {
			if s == want {
				return true
			}
		}
	}
	return false
}

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the HS256 token body: the subject is the actor id.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

type hmacAuth struct {
	secret []byte
}

// NewHMAC returns an Authenticator for HS256 tokens signed with secret.
func NewHMAC(secret string) Authenticator {
	return &hmacAuth{secret: []byte(secret)}
}

func (h *hmacAuth) Authenticate(_ context.Context, raw string) (Actor, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(
		raw, &claims,
		func(*jwt.Token) (any, error) { return h.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Actor{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Actor{}, fmt.Errorf("%w: subject is not a uuid", ErrUnauthenticated)
	}

	role := claims.Role
	if role != RoleAdmin {
		role = RoleResident
	}

	return Actor{ID: id, Role: role}, nil
}

// IssueToken signs an HS256 token for actor that expires after ttl.
func IssueToken(secret string, actor Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

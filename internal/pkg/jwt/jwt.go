package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidSigningMethod = errors.New("jwt: unexpected signing method")
	ErrSigningKeyTooShort   = errors.New("jwt: HS512 key must be at least 64 bytes")
	ErrTokenExpired         = errors.New("jwt: token expired")
	ErrInvalidToken         = errors.New("jwt: invalid token")
)

// JWT issues and verifies service tokens.
type JWT interface {
	Generate(service string) (string, error)
	Verify(token string) (Claims, error)
}

type clocker interface{ Now() time.Time }

type generator interface{ Generate() string }

// Config holds what NewHS512 needs. Issuer and Audiences are checked on
// Verify only when set.
type Config struct {
	Secret    []byte
	Issuer    string
	Audiences []string
	TTL       time.Duration
	Clock     clocker
	UUID      generator
}

// Claims are the registered claims of a service token.
type Claims struct {
	jwt.RegisteredClaims
}

// Caller is the token subject: the name of the calling service.
func (c Claims) Caller() string { return c.Subject }

type claimsKey struct{}

// SetAuth stores verified claims on ctx.
func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, clm)
}

// GetAuth returns the claims stored by SetAuth, or nil.
func GetAuth(ctx context.Context) *Claims {
	if clm, ok := ctx.Value(claimsKey{}).(Claims); ok {
		return &clm
	}
	return nil
}

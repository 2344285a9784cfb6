package jwt

import (
	"errors"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
)

const minHS512KeyLen = 64

// Symmetric signs and verifies HS512 service tokens with a shared secret.
type Symmetric struct {
	key    []byte
	issuer string
	aud    []string
	ttl    time.Duration
	clock  clocker
	ids    generator
	parser *libJWT.Parser
}

// NewHS512 rejects keys shorter than 512 bits.
func NewHS512(cfg Config) (*Symmetric, error) {
	switch {
	case len(cfg.Secret) < minHS512KeyLen:
		return nil, ErrSigningKeyTooShort
	case cfg.Clock == nil, cfg.UUID == nil:
		return nil, errors.New("jwt: clock and uuid are required")
	}

	opts := []libJWT.ParserOption{
		libJWT.WithValidMethods([]string{libJWT.SigningMethodHS512.Alg()}),
		libJWT.WithIssuedAt(),
		libJWT.WithExpirationRequired(),
		libJWT.WithTimeFunc(cfg.Clock.Now),
	}
	if cfg.Issuer != "" {
		opts = append(opts, libJWT.WithIssuer(cfg.Issuer))
	}
	if len(cfg.Audiences) > 0 {
		opts = append(opts, libJWT.WithAudience(cfg.Audiences...))
	}

	return &Symmetric{
		key:    cfg.Secret,
		issuer: cfg.Issuer,
		aud:    cfg.Audiences,
		ttl:    cfg.TTL,
		clock:  cfg.Clock,
		ids:    cfg.UUID,
		parser: libJWT.NewParser(opts...),
	}, nil
}

// Generate issues a token whose subject is the calling service.
func (s *Symmetric) Generate(service string) (string, error) {
	now := s.clock.Now()
	claims := Claims{RegisteredClaims: libJWT.RegisteredClaims{
		ID:        s.ids.Generate(),
		Subject:   service,
		Issuer:    s.issuer,
		Audience:  s.aud,
		IssuedAt:  libJWT.NewNumericDate(now),
		NotBefore: libJWT.NewNumericDate(now),
		ExpiresAt: libJWT.NewNumericDate(now.Add(s.ttl)),
	}}

	return libJWT.NewWithClaims(libJWT.SigningMethodHS512, claims).SignedString(s.key)
}

func (s *Symmetric) keyFunc(t *libJWT.Token) (any, error) {
	if _, ok := t.Method.(*libJWT.SigningMethodHMAC); !ok {
		return nil, ErrInvalidSigningMethod
	}
	return s.key, nil
}

// Verify returns the claims of a valid token. Expiry is reported as
// ErrTokenExpired so callers can tell it apart from tampering.
func (s *Symmetric) Verify(token string) (Claims, error) {
	var claims Claims

	parsed, err := s.parser.ParseWithClaims(token, &claims, s.keyFunc)
	switch {
	case errors.Is(err, libJWT.ErrTokenExpired):
		return Claims{}, ErrTokenExpired
	case err != nil:
		return Claims{}, err
	case !parsed.Valid, claims.Subject == "":
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}

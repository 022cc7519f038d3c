package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrIdentityUnavailable is returned when no anonymous principal can be obtained.
	ErrIdentityUnavailable = errors.New("anonymous identity unavailable")

	// ErrInvalidToken is returned for tokens that fail verification.
	ErrInvalidToken = errors.New("invalid token")
)

// Principal is an authenticated caller, known or anonymous.
type Principal struct {
	ID        string `json:"id"`
	Anonymous bool   `json:"anonymous"`
	Token     string `json:"token,omitempty"`
}

// Claims are the JWT claims carried by vitrine tokens. The subject is the principal id.
type Claims struct {
	Anonymous bool `json:"anon,omitempty"`
	jwt.RegisteredClaims
}

// TokenConfig configures the token service.
type TokenConfig struct {
	Secret         string
	Issuer         string
	TTL            time.Duration
	AllowAnonymous bool
}

// TokenService issues and verifies HS256 tokens.
type TokenService struct {
	secret         []byte
	issuer         string
	ttl            time.Duration
	allowAnonymous bool
	now            func() time.Time
}

// NewTokenService validates cfg and creates the service.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("token secret is required but was empty")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("token ttl must be positive")
	}

	return &TokenService{
		secret:         []byte(cfg.Secret),
		issuer:         cfg.Issuer,
		ttl:            cfg.TTL,
		allowAnonymous: cfg.AllowAnonymous,
		now:            time.Now,
	}, nil
}

// Issue signs a token for a known user.
func (s *TokenService) Issue(userID string) (Principal, error) {
	if userID == "" {
		return Principal{}, fmt.Errorf("user id is required")
	}
	return s.sign(userID, false)
}

// SignInAnonymously mints a fresh anonymous principal.
// Fails with ErrIdentityUnavailable when anonymous sign-in is disabled.
func (s *TokenService) SignInAnonymously(ctx context.Context) (Principal, error) {
	if err := ctx.Err(); err != nil {
		return Principal{}, err
	}
	if !s.allowAnonymous {
		return Principal{}, fmt.Errorf("%w: anonymous sign-in is disabled", ErrIdentityUnavailable)
	}
	return s.sign(uuid.NewString(), true)
}

func (s *TokenService) sign(subject string, anonymous bool) (Principal, error) {
	now := s.now()
	claims := &Claims{
		Anonymous: anonymous,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return Principal{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return Principal{ID: subject, Anonymous: anonymous, Token: signed}, nil
}

// Verify parses and validates a token.
func (s *TokenService) Verify(tokenString string) (Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return Principal{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return Principal{ID: claims.Subject, Anonymous: claims.Anonymous, Token: tokenString}, nil
}

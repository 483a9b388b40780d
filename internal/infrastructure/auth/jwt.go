// Package auth verifies bearer tokens issued by the identity service.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/condo/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingSubject   = errors.New("missing subject in claims")
)

// Claims are the fields the billing engine reads from an identity token
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
}

// Actor is the name stamped on ledger and audit records: the username when
// the token carries one, the subject otherwise.
func (c *Claims) Actor() string {
	if name := strings.TrimSpace(c.Username); name != "" {
		return name
	}
	return c.Subject
}

// TokenVerifier validates HS256 tokens shared with the identity service
type TokenVerifier struct {
	secret []byte
	issuer string
	leeway time.Duration
}

// NewTokenVerifier creates a verifier from the auth configuration
func NewTokenVerifier(cfg config.AuthConfig) (*TokenVerifier, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth secret is required")
	}
	return &TokenVerifier{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		leeway: cfg.Leeway,
	}, nil
}

// Verify parses tokenString and returns its claims. The issuer is checked
// only when one is configured.
func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	return claims, nil
}

// Sign issues a token the verifier accepts. Production tokens come from the
// identity service.
func (v *TokenVerifier) Sign(subject, username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: username,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

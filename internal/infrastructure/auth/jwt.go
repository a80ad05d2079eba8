// Package auth verifies bearer tokens issued by the external identity provider.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/infrastructure/config"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingTenantID  = errors.New("missing tenant id in claims")
	ErrInvalidTenantID  = errors.New("tenant id in claims is not a uuid")
	ErrMissingSecret    = errors.New("jwt secret is not configured")
)

// Principal is the authenticated caller. TenantID is the single key all data
// access is scoped by.
type Principal struct {
	TenantID uuid.UUID
	Subject  string
	Email    string
}

// TokenVerifier validates HS256 bearer tokens
type TokenVerifier struct {
	secret      []byte
	issuer      string
	audience    string
	tenantClaim string
	leeway      time.Duration
	now         func() time.Time
}

// NewTokenVerifier creates a verifier from configuration
func NewTokenVerifier(cfg config.JWTConfig) (*TokenVerifier, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	claim := cfg.TenantClaim
	if claim == "" {
		claim = "tenant_id"
	}
	return &TokenVerifier{
		secret:      []byte(cfg.Secret),
		issuer:      cfg.Issuer,
		audience:    cfg.Audience,
		tenantClaim: claim,
		leeway:      cfg.Leeway,
		now:         time.Now,
	}, nil
}

// Verify parses tokenString and returns the principal it carries
func (v *TokenVerifier) Verify(tokenString string) (*Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}

	raw, _ := claims[v.tenantClaim].(string)
	if raw == "" {
		return nil, ErrMissingTenantID
	}
	tenantID, err := uuid.Parse(raw)
	if err != nil || tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}

	sub, _ := claims.GetSubject()
	email, _ := claims["email"].(string)
	return &Principal{TenantID: tenantID, Subject: sub, Email: email}, nil
}

// SignToken issues a token the verifier accepts. It exists for local
// development and tests; production tokens come from the identity provider.
func SignToken(cfg config.JWTConfig, p Principal, ttl time.Duration) (string, error) {
	claim := cfg.TenantClaim
	if claim == "" {
		claim = "tenant_id"
	}
	now := time.Now()
	claims := jwt.MapClaims{
		claim: p.TenantID.String(),
		"sub": p.Subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if p.Email != "" {
		claims["email"] = p.Email
	}
	if cfg.Issuer != "" {
		claims["iss"] = cfg.Issuer
	}
	if cfg.Audience != "" {
		claims["aud"] = cfg.Audience
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
}

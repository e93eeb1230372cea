// Package auth provides JWT issuance, verification and the request
// authentication filter for the event-SaaS API.
//
// TOKEN MODEL:
// Tokens are stateless HS256 JWTs. All the information the server needs on a
// later request (principal id, role, tenant) is inside the signed token, so
// verification is a pure signature check with no database lookup. There is no
// server-side revocation store; expiry is the only kill mechanism, which is
// an accepted scope limitation of this system.
//
// Two token kinds share one codec and one secret, distinguished by a
// "tokenType" claim: short-lived access tokens authorize individual requests,
// longer-lived refresh tokens are exchanged for a fresh pair.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/event-saas/internal/model"
)

// Token type discriminator values carried in the "tokenType" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the JWT payload. It embeds jwt.RegisteredClaims (sub, iat, exp)
// and adds the event-SaaS specific fields.
//
// TenantID is omitted for administrators: an Administrator is system-level,
// and an absent claim can never be mistaken for a real tenant id.
type Claims struct {
	jwt.RegisteredClaims
	Role      model.Role `json:"role,omitempty"`
	TenantID  string     `json:"tenantId,omitempty"`
	TokenType string     `json:"tokenType,omitempty"`
}

// TokenCodec signs and verifies compact JWT strings with a shared HMAC secret.
//
// It holds no mutable state beyond configuration set at construction, so a
// single instance is safe for concurrent use by any number of requests.
type TokenCodec struct {
	secret          []byte
	accessValidity  time.Duration
	refreshValidity time.Duration
}

// NewTokenCodec creates a TokenCodec.
// The secret should be at least 32 bytes of random data in production
// (e.g. JWT_SECRET=$(openssl rand -hex 32)); anything under 16 characters is
// rejected outright.
func NewTokenCodec(secret string, accessValidity, refreshValidity time.Duration) (*TokenCodec, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if accessValidity <= 0 || refreshValidity <= 0 {
		return nil, errors.New("auth: token validity durations must be positive")
	}
	return &TokenCodec{
		secret:          []byte(secret),
		accessValidity:  accessValidity,
		refreshValidity: refreshValidity,
	}, nil
}

// Create signs claims with iat=now and exp=now+validity and returns the
// compact encoded token. Claim semantics are the caller's responsibility;
// Create fails only on encoding errors, which are unexpected and treated as
// internal by the layers above.
func (c *TokenCodec) Create(claims Claims, validity time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(validity))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Parse decodes tokenStr, verifies the signature, and returns the claims.
// It fails with apperror-compatible semantics: any structural, signature or
// expiry problem means the token cannot be trusted.
//
// Passing jwt.WithValidMethods pins the algorithm to HS256. Without it an
// attacker could attempt an algorithm-confusion downgrade.
func (c *TokenCodec) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: token expired: %w", err)
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("auth: invalid token claims")
	}
	return claims, nil
}

// IsValid reports whether tokenStr parses, verifies and has an expiry
// strictly in the future. It never returns an error: any failure, including
// garbage input, yields false.
func (c *TokenCodec) IsValid(tokenStr string) bool {
	claims, err := c.Parse(tokenStr)
	if err != nil {
		return false
	}
	return claims.ExpiresAt != nil && claims.ExpiresAt.After(time.Now())
}

// AccessValidity returns the configured access-token lifetime.
func (c *TokenCodec) AccessValidity() time.Duration {
	return c.accessValidity
}

// RefreshValidity returns the configured refresh-token lifetime.
func (c *TokenCodec) RefreshValidity() time.Duration {
	return c.refreshValidity
}

// ExpiresInSeconds returns the access-token lifetime in whole seconds, the
// form clients consume as the login payload's expiresIn field.
func (c *TokenCodec) ExpiresInSeconds() int {
	return int(c.accessValidity / time.Second)
}

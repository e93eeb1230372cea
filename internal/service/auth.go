// Package service contains the application services: authentication per
// principal kind, the administrator credential lookup, and tenant
// administration.
//
// AuthService is generic over the principal kind. Organizer and customer
// authentication are byte-for-byte the same protocol (look up by email,
// verify the digest, issue a token pair), differing only in repository,
// role and error vocabulary, so one instantiation per kind replaces the
// duplicated per-kind services the API surface suggests.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rs/xid"

	"github.com/sakif/event-saas/internal/apperror"
	"github.com/sakif/event-saas/internal/auth"
	"github.com/sakif/event-saas/internal/model"
)

// PrincipalRepository is the slice of persistence the auth protocol needs:
// lookup by email at login, lookup by id at refresh/resolution.
type PrincipalRepository[P model.Principal] interface {
	FindByEmail(ctx context.Context, email model.EmailAddress) (P, error)
	FindByID(ctx context.Context, id string) (P, error)
}

// LoginResult is the payload bundle returned by Login and Refresh, shaped for
// direct conversion into the GraphQL login payloads.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	TenantID     string
	Email        string
	Role         model.Role
}

// AuthService orchestrates login, token refresh, and current-principal
// resolution for one principal kind.
type AuthService[P model.Principal] struct {
	kind      string // lower-case principal kind for logs and error codes
	repo      PrincipalRepository[P]
	passwords *auth.PasswordService
	issuer    *auth.TokenIssuer
	codec     *auth.TokenCodec
	logger    *slog.Logger
}

// NewAuthService creates an AuthService for one principal kind.
// kind is the lower-case name used in logs and NOT_FOUND error codes
// ("organizer", "customer").
func NewAuthService[P model.Principal](
	kind string,
	repo PrincipalRepository[P],
	passwords *auth.PasswordService,
	issuer *auth.TokenIssuer,
	codec *auth.TokenCodec,
	logger *slog.Logger,
) *AuthService[P] {
	return &AuthService[P]{
		kind:      kind,
		repo:      repo,
		passwords: passwords,
		issuer:    issuer,
		codec:     codec,
		logger:    logger,
	}
}

// Login verifies the credentials and issues a fresh access/refresh pair.
//
// Unknown email, malformed email and wrong password all fail with the SAME
// apperror.InvalidCredentials value. Which case occurred is logged at debug
// level only; the response must not let a caller enumerate registered
// addresses.
func (s *AuthService[P]) Login(ctx context.Context, rawEmail, password string) (*LoginResult, error) {
	email, err := model.NewEmailAddress(rawEmail)
	if err != nil {
		s.logger.Debug("login rejected: malformed email", slog.String("kind", s.kind))
		return nil, apperror.InvalidCredentials()
	}

	principal, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.logger.Debug("login rejected: email not registered",
				slog.String("kind", s.kind),
				slog.String("email", email.String()),
			)
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: looking up %s by email: %w", s.kind, err)
	}

	if err := s.passwords.Verify(principal.PrincipalPasswordDigest(), password); err != nil {
		s.logger.Debug("login rejected: password mismatch",
			slog.String("kind", s.kind),
			slog.String("email", email.String()),
		)
		return nil, apperror.InvalidCredentials()
	}

	s.logger.Info("login succeeded",
		slog.String("kind", s.kind),
		slog.String("principalID", principal.PrincipalID()),
		slog.String("tenantID", principal.PrincipalTenantID()),
	)

	return s.issueFor(principal)
}

// Refresh validates a refresh token and issues a new access/refresh pair
// (rotation; the presented token is not invalidated server-side since there
// is no token store).
//
// An access token presented here is rejected: the tokenType claim must equal
// "refresh" exactly.
func (s *AuthService[P]) Refresh(ctx context.Context, token string) (*LoginResult, error) {
	if !s.codec.IsValid(token) {
		return nil, apperror.InvalidToken("refresh token is invalid or expired")
	}

	claims, err := s.codec.Parse(token)
	if err != nil {
		// IsValid just passed, so this is a codec-level inconsistency rather
		// than attacker input.
		return nil, fmt.Errorf("service/auth: parsing refresh token: %w", err)
	}

	if claims.TokenType != auth.TokenTypeRefresh {
		return nil, apperror.InvalidToken("token is not a refresh token")
	}

	id := claims.Subject
	if _, err := xid.FromString(id); err != nil {
		return nil, apperror.InvalidToken("malformed subject claim")
	}

	principal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.PrincipalNotFound(s.kind, id)
		}
		return nil, fmt.Errorf("service/auth: looking up %s %s: %w", s.kind, id, err)
	}

	s.logger.Info("token refreshed",
		slog.String("kind", s.kind),
		slog.String("principalID", principal.PrincipalID()),
	)

	return s.issueFor(principal)
}

// ResolveCurrent returns the principal behind the request-scoped identity
// populated by the authentication filter.
//
// A malformed principal id in a supposedly valid token can only arise from a
// forged or corrupted token, so it is an authentication failure, not an
// internal error.
func (s *AuthService[P]) ResolveCurrent(ctx context.Context) (P, error) {
	var zero P

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return zero, apperror.Unauthenticated("no authentication present")
	}

	if _, err := xid.FromString(identity.PrincipalID); err != nil {
		return zero, apperror.Unauthenticated("malformed principal id in token subject")
	}

	principal, err := s.repo.FindByID(ctx, identity.PrincipalID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return zero, apperror.PrincipalNotFound(s.kind, identity.PrincipalID)
		}
		return zero, fmt.Errorf("service/auth: looking up %s %s: %w", s.kind, identity.PrincipalID, err)
	}
	return principal, nil
}

// issueFor builds the client-facing payload bundle for a verified principal.
func (s *AuthService[P]) issueFor(principal P) (*LoginResult, error) {
	accessToken, err := s.issuer.IssueAccessToken(principal)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing access token for %s %s: %w", s.kind, principal.PrincipalID(), err)
	}
	refreshToken, err := s.issuer.IssueRefreshToken(principal)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing refresh token for %s %s: %w", s.kind, principal.PrincipalID(), err)
	}

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.issuer.ExpiresInSeconds(),
		TenantID:     principal.PrincipalTenantID(),
		Email:        principal.PrincipalEmail().String(),
		Role:         principal.PrincipalRole(),
	}, nil
}

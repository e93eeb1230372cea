package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/event-saas/internal/apperror"
	"github.com/sakif/event-saas/internal/model"
	"github.com/sakif/event-saas/internal/repository"
)

// Credentials is the authenticable view of an administrator handed to the
// session login flow: just enough to verify a password and build a session.
type Credentials struct {
	PrincipalID    string
	Email          string
	PasswordDigest string
	Role           model.Role
}

// AdministratorAuthService backs the session-based admin login. Unlike the
// JWT services it issues nothing itself; it is consumed as an
// identity-lookup callback by the admin session handler.
type AdministratorAuthService struct {
	admins repository.AdministratorRepository
	logger *slog.Logger
}

func NewAdministratorAuthService(admins repository.AdministratorRepository, logger *slog.Logger) *AdministratorAuthService {
	return &AdministratorAuthService{admins: admins, logger: logger}
}

// LoadPrincipalByEmail returns the credentials for the administrator with the
// given email. A malformed address and an unknown address both fail with the
// same not-found class; the distinction is internal.
func (s *AdministratorAuthService) LoadPrincipalByEmail(ctx context.Context, rawEmail string) (*Credentials, error) {
	email, err := model.NewEmailAddress(rawEmail)
	if err != nil {
		s.logger.Debug("admin lookup rejected: malformed email")
		return nil, apperror.PrincipalNotFound("administrator", rawEmail)
	}

	admin, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.logger.Debug("admin lookup rejected: email not registered",
				slog.String("email", email.String()),
			)
			return nil, apperror.PrincipalNotFound("administrator", rawEmail)
		}
		return nil, fmt.Errorf("service/admin: looking up administrator by email: %w", err)
	}

	return &Credentials{
		PrincipalID:    admin.ID,
		Email:          admin.Email.String(),
		PasswordDigest: admin.PasswordDigest,
		Role:           admin.Role,
	}, nil
}

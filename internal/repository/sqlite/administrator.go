package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/event-saas/internal/apperror"
	"github.com/sakif/event-saas/internal/model"
	"github.com/sakif/event-saas/internal/repository"
)

// administratorRepo implements repository.AdministratorRepository.
type administratorRepo struct {
	db *DB
}

var _ repository.AdministratorRepository = (*administratorRepo)(nil)

// Administrators returns the administrator repository view of the database.
func (db *DB) Administrators() repository.AdministratorRepository {
	return &administratorRepo{db: db}
}

func (r *administratorRepo) Create(ctx context.Context, admin *model.Administrator) error {
	now := time.Now()
	admin.ID = xid.New().String()
	if admin.Role == "" {
		admin.Role = model.RoleSysAdmin
	}
	admin.CreatedAt = now
	admin.UpdatedAt = now

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO administrators (id, email, password_digest, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		admin.ID,
		admin.Email.String(),
		admin.PasswordDigest,
		string(admin.Role),
		admin.CreatedAt,
		admin.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("administrator", admin.Email.String())
		}
		return fmt.Errorf("sqlite: inserting administrator %s: %w", admin.Email, err)
	}
	return nil
}

func (r *administratorRepo) FindByEmail(ctx context.Context, email model.EmailAddress) (*model.Administrator, error) {
	var (
		a        model.Administrator
		rawEmail string
		rawRole  string
	)
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT id, email, password_digest, role, created_at, updated_at
		 FROM administrators WHERE email = ?`,
		email.String(),
	).Scan(
		&a.ID,
		&rawEmail,
		&a.PasswordDigest,
		&rawRole,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("administrator", email.String())
		}
		return nil, fmt.Errorf("sqlite: getting administrator by email %s: %w", email, err)
	}

	parsed, err := model.NewEmailAddress(rawEmail)
	if err != nil {
		return nil, fmt.Errorf("stored email %q is invalid: %w", rawEmail, err)
	}
	a.Email = parsed
	a.Role = model.Role(rawRole)
	return &a, nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// modernc.org/sqlite does not export a typed error for this, so the SQLite
// error text is the stable thing to match on.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

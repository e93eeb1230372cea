package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/event-saas/internal/apperror"
	"github.com/sakif/event-saas/internal/model"
	"github.com/sakif/event-saas/internal/repository"
)

// organizerRepo implements repository.OrganizerRepository. Each principal
// kind gets its own view type over the shared pool so the identically named
// Create/FindByEmail/FindByID methods cannot collide.
type organizerRepo struct {
	db *DB
}

var _ repository.OrganizerRepository = (*organizerRepo)(nil)

// Organizers returns the organizer repository view of the database.
func (db *DB) Organizers() repository.OrganizerRepository {
	return &organizerRepo{db: db}
}

// Create inserts a new organizer, assigning its id and timestamps.
// A duplicate email fails with apperror.ErrConflict.
func (r *organizerRepo) Create(ctx context.Context, organizer *model.Organizer) error {
	now := time.Now()
	organizer.ID = xid.New().String()
	if organizer.Role == "" {
		organizer.Role = model.RoleOwner
	}
	organizer.CreatedAt = now
	organizer.UpdatedAt = now

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO organizers (id, tenant_id, email, password_digest, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		organizer.ID,
		organizer.TenantID,
		organizer.Email.String(),
		organizer.PasswordDigest,
		string(organizer.Role),
		organizer.CreatedAt,
		organizer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("organizer", organizer.Email.String())
		}
		return fmt.Errorf("sqlite: inserting organizer %s: %w", organizer.Email, err)
	}
	return nil
}

// FindByEmail returns the organizer with the given email, or
// apperror.ErrNotFound if none exists.
func (r *organizerRepo) FindByEmail(ctx context.Context, email model.EmailAddress) (*model.Organizer, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT id, tenant_id, email, password_digest, role, created_at, updated_at
		 FROM organizers WHERE email = ?`,
		email.String(),
	)
	organizer, err := scanOrganizer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("organizer", email.String())
		}
		return nil, fmt.Errorf("sqlite: getting organizer by email %s: %w", email, err)
	}
	return organizer, nil
}

// FindByID returns the organizer with the given id, or apperror.ErrNotFound.
func (r *organizerRepo) FindByID(ctx context.Context, id string) (*model.Organizer, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT id, tenant_id, email, password_digest, role, created_at, updated_at
		 FROM organizers WHERE id = ?`,
		id,
	)
	organizer, err := scanOrganizer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("organizer", id)
		}
		return nil, fmt.Errorf("sqlite: getting organizer %s: %w", id, err)
	}
	return organizer, nil
}

func scanOrganizer(row *sql.Row) (*model.Organizer, error) {
	var (
		o        model.Organizer
		rawEmail string
		rawRole  string
	)
	err := row.Scan(
		&o.ID,
		&o.TenantID,
		&rawEmail,
		&o.PasswordDigest,
		&rawRole,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// The email column was validated on the way in; re-parsing on the way out
	// keeps the "only valid EmailAddress values exist" invariant honest even
	// against rows written by hand.
	email, err := model.NewEmailAddress(rawEmail)
	if err != nil {
		return nil, fmt.Errorf("stored email %q is invalid: %w", rawEmail, err)
	}
	o.Email = email
	o.Role = model.Role(rawRole)
	return &o, nil
}

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

// customerRepo implements repository.CustomerRepository.
type customerRepo struct {
	db *DB
}

var _ repository.CustomerRepository = (*customerRepo)(nil)

// Customers returns the customer repository view of the database.
func (db *DB) Customers() repository.CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) Create(ctx context.Context, customer *model.Customer) error {
	now := time.Now()
	customer.ID = xid.New().String()
	if customer.Role == "" {
		customer.Role = model.RoleParticipant
	}
	customer.CreatedAt = now
	customer.UpdatedAt = now

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO customers (id, tenant_id, email, password_digest, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		customer.ID,
		customer.TenantID,
		customer.Email.String(),
		customer.PasswordDigest,
		string(customer.Role),
		customer.CreatedAt,
		customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("customer", customer.Email.String())
		}
		return fmt.Errorf("sqlite: inserting customer %s: %w", customer.Email, err)
	}
	return nil
}

func (r *customerRepo) FindByEmail(ctx context.Context, email model.EmailAddress) (*model.Customer, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT id, tenant_id, email, password_digest, role, created_at, updated_at
		 FROM customers WHERE email = ?`,
		email.String(),
	)
	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("customer", email.String())
		}
		return nil, fmt.Errorf("sqlite: getting customer by email %s: %w", email, err)
	}
	return customer, nil
}

func (r *customerRepo) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT id, tenant_id, email, password_digest, role, created_at, updated_at
		 FROM customers WHERE id = ?`,
		id,
	)
	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("customer", id)
		}
		return nil, fmt.Errorf("sqlite: getting customer %s: %w", id, err)
	}
	return customer, nil
}

func scanCustomer(row *sql.Row) (*model.Customer, error) {
	var (
		c        model.Customer
		rawEmail string
		rawRole  string
	)
	err := row.Scan(
		&c.ID,
		&c.TenantID,
		&rawEmail,
		&c.PasswordDigest,
		&rawRole,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	email, err := model.NewEmailAddress(rawEmail)
	if err != nil {
		return nil, fmt.Errorf("stored email %q is invalid: %w", rawEmail, err)
	}
	c.Email = email
	c.Role = model.Role(rawRole)
	return &c, nil
}

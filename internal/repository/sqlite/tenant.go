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

// tenantRepo implements repository.TenantRepository.
type tenantRepo struct {
	db *DB
}

var _ repository.TenantRepository = (*tenantRepo)(nil)

// Tenants returns the tenant repository view of the database.
func (db *DB) Tenants() repository.TenantRepository {
	return &tenantRepo{db: db}
}

func (r *tenantRepo) Create(ctx context.Context, tenant *model.Tenant) error {
	now := time.Now()
	tenant.ID = xid.New().String()
	tenant.CreatedAt = now
	tenant.UpdatedAt = now

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO tenants (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		tenant.ID,
		tenant.Name,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("tenant", tenant.Name)
		}
		return fmt.Errorf("sqlite: inserting tenant %s: %w", tenant.Name, err)
	}
	return nil
}

func (r *tenantRepo) GetByID(ctx context.Context, id string) (*model.Tenant, error) {
	var t model.Tenant
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM tenants WHERE id = ?`,
		id,
	).Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("tenant", id)
		}
		return nil, fmt.Errorf("sqlite: getting tenant %s: %w", id, err)
	}
	return &t, nil
}

func (r *tenantRepo) GetByName(ctx context.Context, name string) (*model.Tenant, error) {
	var t model.Tenant
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM tenants WHERE name = ?`,
		name,
	).Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("tenant", name)
		}
		return nil, fmt.Errorf("sqlite: getting tenant by name %s: %w", name, err)
	}
	return &t, nil
}

func (r *tenantRepo) List(ctx context.Context, opts repository.ListOptions) ([]model.Tenant, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM tenants
		 ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tenants: %w", err)
	}
	defer rows.Close()

	tenants := make([]model.Tenant, 0)
	for rows.Next() {
		var t model.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tenants: %w", err)
	}
	return tenants, nil
}

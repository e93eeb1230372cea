package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/event-saas/internal/model"
	"github.com/sakif/event-saas/internal/repository"
)

// TenantService handles tenant administration invoked from the admin REST
// surface. Tenant CRUD sits outside the auth core but shares its error
// taxonomy and layering.
type TenantService struct {
	tenants repository.TenantRepository
	logger  *slog.Logger
}

func NewTenantService(tenants repository.TenantRepository, logger *slog.Logger) *TenantService {
	return &TenantService{tenants: tenants, logger: logger}
}

// Create validates the name and persists a new tenant.
// A duplicate name propagates as apperror.ErrConflict from the repository.
func (s *TenantService) Create(ctx context.Context, name string) (*model.Tenant, error) {
	if err := model.ValidateTenantName(name); err != nil {
		return nil, err
	}

	tenant := &model.Tenant{Name: name}
	if err := s.tenants.Create(ctx, tenant); err != nil {
		return nil, fmt.Errorf("service/tenant: creating tenant %q: %w", name, err)
	}

	s.logger.Info("tenant created",
		slog.String("tenantID", tenant.ID),
		slog.String("name", tenant.Name),
	)
	return tenant, nil
}

// GetByID returns the tenant with the given id.
func (s *TenantService) GetByID(ctx context.Context, id string) (*model.Tenant, error) {
	tenant, err := s.tenants.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/tenant: fetching tenant %s: %w", id, err)
	}
	return tenant, nil
}

// GetByName returns the tenant with the given name.
func (s *TenantService) GetByName(ctx context.Context, name string) (*model.Tenant, error) {
	tenant, err := s.tenants.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("service/tenant: fetching tenant %q: %w", name, err)
	}
	return tenant, nil
}

// List returns tenants ordered newest first.
func (s *TenantService) List(ctx context.Context, opts repository.ListOptions) ([]model.Tenant, error) {
	tenants, err := s.tenants.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("service/tenant: listing tenants: %w", err)
	}
	return tenants, nil
}

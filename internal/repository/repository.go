// Package repository declares the persistence interfaces consumed by the
// service layer. The auth core treats lookups as external collaborators: it
// needs lookup-by-email for login and lookup-by-id for token refresh and
// current-principal resolution, nothing more.
package repository

import (
	"context"

	"github.com/sakif/event-saas/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

type OrganizerRepository interface {
	Create(ctx context.Context, organizer *model.Organizer) error
	FindByEmail(ctx context.Context, email model.EmailAddress) (*model.Organizer, error)
	FindByID(ctx context.Context, id string) (*model.Organizer, error)
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	FindByEmail(ctx context.Context, email model.EmailAddress) (*model.Customer, error)
	FindByID(ctx context.Context, id string) (*model.Customer, error)
}

type AdministratorRepository interface {
	Create(ctx context.Context, admin *model.Administrator) error
	FindByEmail(ctx context.Context, email model.EmailAddress) (*model.Administrator, error)
}

type TenantRepository interface {
	Create(ctx context.Context, tenant *model.Tenant) error
	GetByID(ctx context.Context, id string) (*model.Tenant, error)
	GetByName(ctx context.Context, name string) (*model.Tenant, error)
	List(ctx context.Context, opts ListOptions) ([]model.Tenant, error)
}

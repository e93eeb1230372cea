package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/sakif/event-saas/internal/apperror"
)

// maxTenantNameLength bounds tenant names at the database column width.
const maxTenantNameLength = 255

// Tenant is the isolation boundary grouping organizers, customers and their
// data. Every organizer/customer row carries a tenant id, and every issued
// organizer/customer token embeds it. Tenant scoping is never inferred from
// a secondary lookup.
type Tenant struct {
	ID        string    `json:"id"        db:"id"`
	Name      string    `json:"name"      db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// ValidateTenantName checks the tenant-name rules shared by create and rename.
func ValidateTenantName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperror.ValidationFailed("name", "tenant name must not be blank")
	}
	if len(name) > maxTenantNameLength {
		return apperror.ValidationFailed("name", fmt.Sprintf("tenant name must be %d characters or less", maxTenantNameLength))
	}
	return nil
}

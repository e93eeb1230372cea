// Package model defines the data structures used throughout the application.
package model

import "time"

// Role is the closed set of authorities a principal can hold.
//
// Each principal type currently maps to exactly one role, but the type is a
// plain string enum (not a bool or a per-type constant) so that additional
// roles per type can be added without reshaping tokens or the database.
type Role string

const (
	RoleSysAdmin    Role = "SYS_ADMIN"   // Administrator: system-level, tenant-agnostic
	RoleOwner       Role = "OWNER"       // Organizer: owns a tenant's events
	RoleParticipant Role = "PARTICIPANT" // Customer: attends a tenant's events
)

// Authority returns the authority string checked by the authorization layer.
//
// This is the single place the "ROLE_" prefix exists. The token issuer, the
// request filter, and every resolver-level role check go through this method,
// so the issued claim and the expected authority can never drift apart.
func (r Role) Authority() string {
	return "ROLE_" + string(r)
}

// Valid reports whether r is one of the known roles. Tokens are attacker
// input, so a role claim is checked against the closed set before use.
func (r Role) Valid() bool {
	switch r {
	case RoleSysAdmin, RoleOwner, RoleParticipant:
		return true
	}
	return false
}

// Principal is any authenticable actor: Administrator, Organizer or Customer.
//
// The auth service is generic over this interface: login, refresh and
// current-principal resolution read nothing beyond what it exposes.
// PrincipalTenantID returns "" for tenant-agnostic principals (Administrator).
type Principal interface {
	PrincipalID() string
	PrincipalTenantID() string
	PrincipalEmail() EmailAddress
	PrincipalPasswordDigest() string
	PrincipalRole() Role
}

// Organizer runs events within exactly one tenant.
//
// ID is empty before first persistence and immutable afterwards; the sqlite
// repository assigns it on Create. PasswordDigest is a bcrypt hash; plaintext
// never reaches this struct.
type Organizer struct {
	ID             string       `json:"id"        db:"id"`
	TenantID       string       `json:"tenantId"  db:"tenant_id"`
	Email          EmailAddress `json:"email"     db:"email"`
	PasswordDigest string       `json:"-"         db:"password_digest"`
	Role           Role         `json:"role"      db:"role"`
	CreatedAt      time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time    `json:"updatedAt" db:"updated_at"`
}

func (o *Organizer) PrincipalID() string             { return o.ID }
func (o *Organizer) PrincipalTenantID() string       { return o.TenantID }
func (o *Organizer) PrincipalEmail() EmailAddress    { return o.Email }
func (o *Organizer) PrincipalPasswordDigest() string { return o.PasswordDigest }
func (o *Organizer) PrincipalRole() Role             { return o.Role }

// Customer participates in events within exactly one tenant.
type Customer struct {
	ID             string       `json:"id"        db:"id"`
	TenantID       string       `json:"tenantId"  db:"tenant_id"`
	Email          EmailAddress `json:"email"     db:"email"`
	PasswordDigest string       `json:"-"         db:"password_digest"`
	Role           Role         `json:"role"      db:"role"`
	CreatedAt      time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time    `json:"updatedAt" db:"updated_at"`
}

func (c *Customer) PrincipalID() string             { return c.ID }
func (c *Customer) PrincipalTenantID() string       { return c.TenantID }
func (c *Customer) PrincipalEmail() EmailAddress    { return c.Email }
func (c *Customer) PrincipalPasswordDigest() string { return c.PasswordDigest }
func (c *Customer) PrincipalRole() Role             { return c.Role }

// Administrator operates the SaaS itself. It belongs to no tenant, which is
// why PrincipalTenantID returns "" and issued claims omit tenantId entirely.
type Administrator struct {
	ID             string       `json:"id"        db:"id"`
	Email          EmailAddress `json:"email"     db:"email"`
	PasswordDigest string       `json:"-"         db:"password_digest"`
	Role           Role         `json:"role"      db:"role"`
	CreatedAt      time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time    `json:"updatedAt" db:"updated_at"`
}

func (a *Administrator) PrincipalID() string             { return a.ID }
func (a *Administrator) PrincipalTenantID() string       { return "" }
func (a *Administrator) PrincipalEmail() EmailAddress    { return a.Email }
func (a *Administrator) PrincipalPasswordDigest() string { return a.PasswordDigest }
func (a *Administrator) PrincipalRole() Role             { return a.Role }

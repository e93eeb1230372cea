package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/event-saas/internal/model"
)

// BuildClaims maps a principal to its canonical claim set:
// sub = principal id, role = role name, tenantId = owning tenant.
//
// Pure function, no I/O. The token type and timestamps are added later by the
// issuer and codec respectively.
//
// For an Administrator, PrincipalTenantID returns "" and the tenantId claim
// is omitted from the encoded token (json omitempty) rather than carrying a
// sentinel value.
func BuildClaims(p model.Principal) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: p.PrincipalID(),
		},
		Role:     p.PrincipalRole(),
		TenantID: p.PrincipalTenantID(),
	}
}

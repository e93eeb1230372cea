package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/sakif/event-saas/internal/apperror"
	"github.com/sakif/event-saas/internal/model"
)

// Identity is the request-scoped representation of a validated bearer token.
// It is constructed per request by the Authenticate middleware and read back
// by resolvers and handlers; it is never cached or shared across requests.
type Identity struct {
	PrincipalID string
	Role        model.Role
	TenantID    string
}

// Authority returns the authority string for this identity's role.
func (id Identity) Authority() string {
	return id.Role.Authority()
}

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the identity value.
type contextKey int

const identityKey contextKey = iota

// Authenticate returns a middleware that extracts and validates a bearer
// token, attaching an Identity to the request context when the token is good.
//
// It FAILS OPEN by design: a missing, malformed, expired or otherwise invalid
// token leaves the request anonymous and passes it through. Rejection is the
// job of the downstream authorization policy (RequireRole, session guards),
// which turns a missing identity into a typed error instead of a blanket 401
// at the transport edge.
func Authenticate(codec *TokenCodec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok || !codec.IsValid(token) {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := codec.Parse(token)
			if err != nil || claims.Subject == "" || !claims.Role.Valid() {
				// Signature checked out but the claims are unusable; treat
				// the request as anonymous rather than half-authenticated.
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithIdentity(r.Context(), Identity{
				PrincipalID: claims.Subject,
				Role:        claims.Role,
				TenantID:    claims.TenantID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithIdentity returns a copy of ctx carrying id. Exposed for tests and for
// the GraphQL layer, which re-threads the request context into resolvers.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the authenticated identity, if any.
// ok is false for anonymous requests.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.PrincipalID != ""
}

// RequireRole enforces the per-operation authorization policy. It is the
// first call of every role-restricted GraphQL resolver, since all operations
// of a principal kind share one transport endpoint.
//
// No identity at all fails with Unauthenticated; an identity whose authority
// does not match fails with AccessDenied.
func RequireRole(ctx context.Context, role model.Role) (Identity, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return Identity{}, apperror.Unauthenticated("authentication required")
	}
	if id.Authority() != role.Authority() {
		return Identity{}, apperror.AccessDenied("role " + string(role) + " required")
	}
	return id, nil
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. ok is false when the header is absent or uses another scheme.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

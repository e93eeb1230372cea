package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/event-saas/internal/apperror"
	"github.com/sakif/event-saas/internal/model"
)

// captureHandler records the identity seen by the innermost handler.
func captureHandler(got *Identity, ok *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got, *ok = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateAttachesIdentity(t *testing.T) {
	codec := newTestCodec(t)
	issuer := NewTokenIssuer(codec)
	organizer := &model.Organizer{ID: "o1", TenantID: "t1", Role: model.RoleOwner}
	tokenStr, err := issuer.IssueAccessToken(organizer)
	if err != nil {
		t.Fatal(err)
	}

	var id Identity
	var ok bool
	handler := Authenticate(codec)(captureHandler(&id, &ok))

	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !ok {
		t.Fatal("no identity attached for a valid token")
	}
	if id.PrincipalID != "o1" || id.Role != model.RoleOwner || id.TenantID != "t1" {
		t.Errorf("unexpected identity: %+v", id)
	}
	if id.Authority() != "ROLE_OWNER" {
		t.Errorf("Authority() = %q, want ROLE_OWNER", id.Authority())
	}
}

// The filter must pass anonymous and bad-token requests through untouched.
// Rejection happens later at the authorization policy, never here.
func TestAuthenticateFailsOpen(t *testing.T) {
	codec := newTestCodec(t)

	expiredCodec, err := NewTokenCodec(testSecret, time.Millisecond, time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	expired, err := NewTokenIssuer(expiredCodec).IssueAccessToken(
		&model.Organizer{ID: "o1", TenantID: "t1", Role: model.RoleOwner})
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"empty bearer", "Bearer "},
		{"garbage token", "Bearer not-a-jwt"},
		{"expired token", "Bearer " + expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id Identity
			var ok bool
			handler := Authenticate(codec)(captureHandler(&id, &ok))

			req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, request did not pass through", rec.Code)
			}
			if ok {
				t.Errorf("identity attached for %s: %+v", tt.name, id)
			}
		})
	}
}

func TestAuthenticateRejectsUnknownRoleClaim(t *testing.T) {
	codec := newTestCodec(t)
	tokenStr, err := codec.Create(Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "s1"},
		Role:             "SUPERUSER",
		TokenType:        TokenTypeAccess,
	}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	var id Identity
	var ok bool
	handler := Authenticate(codec)(captureHandler(&id, &ok))
	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if ok {
		t.Errorf("identity attached for unknown role claim: %+v", id)
	}
}

func TestRequireRole(t *testing.T) {
	owner := Identity{PrincipalID: "o1", Role: model.RoleOwner, TenantID: "t1"}

	t.Run("matching role passes", func(t *testing.T) {
		id, err := RequireRole(WithIdentity(context.Background(), owner), model.RoleOwner)
		if err != nil {
			t.Fatalf("RequireRole: %v", err)
		}
		if id != owner {
			t.Errorf("identity = %+v, want %+v", id, owner)
		}
	})

	t.Run("anonymous fails unauthenticated", func(t *testing.T) {
		_, err := RequireRole(context.Background(), model.RoleOwner)
		if !errors.Is(err, apperror.ErrUnauthenticated) {
			t.Errorf("error = %v, want ErrUnauthenticated", err)
		}
	})

	t.Run("wrong role fails access denied", func(t *testing.T) {
		_, err := RequireRole(WithIdentity(context.Background(), owner), model.RoleParticipant)
		if !errors.Is(err, apperror.ErrAccessDenied) {
			t.Errorf("error = %v, want ErrAccessDenied", err)
		}
	})
}

func TestIdentityFromContextEmpty(t *testing.T) {
	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Error("ok = true for a bare context")
	}
}

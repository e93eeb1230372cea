package graphql_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/event-saas/internal/auth"
	gql "github.com/sakif/event-saas/internal/graphql"
	"github.com/sakif/event-saas/internal/model"
	"github.com/sakif/event-saas/internal/repository/sqlite"
	"github.com/sakif/event-saas/internal/service"
)

// testAPI is a fully wired organizer GraphQL endpoint over an in-memory
// database, with the bearer authentication filter in front, matching the
// production middleware chain.
type testAPI struct {
	server    *httptest.Server
	codec     *auth.TokenCodec
	issuer    *auth.TokenIssuer
	organizer *model.Organizer
}

type graphqlResponse struct {
	Data   map[string]any `json:"data"`
	Errors []struct {
		Message    string         `json:"message"`
		Extensions map[string]any `json:"extensions"`
	} `json:"errors"`
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tenant := &model.Tenant{Name: "Acme Events"}
	require.NoError(t, db.Tenants().Create(context.Background(), tenant))

	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)
	digest, err := passwords.Hash("secret123")
	require.NoError(t, err)

	email, err := model.NewEmailAddress("owner@acme.test")
	require.NoError(t, err)
	organizer := &model.Organizer{
		TenantID:       tenant.ID,
		Email:          email,
		PasswordDigest: digest,
	}
	require.NoError(t, db.Organizers().Create(context.Background(), organizer))

	codec, err := auth.NewTokenCodec("test-secret-0123456789abcdef", 30*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	issuer := auth.NewTokenIssuer(codec)

	organizerAuth := service.NewAuthService[*model.Organizer](
		"organizer", db.Organizers(), passwords, issuer, codec, logger)

	schema, err := gql.NewSchema(gql.SchemaConfig{
		Kind:    "Organizer",
		Role:    model.RoleOwner,
		Login:   organizerAuth.Login,
		Refresh: organizerAuth.Refresh,
		Current: func(ctx context.Context) (*gql.PrincipalInfo, error) {
			current, err := organizerAuth.ResolveCurrent(ctx)
			if err != nil {
				return nil, err
			}
			return &gql.PrincipalInfo{
				Email:    current.Email.String(),
				Role:     current.Role,
				TenantID: current.TenantID,
			}, nil
		},
	})
	require.NoError(t, err)

	handler := auth.Authenticate(codec)(gql.NewHandler(schema, logger))
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testAPI{server: srv, codec: codec, issuer: issuer, organizer: organizer}
}

func (api *testAPI) do(t *testing.T, token, query string, variables map[string]any) (*graphqlResponse, int) {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, api.server.URL, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var parsed graphqlResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&parsed))
	return &parsed, res.StatusCode
}

const loginMutation = `
	mutation($input: OrganizerLoginInput!) {
		loginOrganizer(input: $input) {
			accessToken
			refreshToken
			expiresIn
			tenantId
			email
			role
		}
	}`

const currentQuery = `query { currentOrganizer { email role tenantId } }`

func errorCode(res *graphqlResponse) string {
	if len(res.Errors) == 0 {
		return ""
	}
	code, _ := res.Errors[0].Extensions["code"].(string)
	return code
}

func TestLoginThenCurrentRoundTrip(t *testing.T) {
	api := newTestAPI(t)

	res, status := api.do(t, "", loginMutation, map[string]any{
		"input": map[string]any{"email": "owner@acme.test", "password": "secret123"},
	})
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, res.Errors)

	payload, ok := res.Data["loginOrganizer"].(map[string]any)
	require.True(t, ok, "loginOrganizer payload missing: %v", res.Data)
	assert.Equal(t, "owner@acme.test", payload["email"])
	assert.Equal(t, "OWNER", payload["role"])
	assert.Equal(t, api.organizer.TenantID, payload["tenantId"])
	assert.Equal(t, float64(1800), payload["expiresIn"])

	accessToken, _ := payload["accessToken"].(string)
	require.NotEmpty(t, accessToken)

	res, status = api.do(t, accessToken, currentQuery, nil)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, res.Errors)

	current, ok := res.Data["currentOrganizer"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "owner@acme.test", current["email"])
	assert.Equal(t, "OWNER", current["role"])
	assert.Equal(t, api.organizer.TenantID, current["tenantId"])
}

func TestLoginWrongPassword(t *testing.T) {
	api := newTestAPI(t)

	res, status := api.do(t, "", loginMutation, map[string]any{
		"input": map[string]any{"email": "owner@acme.test", "password": "wrong"},
	})
	assert.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(res))
	assert.Equal(t, "invalid credentials", res.Errors[0].Message)
}

// An unknown email must produce exactly the same error surface as a wrong
// password.
func TestLoginUnknownEmailMatchesWrongPassword(t *testing.T) {
	api := newTestAPI(t)

	unknown, _ := api.do(t, "", loginMutation, map[string]any{
		"input": map[string]any{"email": "nobody@acme.test", "password": "secret123"},
	})
	wrongPw, _ := api.do(t, "", loginMutation, map[string]any{
		"input": map[string]any{"email": "owner@acme.test", "password": "wrong"},
	})

	require.NotEmpty(t, unknown.Errors)
	require.NotEmpty(t, wrongPw.Errors)
	assert.Equal(t, wrongPw.Errors[0].Message, unknown.Errors[0].Message)
	assert.Equal(t, errorCode(wrongPw), errorCode(unknown))
}

func TestRefreshWithRefreshToken(t *testing.T) {
	api := newTestAPI(t)

	login, _ := api.do(t, "", loginMutation, map[string]any{
		"input": map[string]any{"email": "owner@acme.test", "password": "secret123"},
	})
	require.Empty(t, login.Errors)
	payload := login.Data["loginOrganizer"].(map[string]any)
	refreshToken, _ := payload["refreshToken"].(string)
	require.NotEmpty(t, refreshToken)

	res, status := api.do(t, "", `
		mutation($token: String!) {
			refreshOrganizerToken(token: $token) { accessToken refreshToken email }
		}`, map[string]any{"token": refreshToken})
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, res.Errors)

	refreshed, ok := res.Data["refreshOrganizerToken"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, refreshed["accessToken"])
	assert.Equal(t, "owner@acme.test", refreshed["email"])
}

// Presenting an access token to the refresh mutation must fail even though
// the token verifies under the same secret.
func TestRefreshRejectsAccessToken(t *testing.T) {
	api := newTestAPI(t)

	login, _ := api.do(t, "", loginMutation, map[string]any{
		"input": map[string]any{"email": "owner@acme.test", "password": "secret123"},
	})
	require.Empty(t, login.Errors)
	accessToken := login.Data["loginOrganizer"].(map[string]any)["accessToken"].(string)

	res, status := api.do(t, "", `
		mutation($token: String!) {
			refreshOrganizerToken(token: $token) { accessToken }
		}`, map[string]any{"token": accessToken})
	assert.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, "INVALID_TOKEN", errorCode(res))
}

// A protected query without credentials fails with a structured error, not a
// transport-level rejection.
func TestCurrentWithoutTokenIsUnauthenticated(t *testing.T) {
	api := newTestAPI(t)

	res, status := api.do(t, "", currentQuery, nil)
	assert.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, "UNAUTHENTICATED", errorCode(res))
}

func TestCurrentWithExpiredToken(t *testing.T) {
	api := newTestAPI(t)

	shortCodec, err := auth.NewTokenCodec("test-secret-0123456789abcdef", time.Millisecond, time.Millisecond)
	require.NoError(t, err)
	expired, err := auth.NewTokenIssuer(shortCodec).IssueAccessToken(api.organizer)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	res, status := api.do(t, expired, currentQuery, nil)
	assert.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, "UNAUTHENTICATED", errorCode(res))
}

// A valid token of the wrong role is denied, not treated as anonymous.
func TestCurrentWithWrongRoleToken(t *testing.T) {
	api := newTestAPI(t)

	customer := &model.Customer{
		ID:       api.organizer.ID,
		TenantID: api.organizer.TenantID,
		Email:    api.organizer.Email,
		Role:     model.RoleParticipant,
	}
	token, err := api.issuer.IssueAccessToken(customer)
	require.NoError(t, err)

	res, status := api.do(t, token, currentQuery, nil)
	assert.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, "ACCESS_DENIED", errorCode(res))
}

func TestMalformedBodyIsBadRequest(t *testing.T) {
	api := newTestAPI(t)

	res, err := http.Post(api.server.URL, "application/json", bytes.NewBufferString(`{"query":`))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

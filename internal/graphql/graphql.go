// Package graphql exposes the organizer and customer auth APIs over GraphQL.
//
// Each principal kind gets its own schema mounted on its own endpoint
// (/organizer/graphql, /customer/graphql). Because every operation of a kind
// multiplexes onto that single endpoint, the transport layer cannot enforce
// roles. Each role-restricted resolver performs the authority check itself
// as its first step, and the authentication filter in front of the endpoint
// only populates identity without rejecting anything.
package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/sakif/event-saas/internal/apperror"
	"github.com/sakif/event-saas/internal/auth"
	"github.com/sakif/event-saas/internal/model"
	"github.com/sakif/event-saas/internal/service"
)

// PrincipalInfo is the shape returned by the current-principal queries.
type PrincipalInfo struct {
	Email    string
	Role     model.Role
	TenantID string
}

// SchemaConfig wires one principal kind's operations into a schema.
// Kind is the capitalized type name used in the GraphQL vocabulary
// ("Organizer" -> loginOrganizer, OrganizerLoginPayload, currentOrganizer).
type SchemaConfig struct {
	Kind    string
	Role    model.Role
	Login   func(ctx context.Context, email, password string) (*service.LoginResult, error)
	Refresh func(ctx context.Context, token string) (*service.LoginResult, error)
	Current func(ctx context.Context) (*PrincipalInfo, error)
}

// NewSchema builds the GraphQL schema for one principal kind:
//
//	Mutation.login<Kind>(input: <Kind>LoginInput!): <Kind>LoginPayload
//	Mutation.refresh<Kind>Token(token: String!): <Kind>LoginPayload
//	Query.current<Kind>: <Kind>Info
func NewSchema(cfg SchemaConfig) (graphql.Schema, error) {
	loginInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: cfg.Kind + "LoginInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"email":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"password": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	loginPayload := graphql.NewObject(graphql.ObjectConfig{
		Name: cfg.Kind + "LoginPayload",
		Fields: graphql.Fields{
			"accessToken":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"refreshToken": &graphql.Field{Type: graphql.String},
			"expiresIn":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"tenantId":     &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"email":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"role":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	info := graphql.NewObject(graphql.ObjectConfig{
		Name: cfg.Kind + "Info",
		Fields: graphql.Fields{
			"email":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"role":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"tenantId": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		},
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"current" + cfg.Kind: &graphql.Field{
				Type: info,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					// Role check first: the single shared endpoint means the
					// transport could not have enforced this.
					if _, err := auth.RequireRole(p.Context, cfg.Role); err != nil {
						return nil, wrapError(err)
					}
					current, err := cfg.Current(p.Context)
					if err != nil {
						return nil, wrapError(err)
					}
					return map[string]any{
						"email":    current.Email,
						"role":     string(current.Role),
						"tenantId": current.TenantID,
					}, nil
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"login" + cfg.Kind: &graphql.Field{
				Type: loginPayload,
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(loginInput)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					input, _ := p.Args["input"].(map[string]any)
					email, _ := input["email"].(string)
					password, _ := input["password"].(string)

					result, err := cfg.Login(p.Context, email, password)
					if err != nil {
						return nil, wrapError(err)
					}
					return loginResultMap(result), nil
				},
			},
			"refresh" + cfg.Kind + "Token": &graphql.Field{
				Type: loginPayload,
				Args: graphql.FieldConfigArgument{
					"token": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					token, _ := p.Args["token"].(string)

					result, err := cfg.Refresh(p.Context, token)
					if err != nil {
						return nil, wrapError(err)
					}
					return loginResultMap(result), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
}

func loginResultMap(r *service.LoginResult) map[string]any {
	return map[string]any{
		"accessToken":  r.AccessToken,
		"refreshToken": r.RefreshToken,
		"expiresIn":    r.ExpiresIn,
		"tenantId":     r.TenantID,
		"email":        r.Email,
		"role":         string(r.Role),
	}
}

// resolverError carries an application error through graphql-go's formatter.
// Implementing Extensions() makes the library emit {extensions: {code: ...}}
// on the formatted error, which is the structured shape clients switch on.
type resolverError struct {
	message string
	code    string
}

func (e *resolverError) Error() string {
	return e.message
}

func (e *resolverError) Extensions() map[string]any {
	return map[string]any{"code": e.code}
}

// wrapError converts service errors into resolver errors with a stable code
// extension. Unexpected errors are masked: clients get a generic internal
// error, never wrapped SQL or codec details.
func wrapError(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return &resolverError{message: appErr.Message, code: appErr.Code}
	}
	slog.Error("graphql resolver failed", slog.String("error", err.Error()))
	return &resolverError{message: "internal error", code: "INTERNAL_ERROR"}
}

// Handler serves a schema over HTTP POST with the standard GraphQL JSON
// envelope. Execution errors surface in the response body with status 200;
// only an unreadable request produces a non-200.
type Handler struct {
	schema graphql.Schema
	logger *slog.Logger
}

func NewHandler(schema graphql.Schema, logger *slog.Logger) *Handler {
	return &Handler{schema: schema, logger: logger}
}

type graphqlRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req graphqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"errors":[{"message":"malformed request body"}]}`, http.StatusBadRequest)
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        r.Context(),
	})

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("failed to encode GraphQL response", slog.String("error", err.Error()))
	}
}

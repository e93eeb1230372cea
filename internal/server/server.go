// Package server wires the dependency graph and defines all routes.
//
// ROUTE GROUPS (one security posture each):
//
//	/organizer/graphql   JWT bearer auth, role checks inside resolvers
//	/customer/graphql    JWT bearer auth, role checks inside resolvers
//	/admin/login         open (this is how a session starts)
//	/admin/logout        open (destroying a session needs no session)
//	/admin/api/**        requires a live admin session
//
// The GraphQL endpoints themselves are reachable without a token: the
// authentication filter in front of them only populates request identity,
// and each role-restricted resolver enforces policy itself. That is forced
// by GraphQL multiplexing every operation onto one URL: login mutations and
// authenticated queries share the endpoint.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/event-saas/internal/auth"
	gql "github.com/sakif/event-saas/internal/graphql"
	"github.com/sakif/event-saas/internal/handler"
	"github.com/sakif/event-saas/internal/middleware"
	"github.com/sakif/event-saas/internal/model"
	sqliteRepo "github.com/sakif/event-saas/internal/repository/sqlite"
	"github.com/sakif/event-saas/internal/service"
	"github.com/sakif/event-saas/internal/session"
)

// Config holds server configuration, loaded from the environment in main.
type Config struct {
	Port            int
	DBPath          string
	JWTSecret       string
	AccessValidity  time.Duration
	RefreshValidity time.Duration
	SessionTTL      time.Duration

	// Optional bootstrap administrator, seeded when both are set and the
	// email is not yet registered.
	AdminEmail    string
	AdminPassword string
}

// Server owns the router and the resources behind it.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain:
// sqlite repositories -> token codec/issuer -> per-kind auth services ->
// GraphQL schemas and REST handlers -> routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	if err := s.seedAdministrator(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("seeding administrator: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	codec, err := auth.NewTokenCodec(s.config.JWTSecret, s.config.AccessValidity, s.config.RefreshValidity)
	if err != nil {
		return fmt.Errorf("creating token codec: %w", err)
	}
	issuer := auth.NewTokenIssuer(codec)
	passwords := auth.NewPasswordService()

	organizerAuth := service.NewAuthService[*model.Organizer](
		"organizer", s.db.Organizers(), passwords, issuer, codec, s.logger)
	customerAuth := service.NewAuthService[*model.Customer](
		"customer", s.db.Customers(), passwords, issuer, codec, s.logger)

	organizerSchema, err := gql.NewSchema(gql.SchemaConfig{
		Kind:    "Organizer",
		Role:    model.RoleOwner,
		Login:   organizerAuth.Login,
		Refresh: organizerAuth.Refresh,
		Current: func(ctx context.Context) (*gql.PrincipalInfo, error) {
			organizer, err := organizerAuth.ResolveCurrent(ctx)
			if err != nil {
				return nil, err
			}
			return &gql.PrincipalInfo{
				Email:    organizer.Email.String(),
				Role:     organizer.Role,
				TenantID: organizer.TenantID,
			}, nil
		},
	})
	if err != nil {
		return fmt.Errorf("building organizer schema: %w", err)
	}

	customerSchema, err := gql.NewSchema(gql.SchemaConfig{
		Kind:    "Customer",
		Role:    model.RoleParticipant,
		Login:   customerAuth.Login,
		Refresh: customerAuth.Refresh,
		Current: func(ctx context.Context) (*gql.PrincipalInfo, error) {
			customer, err := customerAuth.ResolveCurrent(ctx)
			if err != nil {
				return nil, err
			}
			return &gql.PrincipalInfo{
				Email:    customer.Email.String(),
				Role:     customer.Role,
				TenantID: customer.TenantID,
			}, nil
		},
	})
	if err != nil {
		return fmt.Errorf("building customer schema: %w", err)
	}

	// JWT surfaces. Authenticate never rejects; it only attaches identity.
	authenticate := auth.Authenticate(codec)
	s.router.Route("/organizer", func(r chi.Router) {
		r.Use(authenticate)
		r.Method(http.MethodPost, "/graphql", gql.NewHandler(organizerSchema, s.logger))
	})
	s.router.Route("/customer", func(r chi.Router) {
		r.Use(authenticate)
		r.Method(http.MethodPost, "/graphql", gql.NewHandler(customerSchema, s.logger))
	})

	// Session surface.
	sessions := session.NewStore(s.config.SessionTTL)
	adminAuth := service.NewAdministratorAuthService(s.db.Administrators(), s.logger)
	adminHandler := handler.NewAdminHandler(adminAuth, passwords, sessions, s.logger)

	tenantService := service.NewTenantService(s.db.Tenants(), s.logger)
	tenantHandler := handler.NewTenantHandler(tenantService, s.logger)

	s.router.Route("/admin", func(r chi.Router) {
		r.Post("/login", adminHandler.HandleLogin)
		r.Post("/logout", adminHandler.HandleLogout)

		r.Route("/api", func(r chi.Router) {
			r.Use(adminHandler.RequireSession)
			r.Get("/me", adminHandler.HandleMe)
			r.Post("/tenants", tenantHandler.HandleCreate)
			r.Get("/tenants", tenantHandler.HandleList)
			r.Get("/tenants/{id}", tenantHandler.HandleGetByID)
			r.Get("/tenants/name/{name}", tenantHandler.HandleGetByName)
		})
	})

	return nil
}

// seedAdministrator inserts a bootstrap administrator account when one is
// configured and not yet present. Without it a fresh deployment has no way
// to log into the admin surface.
func (s *Server) seedAdministrator(ctx context.Context) error {
	if s.config.AdminEmail == "" || s.config.AdminPassword == "" {
		return nil
	}

	email, err := model.NewEmailAddress(s.config.AdminEmail)
	if err != nil {
		return fmt.Errorf("invalid ADMIN_EMAIL: %w", err)
	}

	admins := s.db.Administrators()
	if _, err := admins.FindByEmail(ctx, email); err == nil {
		return nil // already seeded
	}

	digest, err := auth.NewPasswordService().Hash(s.config.AdminPassword)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	admin := &model.Administrator{
		Email:          email,
		PasswordDigest: digest,
		Role:           model.RoleSysAdmin,
	}
	if err := admins.Create(ctx, admin); err != nil {
		return fmt.Errorf("creating bootstrap administrator: %w", err)
	}

	s.logger.Info("bootstrap administrator seeded", slog.String("email", email.String()))
	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM and shuts down gracefully:
// stop accepting, drain in-flight requests, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

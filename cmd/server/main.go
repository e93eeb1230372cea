// Package main is the entry point for the event platform auth server.
// It reads configuration from the environment, builds the logger, and
// hands everything to internal/server. All actual logic lives in the
// imported packages.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sakif/event-saas/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// JWT_SECRET has no default on purpose. A baked-in fallback secret
	// means every deployment that forgets the variable shares a key.
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is required (e.g. JWT_SECRET=$(openssl rand -hex 32))")
		os.Exit(1)
	}

	port, err := intFromEnv("PORT", 8080)
	if err != nil {
		logger.Error("invalid PORT value", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPath := "data/eventsaas.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	accessMS, err := intFromEnv("ACCESS_TOKEN_TTL_MS", 30*60*1000)
	if err != nil {
		logger.Error("invalid ACCESS_TOKEN_TTL_MS value", slog.String("error", err.Error()))
		os.Exit(1)
	}
	refreshMS, err := intFromEnv("REFRESH_TOKEN_TTL_MS", 7*24*60*60*1000)
	if err != nil {
		logger.Error("invalid REFRESH_TOKEN_TTL_MS value", slog.String("error", err.Error()))
		os.Exit(1)
	}
	sessionMin, err := intFromEnv("ADMIN_SESSION_TTL_MIN", 60)
	if err != nil {
		logger.Error("invalid ADMIN_SESSION_TTL_MIN value", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cfg := server.Config{
		Port:            port,
		DBPath:          dbPath,
		JWTSecret:       jwtSecret,
		AccessValidity:  time.Duration(accessMS) * time.Millisecond,
		RefreshValidity: time.Duration(refreshMS) * time.Millisecond,
		SessionTTL:      time.Duration(sessionMin) * time.Minute,
		AdminEmail:      os.Getenv("ADMIN_EMAIL"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func intFromEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

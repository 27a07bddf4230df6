package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"minisite/internal/auth"
	"minisite/internal/model"
)

// Default admin credentials, intended for first boot only.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "changeme"
)

// Seed creates the initial admin user if no account exists yet.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	_, err := queries.GetUserByUsername(ctx, DefaultAdminUsername)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user, err := queries.CreateUser(ctx, DefaultAdminUsername, passwordHash, true)
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"username", user.Username,
		"password", DefaultAdminPassword,
	)

	return nil
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"minisite/internal/model"
)

// CreateUser inserts a user account. Only used by seeding and provisioning.
func (q *Queries) CreateUser(ctx context.Context, username, passwordHash string, isAdmin bool) (model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return model.User{}, fmt.Errorf("%w: username is required", model.ErrValidation)
	}

	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, is_admin, created_at) VALUES (?, ?, ?, ?)`,
		username, passwordHash, isAdmin, now)
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, fmt.Errorf("%w: username %q already exists", model.ErrConflict, username)
		}
		return model.User{}, fmt.Errorf("inserting user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, fmt.Errorf("reading user id: %w", err)
	}

	return model.User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
		CreatedAt:    now,
	}, nil
}

// GetUserByID looks up a user by primary key.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	return q.getUser(ctx, `WHERE id = ?`, id)
}

// GetUserByUsername looks up a user by unique username.
func (q *Queries) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return q.getUser(ctx, `WHERE username = ?`, username)
}

// UpdateUserPassword replaces a user's password hash. Used when a hash
// created with outdated argon2 parameters is rotated on login.
func (q *Queries) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking password update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %d: %w", id, model.ErrNotFound)
	}
	return nil
}

func (q *Queries) getUser(ctx context.Context, where string, arg any) (model.User, error) {
	var u model.User
	err := q.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, is_admin, created_at FROM users `+where,
		arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, fmt.Errorf("user: %w", model.ErrNotFound)
		}
		return model.User{}, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"strings"
)

// Queries is the persistence gateway. All row access goes through it so
// handlers never touch SQL directly.
type Queries struct {
	db *sql.DB
}

// New creates a Queries instance bound to the given database.
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// isUniqueViolation reports whether err is a SQLite unique constraint error.
// Used to map slug collisions that slip past the existence pre-check.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

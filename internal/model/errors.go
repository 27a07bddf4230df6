// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "errors"

// Sentinel errors returned by the store layer. Handlers translate these
// to HTTP statuses; everything else is treated as a store failure (503).
var (
	// ErrValidation indicates rejected input (HTTP 400).
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates a missing entity (HTTP 404).
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness violation, e.g. a duplicate slug (HTTP 409).
	ErrConflict = errors.New("conflict")
)

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

// CreatePage inserts a content page. The slug must be unique; a duplicate
// returns model.ErrConflict and leaves the existing row unchanged.
func (q *Queries) CreatePage(ctx context.Context, slug, title, content string) (model.Page, error) {
	slug = strings.TrimSpace(slug)
	title = strings.TrimSpace(title)

	if slug == "" {
		return model.Page{}, fmt.Errorf("%w: slug is required", model.ErrValidation)
	}
	if title == "" {
		return model.Page{}, fmt.Errorf("%w: title is required", model.ErrValidation)
	}

	var exists int
	err := q.db.QueryRowContext(ctx, `SELECT 1 FROM pages WHERE slug = ?`, slug).Scan(&exists)
	switch {
	case err == nil:
		return model.Page{}, fmt.Errorf("%w: slug %q already exists", model.ErrConflict, slug)
	case !errors.Is(err, sql.ErrNoRows):
		return model.Page{}, fmt.Errorf("checking slug: %w", err)
	}

	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO pages (slug, title, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		slug, title, content, now, now)
	if err != nil {
		// Unique index still backstops concurrent creates
		if isUniqueViolation(err) {
			return model.Page{}, fmt.Errorf("%w: slug %q already exists", model.ErrConflict, slug)
		}
		return model.Page{}, fmt.Errorf("inserting page: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Page{}, fmt.Errorf("reading page id: %w", err)
	}

	return model.Page{
		ID:        id,
		Slug:      slug,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// UpdatePage replaces a page's title and content and refreshes updated_at.
func (q *Queries) UpdatePage(ctx context.Context, slug, title, content string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: title is required", model.ErrValidation)
	}

	res, err := q.db.ExecContext(ctx,
		`UPDATE pages SET title = ?, content = ?, updated_at = ? WHERE slug = ?`,
		title, content, time.Now().UTC(), slug)
	if err != nil {
		return fmt.Errorf("updating page: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking page update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("page %q: %w", slug, model.ErrNotFound)
	}
	return nil
}

// GetPageBySlug looks up a page by its slug.
func (q *Queries) GetPageBySlug(ctx context.Context, slug string) (model.Page, error) {
	var p model.Page
	err := q.db.QueryRowContext(ctx,
		`SELECT id, slug, title, content, created_at, updated_at FROM pages WHERE slug = ?`,
		slug).Scan(&p.ID, &p.Slug, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Page{}, fmt.Errorf("page %q: %w", slug, model.ErrNotFound)
		}
		return model.Page{}, fmt.Errorf("getting page: %w", err)
	}
	return p, nil
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"minisite/internal/model"
)

// sanitize strips all HTML from visitor-submitted text before storage.
var sanitize = bluemonday.StrictPolicy()

// CreateReview inserts a visitor review with status pending.
// String fields are trimmed and sanitized; the rating must be within
// [model.MinRating, model.MaxRating].
func (q *Queries) CreateReview(ctx context.Context, authorName, text string, rating int) (model.Review, error) {
	authorName = sanitize.Sanitize(strings.TrimSpace(authorName))
	text = sanitize.Sanitize(strings.TrimSpace(text))

	if authorName == "" {
		return model.Review{}, fmt.Errorf("%w: author name is required", model.ErrValidation)
	}
	if text == "" {
		return model.Review{}, fmt.Errorf("%w: review text is required", model.ErrValidation)
	}
	if rating < model.MinRating || rating > model.MaxRating {
		return model.Review{}, fmt.Errorf("%w: rating must be between %d and %d",
			model.ErrValidation, model.MinRating, model.MaxRating)
	}

	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO reviews (author_name, text, rating, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		authorName, text, rating, model.ReviewStatusPending, now)
	if err != nil {
		return model.Review{}, fmt.Errorf("inserting review: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Review{}, fmt.Errorf("reading review id: %w", err)
	}

	return model.Review{
		ID:         id,
		AuthorName: authorName,
		Text:       text,
		Rating:     rating,
		Status:     model.ReviewStatusPending,
		CreatedAt:  now,
	}, nil
}

// ListReviews returns reviews newest first. A nil status returns all reviews;
// otherwise only reviews in the given state.
func (q *Queries) ListReviews(ctx context.Context, status *model.ReviewStatus) ([]model.Review, error) {
	query := `SELECT id, author_name, text, rating, status, created_at FROM reviews`
	var args []any
	if status != nil {
		query += ` WHERE status = ?`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		var r model.Review
		if err := rows.Scan(&r.ID, &r.AuthorName, &r.Text, &r.Rating, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// UpdateReviewStatus transitions a review to a new moderation state.
// Returns model.ErrValidation for an unknown status and model.ErrNotFound
// when the id does not exist.
func (q *Queries) UpdateReviewStatus(ctx context.Context, id int64, status model.ReviewStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown review status %q", model.ErrValidation, status)
	}

	res, err := q.db.ExecContext(ctx, `UPDATE reviews SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("updating review status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking review update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("review %d: %w", id, model.ErrNotFound)
	}
	return nil
}

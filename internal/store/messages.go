// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"minisite/internal/model"
)

// CreateMessage inserts a contact message with status new.
func (q *Queries) CreateMessage(ctx context.Context, name, email, body string) (model.Message, error) {
	name = sanitize.Sanitize(strings.TrimSpace(name))
	email = strings.TrimSpace(email)
	body = sanitize.Sanitize(strings.TrimSpace(body))

	if name == "" {
		return model.Message{}, fmt.Errorf("%w: name is required", model.ErrValidation)
	}
	if email == "" || !strings.Contains(email, "@") {
		return model.Message{}, fmt.Errorf("%w: a valid email is required", model.ErrValidation)
	}
	if body == "" {
		return model.Message{}, fmt.Errorf("%w: message is required", model.ErrValidation)
	}

	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO messages (name, email, message, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		name, email, body, model.MessageStatusNew, now)
	if err != nil {
		return model.Message{}, fmt.Errorf("inserting message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Message{}, fmt.Errorf("reading message id: %w", err)
	}

	return model.Message{
		ID:        id,
		Name:      name,
		Email:     email,
		Body:      body,
		Status:    model.MessageStatusNew,
		CreatedAt: now,
	}, nil
}

// ListMessages returns all contact messages newest first.
func (q *Queries) ListMessages(ctx context.Context) ([]model.Message, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, name, email, message, status, created_at FROM messages ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Body, &m.Status, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// MarkMessageRead sets a message status to read. Calling it on an
// already-read message is an idempotent success; a missing id returns
// model.ErrNotFound.
func (q *Queries) MarkMessageRead(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE messages SET status = ? WHERE id = ?`, model.MessageStatusRead, id)
	if err != nil {
		return fmt.Errorf("marking message read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking message update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("message %d: %w", id, model.ErrNotFound)
	}
	return nil
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// MessageStatus is the read state of a contact message.
type MessageStatus string

// Contact message states.
const (
	MessageStatusNew  MessageStatus = "new"
	MessageStatusRead MessageStatus = "read"
)

// Valid reports whether the status is a known message state.
func (s MessageStatus) Valid() bool {
	return s == MessageStatusNew || s == MessageStatusRead
}

// Message represents a contact-form message. Messages are created with
// status new and only ever mutated by the admin "mark read" action.
type Message struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Body      string        `json:"message"`
	Status    MessageStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

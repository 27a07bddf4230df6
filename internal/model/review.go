// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// ReviewStatus is the moderation state of a visitor review.
type ReviewStatus string

// Review moderation states.
const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

// Valid reports whether the status is one of the known moderation states.
func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewStatusPending, ReviewStatusApproved, ReviewStatusRejected:
		return true
	}
	return false
}

// Rating bounds for visitor reviews.
const (
	MinRating = 1
	MaxRating = 5
)

// Review represents a visitor-submitted review. Reviews are created with
// status pending and only ever mutated by an admin status transition.
type Review struct {
	ID         int64        `json:"id"`
	AuthorName string       `json:"author_name"`
	Text       string       `json:"text"`
	Rating     int          `json:"rating"`
	Status     ReviewStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
}

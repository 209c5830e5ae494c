// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

// Package forum provides the user-authored message model and its
// owner-gated mutation pipeline.
package forum

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/memberboard/memberboard/internal/mutation"
)

// Message field bounds, enforced post-trim at the validation stage.
const (
	MinTitleLength = 8
	MaxTitleLength = 25
	MinTextLength  = 8
	MaxTextLength  = 200
)

// Message represents a user-authored post. OwnerID and Timestamp are set
// at creation and never change, even on content edits.
type Message struct {
	ID        ulid.ULID
	Title     string
	Text      string
	Timestamp time.Time
	OwnerID   ulid.ULID
}

// NewMessage creates a validated Message with a fresh ID. Title and text
// are assumed trimmed and length-checked by the mutation pipeline.
func NewMessage(ownerID ulid.ULID, title, text string) (*Message, error) {
	if ownerID.IsZero() {
		return nil, oops.Code("MESSAGE_INVALID_OWNER").Errorf("owner ID cannot be zero")
	}
	if title == "" {
		return nil, oops.Code("MESSAGE_INVALID_TITLE").Errorf("title cannot be empty")
	}
	if text == "" {
		return nil, oops.Code("MESSAGE_INVALID_TEXT").Errorf("text cannot be empty")
	}

	return &Message{
		ID:        ulid.Make(),
		Title:     title,
		Text:      text,
		Timestamp: time.Now(),
		OwnerID:   ownerID,
	}, nil
}

// SetContent replaces the mutable fields. ID, OwnerID, and Timestamp are
// untouched.
func (m *Message) SetContent(title, text string) {
	m.Title = title
	m.Text = text
}

// Draft is the submitted form for message creation and update.
type Draft struct {
	Title string
	Text  string
}

// trimmed returns the draft with surrounding whitespace removed.
func (d Draft) trimmed() Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Text = strings.TrimSpace(d.Text)
	return d
}

// echo returns the redisplayable submission.
func (d Draft) echo() map[string]string {
	return map[string]string{"title": d.Title, "text": d.Text}
}

// validate accumulates field errors for the draft.
func (d Draft) validate() []mutation.FieldError {
	var errs mutation.Errors
	errs.CheckLength("title", d.Title, MinTitleLength, MaxTitleLength)
	errs.CheckLength("text", d.Text, MinTextLength, MaxTextLength)
	return errs.List()
}

// MessageRepository manages message persistence.
type MessageRepository interface {
	// Create stores a new message.
	Create(ctx context.Context, msg *Message) error

	// GetByID retrieves a message by ID. Returns ErrNotFound (wrapped) if
	// no message has the given ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Message, error)

	// Update rewrites the mutable fields of an existing message. Returns
	// ErrNotFound (wrapped) if the ID does not exist.
	Update(ctx context.Context, msg *Message) error

	// Delete removes a message. Returns ErrNotFound (wrapped) if the ID
	// does not exist.
	Delete(ctx context.Context, id ulid.ULID) error

	// List returns all messages ordered by title.
	List(ctx context.Context) ([]*Message, error)

	// Count returns the number of stored messages.
	Count(ctx context.Context) (int64, error)
}

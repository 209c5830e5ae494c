// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

// Package postgres provides the PostgreSQL implementation of the forum
// message repository.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/memberboard/memberboard/internal/forum"
	"github.com/memberboard/memberboard/internal/store"
)

// MessageRepository implements forum.MessageRepository using PostgreSQL.
type MessageRepository struct {
	pool store.Querier
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(pool store.Querier) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// Create stores a new message.
func (r *MessageRepository) Create(ctx context.Context, msg *forum.Message) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO messages (id, title, text, created_at, owner_id)
		VALUES ($1, $2, $3, $4, $5)
	`,
		msg.ID.String(),
		msg.Title,
		msg.Text,
		msg.Timestamp,
		msg.OwnerID.String(),
	)
	if err != nil {
		return oops.Code("MESSAGE_CREATE_FAILED").
			With("operation", "insert message").
			With("id", msg.ID.String()).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a message by ID.
func (r *MessageRepository) GetByID(ctx context.Context, id ulid.ULID) (*forum.Message, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, title, text, created_at, owner_id
		FROM messages
		WHERE id = $1
	`, id.String())

	msg, err := scanMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("MESSAGE_NOT_FOUND").
			With("id", id.String()).
			Wrap(forum.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("MESSAGE_GET_BY_ID_FAILED").
			With("operation", "get message by id").
			With("id", id.String()).
			Wrap(err)
	}
	return msg, nil
}

// Update rewrites the mutable fields of an existing message. owner_id and
// created_at are deliberately absent from the SET list.
func (r *MessageRepository) Update(ctx context.Context, msg *forum.Message) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE messages SET
			title = $2,
			text = $3
		WHERE id = $1
	`,
		msg.ID.String(),
		msg.Title,
		msg.Text,
	)
	if err != nil {
		return oops.Code("MESSAGE_UPDATE_FAILED").
			With("operation", "update message").
			With("id", msg.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("MESSAGE_NOT_FOUND").
			With("id", msg.ID.String()).
			Wrap(forum.ErrNotFound)
	}
	return nil
}

// Delete removes a message.
func (r *MessageRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM messages WHERE id = $1
	`, id.String())
	if err != nil {
		return oops.Code("MESSAGE_DELETE_FAILED").
			With("operation", "delete message").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("MESSAGE_NOT_FOUND").
			With("id", id.String()).
			Wrap(forum.ErrNotFound)
	}
	return nil
}

// List returns all messages ordered by title.
func (r *MessageRepository) List(ctx context.Context) ([]*forum.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, text, created_at, owner_id
		FROM messages
		ORDER BY title
	`)
	if err != nil {
		return nil, oops.Code("MESSAGE_LIST_FAILED").
			With("operation", "list messages").
			Wrap(err)
	}
	defer rows.Close()

	var msgs []*forum.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, oops.Code("MESSAGE_LIST_FAILED").
				With("operation", "scan message row").
				Wrap(err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("MESSAGE_LIST_FAILED").
			With("operation", "iterate messages").
			Wrap(err)
	}
	return msgs, nil
}

// Count returns the number of stored messages.
func (r *MessageRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	if err != nil {
		return 0, oops.Code("MESSAGE_COUNT_FAILED").
			With("operation", "count messages").
			Wrap(err)
	}
	return count, nil
}

// scanMessage scans a single row into a Message.
// Callers are responsible for handling pgx.ErrNoRows.
func scanMessage(row pgx.Row) (*forum.Message, error) {
	var (
		idStr      string
		title      string
		text       string
		createdAt  time.Time
		ownerIDStr string
	)

	if err := row.Scan(&idStr, &title, &text, &createdAt, &ownerIDStr); err != nil {
		return nil, err
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("MESSAGE_CORRUPT_ID").With("id", idStr).Wrap(err)
	}
	ownerID, err := ulid.Parse(ownerIDStr)
	if err != nil {
		return nil, oops.Code("MESSAGE_CORRUPT_ID").With("owner_id", ownerIDStr).Wrap(err)
	}

	return &forum.Message{
		ID:        id,
		Title:     title,
		Text:      text,
		Timestamp: createdAt,
		OwnerID:   ownerID,
	}, nil
}

// Compile-time interface check.
var _ forum.MessageRepository = (*MessageRepository)(nil)

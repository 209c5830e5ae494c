// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

package forum

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/memberboard/memberboard/internal/access"
	"github.com/memberboard/memberboard/internal/mutation"
)

// Service provides owner-gated access to message mutations. Every mutating
// operation takes the caller's resolved identity explicitly; there is no
// ambient session state in this layer.
//
// Mutation order is uniform: validate, load the target (not-found reported
// before authorization so the denial path never leaks existence), authorize
// against the recorded owner, then persist.
type Service struct {
	messages MessageRepository
	guard    access.AccessControl
}

// NewService creates a new Service. All dependencies are required.
func NewService(messages MessageRepository, guard access.AccessControl) (*Service, error) {
	if messages == nil {
		return nil, oops.Errorf("messages repository is required")
	}
	if guard == nil {
		return nil, oops.Errorf("access guard is required")
	}
	return &Service{messages: messages, guard: guard}, nil
}

// CreateMessage creates a message owned by the caller. Anonymous callers
// are denied before validation runs.
func (s *Service) CreateMessage(ctx context.Context, callerID ulid.ULID, draft Draft) (mutation.Result[*Message], error) {
	if callerID.IsZero() {
		return mutation.Denied[*Message](), nil
	}

	draft = draft.trimmed()
	if errs := draft.validate(); len(errs) > 0 {
		return mutation.Invalid[*Message](errs, draft.echo()), nil
	}

	msg, err := NewMessage(callerID, draft.Title, draft.Text)
	if err != nil {
		return mutation.Result[*Message]{}, oops.Code("MESSAGE_CREATE_FAILED").
			With("operation", "construct message").
			Wrap(err)
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return mutation.Result[*Message]{}, oops.Code("MESSAGE_CREATE_FAILED").
			With("operation", "insert message").
			With("id", msg.ID.String()).
			Wrap(err)
	}

	return mutation.OK(msg), nil
}

// UpdateMessage replaces the title and text of a message the caller owns.
// The owner and creation timestamp never change.
func (s *Service) UpdateMessage(ctx context.Context, callerID, messageID ulid.ULID, draft Draft) (mutation.Result[*Message], error) {
	draft = draft.trimmed()
	if errs := draft.validate(); len(errs) > 0 {
		return mutation.Invalid[*Message](errs, draft.echo()), nil
	}

	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return mutation.NotFound[*Message](), nil
		}
		return mutation.Result[*Message]{}, oops.Code("MESSAGE_UPDATE_FAILED").
			With("operation", "get message by id").
			With("id", messageID.String()).
			Wrap(err)
	}

	if !s.guard.Allows(callerID, msg.OwnerID) {
		return mutation.Denied[*Message](), nil
	}

	msg.SetContent(draft.Title, draft.Text)

	if err := s.messages.Update(ctx, msg); err != nil {
		return mutation.Result[*Message]{}, oops.Code("MESSAGE_UPDATE_FAILED").
			With("operation", "update message").
			With("id", messageID.String()).
			Wrap(err)
	}

	return mutation.OK(msg), nil
}

// DeleteMessage removes a message the caller owns. Existence is checked
// first, then ownership, then the delete runs, the same order as update.
func (s *Service) DeleteMessage(ctx context.Context, callerID, messageID ulid.ULID) (mutation.Result[*Message], error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return mutation.NotFound[*Message](), nil
		}
		return mutation.Result[*Message]{}, oops.Code("MESSAGE_DELETE_FAILED").
			With("operation", "get message by id").
			With("id", messageID.String()).
			Wrap(err)
	}

	if !s.guard.Allows(callerID, msg.OwnerID) {
		return mutation.Denied[*Message](), nil
	}

	if err := s.messages.Delete(ctx, messageID); err != nil {
		if errors.Is(err, ErrNotFound) {
			// Deleted concurrently between load and delete.
			return mutation.NotFound[*Message](), nil
		}
		return mutation.Result[*Message]{}, oops.Code("MESSAGE_DELETE_FAILED").
			With("operation", "delete message").
			With("id", messageID.String()).
			Wrap(err)
	}

	return mutation.OK(msg), nil
}

// GetMessage retrieves a single message for display.
func (s *Service) GetMessage(ctx context.Context, id ulid.ULID) (*Message, error) {
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err //nolint:wrapcheck // Sentinel passthrough for callers
		}
		return nil, oops.Code("MESSAGE_GET_FAILED").With("id", id.String()).Wrap(err)
	}
	return msg, nil
}

// ListMessages returns all messages ordered by title, for the listing page.
func (s *Service) ListMessages(ctx context.Context) ([]*Message, error) {
	msgs, err := s.messages.List(ctx)
	if err != nil {
		return nil, oops.Code("MESSAGE_LIST_FAILED").Wrap(err)
	}
	return msgs, nil
}

// CountMessages returns the number of stored messages, for the index page.
func (s *Service) CountMessages(ctx context.Context) (int64, error) {
	count, err := s.messages.Count(ctx)
	if err != nil {
		return 0, oops.Code("MESSAGE_COUNT_FAILED").Wrap(err)
	}
	return count, nil
}

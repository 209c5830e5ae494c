// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/memberboard/memberboard/internal/forum"
)

// draftRequest is the create/update message body.
type draftRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// messageResponse is the public shape of a message.
type messageResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	OwnerID   string    `json:"owner_id"`
}

func renderMessage(msg *forum.Message) any {
	return messageResponse{
		ID:        msg.ID.String(),
		Title:     msg.Title,
		Text:      msg.Text,
		Timestamp: msg.Timestamp,
		OwnerID:   msg.OwnerID.String(),
	}
}

// CreateMessage posts a new message owned by the caller.
func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.forum.CreateMessage(r.Context(), callerID(r.Context()), forum.Draft{
		Title: req.Title,
		Text:  req.Text,
	})
	if err != nil {
		h.internalError(w, r, "create message", err)
		return
	}

	h.recordMutation("message", "create", res.Status.String())
	writeResult(w, res, http.StatusCreated, func(msg *forum.Message) any {
		return renderMessage(msg)
	})
}

// GetMessage returns a single message.
func (h *Handler) GetMessage(w http.ResponseWriter, r *http.Request) {
	id, err := ulid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "no such message")
		return
	}

	msg, err := h.forum.GetMessage(r.Context(), id)
	if err != nil {
		if errors.Is(err, forum.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no such message")
			return
		}
		h.internalError(w, r, "get message", err)
		return
	}
	writeJSON(w, http.StatusOK, renderMessage(msg))
}

// ListMessages returns all messages ordered by title.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.forum.ListMessages(r.Context())
	if err != nil {
		h.internalError(w, r, "list messages", err)
		return
	}

	out := make([]any, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, renderMessage(msg))
	}
	writeJSON(w, http.StatusOK, out)
}

// UpdateMessage edits a message the caller owns.
func (h *Handler) UpdateMessage(w http.ResponseWriter, r *http.Request) {
	id, err := ulid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "no such message")
		return
	}

	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.forum.UpdateMessage(r.Context(), callerID(r.Context()), id, forum.Draft{
		Title: req.Title,
		Text:  req.Text,
	})
	if err != nil {
		h.internalError(w, r, "update message", err)
		return
	}

	h.recordMutation("message", "update", res.Status.String())
	writeResult(w, res, http.StatusOK, func(msg *forum.Message) any {
		return renderMessage(msg)
	})
}

// DeleteMessage removes a message the caller owns.
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, err := ulid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "no such message")
		return
	}

	res, err := h.forum.DeleteMessage(r.Context(), callerID(r.Context()), id)
	if err != nil {
		h.internalError(w, r, "delete message", err)
		return
	}

	h.recordMutation("message", "delete", res.Status.String())
	writeResult[*forum.Message](w, res, http.StatusNoContent, nil)
}

// Stats returns board-level counts for the index page.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	members, err := h.identities.Count(r.Context())
	if err != nil {
		h.internalError(w, r, "count identities", err)
		return
	}
	messages, err := h.forum.CountMessages(r.Context())
	if err != nil {
		h.internalError(w, r, "count messages", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{
		"members":  members,
		"messages": messages,
	})
}

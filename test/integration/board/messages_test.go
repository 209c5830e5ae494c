// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

//go:build integration

package board_test

import (
	"context"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/memberboard/memberboard/internal/auth"
	"github.com/memberboard/memberboard/internal/forum"
	"github.com/memberboard/memberboard/internal/mutation"
)

var _ = Describe("Message Board", func() {
	var (
		ctx   context.Context
		alice *auth.Identity
		bob   *auth.Identity
	)

	draft := forum.Draft{
		Title: "Board rules",
		Text:  "Read this before posting anything here.",
	}

	BeforeEach(func() {
		ctx = context.Background()
		cleanupBoard(ctx, env.pool)
		alice = registerMember(ctx, "alice", "Secret1pass")
		bob = registerMember(ctx, "bob", "Secret1pass")
	})

	post := func(owner *auth.Identity, d forum.Draft) *forum.Message {
		res, err := env.Forum.CreateMessage(ctx, owner.ID, d)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Applied()).To(BeTrue(), "create rejected: %+v", res)
		return res.Record
	}

	Describe("Posting", func() {
		It("persists a message owned by the author", func() {
			msg := post(alice, draft)

			stored, err := env.Forum.GetMessage(ctx, msg.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Title).To(Equal("Board rules"))
			Expect(stored.OwnerID).To(Equal(alice.ID))
		})

		It("denies anonymous posting", func() {
			res, err := env.Forum.CreateMessage(ctx, ulid.ULID{}, draft)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(mutation.StatusDenied))
		})
	})

	Describe("Editing", func() {
		It("lets the owner edit", func() {
			msg := post(alice, draft)

			res, err := env.Forum.UpdateMessage(ctx, alice.ID, msg.ID, forum.Draft{
				Title: "House rules",
				Text:  "Updated rules for everyone to follow.",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Applied()).To(BeTrue())

			stored, err := env.Forum.GetMessage(ctx, msg.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Title).To(Equal("House rules"))
			Expect(stored.OwnerID).To(Equal(alice.ID))
		})

		It("denies edits by anyone else", func() {
			msg := post(alice, draft)

			res, err := env.Forum.UpdateMessage(ctx, bob.ID, msg.ID, forum.Draft{
				Title: "Hijacked!",
				Text:  "This edit must never be applied.",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(mutation.StatusDenied))

			stored, err := env.Forum.GetMessage(ctx, msg.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Title).To(Equal("Board rules"))
		})
	})

	Describe("Deleting", func() {
		It("lets the owner delete", func() {
			msg := post(alice, draft)

			res, err := env.Forum.DeleteMessage(ctx, alice.ID, msg.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Applied()).To(BeTrue())

			_, err = env.Forum.GetMessage(ctx, msg.ID)
			Expect(err).To(MatchError(forum.ErrNotFound))
		})

		It("denies deletes by anyone else", func() {
			msg := post(alice, draft)

			res, err := env.Forum.DeleteMessage(ctx, bob.ID, msg.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(mutation.StatusDenied))

			_, err = env.Forum.GetMessage(ctx, msg.ID)
			Expect(err).NotTo(HaveOccurred())
		})

		It("removes a member's messages with the owning account", func() {
			msg := post(alice, draft)

			_, err := env.pool.Exec(ctx, "DELETE FROM identities WHERE id = $1", alice.ID.String())
			Expect(err).NotTo(HaveOccurred())

			_, err = env.Forum.GetMessage(ctx, msg.ID)
			Expect(err).To(MatchError(forum.ErrNotFound))
		})
	})

	Describe("Listing", func() {
		It("orders messages by title", func() {
			post(alice, forum.Draft{Title: "Zoo trips", Text: "Planning the next zoo visit."})
			post(bob, forum.Draft{Title: "About cats", Text: "Everything about our cats."})

			msgs, err := env.Forum.ListMessages(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(msgs).To(HaveLen(2))
			Expect(msgs[0].Title).To(Equal("About cats"))
			Expect(msgs[1].Title).To(Equal("Zoo trips"))

			count, err := env.Forum.CountMessages(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(2)))
		})
	})
})

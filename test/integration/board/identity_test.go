// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Memberboard Contributors

//go:build integration

package board_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/memberboard/memberboard/internal/auth"
	"github.com/memberboard/memberboard/internal/mutation"
)

var _ = Describe("Identity Lifecycle", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
		cleanupBoard(ctx, env.pool)
	})

	Describe("Registration", func() {
		It("stores a hash, never the password", func() {
			identity := registerMember(ctx, "alice", "Secret1pass")

			stored, err := env.Identities.GetByID(ctx, identity.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.CredentialHash).To(HavePrefix("$argon2id$"))
			Expect(stored.CredentialHash).NotTo(ContainSubstring("Secret1pass"))
		})

		It("rejects a taken username", func() {
			registerMember(ctx, "alice", "Secret1pass")

			res, err := env.IdentityAdmin.Register(ctx, auth.Credentials{
				Username: "alice",
				Password: "Another1pass",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(mutation.StatusConflict))
		})
	})

	Describe("Login", func() {
		It("opens a session that resolves back to the member", func() {
			identity := registerMember(ctx, "alice", "Secret1pass")

			session, token, err := env.Auth.Login(ctx, "alice", "Secret1pass")
			Expect(err).NotTo(HaveOccurred())
			Expect(session.IdentityID).To(Equal(identity.ID))

			current, err := env.Auth.CurrentIdentity(ctx, token)
			Expect(err).NotTo(HaveOccurred())
			Expect(current).NotTo(BeNil())
			Expect(current.Username).To(Equal("alice"))
		})

		It("rejects a wrong password", func() {
			registerMember(ctx, "alice", "Secret1pass")

			_, _, err := env.Auth.Login(ctx, "alice", "Wrong1pass")
			Expect(err).To(HaveOccurred())
		})

		It("resolves nobody after logout", func() {
			registerMember(ctx, "alice", "Secret1pass")
			_, token, err := env.Auth.Login(ctx, "alice", "Secret1pass")
			Expect(err).NotTo(HaveOccurred())

			Expect(env.Auth.LogoutByToken(ctx, token)).To(Succeed())

			current, err := env.Auth.CurrentIdentity(ctx, token)
			Expect(err).NotTo(HaveOccurred())
			Expect(current).To(BeNil())
		})
	})

	Describe("Credential update", func() {
		It("lets a member change their own username", func() {
			identity := registerMember(ctx, "alice", "Secret1pass")

			res, err := env.IdentityAdmin.Update(ctx, identity.ID, identity.ID, auth.Credentials{
				Username: "alice-renamed",
				Password: "Secret1pass",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Applied()).To(BeTrue())

			stored, err := env.Identities.GetByID(ctx, identity.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Username).To(Equal("alice-renamed"))
		})

		It("denies changing someone else's credentials", func() {
			alice := registerMember(ctx, "alice", "Secret1pass")
			bob := registerMember(ctx, "bob", "Secret1pass")

			res, err := env.IdentityAdmin.Update(ctx, bob.ID, alice.ID, auth.Credentials{
				Username: "stolen",
				Password: "Secret1pass",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(mutation.StatusDenied))

			stored, err := env.Identities.GetByID(ctx, alice.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Username).To(Equal("alice"))
		})
	})

	Describe("Session pruning", func() {
		It("removes only expired sessions", func() {
			identity := registerMember(ctx, "alice", "Secret1pass")

			_, liveToken, err := env.Auth.Login(ctx, "alice", "Secret1pass")
			Expect(err).NotTo(HaveOccurred())

			_, expiredHash, err := auth.GenerateSessionToken()
			Expect(err).NotTo(HaveOccurred())
			expired, err := auth.NewSession(identity.ID, expiredHash, time.Now().Add(-time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(env.Sessions.Create(ctx, expired)).To(Succeed())

			pruned, err := env.Auth.PruneExpiredSessions(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(pruned).To(Equal(int64(1)))

			current, err := env.Auth.CurrentIdentity(ctx, liveToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(current).NotTo(BeNil())
		})
	})
})

package service_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"runhub/internal/domain"
	"runhub/internal/service"
	"runhub/internal/store/memory"
)

func TestSendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture(t)
		alice, bob := f.user("alice"), f.user("bob")
		cid := f.directConversation(t, alice, bob)

		msg, err := f.msgs.SendMessage(ctx, "bob", "  hello  ", cid)
		require.NoError(t, err)
		assert.Equal(t, "hello", msg.MessageContent)
		assert.Equal(t, bob.ID, msg.Sender.ID)
		assert.Equal(t, "bob", msg.Sender.Username)
		assert.Equal(t, []domain.UserSummary{{ID: bob.ID, Username: "bob"}}, msg.ReadBy)
		assert.Equal(t, cid, msg.ConversationID)

		updates := f.pub.conversationUpdates()
		require.Len(t, updates, 1)
		assert.Equal(t, cid, updates[0].ID)
		require.Len(t, updates[0].Messages, 1)
		assert.Equal(t, msg.ID, updates[0].Messages[0].ID)
		assert.Equal(t, msg.SentAt, updates[0].UpdatedAt)
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.MessagesSent.WithLabelValues(service.KindDirect)))
	})

	t.Run("NotAParticipant", func(t *testing.T) {
		f := newFixture(t)
		alice, bob := f.user("alice"), f.user("bob")
		f.user("carol")
		cid := f.directConversation(t, alice, bob)

		_, err := f.msgs.SendMessage(ctx, "carol", "let me in", cid)
		assert.ErrorIs(t, err, domain.ErrNotAParticipant)

		pc, err := f.convs.GetConversation(ctx, cid)
		require.NoError(t, err)
		assert.Empty(t, pc.Messages)
		assert.Empty(t, f.pub.conversationUpdates())
	})

	t.Run("DeletedParticipant", func(t *testing.T) {
		f := newFixture(t)
		alice, bob := f.user("alice"), f.user("bob")
		cid := f.directConversation(t, alice, bob)
		f.db.SoftDeleteUser(bob.ID)

		_, err := f.msgs.SendMessage(ctx, "alice", "anyone?", cid)
		assert.ErrorIs(t, err, domain.ErrUnregisteredParticipant)

		_, err = f.msgs.SendMessage(ctx, "bob", "still here", cid)
		assert.ErrorIs(t, err, domain.ErrUnregisteredParticipant)
	})

	t.Run("InvalidInput", func(t *testing.T) {
		f := newFixture(t)
		alice, bob := f.user("alice"), f.user("bob")
		cid := f.directConversation(t, alice, bob)

		_, err := f.msgs.SendMessage(ctx, "alice", "   ", cid)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)

		_, err = f.msgs.SendMessage(ctx, "alice", "hi", "123")
		assert.ErrorIs(t, err, domain.ErrMalformedID)

		_, err = f.msgs.SendMessage(ctx, "alice", "hi", domain.NewID())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("FailedAppendLeavesNoMessage", func(t *testing.T) {
		db := memory.NewDB()
		convs := &failingConversations{ConversationRepository: memory.NewConversationRepo(db), failWith: errBoom}
		repos := service.Repositories{
			Users:         memory.NewUserRepo(db),
			Conversations: convs,
			Messages:      memory.NewMessageRepo(db),
			Notifications: memory.NewNotificationRepo(db),
		}
		f := newFixtureWithRepos(t, db, repos)
		alice, bob := f.user("alice"), f.user("bob")
		cid := f.directConversation(t, alice, bob)
		convs.failAppend(cid)

		_, err := f.msgs.SendMessage(ctx, "alice", "lost", cid)
		assert.ErrorIs(t, err, domain.ErrStore)
		assert.ErrorIs(t, err, errBoom)

		pc, err := f.convs.GetConversation(ctx, cid)
		require.NoError(t, err)
		assert.Empty(t, pc.Messages)
		assert.Empty(t, f.pub.conversationUpdates())
	})
}

func TestMarkAsRead(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice, bob := f.user("alice"), f.user("bob")
	cid := f.directConversation(t, alice, bob)

	quiet := service.NewMessageService(f.repos, service.NopPublisher{}, nil, zap.NewNop())
	sent, err := quiet.SendMessage(ctx, "alice", "did you run today?", cid)
	require.NoError(t, err)

	t.Run("AddsReader", func(t *testing.T) {
		msg, err := f.msgs.MarkAsRead(ctx, sent.ID, bob.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{alice.ID, bob.ID}, readerIDs(msg))

		updates := f.pub.conversationUpdates()
		require.Len(t, updates, 1)
		assert.Equal(t, cid, updates[0].ID)
		assert.ElementsMatch(t, []string{alice.ID, bob.ID}, readerIDs(&updates[0].Messages[0]))
	})

	t.Run("Idempotent", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			msg, err := f.msgs.MarkAsRead(ctx, sent.ID, bob.ID)
			require.NoError(t, err)
			assert.Len(t, msg.ReadBy, 2)
		}
		msg, err := f.msgs.MarkAsRead(ctx, sent.ID, alice.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{alice.ID, bob.ID}, readerIDs(msg))
	})

	t.Run("Errors", func(t *testing.T) {
		_, err := f.msgs.MarkAsRead(ctx, "", bob.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)

		_, err = f.msgs.MarkAsRead(ctx, "nope", bob.ID)
		assert.ErrorIs(t, err, domain.ErrMalformedID)

		_, err = f.msgs.MarkAsRead(ctx, sent.ID, domain.NewID())
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = f.msgs.MarkAsRead(ctx, domain.NewID(), bob.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func readerIDs(m *domain.PopulatedMessage) []string {
	ids := make([]string, len(m.ReadBy))
	for i, r := range m.ReadBy {
		ids[i] = r.ID
	}
	return ids
}

package service_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runhub/internal/domain"
	"runhub/internal/service"
	"runhub/internal/store/memory"
)

func TestSendBlastMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("ExistingAndNewConversations", func(t *testing.T) {
		f := newFixture(t)
		alice, bob, carol := f.user("alice"), f.user("bob"), f.user("carol")
		f.db.Follow(bob.ID, alice.ID)
		f.db.Follow(carol.ID, alice.ID)
		ab := f.directConversation(t, alice, bob, "morning run?")

		res, err := f.blast.SendBlastMessage(ctx, alice.ID, "hi all")
		require.NoError(t, err)
		assert.NotEmpty(t, res.BlastID)
		assert.Empty(t, res.Failed)
		require.Len(t, res.ConversationIDs, 2)
		assert.Contains(t, res.ConversationIDs, ab)
		assert.Equal(t, 2, f.db.ConversationCount())

		abConv, err := f.convs.GetConversation(ctx, ab)
		require.NoError(t, err)
		require.Len(t, abConv.Messages, 2)
		assert.Equal(t, "hi all", abConv.Messages[1].MessageContent)

		acConv, _, err := f.convs.FindOrCreateConversation(ctx, alice, carol)
		require.NoError(t, err)
		assert.Contains(t, res.ConversationIDs, acConv.ID)
		require.Len(t, acConv.Messages, 1)

		assert.Len(t, f.pub.conversationUpdates(), 2)
		events := f.pub.notificationEvents()
		require.Len(t, events, 2)
		recipients := []string{}
		for _, ev := range events {
			assert.Equal(t, domain.NotificationAdded, ev.Type)
			assert.Equal(t, "alice", ev.Notification.Message.Sender.Username)
			recipients = append(recipients, ev.Notification.User)
		}
		assert.ElementsMatch(t, []string{"bob", "carol"}, recipients)
		assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.BlastFollowers.WithLabelValues("succeeded")))
		assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.MessagesSent.WithLabelValues(service.KindBlast)))
	})

	t.Run("NotificationsMatchAppendedMessages", func(t *testing.T) {
		f := newFixture(t)
		sender := f.user("coach")
		followers := []*domain.User{f.user("f1"), f.user("f2"), f.user("f3")}
		for _, fl := range followers {
			f.db.Follow(fl.ID, sender.ID)
		}

		res, err := f.blast.SendBlastMessage(ctx, sender.ID, "intervals at 6")
		require.NoError(t, err)
		require.Len(t, res.ConversationIDs, 3)
		assert.Equal(t, 3, f.db.NotificationCount())

		for _, fl := range followers {
			ns, err := f.notifs.ListNotifications(ctx, fl.Username)
			require.NoError(t, err)
			require.Len(t, ns, 1)

			conv, _, err := f.convs.FindOrCreateConversation(ctx, sender, fl)
			require.NoError(t, err)
			require.Len(t, conv.Messages, 1)
			assert.Equal(t, conv.Messages[0], ns[0].Message.ID)
			assert.Equal(t, sender.ID, ns[0].Message.Sender.ID)
		}
		ns, err := f.notifs.ListNotifications(ctx, "coach")
		require.NoError(t, err)
		assert.Empty(t, ns)
	})

	t.Run("NoFollowers", func(t *testing.T) {
		f := newFixture(t)
		loner := f.user("loner")

		res, err := f.blast.SendBlastMessage(ctx, loner.ID, "hello?")
		require.NoError(t, err)
		assert.Empty(t, res.ConversationIDs)
		assert.False(t, res.AllFailed())
		assert.Empty(t, f.pub.notificationEvents())
	})

	t.Run("SkipsDeletedFollowers", func(t *testing.T) {
		f := newFixture(t)
		alice, bob, gone := f.user("alice"), f.user("bob"), f.user("gone")
		f.db.Follow(bob.ID, alice.ID)
		f.db.Follow(gone.ID, alice.ID)
		f.db.SoftDeleteUser(gone.ID)

		res, err := f.blast.SendBlastMessage(ctx, alice.ID, "hi")
		require.NoError(t, err)
		assert.Len(t, res.ConversationIDs, 1)
		assert.Equal(t, 1, f.db.NotificationCount())
	})

	t.Run("Errors", func(t *testing.T) {
		f := newFixture(t)
		alice := f.user("alice")

		_, err := f.blast.SendBlastMessage(ctx, alice.ID, "  ")
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)

		_, err = f.blast.SendBlastMessage(ctx, "bad", "hi")
		assert.ErrorIs(t, err, domain.ErrMalformedID)

		_, err = f.blast.SendBlastMessage(ctx, domain.NewID(), "hi")
		assert.ErrorIs(t, err, domain.ErrUnregisteredUser)
	})
}

func TestSendBlastMessagePartialFailure(t *testing.T) {
	ctx := context.Background()

	db := memory.NewDB()
	convs := &failingConversations{ConversationRepository: memory.NewConversationRepo(db), failWith: errBoom}
	notifs := &failingNotifications{
		NotificationRepository: memory.NewNotificationRepo(db),
		failFor:                map[string]bool{"carol": true},
	}
	repos := service.Repositories{
		Users:         memory.NewUserRepo(db),
		Conversations: convs,
		Messages:      memory.NewMessageRepo(db),
		Notifications: notifs,
	}
	f := newFixtureWithRepos(t, db, repos)

	alice, bob, carol, dave := f.user("alice"), f.user("bob"), f.user("carol"), f.user("dave")
	for _, u := range []*domain.User{bob, carol, dave} {
		f.db.Follow(u.ID, alice.ID)
	}
	ab := f.directConversation(t, alice, bob)
	convs.failAppend(ab)

	res, err := f.blast.SendBlastMessage(ctx, alice.ID, "hi all")
	require.NoError(t, err)
	assert.False(t, res.AllFailed())
	require.Len(t, res.ConversationIDs, 1)
	require.Len(t, res.Failed, 2)

	byUser := map[string]service.BlastFailure{}
	for _, fl := range res.Failed {
		byUser[fl.Username] = fl
	}
	assert.Equal(t, service.StageMessage, byUser["bob"].Stage)
	assert.Equal(t, domain.CodeStore, byUser["bob"].Reason)
	assert.Equal(t, service.StageNotification, byUser["carol"].Stage)

	// bob's message was rolled back together with the failed append.
	abConv, err := f.convs.GetConversation(ctx, ab)
	require.NoError(t, err)
	assert.Empty(t, abConv.Messages)

	// carol's message was retracted with her notification.
	acConv, _, err := f.convs.FindOrCreateConversation(ctx, alice, carol)
	require.NoError(t, err)
	assert.Empty(t, acConv.Messages)

	adConv, _, err := f.convs.FindOrCreateConversation(ctx, alice, dave)
	require.NoError(t, err)
	assert.Equal(t, []string{adConv.ID}, res.ConversationIDs)
	require.Len(t, adConv.Messages, 1)

	assert.Equal(t, 1, f.db.MessageCount())
	assert.Equal(t, 1, f.db.NotificationCount())
	assert.Len(t, f.pub.notificationEvents(), 1)
	updates := f.pub.conversationUpdates()
	require.Len(t, updates, 1)
	assert.Equal(t, adConv.ID, updates[0].ID)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.BlastFollowers.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.MessagesSent.WithLabelValues(service.KindBlast)))
}

func TestSendBlastMessageAllFailed(t *testing.T) {
	ctx := context.Background()

	db := memory.NewDB()
	notifs := &failingNotifications{
		NotificationRepository: memory.NewNotificationRepo(db),
		failFor:                map[string]bool{"bob": true},
	}
	repos := service.Repositories{
		Users:         memory.NewUserRepo(db),
		Conversations: memory.NewConversationRepo(db),
		Messages:      memory.NewMessageRepo(db),
		Notifications: notifs,
	}
	f := newFixtureWithRepos(t, db, repos)
	alice, bob := f.user("alice"), f.user("bob")
	f.db.Follow(bob.ID, alice.ID)

	res, err := f.blast.SendBlastMessage(ctx, alice.ID, "hi")
	require.NoError(t, err)
	assert.True(t, res.AllFailed())

	conv, _, err := f.convs.FindOrCreateConversation(ctx, alice, bob)
	require.NoError(t, err)
	assert.Empty(t, conv.Messages)
	assert.Equal(t, 0, f.db.MessageCount())
	assert.Empty(t, f.pub.conversationUpdates())
	assert.Empty(t, f.pub.notificationEvents())
}

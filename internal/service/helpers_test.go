package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"runhub/internal/domain"
	"runhub/internal/observability"
	"runhub/internal/service"
	"runhub/internal/store/memory"
)

// MockPublisher records fan-out events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishConversationUpdate(ctx context.Context, conv *domain.PopulatedConversation) {
	m.Called(ctx, conv)
}

func (m *MockPublisher) PublishNotificationsUpdate(ctx context.Context, ev domain.NotificationEvent) {
	m.Called(ctx, ev)
}

func newMockPublisher() *MockPublisher {
	p := new(MockPublisher)
	p.On("PublishConversationUpdate", mock.Anything, mock.Anything).Return()
	p.On("PublishNotificationsUpdate", mock.Anything, mock.Anything).Return()
	return p
}

func (m *MockPublisher) conversationUpdates() []*domain.PopulatedConversation {
	var res []*domain.PopulatedConversation
	for _, c := range m.Calls {
		if c.Method == "PublishConversationUpdate" {
			res = append(res, c.Arguments.Get(1).(*domain.PopulatedConversation))
		}
	}
	return res
}

func (m *MockPublisher) notificationEvents() []domain.NotificationEvent {
	var res []domain.NotificationEvent
	for _, c := range m.Calls {
		if c.Method == "PublishNotificationsUpdate" {
			res = append(res, c.Arguments.Get(1).(domain.NotificationEvent))
		}
	}
	return res
}

type fixture struct {
	db      *memory.DB
	repos   service.Repositories
	pub     *MockPublisher
	metrics *observability.Metrics
	convs   *service.ConversationService
	msgs    *service.MessageService
	blast   *service.BlastService
	notifs  *service.NotificationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.NewDB()
	repos := service.Repositories{
		Users:         memory.NewUserRepo(db),
		Conversations: memory.NewConversationRepo(db),
		Messages:      memory.NewMessageRepo(db),
		Notifications: memory.NewNotificationRepo(db),
	}
	return newFixtureWithRepos(t, db, repos)
}

func newFixtureWithRepos(t *testing.T, db *memory.DB, repos service.Repositories) *fixture {
	t.Helper()
	f := &fixture{
		db:      db,
		repos:   repos,
		pub:     newMockPublisher(),
		metrics: observability.NewMetrics("runhub_test"),
	}
	logger := zap.NewNop()
	f.convs = service.NewConversationService(repos, f.metrics, logger)
	f.msgs = service.NewMessageService(repos, f.pub, f.metrics, logger)
	f.blast = service.NewBlastService(repos, f.convs, f.msgs, f.pub, 4, f.metrics, logger)
	f.notifs = service.NewNotificationService(repos, f.pub, logger)
	return f
}

func (f *fixture) user(name string) *domain.User {
	return f.db.PutUser(&domain.User{Username: name})
}

// directConversation creates a conversation and sends the given messages
// without touching the fixture's publisher.
func (f *fixture) directConversation(t *testing.T, sender *domain.User, other *domain.User, messages ...string) string {
	t.Helper()
	ctx := context.Background()
	pc, err := f.convs.CreateConversation(ctx, []service.ParticipantRef{
		{ID: sender.ID, Username: sender.Username},
		{ID: other.ID, Username: other.Username},
	})
	require.NoError(t, err)

	quiet := service.NewMessageService(f.repos, service.NopPublisher{}, nil, zap.NewNop())
	for _, m := range messages {
		_, err := quiet.SendMessage(ctx, sender.Username, m, pc.ID)
		require.NoError(t, err)
	}
	return pc.ID
}

var errBoom = errors.New("boom")

// failingConversations fails AppendMessage for selected conversations.
type failingConversations struct {
	domain.ConversationRepository
	mu       sync.Mutex
	failFor  map[string]bool
	failWith error
}

func (r *failingConversations) failAppend(conversationID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFor == nil {
		r.failFor = map[string]bool{}
	}
	r.failFor[conversationID] = true
}

func (r *failingConversations) AppendMessage(ctx context.Context, conversationID, messageID string, at time.Time) error {
	r.mu.Lock()
	fail := r.failFor[conversationID]
	r.mu.Unlock()
	if fail {
		return domain.StoreError("conversations.appendMessage", conversationID, r.failWith)
	}
	return r.ConversationRepository.AppendMessage(ctx, conversationID, messageID, at)
}

// failingNotifications fails Create for selected recipients.
type failingNotifications struct {
	domain.NotificationRepository
	failFor map[string]bool
}

func (r *failingNotifications) Create(ctx context.Context, n *domain.Notification) error {
	if r.failFor[n.User] {
		return domain.StoreError("notifications.create", n.User, errBoom)
	}
	return r.NotificationRepository.Create(ctx, n)
}

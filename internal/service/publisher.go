package service

import (
	"context"

	"runhub/internal/domain"
)

// EventPublisher pushes real-time events to connected clients. Delivery is
// fire-and-forget: implementations log their own failures and never report
// them back to the caller.
type EventPublisher interface {
	PublishConversationUpdate(ctx context.Context, conv *domain.PopulatedConversation)
	PublishNotificationsUpdate(ctx context.Context, ev domain.NotificationEvent)
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) PublishConversationUpdate(context.Context, *domain.PopulatedConversation) {}
func (NopPublisher) PublishNotificationsUpdate(context.Context, domain.NotificationEvent)     {}

// Repositories bundles the store contracts the services depend on.
type Repositories struct {
	Users         domain.UserRepository
	Conversations domain.ConversationRepository
	Messages      domain.MessageRepository
	Notifications domain.NotificationRepository
}

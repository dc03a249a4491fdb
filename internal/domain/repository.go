package domain

import (
	"context"
	"time"
)

// ParticipantMatch selects how a participant set is compared against stored
// conversations.
type ParticipantMatch int

const (
	// MatchExact requires the stored set to equal the queried set.
	MatchExact ParticipantMatch = iota
	// MatchSuperset requires the stored set to contain the queried set.
	MatchSuperset
)

// UserRepository is the lookup side of the external user directory.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*User, error)
	// ListFollowers returns the registered (non-deleted) followers of userID.
	ListFollowers(ctx context.Context, userID string) ([]*User, error)
}

// ConversationRepository defines persistence operations for conversations.
type ConversationRepository interface {
	Create(ctx context.Context, c *Conversation) error
	GetByID(ctx context.Context, id string) (*Conversation, error)
	FindByParticipants(ctx context.Context, userIDs []string, match ParticipantMatch) ([]*Conversation, error)
	// AppendMessage atomically appends messageID and advances updatedAt to at.
	AppendMessage(ctx context.Context, conversationID, messageID string, at time.Time) error
	// RemoveMessage pulls messageID from the conversation. updatedAt is left as is.
	RemoveMessage(ctx context.Context, conversationID, messageID string) error
}

// MessageRepository defines persistence operations for messages.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id string) (*Message, error)
	GetByIDs(ctx context.Context, ids []string) ([]*Message, error)
	// AddReader adds userID to readBy if absent and returns the updated message.
	AddReader(ctx context.Context, messageID, userID string) (*Message, error)
	Delete(ctx context.Context, id string) error
}

// NotificationRepository defines persistence operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id string) (*Notification, error)
	ListForUser(ctx context.Context, username string) ([]*Notification, error)
	Delete(ctx context.Context, id string) (bool, error)
}

package domain

import (
	"sort"
	"strings"
	"time"
)

// User is the read-only view of an account in the user directory.
type User struct {
	ID        string   `json:"_id"`
	Username  string   `json:"username"`
	Deleted   bool     `json:"deleted"`
	Following []string `json:"following"`
	Followers []string `json:"followers"`
}

// IsRegistered reports whether u resolves to a live (not soft-deleted) account.
func (u *User) IsRegistered() bool {
	return u != nil && !u.Deleted
}

// Conversation is a persistent participant set and its ordered messages.
type Conversation struct {
	ID             string    `json:"_id"`
	Users          []string  `json:"users"`
	ParticipantKey string    `json:"-"`
	Messages       []string  `json:"messages"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// HasParticipant reports whether userID is part of the conversation.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, id := range c.Users {
		if id == userID {
			return true
		}
	}
	return false
}

// Message is a single chat message. ReadBy only ever grows.
type Message struct {
	ID             string    `json:"_id"`
	MessageContent string    `json:"messageContent"`
	Sender         string    `json:"sender"`
	SentAt         time.Time `json:"sentAt"`
	ReadBy         []string  `json:"readBy"`
	ConversationID string    `json:"conversationId"`
}

// Notification tells a follower about a blast message addressed to them.
type Notification struct {
	ID        string    `json:"_id"`
	User      string    `json:"user"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserSummary is the populated form of a user reference.
type UserSummary struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

// PopulatedMessage is a message with its user references resolved.
type PopulatedMessage struct {
	ID             string        `json:"_id"`
	MessageContent string        `json:"messageContent"`
	Sender         UserSummary   `json:"sender"`
	SentAt         time.Time     `json:"sentAt"`
	ReadBy         []UserSummary `json:"readBy"`
	ConversationID string        `json:"conversationId"`
}

// PopulatedConversation is the shape pushed to clients on conversationUpdate.
type PopulatedConversation struct {
	ID        string             `json:"_id"`
	Users     []UserSummary      `json:"users"`
	Messages  []PopulatedMessage `json:"messages"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// PopulatedNotification is a notification with its message resolved.
type PopulatedNotification struct {
	ID        string           `json:"_id"`
	User      string           `json:"user"`
	Message   PopulatedMessage `json:"message"`
	CreatedAt time.Time        `json:"createdAt"`
}

// ParticipantKey returns the canonical identity of a participant set:
// the distinct ids, sorted and comma-joined.
func ParticipantKey(userIDs []string) string {
	return strings.Join(UniqueSorted(userIDs), ",")
}

// UniqueSorted returns the distinct values of ids in ascending order.
func UniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

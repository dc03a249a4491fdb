package memory

import (
	"context"
	"sort"
	"time"

	"runhub/internal/domain"
)

type ConversationRepo struct {
	db *DB
}

func NewConversationRepo(db *DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

var _ domain.ConversationRepository = (*ConversationRepo)(nil)

func (r *ConversationRepo) Create(ctx context.Context, c *domain.Conversation) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	key := domain.ParticipantKey(c.Users)
	if _, exists := r.db.convKeys[key]; exists {
		return domain.DuplicateConversation("conversations.create", key)
	}
	if c.ID == "" {
		c.ID = domain.NewID()
	}
	c.ParticipantKey = key
	if c.Messages == nil {
		c.Messages = []string{}
	}
	r.db.conversations[c.ID] = copyConversation(c)
	r.db.convKeys[key] = c.ID
	return nil
}

func (r *ConversationRepo) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	if c, ok := r.db.conversations[id]; ok {
		return copyConversation(c), nil
	}
	return nil, nil
}

func (r *ConversationRepo) FindByParticipants(ctx context.Context, userIDs []string, match domain.ParticipantMatch) ([]*domain.Conversation, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	want := domain.UniqueSorted(userIDs)
	var res []*domain.Conversation
	for _, c := range r.db.conversations {
		if !containsAll(c.Users, want) {
			continue
		}
		if match == domain.MatchExact && len(c.Users) != len(want) {
			continue
		}
		res = append(res, copyConversation(c))
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].UpdatedAt.After(res[j].UpdatedAt)
	})
	return res, nil
}

func (r *ConversationRepo) AppendMessage(ctx context.Context, conversationID, messageID string, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	c, ok := r.db.conversations[conversationID]
	if !ok {
		return domain.NotFound("conversations.appendMessage", "conversation", conversationID)
	}
	c.Messages = append(c.Messages, messageID)
	if at.After(c.UpdatedAt) {
		c.UpdatedAt = at
	}
	return nil
}

func (r *ConversationRepo) RemoveMessage(ctx context.Context, conversationID, messageID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	c, ok := r.db.conversations[conversationID]
	if !ok {
		return domain.NotFound("conversations.removeMessage", "conversation", conversationID)
	}
	kept := c.Messages[:0]
	for _, id := range c.Messages {
		if id != messageID {
			kept = append(kept, id)
		}
	}
	c.Messages = kept
	return nil
}

func containsAll(have, want []string) bool {
	for _, id := range want {
		if !contains(have, id) {
			return false
		}
	}
	return true
}

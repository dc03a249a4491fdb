package service

import (
	"context"
	"fmt"

	"runhub/internal/domain"
)

// populator resolves id references into the read models sent to clients.
type populator struct {
	users    domain.UserRepository
	messages domain.MessageRepository
}

func (p *populator) conversation(ctx context.Context, c *domain.Conversation) (*domain.PopulatedConversation, error) {
	msgs, err := p.messages.GetByIDs(ctx, c.Messages)
	if err != nil {
		return nil, fmt.Errorf("load messages of %s: %w", c.ID, err)
	}

	ids := append([]string(nil), c.Users...)
	for _, m := range msgs {
		ids = append(ids, m.Sender)
		ids = append(ids, m.ReadBy...)
	}
	users, err := p.userIndex(ctx, ids)
	if err != nil {
		return nil, err
	}

	res := &domain.PopulatedConversation{
		ID:        c.ID,
		Users:     summaries(c.Users, users),
		Messages:  make([]domain.PopulatedMessage, 0, len(msgs)),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	for _, m := range msgs {
		res.Messages = append(res.Messages, populateMessage(m, users))
	}
	return res, nil
}

func (p *populator) message(ctx context.Context, m *domain.Message) (*domain.PopulatedMessage, error) {
	users, err := p.userIndex(ctx, append([]string{m.Sender}, m.ReadBy...))
	if err != nil {
		return nil, err
	}
	pm := populateMessage(m, users)
	return &pm, nil
}

// notifications populates ns in order. Notifications whose message no longer
// exists are dropped.
func (p *populator) notifications(ctx context.Context, ns []*domain.Notification) ([]*domain.PopulatedNotification, error) {
	if len(ns) == 0 {
		return []*domain.PopulatedNotification{}, nil
	}
	msgIDs := make([]string, len(ns))
	for i, n := range ns {
		msgIDs[i] = n.Message
	}
	msgs, err := p.messages.GetByIDs(ctx, msgIDs)
	if err != nil {
		return nil, fmt.Errorf("load notification messages: %w", err)
	}

	byID := make(map[string]*domain.Message, len(msgs))
	var userIDs []string
	for _, m := range msgs {
		byID[m.ID] = m
		userIDs = append(userIDs, m.Sender)
		userIDs = append(userIDs, m.ReadBy...)
	}
	users, err := p.userIndex(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	res := make([]*domain.PopulatedNotification, 0, len(ns))
	for _, n := range ns {
		m, ok := byID[n.Message]
		if !ok {
			continue
		}
		res = append(res, &domain.PopulatedNotification{
			ID:        n.ID,
			User:      n.User,
			Message:   populateMessage(m, users),
			CreatedAt: n.CreatedAt,
		})
	}
	return res, nil
}

func (p *populator) userIndex(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	users, err := p.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	idx := make(map[string]*domain.User, len(users))
	for _, u := range users {
		idx[u.ID] = u
	}
	return idx, nil
}

func populateMessage(m *domain.Message, users map[string]*domain.User) domain.PopulatedMessage {
	return domain.PopulatedMessage{
		ID:             m.ID,
		MessageContent: m.MessageContent,
		Sender:         summary(m.Sender, users),
		SentAt:         m.SentAt,
		ReadBy:         summaries(m.ReadBy, users),
		ConversationID: m.ConversationID,
	}
}

// summary keeps the id even when the account is gone so clients can still
// render the reference.
func summary(id string, users map[string]*domain.User) domain.UserSummary {
	s := domain.UserSummary{ID: id}
	if u, ok := users[id]; ok {
		s.Username = u.Username
	}
	return s
}

func summaries(ids []string, users map[string]*domain.User) []domain.UserSummary {
	res := make([]domain.UserSummary, len(ids))
	for i, id := range ids {
		res[i] = summary(id, users)
	}
	return res
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"runhub/internal/domain"
	"runhub/internal/observability"
)

// Message kinds reported to metrics.
const (
	KindDirect = "direct"
	KindBlast  = "blast"
)

type MessageService struct {
	conversations domain.ConversationRepository
	messages      domain.MessageRepository
	users         domain.UserRepository
	publisher     EventPublisher
	pop           *populator
	metrics       *observability.Metrics
	logger        *zap.Logger
	now           func() time.Time
}

func NewMessageService(
	repos Repositories,
	publisher EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *MessageService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &MessageService{
		conversations: repos.Conversations,
		messages:      repos.Messages,
		users:         repos.Users,
		publisher:     publisher,
		pop:           &populator{users: repos.Users, messages: repos.Messages},
		metrics:       metrics,
		logger:        logger,
		now:           time.Now,
	}
}

// SendMessage posts content from senderUsername into an existing
// conversation and pushes the updated conversation to clients.
func (s *MessageService) SendMessage(
	ctx context.Context,
	senderUsername, content, conversationID string,
) (*domain.PopulatedMessage, error) {
	const op = "sendMessage"

	content = strings.TrimSpace(content)
	senderUsername = strings.TrimSpace(senderUsername)
	if content == "" || senderUsername == "" || conversationID == "" {
		return nil, domain.InvalidRequest(op, "sender, content and conversation id are required")
	}
	if !domain.IsValidID(conversationID) {
		return nil, domain.MalformedID(op, "conversation id", conversationID)
	}

	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if conv == nil {
		return nil, domain.NotFound(op, "conversation", conversationID)
	}

	sender, err := s.users.GetByUsername(ctx, senderUsername)
	if err != nil {
		return nil, fmt.Errorf("resolve sender: %w", err)
	}
	if !sender.IsRegistered() {
		return nil, domain.UnregisteredParticipant(op, senderUsername)
	}

	participants, err := s.users.GetByIDs(ctx, conv.Users)
	if err != nil {
		return nil, fmt.Errorf("resolve participants: %w", err)
	}
	live := make(map[string]bool, len(participants))
	for _, u := range participants {
		live[u.ID] = u.IsRegistered()
	}
	for _, id := range conv.Users {
		if !live[id] {
			return nil, domain.UnregisteredParticipant(op, id)
		}
	}

	if !conv.HasParticipant(sender.ID) {
		return nil, domain.NotAParticipant(op, senderUsername, conversationID)
	}

	msg, err := s.deliver(ctx, conv.ID, sender.ID, content, KindDirect)
	if err != nil {
		return nil, err
	}
	return s.pop.message(ctx, msg)
}

// MarkAsRead adds userID to the readers of a message. Marking twice is a
// no-op success.
func (s *MessageService) MarkAsRead(ctx context.Context, messageID, userID string) (*domain.PopulatedMessage, error) {
	const op = "markAsRead"

	if messageID == "" || userID == "" {
		return nil, domain.InvalidRequest(op, "message id and user id are required")
	}
	if !domain.IsValidID(messageID) {
		return nil, domain.MalformedID(op, "message id", messageID)
	}
	if !domain.IsValidID(userID) {
		return nil, domain.MalformedID(op, "user id", userID)
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve reader: %w", err)
	}
	if !u.IsRegistered() {
		return nil, domain.NotFound(op, "user", userID)
	}

	msg, err := s.messages.AddReader(ctx, messageID, userID)
	if err != nil {
		return nil, fmt.Errorf("mark as read: %w", err)
	}
	if msg == nil {
		return nil, domain.NotFound(op, "message", messageID)
	}

	s.publishConversation(ctx, msg.ConversationID)
	return s.pop.message(ctx, msg)
}

// deliver stores a message and publishes conversationUpdate.
func (s *MessageService) deliver(
	ctx context.Context,
	conversationID, senderID, content, kind string,
) (*domain.Message, error) {
	msg, err := s.store(ctx, conversationID, senderID, content)
	if err != nil {
		return nil, err
	}
	s.announce(ctx, msg, kind)
	return msg, nil
}

// store persists the message and appends it to its conversation. A failed
// append removes the message again.
func (s *MessageService) store(
	ctx context.Context,
	conversationID, senderID, content string,
) (*domain.Message, error) {
	msg := &domain.Message{
		MessageContent: content,
		Sender:         senderID,
		SentAt:         s.now(),
		ReadBy:         []string{senderID},
		ConversationID: conversationID,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}

	if err := s.conversations.AppendMessage(ctx, conversationID, msg.ID, msg.SentAt); err != nil {
		if derr := s.messages.Delete(ctx, msg.ID); derr != nil {
			s.logger.Error("remove orphaned message",
				zap.String("message_id", msg.ID),
				zap.Error(derr))
		}
		return nil, fmt.Errorf("append message: %w", err)
	}
	return msg, nil
}

// retract undoes store for a message that was never announced.
func (s *MessageService) retract(ctx context.Context, msg *domain.Message) {
	if err := s.conversations.RemoveMessage(ctx, msg.ConversationID, msg.ID); err != nil {
		s.logger.Error("retract message from conversation",
			zap.String("message_id", msg.ID),
			zap.String("conversation_id", msg.ConversationID),
			zap.Error(err))
		return
	}
	if err := s.messages.Delete(ctx, msg.ID); err != nil {
		s.logger.Error("retract message",
			zap.String("message_id", msg.ID),
			zap.Error(err))
	}
}

// announce records a stored message and publishes its conversation.
func (s *MessageService) announce(ctx context.Context, msg *domain.Message, kind string) {
	s.metrics.MessageSent(kind)
	s.logger.Debug("message sent",
		zap.String("message_id", msg.ID),
		zap.String("conversation_id", msg.ConversationID),
		zap.String("kind", kind))
	s.publishConversation(ctx, msg.ConversationID)
}

// publishConversation re-reads the conversation and pushes it. The write that
// triggered it has already succeeded, so failures here are only logged.
func (s *MessageService) publishConversation(ctx context.Context, conversationID string) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil || conv == nil {
		s.logger.Warn("skip conversationUpdate: conversation unavailable",
			zap.String("conversation_id", conversationID),
			zap.Error(err))
		return
	}
	pc, err := s.pop.conversation(ctx, conv)
	if err != nil {
		s.logger.Warn("skip conversationUpdate: populate failed",
			zap.String("conversation_id", conversationID),
			zap.Error(err))
		return
	}
	s.publisher.PublishConversationUpdate(ctx, pc)
}

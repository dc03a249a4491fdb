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

type ConversationService struct {
	conversations domain.ConversationRepository
	users         domain.UserRepository
	pop           *populator
	metrics       *observability.Metrics
	logger        *zap.Logger
	now           func() time.Time
}

func NewConversationService(
	repos Repositories,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ConversationService {
	return &ConversationService{
		conversations: repos.Conversations,
		users:         repos.Users,
		pop:           &populator{users: repos.Users, messages: repos.Messages},
		metrics:       metrics,
		logger:        logger,
		now:           time.Now,
	}
}

// ParticipantRef is a user reference as submitted by a client. Only the
// username is trusted; the record is re-read from the directory.
type ParticipantRef struct {
	ID       string
	Username string
}

// CreateConversation creates a conversation for a participant set that has
// none yet. Asking for an existing set fails with CodeDuplicateConversation.
func (s *ConversationService) CreateConversation(
	ctx context.Context,
	participants []ParticipantRef,
) (*domain.PopulatedConversation, error) {
	const op = "createConversation"

	usernames := make([]string, 0, len(participants))
	seen := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		name := strings.TrimSpace(p.Username)
		if name == "" {
			return nil, domain.InvalidRequest(op, "every participant needs a username")
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		usernames = append(usernames, name)
	}
	if len(usernames) < 2 {
		return nil, domain.InvalidRequest(op, "a conversation needs at least two distinct users")
	}

	ids := make([]string, 0, len(usernames))
	for _, name := range usernames {
		u, err := s.users.GetByUsername(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolve participant %s: %w", name, err)
		}
		if !u.IsRegistered() {
			return nil, domain.UnregisteredUser(op, name)
		}
		ids = append(ids, u.ID)
	}
	ids = domain.UniqueSorted(ids)

	existing, err := s.conversations.FindByParticipants(ctx, ids, domain.MatchExact)
	if err != nil {
		return nil, fmt.Errorf("find existing conversation: %w", err)
	}
	if len(existing) > 0 {
		return nil, domain.DuplicateConversation(op, domain.ParticipantKey(ids))
	}

	conv, err := s.create(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.pop.conversation(ctx, conv)
}

// FindOrCreateConversation returns the 1:1 conversation between a and b,
// creating it when absent. created reports whether this call created it.
func (s *ConversationService) FindOrCreateConversation(
	ctx context.Context,
	a, b *domain.User,
) (conv *domain.Conversation, created bool, err error) {
	const op = "findOrCreateConversation"

	if a == nil || b == nil || a.ID == b.ID {
		return nil, false, domain.InvalidRequest(op, "a direct conversation needs two distinct users")
	}
	ids := domain.UniqueSorted([]string{a.ID, b.ID})

	conv, err = s.findExactlyOne(ctx, op, ids)
	if err != nil || conv != nil {
		return conv, false, err
	}

	conv, err = s.create(ctx, ids)
	if domain.ErrorCode(err) == domain.CodeDuplicateConversation {
		// Lost a creation race; the winner is now visible.
		conv, err = s.findExactlyOne(ctx, op, ids)
		if err == nil && conv == nil {
			err = domain.DuplicateData(op, "conversation reported as existing but not found")
		}
		return conv, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return conv, true, nil
}

func (s *ConversationService) GetConversation(ctx context.Context, conversationID string) (*domain.PopulatedConversation, error) {
	const op = "getConversation"

	if conversationID == "" {
		return nil, domain.InvalidRequest(op, "conversation id is required")
	}
	if !domain.IsValidID(conversationID) {
		return nil, domain.MalformedID(op, "conversation id", conversationID)
	}
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	if conv == nil {
		return nil, domain.NotFound(op, "conversation", conversationID)
	}
	return s.pop.conversation(ctx, conv)
}

// ListForUser returns every conversation userID takes part in, most recently
// updated first.
func (s *ConversationService) ListForUser(ctx context.Context, userID string) ([]*domain.PopulatedConversation, error) {
	const op = "getConversations"

	if userID == "" {
		return nil, domain.InvalidRequest(op, "user id is required")
	}
	if !domain.IsValidID(userID) {
		return nil, domain.MalformedID(op, "user id", userID)
	}
	convs, err := s.conversations.FindByParticipants(ctx, []string{userID}, domain.MatchSuperset)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	res := make([]*domain.PopulatedConversation, 0, len(convs))
	for _, c := range convs {
		pc, err := s.pop.conversation(ctx, c)
		if err != nil {
			return nil, err
		}
		res = append(res, pc)
	}
	return res, nil
}

func (s *ConversationService) create(ctx context.Context, ids []string) (*domain.Conversation, error) {
	now := s.now()
	conv := &domain.Conversation{
		Users:     ids,
		Messages:  []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	s.metrics.ConversationCreated()
	s.logger.Info("conversation created",
		zap.String("conversation_id", conv.ID),
		zap.Strings("users", ids))
	return conv, nil
}

func (s *ConversationService) findExactlyOne(ctx context.Context, op string, ids []string) (*domain.Conversation, error) {
	found, err := s.conversations.FindByParticipants(ctx, ids, domain.MatchExact)
	if err != nil {
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return found[0], nil
	default:
		s.logger.Error("duplicate conversations for participant set",
			zap.Strings("users", ids),
			zap.Int("count", len(found)))
		return nil, domain.DuplicateData(op,
			fmt.Sprintf("%d conversations for participants [%s]", len(found), domain.ParticipantKey(ids)))
	}
}

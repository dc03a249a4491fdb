package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"runhub/internal/domain"
	"runhub/internal/observability"
)

// Stages of a single follower delivery, reported in BlastFailure.
const (
	StageConversation = "conversation"
	StageMessage      = "message"
	StageNotification = "notification"
)

// DefaultBlastConcurrency bounds concurrent follower deliveries when no
// explicit limit is configured.
const DefaultBlastConcurrency = 8

// BlastFailure describes one follower the blast could not reach.
type BlastFailure struct {
	FollowerID string      `json:"followerId"`
	Username   string      `json:"username"`
	Stage      string      `json:"stage"`
	Reason     domain.Code `json:"reason"`
}

// BlastResult summarizes a blast. Followers that succeeded are not rolled
// back when others fail.
type BlastResult struct {
	BlastID         string         `json:"blastId"`
	ConversationIDs []string       `json:"conversationIds"`
	Failed          []BlastFailure `json:"failed"`
}

// AllFailed reports whether there was at least one follower and none of them
// were reached.
func (r *BlastResult) AllFailed() bool {
	return len(r.Failed) > 0 && len(r.ConversationIDs) == 0
}

type BlastService struct {
	users         domain.UserRepository
	notifications domain.NotificationRepository
	convs         *ConversationService
	msgs          *MessageService
	publisher     EventPublisher
	pop           *populator
	concurrency   int
	metrics       *observability.Metrics
	logger        *zap.Logger
	now           func() time.Time
}

func NewBlastService(
	repos Repositories,
	convs *ConversationService,
	msgs *MessageService,
	publisher EventPublisher,
	concurrency int,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *BlastService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if concurrency < 1 {
		concurrency = DefaultBlastConcurrency
	}
	return &BlastService{
		users:         repos.Users,
		notifications: repos.Notifications,
		convs:         convs,
		msgs:          msgs,
		publisher:     publisher,
		pop:           &populator{users: repos.Users, messages: repos.Messages},
		concurrency:   concurrency,
		metrics:       metrics,
		logger:        logger,
		now:           time.Now,
	}
}

// SendBlastMessage sends content to every registered follower of senderID as
// a message in their 1:1 conversation, plus a notification. Followers are
// processed independently on a bounded pool.
func (s *BlastService) SendBlastMessage(ctx context.Context, senderID, content string) (*BlastResult, error) {
	const op = "sendBlastMessage"

	content = strings.TrimSpace(content)
	if content == "" || senderID == "" {
		return nil, domain.InvalidRequest(op, "sender id and content are required")
	}
	if !domain.IsValidID(senderID) {
		return nil, domain.MalformedID(op, "sender id", senderID)
	}

	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("resolve sender: %w", err)
	}
	if !sender.IsRegistered() {
		return nil, domain.UnregisteredUser(op, senderID)
	}

	followers, err := s.users.ListFollowers(ctx, sender.ID)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}

	res := &BlastResult{
		BlastID:         uuid.NewString(),
		ConversationIDs: []string{},
		Failed:          []BlastFailure{},
	}
	log := s.logger.With(zap.String("blast_id", res.BlastID), zap.String("sender_id", sender.ID))

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.concurrency)

	for _, f := range followers {
		if f.ID == sender.ID || !f.IsRegistered() {
			continue
		}
		follower := f
		g.Go(func() error {
			cid, stage, err := s.deliverTo(ctx, sender, follower, content)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn("blast delivery failed",
					zap.String("follower_id", follower.ID),
					zap.String("stage", stage),
					zap.Error(err))
				s.metrics.BlastFollower("failed")
				res.Failed = append(res.Failed, BlastFailure{
					FollowerID: follower.ID,
					Username:   follower.Username,
					Stage:      stage,
					Reason:     domain.ErrorCode(err),
				})
				return nil
			}
			s.metrics.BlastFollower("succeeded")
			res.ConversationIDs = append(res.ConversationIDs, cid)
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(res.ConversationIDs)
	sort.Slice(res.Failed, func(i, j int) bool {
		return res.Failed[i].FollowerID < res.Failed[j].FollowerID
	})

	log.Info("blast finished",
		zap.Int("followers", len(res.ConversationIDs)+len(res.Failed)),
		zap.Int("failed", len(res.Failed)))
	return res, nil
}

// deliverTo runs the per-follower sequence and returns the conversation id,
// or the stage that failed. Nothing is published until both the message and
// its notification are stored, and a failed notification retracts the message.
func (s *BlastService) deliverTo(
	ctx context.Context,
	sender, follower *domain.User,
	content string,
) (string, string, error) {
	conv, _, err := s.convs.FindOrCreateConversation(ctx, sender, follower)
	if err != nil {
		return "", StageConversation, err
	}

	msg, err := s.msgs.store(ctx, conv.ID, sender.ID, content)
	if err != nil {
		return "", StageMessage, err
	}

	n := &domain.Notification{
		User:      follower.Username,
		Message:   msg.ID,
		CreatedAt: s.now(),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		s.msgs.retract(ctx, msg)
		return "", StageNotification, fmt.Errorf("create notification: %w", err)
	}
	s.metrics.NotificationCreated()
	s.msgs.announce(ctx, msg, KindBlast)

	pn := &domain.PopulatedNotification{ID: n.ID, User: n.User, CreatedAt: n.CreatedAt}
	if populated, err := s.pop.notifications(ctx, []*domain.Notification{n}); err != nil {
		s.logger.Warn("populate notification", zap.String("notification_id", n.ID), zap.Error(err))
	} else if len(populated) == 1 {
		pn = populated[0]
	}
	s.publisher.PublishNotificationsUpdate(ctx, domain.NotificationEvent{
		Notification: pn,
		Type:         domain.NotificationAdded,
	})
	return conv.ID, "", nil
}

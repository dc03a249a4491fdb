package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"runhub/internal/domain"
)

type NotificationService struct {
	notifications domain.NotificationRepository
	publisher     EventPublisher
	pop           *populator
	logger        *zap.Logger
}

func NewNotificationService(repos Repositories, publisher EventPublisher, logger *zap.Logger) *NotificationService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &NotificationService{
		notifications: repos.Notifications,
		publisher:     publisher,
		pop:           &populator{users: repos.Users, messages: repos.Messages},
		logger:        logger,
	}
}

// ListNotifications returns the notifications addressed to username, newest
// message first. Ties keep insertion order.
func (s *NotificationService) ListNotifications(ctx context.Context, username string) ([]*domain.PopulatedNotification, error) {
	const op = "getNotifications"

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.InvalidRequest(op, "username is required")
	}
	ns, err := s.notifications.ListForUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	res, err := s.pop.notifications(ctx, ns)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Message.SentAt.After(res[j].Message.SentAt)
	})
	return res, nil
}

// GetNotification returns the stored notification, or nil when it does not
// exist.
func (s *NotificationService) GetNotification(ctx context.Context, notificationID string) (*domain.Notification, error) {
	const op = "getNotification"

	if notificationID == "" {
		return nil, domain.InvalidRequest(op, "notification id is required")
	}
	if !domain.IsValidID(notificationID) {
		return nil, domain.MalformedID(op, "notification id", notificationID)
	}
	n, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return nil, fmt.Errorf("load notification: %w", err)
	}
	return n, nil
}

// DeleteNotification removes one notification and reports whether it existed.
// The referenced message is left alone.
func (s *NotificationService) DeleteNotification(ctx context.Context, notificationID string) (bool, error) {
	const op = "deleteNotification"

	if notificationID == "" {
		return false, domain.InvalidRequest(op, "notification id is required")
	}
	if !domain.IsValidID(notificationID) {
		return false, domain.MalformedID(op, "notification id", notificationID)
	}

	n, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return false, fmt.Errorf("load notification: %w", err)
	}
	removed, err := s.notifications.Delete(ctx, notificationID)
	if err != nil {
		return false, fmt.Errorf("delete notification: %w", err)
	}
	if !removed || n == nil {
		return removed, nil
	}

	pn := &domain.PopulatedNotification{ID: n.ID, User: n.User, CreatedAt: n.CreatedAt}
	if populated, err := s.pop.notifications(ctx, []*domain.Notification{n}); err == nil && len(populated) == 1 {
		pn = populated[0]
	} else if err != nil {
		s.logger.Warn("populate removed notification", zap.String("notification_id", n.ID), zap.Error(err))
	}
	s.publisher.PublishNotificationsUpdate(ctx, domain.NotificationEvent{
		Notification: pn,
		Type:         domain.NotificationRemoved,
	})
	return true, nil
}

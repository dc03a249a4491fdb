package memory

import (
	"context"

	"runhub/internal/domain"
)

type NotificationRepo struct {
	db *DB
}

func NewNotificationRepo(db *DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

var _ domain.NotificationRepository = (*NotificationRepo)(nil)

func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if n.ID == "" {
		n.ID = domain.NewID()
	}
	cp := *n
	r.db.notifications[n.ID] = &cp
	r.db.notifOrder = append(r.db.notifOrder, n.ID)
	return nil
}

func (r *NotificationRepo) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	if n, ok := r.db.notifications[id]; ok {
		cp := *n
		return &cp, nil
	}
	return nil, nil
}

// ListForUser returns the user's notifications in insertion order.
func (r *NotificationRepo) ListForUser(ctx context.Context, username string) ([]*domain.Notification, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var res []*domain.Notification
	for _, id := range r.db.notifOrder {
		n, ok := r.db.notifications[id]
		if !ok || n.User != username {
			continue
		}
		cp := *n
		res = append(res, &cp)
	}
	return res, nil
}

func (r *NotificationRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.notifications[id]; !ok {
		return false, nil
	}
	delete(r.db.notifications, id)
	for i, v := range r.db.notifOrder {
		if v == id {
			r.db.notifOrder = append(r.db.notifOrder[:i], r.db.notifOrder[i+1:]...)
			break
		}
	}
	return true, nil
}

package memory

import (
	"context"

	"runhub/internal/domain"
)

type MessageRepo struct {
	db *DB
}

func NewMessageRepo(db *DB) *MessageRepo {
	return &MessageRepo{db: db}
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if m.ID == "" {
		m.ID = domain.NewID()
	}
	r.db.messages[m.ID] = copyMessage(m)
	return nil
}

func (r *MessageRepo) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	if m, ok := r.db.messages[id]; ok {
		return copyMessage(m), nil
	}
	return nil, nil
}

func (r *MessageRepo) GetByIDs(ctx context.Context, ids []string) ([]*domain.Message, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	res := make([]*domain.Message, 0, len(ids))
	for _, id := range ids {
		if m, ok := r.db.messages[id]; ok {
			res = append(res, copyMessage(m))
		}
	}
	return res, nil
}

func (r *MessageRepo) AddReader(ctx context.Context, messageID, userID string) (*domain.Message, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	m, ok := r.db.messages[messageID]
	if !ok {
		return nil, nil
	}
	if !contains(m.ReadBy, userID) {
		m.ReadBy = append(m.ReadBy, userID)
	}
	return copyMessage(m), nil
}

func (r *MessageRepo) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	delete(r.db.messages, id)
	return nil
}

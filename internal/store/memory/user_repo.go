package memory

import (
	"context"

	"runhub/internal/domain"
)

type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

var _ domain.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	if u, ok := r.db.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (r *UserRepo) GetByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	res := make([]*domain.User, 0, len(ids))
	for _, id := range domain.UniqueSorted(ids) {
		if u, ok := r.db.users[id]; ok {
			res = append(res, copyUser(u))
		}
	}
	return res, nil
}

func (r *UserRepo) ListFollowers(ctx context.Context, userID string) ([]*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[userID]
	if !ok {
		return nil, nil
	}
	var res []*domain.User
	for _, id := range u.Followers {
		if f, ok := r.db.users[id]; ok && !f.Deleted {
			res = append(res, copyUser(f))
		}
	}
	return res, nil
}

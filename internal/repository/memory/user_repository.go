package memory

import (
	"context"
	"fmt"
	"time"

	"parking-billing/internal/domain"
)

type UserRepository struct {
	st *state
}

func (r *UserRepository) Init(ctx context.Context) error { return nil }

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	for _, u := range r.st.users {
		if u.Email == user.Email || u.APIKey == user.APIKey {
			return 0, fmt.Errorf("user already exists: %w", domain.ErrConflict)
		}
	}

	now := time.Now().UTC()
	r.st.nextUser++
	user.ID = r.st.nextUser
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	r.st.users[user.ID] = &stored
	return user.ID, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	u, ok := r.st.users[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
	}
	out := *u
	return &out, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *UserRepository) GetByAPIKey(ctx context.Context, apiKey string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.APIKey == apiKey })
}

func (r *UserRepository) AdjustBalance(ctx context.Context, id int64, delta float64) (float64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	u, ok := r.st.users[id]
	if !ok {
		return 0, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	u.Balance += delta
	u.UpdatedAt = time.Now().UTC()
	return u.Balance, nil
}

func (r *UserRepository) find(match func(*domain.User) bool) (*domain.User, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	for _, u := range r.st.users {
		if match(u) {
			out := *u
			return &out, nil
		}
	}
	return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
}

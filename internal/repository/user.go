package repository

import (
	"context"

	"parking-billing/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.User, error)
	// AdjustBalance adds delta to the user's balance and returns the result.
	AdjustBalance(ctx context.Context, id int64, delta float64) (float64, error)
}

package repository

import (
	"context"

	"parking-billing/internal/domain"
)

// ZoneRepository is the zone directory.
type ZoneRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, zone *domain.Zone) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Zone, error)
	List(ctx context.Context) ([]domain.Zone, error)
	Delete(ctx context.Context, id int64) error
}

package repository

import (
	"context"

	"parking-billing/internal/domain"
)

// VehicleRepository is the per-user plate registry.
type VehicleRepository interface {
	Init(ctx context.Context) error
	// Create fails with domain.ErrConflict when the user already owns the plate.
	Create(ctx context.Context, vehicle *domain.Vehicle) (int64, error)
	GetByPlate(ctx context.Context, userID int64, plate string) (*domain.Vehicle, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Vehicle, error)
}

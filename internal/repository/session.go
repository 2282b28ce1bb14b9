package repository

import (
	"context"

	"parking-billing/internal/domain"
)

// SessionRepository exposes persistence operations for parking sessions.
type SessionRepository interface {
	Init(ctx context.Context) error
	// Create fails with domain.ErrConflict when the vehicle already has an active session.
	Create(ctx context.Context, session *domain.ParkingSession) (int64, error)
	Get(ctx context.Context, id int64) (*domain.ParkingSession, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.ParkingSession, error)
	ActiveForVehicle(ctx context.Context, vehicleID int64) (*domain.ParkingSession, error)
	// Settle persists the closed session and debits the owner's balance by
	// debit in one atomic step. It fails with domain.ErrUnprocessable when the
	// stored session is no longer active.
	Settle(ctx context.Context, session *domain.ParkingSession, debit float64) error
}

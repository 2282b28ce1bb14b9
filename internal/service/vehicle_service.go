package service

import (
	"context"
	"fmt"
	"strings"

	"parking-billing/internal/domain"
	"parking-billing/internal/repository"
)

// VehicleService is the per-user plate registry.
type VehicleService interface {
	Register(ctx context.Context, userID int64, plate string) (*domain.Vehicle, error)
	List(ctx context.Context, userID int64) ([]domain.Vehicle, error)
}

type vehicleService struct {
	vehicles repository.VehicleRepository
}

func NewVehicleService(vehicles repository.VehicleRepository) VehicleService {
	return &vehicleService{vehicles: vehicles}
}

func (s *vehicleService) Register(ctx context.Context, userID int64, plate string) (*domain.Vehicle, error) {
	plate = strings.TrimSpace(plate)
	if plate == "" {
		return nil, fmt.Errorf("plate is required: %w", domain.ErrValidation)
	}

	vehicle := &domain.Vehicle{UserID: userID, Plate: plate}
	if _, err := s.vehicles.Create(ctx, vehicle); err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (s *vehicleService) List(ctx context.Context, userID int64) ([]domain.Vehicle, error) {
	return s.vehicles.ListByUser(ctx, userID)
}

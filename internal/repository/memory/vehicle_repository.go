package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"parking-billing/internal/domain"
)

type VehicleRepository struct {
	st *state
}

func (r *VehicleRepository) Init(ctx context.Context) error { return nil }

func (r *VehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	key := domain.NormalizePlate(vehicle.Plate)
	for _, v := range r.st.vehicles {
		if v.UserID == vehicle.UserID && domain.NormalizePlate(v.Plate) == key {
			return 0, fmt.Errorf("vehicle %q already registered: %w", vehicle.Plate, domain.ErrConflict)
		}
	}

	r.st.nextVehicle++
	vehicle.ID = r.st.nextVehicle
	vehicle.CreatedAt = time.Now().UTC()
	stored := *vehicle
	r.st.vehicles[vehicle.ID] = &stored
	return vehicle.ID, nil
}

func (r *VehicleRepository) GetByPlate(ctx context.Context, userID int64, plate string) (*domain.Vehicle, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	key := domain.NormalizePlate(plate)
	for _, v := range r.st.vehicles {
		if v.UserID == userID && domain.NormalizePlate(v.Plate) == key {
			out := *v
			return &out, nil
		}
	}
	return nil, fmt.Errorf("vehicle: %w", domain.ErrNotFound)
}

func (r *VehicleRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Vehicle, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	vehicles := []domain.Vehicle{}
	for _, v := range r.st.vehicles {
		if v.UserID == userID {
			vehicles = append(vehicles, *v)
		}
	}
	sort.Slice(vehicles, func(i, j int) bool { return vehicles[i].ID < vehicles[j].ID })
	return vehicles, nil
}

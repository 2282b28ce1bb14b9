// Package memory provides map-backed repositories sharing one lock, used for
// tests and for running without a database.
package memory

import (
	"sync"

	"parking-billing/internal/domain"
	"parking-billing/internal/repository"
)

type state struct {
	mu sync.RWMutex

	users    map[int64]*domain.User
	zones    map[int64]*domain.Zone
	vehicles map[int64]*domain.Vehicle
	sessions map[int64]*domain.ParkingSession

	nextUser    int64
	nextZone    int64
	nextVehicle int64
	nextSession int64
}

// Store bundles the in-memory repositories.
type Store struct {
	Users    repository.UserRepository
	Zones    repository.ZoneRepository
	Vehicles repository.VehicleRepository
	Sessions repository.SessionRepository
}

// NewStore returns empty repositories whose ids all start at 1.
func NewStore() *Store {
	st := &state{
		users:    make(map[int64]*domain.User),
		zones:    make(map[int64]*domain.Zone),
		vehicles: make(map[int64]*domain.Vehicle),
		sessions: make(map[int64]*domain.ParkingSession),
	}
	return &Store{
		Users:    &UserRepository{st: st},
		Zones:    &ZoneRepository{st: st},
		Vehicles: &VehicleRepository{st: st},
		Sessions: &SessionRepository{st: st},
	}
}

package memory

import (
	"context"
	"fmt"
	"sort"

	"parking-billing/internal/domain"
)

type SessionRepository struct {
	st *state
}

func (r *SessionRepository) Init(ctx context.Context) error { return nil }

func (r *SessionRepository) Create(ctx context.Context, session *domain.ParkingSession) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if session.IsActive() {
		for _, s := range r.st.sessions {
			if s.VehicleID == session.VehicleID && s.IsActive() {
				return 0, fmt.Errorf("vehicle %d already parked: %w", session.VehicleID, domain.ErrConflict)
			}
		}
	}

	r.st.nextSession++
	session.ID = r.st.nextSession
	r.st.sessions[session.ID] = cloneSession(session)
	return session.ID, nil
}

func (r *SessionRepository) Get(ctx context.Context, id int64) (*domain.ParkingSession, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	s, ok := r.st.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session: %w", domain.ErrNotFound)
	}
	return cloneSession(s), nil
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID int64) ([]domain.ParkingSession, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	sessions := []domain.ParkingSession{}
	for _, s := range r.st.sessions {
		if s.UserID == userID {
			sessions = append(sessions, *cloneSession(s))
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID > sessions[j].ID })
	return sessions, nil
}

func (r *SessionRepository) ActiveForVehicle(ctx context.Context, vehicleID int64) (*domain.ParkingSession, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	for _, s := range r.st.sessions {
		if s.VehicleID == vehicleID && s.IsActive() {
			return cloneSession(s), nil
		}
	}
	return nil, fmt.Errorf("session: %w", domain.ErrNotFound)
}

func (r *SessionRepository) Settle(ctx context.Context, session *domain.ParkingSession, debit float64) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	stored, ok := r.st.sessions[session.ID]
	if !ok {
		return fmt.Errorf("session %d: %w", session.ID, domain.ErrNotFound)
	}
	if !stored.IsActive() {
		return fmt.Errorf("session %d is not active: %w", session.ID, domain.ErrUnprocessable)
	}
	user, ok := r.st.users[session.UserID]
	if !ok {
		return fmt.Errorf("user %d: %w", session.UserID, domain.ErrNotFound)
	}

	user.Balance -= debit
	r.st.sessions[session.ID] = cloneSession(session)
	return nil
}

// cloneSession copies s including its pointer fields so callers never share
// memory with the store.
func cloneSession(s *domain.ParkingSession) *domain.ParkingSession {
	out := *s
	if s.EndedAt != nil {
		t := *s.EndedAt
		out.EndedAt = &t
	}
	out.Minutes = cloneInt(s.Minutes)
	out.MaxMinutes = cloneInt(s.MaxMinutes)
	out.Cost = cloneFloat(s.Cost)
	out.Fine = cloneFloat(s.Fine)
	out.RatePerMin = cloneFloat(s.RatePerMin)
	return &out
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

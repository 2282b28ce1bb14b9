package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"parking-billing/internal/billing"
	"parking-billing/internal/domain"
	"parking-billing/internal/lock"
	"parking-billing/internal/receipts"
	"parking-billing/internal/repository"
)

// Clock returns the current time. Tests replace it to control durations.
type Clock func() time.Time

// ReceiptSink receives a receipt for every settled session.
type ReceiptSink interface {
	Enqueue(r receipts.Receipt) bool
}

// SessionView is a session together with its priced outcome.
type SessionView struct {
	Session   domain.ParkingSession
	Minutes   int
	BaseCost  float64
	Fined     bool
	Fine      float64
	CostTotal float64
}

// SessionService owns the parking session lifecycle and settlement.
type SessionService interface {
	Start(ctx context.Context, userID int64, plate string, zoneID int64) (*domain.ParkingSession, error)
	Stop(ctx context.Context, userID, sessionID int64) (*domain.ParkingSession, error)
	Get(ctx context.Context, userID, sessionID int64) (*SessionView, error)
	List(ctx context.Context, userID int64) ([]SessionView, error)
}

type SessionDeps struct {
	Users    repository.UserRepository
	Zones    repository.ZoneRepository
	Vehicles repository.VehicleRepository
	Sessions repository.SessionRepository
	Locker   lock.Locker
	Receipts ReceiptSink
	Clock    Clock
	Logger   *logrus.Logger
}

type sessionService struct {
	users    repository.UserRepository
	zones    repository.ZoneRepository
	vehicles repository.VehicleRepository
	sessions repository.SessionRepository
	locker   lock.Locker
	receipts ReceiptSink
	now      Clock
	logger   *logrus.Logger
}

func NewSessionService(deps SessionDeps) SessionService {
	if deps.Locker == nil {
		deps.Locker = lock.NewLocal()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = logrus.New()
	}
	return &sessionService{
		users:    deps.Users,
		zones:    deps.Zones,
		vehicles: deps.Vehicles,
		sessions: deps.Sessions,
		locker:   deps.Locker,
		receipts: deps.Receipts,
		now:      deps.Clock,
		logger:   deps.Logger,
	}
}

func (s *sessionService) Start(ctx context.Context, userID int64, plate string, zoneID int64) (*domain.ParkingSession, error) {
	plate = strings.TrimSpace(plate)
	if plate == "" {
		return nil, fmt.Errorf("plate is required: %w", domain.ErrValidation)
	}

	release, err := s.locker.Lock(ctx, lock.UserKey(userID))
	if err != nil {
		return nil, fmt.Errorf("lock user: %w", err)
	}
	defer release()

	vehicle, err := s.vehicles.GetByPlate(ctx, userID, plate)
	if err != nil {
		return nil, err
	}

	active, err := s.sessions.ActiveForVehicle(ctx, vehicle.ID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("vehicle %q already has active session %d: %w", vehicle.Plate, active.ID, domain.ErrConflict)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	if _, err := s.zones.Get(ctx, zoneID); err != nil {
		return nil, err
	}

	session := &domain.ParkingSession{
		UserID:    userID,
		VehicleID: vehicle.ID,
		ZoneID:    zoneID,
		StartedAt: s.now().UTC(),
		Status:    domain.SessionStatusActive,
	}
	if _, err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"session_id": session.ID,
		"user_id":    userID,
		"vehicle_id": vehicle.ID,
		"zone_id":    zoneID,
	}).Info("parking session started")
	return session, nil
}

func (s *sessionService) Stop(ctx context.Context, userID, sessionID int64) (*domain.ParkingSession, error) {
	release, err := s.locker.Lock(ctx, lock.UserKey(userID))
	if err != nil {
		return nil, fmt.Errorf("lock user: %w", err)
	}
	defer release()

	session, err := s.owned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, fmt.Errorf("session %d is %s: %w", session.ID, session.Status, domain.ErrUnprocessable)
	}

	endedAt := s.now().UTC()
	minutes := billing.ElapsedMinutes(session.StartedAt, endedAt)

	zone, err := s.zones.Get(ctx, session.ZoneID)
	if err != nil {
		return nil, err
	}
	quote := billing.Compute(minutes, zone.RatePerMin, zone.MaxMinutes)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	session.EndedAt = &endedAt
	session.Minutes = &minutes
	session.Cost = &quote.Base
	session.Fine = &quote.Fine
	session.RatePerMin = &zone.RatePerMin
	session.MaxMinutes = &zone.MaxMinutes

	// no partial debit: either the full total is collected or nothing is
	var debit float64
	if user.Balance < quote.Total {
		session.Status = domain.SessionStatusPendingPayment
	} else {
		debit = quote.Total
		session.Collected = true
		session.Status = domain.SessionStatusPaid
	}
	if quote.Fined {
		session.Status = domain.SessionStatusFined
	}

	if err := s.sessions.Settle(ctx, session, debit); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"session_id": session.ID,
		"user_id":    userID,
		"minutes":    minutes,
		"base_cost":  quote.Base,
		"fine":       quote.Fine,
		"debited":    debit,
		"status":     session.Status,
	}).Info("parking session settled")

	if s.receipts != nil {
		s.receipts.Enqueue(receiptFor(session, quote))
	}
	return session, nil
}

func (s *sessionService) Get(ctx context.Context, userID, sessionID int64) (*SessionView, error) {
	session, err := s.owned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, session)
}

func (s *sessionService) List(ctx context.Context, userID int64) ([]SessionView, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]SessionView, 0, len(sessions))
	for i := range sessions {
		view, err := s.view(ctx, &sessions[i])
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// zone gone and no snapshot to price from
				view = &SessionView{Session: sessions[i]}
			} else {
				return nil, err
			}
		}
		views = append(views, *view)
	}
	return views, nil
}

// owned hides sessions of other users behind ErrNotFound.
func (s *sessionService) owned(ctx context.Context, userID, sessionID int64) (*domain.ParkingSession, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, fmt.Errorf("session %d: %w", sessionID, domain.ErrNotFound)
	}
	return session, nil
}

func (s *sessionService) view(ctx context.Context, session *domain.ParkingSession) (*SessionView, error) {
	view := &SessionView{Session: *session}
	if session.IsActive() || session.Minutes == nil {
		return view, nil
	}

	var (
		rate       float64
		maxMinutes int
	)
	if session.RatePerMin != nil && session.MaxMinutes != nil {
		rate, maxMinutes = *session.RatePerMin, *session.MaxMinutes
	} else {
		zone, err := s.zones.Get(ctx, session.ZoneID)
		if err != nil {
			return nil, err
		}
		rate, maxMinutes = zone.RatePerMin, zone.MaxMinutes
	}

	quote := billing.Compute(*session.Minutes, rate, maxMinutes)
	view.Minutes = quote.Minutes
	view.BaseCost = quote.Base
	view.Fined = quote.Fined
	view.Fine = quote.Fine
	view.CostTotal = quote.Total
	return view, nil
}

func receiptFor(session *domain.ParkingSession, quote billing.Quote) receipts.Receipt {
	r := receipts.Receipt{
		SessionID: session.ID,
		UserID:    session.UserID,
		VehicleID: session.VehicleID,
		ZoneID:    session.ZoneID,
		StartedAt: session.StartedAt,
		Minutes:   quote.Minutes,
		BaseCost:  quote.Base,
		Fine:      quote.Fine,
		CostTotal: quote.Total,
		Collected: session.Collected,
		Status:    session.Status,
	}
	if session.EndedAt != nil {
		r.EndedAt = *session.EndedAt
	}
	if session.RatePerMin != nil {
		r.RatePerMin = *session.RatePerMin
	}
	return r
}

package domain

import "time"

type SessionStatus string

const (
	SessionStatusActive         SessionStatus = "active"
	SessionStatusPaid           SessionStatus = "paid"
	SessionStatusFined          SessionStatus = "fined"
	SessionStatusPendingPayment SessionStatus = "pending_payment"
)

// ParkingSession is one occupation of a zone by a vehicle.
//
// Billing fields stay nil while the session is active. RatePerMin and
// MaxMinutes snapshot the zone at settlement time so later zone edits do not
// change what a closed session is worth.
type ParkingSession struct {
	ID         int64
	UserID     int64
	VehicleID  int64
	ZoneID     int64
	StartedAt  time.Time
	EndedAt    *time.Time
	Minutes    *int
	Cost       *float64
	Fine       *float64
	RatePerMin *float64
	MaxMinutes *int
	// Collected reports whether the full amount (base plus fine) was debited.
	Collected bool
	Status    SessionStatus
}

// IsActive reports whether the session has not been stopped yet.
func (s *ParkingSession) IsActive() bool {
	return s.Status == SessionStatusActive
}

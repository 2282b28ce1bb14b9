// Package billing holds the parking cost formula.
package billing

import (
	"math"
	"time"
)

const (
	// GraceMinutes is the number of minutes any session may last for free.
	GraceMinutes = 3
	// OverstayFine is the flat penalty for exceeding a zone's max minutes.
	OverstayFine = 100.0
)

// Quote is the priced outcome of a session of a given length.
type Quote struct {
	Minutes int
	Base    float64
	Fined   bool
	Fine    float64
	Total   float64
}

// ElapsedMinutes rounds the time between start and end up to whole minutes.
func ElapsedMinutes(start, end time.Time) int {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds() / 60))
}

// Compute prices a session of the given length at rate, fining it when
// minutes is strictly greater than maxMinutes.
func Compute(minutes int, rate float64, maxMinutes int) Quote {
	q := Quote{Minutes: minutes}
	if minutes > GraceMinutes {
		q.Base = float64(minutes) * rate
	}
	q.Fined = minutes > maxMinutes
	if q.Fined {
		q.Fine = OverstayFine
	}
	q.Total = q.Base + q.Fine
	return q
}

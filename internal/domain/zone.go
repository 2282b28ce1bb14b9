package domain

import "time"

// Zone is a billing region with a per-minute rate and an overstay threshold.
type Zone struct {
	ID         int64
	Name       string
	RatePerMin float64
	MaxMinutes int
	CreatedAt  time.Time
}

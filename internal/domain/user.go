package domain

import "time"

// DefaultBalance is credited to every newly provisioned user.
const DefaultBalance = 300.0

// User represents an account holder that owns vehicles and pays for sessions.
type User struct {
	ID           int64
	Email        string
	APIKey       string
	PasswordHash string
	Balance      float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

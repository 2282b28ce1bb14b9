package domain

import (
	"strings"
	"time"
)

// Vehicle is a licence plate registered by a user.
type Vehicle struct {
	ID        int64
	UserID    int64
	Plate     string
	CreatedAt time.Time
}

// NormalizePlate returns the form plates are compared by.
func NormalizePlate(plate string) string {
	return strings.ToLower(strings.TrimSpace(plate))
}

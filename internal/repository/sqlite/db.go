package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"parking-billing/internal/repository"
)

// Open opens (or creates) a sqlite database at the given path and ensures directories exist.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// a single connection serialises writers; settlement relies on it
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return db, nil
}

// Store bundles the sqlite repositories sharing one database handle.
type Store struct {
	Users    repository.UserRepository
	Zones    repository.ZoneRepository
	Vehicles repository.VehicleRepository
	Sessions repository.SessionRepository
}

// NewStore builds every repository on db and creates their tables in
// dependency order.
func NewStore(ctx context.Context, db *sql.DB) (*Store, error) {
	s := &Store{
		Users:    NewUserRepository(db),
		Zones:    NewZoneRepository(db),
		Vehicles: NewVehicleRepository(db),
		Sessions: NewSessionRepository(db),
	}

	steps := []struct {
		name string
		init func(context.Context) error
	}{
		{"user", s.Users.Init},
		{"zone", s.Zones.Init},
		{"vehicle", s.Vehicles.Init},
		{"session", s.Sessions.Init},
	}
	for _, step := range steps {
		if err := step.init(ctx); err != nil {
			return nil, fmt.Errorf("init %s repository: %w", step.name, err)
		}
	}
	return s, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique")
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

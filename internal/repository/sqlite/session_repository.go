package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"parking-billing/internal/domain"
	"parking-billing/internal/repository"
)

// zone_id carries no foreign key: zones may be deleted while sessions
// referencing them are still open.
const createSessionsTable = `
CREATE TABLE IF NOT EXISTS sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	vehicle_id INTEGER NOT NULL,
	zone_id INTEGER NOT NULL,
	started_at DATETIME NOT NULL,
	ended_at DATETIME NULL,
	minutes INTEGER NULL,
	cost REAL NULL,
	fine REAL NULL,
	rate_per_min REAL NULL,
	max_minutes INTEGER NULL,
	collected INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE,
	FOREIGN KEY(vehicle_id) REFERENCES vehicles(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_active_vehicle ON sessions(vehicle_id) WHERE status = 'active';
`

const selectSession = `
SELECT id, user_id, vehicle_id, zone_id, started_at, ended_at, minutes, cost, fine, rate_per_min, max_minutes, collected, status
FROM sessions
`

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createSessionsTable); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	return nil
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.ParkingSession) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO sessions (user_id, vehicle_id, zone_id, started_at, status)
VALUES (?, ?, ?, ?, ?)`,
		session.UserID,
		session.VehicleID,
		session.ZoneID,
		session.StartedAt.UTC(),
		string(session.Status),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("vehicle %d already parked: %w", session.VehicleID, domain.ErrConflict)
		}
		return 0, fmt.Errorf("insert session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("session last insert id: %w", err)
	}
	session.ID = id
	return id, nil
}

func (r *SessionRepository) Get(ctx context.Context, id int64) (*domain.ParkingSession, error) {
	return scanSession(r.db.QueryRowContext(ctx, selectSession+`WHERE id = ?`, id))
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID int64) ([]domain.ParkingSession, error) {
	rows, err := r.db.QueryContext(ctx, selectSession+`WHERE user_id = ? ORDER BY id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []domain.ParkingSession{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

func (r *SessionRepository) ActiveForVehicle(ctx context.Context, vehicleID int64) (*domain.ParkingSession, error) {
	return scanSession(r.db.QueryRowContext(ctx, selectSession+`WHERE vehicle_id = ? AND status = ?`,
		vehicleID,
		string(domain.SessionStatusActive),
	))
}

func (r *SessionRepository) Settle(ctx context.Context, session *domain.ParkingSession, debit float64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // safe no-op on commit

	res, err := tx.ExecContext(ctx, `
UPDATE sessions
SET ended_at=?, minutes=?, cost=?, fine=?, rate_per_min=?, max_minutes=?, collected=?, status=?
WHERE id=? AND status=?`,
		nullTime(session.EndedAt),
		nullInt(session.Minutes),
		nullFloat(session.Cost),
		nullFloat(session.Fine),
		nullFloat(session.RatePerMin),
		nullInt(session.MaxMinutes),
		session.Collected,
		string(session.Status),
		session.ID,
		string(domain.SessionStatusActive),
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("session rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("session %d is not active: %w", session.ID, domain.ErrUnprocessable)
	}

	if debit != 0 {
		if _, err := tx.ExecContext(ctx, `
UPDATE users
SET balance = balance - ?, updated_at = ?
WHERE id = ?`,
			debit,
			time.Now().UTC(),
			session.UserID,
		); err != nil {
			return fmt.Errorf("debit balance: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settlement: %w", err)
	}
	return nil
}

func scanSession(scanner interface {
	Scan(dest ...any) error
}) (*domain.ParkingSession, error) {
	var (
		session    domain.ParkingSession
		status     string
		endedAt    sql.NullTime
		minutes    sql.NullInt64
		cost       sql.NullFloat64
		fine       sql.NullFloat64
		rate       sql.NullFloat64
		maxMinutes sql.NullInt64
	)

	if err := scanner.Scan(
		&session.ID,
		&session.UserID,
		&session.VehicleID,
		&session.ZoneID,
		&session.StartedAt,
		&endedAt,
		&minutes,
		&cost,
		&fine,
		&rate,
		&maxMinutes,
		&session.Collected,
		&status,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	session.Status = domain.SessionStatus(status)
	session.StartedAt = session.StartedAt.UTC()
	if endedAt.Valid {
		t := endedAt.Time.UTC()
		session.EndedAt = &t
	}
	if minutes.Valid {
		v := int(minutes.Int64)
		session.Minutes = &v
	}
	if cost.Valid {
		session.Cost = &cost.Float64
	}
	if fine.Valid {
		session.Fine = &fine.Float64
	}
	if rate.Valid {
		session.RatePerMin = &rate.Float64
	}
	if maxMinutes.Valid {
		v := int(maxMinutes.Int64)
		session.MaxMinutes = &v
	}

	return &session, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

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

const createZonesTable = `
CREATE TABLE IF NOT EXISTS zones (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	rate_per_min REAL NOT NULL,
	max_minutes INTEGER NOT NULL,
	created_at DATETIME NOT NULL
);
`

type ZoneRepository struct {
	db *sql.DB
}

func NewZoneRepository(db *sql.DB) repository.ZoneRepository {
	return &ZoneRepository{db: db}
}

func (r *ZoneRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createZonesTable); err != nil {
		return fmt.Errorf("create zones table: %w", err)
	}
	return nil
}

func (r *ZoneRepository) Create(ctx context.Context, zone *domain.Zone) (int64, error) {
	zone.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO zones (name, rate_per_min, max_minutes, created_at)
VALUES (?, ?, ?, ?)`,
		zone.Name,
		zone.RatePerMin,
		zone.MaxMinutes,
		zone.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert zone: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("zone last insert id: %w", err)
	}
	zone.ID = id
	return id, nil
}

func (r *ZoneRepository) Get(ctx context.Context, id int64) (*domain.Zone, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, rate_per_min, max_minutes, created_at
FROM zones
WHERE id = ?`,
		id,
	)
	return scanZone(row)
}

func (r *ZoneRepository) List(ctx context.Context) ([]domain.Zone, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, rate_per_min, max_minutes, created_at
FROM zones
ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query zones: %w", err)
	}
	defer rows.Close()

	zones := []domain.Zone{}
	for rows.Next() {
		zone, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		zones = append(zones, *zone)
	}
	return zones, rows.Err()
}

func (r *ZoneRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM zones WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete zone: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("zone delete rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("zone %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanZone(scanner interface {
	Scan(dest ...any) error
}) (*domain.Zone, error) {
	var zone domain.Zone
	if err := scanner.Scan(&zone.ID, &zone.Name, &zone.RatePerMin, &zone.MaxMinutes, &zone.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("zone: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scan zone: %w", err)
	}
	return &zone, nil
}

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

const createVehiclesTable = `
CREATE TABLE IF NOT EXISTS vehicles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	plate TEXT NOT NULL,
	plate_key TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE,
	UNIQUE(user_id, plate_key)
);
CREATE INDEX IF NOT EXISTS idx_vehicles_user_id ON vehicles(user_id);
`

type VehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(db *sql.DB) repository.VehicleRepository {
	return &VehicleRepository{db: db}
}

func (r *VehicleRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createVehiclesTable); err != nil {
		return fmt.Errorf("create vehicles table: %w", err)
	}
	return nil
}

func (r *VehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) (int64, error) {
	vehicle.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO vehicles (user_id, plate, plate_key, created_at)
VALUES (?, ?, ?, ?)`,
		vehicle.UserID,
		vehicle.Plate,
		domain.NormalizePlate(vehicle.Plate),
		vehicle.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("vehicle %q already registered: %w", vehicle.Plate, domain.ErrConflict)
		}
		return 0, fmt.Errorf("insert vehicle: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("vehicle last insert id: %w", err)
	}
	vehicle.ID = id
	return id, nil
}

func (r *VehicleRepository) GetByPlate(ctx context.Context, userID int64, plate string) (*domain.Vehicle, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, plate, created_at
FROM vehicles
WHERE user_id = ? AND plate_key = ?`,
		userID,
		domain.NormalizePlate(plate),
	)
	return scanVehicle(row)
}

func (r *VehicleRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, plate, created_at
FROM vehicles
WHERE user_id = ?
ORDER BY id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query vehicles: %w", err)
	}
	defer rows.Close()

	vehicles := []domain.Vehicle{}
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *vehicle)
	}
	return vehicles, rows.Err()
}

func scanVehicle(scanner interface {
	Scan(dest ...any) error
}) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	if err := scanner.Scan(&vehicle.ID, &vehicle.UserID, &vehicle.Plate, &vehicle.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("vehicle: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scan vehicle: %w", err)
	}
	return &vehicle, nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/voltmap/chargepoint/internal/models"
)

// ErrStationNotFound is returned when a station lookup matches nothing
var ErrStationNotFound = errors.New("station not found")

// StationRepository handles charging station database operations
type StationRepository struct {
	db *DB
}

// NewStationRepository creates a new station repository
func NewStationRepository(db *DB) *StationRepository {
	return &StationRepository{db: db}
}

// Create inserts a new charging station
func (r *StationRepository) Create(ctx context.Context, station *models.ChargingStation) error {
	query := `
		INSERT INTO charging_stations (id, name, lat, lng, status, power_kw, connector_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	if station.Status == "" {
		station.Status = models.StationStatusActive
	}

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		station.ID,
		station.Name,
		station.Latitude,
		station.Longitude,
		station.Status,
		station.PowerKW,
		station.ConnectorType,
		now,
		now,
	).Scan(&station.CreatedAt, &station.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create station: %w", err)
	}

	return nil
}

// GetByID retrieves a station by ID
func (r *StationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ChargingStation, error) {
	station := &models.ChargingStation{}
	query := `
		SELECT id, name, lat, lng, status, power_kw, connector_type, created_at, updated_at
		FROM charging_stations
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&station.ID,
		&station.Name,
		&station.Latitude,
		&station.Longitude,
		&station.Status,
		&station.PowerKW,
		&station.ConnectorType,
		&station.CreatedAt,
		&station.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get station: %w", err)
	}

	return station, nil
}

// List returns all stations ordered by creation time
func (r *StationRepository) List(ctx context.Context) ([]*models.ChargingStation, error) {
	query := `
		SELECT id, name, lat, lng, status, power_kw, connector_type, created_at, updated_at
		FROM charging_stations
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list stations: %w", err)
	}
	defer rows.Close()

	stations := []*models.ChargingStation{}
	for rows.Next() {
		station := &models.ChargingStation{}
		if err := rows.Scan(
			&station.ID,
			&station.Name,
			&station.Latitude,
			&station.Longitude,
			&station.Status,
			&station.PowerKW,
			&station.ConnectorType,
			&station.CreatedAt,
			&station.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan station: %w", err)
		}
		stations = append(stations, station)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stations: %w", err)
	}

	return stations, nil
}

// Update persists changes to an existing station
func (r *StationRepository) Update(ctx context.Context, station *models.ChargingStation) error {
	query := `
		UPDATE charging_stations
		SET name = $2, lat = $3, lng = $4, status = $5, power_kw = $6, connector_type = $7, updated_at = $8
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		station.ID,
		station.Name,
		station.Latitude,
		station.Longitude,
		station.Status,
		station.PowerKW,
		station.ConnectorType,
		time.Now(),
	).Scan(&station.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return ErrStationNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update station: %w", err)
	}

	return nil
}

// Delete removes a station by ID
func (r *StationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM charging_stations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete station: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrStationNotFound
	}

	return nil
}

package postgres

import (
	"context"
	"errors"

	"sivec/internal/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PositionRepo stores the last known GPS fix per vehicle. It is fed by the
// tracking consumer and read by the overlay endpoint; neither path runs
// inside a dispatch transaction, so it uses the pool directly.
type PositionRepo struct {
	pool *pgxpool.Pool
}

// NewPositionRepo constructs a new PositionRepo.
func NewPositionRepo(pool *pgxpool.Pool) ports.PositionRepository {
	return &PositionRepo{pool: pool}
}

// Upsert replaces the vehicle's last position. Stale fixes (older than the
// stored one) are ignored so out-of-order deliveries cannot rewind a vehicle.
func (repo *PositionRepo) Upsert(ctx context.Context, p ports.Position) error {
	_, err := repo.pool.Exec(ctx, `
		INSERT INTO posiciones (numero_vehiculo, lat, lng, registrado_en)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (numero_vehiculo) DO UPDATE
		SET lat = EXCLUDED.lat,
		    lng = EXCLUDED.lng,
		    registrado_en = EXCLUDED.registrado_en
		WHERE posiciones.registrado_en <= EXCLUDED.registrado_en
	`, p.VehicleNumber, p.Latitude, p.Longitude, p.RecordedAt)
	return err
}

// GetByVehicle returns the vehicle's last position, or nil when unknown.
func (repo *PositionRepo) GetByVehicle(ctx context.Context, vehicleNumber string) (*ports.Position, error) {
	var out ports.Position
	err := repo.pool.QueryRow(ctx, `
		SELECT numero_vehiculo, lat, lng, registrado_en
		FROM posiciones
		WHERE numero_vehiculo = $1
	`, vehicleNumber).Scan(&out.VehicleNumber, &out.Latitude, &out.Longitude, &out.RecordedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"sivec/internal/domain/vehicle"
	"sivec/internal/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VehicleRepo manages the fleet catalog. It runs on the pool directly: fleet
// maintenance is single-statement work and never joins a dispatch transaction.
type VehicleRepo struct {
	pool *pgxpool.Pool
}

// NewVehicleRepo constructs a new VehicleRepo.
func NewVehicleRepo(pool *pgxpool.Pool) ports.VehicleRepository {
	return &VehicleRepo{pool: pool}
}

const vehicleColumns = `id, created_at, updated_at, numero, placa, sucursal, activo`

// Create inserts a new vehicle row.
func (repo *VehicleRepo) Create(ctx context.Context, v *vehicle.Vehicle) error {
	return repo.pool.QueryRow(ctx, `
		INSERT INTO vehiculos (numero, placa, sucursal, activo)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, v.Number, v.Plate, v.Branch, v.Active).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
}

// GetByNumber fetches a vehicle by fleet number, or nil when unknown.
func (repo *VehicleRepo) GetByNumber(ctx context.Context, number string) (*vehicle.Vehicle, error) {
	var out vehicle.Vehicle
	err := repo.pool.QueryRow(ctx, `
		SELECT `+vehicleColumns+`
		FROM vehiculos
		WHERE numero = $1
	`, number).Scan(
		&out.ID, &out.CreatedAt, &out.UpdatedAt, &out.Number, &out.Plate, &out.Branch, &out.Active,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns vehicles, optionally filtered by branch and activity.
func (repo *VehicleRepo) List(ctx context.Context, branch string, onlyActive bool) ([]*vehicle.Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + `
		FROM vehiculos
		WHERE ($1 = '' OR sucursal = $1)
	`
	if onlyActive {
		query += ` AND activo`
	}
	query += ` ORDER BY numero ASC`

	rows, err := repo.pool.Query(ctx, query, branch)
	if err != nil {
		return nil, fmt.Errorf("query vehicles: %w", err)
	}
	defer rows.Close()

	var out []*vehicle.Vehicle
	for rows.Next() {
		var v vehicle.Vehicle
		if err := rows.Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt, &v.Number, &v.Plate, &v.Branch, &v.Active); err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		out = append(out, &v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return out, nil
}

// SetActive toggles the vehicle's dispatch availability.
func (repo *VehicleRepo) SetActive(ctx context.Context, number string, active bool) error {
	tag, err := repo.pool.Exec(ctx, `
		UPDATE vehiculos
		SET activo = $1,
		    updated_at = now()
		WHERE numero = $2
	`, active, number)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return vehicle.ErrUnknownVehicle
	}
	return nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"sivec/internal/domain/driver"
	"sivec/internal/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TemporaryDriverRepo manages the local roster of ad hoc drivers.
// Like VehicleRepo it runs on the pool directly.
type TemporaryDriverRepo struct {
	pool *pgxpool.Pool
}

// NewTemporaryDriverRepo constructs a new TemporaryDriverRepo.
func NewTemporaryDriverRepo(pool *pgxpool.Pool) ports.TemporaryDriverRepository {
	return &TemporaryDriverRepo{pool: pool}
}

// Create inserts a new temporary driver row.
func (repo *TemporaryDriverRepo) Create(ctx context.Context, d *driver.Temporary) error {
	return repo.pool.QueryRow(ctx, `
		INSERT INTO pilotos_temporales (nombre, activo, notas)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, d.Name, d.Active, d.Notes).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

// FindByName fetches a temporary driver by exact name, or nil when unknown.
func (repo *TemporaryDriverRepo) FindByName(ctx context.Context, name string) (*driver.Temporary, error) {
	var out driver.Temporary
	err := repo.pool.QueryRow(ctx, `
		SELECT id, created_at, updated_at, nombre, activo, notas
		FROM pilotos_temporales
		WHERE nombre = $1
	`, name).Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt, &out.Name, &out.Active, &out.Notes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns temporary drivers, optionally only active ones.
func (repo *TemporaryDriverRepo) List(ctx context.Context, onlyActive bool) ([]*driver.Temporary, error) {
	query := `
		SELECT id, created_at, updated_at, nombre, activo, notas
		FROM pilotos_temporales
	`
	if onlyActive {
		query += ` WHERE activo`
	}
	query += ` ORDER BY nombre ASC`

	rows, err := repo.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query temporary drivers: %w", err)
	}
	defer rows.Close()

	var out []*driver.Temporary
	for rows.Next() {
		var d driver.Temporary
		if err := rows.Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt, &d.Name, &d.Active, &d.Notes); err != nil {
			return nil, fmt.Errorf("scan temporary driver: %w", err)
		}
		out = append(out, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return out, nil
}

// SetActive toggles a temporary driver's availability.
func (repo *TemporaryDriverRepo) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := repo.pool.Exec(ctx, `
		UPDATE pilotos_temporales
		SET activo = $1,
		    updated_at = now()
		WHERE id = $2
	`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return driver.ErrUnknownDriver
	}
	return nil
}

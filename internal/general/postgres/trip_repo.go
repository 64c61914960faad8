package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sivec/internal/domain/trip"
	"sivec/internal/ports"

	"github.com/jackc/pgx/v5"
)

// TripRepo persists trips using pgx and plain SQL.
type TripRepo struct{}

// NewTripRepo constructs a new TripRepo.
func NewTripRepo() ports.TripRepository {
	return &TripRepo{}
}

const tripColumns = `
	id, created_at, updated_at, numero_vehiculo, piloto,
	to_char(fecha_viaje, 'YYYY-MM-DD'), estado_id, sucursal, creado_automaticamente`

// Create inserts a new trip row and writes the initial VIAJE_CREADO event.
func (repo *TripRepo) Create(ctx context.Context, t *trip.Trip) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO viajes (
			numero_vehiculo, piloto, fecha_viaje, estado_id, sucursal, creado_automaticamente
		)
		VALUES ($1, $2, $3::date, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`,
		t.VehicleNumber,
		t.DriverName,
		t.TripDate,
		t.Status.Code(),
		t.Branch,
		t.CreatedAutomatically,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return err
	}

	eventData := map[string]any{
		"estado_nuevo": t.Status.Code(),
		"piloto":       t.DriverName,
		"vehiculo":     t.VehicleNumber,
		"automatico":   t.CreatedAutomatically,
	}
	return insertTripEvent(ctx, tx, t.ID, trip.EventCreated, eventData)
}

// GetByID fetches a trip by primary key (uuid).
func (repo *TripRepo) GetByID(ctx context.Context, id string) (*trip.Trip, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	return scanTrip(tx.QueryRow(ctx, `
		SELECT `+tripColumns+`
		FROM viajes
		WHERE id = $1
	`, id))
}

// FindPending returns the pending trip for the exact driver+vehicle+date triple, or nil.
func (repo *TripRepo) FindPending(ctx context.Context, driverName, vehicleNumber, tripDate string) (*trip.Trip, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	t, err := scanTrip(tx.QueryRow(ctx, `
		SELECT `+tripColumns+`
		FROM viajes
		WHERE piloto = $1
		  AND numero_vehiculo = $2
		  AND fecha_viaje = $3::date
		  AND estado_id = $4
		ORDER BY created_at DESC
		LIMIT 1
	`, driverName, vehicleNumber, tripDate, trip.StatusPending.Code()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

// FindActiveByDriver returns any pending/in_progress trip for the driver, or nil.
func (repo *TripRepo) FindActiveByDriver(ctx context.Context, driverName string) (*trip.Trip, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	t, err := scanTrip(tx.QueryRow(ctx, `
		SELECT `+tripColumns+`
		FROM viajes
		WHERE piloto = $1
		  AND estado_id IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 1
	`, driverName, trip.StatusPending.Code(), trip.StatusInProgress.Code()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

// FindActiveByVehicleOtherDriver returns any pending/in_progress trip on the
// vehicle whose driver differs from driverName, or nil.
func (repo *TripRepo) FindActiveByVehicleOtherDriver(ctx context.Context, vehicleNumber, driverName string) (*trip.Trip, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	t, err := scanTrip(tx.QueryRow(ctx, `
		SELECT `+tripColumns+`
		FROM viajes
		WHERE numero_vehiculo = $1
		  AND piloto <> $2
		  AND estado_id IN ($3, $4)
		ORDER BY created_at DESC
		LIMIT 1
	`, vehicleNumber, driverName, trip.StatusPending.Code(), trip.StatusInProgress.Code()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

// UpdateStatus moves a trip to the given status and records the change event.
func (repo *TripRepo) UpdateStatus(ctx context.Context, id string, status trip.Status) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	// lock the row and read current status to enforce transitions
	var current int
	err = tx.QueryRow(ctx, `
		SELECT estado_id
		FROM viajes
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&current)
	if err != nil {
		return err
	}

	// idempotent success
	if current == status.Code() {
		return nil
	}

	if !status.Valid() {
		return trip.ErrInvalidStatus
	}

	currentStatus, err := trip.ParseStatus(current)
	if err != nil {
		return fmt.Errorf("trip %s has unknown status %d: %w", id, current, err)
	}
	if !currentStatus.CanTransitionTo(status) {
		return trip.ErrInvalidStatusTransition
	}

	_, err = tx.Exec(ctx, `
		UPDATE viajes
		SET estado_id = $1,
		    updated_at = now()
		WHERE id = $2
	`, status.Code(), id)
	if err != nil {
		return err
	}

	eventData := map[string]any{
		"estado_anterior": current,
		"estado_nuevo":    status.Code(),
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	}
	return insertTripEvent(ctx, tx, id, trip.EventTypeFor(status), eventData)
}

// --- helpers ---

func scanTrip(row pgx.Row) (*trip.Trip, error) {
	var out trip.Trip
	var statusCode int

	err := row.Scan(
		&out.ID, &out.CreatedAt, &out.UpdatedAt, &out.VehicleNumber, &out.DriverName,
		&out.TripDate, &statusCode, &out.Branch, &out.CreatedAutomatically,
	)
	if err != nil {
		return nil, err
	}

	out.Status, err = trip.ParseStatus(statusCode)
	if err != nil {
		return nil, fmt.Errorf("scan trip %s: %w", out.ID, err)
	}

	return &out, nil
}

// insertTripEvent writes a row into viaje_eventos with encoded event data.
func insertTripEvent(ctx context.Context, tx pgx.Tx, tripID string, eventType trip.EventType, eventData any) error {
	body, err := json.Marshal(eventData)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO viaje_eventos (viaje_id, tipo_evento, datos)
		VALUES ($1, $2, $3::jsonb)
	`, tripID, string(eventType), string(body))
	return err
}

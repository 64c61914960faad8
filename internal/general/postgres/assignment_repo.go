package postgres

import (
	"context"
	"errors"
	"fmt"

	"sivec/internal/domain/invoice"
	"sivec/internal/ports"

	"github.com/jackc/pgx/v5"
)

// AssignmentRepo persists invoice assignments using pgx and plain SQL.
type AssignmentRepo struct{}

// NewAssignmentRepo constructs a new AssignmentRepo.
func NewAssignmentRepo() ports.AssignmentRepository {
	return &AssignmentRepo{}
}

const assignmentColumns = `
	id, created_at, updated_at, numero_factura, piloto, numero_vehiculo,
	to_char(fecha_asignacion, 'YYYY-MM-DD'), estado_id, viaje_id, notas`

// Create inserts a new assignment row.
func (repo *AssignmentRepo) Create(ctx context.Context, a *invoice.Assignment) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	return tx.QueryRow(ctx, `
		INSERT INTO facturas_asignadas (
			numero_factura, piloto, numero_vehiculo, fecha_asignacion, estado_id, viaje_id, notas
		)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`,
		a.InvoiceNumber,
		a.DriverName,
		a.VehicleNumber,
		a.AssignmentDate,
		a.Status.Code(),
		a.TripID,
		a.Notes,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// GetCurrentByNumber returns the latest non-dispatched assignment for an
// invoice number, or nil when none exists.
func (repo *AssignmentRepo) GetCurrentByNumber(ctx context.Context, invoiceNumber string) (*invoice.Assignment, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	a, err := scanAssignment(tx.QueryRow(ctx, `
		SELECT `+assignmentColumns+`
		FROM facturas_asignadas
		WHERE numero_factura = $1
		  AND estado_id = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, invoiceNumber, invoice.StatusAssigned.Code()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// ListByTrip returns every assignment linked to the trip.
func (repo *AssignmentRepo) ListByTrip(ctx context.Context, tripID string) ([]*invoice.Assignment, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+assignmentColumns+`
		FROM facturas_asignadas
		WHERE viaje_id = $1
		ORDER BY created_at ASC
	`, tripID)
	if err != nil {
		return nil, fmt.Errorf("query assignments by trip: %w", err)
	}
	defer rows.Close()

	var out []*invoice.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out = append(out, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return out, nil
}

// MarkDispatchedByTrip advances every assignment of a trip to dispatched.
func (repo *AssignmentRepo) MarkDispatchedByTrip(ctx context.Context, tripID string) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE facturas_asignadas
		SET estado_id = $1,
		    updated_at = now()
		WHERE viaje_id = $2
		  AND estado_id = $3
	`, invoice.StatusDispatched.Code(), tripID, invoice.StatusAssigned.Code())
	return err
}

func scanAssignment(row pgx.Row) (*invoice.Assignment, error) {
	var out invoice.Assignment
	var statusCode int

	err := row.Scan(
		&out.ID, &out.CreatedAt, &out.UpdatedAt, &out.InvoiceNumber, &out.DriverName, &out.VehicleNumber,
		&out.AssignmentDate, &statusCode, &out.TripID, &out.Notes,
	)
	if err != nil {
		return nil, err
	}

	out.Status, err = invoice.ParseStatus(statusCode)
	if err != nil {
		return nil, fmt.Errorf("assignment %s: %w", out.ID, err)
	}

	return &out, nil
}

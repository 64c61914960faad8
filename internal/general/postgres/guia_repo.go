package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sivec/internal/domain/guia"
	"sivec/internal/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DeliveryNoteRepo persists delivery notes using pgx and plain SQL.
type DeliveryNoteRepo struct{}

// NewDeliveryNoteRepo constructs a new DeliveryNoteRepo.
func NewDeliveryNoteRepo() ports.DeliveryNoteRepository {
	return &DeliveryNoteRepo{}
}

const noteColumns = `
	id, created_at, updated_at, numero_guia, numero_factura, viaje_id,
	detalle, direccion, to_char(fecha_emision, 'YYYY-MM-DD'), estado_id, fecha_entrega`

// Create inserts a new note row. A unique-violation on numero_guia maps to
// guia.ErrDuplicateNote so callers can treat races and plain duplicates alike.
func (repo *DeliveryNoteRepo) Create(ctx context.Context, n *guia.DeliveryNote) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO guias (
			numero_guia, numero_factura, viaje_id, detalle, direccion, fecha_emision, estado_id
		)
		VALUES ($1, $2, $3, $4, $5, $6::date, $7)
		RETURNING id, created_at, updated_at
	`,
		n.NoteNumber,
		n.InvoiceNumber,
		n.TripID,
		n.Detail,
		n.Address,
		nullIfEmpty(n.EmissionDate),
		n.Status.Code(),
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return guia.ErrDuplicateNote
		}
		return err
	}

	return nil
}

// GetByID fetches a note by primary key (uuid).
func (repo *DeliveryNoteRepo) GetByID(ctx context.Context, id string) (*guia.DeliveryNote, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	return scanNote(tx.QueryRow(ctx, `
		SELECT `+noteColumns+`
		FROM guias
		WHERE id = $1
	`, id))
}

// Exists reports whether a note number is already registered anywhere.
func (repo *DeliveryNoteRepo) Exists(ctx context.Context, noteNumber string) (bool, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return false, err
	}

	var exists bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM guias WHERE numero_guia = $1)
	`, noteNumber).Scan(&exists)
	return exists, err
}

// ListByTrip returns every note attached to the trip.
func (repo *DeliveryNoteRepo) ListByTrip(ctx context.Context, tripID string) ([]*guia.DeliveryNote, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+noteColumns+`
		FROM guias
		WHERE viaje_id = $1
		ORDER BY created_at ASC
	`, tripID)
	if err != nil {
		return nil, fmt.Errorf("query notes by trip: %w", err)
	}
	defer rows.Close()

	var out []*guia.DeliveryNote
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		out = append(out, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return out, nil
}

// UpdateStatus sets the note status and, for delivered, the delivery timestamp.
func (repo *DeliveryNoteRepo) UpdateStatus(ctx context.Context, id string, status guia.Status, deliveredAt *time.Time) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE guias
		SET estado_id = $1,
		    fecha_entrega = $2,
		    updated_at = now()
		WHERE id = $3
	`, status.Code(), deliveredAt, id)
	return err
}

func scanNote(row pgx.Row) (*guia.DeliveryNote, error) {
	var out guia.DeliveryNote
	var statusCode int
	var emissionDate *string

	err := row.Scan(
		&out.ID, &out.CreatedAt, &out.UpdatedAt, &out.NoteNumber, &out.InvoiceNumber, &out.TripID,
		&out.Detail, &out.Address, &emissionDate, &statusCode, &out.DeliveredAt,
	)
	if err != nil {
		return nil, err
	}

	if emissionDate != nil {
		out.EmissionDate = *emissionDate
	}

	out.Status, err = guia.ParseStatus(statusCode)
	if err != nil {
		return nil, fmt.Errorf("note %s: %w", out.ID, err)
	}

	return &out, nil
}

// nullIfEmpty lets optional text dates insert as NULL instead of ''::date.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

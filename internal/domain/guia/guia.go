package guia

import (
	"errors"
	"strings"
	"time"
)

// DeliveryNote is the domain entity corresponding to the `guias` table: one
// physical delivery under an invoice. TripID is copied from the invoice
// assignment at link time for fast trip-level aggregation.
type DeliveryNote struct {
	// Identity & audit
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Business keys
	NoteNumber    string // globally unique
	InvoiceNumber string
	TripID        string

	// Payload
	Detail       string
	Address      string
	EmissionDate string // opaque calendar date, YYYY-MM-DD

	// Core state
	Status      Status
	DeliveredAt *time.Time // set only on transition to delivered
}

var (
	ErrNoteNumberRequired    = errors.New("delivery note number is required")
	ErrInvoiceNumberRequired = errors.New("invoice number is required")
	ErrTripIDRequired        = errors.New("trip id is required")
	ErrAlreadyFinalized      = errors.New("la guía ya fue finalizada")

	// ErrDuplicateNote carries the exact user-facing message for a note
	// number that already exists anywhere in the system.
	ErrDuplicateNote = errors.New("Esta guía ya fue vinculada anteriormente")
)

// NewDeliveryNote creates a note in linked state.
func NewDeliveryNote(noteNumber, invoiceNumber, tripID, detail, address, emissionDate string) (*DeliveryNote, error) {
	if noteNumber = strings.TrimSpace(noteNumber); noteNumber == "" {
		return nil, ErrNoteNumberRequired
	}
	if invoiceNumber = strings.TrimSpace(invoiceNumber); invoiceNumber == "" {
		return nil, ErrInvoiceNumberRequired
	}
	if tripID = strings.TrimSpace(tripID); tripID == "" {
		return nil, ErrTripIDRequired
	}

	now := time.Now().UTC()
	return &DeliveryNote{
		CreatedAt:     now,
		UpdatedAt:     now,
		NoteNumber:    noteNumber,
		InvoiceNumber: invoiceNumber,
		TripID:        tripID,
		Detail:        strings.TrimSpace(detail),
		Address:       strings.TrimSpace(address),
		EmissionDate:  strings.TrimSpace(emissionDate),
		Status:        StatusLinked,
	}, nil
}

// Apply moves the note to next. Linked is accepted but is a no-op (the
// catalog admits it as a value; it is never a transition target).
// Delivered stamps DeliveredAt with occurredAt, or now when occurredAt is nil.
func (n *DeliveryNote) Apply(next Status, occurredAt *time.Time) error {
	if !next.Valid() {
		return ErrInvalidStatus
	}
	if next == n.Status {
		return nil
	}
	if n.Status.Terminal() {
		return ErrAlreadyFinalized
	}
	if next == StatusLinked {
		return nil
	}

	if next == StatusDelivered {
		ts := time.Now().UTC()
		if occurredAt != nil {
			ts = occurredAt.UTC()
		}
		n.DeliveredAt = &ts
	}
	n.Status = next
	n.UpdatedAt = time.Now().UTC()
	return nil
}

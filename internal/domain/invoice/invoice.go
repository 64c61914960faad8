package invoice

import (
	"errors"
	"strings"
	"time"
)

// Assignment is the domain entity corresponding to the `facturas_asignadas`
// table: a dispatcher's decision to send one invoice with one driver on one
// vehicle. Delivery notes reference it by InvoiceNumber (business key), not
// by surrogate id.
type Assignment struct {
	// Identity & audit
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Business keys
	InvoiceNumber string
	DriverName    string
	VehicleNumber string

	// Core state
	AssignmentDate string // opaque calendar date, YYYY-MM-DD
	Status         Status
	TripID         *string
	Notes          *string
}

var (
	ErrInvoiceNumberRequired = errors.New("invoice number is required")
	ErrDriverRequired        = errors.New("driver name is required")
	ErrVehicleRequired       = errors.New("vehicle number is required")

	// ErrNotAssigned is returned when an invoice has no current assignment
	// with a trip link, so delivery notes cannot be attached to it.
	ErrNotAssigned = errors.New("la factura no está asignada a ningún viaje")
)

// NewAssignment creates an assignment in assigned state, linked to a trip.
func NewAssignment(invoiceNumber, driverName, vehicleNumber, assignmentDate, tripID, notes string) (*Assignment, error) {
	if invoiceNumber = strings.TrimSpace(invoiceNumber); invoiceNumber == "" {
		return nil, ErrInvoiceNumberRequired
	}
	if driverName = strings.TrimSpace(driverName); driverName == "" {
		return nil, ErrDriverRequired
	}
	if vehicleNumber = strings.TrimSpace(vehicleNumber); vehicleNumber == "" {
		return nil, ErrVehicleRequired
	}

	now := time.Now().UTC()
	a := &Assignment{
		CreatedAt:      now,
		UpdatedAt:      now,
		InvoiceNumber:  invoiceNumber,
		DriverName:     driverName,
		VehicleNumber:  vehicleNumber,
		AssignmentDate: strings.TrimSpace(assignmentDate),
		Status:         StatusAssigned,
	}
	if tripID = strings.TrimSpace(tripID); tripID != "" {
		a.TripID = &tripID
	}
	if notes = strings.TrimSpace(notes); notes != "" {
		a.Notes = &notes
	}
	return a, nil
}

// MarkDispatched advances assigned -> dispatched. Idempotent.
func (a *Assignment) MarkDispatched() {
	if a.Status == StatusDispatched {
		return
	}
	a.Status = StatusDispatched
	a.UpdatedAt = time.Now().UTC()
}

package ports

import (
	"context"
	"time"

	"sivec/internal/domain/driver"
	"sivec/internal/domain/guia"
	"sivec/internal/domain/invoice"
	"sivec/internal/domain/trip"
	"sivec/internal/domain/vehicle"
)

// UnitOfWork interface is used to manage transactions across multiple repository operations.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TripRepository defines the methods for managing trip data.
type TripRepository interface {
	Create(ctx context.Context, t *trip.Trip) error
	GetByID(ctx context.Context, id string) (*trip.Trip, error)
	// FindPending returns the pending trip for the exact driver+vehicle+date
	// triple, or nil when none exists.
	FindPending(ctx context.Context, driverName, vehicleNumber, tripDate string) (*trip.Trip, error)
	// FindActiveByDriver returns any pending/in_progress trip for the driver.
	FindActiveByDriver(ctx context.Context, driverName string) (*trip.Trip, error)
	// FindActiveByVehicleOtherDriver returns any pending/in_progress trip on
	// the vehicle whose driver differs from driverName.
	FindActiveByVehicleOtherDriver(ctx context.Context, vehicleNumber, driverName string) (*trip.Trip, error)
	UpdateStatus(ctx context.Context, id string, status trip.Status) error
}

// AssignmentRepository defines the methods for managing invoice-assignment data.
type AssignmentRepository interface {
	Create(ctx context.Context, a *invoice.Assignment) error
	// GetCurrentByNumber returns the current (non-dispatched) assignment for
	// an invoice number, or nil when none exists.
	GetCurrentByNumber(ctx context.Context, invoiceNumber string) (*invoice.Assignment, error)
	ListByTrip(ctx context.Context, tripID string) ([]*invoice.Assignment, error)
	// MarkDispatchedByTrip advances every assignment of a trip to dispatched.
	MarkDispatchedByTrip(ctx context.Context, tripID string) error
}

// DeliveryNoteRepository defines the methods for managing delivery-note data.
type DeliveryNoteRepository interface {
	Create(ctx context.Context, n *guia.DeliveryNote) error
	GetByID(ctx context.Context, id string) (*guia.DeliveryNote, error)
	Exists(ctx context.Context, noteNumber string) (bool, error)
	ListByTrip(ctx context.Context, tripID string) ([]*guia.DeliveryNote, error)
	UpdateStatus(ctx context.Context, id string, status guia.Status, deliveredAt *time.Time) error
}

// VehicleRepository defines the methods for managing fleet vehicles.
type VehicleRepository interface {
	Create(ctx context.Context, v *vehicle.Vehicle) error
	GetByNumber(ctx context.Context, number string) (*vehicle.Vehicle, error)
	List(ctx context.Context, branch string, onlyActive bool) ([]*vehicle.Vehicle, error)
	SetActive(ctx context.Context, number string, active bool) error
}

// TemporaryDriverRepository defines the methods for the local driver roster.
type TemporaryDriverRepository interface {
	Create(ctx context.Context, d *driver.Temporary) error
	FindByName(ctx context.Context, name string) (*driver.Temporary, error)
	List(ctx context.Context, onlyActive bool) ([]*driver.Temporary, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// RosterGateway is the read-only lookup against the external driver roster.
type RosterGateway interface {
	Exists(ctx context.Context, name string) (bool, error)
	ListNames(ctx context.Context) ([]string, error)
}

// Position is a vehicle's last known GPS fix.
type Position struct {
	VehicleNumber string    `json:"numero_vehiculo"`
	Latitude      float64   `json:"lat"`
	Longitude     float64   `json:"lng"`
	RecordedAt    time.Time `json:"registrado_en"`
}

// PositionRepository stores the last known position per vehicle.
type PositionRepository interface {
	Upsert(ctx context.Context, p Position) error
	GetByVehicle(ctx context.Context, vehicleNumber string) (*Position, error)
}

// ReportRepository exposes the aggregate queries behind the reports service.
type ReportRepository interface {
	CountTripsByStatus(ctx context.Context, branch string, status trip.Status) (int, error)
	CountTripsCompletedOn(ctx context.Context, branch, tripDate string) (int, error)
	NoteCountersByBranch(ctx context.Context, branch string) (delivered, notDelivered, pending int, err error)
}

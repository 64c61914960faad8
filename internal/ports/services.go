package ports

import (
	"context"
	"time"

	"sivec/internal/domain/driver"
	"sivec/internal/domain/guia"
	"sivec/internal/domain/trip"
	"sivec/internal/domain/vehicle"
)

// ----- DTOs for Dispatch Service -----

// AssignInvoiceInput is the validated input required to assign an invoice.
type AssignInvoiceInput struct {
	InvoiceNumber  string
	DriverName     string
	VehicleNumber  string
	AssignmentDate string // YYYY-MM-DD; empty means "server's local today"
	Branch         string
	Notes          string
}

// AssignInvoiceResult is returned by DispatchService.AssignInvoice().
type AssignInvoiceResult struct {
	AssignmentID string `json:"factura_id"`
	TripID       string `json:"viaje_id"`
	TripIsNew    bool   `json:"viaje_nuevo"`
}

// LinkDeliveryNoteInput is the validated input for linking a note.
type LinkDeliveryNoteInput struct {
	NoteNumber    string
	InvoiceNumber string
	Detail        string
	Address       string
	EmissionDate  string
}

// UpdateNoteStatusInput is the validated input for a note status update.
type UpdateNoteStatusInput struct {
	NoteID     string
	NewStatus  int        // must be one of the catalog codes 3, 4, 5
	OccurredAt *time.Time // optional; wins over server time for delivered
}

// NoteView is the wire representation of a delivery note.
type NoteView struct {
	ID            string     `json:"guia_id"`
	NoteNumber    string     `json:"numero_guia"`
	InvoiceNumber string     `json:"numero_factura"`
	TripID        string     `json:"viaje_id"`
	Detail        string     `json:"detalle,omitempty"`
	Address       string     `json:"direccion_entrega,omitempty"`
	EmissionDate  string     `json:"fecha_emision,omitempty"`
	Status        int        `json:"estado_id"`
	StatusLabel   string     `json:"estado"`
	DeliveredAt   *time.Time `json:"fecha_entrega,omitempty"`
}

// InvoiceView is the wire representation of an invoice assignment.
type InvoiceView struct {
	ID             string     `json:"factura_id"`
	InvoiceNumber  string     `json:"numero_factura"`
	DriverName     string     `json:"piloto"`
	VehicleNumber  string     `json:"numero_vehiculo"`
	AssignmentDate string     `json:"fecha_asignacion"`
	Status         int        `json:"estado_id"`
	StatusLabel    string     `json:"estado"`
	Notes          string     `json:"observaciones,omitempty"`
	DeliveryNotes  []NoteView `json:"guias"`
}

// TripView is the wire representation of a trip with its invoices and notes.
type TripView struct {
	ID            string        `json:"viaje_id"`
	VehicleNumber string        `json:"numero_vehiculo"`
	DriverName    string        `json:"piloto"`
	TripDate      string        `json:"fecha"`
	Status        int           `json:"estado_id"`
	StatusLabel   string        `json:"estado"`
	Branch        string        `json:"sucursal"`
	Automatic     bool          `json:"creado_automaticamente"`
	Invoices      []InvoiceView `json:"facturas"`
}

// ----- Dispatch Service Interface -----

// DispatchService exposes the trip/invoice/delivery-note lifecycle.
type DispatchService interface {
	AssignInvoice(ctx context.Context, in AssignInvoiceInput) (AssignInvoiceResult, error)
	LinkDeliveryNote(ctx context.Context, in LinkDeliveryNoteInput) (NoteView, error)
	UpdateDeliveryNoteStatus(ctx context.Context, in UpdateNoteStatusInput) (NoteView, error)
	GetTrip(ctx context.Context, tripID string) (TripView, error)
}

// ---------------------------------------------------------------------------------------------------------------

// ----- Event notification -----

// EventNotifier broadcasts state changes to connected observers. All calls
// are fire-and-forget: implementations log failures and never return them,
// so a lost event cannot fail the caller's request.
type EventNotifier interface {
	NoteLinked(ctx context.Context, n *guia.DeliveryNote, branch string)
	NoteStatusChanged(ctx context.Context, n *guia.DeliveryNote, branch string)
	TripStatusChanged(ctx context.Context, t *trip.Trip, old trip.Status)
	TripProgress(ctx context.Context, t *trip.Trip, p guia.Progress)
	TripCompleted(ctx context.Context, t *trip.Trip, p guia.Progress)
}

// ---------------------------------------------------------------------------------------------------------------

// ----- DTOs for Fleet Service -----

// CreateVehicleInput is the validated input for registering a vehicle.
type CreateVehicleInput struct {
	Number string
	Plate  string
	Branch string
}

// VehicleView is the wire representation of a vehicle.
type VehicleView struct {
	Number string `json:"numero"`
	Plate  string `json:"placa"`
	Branch string `json:"sucursal"`
	Active bool   `json:"activo"`
}

// RosterEntry is one driver in the merged roster.
type RosterEntry struct {
	Name   string `json:"nombre"`
	Source string `json:"origen"` // EXTERNAL | TEMPORARY
	ID     string `json:"id,omitempty"`
	Active bool   `json:"activo"`
	Notes  string `json:"observaciones,omitempty"`
}

// ----- Fleet Service Interface -----

// DriverResolver validates a driver name against both rosters and returns
// a boundary reference. Only the display name is persisted downstream.
type DriverResolver interface {
	ResolveDriver(ctx context.Context, name string) (driver.Ref, error)
}

// FleetService manages vehicles and the merged driver roster.
type FleetService interface {
	DriverResolver

	CreateVehicle(ctx context.Context, in CreateVehicleInput) (VehicleView, error)
	ListVehicles(ctx context.Context, branch string, onlyActive bool) ([]VehicleView, error)
	SetVehicleActive(ctx context.Context, number string, active bool) error
	GetVehicle(ctx context.Context, number string) (*vehicle.Vehicle, error)

	CreateTemporaryDriver(ctx context.Context, name, notes string) (RosterEntry, error)
	ListRoster(ctx context.Context) ([]RosterEntry, error)
}

// ---------------------------------------------------------------------------------------------------------------

// ----- DTOs for Reports Service -----

// BranchSummary groups the operational KPIs for one branch.
type BranchSummary struct {
	Branch              string `json:"sucursal"`
	PendingTrips        int    `json:"viajes_pendientes"`
	TripsInProgress     int    `json:"viajes_en_curso"`
	TripsCompletedToday int    `json:"viajes_completados_hoy"`
	NotesDelivered      int    `json:"guias_entregadas"`
	NotesNotDelivered   int    `json:"guias_no_entregadas"`
	NotesPending        int    `json:"guias_pendientes"`
	SuccessRate         int    `json:"tasa_exito"`
}

// ReportsService exposes role/branch-scoped operational reporting.
type ReportsService interface {
	BranchSummary(ctx context.Context, branch string) (BranchSummary, error)
}

// ---------------------------------------------------------------------------------------------------------------

// ----- Tracking Service Interface -----

// TrackingService relays GPS fixes into storage and to connected dispatchers.
type TrackingService interface {
	LastPosition(ctx context.Context, vehicleNumber string) (*Position, error)
	StartBackgroundConsumer(ctx context.Context)
}

package service

import (
	"errors"
	"time"

	"sivec/internal/general/logger"
	"sivec/internal/ports"
)

// Errors surfaced to handlers. Conflict and validation errors from the
// domain packages pass through unchanged so their messages reach the client.
var (
	ErrTripNotFound    = errors.New("el viaje no existe")
	ErrNoteNotFound    = errors.New("la guía no existe")
	ErrInvalidDate     = errors.New("la fecha debe tener formato YYYY-MM-DD")
	ErrInvalidStatus   = errors.New("estado de guía inválido")
	ErrBranchForbidden = errors.New("la sucursal del viaje no corresponde al usuario")
)

// Service implements ports.DispatchService: invoice assignment, delivery-note
// linking, note status tracking and the trip lifecycle derived from them.
type Service struct {
	uow         ports.UnitOfWork
	trips       ports.TripRepository
	assignments ports.AssignmentRepository
	notes       ports.DeliveryNoteRepository
	vehicles    ports.VehicleRepository
	drivers     ports.DriverResolver
	notifier    ports.EventNotifier
	logger      *logger.Logger
}

// NewService wires the dispatch service with its collaborators.
func NewService(
	uow ports.UnitOfWork,
	trips ports.TripRepository,
	assignments ports.AssignmentRepository,
	notes ports.DeliveryNoteRepository,
	vehicles ports.VehicleRepository,
	drivers ports.DriverResolver,
	notifier ports.EventNotifier,
	logger *logger.Logger,
) *Service {
	return &Service{
		uow:         uow,
		trips:       trips,
		assignments: assignments,
		notes:       notes,
		vehicles:    vehicles,
		drivers:     drivers,
		notifier:    notifier,
		logger:      logger,
	}
}

var _ ports.DispatchService = (*Service)(nil)

// validDate accepts an opaque YYYY-MM-DD calendar date.
func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// today returns the server's local calendar date. Dispatchers and the server
// share a timezone; trip dates deliberately follow the office clock.
func today() string {
	return time.Now().Format("2006-01-02")
}

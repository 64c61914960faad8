package trip

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Trip is the domain entity corresponding to the `viajes` table.
// DriverName is a display name, not a foreign key: drivers come from two
// heterogeneous rosters unified only by name, so trips match drivers by
// name equality (deliberate denormalization).
type Trip struct {
	// Identity & audit
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Core state
	VehicleNumber string
	DriverName    string
	TripDate      string // opaque calendar date, YYYY-MM-DD
	Status        Status
	Branch        string

	// Provenance
	CreatedAutomatically bool
}

var (
	ErrDriverRequired          = errors.New("driver name is required")
	ErrVehicleRequired         = errors.New("vehicle number is required")
	ErrDateRequired            = errors.New("trip date is required")
	ErrInvalidStatusTransition = errors.New("invalid trip status transition")
)

// NewTrip creates a new trip in pending state.
func NewTrip(vehicleNumber, driverName, tripDate, branch string, createdAutomatically bool) (*Trip, error) {
	if vehicleNumber = strings.TrimSpace(vehicleNumber); vehicleNumber == "" {
		return nil, ErrVehicleRequired
	}
	if driverName = strings.TrimSpace(driverName); driverName == "" {
		return nil, ErrDriverRequired
	}
	if tripDate = strings.TrimSpace(tripDate); tripDate == "" {
		return nil, ErrDateRequired
	}

	now := time.Now().UTC()
	return &Trip{
		CreatedAt:            now,
		UpdatedAt:            now,
		VehicleNumber:        vehicleNumber,
		DriverName:           driverName,
		TripDate:             tripDate,
		Status:               StatusPending,
		Branch:               strings.TrimSpace(branch),
		CreatedAutomatically: createdAutomatically,
	}, nil
}

// Start transitions pending -> in_progress.
func (t *Trip) Start() error {
	if !t.Status.CanTransitionTo(StatusInProgress) {
		return ErrInvalidStatusTransition
	}
	t.setStatus(StatusInProgress)
	return nil
}

// Complete transitions in_progress -> completed. Completing an already
// completed trip is a no-op.
func (t *Trip) Complete() error {
	if t.Status == StatusCompleted {
		return nil
	}
	if !t.Status.CanTransitionTo(StatusCompleted) {
		return ErrInvalidStatusTransition
	}
	t.setStatus(StatusCompleted)
	return nil
}

func (t *Trip) setStatus(status Status) {
	t.Status = status
	t.UpdatedAt = time.Now().UTC()
}

// ----- exclusivity conflicts -----

// DriverBusyError reports that the driver already has an active trip.
// The message names the blocking trip so a dispatcher can resolve the
// conflict without additional queries.
type DriverBusyError struct {
	TripID        string
	DriverName    string
	VehicleNumber string
	Status        Status
}

func (e *DriverBusyError) Error() string {
	return fmt.Sprintf("el piloto %s ya tiene el viaje %s (%s) en el vehículo %s",
		e.DriverName, e.TripID, e.Status.Label(), e.VehicleNumber)
}

// VehicleBusyError reports that the vehicle is already on an active trip
// with a different driver.
type VehicleBusyError struct {
	TripID        string
	DriverName    string
	VehicleNumber string
	Status        Status
}

func (e *VehicleBusyError) Error() string {
	return fmt.Sprintf("el vehículo %s ya está en el viaje %s (%s) con el piloto %s",
		e.VehicleNumber, e.TripID, e.Status.Label(), e.DriverName)
}

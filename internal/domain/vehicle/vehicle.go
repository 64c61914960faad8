package vehicle

import (
	"errors"
	"strings"
	"time"
)

// Vehicle is the domain entity corresponding to the `vehiculos` table.
// Number is the human-readable fleet identifier used as business key on
// trips and invoice assignments.
type Vehicle struct {
	// Identity & audit
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Business keys
	Number string // unique fleet number, e.g. "C-20"
	Plate  string // unique license plate

	// Core state
	Branch string
	Active bool
}

var (
	ErrNumberRequired = errors.New("vehicle number is required")
	ErrPlateRequired  = errors.New("license plate is required")
	ErrBranchRequired = errors.New("branch is required")

	// ErrUnknownVehicle is returned when a vehicle number is not in the fleet.
	ErrUnknownVehicle = errors.New("el vehículo no existe")

	// ErrInactiveVehicle is returned when dispatching on a deactivated vehicle.
	ErrInactiveVehicle = errors.New("el vehículo está desactivado")
)

// NewVehicle creates an active vehicle owned by a branch.
func NewVehicle(number, plate, branch string) (*Vehicle, error) {
	if number = strings.TrimSpace(number); number == "" {
		return nil, ErrNumberRequired
	}
	if plate = strings.TrimSpace(plate); plate == "" {
		return nil, ErrPlateRequired
	}
	if branch = strings.TrimSpace(branch); branch == "" {
		return nil, ErrBranchRequired
	}

	now := time.Now().UTC()
	return &Vehicle{
		CreatedAt: now,
		UpdatedAt: now,
		Number:    number,
		Plate:     strings.ToUpper(plate),
		Branch:    branch,
		Active:    true,
	}, nil
}

// Deactivate takes the vehicle out of dispatch. Idempotent.
func (v *Vehicle) Deactivate() {
	if !v.Active {
		return
	}
	v.Active = false
	v.UpdatedAt = time.Now().UTC()
}

package trip

import (
	"errors"
	"strings"
	"testing"
)

func TestNewTripValidation(t *testing.T) {
	if _, err := NewTrip("", "Juan Pérez", "2025-03-10", "central", true); !errors.Is(err, ErrVehicleRequired) {
		t.Errorf("empty vehicle: got %v", err)
	}
	if _, err := NewTrip("C-20", "  ", "2025-03-10", "central", true); !errors.Is(err, ErrDriverRequired) {
		t.Errorf("empty driver: got %v", err)
	}
	if _, err := NewTrip("C-20", "Juan Pérez", "", "central", true); !errors.Is(err, ErrDateRequired) {
		t.Errorf("empty date: got %v", err)
	}

	tr, err := NewTrip(" C-20 ", " Juan Pérez ", "2025-03-10", "central", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Status != StatusPending {
		t.Errorf("new trip must be pending, got %s", tr.Status.Label())
	}
	if tr.VehicleNumber != "C-20" || tr.DriverName != "Juan Pérez" {
		t.Error("fields must be trimmed")
	}
	if !tr.CreatedAutomatically {
		t.Error("provenance flag lost")
	}
}

func TestTripLifecycle(t *testing.T) {
	tr, _ := NewTrip("C-20", "Juan Pérez", "2025-03-10", "central", true)

	if err := tr.Complete(); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Errorf("pending -> completed must fail, got %v", err)
	}
	if err := tr.Start(); err != nil {
		t.Fatalf("pending -> in_progress: %v", err)
	}
	if err := tr.Start(); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Errorf("double start must fail, got %v", err)
	}
	if err := tr.Complete(); err != nil {
		t.Fatalf("in_progress -> completed: %v", err)
	}
	// completing a completed trip is a no-op
	if err := tr.Complete(); err != nil {
		t.Errorf("repeat completion must be idempotent, got %v", err)
	}
}

func TestBusyErrorMessages(t *testing.T) {
	driverErr := &DriverBusyError{TripID: "T1", DriverName: "Juan Pérez", VehicleNumber: "C-20", Status: StatusPending}
	if !strings.Contains(driverErr.Error(), "T1") || !strings.Contains(driverErr.Error(), "Juan Pérez") {
		t.Errorf("driver conflict must name the blocking trip: %q", driverErr.Error())
	}

	vehicleErr := &VehicleBusyError{TripID: "T2", DriverName: "María López", VehicleNumber: "C-20", Status: StatusInProgress}
	if !strings.Contains(vehicleErr.Error(), "C-20") || !strings.Contains(vehicleErr.Error(), "T2") {
		t.Errorf("vehicle conflict must name the vehicle and trip: %q", vehicleErr.Error())
	}
}

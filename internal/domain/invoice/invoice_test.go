package invoice

import (
	"errors"
	"testing"
)

func TestNewAssignment(t *testing.T) {
	if _, err := NewAssignment("", "Juan", "C-20", "2025-03-10", "T1", ""); !errors.Is(err, ErrInvoiceNumberRequired) {
		t.Errorf("empty invoice number: got %v", err)
	}

	a, err := NewAssignment("F-100", "Juan", "C-20", "2025-03-10", "T1", "frágil")
	if err != nil {
		t.Fatalf("NewAssignment: %v", err)
	}
	if a.Status != StatusAssigned {
		t.Errorf("new assignment must be assigned, got %s", a.Status.Label())
	}
	if a.TripID == nil || *a.TripID != "T1" {
		t.Error("trip link lost")
	}
	if a.Notes == nil || *a.Notes != "frágil" {
		t.Error("notes lost")
	}
}

func TestMarkDispatchedIdempotent(t *testing.T) {
	a, _ := NewAssignment("F-100", "Juan", "C-20", "2025-03-10", "T1", "")

	a.MarkDispatched()
	if a.Status != StatusDispatched {
		t.Fatalf("expected dispatched, got %s", a.Status.Label())
	}

	updatedAt := a.UpdatedAt
	a.MarkDispatched()
	if !a.UpdatedAt.Equal(updatedAt) {
		t.Error("repeat dispatch must be a no-op")
	}
}

package guia

import (
	"errors"
	"testing"
	"time"
)

func newLinkedNote(t *testing.T) *DeliveryNote {
	t.Helper()
	n, err := NewDeliveryNote("G-001", "F-100", "T1", "10 cajas", "Zona 4", "2025-03-10")
	if err != nil {
		t.Fatalf("NewDeliveryNote: %v", err)
	}
	return n
}

func TestApplyDelivered(t *testing.T) {
	n := newLinkedNote(t)

	if err := n.Apply(StatusDelivered, nil); err != nil {
		t.Fatalf("linked -> delivered: %v", err)
	}
	if n.Status != StatusDelivered {
		t.Errorf("status not updated: %s", n.Status.Label())
	}
	if n.DeliveredAt == nil {
		t.Fatal("delivered must stamp DeliveredAt")
	}
}

func TestApplyDeliveredWithOccurredAt(t *testing.T) {
	n := newLinkedNote(t)
	occurred := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	if err := n.Apply(StatusDelivered, &occurred); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !n.DeliveredAt.Equal(occurred) {
		t.Errorf("client timestamp must win over server time: got %v", n.DeliveredAt)
	}
}

func TestApplySameStatusIsNoop(t *testing.T) {
	n := newLinkedNote(t)

	if err := n.Apply(StatusLinked, nil); err != nil {
		t.Fatalf("linked -> linked must be a no-op, got %v", err)
	}

	if err := n.Apply(StatusNotDelivered, nil); err != nil {
		t.Fatalf("apply: %v", err)
	}
	updatedAt := n.UpdatedAt
	if err := n.Apply(StatusNotDelivered, nil); err != nil {
		t.Fatalf("repeating the same terminal status must be a no-op, got %v", err)
	}
	if !n.UpdatedAt.Equal(updatedAt) {
		t.Error("no-op must not touch the note")
	}
}

func TestApplyFromTerminalFails(t *testing.T) {
	n := newLinkedNote(t)
	if err := n.Apply(StatusDelivered, nil); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if err := n.Apply(StatusNotDelivered, nil); !errors.Is(err, ErrAlreadyFinalized) {
		t.Errorf("delivered -> not_delivered must fail, got %v", err)
	}
	if err := n.Apply(StatusLinked, nil); !errors.Is(err, ErrAlreadyFinalized) {
		t.Errorf("delivered -> linked must fail, got %v", err)
	}
}

func TestApplyInvalidStatus(t *testing.T) {
	n := newLinkedNote(t)
	if err := n.Apply(Status(42), nil); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("unknown status must fail, got %v", err)
	}
}

func TestNotDeliveredLeavesNoTimestamp(t *testing.T) {
	n := newLinkedNote(t)
	if err := n.Apply(StatusNotDelivered, nil); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if n.DeliveredAt != nil {
		t.Error("not_delivered must not stamp DeliveredAt")
	}
}

package service

import (
	"context"
	"strings"

	"sivec/internal/domain/guia"
	"sivec/internal/domain/invoice"
	"sivec/internal/domain/trip"
	"sivec/internal/ports"
)

// LinkDeliveryNote attaches a delivery note to the trip of the invoice's
// current assignment. A trip moves pending -> in_progress the moment every
// one of its invoices has at least one note: the load is then considered
// fully manifested and the vehicle on the road.
func (s *Service) LinkDeliveryNote(ctx context.Context, in ports.LinkDeliveryNoteInput) (ports.NoteView, error) {
	in.NoteNumber = strings.TrimSpace(in.NoteNumber)
	if in.NoteNumber == "" {
		return ports.NoteView{}, guia.ErrNoteNumberRequired
	}
	in.InvoiceNumber = strings.TrimSpace(in.InvoiceNumber)
	if in.InvoiceNumber == "" {
		return ports.NoteView{}, guia.ErrInvoiceNumberRequired
	}
	if in.EmissionDate != "" && !validDate(in.EmissionDate) {
		return ports.NoteView{}, ErrInvalidDate
	}

	var (
		note       *guia.DeliveryNote
		started    *trip.Trip
		oldStatus  trip.Status
		tripBranch string
	)

	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		// note numbers are globally unique; the DB constraint backs this
		// check up against concurrent linkers
		exists, err := s.notes.Exists(ctx, in.NoteNumber)
		if err != nil {
			return err
		}
		if exists {
			return guia.ErrDuplicateNote
		}

		a, err := s.assignments.GetCurrentByNumber(ctx, in.InvoiceNumber)
		if err != nil {
			return err
		}
		if a == nil || a.TripID == nil {
			return invoice.ErrNotAssigned
		}

		note, err = guia.NewDeliveryNote(in.NoteNumber, in.InvoiceNumber, *a.TripID, in.Detail, in.Address, in.EmissionDate)
		if err != nil {
			return err
		}
		if err := s.notes.Create(ctx, note); err != nil {
			return err
		}

		// maybe the trip just became fully manifested
		t, err := s.trips.GetByID(ctx, *a.TripID)
		if err != nil {
			return err
		}
		tripBranch = t.Branch
		if t.Status != trip.StatusPending {
			return nil
		}

		assignments, err := s.assignments.ListByTrip(ctx, t.ID)
		if err != nil {
			return err
		}
		invoiceNumbers := make([]string, 0, len(assignments))
		for _, a := range assignments {
			invoiceNumbers = append(invoiceNumbers, a.InvoiceNumber)
		}

		notes, err := s.notes.ListByTrip(ctx, t.ID)
		if err != nil {
			return err
		}

		if !guia.AllInvoicesCovered(invoiceNumbers, notes) {
			return nil
		}

		oldStatus = t.Status
		if err := s.trips.UpdateStatus(ctx, t.ID, trip.StatusInProgress); err != nil {
			return err
		}
		t.Status = trip.StatusInProgress
		started = t
		return nil
	})
	if err != nil {
		return ports.NoteView{}, err
	}

	ctx = s.logger.WithTripID(ctx, note.TripID)
	s.logger.Info(ctx, "guia_vinculada", "Delivery note linked to trip", map[string]any{
		"numero_guia":    note.NoteNumber,
		"numero_factura": note.InvoiceNumber,
	})

	s.notifier.NoteLinked(ctx, note, tripBranch)
	if started != nil {
		s.logger.Info(ctx, "viaje_iniciado", "Trip moved to in_progress: all invoices have notes", nil)
		s.notifier.TripStatusChanged(ctx, started, oldStatus)
	}

	return noteView(note), nil
}

// noteView maps a domain note to its wire representation.
func noteView(n *guia.DeliveryNote) ports.NoteView {
	return ports.NoteView{
		ID:            n.ID,
		NoteNumber:    n.NoteNumber,
		InvoiceNumber: n.InvoiceNumber,
		TripID:        n.TripID,
		Detail:        n.Detail,
		Address:       n.Address,
		EmissionDate:  n.EmissionDate,
		Status:        n.Status.Code(),
		StatusLabel:   n.Status.Label(),
		DeliveredAt:   n.DeliveredAt,
	}
}

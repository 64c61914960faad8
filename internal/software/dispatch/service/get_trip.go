package service

import (
	"context"
	"errors"

	"sivec/internal/domain/guia"
	"sivec/internal/domain/invoice"
	"sivec/internal/ports"

	"github.com/jackc/pgx/v5"
)

// GetTrip returns a trip with its invoices and their delivery notes.
func (s *Service) GetTrip(ctx context.Context, tripID string) (ports.TripView, error) {
	var out ports.TripView

	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		t, err := s.trips.GetByID(ctx, tripID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTripNotFound
		}
		if err != nil {
			return err
		}

		assignments, err := s.assignments.ListByTrip(ctx, tripID)
		if err != nil {
			return err
		}
		notes, err := s.notes.ListByTrip(ctx, tripID)
		if err != nil {
			return err
		}

		notesByInvoice := make(map[string][]*guia.DeliveryNote, len(assignments))
		for _, n := range notes {
			notesByInvoice[n.InvoiceNumber] = append(notesByInvoice[n.InvoiceNumber], n)
		}

		invoices := make([]ports.InvoiceView, 0, len(assignments))
		for _, a := range assignments {
			invoices = append(invoices, invoiceView(a, notesByInvoice[a.InvoiceNumber]))
		}

		out = ports.TripView{
			ID:            t.ID,
			VehicleNumber: t.VehicleNumber,
			DriverName:    t.DriverName,
			TripDate:      t.TripDate,
			Status:        t.Status.Code(),
			StatusLabel:   t.Status.Label(),
			Branch:        t.Branch,
			Automatic:     t.CreatedAutomatically,
			Invoices:      invoices,
		}
		return nil
	})
	if err != nil {
		return ports.TripView{}, err
	}

	return out, nil
}

func invoiceView(a *invoice.Assignment, notes []*guia.DeliveryNote) ports.InvoiceView {
	views := make([]ports.NoteView, 0, len(notes))
	for _, n := range notes {
		views = append(views, noteView(n))
	}

	out := ports.InvoiceView{
		ID:             a.ID,
		InvoiceNumber:  a.InvoiceNumber,
		DriverName:     a.DriverName,
		VehicleNumber:  a.VehicleNumber,
		AssignmentDate: a.AssignmentDate,
		Status:         a.Status.Code(),
		StatusLabel:    a.Status.Label(),
		DeliveryNotes:  views,
	}
	if a.Notes != nil {
		out.Notes = *a.Notes
	}
	return out
}

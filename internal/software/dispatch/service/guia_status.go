package service

import (
	"context"
	"errors"

	"sivec/internal/domain/guia"
	"sivec/internal/domain/trip"
	"sivec/internal/ports"

	"github.com/jackc/pgx/v5"
)

// UpdateDeliveryNoteStatus finalizes a delivery note and then derives trip
// progress from it. The note update commits first; aggregation and
// completion run in a second transaction whose failure is logged but never
// surfaced, so a committed delivery can't be reported as failed.
func (s *Service) UpdateDeliveryNoteStatus(ctx context.Context, in ports.UpdateNoteStatusInput) (ports.NoteView, error) {
	next, err := guia.ParseStatus(in.NewStatus)
	if err != nil {
		return ports.NoteView{}, ErrInvalidStatus
	}

	var (
		note       *guia.DeliveryNote
		changed    bool
		tripBranch string
	)

	err = s.uow.WithinTx(ctx, func(ctx context.Context) error {
		note, err = s.notes.GetByID(ctx, in.NoteID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNoteNotFound
		}
		if err != nil {
			return err
		}

		before := note.Status
		if err := note.Apply(next, in.OccurredAt); err != nil {
			return err
		}
		changed = note.Status != before
		if !changed {
			return nil
		}

		// the owning trip scopes the note event to its branch
		t, err := s.trips.GetByID(ctx, note.TripID)
		if err != nil {
			return err
		}
		tripBranch = t.Branch

		return s.notes.UpdateStatus(ctx, note.ID, note.Status, note.DeliveredAt)
	})
	if err != nil {
		return ports.NoteView{}, err
	}

	ctx = s.logger.WithTripID(ctx, note.TripID)

	if changed {
		s.logger.Info(ctx, "guia_estado_actualizado", "Delivery note finalized", map[string]any{
			"numero_guia": note.NoteNumber,
			"estado":      note.Status.Label(),
		})
		s.notifier.NoteStatusChanged(ctx, note, tripBranch)
		s.refreshTripProgress(ctx, note.TripID)
	}

	return noteView(note), nil
}

// refreshTripProgress recomputes trip counters after a finalization and
// completes the trip once every note is finalized. Runs best-effort.
func (s *Service) refreshTripProgress(ctx context.Context, tripID string) {
	var (
		t         *trip.Trip
		progress  guia.Progress
		completed bool
	)

	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		t, err = s.trips.GetByID(ctx, tripID)
		if err != nil {
			return err
		}

		notes, err := s.notes.ListByTrip(ctx, tripID)
		if err != nil {
			return err
		}
		progress = guia.Summarize(notes)

		if !progress.Complete() || t.Status != trip.StatusInProgress {
			return nil
		}

		if err := s.trips.UpdateStatus(ctx, tripID, trip.StatusCompleted); err != nil {
			return err
		}
		t.Status = trip.StatusCompleted

		// the trip's invoices ride along: completed trip means dispatched load
		if err := s.assignments.MarkDispatchedByTrip(ctx, tripID); err != nil {
			return err
		}
		completed = true
		return nil
	})
	if err != nil {
		s.logger.Error(ctx, "viaje_progreso_fallido", "Trip progress aggregation failed after note update", err, nil)
		return
	}

	s.notifier.TripProgress(ctx, t, progress)
	if completed {
		s.logger.Info(ctx, "viaje_completado", "Trip completed: all notes finalized", map[string]any{
			"entregadas":    progress.Delivered,
			"no_entregadas": progress.NotDelivered,
		})
		s.notifier.TripCompleted(ctx, t, progress)
	}
}

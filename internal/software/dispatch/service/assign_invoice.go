package service

import (
	"context"
	"strings"

	"sivec/internal/domain/invoice"
	"sivec/internal/domain/trip"
	"sivec/internal/domain/vehicle"
	"sivec/internal/ports"
)

// AssignInvoice assigns an invoice to a driver+vehicle pair, reusing the
// pending trip for that exact combination when one exists and creating a
// fresh trip otherwise.
//
// Reuse is checked before exclusivity: adding a second invoice to a
// driver's own pending trip must succeed even though the driver is, by
// definition, already busy with that trip.
func (s *Service) AssignInvoice(ctx context.Context, in ports.AssignInvoiceInput) (ports.AssignInvoiceResult, error) {
	var out ports.AssignInvoiceResult

	in.InvoiceNumber = strings.TrimSpace(in.InvoiceNumber)
	if in.InvoiceNumber == "" {
		return out, invoice.ErrInvoiceNumberRequired
	}
	if strings.TrimSpace(in.DriverName) == "" {
		return out, invoice.ErrDriverRequired
	}
	if strings.TrimSpace(in.VehicleNumber) == "" {
		return out, invoice.ErrVehicleRequired
	}
	if in.AssignmentDate == "" {
		in.AssignmentDate = today()
	} else if !validDate(in.AssignmentDate) {
		return out, ErrInvalidDate
	}

	// both rosters are consulted; only the display name travels further
	ref, err := s.drivers.ResolveDriver(ctx, in.DriverName)
	if err != nil {
		return out, err
	}
	driverName := ref.DisplayName

	veh, err := s.vehicles.GetByNumber(ctx, in.VehicleNumber)
	if err != nil {
		return out, err
	}
	if veh == nil {
		return out, vehicle.ErrUnknownVehicle
	}
	if !veh.Active {
		return out, vehicle.ErrInactiveVehicle
	}

	branch := strings.TrimSpace(in.Branch)
	if branch == "" {
		branch = veh.Branch
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context) error {
		// 1) reuse the pending trip for this exact driver+vehicle+date
		existing, err := s.trips.FindPending(ctx, driverName, veh.Number, in.AssignmentDate)
		if err != nil {
			return err
		}

		var tripID string
		if existing != nil {
			tripID = existing.ID
			out.TripIsNew = false
		} else {
			// 2) no reusable trip: enforce driver and vehicle exclusivity.
			// Read-then-write: two concurrent assignments for the same
			// driver or vehicle can both pass these checks, no unique
			// index backs them. The second trip surfaces on the board and
			// the dispatcher resolves it by hand.
			if busy, err := s.trips.FindActiveByDriver(ctx, driverName); err != nil {
				return err
			} else if busy != nil {
				return &trip.DriverBusyError{
					TripID:        busy.ID,
					DriverName:    busy.DriverName,
					VehicleNumber: busy.VehicleNumber,
					Status:        busy.Status,
				}
			}
			if busy, err := s.trips.FindActiveByVehicleOtherDriver(ctx, veh.Number, driverName); err != nil {
				return err
			} else if busy != nil {
				return &trip.VehicleBusyError{
					TripID:        busy.ID,
					DriverName:    busy.DriverName,
					VehicleNumber: busy.VehicleNumber,
					Status:        busy.Status,
				}
			}

			// 3) open a fresh trip; a dispatcher opened it, so it is not
			// flagged as auto-created
			t, err := trip.NewTrip(veh.Number, driverName, in.AssignmentDate, branch, false)
			if err != nil {
				return err
			}
			if err := s.trips.Create(ctx, t); err != nil {
				return err
			}
			tripID = t.ID
			out.TripIsNew = true
		}

		a, err := invoice.NewAssignment(in.InvoiceNumber, driverName, veh.Number, in.AssignmentDate, tripID, in.Notes)
		if err != nil {
			return err
		}
		if err := s.assignments.Create(ctx, a); err != nil {
			return err
		}

		out.AssignmentID = a.ID
		out.TripID = tripID
		return nil
	})
	if err != nil {
		return ports.AssignInvoiceResult{}, err
	}

	s.logger.Info(s.logger.WithTripID(ctx, out.TripID), "factura_asignada", "Invoice assigned to trip", map[string]any{
		"numero_factura": in.InvoiceNumber,
		"piloto":         driverName,
		"vehiculo":       veh.Number,
		"viaje_nuevo":    out.TripIsNew,
	})

	return out, nil
}

package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"sivec/internal/domain/driver"
	"sivec/internal/domain/guia"
	"sivec/internal/domain/invoice"
	"sivec/internal/domain/trip"
	"sivec/internal/domain/vehicle"
	"sivec/internal/general/logger"
	"sivec/internal/ports"
	"sivec/internal/software/dispatch/service"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

// ----- in-memory fakes -----

type fakeUOW struct{}

func (fakeUOW) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memStore struct {
	trips       map[string]*trip.Trip
	assignments []*invoice.Assignment
	notes       []*guia.DeliveryNote
	seq         int
}

func newMemStore() *memStore {
	return &memStore{trips: make(map[string]*trip.Trip)}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%d", prefix, s.seq)
}

type tripRepo struct{ s *memStore }

func (r *tripRepo) Create(_ context.Context, t *trip.Trip) error {
	t.ID = r.s.nextID("T")
	r.s.trips[t.ID] = t
	return nil
}

func (r *tripRepo) GetByID(_ context.Context, id string) (*trip.Trip, error) {
	t, ok := r.s.trips[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return t, nil
}

func (r *tripRepo) FindPending(_ context.Context, driverName, vehicleNumber, tripDate string) (*trip.Trip, error) {
	for _, t := range r.s.trips {
		if t.DriverName == driverName && t.VehicleNumber == vehicleNumber &&
			t.TripDate == tripDate && t.Status == trip.StatusPending {
			return t, nil
		}
	}
	return nil, nil
}

func (r *tripRepo) FindActiveByDriver(_ context.Context, driverName string) (*trip.Trip, error) {
	for _, t := range r.s.trips {
		if t.DriverName == driverName && t.Status.Active() {
			return t, nil
		}
	}
	return nil, nil
}

func (r *tripRepo) FindActiveByVehicleOtherDriver(_ context.Context, vehicleNumber, driverName string) (*trip.Trip, error) {
	for _, t := range r.s.trips {
		if t.VehicleNumber == vehicleNumber && t.DriverName != driverName && t.Status.Active() {
			return t, nil
		}
	}
	return nil, nil
}

func (r *tripRepo) UpdateStatus(_ context.Context, id string, status trip.Status) error {
	t, ok := r.s.trips[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if t.Status == status {
		return nil
	}
	if !t.Status.CanTransitionTo(status) {
		return trip.ErrInvalidStatusTransition
	}
	t.Status = status
	return nil
}

type assignmentRepo struct{ s *memStore }

func (r *assignmentRepo) Create(_ context.Context, a *invoice.Assignment) error {
	a.ID = r.s.nextID("A")
	r.s.assignments = append(r.s.assignments, a)
	return nil
}

func (r *assignmentRepo) GetCurrentByNumber(_ context.Context, invoiceNumber string) (*invoice.Assignment, error) {
	for i := len(r.s.assignments) - 1; i >= 0; i-- {
		a := r.s.assignments[i]
		if a.InvoiceNumber == invoiceNumber && a.Status == invoice.StatusAssigned {
			return a, nil
		}
	}
	return nil, nil
}

func (r *assignmentRepo) ListByTrip(_ context.Context, tripID string) ([]*invoice.Assignment, error) {
	var out []*invoice.Assignment
	for _, a := range r.s.assignments {
		if a.TripID != nil && *a.TripID == tripID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *assignmentRepo) MarkDispatchedByTrip(_ context.Context, tripID string) error {
	for _, a := range r.s.assignments {
		if a.TripID != nil && *a.TripID == tripID {
			a.MarkDispatched()
		}
	}
	return nil
}

type noteRepo struct{ s *memStore }

func (r *noteRepo) Create(_ context.Context, n *guia.DeliveryNote) error {
	for _, existing := range r.s.notes {
		if existing.NoteNumber == n.NoteNumber {
			return guia.ErrDuplicateNote
		}
	}
	n.ID = r.s.nextID("G")
	r.s.notes = append(r.s.notes, n)
	return nil
}

func (r *noteRepo) GetByID(_ context.Context, id string) (*guia.DeliveryNote, error) {
	for _, n := range r.s.notes {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *noteRepo) Exists(_ context.Context, noteNumber string) (bool, error) {
	for _, n := range r.s.notes {
		if n.NoteNumber == noteNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *noteRepo) ListByTrip(_ context.Context, tripID string) ([]*guia.DeliveryNote, error) {
	var out []*guia.DeliveryNote
	for _, n := range r.s.notes {
		if n.TripID == tripID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *noteRepo) UpdateStatus(ctx context.Context, id string, status guia.Status, deliveredAt *time.Time) error {
	n, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	n.Status = status
	n.DeliveredAt = deliveredAt
	return nil
}

type vehicleRepo struct{ vehicles map[string]*vehicle.Vehicle }

func (r *vehicleRepo) Create(_ context.Context, v *vehicle.Vehicle) error {
	r.vehicles[v.Number] = v
	return nil
}

func (r *vehicleRepo) GetByNumber(_ context.Context, number string) (*vehicle.Vehicle, error) {
	return r.vehicles[number], nil
}

func (r *vehicleRepo) List(_ context.Context, _ string, _ bool) ([]*vehicle.Vehicle, error) {
	return nil, nil
}

func (r *vehicleRepo) SetActive(_ context.Context, number string, active bool) error {
	if v, ok := r.vehicles[number]; ok {
		v.Active = active
	}
	return nil
}

type fakeResolver struct{ known map[string]bool }

func (r *fakeResolver) ResolveDriver(_ context.Context, name string) (driver.Ref, error) {
	if r.known[name] {
		return driver.ExternalRef(name), nil
	}
	return driver.Ref{}, driver.ErrUnknownDriver
}

type recordingNotifier struct {
	linked       int
	statusChange int
	tripChanges  int
	noteBranches []string
	progress     []guia.Progress
	completed    []guia.Progress
}

func (n *recordingNotifier) NoteLinked(_ context.Context, _ *guia.DeliveryNote, branch string) {
	n.linked++
	n.noteBranches = append(n.noteBranches, branch)
}

func (n *recordingNotifier) NoteStatusChanged(_ context.Context, _ *guia.DeliveryNote, branch string) {
	n.statusChange++
	n.noteBranches = append(n.noteBranches, branch)
}
func (n *recordingNotifier) TripStatusChanged(context.Context, *trip.Trip, trip.Status) {
	n.tripChanges++
}
func (n *recordingNotifier) TripProgress(_ context.Context, _ *trip.Trip, p guia.Progress) {
	n.progress = append(n.progress, p)
}
func (n *recordingNotifier) TripCompleted(_ context.Context, _ *trip.Trip, p guia.Progress) {
	n.completed = append(n.completed, p)
}

// ----- test fixture -----

type fixture struct {
	svc      *service.Service
	store    *memStore
	notifier *recordingNotifier
}

func newFixture() *fixture {
	store := newMemStore()
	notifier := &recordingNotifier{}

	vehicles := &vehicleRepo{vehicles: map[string]*vehicle.Vehicle{
		"C-20": {Number: "C-20", Plate: "P-123ABC", Branch: "central", Active: true},
		"C-21": {Number: "C-21", Plate: "P-456DEF", Branch: "central", Active: true},
		"C-99": {Number: "C-99", Plate: "P-999XYZ", Branch: "central", Active: false},
	}}
	resolver := &fakeResolver{known: map[string]bool{
		"Juan Pérez":  true,
		"María López": true,
	}}

	svc := service.NewService(
		fakeUOW{},
		&tripRepo{s: store},
		&assignmentRepo{s: store},
		&noteRepo{s: store},
		vehicles,
		resolver,
		notifier,
		logger.New("dispatch-test"),
	)

	return &fixture{svc: svc, store: store, notifier: notifier}
}

func (f *fixture) assign(t *testing.T, invoiceNumber, driverName, vehicleNumber, date string) ports.AssignInvoiceResult {
	t.Helper()
	res, err := f.svc.AssignInvoice(context.Background(), ports.AssignInvoiceInput{
		InvoiceNumber:  invoiceNumber,
		DriverName:     driverName,
		VehicleNumber:  vehicleNumber,
		AssignmentDate: date,
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) link(t *testing.T, noteNumber, invoiceNumber string) ports.NoteView {
	t.Helper()
	res, err := f.svc.LinkDeliveryNote(context.Background(), ports.LinkDeliveryNoteInput{
		NoteNumber:    noteNumber,
		InvoiceNumber: invoiceNumber,
	})
	require.NoError(t, err)
	return res
}

// ----- AssignInvoice -----

func TestAssignInvoiceCreatesTrip(t *testing.T) {
	f := newFixture()

	res := f.assign(t, "F-100", "Juan Pérez", "C-20", "2025-03-10")

	require.True(t, res.TripIsNew)
	require.NotEmpty(t, res.TripID)
	require.NotEmpty(t, res.AssignmentID)

	tr := f.store.trips[res.TripID]
	require.NotNil(t, tr)
	require.Equal(t, trip.StatusPending, tr.Status)
	require.False(t, tr.CreatedAutomatically) // a dispatcher opened it, not the auto-detector
	require.Equal(t, "central", tr.Branch)    // inherited from the vehicle
}

func TestAssignInvoiceReusesPendingTrip(t *testing.T) {
	f := newFixture()

	first := f.assign(t, "F-100", "Juan Pérez", "C-20", "2025-03-10")
	second := f.assign(t, "F-101", "Juan Pérez", "C-20", "2025-03-10")

	require.Equal(t, first.TripID, second.TripID)
	require.True(t, first.TripIsNew)
	require.False(t, second.TripIsNew)
	require.Len(t, f.store.assignments, 2)
	require.Len(t, f.store.trips, 1)
}

func TestAssignInvoiceNoReuseOnceTripStarted(t *testing.T) {
	f := newFixture()

	first := f.assign(t, "F-100", "Juan Pérez", "C-20", "2025-03-10")
	f.link(t, "G-001", "F-100") // single invoice covered: trip starts

	// same driver+vehicle+date, but the trip is no longer pending
	_, err := f.svc.AssignInvoice(context.Background(), ports.AssignInvoiceInput{
		InvoiceNumber:  "F-101",
		DriverName:     "Juan Pérez",
		VehicleNumber:  "C-20",
		AssignmentDate: "2025-03-10",
	})

	var busy *trip.DriverBusyError
	require.ErrorAs(t, err, &busy)
	require.Equal(t, first.TripID, busy.TripID)
	require.Equal(t, trip.StatusInProgress, busy.Status)
}

func TestAssignInvoiceDriverBusy(t *testing.T) {
	f := newFixture()

	first := f.assign(t, "F-100", "Juan Pérez", "C-20", "2025-03-10")

	// same driver, different vehicle: no reusable trip, so the conflict fires
	_, err := f.svc.AssignInvoice(context.Background(), ports.AssignInvoiceInput{
		InvoiceNumber:  "F-101",
		DriverName:     "Juan Pérez",
		VehicleNumber:  "C-21",
		AssignmentDate: "2025-03-10",
	})

	var busy *trip.DriverBusyError
	require.ErrorAs(t, err, &busy)
	require.Equal(t, first.TripID, busy.TripID)
}

func TestAssignInvoiceVehicleBusyWithOtherDriver(t *testing.T) {
	f := newFixture()

	first := f.assign(t, "F-100", "Juan Pérez", "C-20", "2025-03-10")

	_, err := f.svc.AssignInvoice(context.Background(), ports.AssignInvoiceInput{
		InvoiceNumber:  "F-101",
		DriverName:     "María López",
		VehicleNumber:  "C-20",
		AssignmentDate: "2025-03-10",
	})

	var busy *trip.VehicleBusyError
	require.ErrorAs(t, err, &busy)
	require.Equal(t, first.TripID, busy.TripID)
	require.Equal(t, "Juan Pérez", busy.DriverName)
}

func TestAssignInvoiceUnknownDriver(t *testing.T) {
	f := newFixture()

	_, err := f.svc.AssignInvoice(context.Background(), ports.AssignInvoiceInput{
		InvoiceNumber:  "F-100",
		DriverName:     "Carlos Inexistente",
		VehicleNumber:  "C-20",
		AssignmentDate: "2025-03-10",
	})
	require.ErrorIs(t, err, driver.ErrUnknownDriver)
}

func TestAssignInvoiceInactiveVehicle(t *testing.T) {
	f := newFixture()

	_, err := f.svc.AssignInvoice(context.Background(), ports.AssignInvoiceInput{
		InvoiceNumber:  "F-100",
		DriverName:     "Juan Pérez",
		VehicleNumber:  "C-99",
		AssignmentDate: "2025-03-10",
	})
	require.ErrorIs(t, err, vehicle.ErrInactiveVehicle)
}

func TestAssignInvoiceBadDate(t *testing.T) {
	f := newFixture()

	_, err := f.svc.AssignInvoice(context.Background(), ports.AssignInvoiceInput{
		InvoiceNumber:  "F-100",
		DriverName:     "Juan Pérez",
		VehicleNumber:  "C-20",
		AssignmentDate: "10/03/2025",
	})
	require.ErrorIs(t, err, service.ErrInvalidDate)
}

// ----- LinkDeliveryNote -----

func TestLinkNoteStartsTripWhenAllInvoicesCovered(t *testing.T) {
	f := newFixture()

	res := f.assign(t, "F-100", "Juan Pérez", "C-20", "2025-03-10")
	f.assign(t, "F-101", "Juan Pérez", "C-20", "2025-03-10")

	// first invoice gets its note: the second invoice is still uncovered
	f.link(t, "G-001", "F-100")
	require.Equal(t, trip.StatusPending, f.store.trips[res.TripID].Status)
	require.Equal(t, 0, f.notifier.tripChanges)

	// second invoice gets a note: now every invoice is covered
	f.link(t, "G-002", "F-101")
	require.Equal(t, trip.StatusInProgress, f.store.trips[res.TripID].Status)
	require.Equal(t, 1, f.notifier.tripChanges)
	require.Equal(t, 2, f.notifier.linked)

	// note events carry the trip's branch so screens elsewhere never see them
	require.Equal(t, []string{"central", "central"}, f.notifier.noteBranches)
}

func TestLinkNoteDuplicateNumber(t *testing.T) {
	f := newFixture()

	f.assign(t, "F-100", "Juan Pérez", "C-20", "2025-03-10")
	f.link(t, "G-001", "F-100")

	_, err := f.svc.LinkDeliveryNote(context.Background(), ports.LinkDeliveryNoteInput{
		NoteNumber:    "G-001",
		InvoiceNumber: "F-100",
	})
	require.ErrorIs(t, err, guia.ErrDuplicateNote)
}

func TestLinkNoteUnassignedInvoice(t *testing.T) {
	f := newFixture()

	_, err := f.svc.LinkDeliveryNote(context.Background(), ports.LinkDeliveryNoteInput{
		NoteNumber:    "G-001",
		InvoiceNumber: "F-404",
	})
	require.ErrorIs(t, err, invoice.ErrNotAssigned)
}

// ----- UpdateDeliveryNoteStatus -----

func TestNoteFinalizationCompletesTrip(t *testing.T) {
	f := newFixture()

	res := f.assign(t, "F-100", "Juan Pérez", "C-20", "2025-03-10")
	n1 := f.link(t, "G-001", "F-100") // single invoice: trip starts here
	n2 := f.link(t, "G-002", "F-100")
	require.Equal(t, trip.StatusInProgress, f.store.trips[res.TripID].Status)

	// first note delivered: progress event, trip still running
	_, err := f.svc.UpdateDeliveryNoteStatus(context.Background(), ports.UpdateNoteStatusInput{
		NoteID:    n1.ID,
		NewStatus: guia.StatusDelivered.Code(),
	})
	require.NoError(t, err)
	require.Equal(t, trip.StatusInProgress, f.store.trips[res.TripID].Status)
	require.Len(t, f.notifier.progress, 1)
	require.Empty(t, f.notifier.completed)

	// second note not delivered: every note finalized, trip completes
	view, err := f.svc.UpdateDeliveryNoteStatus(context.Background(), ports.UpdateNoteStatusInput{
		NoteID:    n2.ID,
		NewStatus: guia.StatusNotDelivered.Code(),
	})
	require.NoError(t, err)
	require.Equal(t, guia.StatusNotDelivered.Code(), view.Status)
	require.Equal(t, trip.StatusCompleted, f.store.trips[res.TripID].Status)

	require.Len(t, f.notifier.completed, 1)
	final := f.notifier.completed[0]
	require.Equal(t, 50, final.DeliveryQuality()) // 1 of 2 finalized notes delivered

	// completing the trip dispatches its invoices
	for _, a := range f.store.assignments {
		require.Equal(t, invoice.StatusDispatched, a.Status)
	}

	// status-change events stay scoped to the trip's branch
	for _, branch := range f.notifier.noteBranches {
		require.Equal(t, "central", branch)
	}
}

func TestNoteStatusRepeatIsNoop(t *testing.T) {
	f := newFixture()

	f.assign(t, "F-100", "Juan Pérez", "C-20", "2025-03-10")
	n1 := f.link(t, "G-001", "F-100")
	f.link(t, "G-002", "F-100")

	_, err := f.svc.UpdateDeliveryNoteStatus(context.Background(), ports.UpdateNoteStatusInput{
		NoteID:    n1.ID,
		NewStatus: guia.StatusNotDelivered.Code(),
	})
	require.NoError(t, err)
	progressEvents := len(f.notifier.progress)

	// same terminal status again: success, nothing moves, nothing fires
	view, err := f.svc.UpdateDeliveryNoteStatus(context.Background(), ports.UpdateNoteStatusInput{
		NoteID:    n1.ID,
		NewStatus: guia.StatusNotDelivered.Code(),
	})
	require.NoError(t, err)
	require.Equal(t, guia.StatusNotDelivered.Code(), view.Status)
	require.Len(t, f.notifier.progress, progressEvents)
}

func TestNoteStatusFromTerminalRejected(t *testing.T) {
	f := newFixture()

	f.assign(t, "F-100", "Juan Pérez", "C-20", "2025-03-10")
	n1 := f.link(t, "G-001", "F-100")

	_, err := f.svc.UpdateDeliveryNoteStatus(context.Background(), ports.UpdateNoteStatusInput{
		NoteID:    n1.ID,
		NewStatus: guia.StatusDelivered.Code(),
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateDeliveryNoteStatus(context.Background(), ports.UpdateNoteStatusInput{
		NoteID:    n1.ID,
		NewStatus: guia.StatusNotDelivered.Code(),
	})
	require.ErrorIs(t, err, guia.ErrAlreadyFinalized)
}

func TestNoteStatusUnknownNote(t *testing.T) {
	f := newFixture()

	_, err := f.svc.UpdateDeliveryNoteStatus(context.Background(), ports.UpdateNoteStatusInput{
		NoteID:    "G-404",
		NewStatus: guia.StatusDelivered.Code(),
	})
	require.ErrorIs(t, err, service.ErrNoteNotFound)
}

func TestNoteStatusInvalidCode(t *testing.T) {
	f := newFixture()

	_, err := f.svc.UpdateDeliveryNoteStatus(context.Background(), ports.UpdateNoteStatusInput{
		NoteID:    "G-1",
		NewStatus: 42,
	})
	require.ErrorIs(t, err, service.ErrInvalidStatus)
}

// ----- GetTrip -----

func TestGetTripGroupsNotesByInvoice(t *testing.T) {
	f := newFixture()

	res := f.assign(t, "F-100", "Juan Pérez", "C-20", "2025-03-10")
	f.assign(t, "F-101", "Juan Pérez", "C-20", "2025-03-10")
	f.link(t, "G-001", "F-100")
	f.link(t, "G-002", "F-100")
	f.link(t, "G-003", "F-101")

	view, err := f.svc.GetTrip(context.Background(), res.TripID)
	require.NoError(t, err)
	require.Len(t, view.Invoices, 2)
	require.Len(t, view.Invoices[0].DeliveryNotes, 2)
	require.Len(t, view.Invoices[1].DeliveryNotes, 1)
	require.Equal(t, trip.StatusInProgress.Code(), view.Status)
}

func TestGetTripNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.GetTrip(context.Background(), "T-404")
	require.ErrorIs(t, err, service.ErrTripNotFound)
}

package service_test

import (
	"context"
	"testing"

	"sivec/internal/domain/driver"
	"sivec/internal/domain/vehicle"
	"sivec/internal/general/logger"
	"sivec/internal/ports"
	"sivec/internal/software/fleet/service"

	"github.com/stretchr/testify/require"
)

type fakeRoster struct{ names []string }

func (r *fakeRoster) Exists(_ context.Context, name string) (bool, error) {
	for _, n := range r.names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRoster) ListNames(context.Context) ([]string, error) {
	return r.names, nil
}

type fakeTempDrivers struct {
	drivers []*driver.Temporary
	seq     int
}

func (r *fakeTempDrivers) Create(_ context.Context, d *driver.Temporary) error {
	r.seq++
	d.ID = string(rune('0' + r.seq))
	r.drivers = append(r.drivers, d)
	return nil
}

func (r *fakeTempDrivers) FindByName(_ context.Context, name string) (*driver.Temporary, error) {
	for _, d := range r.drivers {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, nil
}

func (r *fakeTempDrivers) List(_ context.Context, onlyActive bool) ([]*driver.Temporary, error) {
	var out []*driver.Temporary
	for _, d := range r.drivers {
		if onlyActive && !d.Active {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *fakeTempDrivers) SetActive(_ context.Context, id string, active bool) error {
	for _, d := range r.drivers {
		if d.ID == id {
			d.Active = active
			return nil
		}
	}
	return driver.ErrUnknownDriver
}

type fakeVehicles struct{ vehicles map[string]*vehicle.Vehicle }

func (r *fakeVehicles) Create(_ context.Context, v *vehicle.Vehicle) error {
	r.vehicles[v.Number] = v
	return nil
}

func (r *fakeVehicles) GetByNumber(_ context.Context, number string) (*vehicle.Vehicle, error) {
	return r.vehicles[number], nil
}

func (r *fakeVehicles) List(_ context.Context, branch string, onlyActive bool) ([]*vehicle.Vehicle, error) {
	var out []*vehicle.Vehicle
	for _, v := range r.vehicles {
		if branch != "" && v.Branch != branch {
			continue
		}
		if onlyActive && !v.Active {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *fakeVehicles) SetActive(_ context.Context, number string, active bool) error {
	v, ok := r.vehicles[number]
	if !ok {
		return vehicle.ErrUnknownVehicle
	}
	v.Active = active
	return nil
}

func newFleet(externalNames ...string) (*service.Service, *fakeTempDrivers, *fakeVehicles) {
	temps := &fakeTempDrivers{}
	vehicles := &fakeVehicles{vehicles: make(map[string]*vehicle.Vehicle)}
	svc := service.NewService(vehicles, temps, &fakeRoster{names: externalNames}, logger.New("fleet-test"))
	return svc, temps, vehicles
}

func TestResolveDriverPrefersExternalRoster(t *testing.T) {
	svc, temps, _ := newFleet("Juan Pérez")

	// the same name in both rosters resolves to the external one
	temps.drivers = append(temps.drivers, &driver.Temporary{ID: "9", Name: "Juan Pérez", Active: true})

	ref, err := svc.ResolveDriver(context.Background(), "Juan Pérez")
	require.NoError(t, err)
	require.Equal(t, driver.SourceExternal, ref.Source)
	require.Equal(t, "Juan Pérez", ref.DisplayName)
	require.Empty(t, ref.SourceID)
}

func TestResolveDriverFallsBackToTemporary(t *testing.T) {
	svc, temps, _ := newFleet("Juan Pérez")
	temps.drivers = append(temps.drivers, &driver.Temporary{ID: "7", Name: "Pedro Ajeno", Active: true})

	ref, err := svc.ResolveDriver(context.Background(), "Pedro Ajeno")
	require.NoError(t, err)
	require.Equal(t, driver.SourceTemporary, ref.Source)
	require.Equal(t, "7", ref.SourceID)
}

func TestResolveDriverIgnoresInactiveTemporary(t *testing.T) {
	svc, temps, _ := newFleet()
	temps.drivers = append(temps.drivers, &driver.Temporary{ID: "7", Name: "Pedro Ajeno", Active: false})

	_, err := svc.ResolveDriver(context.Background(), "Pedro Ajeno")
	require.ErrorIs(t, err, driver.ErrUnknownDriver)
}

func TestResolveDriverUnknown(t *testing.T) {
	svc, _, _ := newFleet("Juan Pérez")

	_, err := svc.ResolveDriver(context.Background(), "Nadie")
	require.ErrorIs(t, err, driver.ErrUnknownDriver)

	_, err = svc.ResolveDriver(context.Background(), "   ")
	require.ErrorIs(t, err, driver.ErrNameRequired)
}

func TestCreateTemporaryDriverRejectsBothRosters(t *testing.T) {
	svc, _, _ := newFleet("Juan Pérez")

	// name already on the external roster
	_, err := svc.CreateTemporaryDriver(context.Background(), "Juan Pérez", "")
	require.ErrorIs(t, err, service.ErrDriverExists)

	entry, err := svc.CreateTemporaryDriver(context.Background(), "Pedro Ajeno", "contratista")
	require.NoError(t, err)
	require.Equal(t, string(driver.SourceTemporary), entry.Source)
	require.True(t, entry.Active)

	// and now the local roster blocks the repeat
	_, err = svc.CreateTemporaryDriver(context.Background(), "Pedro Ajeno", "")
	require.ErrorIs(t, err, service.ErrDriverExists)
}

func TestListRosterMergesSources(t *testing.T) {
	svc, _, _ := newFleet("Juan Pérez", "María López")

	_, err := svc.CreateTemporaryDriver(context.Background(), "Pedro Ajeno", "")
	require.NoError(t, err)

	roster, err := svc.ListRoster(context.Background())
	require.NoError(t, err)
	require.Len(t, roster, 3)
	require.Equal(t, string(driver.SourceExternal), roster[0].Source)
	require.Equal(t, string(driver.SourceTemporary), roster[2].Source)
}

func TestSetVehicleActive(t *testing.T) {
	svc, _, vehicles := newFleet()

	_, err := svc.CreateVehicle(context.Background(), ports.CreateVehicleInput{
		Number: "C-20", Plate: "p-123abc", Branch: "central",
	})
	require.NoError(t, err)
	require.Equal(t, "P-123ABC", vehicles.vehicles["C-20"].Plate) // plates normalize to upper case

	require.NoError(t, svc.SetVehicleActive(context.Background(), "C-20", false))
	require.False(t, vehicles.vehicles["C-20"].Active)

	require.NoError(t, svc.SetVehicleActive(context.Background(), "C-20", true))
	require.True(t, vehicles.vehicles["C-20"].Active)

	require.ErrorIs(t, svc.SetVehicleActive(context.Background(), "C-99", false), vehicle.ErrUnknownVehicle)
}
